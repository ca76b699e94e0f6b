package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello, World!", "hello-world"},
		{"Hello World", "hello-world"},
		{"  Leading and trailing  ", "leading-and-trailing"},
		{"Already-hyphenated title", "already-hyphenated-title"},
		{"under_scores_too", "under-scores-too"},
		{"Numbers 123 stay", "numbers-123-stay"},
		{"What's up? (a note)", "whats-up-a-note"},
		{"Multiple   spaces", "multiple-spaces"},
		{"UPPERCASE", "uppercase"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.title), "title %q", tt.title)
	}
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, []string{"go", "notes"}, NormalizeTags("Go, notes"))
	assert.Equal(t, []string{"one"}, NormalizeTags("  one  ,, ,"))
	assert.Nil(t, NormalizeTags(""))
	assert.Nil(t, NormalizeTags("  ,  "))
}
