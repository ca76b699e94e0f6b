package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/leafnote/leafnote/internal/store"
)

func TestParseIDs(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		max   int
		want  []int64
	}{
		{"clean list", "5,12,8,3", 10, []int64{5, 12, 8, 3}},
		{"whitespace", " 5 , 12 ", 10, []int64{5, 12}},
		{"skips garbage", "5, twelve, 8, -1, 0, 3", 10, []int64{5, 8, 3}},
		{"caps to max", "1,2,3,4,5", 3, []int64{1, 2, 3}},
		{"all garbage", "I think note five is best", 10, nil},
		{"empty", "", 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIDs(tt.reply, tt.max))
		})
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "sqlite"}, ParseTags("Go, SQLite", 5))
	assert.Equal(t, []string{"a", "b", "c"}, ParseTags("a,b,c,d,e", 3))
	assert.Nil(t, ParseTags("", 5))

	// Overlong tokens are dropped
	long := "this-tag-is-much-too-long-to-keep-around"
	assert.Equal(t, []string{"ok"}, ParseTags(long+", ok", 5))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
}

func TestFormatNotesList(t *testing.T) {
	notes := []*store.Note{
		{ID: 7, Title: "First", Content: "alpha", Tags: []string{"x", "y"}},
		{ID: 9, Title: "Second", Content: "beta"},
	}

	out := FormatNotesList(notes, 300)
	assert.Contains(t, out, `1. Title: "First"`)
	assert.Contains(t, out, "Tags: x,y")
	assert.Contains(t, out, "ID: 7")
	assert.Contains(t, out, "Tags: none")
	assert.Contains(t, out, "ID: 9")
}

func TestChatSystem(t *testing.T) {
	now := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	out := ChatSystem(now, []*store.Note{{ID: 1, Title: "Groceries", Content: "milk"}})
	assert.Contains(t, out, "Friday, March 14, 2025 at 09:30")
	assert.Contains(t, out, "Groceries")

	// Without notes the context section is omitted
	bare := ChatSystem(now, nil)
	assert.NotContains(t, bare, "recent notes")
}
