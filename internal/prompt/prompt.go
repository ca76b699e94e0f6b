// ABOUTME: Prompt construction and permissive output parsing for model calls
// ABOUTME: Shared by semantic search, chat grounding, related notes, and tag suggestions

package prompt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leafnote/leafnote/internal/store"
)

// Truncate shortens s to at most n bytes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// FormatNotesList renders notes as a numbered list for embedding in a prompt,
// each with title, truncated content, tags, and ID.
func FormatNotesList(notes []*store.Note, contentLimit int) string {
	entries := make([]string, 0, len(notes))
	for i, note := range notes {
		tags := "none"
		if len(note.Tags) > 0 {
			tags = strings.Join(note.Tags, ",")
		}
		entries = append(entries, fmt.Sprintf(
			"%d. Title: %q\n   Content: %q\n   Tags: %s\n   ID: %d",
			i+1, note.Title, Truncate(note.Content, contentLimit), tags, note.ID,
		))
	}
	return strings.Join(entries, "\n\n")
}

// SemanticSearch builds the prompt asking the model to rank notes for a query.
func SemanticSearch(query string, notes []*store.Note, limit int) string {
	return fmt.Sprintf(`Find the most relevant notes for this search query: %q

Consider semantic meaning, context, and conceptual relationships, not just exact word matches.

Available Notes:
%s

Please respond with the IDs of the most relevant notes (up to %d), separated by commas, in order of relevance. Example: 5,12,8,3`,
		query, FormatNotesList(notes, 300), limit)
}

// RelatedNotes builds the prompt asking the model for the notes most related
// to the given one.
func RelatedNotes(title, content string, candidates []*store.Note, count int) string {
	return fmt.Sprintf(`Analyze the following note and find the %d most related notes from the list below. Consider content similarity, shared topics, and tags.

Current Note:
Title: %q
Content: %q

Available Notes:
%s

Please respond with only the IDs of the %d most related notes, separated by commas, no other text. Example: 5,12,8`,
		count, title, content, FormatNotesList(candidates, 200), count)
}

// SuggestTags builds the prompt asking the model for tag suggestions.
func SuggestTags(title, content string) string {
	return fmt.Sprintf(`Analyze the following note and suggest 3-5 relevant tags. The tags should be:
- Short, descriptive keywords (1-2 words each)
- Relevant to the main topics discussed
- Useful for categorization and search
- In lowercase, separated by commas

Note Title: %q
Note Content: %q

Please respond with only the suggested tags, separated by commas, no other text.`,
		title, content)
}

// ChatSystem builds the grounding system prompt for the chat assistant,
// embedding the current time and the user's recent notes.
func ChatSystem(now time.Time, notes []*store.Note) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a helpful assistant for a personal note-taking app. The current date and time is %s.\n",
		now.Format("Monday, January 2, 2006 at 15:04"))

	if len(notes) > 0 {
		b.WriteString("\nThe user's recent notes, for context:\n\n")
		b.WriteString(FormatNotesList(notes, 200))
		b.WriteString("\n\nReference these notes when they are relevant to the conversation.")
	}

	return b.String()
}

// ParseIDs extracts up to max positive integer IDs from a comma-separated
// model reply. Non-numeric and non-positive tokens are skipped, not errors.
func ParseIDs(reply string, max int) []int64 {
	var ids []int64
	for _, token := range strings.Split(reply, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
		if len(ids) >= max {
			break
		}
	}
	return ids
}

// ParseTags extracts up to max tags from a comma-separated model reply:
// trimmed, lowercased, empty and overlong tokens dropped.
func ParseTags(reply string, max int) []string {
	var tags []string
	for _, token := range strings.Split(reply, ",") {
		tag := strings.ToLower(strings.TrimSpace(token))
		if tag == "" || len(tag) >= 30 {
			continue
		}
		tags = append(tags, tag)
		if len(tags) >= max {
			break
		}
	}
	return tags
}
