// ABOUTME: Tests for the chat service against a real SQLite store and a fake model
// ABOUTME: Covers persistence, context assembly, error passthrough, and note features

package chat

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafnote/leafnote/internal/llm"
	"github.com/leafnote/leafnote/internal/store"
)

type fakeModel struct {
	reply    string
	err      error
	called   bool
	gotModel string
	gotMsgs  []llm.Message
}

func (f *fakeModel) Chat(ctx context.Context, model string, messages []llm.Message) (string, error) {
	f.called = true
	f.gotModel = model
	f.gotMsgs = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func setupChat(t *testing.T, model *fakeModel) (*Service, *store.SQLiteStore) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewService(st, model, "llama3", 5*time.Second, slog.Default())
	return svc, st
}

func TestService_Send_PersistsExchange(t *testing.T) {
	model := &fakeModel{reply: "hello back"}
	svc, st := setupChat(t, model)
	ctx := context.Background()

	reply, err := svc.Send(ctx, "sess-1", "hello there", "")
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
	assert.Equal(t, "llama3", model.gotModel)

	conv, err := st.GetOrCreateConversation(ctx, "sess-1")
	require.NoError(t, err)
	msgs, err := st.RecentChatMessages(ctx, conv.ID, 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, store.RoleUser, msgs[0].Role)
	assert.Equal(t, "hello there", msgs[0].Content)
	assert.Equal(t, store.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "hello back", msgs[1].Content)
}

func TestService_Send_ReplaysHistory(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	svc, _ := setupChat(t, model)
	ctx := context.Background()

	_, err := svc.Send(ctx, "sess-1", "first question", "")
	require.NoError(t, err)
	_, err = svc.Send(ctx, "sess-1", "second question", "")
	require.NoError(t, err)

	// system prompt, first exchange (2), then the new user message
	require.Len(t, model.gotMsgs, 4)
	assert.Equal(t, store.RoleSystem, model.gotMsgs[0].Role)
	assert.Equal(t, "first question", model.gotMsgs[1].Content)
	assert.Equal(t, "ok", model.gotMsgs[2].Content)
	assert.Equal(t, "second question", model.gotMsgs[3].Content)
}

func TestService_Send_SystemPromptIncludesNotes(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	svc, st := setupChat(t, model)
	ctx := context.Background()

	require.NoError(t, st.CreateNote(ctx, &store.Note{
		Title: "Sourdough starter", Slug: "sourdough-starter",
		Content: "Feed twice daily", Tags: []string{"baking"},
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	_, err := svc.Send(ctx, "sess-1", "what do I know about bread?", "")
	require.NoError(t, err)

	require.NotEmpty(t, model.gotMsgs)
	assert.Contains(t, model.gotMsgs[0].Content, "Sourdough starter")
}

func TestService_Send_ModelOverride(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	svc, _ := setupChat(t, model)

	_, err := svc.Send(context.Background(), "sess-1", "hi", "mistral")
	require.NoError(t, err)
	assert.Equal(t, "mistral", model.gotModel)
}

func TestService_Send_ModelErrorNothingPersisted(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("chat request: %w", llm.ErrUnavailable)}
	svc, st := setupChat(t, model)
	ctx := context.Background()

	_, err := svc.Send(ctx, "sess-1", "hi", "")
	require.ErrorIs(t, err, llm.ErrUnavailable)

	conv, err := st.GetOrCreateConversation(ctx, "sess-1")
	require.NoError(t, err)
	msgs, err := st.RecentChatMessages(ctx, conv.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestService_Send_TimeoutSurfaced(t *testing.T) {
	model := &fakeModel{err: fmt.Errorf("chat request: %w", llm.ErrTimeout)}
	svc, _ := setupChat(t, model)

	_, err := svc.Send(context.Background(), "sess-1", "hi", "")
	require.ErrorIs(t, err, llm.ErrTimeout)
	assert.NotErrorIs(t, err, llm.ErrUnavailable)
}

func TestService_SuggestTags(t *testing.T) {
	model := &fakeModel{reply: "cooking, Recipes, , dinner-ideas"}
	svc, _ := setupChat(t, model)

	tags, err := svc.SuggestTags(context.Background(), "Pasta night", "Carbonara recipe")
	require.NoError(t, err)
	assert.Equal(t, []string{"cooking", "recipes", "dinner-ideas"}, tags)

	require.NotEmpty(t, model.gotMsgs)
	assert.Contains(t, model.gotMsgs[0].Content, "Pasta night")
}

func TestService_RelatedNotes(t *testing.T) {
	model := &fakeModel{}
	svc, st := setupChat(t, model)
	ctx := context.Background()

	var ids []int64
	for i := 1; i <= 4; i++ {
		note := &store.Note{
			Title: fmt.Sprintf("Note %d", i), Slug: fmt.Sprintf("note-%d", i),
			Content:   fmt.Sprintf("Content %d", i),
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}
		require.NoError(t, st.CreateNote(ctx, note))
		ids = append(ids, note.ID)
	}

	model.reply = fmt.Sprintf("%d, %d", ids[0], ids[2])

	related, err := svc.RelatedNotes(ctx, ids[3], "Note 4", "Content 4")
	require.NoError(t, err)
	require.Len(t, related, 2)
	for _, note := range related {
		assert.NotEqual(t, ids[3], note.ID)
	}

	// the prompt only offers other notes as candidates
	require.NotEmpty(t, model.gotMsgs)
	assert.NotContains(t, model.gotMsgs[0].Content, fmt.Sprintf("ID: %d", ids[3]))
}

func TestService_RelatedNotes_NoCandidates(t *testing.T) {
	model := &fakeModel{reply: "1, 2, 3"}
	svc, _ := setupChat(t, model)

	related, err := svc.RelatedNotes(context.Background(), 1, "Lonely", "Only note")
	require.NoError(t, err)
	assert.Empty(t, related)
	assert.False(t, model.called)
}

func TestService_History(t *testing.T) {
	model := &fakeModel{reply: "ok"}
	svc, _ := setupChat(t, model)
	ctx := context.Background()

	_, err := svc.Send(ctx, "sess-1", "hello", "")
	require.NoError(t, err)

	msgs, err := svc.History(ctx, "sess-1", 0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "hello", msgs[0].Content)
}
