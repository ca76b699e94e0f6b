package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetOrCreateConversation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, err := store.GetOrCreateConversation(ctx, "sess-abc")
	require.NoError(t, err)
	assert.NotZero(t, conv.ID)
	assert.Equal(t, "sess-abc", conv.SessionID)

	// Second call resolves the same conversation
	again, err := store.GetOrCreateConversation(ctx, "sess-abc")
	require.NoError(t, err)
	assert.Equal(t, conv.ID, again.ID)
}

func TestStore_ChatMessages_RecentOldestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, err := store.GetOrCreateConversation(ctx, "sess-1")
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 15; i++ {
		msg := &ChatMessage{
			ConversationID: conv.ID,
			Role:           RoleUser,
			Content:        fmt.Sprintf("message %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Second),
		}
		require.NoError(t, store.SaveChatMessage(ctx, msg))
	}

	messages, err := store.RecentChatMessages(ctx, conv.ID, 10)
	require.NoError(t, err)
	require.Len(t, messages, 10)

	// The 10 most recent, oldest first
	assert.Equal(t, "message 5", messages[0].Content)
	assert.Equal(t, "message 14", messages[9].Content)
}

func TestStore_TouchConversation(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	conv, err := store.GetOrCreateConversation(ctx, "sess-touch")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)
	require.NoError(t, store.TouchConversation(ctx, conv.ID))

	after, err := store.GetOrCreateConversation(ctx, "sess-touch")
	require.NoError(t, err)
	assert.True(t, after.UpdatedAt.After(conv.UpdatedAt))
}
