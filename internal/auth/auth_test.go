package auth

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leafnote/leafnote/internal/store"
)

// setupService creates an auth service backed by a temporary SQLite store.
func setupService(t *testing.T) (*Service, *store.SQLiteStore) {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return NewService(st, SessionDuration, nil), st
}

func TestService_RegisterAndVerify(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "s3cret"))

	assert.True(t, svc.Verify(ctx, "alice", "s3cret"))
	assert.False(t, svc.Verify(ctx, "alice", "wrong"))
}

func TestService_Verify_UnknownUserFailsClosed(t *testing.T) {
	svc, _ := setupService(t)

	assert.False(t, svc.Verify(context.Background(), "nobody", "anything"))
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "pw1"))
	err := svc.Register(ctx, "alice", "pw2")
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestService_SessionLifecycle(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	token, err := svc.CreateSession(ctx, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	identity, err := svc.GetSession(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", identity.Username)
	assert.WithinDuration(t, time.Now(), identity.CreatedAt, 5*time.Second)

	require.NoError(t, svc.DeleteSession(ctx, token))

	_, err = svc.GetSession(ctx, token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting again is fine
	assert.NoError(t, svc.DeleteSession(ctx, token))
}

func TestService_ConfiguredTTLSetsExpiry(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewService(st, time.Hour, nil)
	assert.Equal(t, time.Hour, svc.TTL())

	ctx := context.Background()
	token, err := svc.CreateSession(ctx, "alice")
	require.NoError(t, err)

	session, err := st.GetSession(ctx, token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)
}

func TestService_ZeroTTLFallsBackToDefault(t *testing.T) {
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	svc := NewService(st, 0, nil)
	assert.Equal(t, SessionDuration, svc.TTL())
}

func TestService_GetSession_UnknownToken(t *testing.T) {
	svc, _ := setupService(t)

	_, err := svc.GetSession(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestService_SweepExpired(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	// One expired, one valid
	require.NoError(t, st.CreateSession(ctx, &store.Session{
		Token:     "old",
		Username:  "alice",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}))
	token, err := svc.CreateSession(ctx, "alice")
	require.NoError(t, err)

	count, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = svc.GetSession(ctx, token)
	assert.NoError(t, err, "valid session must survive the sweep")

	// Second sweep has nothing left to delete
	count, err = svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSweeper_StartStop(t *testing.T) {
	svc, st := setupService(t)
	ctx := context.Background()

	require.NoError(t, st.CreateSession(ctx, &store.Session{
		Token:     "old",
		Username:  "alice",
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}))

	sw := NewSweeper(svc, 50*time.Millisecond, nil)
	sw.Start(ctx)
	time.Sleep(500 * time.Millisecond)
	sw.Stop()
	// Stop is idempotent
	sw.Stop()

	// The background sweeper already removed the expired row
	count, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSweeper_StopBeforeStart(t *testing.T) {
	svc, _ := setupService(t)

	sw := NewSweeper(svc, time.Hour, nil)
	sw.Stop() // must not panic or block
}
