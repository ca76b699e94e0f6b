package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModelServer returns an httptest server that replies to /api/chat
// with the given content.
func fakeModelServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
			Stream   bool      `json:"stream"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)

		json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]string{"role": "assistant", "content": content},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Chat(t *testing.T) {
	srv := fakeModelServer(t, "hello back")
	client := NewClient(srv.URL, nil)

	reply, err := client.Chat(context.Background(), "llama2", []Message{
		{Role: "user", Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello back", reply)
}

func TestClient_Chat_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // nothing listening anymore

	client := NewClient(srv.URL, nil)
	_, err := client.Chat(context.Background(), "llama2", []Message{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_Chat_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Chat(ctx, "llama2", []Message{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_Chat_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil)
	_, err := client.Chat(context.Background(), "llama2", []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestClient_Chat_EmptyContent(t *testing.T) {
	srv := fakeModelServer(t, "")
	client := NewClient(srv.URL, nil)

	_, err := client.Chat(context.Background(), "llama2", []Message{{Role: "user", Content: "hi"}})
	assert.Error(t, err)
}

func TestClient_Chat_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL, nil)
	_, err := client.Chat(context.Background(), "llama2", []Message{{Role: "user", Content: "hi"}})
	assert.ErrorIs(t, err, ErrUnavailable)
}
