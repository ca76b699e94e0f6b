// ABOUTME: Routes named island actions to handlers that call internal services
// ABOUTME: Each handler reads cached state, does at most one call, merges back

package island

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leafnote/leafnote/internal/llm"
	"github.com/leafnote/leafnote/internal/store"
)

// Action names accepted by Dispatch.
const (
	ActionChat        = "chat"
	ActionClear       = "clear"
	ActionChangeModel = "changeModel"
	ActionFindRelated = "findRelated"
)

// ErrUnknownAction is returned when Dispatch gets an unrecognized action name.
var ErrUnknownAction = errors.New("unknown island action")

// ChatService is the slice of the chat service the dispatcher drives.
type ChatService interface {
	Send(ctx context.Context, sessionID, message, model string) (string, error)
	RelatedNotes(ctx context.Context, noteID int64, title, content string) ([]*store.Note, error)
}

// Request carries the parameters of one island action. Unused fields are
// ignored by handlers that do not need them.
type Request struct {
	Action  string `json:"action"`
	Message string `json:"message,omitempty"`
	Model   string `json:"model,omitempty"`
	NoteID  int64  `json:"noteId,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// Dispatcher applies island actions against the state cache.
type Dispatcher struct {
	cache  *Cache
	chat   ChatService
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher over the given cache and chat service.
func NewDispatcher(cache *Cache, chat ChatService, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cache:  cache,
		chat:   chat,
		logger: logger.With("component", "island"),
	}
}

// Dispatch routes an action to its handler and returns the island's state
// afterwards. Upstream failures land in State.Error rather than propagating;
// only an unknown action name is an error to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, islandID string, req Request) (State, error) {
	switch req.Action {
	case ActionChat:
		return d.handleChat(ctx, islandID, req), nil
	case ActionClear:
		d.cache.Clear(islandID)
		return State{}, nil
	case ActionChangeModel:
		return d.cache.Update(islandID, func(s State) State {
			s.SelectedModel = req.Model
			return s
		}), nil
	case ActionFindRelated:
		return d.handleFindRelated(ctx, islandID, req), nil
	default:
		return State{}, fmt.Errorf("%w: %q", ErrUnknownAction, req.Action)
	}
}

func (d *Dispatcher) handleChat(ctx context.Context, islandID string, req Request) State {
	model := req.Model
	if model == "" {
		if current, ok := d.cache.Get(islandID); ok {
			model = current.SelectedModel
		}
	}

	d.cache.Update(islandID, func(s State) State {
		s.Loading = true
		s.Error = ""
		return s
	})

	reply, err := d.chat.Send(ctx, islandID, req.Message, model)
	if err != nil {
		d.logger.Warn("island chat failed", "island_id", islandID, "error", err)
		return d.cache.Update(islandID, func(s State) State {
			s.Loading = false
			s.Error = upstreamErrorMessage(err)
			return s
		})
	}

	return d.cache.Update(islandID, func(s State) State {
		s.Loading = false
		s.Error = ""
		s.LastMessage = reply
		s.Messages = append(s.Messages,
			ChatEntry{Role: store.RoleUser, Content: req.Message},
			ChatEntry{Role: store.RoleAssistant, Content: reply},
		)
		return s
	})
}

func (d *Dispatcher) handleFindRelated(ctx context.Context, islandID string, req Request) State {
	related, err := d.chat.RelatedNotes(ctx, req.NoteID, req.Title, req.Content)
	if err != nil {
		d.logger.Warn("island related-notes failed", "island_id", islandID, "error", err)
		return d.cache.Update(islandID, func(s State) State {
			s.Error = upstreamErrorMessage(err)
			return s
		})
	}

	return d.cache.Update(islandID, func(s State) State {
		s.Error = ""
		s.RelatedNotes = related
		return s
	})
}

// upstreamErrorMessage maps model-layer failures to the message shown in the
// island UI, keeping timeouts distinguishable from an unreachable model.
func upstreamErrorMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		return "The language model took too long to respond. Please try again."
	case errors.Is(err, llm.ErrUnavailable):
		return "Failed to reach the language model. Make sure it is running."
	default:
		return "Something went wrong. Please try again."
	}
}
