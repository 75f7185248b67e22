package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/stylechat/internal/model/chat"
	"github.com/zhouzirui/stylechat/internal/service/ai"
)

var ErrSessionNotFound = errors.New("session not found")

// Options tunes the session service.
type Options struct {
	Variant string
	Primer  string
	// Timeout bounds each remote call. Zero leaves the caller's context as is.
	Timeout time.Duration
}

// Service maps session identifiers to remote conversations held in memory for the
// lifetime of the process.
type Service struct {
	model ai.Model
	opts  Options

	mu       sync.RWMutex
	counter  int
	sessions map[string]*entry
}

type entry struct {
	session chat.Session

	// mu serializes turns: a remote conversation takes one turn at a time.
	mu       sync.Mutex
	remote   ai.Conversation
	messages []chat.Message
}

// NewService creates the session service on top of model.
func NewService(model ai.Model, opts Options) *Service {
	return &Service{
		model:    model,
		opts:     opts,
		sessions: make(map[string]*entry),
	}
}

// Reply forwards message to the conversation behind sessionID and returns the model's
// text. An empty sessionID starts and primes a new conversation first.
func (s *Service) Reply(ctx context.Context, sessionID, message string) (string, chat.Session, error) {
	var (
		e   *entry
		err error
	)
	if sessionID == "" {
		e, err = s.createSession(ctx)
	} else {
		e, err = s.lookup(sessionID)
	}
	if err != nil {
		return "", chat.Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	reply, err := s.send(ctx, e.remote, message)
	if err != nil {
		return "", chat.Session{}, err
	}

	now := time.Now().UTC()
	e.messages = append(e.messages,
		chat.Message{ID: uuid.NewString(), SessionID: e.session.ID, Sender: chat.SenderUser, Content: message, CreatedAt: now},
		chat.Message{ID: uuid.NewString(), SessionID: e.session.ID, Sender: chat.SenderAssistant, Content: reply, CreatedAt: now},
	)

	log.Debug().Str("session", e.session.ID).Int("length", len(reply)).Msg("relayed reply")
	return reply, e.session, nil
}

// createSession starts a remote conversation and sends the priming turn. The session
// is registered only once priming succeeded.
func (s *Service) createSession(ctx context.Context) (*entry, error) {
	remote, err := s.model.StartConversation(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.send(ctx, remote, s.opts.Primer); err != nil {
		return nil, fmt.Errorf("failed to prime conversation: %w", err)
	}

	s.mu.Lock()
	s.counter++
	e := &entry{
		session: chat.Session{
			ID:        strconv.Itoa(s.counter),
			Variant:   s.opts.Variant,
			CreatedAt: time.Now().UTC(),
		},
		remote:   remote,
		messages: make([]chat.Message, 0, 16),
	}
	s.sessions[e.session.ID] = e
	s.mu.Unlock()

	log.Info().Str("session", e.session.ID).Str("model", s.model.Name()).Msg("session created")
	return e, nil
}

func (s *Service) send(ctx context.Context, remote ai.Conversation, message string) (string, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}
	return remote.Send(ctx, message)
}

func (s *Service) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return e.session, nil
}

// LoadTranscript returns the relayed turns of a session, oldest first.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	copied := make([]chat.Message, len(e.messages))
	copy(copied, e.messages)
	return copied, nil
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
