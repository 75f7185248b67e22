// Package aitest provides a scripted ai.Model for tests.
package aitest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zhouzirui/stylechat/internal/service/ai"
)

// Model is an in-process ai.Model. Every conversation answers
// "c<conversation>#<turn>: <message>", so replies reveal which context served them
// and how many turns it has seen.
type Model struct {
	// StartErr fails StartConversation.
	StartErr error
	// SendErr, when set, is consulted before each turn.
	SendErr func(message string) error
	// Delay holds every turn back, returning early if the context ends first.
	Delay time.Duration

	mu            sync.Mutex
	conversations []*Conversation
}

func (m *Model) Name() string { return "aitest" }

func (m *Model) StartConversation(context.Context) (ai.Conversation, error) {
	if m.StartErr != nil {
		return nil, m.StartErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	conv := &Conversation{id: len(m.conversations) + 1, model: m}
	m.conversations = append(m.conversations, conv)
	return conv, nil
}

func (m *Model) Close() error { return nil }

// Conversations returns the conversations started so far.
func (m *Model) Conversations() []*Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Conversation(nil), m.conversations...)
}

// Conversation records the turns it received.
type Conversation struct {
	id    int
	model *Model

	mu    sync.Mutex
	turns []string
}

func (c *Conversation) Send(ctx context.Context, message string) (string, error) {
	if c.model.Delay > 0 {
		select {
		case <-time.After(c.model.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.model.SendErr != nil {
		if err := c.model.SendErr(message); err != nil {
			return "", err
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, message)
	return fmt.Sprintf("c%d#%d: %s", c.id, len(c.turns), message), nil
}

// Turns returns every message sent, the priming turn included.
func (c *Conversation) Turns() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.turns...)
}
