package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when the remote model answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Conversation is one remote chat context. Each Send is a turn whose history is kept
// for the following turns. Implementations are not safe for concurrent use.
type Conversation interface {
	Send(ctx context.Context, message string) (string, error)
}

// Model starts remote conversations.
type Model interface {
	Name() string
	StartConversation(ctx context.Context) (Conversation, error)
	Close() error
}
