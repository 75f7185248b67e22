package ai

import (
	"context"
	"errors"
)

// ErrNoProvider means no remote model credentials were configured.
var ErrNoProvider = errors.New("no generative model configured: set GEMINI_API_KEY, ARK_API_KEY or OPENAI_API_KEY")

// Unavailable is the Model used when no provider is configured. The server still
// runs and every conversation fails, which the relay reports per request.
type Unavailable struct{}

func (Unavailable) Name() string { return "unavailable" }

func (Unavailable) StartConversation(context.Context) (Conversation, error) {
	return nil, ErrNoProvider
}

func (Unavailable) Close() error { return nil }
