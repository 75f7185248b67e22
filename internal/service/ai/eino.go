package ai

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// EinoModel runs conversations through an eino chain: optional system prompt, the
// conversation history, then the new user turn, fed to a chat model.
type EinoModel struct {
	name      string
	hasSystem bool
	system    string
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewEinoModel compiles the chat chain around chatModel.
func NewEinoModel(ctx context.Context, name string, chatModel model.ChatModel, system string) (*EinoModel, error) {
	templates := make([]schema.MessagesTemplate, 0, 3)
	if system != "" {
		templates = append(templates, schema.SystemMessage("{system}"))
	}
	templates = append(templates,
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(prompt.FromMessages(schema.FString, templates...))
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &EinoModel{
		name:      name,
		hasSystem: system != "",
		system:    system,
		chain:     runnable,
	}, nil
}

func (m *EinoModel) Name() string { return m.name }

// StartConversation returns a conversation with empty history.
func (m *EinoModel) StartConversation(context.Context) (Conversation, error) {
	return &einoConversation{model: m}, nil
}

func (m *EinoModel) Close() error { return nil }

type einoConversation struct {
	model   *EinoModel
	history []*schema.Message
}

func (c *einoConversation) Send(ctx context.Context, message string) (string, error) {
	input := map[string]any{
		"history": c.history,
		"query":   message,
	}
	if c.model.hasSystem {
		input["system"] = c.model.system
	}

	response, err := c.model.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}
	if response == nil || response.Content == "" {
		return "", ErrEmptyResponse
	}

	c.history = append(c.history, schema.UserMessage(message), schema.AssistantMessage(response.Content, nil))
	return response.Content, nil
}
