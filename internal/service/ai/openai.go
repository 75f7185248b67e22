package ai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIOptions configures the OpenAI-compatible provider.
type OpenAIOptions struct {
	APIKey            string
	Model             string
	BaseURL           string
	SystemInstruction string
	Temperature       *float64
	MaxTokens         *int
	RequestOptions    []option.RequestOption
}

// OpenAIModel relays turns to a chat completions endpoint, resending the
// conversation history each time.
type OpenAIModel struct {
	client openai.Client
	opts   OpenAIOptions
}

// NewOpenAIModel creates the OpenAI client.
func NewOpenAIModel(opts OpenAIOptions) *OpenAIModel {
	reqOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey)}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	reqOpts = append(reqOpts, opts.RequestOptions...)

	return &OpenAIModel{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
	}
}

func (m *OpenAIModel) Name() string { return "openai" }

// StartConversation returns a conversation seeded with the system instruction, if any.
func (m *OpenAIModel) StartConversation(context.Context) (Conversation, error) {
	conv := &openAIConversation{model: m}
	if m.opts.SystemInstruction != "" {
		conv.history = append(conv.history, openai.SystemMessage(m.opts.SystemInstruction))
	}
	return conv, nil
}

func (m *OpenAIModel) Close() error { return nil }

type openAIConversation struct {
	model   *OpenAIModel
	history []openai.ChatCompletionMessageParamUnion
}

func (c *openAIConversation) Send(ctx context.Context, message string) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(c.history)+1)
	messages = append(messages, c.history...)
	messages = append(messages, openai.UserMessage(message))

	params := openai.ChatCompletionNewParams{
		Messages: messages,
		Model:    c.model.opts.Model,
	}
	if c.model.opts.Temperature != nil {
		params.Temperature = openai.Float(*c.model.opts.Temperature)
	}
	if c.model.opts.MaxTokens != nil {
		params.MaxCompletionTokens = openai.Int(int64(*c.model.opts.MaxTokens))
	}

	res, err := c.model.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(res.Choices) == 0 || res.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}

	reply := res.Choices[0].Message.Content
	c.history = append(messages, openai.AssistantMessage(reply))
	return reply, nil
}
