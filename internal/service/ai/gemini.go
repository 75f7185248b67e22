package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// trainingFileRefreshMargin 训练文件在过期前多久重新上传。
// The Files API drops uploads after about 48 hours.
const trainingFileRefreshMargin = time.Hour

// GeminiOptions configures the Gemini provider.
type GeminiOptions struct {
	APIKey            string
	Model             string
	SystemInstruction string
	Temperature       *float64
	MaxTokens         *int
}

// GeminiModel starts Gemini chat sessions. The SDK chat session keeps the history.
type GeminiModel struct {
	client *genai.Client
	model  *genai.GenerativeModel

	uploadFile func(ctx context.Context, path string) (*genai.File, error)
	deleteFile func(ctx context.Context, name string) error
	now        func() time.Time

	mu       sync.Mutex
	training *trainingFile
}

// trainingFile is the uploaded copy of the training data.
type trainingFile struct {
	path         string
	inlinePrimer string

	// data is nil while no usable upload exists.
	data    *genai.FileData
	name    string
	expires time.Time
}

func (t *trainingFile) expiring(now time.Time) bool {
	return !t.expires.IsZero() && !now.Add(trainingFileRefreshMargin).Before(t.expires)
}

// NewGeminiModel creates the Gemini client.
func NewGeminiModel(ctx context.Context, opts GeminiOptions) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	gm := client.GenerativeModel(opts.Model)
	if opts.SystemInstruction != "" {
		gm.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(opts.SystemInstruction)}}
	}
	if opts.Temperature != nil {
		gm.SetTemperature(float32(*opts.Temperature))
	}
	if opts.MaxTokens != nil {
		gm.SetMaxOutputTokens(int32(*opts.MaxTokens))
	}

	return &GeminiModel{
		client: client,
		model:  gm,
		uploadFile: func(ctx context.Context, path string) (*genai.File, error) {
			return client.UploadFileFromPath(ctx, path, &genai.UploadFileOptions{MIMEType: "text/csv"})
		},
		deleteFile: client.DeleteFile,
		now:        time.Now,
	}, nil
}

func (m *GeminiModel) Name() string { return "gemini" }

// AttachTrainingFile 上传训练文件，之后每个会话的首轮都会附带它。
//
// The upload is refreshed before it expires. Whenever no upload is usable, the first
// turn is replaced by inlinePrimer so the examples still reach the model. A failed
// upload here is returned but kept for retry on the next conversation.
func (m *GeminiModel) AttachTrainingFile(ctx context.Context, path, inlinePrimer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.training = &trainingFile{path: path, inlinePrimer: inlinePrimer}
	return m.refreshLocked(ctx)
}

func (m *GeminiModel) refreshLocked(ctx context.Context) error {
	t := m.training
	file, err := m.uploadFile(ctx, t.path)
	if err != nil {
		t.data = nil
		return fmt.Errorf("failed to upload training file: %w", err)
	}

	if t.name != "" {
		m.removeUpload(ctx, t.name)
	}
	t.data = &genai.FileData{MIMEType: file.MIMEType, URI: file.URI}
	t.name = file.Name
	t.expires = file.ExpirationTime

	log.Info().Str("file", file.Name).Str("uri", file.URI).Time("expires", file.ExpirationTime).Msg("training file uploaded")
	return nil
}

// attachment returns the upload for a new conversation, refreshing it when needed.
// ok is false when no training file was ever attached.
func (m *GeminiModel) attachment(ctx context.Context) (data *genai.FileData, inlinePrimer string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.training
	if t == nil {
		return nil, "", false
	}
	if t.data == nil || t.expiring(m.now()) {
		if err := m.refreshLocked(ctx); err != nil {
			log.Warn().Err(err).Msg("training file unavailable, sending examples inline")
		}
	}
	return t.data, t.inlinePrimer, true
}

func (m *GeminiModel) removeUpload(ctx context.Context, name string) {
	if err := m.deleteFile(ctx, name); err != nil {
		log.Warn().Err(err).Str("file", name).Msg("failed to delete uploaded training file")
	}
}

// StartConversation opens a new SDK chat session.
func (m *GeminiModel) StartConversation(ctx context.Context) (Conversation, error) {
	session := m.model.StartChat()
	conv := &geminiConversation{
		send: func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
			n := len(session.History)
			resp, err := session.SendMessage(ctx, parts...)
			if err != nil && len(session.History) > n {
				// A failed turn must not linger in the history.
				session.History = session.History[:n]
			}
			return resp, err
		},
	}

	if data, inline, ok := m.attachment(ctx); ok {
		conv.priming = true
		conv.file = data
		conv.inlinePrimer = inline
	}
	return conv, nil
}

// Close removes the uploaded training file and releases the client.
func (m *GeminiModel) Close() error {
	m.mu.Lock()
	var name string
	if m.training != nil {
		name = m.training.name
	}
	m.mu.Unlock()

	if name != "" {
		m.removeUpload(context.Background(), name)
	}
	return m.client.Close()
}

type geminiConversation struct {
	send func(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)

	// priming holds until the first turn has been answered.
	priming      bool
	file         *genai.FileData
	inlinePrimer string
}

// turnParts 组装下一轮要发送的内容。
// The priming turn carries the training file, or the inline examples in place of
// message when no file is available.
func (c *geminiConversation) turnParts(message string) []genai.Part {
	switch {
	case !c.priming:
		return []genai.Part{genai.Text(message)}
	case c.file != nil:
		return []genai.Part{*c.file, genai.Text(message)}
	case c.inlinePrimer != "":
		return []genai.Part{genai.Text(c.inlinePrimer)}
	default:
		return []genai.Part{genai.Text(message)}
	}
}

func (c *geminiConversation) Send(ctx context.Context, message string) (string, error) {
	resp, err := c.send(ctx, c.turnParts(message)...)
	if err != nil {
		return "", fmt.Errorf("gemini send failed: %w", err)
	}
	c.priming = false

	return responseText(resp)
}

// responseText joins the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		if resp != nil && resp.PromptFeedback != nil {
			return "", fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
		}
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, candidate.FinishReason)
	}

	var builder strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	if builder.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return builder.String(), nil
}
