package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("hey "), genai.Text("there")}},
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "hey there", text)
}

func TestResponseTextEmpty(t *testing.T) {
	_, err := responseText(nil)
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = responseText(&genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

type fakeFileStore struct {
	now     time.Time
	ttl     time.Duration
	err     error
	uploads int
	deleted []string
}

func (f *fakeFileStore) upload(_ context.Context, _ string) (*genai.File, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads++
	return &genai.File{
		Name:           fmt.Sprintf("files/training-%d", f.uploads),
		URI:            fmt.Sprintf("https://files.example/training-%d", f.uploads),
		MIMEType:       "text/csv",
		ExpirationTime: f.now.Add(f.ttl),
	}, nil
}

func (f *fakeFileStore) remove(_ context.Context, name string) error {
	f.deleted = append(f.deleted, name)
	return nil
}

func fileData(n int) genai.FileData {
	return genai.FileData{MIMEType: "text/csv", URI: fmt.Sprintf("https://files.example/training-%d", n)}
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Text(text)}}}},
	}
}

func newTestGemini(t *testing.T, files *fakeFileStore) *GeminiModel {
	t.Helper()
	m, err := NewGeminiModel(context.Background(), GeminiOptions{APIKey: "test-key", Model: "gemini-test"})
	require.NoError(t, err)

	m.uploadFile = files.upload
	m.deleteFile = files.remove
	m.now = func() time.Time { return files.now }
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func startGemini(t *testing.T, m *GeminiModel) *geminiConversation {
	t.Helper()
	conv, err := m.StartConversation(context.Background())
	require.NoError(t, err)
	gc, ok := conv.(*geminiConversation)
	require.True(t, ok)
	return gc
}

func TestGeminiPlainTurns(t *testing.T) {
	conv := startGemini(t, newTestGemini(t, &fakeFileStore{}))

	assert.Equal(t, []genai.Part{genai.Text("hi")}, conv.turnParts("hi"))
}

func TestGeminiAttachmentOnlyOnPrimingTurn(t *testing.T) {
	ctx := context.Background()
	files := &fakeFileStore{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), ttl: 48 * time.Hour}
	m := newTestGemini(t, files)
	require.NoError(t, m.AttachTrainingFile(ctx, "training_data.csv", "inline primer"))

	conv := startGemini(t, m)
	var sent [][]genai.Part
	failures := 1
	conv.send = func(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
		sent = append(sent, parts)
		if failures > 0 {
			failures--
			return nil, errors.New("backend unavailable")
		}
		return textResponse("ok"), nil
	}

	_, err := conv.Send(ctx, "attached primer")
	require.Error(t, err)

	reply, err := conv.Send(ctx, "attached primer")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)

	_, err = conv.Send(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, [][]genai.Part{
		{fileData(1), genai.Text("attached primer")},
		{fileData(1), genai.Text("attached primer")},
		{genai.Text("hello")},
	}, sent)
	assert.Equal(t, 1, files.uploads)
}

func TestGeminiReuploadsExpiringTrainingFile(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	files := &fakeFileStore{now: start, ttl: 48 * time.Hour}
	m := newTestGemini(t, files)
	require.NoError(t, m.AttachTrainingFile(ctx, "training_data.csv", "inline primer"))

	files.now = start.Add(24 * time.Hour)
	assert.Equal(t, []genai.Part{fileData(1), genai.Text("p")}, startGemini(t, m).turnParts("p"))
	assert.Equal(t, 1, files.uploads)

	files.now = start.Add(47*time.Hour + 30*time.Minute)
	assert.Equal(t, []genai.Part{fileData(2), genai.Text("p")}, startGemini(t, m).turnParts("p"))
	assert.Equal(t, 2, files.uploads)
	assert.Equal(t, []string{"files/training-1"}, files.deleted)

	assert.Equal(t, []genai.Part{fileData(2), genai.Text("p")}, startGemini(t, m).turnParts("p"))
	assert.Equal(t, 2, files.uploads)
}

func TestGeminiFallsBackToInlineWithoutTrainingFile(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("initial upload fails", func(t *testing.T) {
		files := &fakeFileStore{now: start, ttl: 48 * time.Hour, err: errors.New("quota exceeded")}
		m := newTestGemini(t, files)
		require.Error(t, m.AttachTrainingFile(ctx, "training_data.csv", "inline primer"))

		assert.Equal(t, []genai.Part{genai.Text("inline primer")}, startGemini(t, m).turnParts("attached primer"))

		files.err = nil
		assert.Equal(t, []genai.Part{fileData(1), genai.Text("attached primer")}, startGemini(t, m).turnParts("attached primer"))
	})

	t.Run("expired and re-upload fails", func(t *testing.T) {
		files := &fakeFileStore{now: start, ttl: 48 * time.Hour}
		m := newTestGemini(t, files)
		require.NoError(t, m.AttachTrainingFile(ctx, "training_data.csv", "inline primer"))

		files.now = start.Add(49 * time.Hour)
		files.err = errors.New("quota exceeded")
		conv := startGemini(t, m)
		assert.Equal(t, []genai.Part{genai.Text("inline primer")}, conv.turnParts("attached primer"))

		conv.send = func(context.Context, ...genai.Part) (*genai.GenerateContentResponse, error) {
			return textResponse("ok"), nil
		}
		_, err := conv.Send(ctx, "attached primer")
		require.NoError(t, err)
		assert.Equal(t, []genai.Part{genai.Text("hello")}, conv.turnParts("hello"))
	})
}
