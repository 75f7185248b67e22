package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingChatModel answers with the number of messages it was given and the last one.
type countingChatModel struct {
	calls [][]*schema.Message
	err   error
}

func (m *countingChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, input)
	last := input[len(input)-1]
	return schema.AssistantMessage(fmt.Sprintf("%d:%s", len(input), last.Content), nil), nil
}

func (m *countingChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func (m *countingChatModel) BindTools([]*schema.ToolInfo) error { return nil }

func TestEinoConversationKeepsHistory(t *testing.T) {
	ctx := context.Background()
	fake := &countingChatModel{}
	m, err := NewEinoModel(ctx, "fake", fake, "")
	require.NoError(t, err)

	conv, err := m.StartConversation(ctx)
	require.NoError(t, err)

	reply, err := conv.Send(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "1:hello", reply)

	reply, err = conv.Send(ctx, "again")
	require.NoError(t, err)
	assert.Equal(t, "3:again", reply)

	second := fake.calls[1]
	assert.Equal(t, schema.User, second[0].Role)
	assert.Equal(t, schema.Assistant, second[1].Role)
	assert.Equal(t, "1:hello", second[1].Content)
}

func TestEinoConversationsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m, err := NewEinoModel(ctx, "fake", &countingChatModel{}, "")
	require.NoError(t, err)

	a, _ := m.StartConversation(ctx)
	b, _ := m.StartConversation(ctx)

	_, err = a.Send(ctx, "one")
	require.NoError(t, err)

	reply, err := b.Send(ctx, "two")
	require.NoError(t, err)
	assert.Equal(t, "1:two", reply)
}

func TestEinoSystemInstruction(t *testing.T) {
	ctx := context.Background()
	fake := &countingChatModel{}
	m, err := NewEinoModel(ctx, "fake", fake, "be {brief}")
	require.NoError(t, err)

	conv, _ := m.StartConversation(ctx)
	reply, err := conv.Send(ctx, "keep {braces}")
	require.NoError(t, err)

	assert.Equal(t, "2:keep {braces}", reply)
	assert.Equal(t, schema.System, fake.calls[0][0].Role)
	assert.Equal(t, "be {brief}", fake.calls[0][0].Content)
}

func TestEinoFailedTurnLeavesHistoryUntouched(t *testing.T) {
	ctx := context.Background()
	fake := &countingChatModel{err: errors.New("quota exceeded")}
	m, err := NewEinoModel(ctx, "fake", fake, "")
	require.NoError(t, err)

	conv, _ := m.StartConversation(ctx)
	_, err = conv.Send(ctx, "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	fake.err = nil
	reply, err := conv.Send(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "1:hello", reply)
}
