package eino

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/require"
)

type stubChatModel struct {
	got  []*schema.Message
	resp *schema.Message
	err  error
}

func (s *stubChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.got = input
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func TestGeneratePassesPromptAsUserMessage(t *testing.T) {
	stub := &stubChatModel{resp: schema.AssistantMessage("an answer", nil)}
	svc := NewServiceWithModel(Config{Provider: "gemini"}, stub)

	out, err := svc.Generate(context.Background(), "the prompt", GenerateOptions{Temperature: 0.3, MaxOutputTokens: 1024})
	require.NoError(t, err)
	require.Equal(t, "an answer", out)
	require.Len(t, stub.got, 1)
	require.Equal(t, schema.User, stub.got[0].Role)
	require.Equal(t, "the prompt", stub.got[0].Content)
}

func TestGenerateWrapsModelError(t *testing.T) {
	stub := &stubChatModel{err: errors.New("quota exceeded")}
	svc := NewServiceWithModel(Config{}, stub)

	_, err := svc.Generate(context.Background(), "prompt", GenerateOptions{})
	require.ErrorContains(t, err, "quota exceeded")
}

func TestGenerateWithoutModelFails(t *testing.T) {
	svc := NewServiceWithModel(Config{}, nil)

	_, err := svc.Generate(context.Background(), "prompt", GenerateOptions{})
	require.Error(t, err)
}
