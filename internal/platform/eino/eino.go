package eino

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	// LLM Provider integrations - easily switchable
	gemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"google.golang.org/genai"
)

// Config represents the configuration for Eino LLM integration
type Config struct {
	Provider string `json:"provider"` // "gemini" is the only provider wired in
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
}

// Service wraps an Eino chat model used as the answer synthesizer.
type Service struct {
	config    Config
	chatModel model.BaseChatModel
}

// GenerateOptions bound a single synthesis call.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int
}

// NewService creates a new Eino service instance with provider initialization.
func NewService(config Config) (*Service, error) {
	service := &Service{config: config}
	if err := service.initializeChatModel(); err != nil {
		return nil, fmt.Errorf("failed to initialize chat model: %w", err)
	}
	return service, nil
}

// NewServiceWithModel creates a service around a pre-configured chat model.
// Used by tests to substitute the synthesizer.
func NewServiceWithModel(config Config, chatModel model.BaseChatModel) *Service {
	return &Service{config: config, chatModel: chatModel}
}

func (s *Service) initializeChatModel() error {
	switch strings.ToLower(s.config.Provider) {
	case "", "gemini":
		return s.initializeGeminiModel()
	default:
		return fmt.Errorf("unsupported provider: %s. Supported: gemini", s.config.Provider)
	}
}

func (s *Service) initializeGeminiModel() error {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: s.config.APIKey,
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	geminiModel, err := gemini.NewChatModel(context.Background(), &gemini.Config{
		Client: client,
		Model:  s.config.Model, // e.g. "gemini-1.5-flash"
	})
	if err != nil {
		return fmt.Errorf("failed to create Gemini chat model: %w", err)
	}

	s.chatModel = geminiModel
	return nil
}

// Generate runs a single-turn completion for the given prompt.
func (s *Service) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if s.chatModel == nil {
		return "", fmt.Errorf("chat model not initialized")
	}

	messages := []*schema.Message{schema.UserMessage(prompt)}

	var callOpts []model.Option
	if opts.Temperature > 0 {
		callOpts = append(callOpts, model.WithTemperature(opts.Temperature))
	}
	if opts.MaxOutputTokens > 0 {
		callOpts = append(callOpts, model.WithMaxTokens(opts.MaxOutputTokens))
	}

	response, err := s.chatModel.Generate(ctx, messages, callOpts...)
	if err != nil {
		return "", fmt.Errorf("LLM generation failed: %w", err)
	}
	return response.Content, nil
}
