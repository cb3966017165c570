package chat

import (
	"context"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/wildsync/internal/common"
)

const systemPrompt = "You are an AI assistant for forest management."

// OpenAI answers through an OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewOpenAI returns nil when no API key is configured.
func NewOpenAI(cfg common.LLMConfig, logger *zap.Logger) *OpenAI {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}
	return &OpenAI{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger.Named("llm"),
	}
}

func (o *OpenAI) Reply(ctx context.Context, question string, fc ForestContext) (string, bool) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Context: " + fc.String() + "\nQuestion: " + question},
		},
		Temperature: o.temperature,
	})
	if err != nil {
		o.logger.Warn("chat.llm.failed", zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return "", false
	}
	if len(resp.Choices) == 0 {
		o.logger.Warn("chat.llm.no_choices")
		return "", false
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", false
	}
	o.logger.Info("chat.llm.ok",
		zap.String("model", o.model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return content, true
}
