package provider

import (
	"context"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
)

// rawGenerator 直连OpenAI兼容接口的生成客户端（DeepSeek等），
// 不走eino组件，保留对思考型模型原始输出的完整控制。
type rawGenerator struct {
	client      *goopenai.Client
	model       string
	temperature float32
	topP        float32
}

func newRawGenerator(conf config.ProviderConfig, rag config.RAGConfig) (*rawGenerator, error) {
	if conf.APIKey == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "generation apiKey is required")
	}
	if conf.Model == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "generation model is required")
	}

	clientConfig := goopenai.DefaultConfig(conf.APIKey)
	if conf.BaseURL != "" {
		clientConfig.BaseURL = conf.BaseURL
	}

	return &rawGenerator{
		client:      goopenai.NewClientWithConfig(clientConfig),
		model:       conf.Model,
		temperature: float32(rag.Temperature),
		topP:        float32(rag.TopP),
	}, nil
}

func (g *rawGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	req := goopenai.ChatCompletionRequest{
		Model: g.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: system},
			{Role: goopenai.ChatMessageRoleUser, Content: user},
		},
		Temperature: g.temperature,
		TopP:        g.topP,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", errors.Wrap(errors.ErrLLMCallFailed, err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(errors.ErrLLMCallFailed, "chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
