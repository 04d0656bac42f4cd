package provider

import (
	"context"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/laborguard/laborguard/core/common"
	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
)

// openAIGenerator 基于eino的OpenAI兼容对话模型
type openAIGenerator struct {
	chatModel einoModel.BaseChatModel
}

func newOpenAIGenerator(ctx context.Context, conf config.ProviderConfig, rag config.RAGConfig) (*openAIGenerator, error) {
	if conf.APIKey == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "generation apiKey is required")
	}
	if conf.Model == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "generation model is required")
	}

	cm, err := openaimodel.NewChatModel(ctx, &openaimodel.ChatModelConfig{
		APIKey:      conf.APIKey,
		BaseURL:     conf.BaseURL,
		Model:       conf.Model,
		Temperature: common.Of(float32(rag.Temperature)),
		TopP:        common.Of(float32(rag.TopP)),
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrProviderCall, err, "failed to create openai chat model")
	}

	return &openAIGenerator{chatModel: cm}, nil
}

func (g *openAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", errors.Wrap(errors.ErrLLMCallFailed, err, "openai generation failed")
	}
	return resp.Content, nil
}
