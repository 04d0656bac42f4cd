package provider

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/qwen"
	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/laborguard/laborguard/core/common"
	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
)

// qwenGenerator 通义千问对话模型
type qwenGenerator struct {
	chatModel einoModel.BaseChatModel
}

func newQwenGenerator(ctx context.Context, conf config.ProviderConfig, rag config.RAGConfig) (*qwenGenerator, error) {
	if conf.APIKey == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "generation apiKey is required")
	}
	if conf.Model == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "generation model is required")
	}

	cm, err := qwen.NewChatModel(ctx, &qwen.ChatModelConfig{
		APIKey:      conf.APIKey,
		BaseURL:     conf.BaseURL,
		Model:       conf.Model,
		Temperature: common.Of(float32(rag.Temperature)),
		TopP:        common.Of(float32(rag.TopP)),
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrProviderCall, err, "failed to create qwen chat model")
	}

	return &qwenGenerator{chatModel: cm}, nil
}

func (g *qwenGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	resp, err := g.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", errors.Wrap(errors.ErrLLMCallFailed, err, "qwen generation failed")
	}
	return resp.Content, nil
}
