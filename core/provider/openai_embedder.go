package provider

import (
	"context"

	openaiembed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"

	"github.com/laborguard/laborguard/core/common"
	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
)

// openAIEmbedder 基于eino的OpenAI embedding组件
type openAIEmbedder struct {
	embedder embedding.Embedder
	dim      int
}

func newOpenAIEmbedder(ctx context.Context, conf config.ProviderConfig, dim int) (*openAIEmbedder, error) {
	if conf.APIKey == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "embedding apiKey is required")
	}
	if conf.Model == "" {
		return nil, errors.New(errors.ErrInvalidConfig, "embedding model is required")
	}

	emb, err := openaiembed.NewEmbedder(ctx, &openaiembed.EmbeddingConfig{
		APIKey:     conf.APIKey,
		BaseURL:    conf.BaseURL,
		Model:      conf.Model,
		Dimensions: common.Of(dim),
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrProviderCall, err, "failed to create openai embedder")
	}

	return &openAIEmbedder{embedder: emb, dim: dim}, nil
}

func (e *openAIEmbedder) Dimension() int {
	return e.dim
}

func (e *openAIEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	vectors, err := e.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrEmbeddingFailed, err, "openai embedding failed")
	}
	if len(vectors) != len(texts) {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "response data length (%d) doesn't match input length (%d)", len(vectors), len(texts))
	}

	result := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if len(vec) != e.dim {
			return nil, errors.Newf(errors.ErrDimensionMismatch, "embedding dimension %d does not match configured dimension %d", len(vec), e.dim)
		}
		float32Vec := make([]float32, len(vec))
		for j, v := range vec {
			float32Vec[j] = float32(v)
		}
		result[i] = float32Vec
	}

	return result, nil
}
