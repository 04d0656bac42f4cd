package provider

import (
	"context"

	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
)

// Embedder 文本向量化能力
type Embedder interface {
	// EmbedStrings 批量向量化，返回向量与输入一一对应
	EmbedStrings(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension 返回该提供方输出的向量维度
	Dimension() int
}

// RerankScore 单个文档的重排结果，Index指向输入documents的下标
type RerankScore struct {
	Index int
	Score float64
}

// Reranker 相关性重排能力，一次调用对整批文档打分
type Reranker interface {
	Rerank(ctx context.Context, query string, documents []string) ([]RerankScore, error)
}

// Generator 文本生成能力
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// Set 三种能力各选一个提供方，启动时装配完成
type Set struct {
	Embedder  Embedder
	Reranker  Reranker
	Generator Generator
}

// NewSet 按配置装配提供方，未注册的名称返回 ErrProviderUnknown
func NewSet(ctx context.Context, cfg *config.Config) (*Set, error) {
	var (
		set Set
		err error
	)

	switch cfg.Embedding.Name {
	case "openai":
		set.Embedder, err = newOpenAIEmbedder(ctx, cfg.Embedding, cfg.Dim)
	case "dashscope", "http":
		set.Embedder, err = newHTTPEmbedder(cfg.Embedding, cfg.Dim)
	default:
		err = errors.Newf(errors.ErrProviderUnknown, "unknown embedding provider: %s", cfg.Embedding.Name)
	}
	if err != nil {
		return nil, err
	}

	switch cfg.Rerank.Name {
	case "http":
		set.Reranker, err = newHTTPReranker(cfg.Rerank)
	case "local":
		set.Reranker = newLocalReranker()
	default:
		err = errors.Newf(errors.ErrProviderUnknown, "unknown rerank provider: %s", cfg.Rerank.Name)
	}
	if err != nil {
		return nil, err
	}

	switch cfg.Generation.Name {
	case "openai":
		set.Generator, err = newOpenAIGenerator(ctx, cfg.Generation, cfg.RAG)
	case "qwen":
		set.Generator, err = newQwenGenerator(ctx, cfg.Generation, cfg.RAG)
	case "deepseek":
		set.Generator, err = newRawGenerator(cfg.Generation, cfg.RAG)
	default:
		err = errors.Newf(errors.ErrProviderUnknown, "unknown generation provider: %s", cfg.Generation.Name)
	}
	if err != nil {
		return nil, err
	}

	return &set, nil
}
