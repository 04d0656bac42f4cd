package config

import (
	"context"
	"os"
	"strconv"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/laborguard/laborguard/core/errors"
)

// ProviderConfig 单个能力提供方的接入配置
type ProviderConfig struct {
	Name    string // 提供方名称（如 openai/dashscope/qwen/local）
	APIKey  string
	BaseURL string
	Model   string
}

// RAGConfig 检索增强问答的流水线参数
type RAGConfig struct {
	TopK           int     // 初次召回候选数量
	RerankTopN     int     // 重排后保留数量
	RerankMinScore float64 // 重排分数下限，[0,1]
	Temperature    float64 // 生成温度
	TopP           float64 // 生成 nucleus sampling top-p
}

// IngestConfig 文档入库参数
type IngestConfig struct {
	ChunkSize   int // 单个切片最大字符数（rune计）
	OverlapSize int // 超长条文切分时的重叠字符数
	Concurrency int // 批量入库的文档级并发数
}

// Config 进程级配置，启动时装载并校验一次
type Config struct {
	Embedding  ProviderConfig
	Rerank     ProviderConfig
	Generation ProviderConfig

	RAG    RAGConfig
	Ingest IngestConfig

	// 向量库
	VectorStoreType string // milvus/pgvector/memory
	Collection      string // 集合/表名
	Dim             int    // 向量维度，所有embedding提供方必须一致

	// 文档登记库（gorm）
	RegistryDriver string // postgres/mysql，空表示禁用登记库
	RegistryDSN    string
}

// Load 从配置文件读取配置，环境变量可覆盖RAG核心参数。
// 校验失败返回 ErrInvalidConfig，调用方应在启动期直接退出。
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Embedding: ProviderConfig{
			Name:    g.Cfg().MustGet(ctx, "providers.embedding.name", "dashscope").String(),
			APIKey:  g.Cfg().MustGet(ctx, "providers.embedding.apiKey", "").String(),
			BaseURL: g.Cfg().MustGet(ctx, "providers.embedding.baseURL", "").String(),
			Model:   g.Cfg().MustGet(ctx, "providers.embedding.model", "text-embedding-v1").String(),
		},
		Rerank: ProviderConfig{
			Name:    g.Cfg().MustGet(ctx, "providers.rerank.name", "http").String(),
			APIKey:  g.Cfg().MustGet(ctx, "providers.rerank.apiKey", "").String(),
			BaseURL: g.Cfg().MustGet(ctx, "providers.rerank.baseURL", "").String(),
			Model:   g.Cfg().MustGet(ctx, "providers.rerank.model", "gte-rerank").String(),
		},
		Generation: ProviderConfig{
			Name:    g.Cfg().MustGet(ctx, "providers.generation.name", "qwen").String(),
			APIKey:  g.Cfg().MustGet(ctx, "providers.generation.apiKey", "").String(),
			BaseURL: g.Cfg().MustGet(ctx, "providers.generation.baseURL", "").String(),
			Model:   g.Cfg().MustGet(ctx, "providers.generation.model", "qwen-plus").String(),
		},
		RAG: RAGConfig{
			TopK:           g.Cfg().MustGet(ctx, "rag.topK", 20).Int(),
			RerankTopN:     g.Cfg().MustGet(ctx, "rag.rerankTopN", 20).Int(),
			RerankMinScore: g.Cfg().MustGet(ctx, "rag.rerankMinScore", 0.5).Float64(),
			Temperature:    g.Cfg().MustGet(ctx, "rag.temperature", 0.7).Float64(),
			TopP:           g.Cfg().MustGet(ctx, "rag.topP", 0.9).Float64(),
		},
		Ingest: IngestConfig{
			ChunkSize:   g.Cfg().MustGet(ctx, "ingest.chunkSize", 1000).Int(),
			OverlapSize: g.Cfg().MustGet(ctx, "ingest.overlapSize", 100).Int(),
			Concurrency: g.Cfg().MustGet(ctx, "ingest.concurrency", 5).Int(),
		},
		VectorStoreType: g.Cfg().MustGet(ctx, "vectorStore.type", "milvus").String(),
		Collection:      g.Cfg().MustGet(ctx, "vectorStore.collection", "chinese_labor_laws").String(),
		Dim:             g.Cfg().MustGet(ctx, "vectorStore.dim", 1024).Int(),
		RegistryDriver:  g.Cfg().MustGet(ctx, "registry.driver", "").String(),
		RegistryDSN:     g.Cfg().MustGet(ctx, "registry.dsn", "").String(),
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides 环境变量覆盖RAG核心参数，便于部署时微调而不改配置文件。
// 无法解析的值视为部署错误，启动期直接失败而非回落默认值。
func applyEnvOverrides(cfg *Config) error {
	if err := overrideInt("RAG_TOP_K", &cfg.RAG.TopK); err != nil {
		return err
	}
	if err := overrideInt("RAG_RERANK_TOP_N", &cfg.RAG.RerankTopN); err != nil {
		return err
	}
	if err := overrideFloat("RAG_RERANK_MIN_SCORE", &cfg.RAG.RerankMinScore); err != nil {
		return err
	}
	if err := overrideFloat("LLM_TEMPERATURE", &cfg.RAG.Temperature); err != nil {
		return err
	}
	return overrideFloat("LLM_TOP_P", &cfg.RAG.TopP)
}

func overrideInt(key string, dst *int) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return errors.Newf(errors.ErrInvalidConfig, "env %s must be an integer, got %q", key, s)
	}
	*dst = v
	return nil
}

func overrideFloat(key string, dst *float64) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Newf(errors.ErrInvalidConfig, "env %s must be a number, got %q", key, s)
	}
	*dst = v
	return nil
}

// Validate 校验配置值域，非法值在启动期直接失败
func (c *Config) Validate() error {
	if c.RAG.TopK <= 0 {
		return errors.Newf(errors.ErrInvalidConfig, "rag.topK must be positive, got %d", c.RAG.TopK)
	}
	if c.RAG.RerankTopN <= 0 {
		return errors.Newf(errors.ErrInvalidConfig, "rag.rerankTopN must be positive, got %d", c.RAG.RerankTopN)
	}
	if c.RAG.RerankMinScore < 0 || c.RAG.RerankMinScore > 1 {
		return errors.Newf(errors.ErrInvalidConfig, "rag.rerankMinScore must be in [0,1], got %v", c.RAG.RerankMinScore)
	}
	if c.RAG.Temperature < 0 || c.RAG.Temperature > 2 {
		return errors.Newf(errors.ErrInvalidConfig, "rag.temperature must be in [0,2], got %v", c.RAG.Temperature)
	}
	if c.RAG.TopP <= 0 || c.RAG.TopP > 1 {
		return errors.Newf(errors.ErrInvalidConfig, "rag.topP must be in (0,1], got %v", c.RAG.TopP)
	}
	if c.Dim <= 0 {
		return errors.Newf(errors.ErrInvalidConfig, "vectorStore.dim must be positive, got %d", c.Dim)
	}
	if c.Collection == "" {
		return errors.New(errors.ErrInvalidConfig, "vectorStore.collection is required")
	}
	if c.Ingest.ChunkSize <= 0 {
		return errors.Newf(errors.ErrInvalidConfig, "ingest.chunkSize must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.OverlapSize < 0 || c.Ingest.OverlapSize >= c.Ingest.ChunkSize {
		return errors.Newf(errors.ErrInvalidConfig, "ingest.overlapSize must be in [0, chunkSize), got %d", c.Ingest.OverlapSize)
	}
	if c.Ingest.Concurrency <= 0 {
		c.Ingest.Concurrency = 1
	}
	return nil
}
