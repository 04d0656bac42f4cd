package cmd

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/convert"
	"github.com/laborguard/laborguard/core/generate"
	"github.com/laborguard/laborguard/core/ingest"
	"github.com/laborguard/laborguard/core/provider"
	"github.com/laborguard/laborguard/core/rag"
	"github.com/laborguard/laborguard/core/rerank"
	"github.com/laborguard/laborguard/core/retriever"
	"github.com/laborguard/laborguard/core/vector_store"
	"github.com/laborguard/laborguard/internal/docstore"
	"github.com/laborguard/laborguard/internal/registry"
)

// app 进程级组件集合，serve与ingest命令共用同一套装配
type app struct {
	cfg          *config.Config
	providers    *provider.Set
	store        vector_store.VectorStore
	registry     *registry.Registry
	pipeline     *ingest.Pipeline
	orchestrator *rag.Orchestrator
	converter    *convert.Converter
}

// buildApp 按配置装配全部组件，任一环节失败即返回错误
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}

	providers, err := provider.NewSet(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := vector_store.NewVectorStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err = store.EnsureCollection(ctx); err != nil {
		return nil, err
	}

	var reg *registry.Registry
	var recorder ingest.DocumentRecorder
	if cfg.RegistryDriver != "" {
		reg, err = registry.New(ctx, cfg.RegistryDriver, cfg.RegistryDSN)
		if err != nil {
			return nil, err
		}
		recorder = reg
	}

	pipeline, err := ingest.NewPipeline(ctx, providers.Embedder, store, recorder, cfg.Ingest)
	if err != nil {
		return nil, err
	}

	converter, err := convert.NewConverter(ctx)
	if err != nil {
		return nil, err
	}

	gate := generate.NewKeywordGate()
	orchestrator := rag.NewOrchestrator(
		retriever.NewHybridRetriever(providers.Embedder, store, cfg.RAG.TopK),
		rerank.NewReranker(providers.Reranker, cfg.RAG.RerankTopN, cfg.RAG.RerankMinScore),
		generate.NewAnswerGenerator(providers.Generator, gate),
		gate,
	)

	g.Log().Info(ctx, "all components initialized")
	return &app{
		cfg:          cfg,
		providers:    providers,
		store:        store,
		registry:     reg,
		pipeline:     pipeline,
		orchestrator: orchestrator,
		converter:    converter,
	}, nil
}

// newSource 按配置创建文档来源
func (a *app) newSource(ctx context.Context) (ingest.Source, error) {
	sourceType := g.Cfg().MustGet(ctx, "docSource.type", "local").String()
	switch sourceType {
	case "minio":
		return docstore.NewMinioSource(ctx,
			g.Cfg().MustGet(ctx, "docSource.endpoint", "localhost:9000").String(),
			g.Cfg().MustGet(ctx, "docSource.accessKey", "").String(),
			g.Cfg().MustGet(ctx, "docSource.secretKey", "").String(),
			g.Cfg().MustGet(ctx, "docSource.bucket", "labor-laws").String(),
			g.Cfg().MustGet(ctx, "docSource.ssl", false).Bool(),
		)
	default:
		return docstore.NewLocalSource(
			g.Cfg().MustGet(ctx, "docSource.dir", "./data/laws").String(),
		)
	}
}

// close 释放外部连接
func (a *app) close(ctx context.Context) {
	if err := a.store.Close(); err != nil {
		g.Log().Warningf(ctx, "failed to close vector store: %v", err)
	}
	if a.registry != nil {
		if err := a.registry.Close(); err != nil {
			g.Log().Warningf(ctx, "failed to close registry: %v", err)
		}
	}
}
