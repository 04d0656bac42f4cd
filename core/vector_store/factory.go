package vector_store

import (
	"context"

	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
)

// NewVectorStore 按配置创建向量库实例
func NewVectorStore(ctx context.Context, cfg *config.Config) (VectorStore, error) {
	switch VectorStoreType(cfg.VectorStoreType) {
	case VectorStoreTypeMilvus:
		return InitializeMilvusStore(ctx, cfg)
	case VectorStoreTypePostgreSQL:
		return InitializePostgresStore(ctx, cfg)
	case VectorStoreTypeMemory:
		return NewMemoryStore(cfg.Collection, cfg.Dim), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidConfig, "unknown vector store type: %s", cfg.VectorStoreType)
	}
}
