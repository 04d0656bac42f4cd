package vector_store

import (
	"context"
)

// VectorStoreType 向量库类型
type VectorStoreType string

const (
	VectorStoreTypeMilvus     VectorStoreType = "milvus"
	VectorStoreTypePostgreSQL VectorStoreType = "pgvector"
	VectorStoreTypeMemory     VectorStoreType = "memory"
)

// Record 向量库中的一条切片记录
type Record struct {
	ID            string
	Text          string
	Vector        []float32
	DocumentID    string
	DocumentTitle string
	ArticleNumber string
	ChunkIndex    int
	Fingerprint   string
}

// SearchHit 单次检索命中，分数已归一化到[0,1]
type SearchHit struct {
	Record Record
	Score  float64
}

// VectorStore 向量库抽象。同一集合内的记录以切片StableID为主键，
// Upsert按主键覆盖，幂等入库依赖该语义。
type VectorStore interface {
	// EnsureCollection 确保集合存在且维度一致，不存在则创建
	EnsureCollection(ctx context.Context) error
	// Upsert 按ID写入或覆盖记录
	Upsert(ctx context.Context, records []Record) error
	// Get 按ID批量读取记录（不含向量），用于指纹比对
	Get(ctx context.Context, ids []string) (map[string]Record, error)
	// DeleteByDocumentID 删除指定文档的全部切片
	DeleteByDocumentID(ctx context.Context, documentID string) error
	// QueryDense 稠密检索：按查询向量返回topK个最相似记录
	QueryDense(ctx context.Context, vector []float32, topK int) ([]SearchHit, error)
	// QuerySparse 稀疏检索：按词法相关性返回topK个记录
	QuerySparse(ctx context.Context, query string, topK int) ([]SearchHit, error)
	// Close 释放底层连接
	Close() error
}
