package pgvector

import (
	"fmt"
)

// TableSchema defines the standard table layout for law chunk storage in
// PostgreSQL with the pgvector extension. text_tokens holds the
// pre-tokenized chunk content so that full-text search works for Chinese
// legal text, which has no whitespace word boundaries.
type TableSchema struct{}

// GenerateCreateTableSQL 生成建表SQL
func (TableSchema) GenerateCreateTableSQL(schema, table string, dim int) string {
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s.%s (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			text_tokens TEXT NOT NULL DEFAULT '',
			vector vector(%d),
			document_id TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, schema, table, dim)
}

// GenerateCreateIndexSQL 生成索引SQL：向量HNSW索引、文档ID索引、全文检索GIN索引
func (TableSchema) GenerateCreateIndexSQL(schema, table string) []string {
	return []string{
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_vector ON %s.%s USING hnsw (vector vector_cosine_ops)`, table, schema, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_document_id ON %s.%s (document_id)`, table, schema, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_fts ON %s.%s USING gin (to_tsvector('simple', text_tokens))`, table, schema, table),
	}
}
