package vector_store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/laborguard/laborguard/core/common"
	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
	pgvectorModel "github.com/laborguard/laborguard/internal/model/pgvector"
)

// PostgresStore PostgreSQL向量数据库实现（pgvector + 全文检索）
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
	table  string
	dim    int
}

// InitializePostgresStore 初始化PostgreSQL向量存储
func InitializePostgresStore(ctx context.Context, cfg *config.Config) (VectorStore, error) {
	host := g.Cfg().MustGet(ctx, "postgres.host", "").String()
	port := g.Cfg().MustGet(ctx, "postgres.port", "5432").String()
	user := g.Cfg().MustGet(ctx, "postgres.user", "").String()
	password := g.Cfg().MustGet(ctx, "postgres.password", "").String()
	database := g.Cfg().MustGet(ctx, "postgres.database", "").String()
	sslMode := g.Cfg().MustGet(ctx, "postgres.sslmode", "disable").String()

	if host == "" || user == "" || database == "" {
		return nil, errors.New(errors.ErrVectorStoreInit, "postgres configuration is incomplete. Required: host, user, database")
	}

	var connStr string
	if password != "" {
		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, database, sslMode)
	} else {
		connStr = fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
			host, port, user, database, sslMode)
	}

	g.Log().Infof(ctx, "Connecting to PostgreSQL at: %s:%s, database: %s", host, port, database)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Wrap(errors.ErrVectorStoreInit, err, "failed to create postgres connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(errors.ErrVectorStoreInit, err, "failed to ping postgres")
	}

	return &PostgresStore{
		pool:   pool,
		schema: "vectors",
		table:  sanitizeTableName(cfg.Collection),
		dim:    cfg.Dim,
	}, nil
}

func (p *PostgresStore) fullTableName() string {
	return fmt.Sprintf("%s.%s", p.schema, p.table)
}

// EnsureCollection 确保pgvector扩展、schema、表与索引存在
func (p *PostgresStore) EnsureCollection(ctx context.Context) error {
	var extensionExists bool
	err := p.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'vector')").Scan(&extensionExists)
	if err != nil {
		return errors.Wrap(errors.ErrVectorStoreInit, err, "failed to check pgvector extension")
	}

	if !extensionExists {
		g.Log().Infof(ctx, "pgvector extension not found, attempting to create...")
		if _, err = p.pool.Exec(ctx, "CREATE EXTENSION vector"); err != nil {
			return errors.Wrap(errors.ErrVectorStoreInit, err, "failed to create pgvector extension")
		}
	}

	if _, err = p.pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", p.schema)); err != nil {
		return errors.Wrap(errors.ErrVectorStoreInit, err, "failed to create vectors schema")
	}

	tableSchema := pgvectorModel.TableSchema{}
	if _, err = p.pool.Exec(ctx, tableSchema.GenerateCreateTableSQL(p.schema, p.table, p.dim)); err != nil {
		return errors.Wrap(errors.ErrVectorStoreInit, err, fmt.Sprintf("failed to create table %s", p.fullTableName()))
	}

	for _, indexSQL := range tableSchema.GenerateCreateIndexSQL(p.schema, p.table) {
		if _, err = p.pool.Exec(ctx, indexSQL); err != nil {
			return errors.Wrap(errors.ErrVectorStoreInit, err, fmt.Sprintf("failed to create index on table %s", p.fullTableName()))
		}
	}

	g.Log().Infof(ctx, "Table '%s' ready with dimension %d and indexes", p.fullTableName(), p.dim)
	return nil
}

// Upsert 按切片ID写入或覆盖记录，单事务提交
func (p *PostgresStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrVectorInsert, err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	upsertSQL := fmt.Sprintf(`
		INSERT INTO %s (id, text, text_tokens, vector, document_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			text_tokens = EXCLUDED.text_tokens,
			vector = EXCLUDED.vector,
			document_id = EXCLUDED.document_id,
			metadata = EXCLUDED.metadata,
			updated_at = now()
	`, p.fullTableName())

	for _, rec := range records {
		if len(rec.Vector) != p.dim {
			return errors.Newf(errors.ErrDimensionMismatch, "record %s vector dimension %d does not match table dimension %d", rec.ID, len(rec.Vector), p.dim)
		}

		metaBytes, err := json.Marshal(recordMetadata{
			DocumentTitle: rec.DocumentTitle,
			ArticleNumber: rec.ArticleNumber,
			ChunkIndex:    rec.ChunkIndex,
			Fingerprint:   rec.Fingerprint,
		})
		if err != nil {
			return errors.Wrap(errors.ErrVectorInsert, err, "failed to marshal metadata")
		}

		tokens := strings.Join(common.Tokenize(rec.Text), " ")
		pgVector := pgvector.NewVector(rec.Vector)

		if _, err = tx.Exec(ctx, upsertSQL, rec.ID, rec.Text, tokens, pgVector, rec.DocumentID, metaBytes); err != nil {
			return errors.Wrap(errors.ErrVectorInsert, err, fmt.Sprintf("failed to upsert record %s", rec.ID))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(errors.ErrVectorInsert, err, "failed to commit transaction")
	}

	g.Log().Infof(ctx, "Successfully upserted %d vectors into table '%s'", len(records), p.fullTableName())
	return nil
}

// Get 按ID批量读取记录，用于入库前的指纹比对
func (p *PostgresStore) Get(ctx context.Context, ids []string) (map[string]Record, error) {
	result := make(map[string]Record, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	querySQL := fmt.Sprintf(`
		SELECT id, text, document_id, metadata
		FROM %s
		WHERE id = ANY($1)
	`, p.fullTableName())

	rows, err := p.pool.Query(ctx, querySQL, ids)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to query records by id")
	}
	defer rows.Close()

	for rows.Next() {
		var rec Record
		var metaBytes []byte
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.DocumentID, &metaBytes); err != nil {
			return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to scan row")
		}
		applyMetadata(&rec, metaBytes)
		result[rec.ID] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "error iterating over rows")
	}

	return result, nil
}

// DeleteByDocumentID 根据文档ID删除所有相关切片
func (p *PostgresStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	result, err := p.pool.Exec(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE document_id = $1", p.fullTableName()),
		documentID,
	)
	if err != nil {
		return errors.Wrap(errors.ErrVectorInsert, err, fmt.Sprintf("failed to delete document %s", documentID))
	}

	g.Log().Infof(ctx, "Delete operation completed for document %s, affected rows: %d", documentID, result.RowsAffected())
	return nil
}

// QueryDense 稠密检索，余弦相似度归一化到[0,1]
func (p *PostgresStore) QueryDense(ctx context.Context, vector []float32, topK int) ([]SearchHit, error) {
	if len(vector) != p.dim {
		return nil, errors.Newf(errors.ErrDimensionMismatch, "query vector dimension %d does not match table dimension %d", len(vector), p.dim)
	}

	// 余弦距离<=>范围[0,2]，(2-d)/2 映射到[0,1]
	searchSQL := fmt.Sprintf(`
		SELECT id, text, document_id, metadata,
		       (2 - (vector <=> $1)) / 2 AS similarity_score
		FROM %s
		ORDER BY vector <=> $1
		LIMIT $2
	`, p.fullTableName())

	rows, err := p.pool.Query(ctx, searchSQL, pgvector.NewVector(vector), topK)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to execute vector search")
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var rec Record
		var metaBytes []byte
		var score float64
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.DocumentID, &metaBytes, &score); err != nil {
			return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to scan row")
		}
		applyMetadata(&rec, metaBytes)
		hits = append(hits, SearchHit{Record: rec, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "error iterating over rows")
	}

	if hits == nil {
		hits = []SearchHit{}
	}
	return hits, nil
}

// QuerySparse 稀疏检索：基于分词列的全文检索，ts_rank按最大值归一化到[0,1]
func (p *PostgresStore) QuerySparse(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	tokens := strings.Join(common.Tokenize(query), " ")
	if tokens == "" {
		return []SearchHit{}, nil
	}

	searchSQL := fmt.Sprintf(`
		SELECT id, text, document_id, metadata,
		       ts_rank(to_tsvector('simple', text_tokens), plainto_tsquery('simple', $1)) AS rank
		FROM %s
		WHERE to_tsvector('simple', text_tokens) @@ plainto_tsquery('simple', $1)
		ORDER BY rank DESC
		LIMIT $2
	`, p.fullTableName())

	rows, err := p.pool.Query(ctx, searchSQL, tokens, topK)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to execute full-text search")
	}
	defer rows.Close()

	var hits []SearchHit
	maxRank := 0.0
	for rows.Next() {
		var rec Record
		var metaBytes []byte
		var rank float64
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.DocumentID, &metaBytes, &rank); err != nil {
			return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to scan row")
		}
		applyMetadata(&rec, metaBytes)
		hits = append(hits, SearchHit{Record: rec, Score: rank})
		if rank > maxRank {
			maxRank = rank
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "error iterating over rows")
	}

	if maxRank > 0 {
		for i := range hits {
			hits[i].Score = hits[i].Score / maxRank
		}
	}

	if hits == nil {
		hits = []SearchHit{}
	}
	return hits, nil
}

// Close 关闭连接池
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

// Helper functions

func sanitizeTableName(name string) string {
	// 只允许字母、数字和下划线
	var result strings.Builder
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_' {
			result.WriteRune(char)
		} else {
			result.WriteRune('_')
		}
	}
	return result.String()
}

func applyMetadata(rec *Record, metaBytes []byte) {
	if len(metaBytes) == 0 {
		return
	}
	var meta recordMetadata
	if err := json.Unmarshal(metaBytes, &meta); err == nil {
		rec.DocumentTitle = meta.DocumentTitle
		rec.ArticleNumber = meta.ArticleNumber
		rec.ChunkIndex = meta.ChunkIndex
		rec.Fingerprint = meta.Fingerprint
	}
}
