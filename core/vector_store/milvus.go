package vector_store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/laborguard/laborguard/core/common"
	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
	milvusModel "github.com/laborguard/laborguard/internal/model/milvus"
)

// sparseCandidateLimit 稀疏检索候选集上限。Milvus无词法索引，
// 稀疏检索为客户端BM25，语料限定为有限部法律法规，全量在此上限内。
const sparseCandidateLimit = 8192

// MilvusStore Milvus向量数据库实现
type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dim        int
}

// recordMetadata metadata JSON字段的结构
type recordMetadata struct {
	DocumentTitle string `json:"document_title"`
	ArticleNumber string `json:"article_number"`
	ChunkIndex    int    `json:"chunk_index"`
	Fingerprint   string `json:"fingerprint"`
}

// InitializeMilvusStore 初始化Milvus向量存储
func InitializeMilvusStore(ctx context.Context, cfg *config.Config) (VectorStore, error) {
	address := g.Cfg().MustGet(ctx, "milvus.address", "").String()
	database := g.Cfg().MustGet(ctx, "milvus.database", "default").String()

	if address == "" {
		return nil, errors.New(errors.ErrVectorStoreInit, "milvus.address is required but not found in config file")
	}

	g.Log().Infof(ctx, "Connecting to Milvus at: %s, database: %s", address, database)

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: address,
		DBName:  database,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrVectorStoreInit, err, fmt.Sprintf("failed to create milvus client (address: %s, database: %s)", address, database))
	}

	return &MilvusStore{
		client:     client,
		collection: cfg.Collection,
		dim:        cfg.Dim,
	}, nil
}

// EnsureCollection 集合不存在则创建并建HNSW索引；存在则校验向量维度
func (m *MilvusStore) EnsureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(m.collection))
	if err != nil {
		return errors.Wrap(errors.ErrVectorStoreInit, err, "failed to check if collection exists")
	}

	if has {
		desc, err := m.client.DescribeCollection(ctx, milvusclient.NewDescribeCollectionOption(m.collection))
		if err != nil {
			return errors.Wrap(errors.ErrVectorStoreInit, err, "failed to describe collection")
		}
		for _, field := range desc.Schema.Fields {
			if field.Name == "vector" {
				if dimStr, ok := field.TypeParams["dim"]; ok && dimStr != fmt.Sprintf("%d", m.dim) {
					return errors.Newf(errors.ErrDimensionMismatch, "collection '%s' has dimension %s, configured dimension is %d", m.collection, dimStr, m.dim)
				}
			}
		}
		if !desc.Loaded {
			if _, err := m.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(m.collection)); err != nil {
				return errors.Wrap(errors.ErrVectorStoreInit, err, "failed to load collection")
			}
		}
		return nil
	}

	collSchema := &entity.Schema{
		CollectionName: m.collection,
		Description:    "存储法律条文切片及其向量",
		AutoID:         false,
		Fields:         milvusModel.GetStandardCollectionFields(m.dim),
	}

	err = m.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(m.collection, collSchema).WithIndexOptions(
		milvusclient.NewCreateIndexOption(m.collection, "vector", index.NewHNSWIndex(entity.COSINE, 64, 128))))
	if err != nil {
		return errors.Wrap(errors.ErrVectorStoreInit, err, "failed to create Milvus collection")
	}

	if _, err := m.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(m.collection)); err != nil {
		return errors.Wrap(errors.ErrVectorStoreInit, err, "failed to load Milvus collection")
	}

	g.Log().Infof(ctx, "Collection '%s' created with dimension %d, index built and loaded", m.collection, m.dim)
	return nil
}

// Upsert 按切片ID写入或覆盖记录
func (m *MilvusStore) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	texts := make([]string, len(records))
	vectors := make([][]float32, len(records))
	documentIds := make([]string, len(records))
	metadataList := make([][]byte, len(records))

	for idx, rec := range records {
		if len(rec.Vector) != m.dim {
			return errors.Newf(errors.ErrDimensionMismatch, "record %s vector dimension %d does not match collection dimension %d", rec.ID, len(rec.Vector), m.dim)
		}
		ids[idx] = rec.ID
		texts[idx] = truncateString(rec.Text, 65535)
		vectors[idx] = rec.Vector
		documentIds[idx] = rec.DocumentID

		metaBytes, err := json.Marshal(recordMetadata{
			DocumentTitle: rec.DocumentTitle,
			ArticleNumber: rec.ArticleNumber,
			ChunkIndex:    rec.ChunkIndex,
			Fingerprint:   rec.Fingerprint,
		})
		if err != nil {
			return errors.Wrap(errors.ErrVectorInsert, err, "failed to marshal metadata")
		}
		metadataList[idx] = metaBytes
	}

	columns := []column.Column{
		column.NewColumnVarChar("id", ids),
		column.NewColumnVarChar("text", texts),
		column.NewColumnFloatVector("vector", m.dim, vectors),
		column.NewColumnVarChar("document_id", documentIds),
		column.NewColumnJSONBytes("metadata", metadataList),
	}

	upsertOpt := milvusclient.NewColumnBasedInsertOption(m.collection, columns...)
	result, err := m.client.Upsert(ctx, upsertOpt)
	if err != nil {
		return errors.Wrap(errors.ErrVectorInsert, err, "failed to upsert vectors")
	}

	g.Log().Infof(ctx, "Successfully upserted %d vectors into collection '%s'", result.UpsertCount, m.collection)
	return nil
}

// Get 按ID批量读取记录，用于入库前的指纹比对
func (m *MilvusStore) Get(ctx context.Context, ids []string) (map[string]Record, error) {
	result := make(map[string]Record, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf(`"%s"`, sanitizeMilvusString(id))
	}
	filterExpr := fmt.Sprintf(`id in [%s]`, strings.Join(quoted, ", "))

	rs, err := m.client.Query(ctx, milvusclient.NewQueryOption(m.collection).
		WithFilter(filterExpr).
		WithOutputFields("id", "text", "document_id", "metadata").
		WithConsistencyLevel(entity.ClStrong))
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to query records by id")
	}

	records, err := m.parseRecords(rs.Fields)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		result[rec.ID] = rec
	}
	return result, nil
}

// DeleteByDocumentID 根据文档ID删除所有相关切片
func (m *MilvusStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	safeDocID := sanitizeMilvusString(documentID)
	filterExpr := fmt.Sprintf(`document_id == "%s"`, safeDocID)

	g.Log().Infof(ctx, "Deleting all chunks of document %s from collection %s", documentID, m.collection)

	deleteOpt := milvusclient.NewDeleteOption(m.collection).WithExpr(filterExpr)
	result, err := m.client.Delete(ctx, deleteOpt)
	if err != nil {
		return errors.Wrap(errors.ErrVectorInsert, err, fmt.Sprintf("failed to delete document %s", documentID))
	}

	g.Log().Infof(ctx, "Delete operation completed for document %s, affected rows: %d", documentID, result.DeleteCount)
	return nil
}

// QueryDense 稠密检索，COSINE分数归一化到[0,1]
func (m *MilvusStore) QueryDense(ctx context.Context, vector []float32, topK int) ([]SearchHit, error) {
	if len(vector) != m.dim {
		return nil, errors.Newf(errors.ErrDimensionMismatch, "query vector dimension %d does not match collection dimension %d", len(vector), m.dim)
	}

	searchOpt := milvusclient.NewSearchOption(m.collection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField("vector").
		WithOutputFields("id", "text", "document_id", "metadata").
		WithConsistencyLevel(entity.ClBounded)

	results, err := m.client.Search(ctx, searchOpt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "milvus search failed")
	}
	if len(results) == 0 {
		return []SearchHit{}, nil
	}

	records, err := m.parseRecords(results[0].Fields)
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(records))
	for i, rec := range records {
		score := 0.0
		if i < len(results[0].Scores) {
			// COSINE相似度范围[-1,1]，映射到[0,1]
			score = (float64(results[0].Scores[i]) + 1.0) / 2.0
		}
		hits = append(hits, SearchHit{Record: rec, Score: score})
	}
	return hits, nil
}

// QuerySparse 稀疏检索：拉取候选集后客户端BM25打分，分数归一化到[0,1]
func (m *MilvusStore) QuerySparse(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	rs, err := m.client.Query(ctx, milvusclient.NewQueryOption(m.collection).
		WithFilter(`id != ""`).
		WithOutputFields("id", "text", "document_id", "metadata").
		WithLimit(sparseCandidateLimit).
		WithConsistencyLevel(entity.ClBounded))
	if err != nil {
		return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to fetch sparse candidates")
	}

	records, err := m.parseRecords(rs.Fields)
	if err != nil {
		return nil, err
	}

	return bm25TopK(query, records, topK), nil
}

// Close 关闭Milvus连接
func (m *MilvusStore) Close() error {
	return m.client.Close(context.Background())
}

// parseRecords 将Milvus列数据转换为Record列表
func (m *MilvusStore) parseRecords(columns []column.Column) ([]Record, error) {
	if len(columns) == 0 {
		return []Record{}, nil
	}

	numRows := columns[0].Len()
	records := make([]Record, numRows)

	for _, col := range columns {
		switch col.Name() {
		case "id":
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil {
					return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to get id")
				}
				if str, ok := val.(string); ok {
					records[i].ID = str
				}
			}
		case "text":
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil {
					return nil, errors.Wrap(errors.ErrRetrieval, err, "failed to get text")
				}
				if str, ok := val.(string); ok {
					records[i].Text = str
				}
			}
		case "document_id":
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil {
					continue
				}
				if str, ok := val.(string); ok {
					records[i].DocumentID = str
				}
			}
		case "metadata":
			for i := 0; i < col.Len(); i++ {
				val, err := col.Get(i)
				if err != nil || val == nil {
					continue
				}

				var raw []byte
				switch v := val.(type) {
				case string:
					raw = []byte(v)
				case []byte:
					raw = v
				default:
					continue
				}

				var meta recordMetadata
				if err := json.Unmarshal(raw, &meta); err == nil {
					records[i].DocumentTitle = meta.DocumentTitle
					records[i].ArticleNumber = meta.ArticleNumber
					records[i].ChunkIndex = meta.ChunkIndex
					records[i].Fingerprint = meta.Fingerprint
				}
			}
		}
	}

	return records, nil
}

// Helper functions

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

// sanitizeMilvusString 转义filter表达式中的特殊字符，防止表达式注入
func sanitizeMilvusString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// bm25TopK 对候选记录做BM25打分并返回归一化的topK命中
func bm25TopK(query string, records []Record, topK int) []SearchHit {
	if len(records) == 0 {
		return []SearchHit{}
	}

	docs := make([]common.BM25Document, len(records))
	byID := make(map[string]Record, len(records))
	for i, rec := range records {
		docs[i] = common.BM25Document{ID: rec.ID, Content: rec.Text}
		byID[rec.ID] = rec
	}

	scorer := common.NewBM25Scorer(docs, common.DefaultBM25Parameters())
	scored := common.NormalizeBM25Scores(scorer.Score(query))

	hits := make([]SearchHit, 0, len(scored))
	for _, doc := range scored {
		if doc.Score <= 0 {
			continue
		}
		hits = append(hits, SearchHit{Record: byID[doc.ID], Score: doc.Score})
	}

	sortHitsByScoreDesc(hits)
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
