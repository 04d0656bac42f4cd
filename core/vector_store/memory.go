package vector_store

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/laborguard/laborguard/core/errors"
)

// MemoryStore 进程内向量存储，用于测试与无外部依赖的本地运行
type MemoryStore struct {
	mu         sync.RWMutex
	collection string
	dim        int
	records    map[string]Record
}

// NewMemoryStore 创建内存向量存储
func NewMemoryStore(collection string, dim int) *MemoryStore {
	return &MemoryStore{
		collection: collection,
		dim:        dim,
		records:    make(map[string]Record),
	}
}

func (s *MemoryStore) EnsureCollection(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Upsert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range records {
		if len(rec.Vector) != s.dim {
			return errors.Newf(errors.ErrDimensionMismatch, "record %s vector dimension %d does not match configured dimension %d", rec.ID, len(rec.Vector), s.dim)
		}
		s.records[rec.ID] = rec
	}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, ids []string) (map[string]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]Record, len(ids))
	for _, id := range ids {
		if rec, ok := s.records[id]; ok {
			result[id] = rec
		}
	}
	return result, nil
}

func (s *MemoryStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, rec := range s.records {
		if rec.DocumentID == documentID {
			delete(s.records, id)
		}
	}
	return nil
}

// QueryDense 全量余弦相似度扫描，分数归一化到[0,1]
func (s *MemoryStore) QueryDense(ctx context.Context, vector []float32, topK int) ([]SearchHit, error) {
	if len(vector) != s.dim {
		return nil, errors.Newf(errors.ErrDimensionMismatch, "query vector dimension %d does not match configured dimension %d", len(vector), s.dim)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]SearchHit, 0, len(s.records))
	for _, rec := range s.records {
		sim := cosineSimilarity(vector, rec.Vector)
		hits = append(hits, SearchHit{Record: rec, Score: (sim + 1.0) / 2.0})
	}

	sortHitsByScoreDesc(hits)
	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// QuerySparse 全量BM25打分，分数归一化到[0,1]
func (s *MemoryStore) QuerySparse(ctx context.Context, query string, topK int) ([]SearchHit, error) {
	s.mu.RLock()
	records := make([]Record, 0, len(s.records))
	for _, rec := range s.records {
		records = append(records, rec)
	}
	s.mu.RUnlock()

	// 固定顺序，保证同一查询的打分结果可复现
	sort.Slice(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})

	return bm25TopK(query, records, topK), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Count 返回当前记录数，测试用
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sortHitsByScoreDesc 按分数降序稳定排序，同分按ID升序保证确定性
func sortHitsByScoreDesc(hits []SearchHit) {
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})
}
