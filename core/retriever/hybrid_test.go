package retriever

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/schema"
	"github.com/laborguard/laborguard/core/vector_store"
)

// fakeEmbedder 返回固定查询向量
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int {
	return len(f.vector)
}

// failingStore 稀疏检索失败的存根
type failingStore struct {
	vector_store.VectorStore
}

func (s *failingStore) QueryDense(ctx context.Context, vector []float32, topK int) ([]vector_store.SearchHit, error) {
	return nil, nil
}

func (s *failingStore) QuerySparse(ctx context.Context, query string, topK int) ([]vector_store.SearchHit, error) {
	return nil, errors.New(errors.ErrRetrieval, "vector store unreachable")
}

func newStoreWithRecords(t *testing.T) *vector_store.MemoryStore {
	t.Helper()
	store := vector_store.NewMemoryStore("test", 2)
	records := []vector_store.Record{
		{ID: "a", Text: "劳动者每日工作时间不超过八小时", DocumentID: "labor_law", ArticleNumber: "第三十六条", Vector: []float32{1, 0}},
		{ID: "b", Text: "用人单位应当保证劳动者每周至少休息一日", DocumentID: "labor_law", ArticleNumber: "第三十八条", Vector: []float32{0.9, 0.1}},
		{ID: "c", Text: "劳动合同应当以书面形式订立", DocumentID: "contract_law", ArticleNumber: "第十条", Vector: []float32{0, 1}},
	}
	require.NoError(t, store.Upsert(context.Background(), records))
	return store
}

func TestRetrieveMergesDenseAndSparse(t *testing.T) {
	store := newStoreWithRecords(t)
	r := NewHybridRetriever(&fakeEmbedder{vector: []float32{1, 0}}, store, 10)

	candidates, err := r.Retrieve(context.Background(), "工作时间")
	require.NoError(t, err)
	require.NotEmpty(t, candidates)

	// 同一切片在两路召回中只出现一次
	seen := make(map[string]bool)
	for _, cand := range candidates {
		assert.False(t, seen[cand.Chunk.StableID], "duplicate chunk %s", cand.Chunk.StableID)
		seen[cand.Chunk.StableID] = true
	}

	// 按分数降序
	for i := 1; i < len(candidates); i++ {
		assert.GreaterOrEqual(t, candidates[i-1].Score, candidates[i].Score)
	}

	// 切片a与查询向量同向且命中"工作时间"，双路命中应标记hybrid且排第一
	assert.Equal(t, "a", candidates[0].Chunk.StableID)
	assert.Equal(t, schema.MethodHybrid, candidates[0].Method)
}

func TestRetrieveKeepsMaxScoreOnMerge(t *testing.T) {
	store := newStoreWithRecords(t)
	r := NewHybridRetriever(&fakeEmbedder{vector: []float32{1, 0}}, store, 10)

	candidates, err := r.Retrieve(context.Background(), "工作时间")
	require.NoError(t, err)

	// 切片a稠密分数为1.0（同向），稀疏归一化最高也是1.0，合并后保留较高者
	assert.InDelta(t, 1.0, candidates[0].Score, 1e-9)
}

func TestRetrieveTopKTruncation(t *testing.T) {
	store := newStoreWithRecords(t)
	r := NewHybridRetriever(&fakeEmbedder{vector: []float32{1, 0}}, store, 2)

	candidates, err := r.Retrieve(context.Background(), "劳动合同工作时间")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(candidates), 2)
}

func TestRetrieveEmbeddingFailure(t *testing.T) {
	store := newStoreWithRecords(t)
	r := NewHybridRetriever(&fakeEmbedder{err: errors.New(errors.ErrEmbeddingFailed, "embedding service down")}, store, 10)

	_, err := r.Retrieve(context.Background(), "工作时间")
	assert.True(t, errors.HasCode(err, errors.ErrEmbeddingFailed))
}

func TestRetrieveStoreFailure(t *testing.T) {
	r := NewHybridRetriever(&fakeEmbedder{vector: []float32{1, 0}}, &failingStore{}, 10)

	_, err := r.Retrieve(context.Background(), "工作时间")
	assert.True(t, errors.HasCode(err, errors.ErrRetrieval))
}
