package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/generate"
	"github.com/laborguard/laborguard/core/provider"
	"github.com/laborguard/laborguard/core/rerank"
	"github.com/laborguard/laborguard/core/retriever"
	"github.com/laborguard/laborguard/core/vector_store"
)

type fakeEmbedder struct {
	vector []float32
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int {
	return len(f.vector)
}

// passthroughReranker 全部候选给满分
type passthroughReranker struct{}

func (passthroughReranker) Rerank(ctx context.Context, query string, documents []string) ([]provider.RerankScore, error) {
	scores := make([]provider.RerankScore, len(documents))
	for i := range documents {
		scores[i] = provider.RerankScore{Index: i, Score: 1.0}
	}
	return scores, nil
}

type fakeGenerator struct {
	answer string
	calls  int
}

func (f *fakeGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	f.calls++
	return f.answer, nil
}

// brokenStore 检索阶段必定失败
type brokenStore struct {
	vector_store.VectorStore
}

func (s *brokenStore) QueryDense(ctx context.Context, vector []float32, topK int) ([]vector_store.SearchHit, error) {
	return nil, errors.New(errors.ErrRetrieval, "vector store unreachable")
}

func (s *brokenStore) QuerySparse(ctx context.Context, query string, topK int) ([]vector_store.SearchHit, error) {
	return nil, errors.New(errors.ErrRetrieval, "vector store unreachable")
}

func newOrchestrator(t *testing.T, store vector_store.VectorStore, gen provider.Generator) *Orchestrator {
	t.Helper()
	gate := generate.NewKeywordGate()
	return NewOrchestrator(
		retriever.NewHybridRetriever(&fakeEmbedder{vector: []float32{1, 0}}, store, 10),
		rerank.NewReranker(passthroughReranker{}, 10, 0.5),
		generate.NewAnswerGenerator(gen, gate),
		gate,
	)
}

func seededStore(t *testing.T) *vector_store.MemoryStore {
	t.Helper()
	store := vector_store.NewMemoryStore("test", 2)
	err := store.Upsert(context.Background(), []vector_store.Record{
		{
			ID:            "a",
			Text:          "国家实行劳动者每日工作时间不超过八小时的工时制度",
			DocumentID:    "labor_law",
			DocumentTitle: "中华人民共和国劳动法",
			ArticleNumber: "第三十六条",
			Vector:        []float32{1, 0},
		},
	})
	require.NoError(t, err)
	return store
}

func TestAnswerOutOfDomainRefusal(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be called"}
	o := newOrchestrator(t, seededStore(t), gen)

	result, err := o.Answer(context.Background(), "今天天气怎么样")
	require.NoError(t, err)

	assert.Equal(t, generate.RefusalMessage, result.Answer)
	assert.False(t, result.Relevant)
	assert.False(t, result.Errored)
	assert.Equal(t, string(StageCompleted), result.Stage)
	// 拒答不消耗任何检索与生成调用
	assert.Equal(t, 0, gen.calls)
}

func TestAnswerNormalFlow(t *testing.T) {
	gen := &fakeGenerator{answer: "依据《中华人民共和国劳动法》第三十六条，每日工作时间不超过八小时。"}
	o := newOrchestrator(t, seededStore(t), gen)

	result, err := o.Answer(context.Background(), "劳动法规定的工作时间是多少")
	require.NoError(t, err)

	assert.Equal(t, gen.answer, result.Answer)
	assert.True(t, result.Relevant)
	assert.False(t, result.Errored)
	assert.Equal(t, string(StageCompleted), result.Stage)
	assert.Equal(t, 1, gen.calls)

	require.Len(t, result.Citations, 1)
	assert.Equal(t, "第三十六条", result.Citations[0].ArticleNumber)
	assert.Equal(t, "中华人民共和国劳动法", result.Citations[0].DocumentTitle)
}

func TestAnswerEmptyQuestion(t *testing.T) {
	gen := &fakeGenerator{}
	o := newOrchestrator(t, seededStore(t), gen)

	result, err := o.Answer(context.Background(), "")
	require.Error(t, err)

	assert.True(t, result.Errored)
	assert.Equal(t, "InvalidParameterError", result.ErrKind)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidParameter))
}

func TestAnswerRetrievalFailure(t *testing.T) {
	gen := &fakeGenerator{answer: "should not be called"}
	o := newOrchestrator(t, &brokenStore{}, gen)

	result, err := o.Answer(context.Background(), "劳动法规定的工作时间是多少")
	require.Error(t, err)

	// 内部错误与领域外拒答严格区分
	assert.True(t, result.Errored)
	assert.Equal(t, string(StageRetrieving), result.Stage)
	assert.Equal(t, "RetrievalError", result.ErrKind)
	assert.Empty(t, result.Citations)
	assert.Equal(t, 0, gen.calls)
	assert.True(t, errors.HasCode(err, errors.ErrRetrieval))
}

func TestAnswerNoPassagesAboveThreshold(t *testing.T) {
	// 空库检索不到任何段落，应返回固定提示而非报错
	gen := &fakeGenerator{answer: "should not be called"}
	o := newOrchestrator(t, vector_store.NewMemoryStore("empty", 2), gen)

	result, err := o.Answer(context.Background(), "劳动法规定的工作时间是多少")
	require.NoError(t, err)

	// 空结果按无法作答处理，relevance为false
	assert.Equal(t, generate.EmptyResultMessage, result.Answer)
	assert.False(t, result.Relevant)
	assert.False(t, result.Errored)
	assert.Equal(t, string(StageCompleted), result.Stage)
	assert.Equal(t, 0, gen.calls)
}
