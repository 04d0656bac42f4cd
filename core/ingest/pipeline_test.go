package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/schema"
	"github.com/laborguard/laborguard/core/vector_store"
)

const testDim = 4

// fakeEmbedder 由文本内容确定性生成向量
type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) EmbedStrings(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, testDim)
		for j, r := range []rune(text) {
			v[j%testDim] += float32(r % 97)
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int {
	return testDim
}

// recordingRecorder 记录登记调用
type recordingRecorder struct {
	summaries []Summary
}

func (r *recordingRecorder) RecordIngestion(ctx context.Context, doc schema.LegalDocument, summary Summary) error {
	r.summaries = append(r.summaries, summary)
	return nil
}

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		ChunkSize:   100,
		OverlapSize: 10,
		Concurrency: 2,
	}
}

func testDocument() *schema.LegalDocument {
	return &schema.LegalDocument{
		DocumentID: "labor_law",
		Title:      "中华人民共和国劳动法",
		Articles: []schema.Article{
			{Number: "第三十六条", Text: "国家实行劳动者每日工作时间不超过八小时的工时制度"},
			{Number: "第三十八条", Text: "用人单位应当保证劳动者每周至少休息一日"},
		},
	}
}

func newTestPipeline(t *testing.T, recorder DocumentRecorder) (*Pipeline, *vector_store.MemoryStore, *fakeEmbedder) {
	t.Helper()
	store := vector_store.NewMemoryStore("test", testDim)
	embedder := &fakeEmbedder{}
	p, err := NewPipeline(context.Background(), embedder, store, recorder, testIngestConfig())
	require.NoError(t, err)
	return p, store, embedder
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(testDocument()))

	cases := []struct {
		name   string
		mutate func(*schema.LegalDocument)
	}{
		{"文档ID为空", func(d *schema.LegalDocument) { d.DocumentID = "" }},
		{"标题为空", func(d *schema.LegalDocument) { d.Title = "" }},
		{"无条文", func(d *schema.LegalDocument) { d.Articles = nil }},
		{"条号为空", func(d *schema.LegalDocument) { d.Articles[0].Number = "" }},
		{"条文内容为空", func(d *schema.LegalDocument) { d.Articles[1].Text = "" }},
		{"条号重复", func(d *schema.LegalDocument) { d.Articles[1].Number = d.Articles[0].Number }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := testDocument()
			tc.mutate(doc)
			err := Validate(doc)
			assert.True(t, errors.HasCode(err, errors.ErrSchema))
		})
	}

	assert.True(t, errors.HasCode(Validate(nil), errors.ErrSchema))
}

func TestBuildChunksShortArticles(t *testing.T) {
	p, _, _ := newTestPipeline(t, nil)

	chunks, err := p.BuildChunks(context.Background(), testDocument())
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, schema.StableChunkID("labor_law", "第三十六条", 0), chunks[0].StableID)
	assert.Equal(t, "第三十六条", chunks[0].ArticleNumber)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, "中华人民共和国劳动法", chunks[0].DocumentTitle)
	assert.NotEmpty(t, chunks[0].Fingerprint)
}

func TestBuildChunksSplitsLongArticle(t *testing.T) {
	p, _, _ := newTestPipeline(t, nil)

	doc := &schema.LegalDocument{
		DocumentID: "labor_law",
		Title:      "中华人民共和国劳动法",
		Articles: []schema.Article{
			{Number: "第一百条", Text: strings.Repeat("用人单位无故不缴纳社会保险费的，由劳动行政部门责令其限期缴纳。", 20)},
		},
	}

	chunks, err := p.BuildChunks(context.Background(), doc)
	require.NoError(t, err)
	assert.Greater(t, len(chunks), 1)

	// 同条文内切片序号递增，ID互不相同
	ids := make(map[string]bool)
	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.ChunkIndex)
		assert.False(t, ids[chunk.StableID])
		ids[chunk.StableID] = true
	}
}

func TestIngestFirstRunInsertsAll(t *testing.T) {
	p, store, _ := newTestPipeline(t, nil)

	summary, err := p.Ingest(context.Background(), testDocument())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 2, store.Count())
}

func TestIngestIdempotent(t *testing.T) {
	p, store, embedder := newTestPipeline(t, nil)
	ctx := context.Background()

	_, err := p.Ingest(ctx, testDocument())
	require.NoError(t, err)
	callsAfterFirst := embedder.calls

	// 重复入库：全部跳过，不再调用embedding
	summary, err := p.Ingest(ctx, testDocument())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 2, summary.Skipped)
	assert.Equal(t, 2, store.Count())
	assert.Equal(t, callsAfterFirst, embedder.calls)
}

func TestIngestDetectsTextChange(t *testing.T) {
	p, store, _ := newTestPipeline(t, nil)
	ctx := context.Background()

	_, err := p.Ingest(ctx, testDocument())
	require.NoError(t, err)

	// 修改一条条文后再入库：该切片更新，其余跳过
	doc := testDocument()
	doc.Articles[0].Text = "国家实行劳动者每日工作时间不超过八小时、平均每周工作时间不超过四十四小时的工时制度"

	summary, err := p.Ingest(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Inserted)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 2, store.Count())

	// 更新后的切片保持原ID，指纹已变
	id := schema.StableChunkID("labor_law", "第三十六条", 0)
	got, err := store.Get(ctx, []string{id})
	require.NoError(t, err)
	assert.Equal(t, doc.Articles[0].Text, got[id].Text)
	assert.Equal(t, schema.Fingerprint(doc.Articles[0].Text), got[id].Fingerprint)
}

func TestIngestWhitespaceOnlyChangeSkipped(t *testing.T) {
	p, _, _ := newTestPipeline(t, nil)
	ctx := context.Background()

	_, err := p.Ingest(ctx, testDocument())
	require.NoError(t, err)

	// 仅空白差异不改变指纹，不触发更新
	doc := testDocument()
	doc.Articles[0].Text = "  " + doc.Articles[0].Text + "\n"

	summary, err := p.Ingest(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 2, summary.Skipped)
}

func TestIngestInvokesRecorder(t *testing.T) {
	recorder := &recordingRecorder{}
	p, _, _ := newTestPipeline(t, recorder)

	_, err := p.Ingest(context.Background(), testDocument())
	require.NoError(t, err)

	require.Len(t, recorder.summaries, 1)
	assert.Equal(t, "labor_law", recorder.summaries[0].DocumentID)
	assert.Equal(t, 2, recorder.summaries[0].Inserted)
}

func TestIngestAllIsolatesFailures(t *testing.T) {
	p, store, _ := newTestPipeline(t, nil)

	bad := testDocument()
	bad.DocumentID = "bad_doc"
	bad.Articles[0].Number = ""

	good := testDocument()

	results := p.IngestAll(context.Background(), []*schema.LegalDocument{bad, good})
	require.Len(t, results, 2)

	// 单个文档失败不影响其他文档
	assert.Error(t, results[0].Err)
	assert.True(t, errors.HasCode(results[0].Err, errors.ErrSchema))
	assert.NoError(t, results[1].Err)
	assert.Equal(t, 2, results[1].Summary.Inserted)
	assert.Equal(t, 2, store.Count())
}
