package ingest

import (
	"context"
	"sync"

	"github.com/cloudwego/eino-ext/components/document/transformer/splitter/recursive"
	"github.com/cloudwego/eino/components/document"
	einoschema "github.com/cloudwego/eino/schema"
	"github.com/gogf/gf/v2/frame/g"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/laborguard/laborguard/core/config"
	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/provider"
	"github.com/laborguard/laborguard/core/schema"
	"github.com/laborguard/laborguard/core/vector_store"
)

// embedBatchSize 单次embedding调用的切片数量上限
const embedBatchSize = 16

// Summary 单个文档的入库结果
type Summary struct {
	DocumentID string `json:"document_id"`
	Inserted   int    `json:"inserted"`
	Updated    int    `json:"updated"`
	Skipped    int    `json:"skipped"`
}

// DocumentResult 批量入库时单个文档的处理结果
type DocumentResult struct {
	DocumentID string
	Summary    Summary
	Err        error
}

// DocumentRecorder 文档登记，入库成功后记录文档元信息
type DocumentRecorder interface {
	RecordIngestion(ctx context.Context, doc schema.LegalDocument, summary Summary) error
}

// Pipeline 文档入库流水线：校验、切片、指纹比对、向量化、写入
type Pipeline struct {
	embedder provider.Embedder
	store    vector_store.VectorStore
	recorder DocumentRecorder // 可选
	splitter document.Transformer
	cfg      config.IngestConfig
}

// NewPipeline 创建入库流水线，recorder传nil表示禁用文档登记
func NewPipeline(ctx context.Context, embedder provider.Embedder, store vector_store.VectorStore, recorder DocumentRecorder, cfg config.IngestConfig) (*Pipeline, error) {
	splitter, err := recursive.NewSplitter(ctx, &recursive.Config{
		ChunkSize:   cfg.ChunkSize,
		OverlapSize: cfg.OverlapSize,
		Separators:  []string{"\n\n", "\n", "。", "；", "，", " "},
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrIngestionFailed, err, "failed to create splitter")
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		recorder: recorder,
		splitter: splitter,
		cfg:      cfg,
	}, nil
}

// Validate 校验入库文档schema，违反约束返回 ErrSchema
func Validate(doc *schema.LegalDocument) error {
	if doc == nil {
		return errors.New(errors.ErrSchema, "document is nil")
	}
	if doc.DocumentID == "" {
		return errors.New(errors.ErrSchema, "document_id is required")
	}
	if doc.Title == "" {
		return errors.Newf(errors.ErrSchema, "document %s: title is required", doc.DocumentID)
	}
	if len(doc.Articles) == 0 {
		return errors.Newf(errors.ErrSchema, "document %s: articles must not be empty", doc.DocumentID)
	}

	seen := make(map[string]bool, len(doc.Articles))
	for i, article := range doc.Articles {
		if article.Number == "" {
			return errors.Newf(errors.ErrSchema, "document %s: article %d has empty number", doc.DocumentID, i)
		}
		if article.Text == "" {
			return errors.Newf(errors.ErrSchema, "document %s: article %s has empty text", doc.DocumentID, article.Number)
		}
		if seen[article.Number] {
			return errors.Newf(errors.ErrSchema, "document %s: duplicate article number %s", doc.DocumentID, article.Number)
		}
		seen[article.Number] = true
	}
	return nil
}

// BuildChunks 将文档切为可检索切片。每条条文默认一个切片，
// 超长条文按配置切为多个带重叠的子切片，切片序号在条文内从0递增。
func (p *Pipeline) BuildChunks(ctx context.Context, doc *schema.LegalDocument) ([]schema.Chunk, error) {
	var chunks []schema.Chunk

	for _, article := range doc.Articles {
		texts, err := p.splitArticle(ctx, article.Text)
		if err != nil {
			return nil, errors.Wrap(errors.ErrIngestionFailed, err, "failed to split article "+article.Number)
		}

		for idx, text := range texts {
			chunks = append(chunks, schema.Chunk{
				StableID:      schema.StableChunkID(doc.DocumentID, article.Number, idx),
				Text:          text,
				DocumentID:    doc.DocumentID,
				DocumentTitle: doc.Title,
				ArticleNumber: article.Number,
				ChunkIndex:    idx,
				Fingerprint:   schema.Fingerprint(text),
			})
		}
	}

	return chunks, nil
}

func (p *Pipeline) splitArticle(ctx context.Context, text string) ([]string, error) {
	if len([]rune(text)) <= p.cfg.ChunkSize {
		return []string{text}, nil
	}

	docs, err := p.splitter.Transform(ctx, []*einoschema.Document{{Content: text}})
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Content != "" {
			texts = append(texts, d.Content)
		}
	}
	return texts, nil
}

// Ingest 入库单个文档。按切片指纹做差异比对：新切片插入，
// 指纹变化的切片重新向量化覆盖，指纹一致的切片跳过。重复执行是幂等的。
func (p *Pipeline) Ingest(ctx context.Context, doc *schema.LegalDocument) (Summary, error) {
	summary := Summary{DocumentID: doc.DocumentID}

	if err := Validate(doc); err != nil {
		return summary, err
	}

	chunks, err := p.BuildChunks(ctx, doc)
	if err != nil {
		return summary, err
	}

	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.StableID
	}

	existing, err := p.store.Get(ctx, ids)
	if err != nil {
		return summary, errors.Wrap(errors.ErrIngestionFailed, err, "failed to read existing chunks")
	}

	var toEmbed []schema.Chunk
	for _, chunk := range chunks {
		prev, ok := existing[chunk.StableID]
		switch {
		case !ok:
			summary.Inserted++
			toEmbed = append(toEmbed, chunk)
		case prev.Fingerprint != chunk.Fingerprint:
			summary.Updated++
			toEmbed = append(toEmbed, chunk)
		default:
			summary.Skipped++
		}
	}

	if len(toEmbed) > 0 {
		if err := p.embedAndUpsert(ctx, toEmbed); err != nil {
			return summary, err
		}
	}

	g.Log().Infof(ctx, "Ingested document %s: %d inserted, %d updated, %d skipped",
		doc.DocumentID, summary.Inserted, summary.Updated, summary.Skipped)

	if p.recorder != nil {
		if err := p.recorder.RecordIngestion(ctx, *doc, summary); err != nil {
			// 登记失败不影响已写入的向量数据
			g.Log().Warningf(ctx, "failed to record ingestion for document %s: %v", doc.DocumentID, err)
		}
	}

	return summary, nil
}

func (p *Pipeline) embedAndUpsert(ctx context.Context, chunks []schema.Chunk) error {
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := p.embedder.EmbedStrings(ctx, texts)
		if err != nil {
			return err
		}
		if len(vectors) != len(batch) {
			return errors.Newf(errors.ErrEmbeddingFailed, "embedding returned %d vectors for %d texts", len(vectors), len(batch))
		}

		records := make([]vector_store.Record, len(batch))
		for i, chunk := range batch {
			records[i] = vector_store.Record{
				ID:            chunk.StableID,
				Text:          chunk.Text,
				Vector:        vectors[i],
				DocumentID:    chunk.DocumentID,
				DocumentTitle: chunk.DocumentTitle,
				ArticleNumber: chunk.ArticleNumber,
				ChunkIndex:    chunk.ChunkIndex,
				Fingerprint:   chunk.Fingerprint,
			}
		}

		if err := p.store.Upsert(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

// IngestAll 批量入库，文档级并发，单个文档失败不影响其他文档
func (p *Pipeline) IngestAll(ctx context.Context, docs []*schema.LegalDocument) []DocumentResult {
	results := make([]DocumentResult, len(docs))

	sem := semaphore.NewWeighted(int64(p.cfg.Concurrency))
	eg, egCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, doc := range docs {
		i, doc := i, doc
		eg.Go(func() error {
			if err := sem.Acquire(egCtx, 1); err != nil {
				mu.Lock()
				results[i] = DocumentResult{DocumentID: doc.DocumentID, Err: err}
				mu.Unlock()
				return nil
			}
			defer sem.Release(1)

			summary, err := p.Ingest(egCtx, doc)
			mu.Lock()
			results[i] = DocumentResult{DocumentID: doc.DocumentID, Summary: summary, Err: err}
			mu.Unlock()
			if err != nil {
				g.Log().Errorf(egCtx, "failed to ingest document %s: %v", doc.DocumentID, err)
			}
			return nil
		})
	}

	_ = eg.Wait()
	return results
}
