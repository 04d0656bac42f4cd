package retriever

import (
	"context"
	"sort"

	"github.com/gogf/gf/v2/frame/g"
	"golang.org/x/sync/errgroup"

	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/provider"
	"github.com/laborguard/laborguard/core/schema"
	"github.com/laborguard/laborguard/core/vector_store"
)

// HybridRetriever 混合检索：稠密与稀疏并行召回，按切片ID合并去重
type HybridRetriever struct {
	embedder provider.Embedder
	store    vector_store.VectorStore
	topK     int
}

// NewHybridRetriever 创建混合检索器
func NewHybridRetriever(embedder provider.Embedder, store vector_store.VectorStore, topK int) *HybridRetriever {
	return &HybridRetriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
	}
}

// Retrieve 执行混合检索。两路各取topK，合并时同一切片保留较高分数，
// 双路命中标记为hybrid。结果按分数降序、同分按切片ID升序，截取topK。
func (r *HybridRetriever) Retrieve(ctx context.Context, query string) ([]schema.RetrievalCandidate, error) {
	vectors, err := r.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, errors.Newf(errors.ErrEmbeddingFailed, "invalid return length of vector, got=%d, expected=1", len(vectors))
	}

	var denseHits, sparseHits []vector_store.SearchHit

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		hits, err := r.store.QueryDense(egCtx, vectors[0], r.topK)
		if err != nil {
			return err
		}
		denseHits = hits
		return nil
	})
	eg.Go(func() error {
		hits, err := r.store.QuerySparse(egCtx, query, r.topK)
		if err != nil {
			return err
		}
		sparseHits = hits
		return nil
	})
	if err := eg.Wait(); err != nil {
		if errors.IsAppError(err) {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrRetrieval, err, "hybrid retrieval failed")
	}

	candidates := mergeHits(denseHits, sparseHits)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Chunk.StableID < candidates[j].Chunk.StableID
	})

	if len(candidates) > r.topK {
		candidates = candidates[:r.topK]
	}

	g.Log().Debugf(ctx, "hybrid retrieval: %d dense, %d sparse, %d merged", len(denseHits), len(sparseHits), len(candidates))
	return candidates, nil
}

// mergeHits 合并两路召回。同一切片取较高分数；双路命中标记hybrid
func mergeHits(denseHits, sparseHits []vector_store.SearchHit) []schema.RetrievalCandidate {
	merged := make(map[string]*schema.RetrievalCandidate)
	var order []string

	add := func(hit vector_store.SearchHit, method schema.RetrievalMethod) {
		existing, ok := merged[hit.Record.ID]
		if !ok {
			merged[hit.Record.ID] = &schema.RetrievalCandidate{
				Chunk:  recordToChunk(hit.Record),
				Score:  hit.Score,
				Method: method,
			}
			order = append(order, hit.Record.ID)
			return
		}

		if hit.Score > existing.Score {
			existing.Score = hit.Score
		}
		if existing.Method != method {
			existing.Method = schema.MethodHybrid
		}
	}

	for _, hit := range denseHits {
		add(hit, schema.MethodDense)
	}
	for _, hit := range sparseHits {
		add(hit, schema.MethodSparse)
	}

	result := make([]schema.RetrievalCandidate, 0, len(order))
	for _, id := range order {
		result = append(result, *merged[id])
	}
	return result
}

func recordToChunk(rec vector_store.Record) schema.Chunk {
	return schema.Chunk{
		StableID:      rec.ID,
		Text:          rec.Text,
		DocumentID:    rec.DocumentID,
		DocumentTitle: rec.DocumentTitle,
		ArticleNumber: rec.ArticleNumber,
		ChunkIndex:    rec.ChunkIndex,
		Fingerprint:   rec.Fingerprint,
	}
}
