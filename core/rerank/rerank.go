package rerank

import (
	"context"
	"sort"

	"github.com/gogf/gf/v2/frame/g"

	"github.com/laborguard/laborguard/core/provider"
	"github.com/laborguard/laborguard/core/schema"
)

// Reranker 重排阶段：整批打分、截取topN、按分数下限过滤
type Reranker struct {
	reranker provider.Reranker
	topN     int
	minScore float64
}

// NewReranker 创建重排器
func NewReranker(reranker provider.Reranker, topN int, minScore float64) *Reranker {
	return &Reranker{
		reranker: reranker,
		topN:     topN,
		minScore: minScore,
	}
}

// Rerank 对候选切片重排。单次批量调用提供方，按重排分数降序排列，
// 同分按初次召回名次保持稳定，截取topN后丢弃分数低于下限的段落。
// 分数等于下限的段落保留。
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []schema.RetrievalCandidate) ([]schema.RankedPassage, error) {
	if len(candidates) == 0 {
		return []schema.RankedPassage{}, nil
	}

	documents := make([]string, len(candidates))
	for i, cand := range candidates {
		documents[i] = cand.Chunk.Text
	}

	scores, err := r.reranker.Rerank(ctx, query, documents)
	if err != nil {
		return nil, err
	}

	// 未返回分数的候选按0分处理
	scoreByIndex := make(map[int]float64, len(scores))
	for _, s := range scores {
		scoreByIndex[s.Index] = s.Score
	}

	passages := make([]schema.RankedPassage, len(candidates))
	for i, cand := range candidates {
		passages[i] = schema.RankedPassage{
			Candidate:     cand,
			RerankScore:   scoreByIndex[i],
			RetrievalRank: i,
		}
	}

	sort.SliceStable(passages, func(i, j int) bool {
		if passages[i].RerankScore != passages[j].RerankScore {
			return passages[i].RerankScore > passages[j].RerankScore
		}
		return passages[i].RetrievalRank < passages[j].RetrievalRank
	})

	if len(passages) > r.topN {
		passages = passages[:r.topN]
	}

	filtered := make([]schema.RankedPassage, 0, len(passages))
	for _, p := range passages {
		if p.RerankScore < r.minScore {
			g.Log().Debugf(ctx, "dropping passage %s: score %.4f below threshold %.4f",
				p.Candidate.Chunk.StableID, p.RerankScore, r.minScore)
			continue
		}
		filtered = append(filtered, p)
	}

	return filtered, nil
}
