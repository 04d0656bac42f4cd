package provider

import (
	"context"
	"strconv"

	"github.com/laborguard/laborguard/core/common"
)

// localReranker 本地BM25重排，离线或无外部rerank服务时使用。
// 分数归一化到[0,1]，与远端rerank分数同值域，阈值配置可以复用。
type localReranker struct {
	params common.BM25Parameters
}

func newLocalReranker() *localReranker {
	return &localReranker{params: common.DefaultBM25Parameters()}
}

func (r *localReranker) Rerank(ctx context.Context, query string, documents []string) ([]RerankScore, error) {
	if len(documents) == 0 {
		return []RerankScore{}, nil
	}

	docs := make([]common.BM25Document, len(documents))
	for i, text := range documents {
		docs[i] = common.BM25Document{
			ID:      strconv.Itoa(i),
			Content: text,
		}
	}

	scorer := common.NewBM25Scorer(docs, r.params)
	scored := common.NormalizeBM25Scores(scorer.Score(query))

	result := make([]RerankScore, len(scored))
	for i, doc := range scored {
		idx, err := strconv.Atoi(doc.ID)
		if err != nil {
			idx = i
		}
		result[i] = RerankScore{Index: idx, Score: doc.Score}
	}

	return result, nil
}
