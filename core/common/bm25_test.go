package common

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeChinese(t *testing.T) {
	// 汉字逐字成词
	tokens := Tokenize("劳动合同")
	assert.Equal(t, []string{"劳", "动", "合", "同"}, tokens)
}

func TestTokenizeMixed(t *testing.T) {
	// 字母数字串保持连续，汉字逐字
	tokens := Tokenize("第36条 GB2763标准")
	assert.Equal(t, []string{"第", "36", "条", "gb2763", "标", "准"}, tokens)
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("  ,.!  "))
}

func TestBM25ChineseScoring(t *testing.T) {
	docs := []BM25Document{
		{ID: "doc1", Content: "劳动者每日工作时间不超过八小时"},
		{ID: "doc2", Content: "用人单位应当保证劳动者每周至少休息一日"},
		{ID: "doc3", Content: "国家对女职工实行特殊劳动保护"},
	}

	scorer := NewBM25Scorer(docs, DefaultBM25Parameters())
	results := scorer.Score("工作时间")

	assert.Len(t, results, 3)

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	assert.Equal(t, "doc1", results[0].ID)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestBM25NoMatch(t *testing.T) {
	docs := []BM25Document{
		{ID: "doc1", Content: "劳动合同的订立"},
	}
	scorer := NewBM25Scorer(docs, DefaultBM25Parameters())
	results := scorer.Score("xyz")
	assert.Equal(t, 0.0, results[0].Score)
}

func TestNormalizeBM25Scores(t *testing.T) {
	docs := []BM25Document{
		{ID: "doc1", Score: 4.0},
		{ID: "doc2", Score: 2.0},
		{ID: "doc3", Score: 0.0},
	}

	normalized := NormalizeBM25Scores(docs)
	assert.Equal(t, 1.0, normalized[0].Score)
	assert.Equal(t, 0.5, normalized[1].Score)
	assert.Equal(t, 0.0, normalized[2].Score)
}

func TestNormalizeBM25ScoresAllZero(t *testing.T) {
	docs := []BM25Document{{ID: "doc1", Score: 0}, {ID: "doc2", Score: 0}}
	normalized := NormalizeBM25Scores(docs)
	for _, d := range normalized {
		assert.Equal(t, 0.0, d.Score)
	}
}
