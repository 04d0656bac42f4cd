package vector_store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborguard/laborguard/core/errors"
)

func memRecord(id, text, docID string, vector []float32) Record {
	return Record{
		ID:         id,
		Text:       text,
		Vector:     vector,
		DocumentID: docID,
	}
}

func TestMemoryStoreUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("test", 3)

	records := []Record{
		memRecord("a", "每日工作时间不超过八小时", "labor_law", []float32{1, 0, 0}),
		memRecord("b", "每周至少休息一日", "labor_law", []float32{0, 1, 0}),
	}
	require.NoError(t, store.Upsert(ctx, records))
	assert.Equal(t, 2, store.Count())

	got, err := store.Get(ctx, []string{"a", "b", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, "每日工作时间不超过八小时", got["a"].Text)

	// 重复写入同ID覆盖而不新增
	records[0].Text = "修改后的条文"
	require.NoError(t, store.Upsert(ctx, records))
	assert.Equal(t, 2, store.Count())

	got, err = store.Get(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "修改后的条文", got["a"].Text)
}

func TestMemoryStoreDimensionCheck(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("test", 3)

	err := store.Upsert(ctx, []Record{memRecord("a", "t", "d", []float32{1, 0})})
	assert.True(t, errors.HasCode(err, errors.ErrDimensionMismatch))

	_, err = store.QueryDense(ctx, []float32{1, 0}, 10)
	assert.True(t, errors.HasCode(err, errors.ErrDimensionMismatch))
}

func TestMemoryStoreDeleteByDocumentID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("test", 2)

	require.NoError(t, store.Upsert(ctx, []Record{
		memRecord("a", "t1", "doc1", []float32{1, 0}),
		memRecord("b", "t2", "doc1", []float32{0, 1}),
		memRecord("c", "t3", "doc2", []float32{1, 1}),
	}))

	require.NoError(t, store.DeleteByDocumentID(ctx, "doc1"))
	assert.Equal(t, 1, store.Count())

	got, err := store.Get(ctx, []string{"c"})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestMemoryStoreQueryDense(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("test", 2)

	require.NoError(t, store.Upsert(ctx, []Record{
		memRecord("same", "t", "d", []float32{1, 0}),
		memRecord("orthogonal", "t", "d", []float32{0, 1}),
		memRecord("opposite", "t", "d", []float32{-1, 0}),
	}))

	hits, err := store.QueryDense(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// 分数归一化到[0,1]：同向1，正交0.5，反向0
	assert.Equal(t, "same", hits[0].Record.ID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	assert.InDelta(t, 0.5, hits[1].Score, 1e-9)
	assert.InDelta(t, 0.0, hits[2].Score, 1e-9)

	// topK截断
	hits, err = store.QueryDense(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestMemoryStoreQuerySparse(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("test", 2)

	require.NoError(t, store.Upsert(ctx, []Record{
		memRecord("a", "劳动者每日工作时间不超过八小时", "d", []float32{1, 0}),
		memRecord("b", "劳动合同应当以书面形式订立", "d", []float32{0, 1}),
	}))

	hits, err := store.QuerySparse(ctx, "工作时间", 10)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "a", hits[0].Record.ID)

	// 分数归一化到[0,1]，最高分为1
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
	for _, h := range hits {
		assert.GreaterOrEqual(t, h.Score, 0.0)
		assert.LessOrEqual(t, h.Score, 1.0)
	}
}

func TestMemoryStoreQuerySparseDeterministic(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("test", 2)

	require.NoError(t, store.Upsert(ctx, []Record{
		memRecord("a", "工资应当以货币形式按月支付", "d", []float32{1, 0}),
		memRecord("b", "工资分配应当遵循按劳分配原则", "d", []float32{0, 1}),
	}))

	first, err := store.QuerySparse(ctx, "工资支付", 10)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := store.QuerySparse(ctx, "工资支付", 10)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
