package ingest

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laborguard/laborguard/core/errors"
)

// mapSource 内存文档来源
type mapSource struct {
	files map[string][]byte
}

func (s *mapSource) List(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(s.files))
	for name := range s.files {
		names = append(names, name)
	}
	return names, nil
}

func (s *mapSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "no such file: %s", name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

const validDocJSON = `{
	"document_id": "labor_law",
	"title": "中华人民共和国劳动法",
	"articles": [
		{"number": "第一条", "text": "为了保护劳动者的合法权益"}
	]
}`

func TestDecodeDocument(t *testing.T) {
	doc, err := DecodeDocument([]byte(validDocJSON))
	require.NoError(t, err)
	assert.Equal(t, "labor_law", doc.DocumentID)
	assert.Len(t, doc.Articles, 1)
}

func TestDecodeDocumentInvalidJSON(t *testing.T) {
	_, err := DecodeDocument([]byte("{not json"))
	assert.True(t, errors.HasCode(err, errors.ErrSchema))
}

func TestLoadFromSource(t *testing.T) {
	src := &mapSource{files: map[string][]byte{
		"labor_law.json": []byte(validDocJSON),
		"readme.txt":     []byte("ignored"),
	}}

	docs, err := LoadFromSource(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "labor_law", docs[0].DocumentID)
}

func TestLoadFromSourceSkipsBrokenFiles(t *testing.T) {
	src := &mapSource{files: map[string][]byte{
		"good.json":   []byte(validDocJSON),
		"broken.json": []byte("{invalid"),
	}}

	// 单个文件解析失败不阻断其余文件
	docs, err := LoadFromSource(context.Background(), src)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}
