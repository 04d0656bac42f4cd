package ingest

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"

	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/schema"
)

// Source 文档来源抽象：本地目录、对象存储等
type Source interface {
	// List 列出来源中的全部文档对象名
	List(ctx context.Context) ([]string, error)
	// Open 打开指定对象读取内容
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// DecodeDocument 解析单个文档JSON
func DecodeDocument(data []byte) (*schema.LegalDocument, error) {
	var doc schema.LegalDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrSchema, err, "failed to decode document JSON")
	}
	return &doc, nil
}

// LoadFromSource 从来源加载全部JSON文档。
// 单个文件解析失败记录日志并跳过，不阻断其余文件。
func LoadFromSource(ctx context.Context, src Source) ([]*schema.LegalDocument, error) {
	names, err := src.List(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to list documents")
	}

	var docs []*schema.LegalDocument
	for _, name := range names {
		if !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}

		doc, err := loadOne(ctx, src, name)
		if err != nil {
			g.Log().Warningf(ctx, "skipping document %s: %v", name, err)
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func loadOne(ctx context.Context, src Source, name string) (*schema.LegalDocument, error) {
	rc, err := src.Open(ctx, name)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to open document")
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to read document")
	}

	return DecodeDocument(data)
}
