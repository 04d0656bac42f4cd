package laborguard

import (
	"context"

	"github.com/gogf/gf/v2/frame/g"

	v1 "github.com/laborguard/laborguard/api/laborguard/v1"
	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/schema"
	gormModel "github.com/laborguard/laborguard/internal/model/gorm"
)

// DocumentIngest 入库单部法规
func (c *ControllerV1) DocumentIngest(ctx context.Context, req *v1.DocumentIngestReq) (res *v1.DocumentIngestRes, err error) {
	doc := &schema.LegalDocument{
		DocumentID: req.DocumentID,
		Title:      req.Title,
		Articles:   req.Articles,
	}

	summary, err := c.pipeline.Ingest(ctx, doc)
	if err != nil {
		return nil, err
	}

	return &v1.DocumentIngestRes{
		Inserted: summary.Inserted,
		Updated:  summary.Updated,
		Skipped:  summary.Skipped,
	}, nil
}

// DocumentConvert 从原文转换法规，可选择转换后直接入库
func (c *ControllerV1) DocumentConvert(ctx context.Context, req *v1.DocumentConvertReq) (res *v1.DocumentConvertRes, err error) {
	doc, err := c.converter.Convert(ctx, req.URI, req.DocumentID, req.Title)
	if err != nil {
		return nil, err
	}

	res = &v1.DocumentConvertRes{Document: doc}
	if !req.Ingest {
		return res, nil
	}

	summary, err := c.pipeline.Ingest(ctx, doc)
	if err != nil {
		return nil, err
	}
	res.Summary = &v1.DocumentIngestRes{
		Inserted: summary.Inserted,
		Updated:  summary.Updated,
		Skipped:  summary.Skipped,
	}
	return res, nil
}

// DocumentList 列出已入库法规
func (c *ControllerV1) DocumentList(ctx context.Context, req *v1.DocumentListReq) (res *v1.DocumentListRes, err error) {
	if c.registry == nil {
		return &v1.DocumentListRes{List: []gormModel.IngestedDocument{}}, nil
	}

	records, err := c.registry.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	return &v1.DocumentListRes{List: records}, nil
}

// DocumentGet 查询单部法规的登记信息
func (c *ControllerV1) DocumentGet(ctx context.Context, req *v1.DocumentGetReq) (res *v1.DocumentGetRes, err error) {
	if c.registry == nil {
		return nil, errors.New(errors.ErrNotFound, "document registry is not configured")
	}

	record, err := c.registry.GetDocument(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}
	return &v1.DocumentGetRes{IngestedDocument: record}, nil
}

// DocumentDelete 删除指定法规的全部向量切片
func (c *ControllerV1) DocumentDelete(ctx context.Context, req *v1.DocumentDeleteReq) (res *v1.DocumentDeleteRes, err error) {
	if err = c.store.DeleteByDocumentID(ctx, req.DocumentID); err != nil {
		return nil, err
	}
	g.Log().Infof(ctx, "deleted all chunks of document %s", req.DocumentID)
	return &v1.DocumentDeleteRes{}, nil
}
