package v1

import (
	"github.com/gogf/gf/v2/frame/g"

	"github.com/laborguard/laborguard/core/schema"
	gormModel "github.com/laborguard/laborguard/internal/model/gorm"
)

type DocumentIngestReq struct {
	g.Meta     `path:"/v1/documents" method:"post" tags:"documents" summary:"Ingest a legal document"`
	DocumentID string           `json:"document_id" v:"required" dc:"stable document id"`
	Title      string           `json:"title" v:"required" dc:"document title"`
	Articles   []schema.Article `json:"articles" v:"required" dc:"articles"`
}

type DocumentIngestRes struct {
	Inserted int `json:"inserted" dc:"chunks inserted"`
	Updated  int `json:"updated" dc:"chunks re-embedded and updated"`
	Skipped  int `json:"skipped" dc:"unchanged chunks skipped"`
}

type DocumentConvertReq struct {
	g.Meta     `path:"/v1/documents/convert" method:"post" tags:"documents" summary:"Convert raw statute text into a document"`
	URI        string `json:"uri" v:"required" dc:"local file path or URL of the statute text"`
	DocumentID string `json:"document_id" v:"required" dc:"stable document id"`
	Title      string `json:"title" v:"required" dc:"document title"`
	Ingest     bool   `json:"ingest" dc:"ingest the converted document immediately"`
}

type DocumentConvertRes struct {
	Document *schema.LegalDocument `json:"document" dc:"converted document"`
	Summary  *DocumentIngestRes    `json:"summary,omitempty" dc:"ingestion summary when ingest=true"`
}

type DocumentListReq struct {
	g.Meta `path:"/v1/documents" method:"get" tags:"documents" summary:"List ingested documents"`
}

type DocumentListRes struct {
	List []gormModel.IngestedDocument `json:"list" dc:"ingested document records"`
}

type DocumentGetReq struct {
	g.Meta     `path:"/v1/documents/{document_id}" method:"get" tags:"documents" summary:"Get one ingested document"`
	DocumentID string `json:"document_id" v:"required" dc:"stable document id"`
}

type DocumentGetRes struct {
	*gormModel.IngestedDocument `dc:"ingested document record"`
}

type DocumentDeleteReq struct {
	g.Meta     `path:"/v1/documents/{document_id}" method:"delete" tags:"documents" summary:"Delete all chunks of a document"`
	DocumentID string `json:"document_id" v:"required" dc:"stable document id"`
}

type DocumentDeleteRes struct{}
