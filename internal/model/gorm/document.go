package gorm

import (
	"time"
)

// IngestedDocument 已入库法规登记表，记录每次入库的结果快照
type IngestedDocument struct {
	DocumentID   string    `gorm:"primaryKey;type:varchar(256);column:document_id" json:"document_id"` // 稳定文档标识
	Title        string    `gorm:"type:varchar(500);not null;column:title" json:"title"`               // 法规标题
	ArticleCount int       `gorm:"column:article_count" json:"article_count"`                          // 条文数
	ChunkCount   int       `gorm:"column:chunk_count" json:"chunk_count"`                              // 切分后的分块数
	Inserted     int       `gorm:"column:inserted" json:"inserted"`                                    // 最近一次入库新增数
	Updated      int       `gorm:"column:updated" json:"updated"`                                      // 最近一次入库更新数
	Skipped      int       `gorm:"column:skipped" json:"skipped"`                                      // 最近一次入库跳过数
	IngestCount  int       `gorm:"default:0;column:ingest_count" json:"ingest_count"`                  // 累计入库次数
	CreateTime   time.Time `gorm:"column:create_time;autoCreateTime" json:"create_time"`
	UpdateTime   time.Time `gorm:"column:update_time;autoUpdateTime" json:"update_time"`
}

// TableName 指定表名
func (IngestedDocument) TableName() string {
	return "ingested_document"
}
