package registry

import (
	"context"
	"time"

	"github.com/gogf/gf/v2/frame/g"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/ingest"
	"github.com/laborguard/laborguard/core/schema"
	gormModel "github.com/laborguard/laborguard/internal/model/gorm"
)

// Registry 文档登记库：记录每部法规的入库结果，供运维查询与重复入库审计
type Registry struct {
	db *gorm.DB
}

// New 按配置的驱动初始化文档登记库并完成表迁移
func New(ctx context.Context, driver, dsn string) (*Registry, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	var err error

	switch driver {
	case "mysql":
		db, err = gorm.Open(mysql.Open(dsn), gormConfig)
	case "postgresql", "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	default:
		return nil, errors.Newf(errors.ErrRegistryInit, "unsupported registry driver: %s", driver)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrRegistryInit, err, "failed to connect registry database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(errors.ErrRegistryInit, err, "failed to get database instance")
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err = gormModel.Migrate(db); err != nil {
		return nil, errors.Wrap(errors.ErrRegistryInit, err, "failed to migrate registry tables")
	}

	g.Log().Infof(ctx, "document registry initialized, driver: %s", driver)
	return &Registry{db: db}, nil
}

// RecordIngestion 登记一次入库结果。首次入库创建记录，
// 重复入库更新结果快照并累加入库次数。
func (r *Registry) RecordIngestion(ctx context.Context, doc schema.LegalDocument, summary ingest.Summary) error {
	chunkCount := summary.Inserted + summary.Updated + summary.Skipped

	var existing gormModel.IngestedDocument
	err := r.db.WithContext(ctx).Where("document_id = ?", doc.DocumentID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		record := gormModel.IngestedDocument{
			DocumentID:   doc.DocumentID,
			Title:        doc.Title,
			ArticleCount: len(doc.Articles),
			ChunkCount:   chunkCount,
			Inserted:     summary.Inserted,
			Updated:      summary.Updated,
			Skipped:      summary.Skipped,
			IngestCount:  1,
		}
		if err = r.db.WithContext(ctx).Create(&record).Error; err != nil {
			return errors.Wrap(errors.ErrRegistryWrite, err, "failed to create ingestion record")
		}
		return nil
	}
	if err != nil {
		return errors.Wrap(errors.ErrRegistryQuery, err, "failed to query ingestion record")
	}

	updates := map[string]interface{}{
		"title":         doc.Title,
		"article_count": len(doc.Articles),
		"chunk_count":   chunkCount,
		"inserted":      summary.Inserted,
		"updated":       summary.Updated,
		"skipped":       summary.Skipped,
		"ingest_count":  gorm.Expr("ingest_count + 1"),
	}
	if err = r.db.WithContext(ctx).Model(&gormModel.IngestedDocument{}).
		Where("document_id = ?", doc.DocumentID).
		Updates(updates).Error; err != nil {
		return errors.Wrap(errors.ErrRegistryWrite, err, "failed to update ingestion record")
	}
	return nil
}

// GetDocument 查询单部法规的登记信息
func (r *Registry) GetDocument(ctx context.Context, documentID string) (*gormModel.IngestedDocument, error) {
	var record gormModel.IngestedDocument
	err := r.db.WithContext(ctx).Where("document_id = ?", documentID).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Newf(errors.ErrNotFound, "document %s not found in registry", documentID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrRegistryQuery, err, "failed to query registry")
	}
	return &record, nil
}

// ListDocuments 列出所有已登记法规
func (r *Registry) ListDocuments(ctx context.Context) ([]gormModel.IngestedDocument, error) {
	var records []gormModel.IngestedDocument
	if err := r.db.WithContext(ctx).Order("document_id").Find(&records).Error; err != nil {
		return nil, errors.Wrap(errors.ErrRegistryQuery, err, "failed to list registry")
	}
	return records, nil
}

// Close 关闭底层数据库连接
func (r *Registry) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
