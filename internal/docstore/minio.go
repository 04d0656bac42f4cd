package docstore

import (
	"context"
	"io"

	"github.com/gogf/gf/v2/frame/g"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/laborguard/laborguard/core/errors"
)

// MinioSource 对象存储文档来源，从指定bucket读取法规JSON文件
type MinioSource struct {
	client *minio.Client
	bucket string
}

// NewMinioSource 创建对象存储来源，bucket不存在时自动创建
func NewMinioSource(ctx context.Context, endpoint, accessKey, secretKey, bucket string, ssl bool) (*MinioSource, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: ssl,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to create MinIO client")
	}

	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to check if bucket exists")
	}
	if !exists {
		if err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: ""}); err != nil {
			return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to create bucket")
		}
		g.Log().Infof(ctx, "created bucket '%s'", bucket)
	}

	return &MinioSource{
		client: client,
		bucket: bucket,
	}, nil
}

// List 列出bucket中的全部对象名
func (s *MinioSource) List(ctx context.Context) ([]string, error) {
	var names []string
	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, errors.Wrap(errors.ErrDocumentRead, object.Err, "failed to list objects")
		}
		names = append(names, object.Key)
	}
	return names, nil
}

// Open 打开bucket中的指定对象
func (s *MinioSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to get object "+name)
	}
	return obj, nil
}
