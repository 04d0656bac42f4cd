package docstore

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/laborguard/laborguard/core/errors"
)

// LocalSource 本地目录文档来源，读取目录下的法规JSON文件
type LocalSource struct {
	dir string
}

// NewLocalSource 创建本地目录来源
func NewLocalSource(dir string) (*LocalSource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to stat directory "+dir)
	}
	if !info.IsDir() {
		return nil, errors.Newf(errors.ErrInvalidParameter, "%s is not a directory", dir)
	}
	return &LocalSource{dir: dir}, nil
}

// List 列出目录下的全部文件名（不递归）
func (s *LocalSource) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to read directory "+s.dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// Open 打开目录下的指定文件
func (s *LocalSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, errors.Wrap(errors.ErrDocumentRead, err, "failed to open file "+name)
	}
	return f, nil
}
