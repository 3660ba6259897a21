package integration

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ObjectStorage 对象存储接口
// 输入本地文件路径和目标目录,返回可公开访问的 URL
type ObjectStorage interface {
	Upload(ctx context.Context, localPath string, folder string) (string, error)
}

// LocalObjectStorage 本地目录对象存储实现
// 把文件拷贝到 baseDir/folder 下并返回 baseURL 拼接的访问路径,
// 生产部署时替换为云存储实现
type LocalObjectStorage struct {
	baseDir string
	baseURL string
}

// NewLocalObjectStorage 创建本地对象存储
func NewLocalObjectStorage(baseDir string, baseURL string) *LocalObjectStorage {
	return &LocalObjectStorage{baseDir: baseDir, baseURL: baseURL}
}

// Upload 上传文件
// 目标文件名加 uuid 前缀避免覆盖
func (s *LocalObjectStorage) Upload(ctx context.Context, localPath string, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	src, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open local file: %w", err)
	}
	defer src.Close()

	dir := filepath.Join(s.baseDir, folder)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create storage folder: %w", err)
	}

	name := uuid.New().String() + "-" + filepath.Base(localPath)
	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create storage file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dstPath)
		return "", fmt.Errorf("failed to copy file: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", s.baseURL, folder, name), nil
}
