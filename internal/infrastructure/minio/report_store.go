package minio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zakupka-tech/go-backend/internal/cfg"
	"github.com/zakupka-tech/go-backend/pkg/e"
	"github.com/zakupka-tech/go-backend/pkg/logger"
	"github.com/minio/minio-go/v7"
)

// ReportStore сохраняет артефакты импорта: журнал ошибок пишется на локальный
// диск и дублируется в MinIO. Локальная запись обязательна, загрузка в MinIO —
// нет: при её сбое остаётся локальная копия.
type ReportStore struct {
	client *minio.Client
	cfg    *cfg.MinIOCfg
	dir    string
	logger logger.Logger
}

func NewReportStore(client *minio.Client, cfg *cfg.MinIOCfg, dir string, logger logger.Logger) *ReportStore {
	return &ReportStore{
		client: client,
		cfg:    cfg,
		dir:    dir,
		logger: logger,
	}
}

// SaveErrorReport сохраняет журнал ошибок под заданным именем и возвращает
// адрес сохранённой копии: объект в MinIO либо локальный путь.
func (s *ReportStore) SaveErrorReport(ctx context.Context, name string, data []byte) (string, error) {
	const op = "ReportStore.SaveErrorReport"

	localPath := filepath.Join(s.dir, name)
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", e.Wrap(op, err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return "", e.Wrap(op, err)
	}

	if s.client == nil {
		return localPath, nil
	}

	_, err := s.client.PutObject(ctx, s.cfg.BucketName, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		s.logger.Warnf("error report upload failed, local copy kept at %s: %v", localPath, err)
		return localPath, nil
	}

	return fmt.Sprintf("%s/%s", s.cfg.BucketName, name), nil
}
