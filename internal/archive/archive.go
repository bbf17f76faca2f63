package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/equiplend/invoice-pipeline/constants"
	"github.com/equiplend/invoice-pipeline/internal/entity"
)

// Store produces a durable copy of raw document bytes and returns a stable
// path for the audit trail.
type Store interface {
	Archive(ctx context.Context, doc entity.RawDocument) (string, error)
}

// DirStore archives documents under a local directory. Object storage sits
// behind the same interface in other deployments.
type DirStore struct {
	dir    string
	logger *slog.Logger
}

func NewDirStore(dir string, logger *slog.Logger) (*DirStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &DirStore{dir: dir, logger: logger}, nil
}

func (s *DirStore) Archive(_ context.Context, doc entity.RawDocument) (string, error) {
	name := uuid.New().String() + archiveExt(doc)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, doc.Data, 0o644); err != nil {
		return "", fmt.Errorf("archive write: %w", err)
	}
	s.logger.Debug("archived document", "path", path, "bytes", len(doc.Data))
	return path, nil
}

func archiveExt(doc entity.RawDocument) string {
	if ext := constants.NormalizeExt(filepath.Ext(doc.Filename)); ext != "" {
		return "." + ext
	}
	switch constants.MapMediaType(doc.MediaType) {
	case constants.PDF:
		return ".pdf"
	case constants.IMAGE:
		return ".png"
	}
	return ".bin"
}
