package output

import (
	"context"
	"os"
	"path/filepath"

	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

// FileSink writes documents under a local directory, creating it if needed.
type FileSink struct {
	Dir      string
	Filename string
}

// NewFileSink creates a sink rooted at dir.
func NewFileSink(dir, filename string) *FileSink {
	return &FileSink{Dir: dir, Filename: filename}
}

// Path returns the target path for a document kind.
func (s *FileSink) Path(kind DocumentKind) string {
	return filepath.Join(s.Dir, FileName(s.Filename, kind))
}

func (s *FileSink) Write(ctx context.Context, doc Document) (string, error) {
	target := s.Path(doc.Kind)
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewWriteError(target, err)
	}

	data, err := Encode(doc)
	if err != nil {
		return "", apperrors.NewWriteError(target, err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", apperrors.NewWriteError(target, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", apperrors.NewWriteError(target, err)
	}
	return target, nil
}

func (s *FileSink) Remove(ctx context.Context, kind DocumentKind) (string, error) {
	target := s.Path(kind)
	if err := ctx.Err(); err != nil {
		return "", apperrors.NewWriteError(target, err)
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return "", apperrors.NewWriteError(target, err)
	}
	return target, nil
}
