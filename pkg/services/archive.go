package services

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// ArchiveBuilder bundles materialized files into a single deflate zip under
// the downloads directory. Entry names are relative to the output root, so
// the table directory structure is preserved but the root itself is not.
type ArchiveBuilder struct {
	downloadsDir string
	logger       *zap.Logger
}

// NewArchiveBuilder creates an ArchiveBuilder writing into downloadsDir.
func NewArchiveBuilder(downloadsDir string, logger *zap.Logger) *ArchiveBuilder {
	return &ArchiveBuilder{downloadsDir: downloadsDir, logger: logger}
}

// Build creates (or truncates) <downloadsDir>/<archiveName> containing every
// path in paths. Any unreadable source file aborts the whole build; there is
// no partial-success recovery.
func (b *ArchiveBuilder) Build(paths []string, outputRoot, archiveName string) (string, error) {
	if err := os.MkdirAll(b.downloadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}

	archivePath := filepath.Join(b.downloadsDir, archiveName)
	out, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to create archive %s: %w", archiveName, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, path := range paths {
		if err := b.addEntry(zw, path, outputRoot); err != nil {
			zw.Close()
			return "", err
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize archive %s: %w", archiveName, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to close archive %s: %w", archiveName, err)
	}

	b.logger.Info("built archive",
		zap.String("archive", archivePath),
		zap.Int("entries", len(paths)),
	)

	return archivePath, nil
}

func (b *ArchiveBuilder) addEntry(zw *zip.Writer, path, outputRoot string) error {
	rel, err := filepath.Rel(outputRoot, path)
	if err != nil {
		return fmt.Errorf("failed to relativize %s: %w", path, err)
	}

	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", path, err)
	}
	defer src.Close()

	w, err := zw.Create(filepath.ToSlash(rel))
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s: %w", rel, err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return fmt.Errorf("failed to archive %s: %w", rel, err)
	}

	return nil
}
