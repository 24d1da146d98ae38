package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fixtureforge/forge-engine/pkg/models"
)

// RenderedFile is one envelope serialized for output. Name is the
// table-relative path the file takes inside the output root (and later inside
// the archive).
type RenderedFile struct {
	Name string
	Data []byte
}

// FileMaterializer renders envelopes to pretty-printed JSON and writes them
// under a per-job output root. Rendering and writing are split so a caller
// can hand rendered entries straight to the archive builder without the disk
// round-trip.
type FileMaterializer struct {
	logger *zap.Logger
}

// NewFileMaterializer creates a FileMaterializer.
func NewFileMaterializer(logger *zap.Logger) *FileMaterializer {
	return &FileMaterializer{logger: logger}
}

// Render serializes each envelope with 4-space indentation and assigns its
// deterministic name: <tableName>/<schemaKey>_<entityKey>_file<i>.json with i
// 1-based in envelope order.
func (m *FileMaterializer) Render(schema *models.Schema, envelopes []models.TransactionEnvelope) ([]RenderedFile, error) {
	files := make([]RenderedFile, 0, len(envelopes))
	for i, envelope := range envelopes {
		data, err := json.MarshalIndent(envelope, "", "    ")
		if err != nil {
			return nil, fmt.Errorf("failed to serialize envelope %d for table %s: %w", i+1, schema.TableName, err)
		}

		filename := fmt.Sprintf("%s_%s_file%d.json", schema.SchemaKey, schema.EntityKey, i+1)
		files = append(files, RenderedFile{
			Name: filepath.Join(schema.TableName, filename),
			Data: data,
		})
	}
	return files, nil
}

// Materialize writes rendered files under outputRoot, creating table
// subdirectories as needed. Pre-existing files at the same paths are
// overwritten. Returns the written paths in input order.
func (m *FileMaterializer) Materialize(outputRoot string, files []RenderedFile) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		path := filepath.Join(outputRoot, file.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory for %s: %w", file.Name, err)
		}
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
		paths = append(paths, path)
	}

	m.logger.Debug("materialized files",
		zap.String("output_root", outputRoot),
		zap.Int("files", len(paths)),
	)

	return paths, nil
}
