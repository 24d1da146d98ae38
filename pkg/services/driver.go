package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fixtureforge/forge-engine/pkg/apperrors"
	"github.com/fixtureforge/forge-engine/pkg/models"
	"github.com/fixtureforge/forge-engine/pkg/repositories"
	"github.com/fixtureforge/forge-engine/pkg/schema"
)

// DocumentResult is the outcome of processing one metadata document. Either
// Paths is populated or Err is set; container processing aggregates both
// kinds without aborting siblings.
type DocumentResult struct {
	Name      string
	TableName string
	Paths     []string
	Err       error
}

// IngestResult is the aggregate outcome of one ingest request.
type IngestResult struct {
	JobID       uuid.UUID
	ArchiveName string
	ArchivePath string
	FileCount   int
	Documents   []DocumentResult
}

// Skipped returns how many container documents failed and were skipped.
func (r *IngestResult) Skipped() int {
	n := 0
	for _, doc := range r.Documents {
		if doc.Err != nil {
			n++
		}
	}
	return n
}

// IngestionDriver orchestrates the generation pipeline: extract a schema per
// document, synthesize records, materialize files, archive everything. It
// accepts either a single metadata document or a zip container of many. This
// is the only component the HTTP boundary talks to.
type IngestionDriver struct {
	synthesizer  *RecordSynthesizer
	materializer *FileMaterializer
	archiver     *ArchiveBuilder
	jobs         repositories.JobRepository // nil disables the audit trail
	outputDir    string
	logger       *zap.Logger
}

// NewIngestionDriver creates an IngestionDriver. jobs may be nil; the
// pipeline then runs without an audit trail.
func NewIngestionDriver(
	synthesizer *RecordSynthesizer,
	materializer *FileMaterializer,
	archiver *ArchiveBuilder,
	jobs repositories.JobRepository,
	outputDir string,
	logger *zap.Logger,
) *IngestionDriver {
	return &IngestionDriver{
		synthesizer:  synthesizer,
		materializer: materializer,
		archiver:     archiver,
		jobs:         jobs,
		outputDir:    outputDir,
		logger:       logger,
	}
}

// Ingest processes one uploaded schema file. A filename ending in .zip is
// treated as a container of metadata documents; per-document failures inside
// a container are logged and skipped. For a single document any failure
// aborts the request. All generated files end up in one archive under a
// per-job output root.
func (d *IngestionDriver) Ingest(ctx context.Context, filename string, payload []byte, count int) (*IngestResult, error) {
	jobID := uuid.New()
	outputRoot := filepath.Join(d.outputDir, jobID.String())

	result := &IngestResult{JobID: jobID}

	var err error
	if strings.EqualFold(path.Ext(filename), ".zip") {
		result.Documents, err = d.processContainer(payload, count, outputRoot)
	} else {
		res := d.processDocument(filename, payload, count, outputRoot)
		result.Documents = []DocumentResult{res}
		err = res.Err
	}
	if err != nil {
		d.recordJob(ctx, result, filename, count, err)
		return nil, err
	}

	var paths []string
	for _, doc := range result.Documents {
		paths = append(paths, doc.Paths...)
	}
	result.FileCount = len(paths)

	result.ArchiveName = fmt.Sprintf("generated_data_%s.zip", jobID)
	result.ArchivePath, err = d.archiver.Build(paths, outputRoot, result.ArchiveName)
	if err != nil {
		d.recordJob(ctx, result, filename, count, err)
		return nil, fmt.Errorf("failed to build archive: %w", err)
	}

	d.recordJob(ctx, result, filename, count, nil)

	d.logger.Info("ingest complete",
		zap.String("job_id", jobID.String()),
		zap.String("source", filename),
		zap.Int("documents", len(result.Documents)),
		zap.Int("skipped", result.Skipped()),
		zap.Int("files", result.FileCount),
	)

	return result, nil
}

// processContainer expands a zip container and processes every contained
// metadata document independently. A document failure is recorded in its
// DocumentResult and never aborts siblings; a container that yields no
// successful document at all is an error.
func (d *IngestionDriver) processContainer(payload []byte, count int, outputRoot string) ([]DocumentResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a readable zip container: %v", apperrors.ErrInvalidFormat, err)
	}

	var results []DocumentResult
	succeeded := 0
	for _, entry := range zr.File {
		if entry.FileInfo().IsDir() || !isMetadataFile(entry.Name) {
			continue
		}

		data, err := readZipEntry(entry)
		if err != nil {
			results = append(results, DocumentResult{Name: entry.Name, Err: err})
			d.logger.Warn("skipping unreadable container entry",
				zap.String("entry", entry.Name),
				zap.Error(err),
			)
			continue
		}

		res := d.processDocument(entry.Name, data, count, outputRoot)
		if res.Err != nil {
			d.logger.Warn("skipping failed document",
				zap.String("entry", entry.Name),
				zap.Error(res.Err),
			)
		} else {
			succeeded++
		}
		results = append(results, res)
	}

	if succeeded == 0 {
		return results, apperrors.ErrNoDocuments
	}
	return results, nil
}

// processDocument runs one document through the extract -> synthesize ->
// materialize sequence.
func (d *IngestionDriver) processDocument(name string, data []byte, count int, outputRoot string) DocumentResult {
	result := DocumentResult{Name: name}

	doc, err := parseDocument(name, data)
	if err != nil {
		result.Err = err
		return result
	}

	tableSchema := schema.Extract(doc)
	result.TableName = tableSchema.TableName

	envelopes, err := d.synthesizer.Synthesize(tableSchema, count)
	if err != nil {
		result.Err = err
		return result
	}

	rendered, err := d.materializer.Render(tableSchema, envelopes)
	if err != nil {
		result.Err = err
		return result
	}

	result.Paths, result.Err = d.materializer.Materialize(outputRoot, rendered)
	return result
}

// recordJob persists the audit record for this request when the job store is
// enabled. Audit failures are logged, never escalated.
func (d *IngestionDriver) recordJob(ctx context.Context, result *IngestResult, filename string, count int, ingestErr error) {
	if d.jobs == nil {
		return
	}

	job := &models.GenerationJob{
		ID:             result.JobID,
		SourceFilename: filename,
		RecordCount:    count,
		DocumentCount:  len(result.Documents),
		SkippedCount:   result.Skipped(),
		FileCount:      result.FileCount,
		ArchiveName:    result.ArchiveName,
		Status:         models.JobStatusSuccess,
	}
	if ingestErr != nil {
		job.Status = models.JobStatusFailed
		job.Error = ingestErr.Error()
	}

	if err := d.jobs.Create(ctx, job); err != nil {
		d.logger.Error("failed to record generation job",
			zap.String("job_id", result.JobID.String()),
			zap.Error(err),
		)
	}
}

// isMetadataFile reports whether a container entry name matches the metadata
// document naming convention.
func isMetadataFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// parseDocument picks the parser from the file extension; anything that is
// not YAML is parsed as JSON.
func parseDocument(name string, data []byte) (schema.Document, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return schema.ParseYAML(data)
	default:
		return schema.ParseJSON(data)
	}
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open container entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read container entry %s: %w", entry.Name, err)
	}
	return data, nil
}
