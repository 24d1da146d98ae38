package models

import (
	"time"

	"github.com/google/uuid"
)

// Job status values.
const (
	JobStatusSuccess = "success"
	JobStatusFailed  = "failed"
)

// GenerationJob is the audit record for one ingest request. It is persisted
// only when the job store is enabled; the generation pipeline itself never
// depends on it.
type GenerationJob struct {
	ID             uuid.UUID `json:"id"`
	SourceFilename string    `json:"source_filename"`
	RecordCount    int       `json:"record_count"`
	DocumentCount  int       `json:"document_count"`
	SkippedCount   int       `json:"skipped_count"`
	FileCount      int       `json:"file_count"`
	ArchiveName    string    `json:"archive_name"`
	Status         string    `json:"status"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
