package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fixtureforge/forge-engine/pkg/apperrors"
	"github.com/fixtureforge/forge-engine/pkg/database"
	"github.com/fixtureforge/forge-engine/pkg/models"
)

// JobRepository provides data access for the generation-job audit trail.
type JobRepository interface {
	// Create inserts a new generation job record.
	Create(ctx context.Context, job *models.GenerationJob) error

	// GetByID returns a single job, or apperrors.ErrNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error)

	// ListRecent returns the most recent jobs, newest first.
	ListRecent(ctx context.Context, limit int) ([]*models.GenerationJob, error)
}

type jobRepository struct {
	db *database.DB
}

// NewJobRepository creates a JobRepository backed by PostgreSQL.
func NewJobRepository(db *database.DB) JobRepository {
	return &jobRepository{db: db}
}

var _ JobRepository = (*jobRepository)(nil)

func (r *jobRepository) Create(ctx context.Context, job *models.GenerationJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO generation_jobs (
			id, source_filename, record_count, document_count, skipped_count,
			file_count, archive_name, status, error, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		job.ID,
		job.SourceFilename,
		job.RecordCount,
		job.DocumentCount,
		job.SkippedCount,
		job.FileCount,
		job.ArchiveName,
		job.Status,
		job.Error,
		job.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create generation job: %w", err)
	}

	return nil
}

func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GenerationJob, error) {
	query := `
		SELECT id, source_filename, record_count, document_count, skipped_count,
		       file_count, archive_name, status, error, created_at
		FROM generation_jobs
		WHERE id = $1`

	job, err := scanJob(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get generation job: %w", err)
	}

	return job, nil
}

func (r *jobRepository) ListRecent(ctx context.Context, limit int) ([]*models.GenerationJob, error) {
	query := `
		SELECT id, source_filename, record_count, document_count, skipped_count,
		       file_count, archive_name, status, error, created_at
		FROM generation_jobs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query generation jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.GenerationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan generation job: %w", err)
		}
		jobs = append(jobs, job)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating generation jobs: %w", err)
	}

	return jobs, nil
}

func scanJob(row pgx.Row) (*models.GenerationJob, error) {
	var job models.GenerationJob
	err := row.Scan(
		&job.ID,
		&job.SourceFilename,
		&job.RecordCount,
		&job.DocumentCount,
		&job.SkippedCount,
		&job.FileCount,
		&job.ArchiveName,
		&job.Status,
		&job.Error,
		&job.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}
