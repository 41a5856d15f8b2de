package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jobtrack-ai/jobtrack-api/internal/model"
)

type ResumeRepo struct {
	pool *pgxpool.Pool
}

func NewResumeRepo(pool *pgxpool.Pool) *ResumeRepo {
	return &ResumeRepo{pool: pool}
}

const resumeColumns = `id, user_id, file_name, original_name, is_primary, created_at`

func scanResume(row pgx.Row) (*model.Resume, error) {
	var r model.Resume
	if err := row.Scan(&r.ID, &r.UserID, &r.FileName, &r.OriginalName, &r.IsPrimary, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// Create inserts resume metadata. New resumes are never primary.
func (r *ResumeRepo) Create(ctx context.Context, userID uuid.UUID, fileName, originalName string) (*model.Resume, error) {
	created, err := scanResume(r.pool.QueryRow(ctx, `
		INSERT INTO resumes (user_id, file_name, original_name)
		VALUES ($1, $2, $3)
		RETURNING `+resumeColumns,
		userID, fileName, originalName,
	))
	if err != nil {
		return nil, fmt.Errorf("creating resume: %w", err)
	}
	return created, nil
}

// ListByUser returns the user's resumes, newest first
func (r *ResumeRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Resume, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+resumeColumns+`
		FROM resumes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing resumes: %w", err)
	}
	defer rows.Close()

	var resumes []model.Resume
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning resume row: %w", err)
		}
		resumes = append(resumes, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating resumes: %w", err)
	}
	return resumes, nil
}

// FindByID returns the resume only if userID owns it
func (r *ResumeRepo) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Resume, error) {
	res, err := scanResume(r.pool.QueryRow(ctx, `
		SELECT `+resumeColumns+`
		FROM resumes
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding resume: %w", err)
	}
	return res, nil
}

// SetPrimary makes id the user's only primary resume. The clear and the set
// run in one transaction; the user's rows are locked first so concurrent
// calls serialize. If the target does not belong to the user nothing changes
// and ErrNotFound is returned.
func (r *ResumeRepo) SetPrimary(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT id FROM resumes WHERE user_id = $1 ORDER BY id FOR UPDATE`, userID); err != nil {
		return fmt.Errorf("locking resumes: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE resumes SET is_primary = FALSE WHERE user_id = $1 AND is_primary
	`, userID); err != nil {
		return fmt.Errorf("clearing primary resume: %w", err)
	}

	result, err := tx.Exec(ctx, `
		UPDATE resumes SET is_primary = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("setting primary resume: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Delete removes the metadata row only; the stored file is the caller's job
func (r *ResumeRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM resumes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting resume: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
