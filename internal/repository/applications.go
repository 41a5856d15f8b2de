package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jobtrack-ai/jobtrack-api/internal/model"
)

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

const applicationColumns = `id, user_id, company, job_title, job_posting_id, location, status,
	company_description, responsibilities, required_qualifications,
	preferred_qualifications, logo_url, resume_match_score, applied_date, created_at`

func scanApplication(row pgx.Row) (*model.Application, error) {
	var a model.Application
	err := row.Scan(
		&a.ID, &a.UserID, &a.Company, &a.JobTitle, &a.JobPostingID, &a.Location, &a.Status,
		&a.CompanyDescription, &a.Responsibilities, &a.RequiredQualifications,
		&a.PreferredQualifications, &a.LogoURL, &a.ResumeMatchScore, &a.AppliedDate, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// appliedDateArg maps the zero date to NULL so the column default (today) applies
func appliedDateArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// Create inserts an application owned by a.UserID and returns the stored row
func (r *ApplicationRepo) Create(ctx context.Context, a *model.Application) (*model.Application, error) {
	status := a.Status
	if status == "" {
		status = model.StatusApplied
	}

	created, err := scanApplication(r.pool.QueryRow(ctx, `
		INSERT INTO applications (user_id, company, job_title, job_posting_id, location, status,
		                          company_description, responsibilities, required_qualifications,
		                          preferred_qualifications, logo_url, resume_match_score, applied_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, COALESCE($13, CURRENT_DATE))
		RETURNING `+applicationColumns,
		a.UserID, a.Company, a.JobTitle, a.JobPostingID, a.Location, status,
		a.CompanyDescription, a.Responsibilities, a.RequiredQualifications,
		a.PreferredQualifications, a.LogoURL, a.ResumeMatchScore, appliedDateArg(a.AppliedDate),
	))
	if err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}
	return created, nil
}

// ListByUser returns the user's applications, most recently applied first
func (r *ApplicationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Application, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE user_id = $1
		ORDER BY applied_date DESC, created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing applications: %w", err)
	}
	defer rows.Close()

	var apps []model.Application
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning application row: %w", err)
		}
		apps = append(apps, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applications: %w", err)
	}
	return apps, nil
}

// FindByID returns the application only if userID owns it
func (r *ApplicationRepo) FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Application, error) {
	a, err := scanApplication(r.pool.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM applications
		WHERE id = $1 AND user_id = $2
	`, id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding application: %w", err)
	}
	return a, nil
}

// Update replaces every mutable column of the application. Callers merge
// partial input onto the stored row first. Returns ErrNotFound when the
// row is missing or owned by someone else.
func (r *ApplicationRepo) Update(ctx context.Context, a *model.Application) (*model.Application, error) {
	updated, err := scanApplication(r.pool.QueryRow(ctx, `
		UPDATE applications
		SET company = $3, job_title = $4, job_posting_id = $5, location = $6, status = $7,
		    company_description = $8, responsibilities = $9, required_qualifications = $10,
		    preferred_qualifications = $11, logo_url = $12, resume_match_score = $13,
		    applied_date = COALESCE($14, applied_date)
		WHERE id = $1 AND user_id = $2
		RETURNING `+applicationColumns,
		a.ID, a.UserID, a.Company, a.JobTitle, a.JobPostingID, a.Location, a.Status,
		a.CompanyDescription, a.Responsibilities, a.RequiredQualifications,
		a.PreferredQualifications, a.LogoURL, a.ResumeMatchScore, appliedDateArg(a.AppliedDate),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("updating application: %w", err)
	}
	return updated, nil
}

// Delete removes the application and reports whether a row was actually removed
func (r *ApplicationRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting application: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
