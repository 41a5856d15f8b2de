package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/model"
	"github.com/jobtrack-ai/jobtrack-api/internal/repository"
	"github.com/jobtrack-ai/jobtrack-api/internal/storage"
)

type ResumeFinder interface {
	FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Resume, error)
}

type ApplicationScorer interface {
	FindByID(ctx context.Context, id, userID uuid.UUID) (*model.Application, error)
	Update(ctx context.Context, a *model.Application) (*model.Application, error)
}

// MatchRequest scores one of the caller's resumes against a job. When
// ApplicationID is set the score is also saved on that application.
type MatchRequest struct {
	UserID        uuid.UUID
	ResumeID      uuid.UUID
	ApplicationID *uuid.UUID
	Job           model.JobDetails
}

// ResumeMatchService runs the resume match flow: resolve the resume, read
// its file, extract text, score it and optionally store the score.
type ResumeMatchService struct {
	resumes ResumeFinder
	apps    ApplicationScorer
	files   storage.FileStore
	matcher *Matcher
}

func NewResumeMatchService(resumes ResumeFinder, apps ApplicationScorer, files storage.FileStore, matcher *Matcher) *ResumeMatchService {
	return &ResumeMatchService{resumes: resumes, apps: apps, files: files, matcher: matcher}
}

func (s *ResumeMatchService) Match(ctx context.Context, req MatchRequest) (model.MatchResult, error) {
	resume, err := s.resumes.FindByID(ctx, req.ResumeID, req.UserID)
	if err != nil {
		return model.MatchResult{}, err
	}
	if resume == nil {
		return model.MatchResult{}, ErrResumeNotFound
	}

	data, err := s.readResumeFile(ctx, resume)
	if err != nil {
		return model.MatchResult{}, err
	}

	text, err := ExtractPDFText(data)
	if err != nil {
		return model.MatchResult{}, fmt.Errorf("extracting resume text: %w", err)
	}

	result := s.matcher.Score(ctx, text, req.Job)

	if req.ApplicationID != nil {
		if err := s.saveScore(ctx, req.UserID, *req.ApplicationID, result.Score); err != nil {
			return model.MatchResult{}, err
		}
	}

	return result, nil
}

func (s *ResumeMatchService) readResumeFile(ctx context.Context, resume *model.Resume) ([]byte, error) {
	ok, err := s.files.Exists(ctx, resume.FileName)
	if err != nil {
		return nil, fmt.Errorf("checking resume file: %w", err)
	}
	if !ok {
		log.Error().
			Str("resume_id", resume.ID.String()).
			Str("file_name", resume.FileName).
			Msg("Resume metadata points at a missing file")
		return nil, ErrResumeFileMissing
	}

	rc, err := s.files.Open(ctx, resume.FileName)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrResumeFileMissing
	}
	if err != nil {
		return nil, fmt.Errorf("opening resume file: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading resume file: %w", err)
	}
	return data, nil
}

// saveScore copies the application, replaces only the score and writes the
// full record back. A missing application is skipped without error.
func (s *ResumeMatchService) saveScore(ctx context.Context, userID, appID uuid.UUID, score int) error {
	app, err := s.apps.FindByID(ctx, appID, userID)
	if err != nil {
		return err
	}
	if app == nil {
		log.Info().Str("application_id", appID.String()).Msg("Match score not saved, application not found")
		return nil
	}

	updated := *app
	updated.ResumeMatchScore = &score
	if _, err := s.apps.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Info().Str("application_id", appID.String()).Msg("Match score not saved, application deleted")
			return nil
		}
		return fmt.Errorf("saving match score: %w", err)
	}
	return nil
}
