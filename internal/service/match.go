package service

import (
	"context"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/model"
)

const (
	maxReasoningLen = 300

	matchFailedReasoning = "AI analysis failed."
	matchNoKeyReasoning  = "API Key missing. Cannot analyze."
)

const matchSystemPrompt = `You are an expert HR recruiter and resume screener.
Compare the candidate's resume to the job description.
Return ONLY a JSON object with:
- score (number, 0-100)
- reasoning (string, max 300 chars, explaining the score)

Be strict but fair. High scores (80+) require strong matching of skills and experience.`

// Matcher scores how well a resume fits a job
type Matcher struct {
	gen Generator
}

// NewMatcher builds a matcher. A nil generator means no API key is configured.
func NewMatcher(gen Generator) *Matcher {
	return &Matcher{gen: gen}
}

type matchOutput struct {
	Score     *float64    `json:"score"`
	Reasoning looseString `json:"reasoning"`
}

// Score never fails; upstream problems degrade to a zero score
func (m *Matcher) Score(ctx context.Context, resumeText string, job model.JobDetails) model.MatchResult {
	if m.gen == nil {
		log.Warn().Msg("No AI API key configured, skipping resume match")
		return model.MatchResult{Score: 0, Reasoning: matchNoKeyReasoning}
	}

	raw, err := m.gen.GenerateJSON(ctx, matchSystemPrompt, buildMatchPrompt(resumeText, job))
	if err != nil {
		log.Warn().Err(err).Msg("Resume match call failed")
		return model.MatchResult{Score: 0, Reasoning: matchFailedReasoning}
	}

	var out matchOutput
	if err := decodeJSONObject(raw, &out); err != nil || out.Score == nil {
		log.Warn().Err(err).Str("output", truncateRunes(raw, 200)).Msg("Resume match returned unusable output")
		return model.MatchResult{Score: 0, Reasoning: matchFailedReasoning}
	}

	return model.MatchResult{
		Score:     clampScore(*out.Score),
		Reasoning: truncateRunes(out.Reasoning.trimmed(), maxReasoningLen),
	}
}

func buildMatchPrompt(resumeText string, job model.JobDetails) string {
	return fmt.Sprintf(`JOB DETAILS:
Title: %s
Company: %s
Description: %s
Responsibilities: %s
Qualifications: %s

RESUME CONTENT:
%s`,
		job.JobTitle,
		job.Company,
		job.CompanyDescription,
		job.Responsibilities,
		job.RequiredQualifications,
		truncateRunes(resumeText, maxPromptInput),
	)
}

func clampScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
