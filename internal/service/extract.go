package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jobtrack-ai/jobtrack-api/internal/model"
)

// MockJobPostingID marks an extraction that came from the heuristic fallback
const MockJobPostingID = "MOCK-GROQ-FAIL"

const extractSystemPrompt = `You are a helpful assistant that extracts job details from text.
Return ONLY a JSON object with the following keys:
- company (string)
- jobTitle (string)
- jobPostingId (string or null)
- location (string)
- status (string, default "Applied")
- descriptionSummary (string, max 200 chars)
- companyDescription (string, max 300 chars)
- responsibilities (string, bullet points separated by newlines)
- requiredQualifications (string, bullet points separated by newlines)
- preferredQualifications (string or null, bullet points separated by newlines)
Do not include any other text or markdown.`

var (
	fallbackCompanyRe = regexp.MustCompile(`(?:at|for) ([A-Z][a-z]+(?: [A-Z][a-z]+)*)`)
	fallbackTitleRe   = regexp.MustCompile(`(?i:looking for a|hiring a) ([A-Z][a-z]+(?: [A-Z][a-z]+)*)`)
)

// Extractor turns a pasted job posting into structured fields
type Extractor struct {
	gen Generator
}

// NewExtractor builds an extractor. A nil generator means no API key is
// configured and every call uses the fallback.
func NewExtractor(gen Generator) *Extractor {
	return &Extractor{gen: gen}
}

type extractedFields struct {
	Company                 looseString `json:"company"`
	JobTitle                looseString `json:"jobTitle"`
	JobPostingID            looseString `json:"jobPostingId"`
	Location                looseString `json:"location"`
	Status                  looseString `json:"status"`
	DescriptionSummary      looseString `json:"descriptionSummary"`
	CompanyDescription      looseString `json:"companyDescription"`
	Responsibilities        looseString `json:"responsibilities"`
	RequiredQualifications  looseString `json:"requiredQualifications"`
	PreferredQualifications looseString `json:"preferredQualifications"`
}

// Extract never fails. When the model is unavailable or answers with
// something unusable the heuristic fallback record is returned instead.
func (e *Extractor) Extract(ctx context.Context, text string) model.ExtractedJob {
	if e.gen == nil {
		log.Warn().Msg("No AI API key configured, using mock extraction")
		return fallbackExtraction(text)
	}

	raw, err := e.gen.GenerateJSON(ctx, extractSystemPrompt,
		fmt.Sprintf("Extract details from this job description:\n\n%s", truncateRunes(text, maxPromptInput)))
	if err != nil {
		log.Warn().Err(err).Msg("Job extraction call failed, using mock extraction")
		return fallbackExtraction(text)
	}

	var fields extractedFields
	if err := decodeJSONObject(raw, &fields); err != nil {
		log.Warn().Err(err).Msg("Job extraction returned unusable output, using mock extraction")
		return fallbackExtraction(text)
	}

	return model.ExtractedJob{
		Company:                 fields.Company.trimmed(),
		JobTitle:                fields.JobTitle.trimmed(),
		JobPostingID:            fields.JobPostingID.ptr(),
		Location:                fields.Location.trimmed(),
		Status:                  normalizeStatus(fields.Status.trimmed()),
		DescriptionSummary:      fields.DescriptionSummary.trimmed(),
		CompanyDescription:      fields.CompanyDescription.trimmed(),
		Responsibilities:        fields.Responsibilities.trimmed(),
		RequiredQualifications:  fields.RequiredQualifications.trimmed(),
		PreferredQualifications: fields.PreferredQualifications.ptr(),
	}
}

// normalizeStatus maps s onto a known status, case-insensitively, defaulting to Applied
func normalizeStatus(s string) string {
	for _, status := range model.Statuses {
		if strings.EqualFold(s, status) {
			return status
		}
	}
	return model.StatusApplied
}

func fallbackExtraction(text string) model.ExtractedJob {
	company := "Example Corp (Mock)"
	if m := fallbackCompanyRe.FindStringSubmatch(text); m != nil {
		company = m[1]
	}
	title := "Software Engineer (Mock)"
	if m := fallbackTitleRe.FindStringSubmatch(text); m != nil {
		title = m[1]
	}

	postingID := MockJobPostingID
	preferred := "- Mock preferred qualification 1"
	return model.ExtractedJob{
		Company:                 company,
		JobTitle:                title,
		JobPostingID:            &postingID,
		Location:                "Remote (Mock)",
		Status:                  model.StatusApplied,
		DescriptionSummary:      "Groq extraction failed. Using mock data.",
		CompanyDescription:      "Mock company description.",
		Responsibilities:        "- Mock responsibility 1\n- Mock responsibility 2",
		RequiredQualifications:  "- Mock qualification 1",
		PreferredQualifications: &preferred,
	}
}
