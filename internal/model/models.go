package model

import (
	"time"

	"github.com/google/uuid"
)

// User is an account row. The password hash and verification token never leave the server.
type User struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	IsVerified        bool      `json:"is_verified"`
	VerificationToken *string   `json:"-"`
	CreatedAt         time.Time `json:"created_at"`
}

// PublicUser is the subset of a user returned by the auth endpoints
type PublicUser struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Application is a tracked job opportunity owned by one user.
// JSON tags follow the row shape the browser client reads.
type Application struct {
	ID                      uuid.UUID `json:"id"`
	UserID                  uuid.UUID `json:"user_id"`
	Company                 string    `json:"company"`
	JobTitle                string    `json:"job_title"`
	JobPostingID            *string   `json:"job_posting_id"`
	Location                *string   `json:"location"`
	Status                  string    `json:"status"`
	CompanyDescription      *string   `json:"company_description"`
	Responsibilities        *string   `json:"responsibilities"`
	RequiredQualifications  *string   `json:"required_qualifications"`
	PreferredQualifications *string   `json:"preferred_qualifications"`
	LogoURL                 *string   `json:"logo_url"`
	ResumeMatchScore        *int      `json:"resume_match_score"`
	AppliedDate             time.Time `json:"applied_date"`
	CreatedAt               time.Time `json:"created_at"`
}

// Application statuses
const (
	StatusSaved            = "Saved"
	StatusApplied          = "Applied"
	StatusOnlineAssessment = "Online Assessment"
	StatusInterviewing     = "Interviewing"
	StatusOffer            = "Offer"
	StatusRejected         = "Rejected"
	StatusOnHold           = "On hold"
	StatusAccepted         = "Accepted"
)

var Statuses = []string{
	StatusSaved, StatusApplied, StatusOnlineAssessment, StatusInterviewing,
	StatusOffer, StatusRejected, StatusOnHold, StatusAccepted,
}

func ValidStatus(s string) bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Resume is the metadata for an uploaded resume file. FileName is the
// storage-generated name; OriginalName is only shown to the user.
type Resume struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	FileName     string    `json:"file_name"`
	OriginalName string    `json:"original_name"`
	IsPrimary    bool      `json:"is_primary"`
	CreatedAt    time.Time `json:"created_at"`
}

// ExtractedJob is the structured record pulled out of a pasted job posting
type ExtractedJob struct {
	Company                 string  `json:"company"`
	JobTitle                string  `json:"jobTitle"`
	JobPostingID            *string `json:"jobPostingId"`
	Location                string  `json:"location"`
	Status                  string  `json:"status"`
	DescriptionSummary      string  `json:"descriptionSummary"`
	CompanyDescription      string  `json:"companyDescription"`
	Responsibilities        string  `json:"responsibilities"`
	RequiredQualifications  string  `json:"requiredQualifications"`
	PreferredQualifications *string `json:"preferredQualifications"`
}

// JobDetails are the job fields a resume is scored against
type JobDetails struct {
	JobTitle               string `json:"jobTitle"`
	Company                string `json:"company"`
	CompanyDescription     string `json:"companyDescription"`
	Responsibilities       string `json:"responsibilities"`
	RequiredQualifications string `json:"requiredQualifications"`
}

// MatchResult is a resume/job compatibility score. It is not stored on its
// own; the score may be folded into Application.ResumeMatchScore.
type MatchResult struct {
	Score     int    `json:"score"`
	Reasoning string `json:"reasoning"`
}
