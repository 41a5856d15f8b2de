package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Optional records whether a JSON key was present at all, and if so whether
// it was null. A missing key leaves Set false.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// present reports whether the key was sent with a non-null value
func (o Optional[T]) present() bool {
	return o.Set && !o.Null
}

// ApplicationPatch is the body of both create and update requests.
// Every field is optional; Apply decides what an absent field means.
type ApplicationPatch struct {
	Company                 Optional[string] `json:"company"`
	JobTitle                Optional[string] `json:"jobTitle"`
	JobPostingID            Optional[string] `json:"jobPostingId"`
	Location                Optional[string] `json:"location"`
	Status                  Optional[string] `json:"status"`
	CompanyDescription      Optional[string] `json:"companyDescription"`
	Responsibilities        Optional[string] `json:"responsibilities"`
	RequiredQualifications  Optional[string] `json:"requiredQualifications"`
	PreferredQualifications Optional[string] `json:"preferredQualifications"`
	LogoURL                 Optional[string] `json:"logoUrl"`
	AppliedDate             Optional[string] `json:"appliedDate"`
	ResumeMatchScore        Optional[int]    `json:"resumeMatchScore"`
}

// HasRequired reports whether both company and jobTitle carry a non-blank value
func (p *ApplicationPatch) HasRequired() bool {
	return p.Company.present() && strings.TrimSpace(p.Company.Value) != "" &&
		p.JobTitle.present() && strings.TrimSpace(p.JobTitle.Value) != ""
}

// Apply merges the patch onto base and returns the result; base is not modified.
//
// Company, job title and status keep the base value unless a non-empty value
// is supplied. Nullable fields are overwritten whenever the key is present,
// so an explicit null clears them.
func (p *ApplicationPatch) Apply(base Application) (Application, error) {
	out := base

	if p.Company.present() && p.Company.Value != "" {
		out.Company = p.Company.Value
	}
	if p.JobTitle.present() && p.JobTitle.Value != "" {
		out.JobTitle = p.JobTitle.Value
	}
	if p.Status.present() && p.Status.Value != "" {
		if !ValidStatus(p.Status.Value) {
			return base, fmt.Errorf("invalid status %q", p.Status.Value)
		}
		out.Status = p.Status.Value
	}

	mergeNullable(&out.JobPostingID, p.JobPostingID)
	mergeNullable(&out.Location, p.Location)
	mergeNullable(&out.CompanyDescription, p.CompanyDescription)
	mergeNullable(&out.Responsibilities, p.Responsibilities)
	mergeNullable(&out.RequiredQualifications, p.RequiredQualifications)
	mergeNullable(&out.PreferredQualifications, p.PreferredQualifications)
	mergeNullable(&out.LogoURL, p.LogoURL)

	if p.AppliedDate.present() && p.AppliedDate.Value != "" {
		d, err := ParseDate(p.AppliedDate.Value)
		if err != nil {
			return base, err
		}
		out.AppliedDate = d
	}

	if p.ResumeMatchScore.Set {
		if p.ResumeMatchScore.Null {
			out.ResumeMatchScore = nil
		} else {
			score := p.ResumeMatchScore.Value
			if score < 0 || score > 100 {
				return base, fmt.Errorf("resumeMatchScore must be between 0 and 100")
			}
			out.ResumeMatchScore = &score
		}
	}

	return out, nil
}

func mergeNullable(dst **string, o Optional[string]) {
	if !o.Set {
		return
	}
	if o.Null {
		*dst = nil
		return
	}
	v := o.Value
	*dst = &v
}

// ParseDate accepts a calendar date (2006-01-02) or a full RFC3339 timestamp
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
}
