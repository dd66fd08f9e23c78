// Package profile provides the read-only applicant profile consulted when filling application forms.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/job-agent/internal/schemas"
	schemafiles "github.com/jonathan/job-agent/schemas"
)

var profileSchema = schemas.MustCompile("profile", schemafiles.Profile)

// Defaults applied when a key is absent from the profile file.
const (
	DefaultTotalYears     = 3
	DefaultEducationLevel = "bachelor"
	DefaultVisaStatus     = "citizen"
)

// ExperienceDomains are the sub-domains with their own year counts, in lookup order.
var ExperienceDomains = []string{"total", "python", "finance", "trading", "operations"}

// Profile is the applicant's personal data as stored in profile.json.
// Every field is optional. Pointer fields distinguish "absent" from the zero value so
// accessors can fall back to documented defaults.
type Profile struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
	Phone     string `json:"phone,omitempty"`

	LinkedInURL  string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	PortfolioURL string `json:"portfolio_url,omitempty" validate:"omitempty,url"`
	GitHubURL    string `json:"github_url,omitempty" validate:"omitempty,url"`

	TotalYearsExperience *int `json:"total_years_experience,omitempty" validate:"omitempty,min=0"`
	PythonYears          *int `json:"python_years,omitempty" validate:"omitempty,min=0"`
	FinanceYears         *int `json:"finance_years,omitempty" validate:"omitempty,min=0"`
	TradingYears         *int `json:"trading_years,omitempty" validate:"omitempty,min=0"`
	OperationsYears      *int `json:"operations_years,omitempty" validate:"omitempty,min=0"`

	EducationLevel string `json:"education_level,omitempty"`

	WorkAuthorized    *bool  `json:"work_authorized,omitempty"`
	VisaStatus        string `json:"visa_status,omitempty"`
	WillingToRelocate *bool  `json:"willing_to_relocate,omitempty"`
	OpenToRemote      *bool  `json:"open_to_remote,omitempty"`

	GenderDisclosure    bool   `json:"gender_disclosure,omitempty"`
	Gender              string `json:"gender,omitempty"`
	EthnicityDisclosure bool   `json:"ethnicity_disclosure,omitempty"`
	Ethnicity           string `json:"ethnicity,omitempty"`
	Veteran             bool   `json:"veteran,omitempty"`
	Disability          *bool  `json:"disability,omitempty"` // never used to answer; see answer.Resolver

	ResumePath      string `json:"resume_path,omitempty"`
	CoverLetterPath string `json:"cover_letter_path,omitempty"`

	AutoSubmit bool `json:"auto_submit,omitempty"`
}

// Load reads a profile JSON file, checks it against the embedded profile schema and
// validates field formats.
func Load(path string) (*Profile, error) {
	if path == "" {
		return nil, &LoadError{Message: "profile path is empty"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: "failed to read profile file", Cause: err}
	}

	if err := profileSchema.Validate(data); err != nil {
		return nil, &LoadError{Path: path, Message: "profile does not match schema", Cause: err}
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &LoadError{Path: path, Message: "failed to parse profile JSON", Cause: err}
	}

	if err := p.Validate(); err != nil {
		return nil, &LoadError{Path: path, Message: "invalid profile", Cause: err}
	}

	return &p, nil
}

// Validate checks field formats (URLs, email, non-negative year counts).
func (p *Profile) Validate() error {
	return validator.New().Struct(p)
}

// TotalYears returns total years of experience (default 3).
func (p *Profile) TotalYears() int { return intOr(p.TotalYearsExperience, DefaultTotalYears) }

// DomainYears returns the year count the profile sets for a named experience domain.
// The second return value is false when the domain is unknown or not set; "total" is
// always set because it carries a default.
func (p *Profile) DomainYears(domain string) (int, bool) {
	var v *int
	switch domain {
	case "total":
		return p.TotalYears(), true
	case "python":
		v = p.PythonYears
	case "finance":
		v = p.FinanceYears
	case "trading":
		v = p.TradingYears
	case "operations":
		v = p.OperationsYears
	}
	if v == nil {
		return 0, false
	}
	return *v, true
}

// Education returns the lower-cased education level (default "bachelor").
func (p *Profile) Education() string {
	return strings.ToLower(stringOr(p.EducationLevel, DefaultEducationLevel))
}

// Visa returns the lower-cased visa status (default "citizen").
func (p *Profile) Visa() string {
	return strings.ToLower(stringOr(p.VisaStatus, DefaultVisaStatus))
}

// IsWorkAuthorized defaults to true.
func (p *Profile) IsWorkAuthorized() bool { return boolOr(p.WorkAuthorized, true) }

// IsWillingToRelocate defaults to true.
func (p *Profile) IsWillingToRelocate() bool { return boolOr(p.WillingToRelocate, true) }

// IsOpenToRemote defaults to true.
func (p *Profile) IsOpenToRemote() bool { return boolOr(p.OpenToRemote, true) }

// FullName joins first and last name.
func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func stringOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// LoadError describes a failure reading or validating a profile file.
type LoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	prefix := "profile error"
	if e.Path != "" {
		prefix = fmt.Sprintf("profile error (%s)", e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}
