// Package classify maps free-text form question labels to field categories using
// ordered keyword rules.
package classify

import "strings"

// Category is the semantic intent assigned to a form control's label.
type Category string

// Categories. Exactly one is assigned per control.
const (
	Phone             Category = "phone"
	YearsExperience   Category = "years-experience"
	LinkedInURL       Category = "linkedin-url"
	PortfolioURL      Category = "portfolio-url"
	GitHubURL         Category = "github-url"
	Education         Category = "education"
	WorkAuthorization Category = "work-authorization"
	VisaStatus        Category = "visa-status"
	Gender            Category = "gender"
	Ethnicity         Category = "ethnicity"
	VeteranStatus     Category = "veteran-status"
	DisabilityStatus  Category = "disability-status"
	Relocation        Category = "relocation"
	RemotePreference  Category = "remote-preference"
	GenericYesNo      Category = "generic-yes-no"
	ResumeUpload      Category = "resume-upload"
	CoverLetterUpload Category = "cover-letter-upload"
	Unclassified      Category = "unclassified"
)

// Kind is the type of form control a rule table applies to.
type Kind string

// Control kinds.
const (
	KindText     Kind = "text"
	KindDropdown Kind = "dropdown"
	KindRadio    Kind = "radio-group"
	KindFile     Kind = "file"
)

// Rule matches when every AllOf keyword and at least one AnyOf keyword (if any are
// given) appear in the lower-cased label.
type Rule struct {
	Category Category
	AnyOf    []string
	AllOf    []string
}

// Matches reports whether the lower-cased label satisfies the rule.
func (r Rule) Matches(lowered string) bool {
	if len(r.AnyOf) == 0 && len(r.AllOf) == 0 {
		return false
	}
	for _, kw := range r.AllOf {
		if !strings.Contains(lowered, kw) {
			return false
		}
	}
	if len(r.AnyOf) == 0 {
		return true
	}
	for _, kw := range r.AnyOf {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Rule tables, highest priority first. Vocabulary overlaps between categories, so the
// order is part of the contract.
var (
	TextRules = []Rule{
		{Category: Phone, AnyOf: []string{"phone"}},
		{Category: YearsExperience, AllOf: []string{"year", "experience"}},
		{Category: LinkedInURL, AnyOf: []string{"linkedin"}},
		{Category: PortfolioURL, AnyOf: []string{"website", "portfolio"}},
		{Category: GitHubURL, AnyOf: []string{"github"}},
	}

	DropdownRules = []Rule{
		{Category: Education, AnyOf: []string{"education", "degree"}},
		{Category: WorkAuthorization, AnyOf: []string{"authorized", "sponsorship"}},
		{Category: VisaStatus, AnyOf: []string{"visa"}},
		{Category: Gender, AnyOf: []string{"gender"}},
		{Category: Ethnicity, AnyOf: []string{"race", "ethnicity"}},
		{Category: VeteranStatus, AnyOf: []string{"veteran"}},
		{Category: DisabilityStatus, AnyOf: []string{"disability", "disabled"}},
	}

	RadioRules = []Rule{
		{Category: WorkAuthorization, AnyOf: []string{"authorized", "sponsorship"}},
		{Category: Relocation, AnyOf: []string{"relocate", "relocation"}},
		{Category: RemotePreference, AnyOf: []string{"remote"}},
	}

	FileRules = []Rule{
		{Category: ResumeUpload, AnyOf: []string{"resume", "cv"}},
		{Category: CoverLetterUpload, AnyOf: []string{"cover"}},
	}
)

// RulesFor returns the rule table for a control kind, or nil for unknown kinds.
func RulesFor(kind Kind) []Rule {
	switch kind {
	case KindText:
		return TextRules
	case KindDropdown:
		return DropdownRules
	case KindRadio:
		return RadioRules
	case KindFile:
		return FileRules
	}
	return nil
}

// Classify returns the first category in the kind's rule table whose keywords are
// found in label. Empty labels and unmatched labels yield Unclassified.
func Classify(kind Kind, label string) Category {
	return Match(RulesFor(kind), label)
}

// Match evaluates rules in order against label.
func Match(rules []Rule, label string) Category {
	lowered := strings.ToLower(strings.TrimSpace(label))
	if lowered == "" {
		return Unclassified
	}
	for _, r := range rules {
		if r.Matches(lowered) {
			return r.Category
		}
	}
	return Unclassified
}
