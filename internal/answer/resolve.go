package answer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/jonathan/job-agent/internal/classify"
	"github.com/jonathan/job-agent/internal/profile"
)

// Phrases for free-text yes/no questions, checked in order. Questions matching
// neither list resolve to yes.
var (
	DefaultYesPhrases = []string{
		"authorized to work",
		"eligible to work",
		"legally authorized",
		"able to work",
		"willing to relocate",
		"available to start",
		"comfortable with",
	}
	DefaultNoPhrases = []string{
		"require sponsorship",
		"visa sponsorship",
		"need visa",
		"criminal record",
		"been terminated",
	}
)

var declinePhrases = []string{"prefer not", "decline", "wish to answer", "not to disclose"}

// policy resolves one category. An empty kind matches every control kind. options
// are already lower-cased.
type policy struct {
	kind     classify.Kind
	category classify.Category
	resolve  func(r *Resolver, label string, options []string) Action
}

func (p policy) matches(kind classify.Kind, category classify.Category) bool {
	return p.category == category && (p.kind == "" || p.kind == kind)
}

// policies is evaluated in order; the first matching entry wins, so kind-specific
// entries precede the generic one for the same category.
var policies = []policy{
	{"", classify.Phone, (*Resolver).phone},
	{"", classify.YearsExperience, (*Resolver).yearsExperience},
	{"", classify.LinkedInURL, func(r *Resolver, _ string, _ []string) Action { return Value(r.profile.LinkedInURL) }},
	{"", classify.PortfolioURL, func(r *Resolver, _ string, _ []string) Action { return Value(r.profile.PortfolioURL) }},
	{"", classify.GitHubURL, func(r *Resolver, _ string, _ []string) Action { return Value(r.profile.GitHubURL) }},
	{"", classify.Education, (*Resolver).education},
	{classify.KindRadio, classify.WorkAuthorization, func(r *Resolver, _ string, opts []string) Action {
		return selectFirst(opts, yesNo(r.profile.IsWorkAuthorized()))
	}},
	{"", classify.WorkAuthorization, (*Resolver).workAuthorization},
	{"", classify.VisaStatus, (*Resolver).visaStatus},
	{"", classify.Gender, func(r *Resolver, _ string, opts []string) Action {
		return disclose(opts, r.profile.GenderDisclosure, r.profile.Gender)
	}},
	{"", classify.Ethnicity, func(r *Resolver, _ string, opts []string) Action {
		return disclose(opts, r.profile.EthnicityDisclosure, r.profile.Ethnicity)
	}},
	{"", classify.VeteranStatus, (*Resolver).veteranStatus},
	{"", classify.DisabilityStatus, func(_ *Resolver, _ string, opts []string) Action {
		return selectFirst(opts, declinePhrases...)
	}},
	{"", classify.Relocation, func(r *Resolver, _ string, opts []string) Action {
		return selectFirst(opts, yesNo(r.profile.IsWillingToRelocate()))
	}},
	{"", classify.RemotePreference, func(r *Resolver, _ string, opts []string) Action {
		return selectFirst(opts, yesNo(r.profile.IsOpenToRemote()))
	}},
	{"", classify.GenericYesNo, (*Resolver).genericYesNo},
	{"", classify.ResumeUpload, func(r *Resolver, _ string, _ []string) Action { return uploadOrSkip(r.profile.ResumePath) }},
	{"", classify.CoverLetterUpload, func(r *Resolver, _ string, _ []string) Action { return uploadOrSkip(r.profile.CoverLetterPath) }},
}

// Resolver answers classified controls from an immutable profile.
type Resolver struct {
	profile  *profile.Profile
	policies []policy
}

// NewResolver creates a Resolver. A nil profile behaves like an empty one.
func NewResolver(p *profile.Profile) *Resolver {
	if p == nil {
		p = &profile.Profile{}
	}
	return &Resolver{profile: p, policies: policies}
}

// Resolve returns the action for a control of the given kind and category. Unclassified
// categories, and policies that find no suitable option, yield Skip. A policy that
// fails yields Skip together with a *ResolutionError.
func (r *Resolver) Resolve(kind classify.Kind, category classify.Category, label string, options []string) (action Action, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			action = SkipAction()
			err = &ResolutionError{Category: category, Message: "policy panicked", Cause: fmt.Errorf("%v", rec)}
		}
	}()

	lowered := make([]string, len(options))
	for i, opt := range options {
		lowered[i] = strings.ToLower(opt)
	}

	for _, p := range r.policies {
		if p.matches(kind, category) {
			return p.resolve(r, label, lowered), nil
		}
	}
	return SkipAction(), nil
}

// YesNo answers a free-text yes/no question. Default-yes phrases are checked before
// default-no phrases; ambiguous questions resolve to true.
func (r *Resolver) YesNo(question string) bool {
	return YesNo(question)
}

// YesNo is the profile-independent yes/no heuristic.
func YesNo(question string) bool {
	q := strings.ToLower(question)
	for _, phrase := range DefaultYesPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	for _, phrase := range DefaultNoPhrases {
		if strings.Contains(q, phrase) {
			return false
		}
	}
	return true
}

func (r *Resolver) phone(_ string, _ []string) Action {
	return Value(digitsOnly(r.profile.Phone))
}

func (r *Resolver) yearsExperience(label string, _ []string) Action {
	lowered := strings.ToLower(label)
	for _, domain := range profile.ExperienceDomains {
		if !strings.Contains(lowered, domain) {
			continue
		}
		if years, ok := r.profile.DomainYears(domain); ok {
			return Value(strconv.Itoa(years))
		}
		break
	}
	return Value(strconv.Itoa(r.profile.TotalYears()))
}

func (r *Resolver) education(_ string, opts []string) Action {
	return selectFirst(opts, r.profile.Education())
}

func (r *Resolver) workAuthorization(_ string, opts []string) Action {
	if r.profile.IsWorkAuthorized() {
		return selectFirst(opts, "yes", "authorized")
	}
	return selectFirstWhere(opts, func(opt string) bool {
		return strings.HasPrefix(strings.TrimSpace(opt), "no") || strings.Contains(opt, "not authorized")
	})
}

func (r *Resolver) visaStatus(_ string, opts []string) Action {
	return selectFirst(opts, r.profile.Visa(), "citizen")
}

func (r *Resolver) veteranStatus(_ string, opts []string) Action {
	if r.profile.Veteran {
		return selectFirst(opts, "yes")
	}
	return selectFirst(opts, "no", "not")
}

// genericYesNo answers a yes/no control whose label is a free-text question.
// Without options the answer is typed.
func (r *Resolver) genericYesNo(label string, opts []string) Action {
	target := yesNo(YesNo(label))
	if len(opts) == 0 {
		return Value(strings.ToUpper(target[:1]) + target[1:])
	}
	return selectFirst(opts, target)
}

// disclose selects the profile value when disclosure is on, otherwise a decline
// option. An empty disclosed value is treated as no disclosure.
func disclose(opts []string, disclosed bool, value string) Action {
	value = strings.ToLower(strings.TrimSpace(value))
	if disclosed && value != "" {
		return selectFirst(opts, value)
	}
	return selectFirst(opts, declinePhrases...)
}

// selectFirst selects the first option containing any of the needles.
func selectFirst(opts []string, needles ...string) Action {
	return selectFirstWhere(opts, func(opt string) bool {
		for _, n := range needles {
			if n != "" && strings.Contains(opt, n) {
				return true
			}
		}
		return false
	})
}

func selectFirstWhere(opts []string, match func(string) bool) Action {
	for i, opt := range opts {
		if match(opt) {
			return Select(i)
		}
	}
	return SkipAction()
}

func uploadOrSkip(path string) Action {
	if strings.TrimSpace(path) == "" {
		return SkipAction()
	}
	return Upload(path)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func digitsOnly(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
