// Package network finds people at a company worth contacting after an application
// and drafts the connection request.
package network

import (
	"fmt"
	"strings"
)

// TargetTitles returns the titles one level above the applied role.
func TargetTitles(jobTitle string) []string {
	t := strings.ToLower(jobTitle)
	switch {
	case strings.Contains(t, "senior") && strings.Contains(t, "analyst"):
		return []string{"manager", "senior manager", "director"}
	case strings.Contains(t, "analyst"):
		return []string{"senior analyst", "lead analyst", "manager", "associate manager"}
	case strings.Contains(t, "associate"):
		return []string{"senior associate", "assistant vice president", "vice president", "manager"}
	case strings.Contains(t, "specialist"):
		return []string{"senior specialist", "manager", "team lead"}
	default:
		return []string{"manager", "senior manager", "director"}
	}
}

// DepartmentHint narrows people searches for a few well-known functions.
func DepartmentHint(jobTitle string) string {
	t := strings.ToLower(jobTitle)
	switch {
	case strings.Contains(t, "operations"), strings.Contains(t, "trade"):
		return "operations"
	case strings.Contains(t, "quant"):
		return "quantitative"
	case strings.Contains(t, "risk"):
		return "risk"
	}
	return ""
}

// queriesPerJob is how many target titles are searched.
const queriesPerJob = 2

// Queries builds the people-search queries for a job.
func Queries(company, jobTitle string) []string {
	titles := TargetTitles(jobTitle)
	if len(titles) > queriesPerJob {
		titles = titles[:queriesPerJob]
	}
	hint := DepartmentHint(jobTitle)

	queries := make([]string, 0, len(titles))
	for _, title := range titles {
		if hint != "" {
			queries = append(queries, fmt.Sprintf("%s %s at %s", title, hint, company))
		} else {
			queries = append(queries, fmt.Sprintf("%s at %s", title, company))
		}
	}
	return queries
}

type department struct {
	name     string
	keywords []string
}

var departments = []department{
	{"operations", []string{"operations", "ops"}},
	{"trading", []string{"trading", "trade", "trader"}},
	{"risk", []string{"risk"}},
	{"technology", []string{"technology", "engineering", "developer"}},
	{"quantitative", []string{"quant", "quantitative"}},
	{"research", []string{"research"}},
}

// ExtractDepartment names the function a title belongs to, or "this field".
func ExtractDepartment(title string) string {
	t := strings.ToLower(title)
	for _, d := range departments {
		if containsAny(t, d.keywords...) {
			return d.name
		}
	}
	return "this field"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
