package network

import (
	"sort"
	"strings"

	"github.com/jonathan/job-agent/internal/types"
)

// IsGoodConnection keeps people who are not yet connected, not recruiters and not
// C-level, and who either work in a relevant function or share a connection.
func IsGoodConnection(c types.Contact, jobTitle string) bool {
	title := strings.ToLower(c.Title)

	if c.IsConnected {
		return false
	}
	if containsAny(title, "recruiter", "talent acquisition") {
		return false
	}
	if containsAny(title, "ceo", "cfo", "chief", "founder", "president") &&
		!containsAny(title, "vp", "vice president") {
		return false
	}

	return containsAny(title, relevantKeywords(jobTitle)...) || c.MutualConnections > 0
}

func relevantKeywords(jobTitle string) []string {
	job := strings.ToLower(jobTitle)
	switch {
	case strings.Contains(job, "operations"), strings.Contains(job, "trade"):
		return []string{"operations", "trade", "trading", "settlement", "middle office"}
	case strings.Contains(job, "quant"):
		return []string{"quant", "research", "trading", "strategy"}
	case strings.Contains(job, "analyst"):
		return []string{"analyst", "analysis", "research"}
	}
	return nil
}

// Score rates how useful a contact is for the job.
func Score(c types.Contact, jobTitle string) int {
	title := strings.ToLower(c.Title)
	job := strings.ToLower(jobTitle)
	score := c.MutualConnections * 10

	if strings.Contains(job, "operations") {
		if strings.Contains(title, "operations") {
			score += 20
		}
		if containsAny(title, "trade", "trading") {
			score += 15
		}
		if strings.Contains(title, "manager") {
			score += 10
		}
	}
	if strings.Contains(job, "analyst") {
		if containsAny(title, "senior", "lead") {
			score += 15
		}
		if strings.Contains(title, "manager") {
			score += 20
		}
	}

	if containsAny(title, "manager", "senior", "lead", "director") {
		score += 15
	}
	if containsAny(title, "vp", "vice president", "head of") {
		score += 10
	}
	return score
}

// Rank scores contacts and orders them best first. Ties keep discovery order.
func Rank(contacts []types.Contact, jobTitle string) []types.Contact {
	ranked := make([]types.Contact, len(contacts))
	copy(ranked, contacts)
	for i := range ranked {
		ranked[i].Score = Score(ranked[i], jobTitle)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
