package types

import (
	"strings"
	"time"
)

// Contact is a person found for networking after an application
type Contact struct {
	Name              string    `json:"name"`
	Title             string    `json:"title"`
	Company           string    `json:"company"`
	Location          string    `json:"location"`
	ProfileURL        string    `json:"profile_url"`
	MutualConnections int       `json:"mutual_connections"`
	IsConnected       bool      `json:"is_connected"`
	FoundAt           time.Time `json:"found_date"`
	Score             int       `json:"networking_score"`
	JobApplied        string    `json:"job_applied,omitempty"`
	JobURL            string    `json:"job_url,omitempty"`
	Message           string    `json:"connection_message,omitempty"`
}

// FirstName is the first word of Name.
func (c Contact) FirstName() string {
	if f := strings.Fields(c.Name); len(f) > 0 {
		return f[0]
	}
	return c.Name
}
