package domain

import "time"

// Event types pushed to connected dashboard clients.
const (
	EventResponseCreated = "response.created"
)

// Event is a refresh hint for open dashboards. It intentionally carries no
// answer values: clients re-query the API instead of trusting the push.
type Event struct {
	Type       string    `json:"type"`
	Department string    `json:"department,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
