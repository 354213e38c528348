package models

import "time"

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

type Task struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	DueDate     *time.Time
	Priority    *string
	Category    *string
	Completed   bool
	Starred     bool
	// Archived mirrors Completed and is only ever changed by the
	// toggle-complete operation.
	Archived  bool
	CreatedAt time.Time
}
