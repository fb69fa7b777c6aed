package models

import "time"

type NotificationKind string

const (
	CriticalAlert NotificationKind = "critical"
	IssueResolved NotificationKind = "resolved"
	DispatchAlert NotificationKind = "dispatch"
)

// Notification is derived from the current issue snapshot and never stored.
type Notification struct {
	ID          string           `json:"id"`
	IssueID     string           `json:"issueId,omitempty"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Timestamp   time.Time        `json:"timestamp"`
	Read        bool             `json:"read"`
}
