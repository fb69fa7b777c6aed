package models

import (
	"errors"
	"time"
)

// Department enum
type Department string

const (
	Electrical     Department = "Electrical"
	Sewer          Department = "Sewer"
	RoadTransport  Department = "Road & Transport"
	Water          Department = "Water"
	Sanitation     Department = "Sanitation"
	Administration Department = "Administration"
)

// SewerAndWater is the dashboard grouping of the Sewer and Water departments.
const SewerAndWater Department = "Sewer & Water"

// IssueDepartments lists the departments an issue can be filed under.
var IssueDepartments = []Department{Electrical, Sewer, RoadTransport, Water, Sanitation}

// IsIssueDepartment reports whether d is a department issues are filed under.
func (d Department) IsIssueDepartment() bool {
	for _, dep := range IssueDepartments {
		if d == dep {
			return true
		}
	}
	return false
}

// Matches reports whether an issue filed under dep belongs to the selection d.
// The Sewer & Water grouping is the only selection spanning two departments.
func (d Department) Matches(dep Department) bool {
	if d == SewerAndWater {
		return dep == Sewer || dep == Water
	}
	return d == dep
}

// IssueStatus enum
type IssueStatus string

const (
	Pending    IssueStatus = "Pending"
	InProgress IssueStatus = "In Progress"
	Resolved   IssueStatus = "Resolved"
	Error      IssueStatus = "Error"
)

// Valid reports whether s is a known status.
func (s IssueStatus) Valid() bool {
	switch s {
	case Pending, InProgress, Resolved, Error:
		return true
	}
	return false
}

// Open reports whether the issue still needs work.
func (s IssueStatus) Open() bool {
	return s == Pending || s == InProgress
}

// Priority enum
type Priority string

const (
	Low      Priority = "Low"
	Medium   Priority = "Medium"
	High     Priority = "High"
	Critical Priority = "Critical"
)

type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Issue represents a civic issue reported by a citizen
type Issue struct {
	ID              string      `bson:"_id" json:"id"`
	Title           string      `bson:"title" json:"title"`
	Description     string      `bson:"description" json:"description"`
	Department      Department  `bson:"department" json:"department"`
	Status          IssueStatus `bson:"status" json:"status"`
	Priority        Priority    `bson:"priority" json:"priority"`
	Location        GeoPoint    `bson:"location" json:"location"`
	LocationAddress string      `bson:"locationAddress" json:"locationAddress"`
	Distance        float64     `bson:"distance" json:"distance"`
	ImageURL        string      `bson:"imageUrl" json:"imageUrl"`
	SubmittedAt     time.Time   `bson:"submittedAt" json:"submittedAt"`
	ResolvedAt      *time.Time  `bson:"resolvedAt" json:"resolvedAt"`
	UserID          string      `bson:"userId" json:"userId"`
	UserContact     string      `bson:"userContact" json:"userContact"`
	Notes           string      `bson:"notes" json:"notes"`
	Questions       []string    `bson:"questions" json:"questions"`

	ResolvedImageURL *string `bson:"resolvedImageUrl" json:"resolvedImageUrl"`
	ResolutionNotes  *string `bson:"resolutionNotes" json:"resolutionNotes"`
	ResolvedBy       *string `bson:"resolvedBy" json:"resolvedBy"`
}

var (
	ErrResolvedAtMismatch   = errors.New("resolvedAt must be set exactly when the issue is resolved")
	ErrResolvedBeforeSubmit = errors.New("resolvedAt precedes submittedAt")
	ErrPartialResolution    = errors.New("resolution fields must be set together")
)

// Validate checks the resolution invariants of an issue record.
func (i *Issue) Validate() error {
	resolved := i.Status == Resolved
	if (i.ResolvedAt != nil) != resolved {
		return ErrResolvedAtMismatch
	}
	if i.ResolvedAt != nil && i.ResolvedAt.Before(i.SubmittedAt) {
		return ErrResolvedBeforeSubmit
	}
	if resolved && (i.ResolvedImageURL == nil || i.ResolutionNotes == nil || i.ResolvedBy == nil) {
		return ErrPartialResolution
	}
	return nil
}

// IssuePatch is a partial update sent to the issue service. Nil fields are left untouched.
type IssuePatch struct {
	Title       *string      `json:"title,omitempty"`
	Description *string      `json:"description,omitempty"`
	Department  *Department  `json:"department,omitempty"`
	Status      *IssueStatus `json:"status,omitempty"`
	Priority    *Priority    `json:"priority,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
}

// Resolution carries the proof of work supplied when closing an issue.
type Resolution struct {
	Notes       string
	Image       []byte
	ImageName   string
	ContentType string
	ResolvedBy  string
}
