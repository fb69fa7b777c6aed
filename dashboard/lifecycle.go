package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"civicsync-admin/models"
)

var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrResolutionIncomplete = errors.New("resolution notes and an image are required")
	ErrForbidden            = errors.New("not permitted for this role")
)

var transitions = map[models.IssueStatus][]models.IssueStatus{
	models.Pending:    {models.InProgress, models.Error},
	models.InProgress: {models.Resolved, models.Error},
}

// CanTransition reports whether an issue may move from one status to another.
func CanTransition(from, to models.IssueStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition validates a plain status change. Resolving goes through
// CheckResolution instead since it needs proof attached.
func CheckTransition(issue models.Issue, to models.IssueStatus) error {
	if to == models.Resolved || !CanTransition(issue.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, issue.Status, to)
	}
	return nil
}

// CheckResolution validates closing an issue with the given proof.
func CheckResolution(issue models.Issue, res models.Resolution) error {
	if strings.TrimSpace(res.Notes) == "" || len(res.Image) == 0 {
		return ErrResolutionIncomplete
	}
	if !CanTransition(issue.Status, models.Resolved) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, issue.Status, models.Resolved)
	}
	return nil
}

// CheckDelete validates a permanent deletion. Only administrators may delete,
// and only issues already marked as errors.
func CheckDelete(issue models.Issue, user models.User) error {
	if !models.CanDeleteIssues(user.Role) {
		return ErrForbidden
	}
	if issue.Status != models.Error {
		return fmt.Errorf("%w: only %s issues can be deleted", ErrInvalidTransition, models.Error)
	}
	return nil
}
