package dashboard

import (
	"fmt"
	"sort"
	"time"

	"civicsync-admin/models"
)

// RecentResolutionWindow bounds how old a resolution may be to be announced.
const RecentResolutionWindow = 24 * time.Hour

// NotificationID derives a stable id from the notification kind and issue, so
// read state can be carried over when the feed is regenerated.
func NotificationID(kind models.NotificationKind, issueID string) string {
	return string(kind) + ":" + issueID
}

// Notifications synthesizes the feed from a snapshot. Each category picks the
// first matching issue in snapshot order.
func Notifications(issues []models.Issue, now time.Time) []models.Notification {
	var feed []models.Notification

	if critical, ok := first(issues, func(i models.Issue) bool {
		return i.Priority == models.Critical && i.Status == models.Pending
	}); ok {
		feed = append(feed, models.Notification{
			ID:          NotificationID(models.CriticalAlert, critical.ID),
			IssueID:     critical.ID,
			Kind:        models.CriticalAlert,
			Title:       "Critical Alert",
			Description: fmt.Sprintf("New issue #%s", critical.ID),
			Timestamp:   critical.SubmittedAt,
		})
	}

	if resolved, ok := first(issues, func(i models.Issue) bool {
		return i.Status == models.Resolved && i.ResolvedAt != nil && now.Sub(*i.ResolvedAt) < RecentResolutionWindow
	}); ok {
		feed = append(feed, models.Notification{
			ID:          NotificationID(models.IssueResolved, resolved.ID),
			IssueID:     resolved.ID,
			Kind:        models.IssueResolved,
			Title:       "Issue Resolved",
			Description: fmt.Sprintf("Issue #%s was resolved.", resolved.ID),
			Timestamp:   *resolved.ResolvedAt,
			Read:        true,
		})
	}

	if dispatched, ok := first(issues, func(i models.Issue) bool {
		return i.Status == models.InProgress
	}); ok {
		feed = append(feed, models.Notification{
			ID:          NotificationID(models.DispatchAlert, dispatched.ID),
			IssueID:     dispatched.ID,
			Kind:        models.DispatchAlert,
			Title:       "Dispatch Alert",
			Description: fmt.Sprintf("Issue #%s dispatched.", dispatched.ID),
			Timestamp:   now,
		})
	}

	sort.SliceStable(feed, func(a, b int) bool {
		return feed[a].Timestamp.After(feed[b].Timestamp)
	})
	return feed
}

func first(issues []models.Issue, pred func(models.Issue) bool) (models.Issue, bool) {
	for _, issue := range issues {
		if pred(issue) {
			return issue, true
		}
	}
	return models.Issue{}, false
}
