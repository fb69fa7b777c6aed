package panel

import (
	"context"
	"fmt"

	"civicsync-admin/dashboard"
	"civicsync-admin/models"
	"civicsync-admin/store"
)

// Notifications regenerates the feed from the current snapshot, applying the
// read marks this session has made.
func (c *Controller) Notifications(ctx context.Context) ([]models.Notification, error) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	feed := dashboard.Notifications(snap.Issues, c.now())

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range feed {
		if c.read[feed[i].ID] {
			feed[i].Read = true
		}
	}
	return feed, nil
}

// MarkAllRead marks every notification currently in the feed as read.
func (c *Controller) MarkAllRead(ctx context.Context) ([]models.Notification, error) {
	feed, err := c.Notifications(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	for i := range feed {
		c.read[feed[i].ID] = true
		feed[i].Read = true
	}
	c.mu.Unlock()
	return feed, nil
}

// OpenNotification marks one notification read and selects the issue it
// points at, if that issue still exists and the user may see it.
func (c *Controller) OpenNotification(ctx context.Context, id string) (models.Issue, bool, error) {
	feed, err := c.Notifications(ctx)
	if err != nil {
		return models.Issue{}, false, err
	}
	var target *models.Notification
	for i := range feed {
		if feed[i].ID == id {
			target = &feed[i]
			break
		}
	}
	if target == nil {
		return models.Issue{}, false, fmt.Errorf("%w: notification %s", store.ErrNotFound, id)
	}

	c.mu.Lock()
	c.read[id] = true
	c.mu.Unlock()

	if target.IssueID == "" {
		return models.Issue{}, false, nil
	}
	// The feed spans every department; opening one still respects visibility.
	issue, ok := c.store.Snapshot().Find(target.IssueID)
	if !ok || !models.CanSee(c.user, issue.Department) {
		return models.Issue{}, false, nil
	}
	c.mu.Lock()
	c.state.SelectedIssue = issue.ID
	c.mu.Unlock()
	return issue, true, nil
}
