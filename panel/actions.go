package panel

import (
	"context"

	"civicsync-admin/config"
	"civicsync-admin/dashboard"
	"civicsync-admin/models"
	"civicsync-admin/store"
)

// Dispatch hands a pending issue to its department.
func (c *Controller) Dispatch(ctx context.Context, id string) (store.Snapshot, error) {
	return c.changeStatus(ctx, id, models.InProgress)
}

// Reject moves an issue to the trash as incorrect or fake.
func (c *Controller) Reject(ctx context.Context, id string) (store.Snapshot, error) {
	return c.changeStatus(ctx, id, models.Error)
}

func (c *Controller) changeStatus(ctx context.Context, id string, to models.IssueStatus) (store.Snapshot, error) {
	issue, err := c.visibleIssue(ctx, id)
	if err != nil {
		return store.Snapshot{}, err
	}
	if err := dashboard.CheckTransition(issue, to); err != nil {
		return store.Snapshot{}, err
	}
	snap, err := c.store.Update(ctx, id, models.IssuePatch{Status: &to})
	c.afterMutation("update", id, err)
	return snap, err
}

// Resolve closes an in-progress issue. Notes and an image are both required;
// without them nothing is sent and the issue is left as it was.
func (c *Controller) Resolve(ctx context.Context, id string, res models.Resolution) (store.Snapshot, error) {
	issue, err := c.visibleIssue(ctx, id)
	if err != nil {
		return store.Snapshot{}, err
	}
	if err := dashboard.CheckResolution(issue, res); err != nil {
		return store.Snapshot{}, err
	}
	res.ResolvedBy = c.user.Username
	if res.ResolvedBy == "" {
		res.ResolvedBy = string(models.Staff)
	}
	snap, err := c.store.Resolve(ctx, id, res)
	c.afterMutation("resolve", id, err)
	return snap, err
}

// Delete permanently removes an issue from the trash.
func (c *Controller) Delete(ctx context.Context, id string) (store.Snapshot, error) {
	issue, err := c.visibleIssue(ctx, id)
	if err != nil {
		return store.Snapshot{}, err
	}
	if err := dashboard.CheckDelete(issue, c.user); err != nil {
		return store.Snapshot{}, err
	}
	snap, err := c.store.Delete(ctx, id)
	c.afterMutation("delete", id, err)
	return snap, err
}

// Refresh re-fetches the issue set on demand.
func (c *Controller) Refresh(ctx context.Context) (store.Snapshot, error) {
	return c.store.Refresh(ctx)
}

// afterMutation closes the detail view whether or not the call went through.
func (c *Controller) afterMutation(op, id string, err error) {
	if err != nil {
		config.Error("panel: %s issue %s: %v", op, id, err)
	}
	if c.cache != nil {
		c.cache.Purge()
	}
	c.CloseIssue()
}
