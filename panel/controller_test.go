package panel

import (
	"context"
	"testing"
	"time"

	"civicsync-admin/cache"
	"civicsync-admin/dashboard"
	"civicsync-admin/models"
	"civicsync-admin/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)

func seed() []models.Issue {
	mk := func(id string, dep models.Department, status models.IssueStatus, prio models.Priority, age time.Duration) models.Issue {
		return models.Issue{
			ID:          id,
			Title:       "Issue " + id,
			Department:  dep,
			Status:      status,
			Priority:    prio,
			SubmittedAt: now.Add(-age),
			Location:    models.GeoPoint{Lat: 18.5, Lng: 73.8},
			UserID:      "U-" + id,
		}
	}
	return []models.Issue{
		mk("p1", models.Electrical, models.Pending, models.Critical, time.Hour),
		mk("p2", models.Water, models.Pending, models.Low, 2*time.Hour),
		mk("d1", models.Sewer, models.InProgress, models.High, 3*time.Hour),
		mk("e1", models.Sanitation, models.Error, models.Low, 4*time.Hour),
	}
}

type fixture struct {
	src  *store.MemorySource
	st   *store.Store
	ctrl *Controller
}

func newFixture(t *testing.T, user models.User) fixture {
	t.Helper()
	src := store.NewMemorySource(seed())
	st := store.New(src)
	agg, err := cache.New(16, nil, time.Minute)
	require.NoError(t, err)
	ctrl := New(user, st, Options{Cache: agg, Key: cache.Key, Now: func() time.Time { return now }})
	return fixture{src: src, st: st, ctrl: ctrl}
}

var admin = models.User{Username: "asha", Department: models.Administration, Role: models.Administrator}

func ids(issues []models.Issue) []string {
	out := []string{}
	for _, i := range issues {
		out = append(out, i.ID)
	}
	return out
}

func TestDefaultStateShowsPendingDashboard(t *testing.T) {
	f := newFixture(t, admin)
	issues, err := f.ctrl.Issues(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids(issues))
	assert.Equal(t, dashboard.ViewDashboard, f.ctrl.State().View)
}

func TestStateChangesDriveTheListing(t *testing.T) {
	f := newFixture(t, admin)
	ctx := context.Background()

	require.NoError(t, f.ctrl.SetView(dashboard.ViewTrash))
	issues, _ := f.ctrl.Issues(ctx)
	assert.Equal(t, []string{"e1"}, ids(issues))

	require.NoError(t, f.ctrl.SetView(dashboard.ViewAll))
	sel, err := f.ctrl.ToggleDepartment(models.SewerAndWater)
	require.NoError(t, err)
	assert.Equal(t, models.SewerAndWater, sel)
	issues, _ = f.ctrl.Issues(ctx)
	assert.Equal(t, []string{"p2", "d1"}, ids(issues))

	sel, err = f.ctrl.ToggleDepartment(models.SewerAndWater)
	require.NoError(t, err)
	assert.Empty(t, sel)

	f.ctrl.SetSearch("u-p1")
	issues, _ = f.ctrl.Issues(ctx)
	assert.Equal(t, []string{"p1"}, ids(issues))

	assert.ErrorIs(t, f.ctrl.SetView("map"), ErrUnknownView)
	assert.ErrorIs(t, f.ctrl.SetStatusTab(models.Error), ErrUnknownStatus)
	assert.ErrorIs(t, f.ctrl.SetDepartment("Parks"), ErrUnknownDepartment)
	_, err = f.ctrl.ToggleDepartment(models.Administration)
	assert.ErrorIs(t, err, ErrUnknownDepartment)
}

func TestFocusOnFirstResult(t *testing.T) {
	f := newFixture(t, admin)
	f.ctrl.SetSearch("issue d1")
	require.NoError(t, f.ctrl.SetView(dashboard.ViewAll))

	focus, ok, err := f.ctrl.Focus(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, MapFocus{IssueID: "d1", Lat: 18.5, Lng: 73.8, Zoom: SearchZoom}, focus)

	f.ctrl.SetSearch("nothing matches this")
	_, ok, err = f.ctrl.Focus(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOverviewIsRecomputedAfterMutation(t *testing.T) {
	f := newFixture(t, admin)
	ctx := context.Background()

	ov, err := f.ctrl.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ov.StatusCounts[models.Pending])
	require.NotNil(t, ov.Analytics)
	assert.Equal(t, 3, ov.Analytics.TotalPending)

	_, err = f.ctrl.Dispatch(ctx, "p1")
	require.NoError(t, err)

	ov, err = f.ctrl.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ov.StatusCounts[models.Pending])
	assert.Equal(t, 2, ov.StatusCounts[models.InProgress])
}

func TestResolveWithoutProofIsNoOp(t *testing.T) {
	f := newFixture(t, admin)
	ctx := context.Background()
	_, err := f.ctrl.SelectIssue(ctx, "d1")
	require.NoError(t, err)

	_, err = f.ctrl.Resolve(ctx, "d1", models.Resolution{Notes: "cleared the line"})
	assert.ErrorIs(t, err, dashboard.ErrResolutionIncomplete)
	_, err = f.ctrl.Resolve(ctx, "d1", models.Resolution{Image: []byte{1, 2, 3}})
	assert.ErrorIs(t, err, dashboard.ErrResolutionIncomplete)

	issue, ok := f.st.Snapshot().Find("d1")
	require.True(t, ok)
	assert.Equal(t, models.InProgress, issue.Status)
	assert.Nil(t, issue.ResolvedAt)

	// The detail view stays open after a validation failure.
	selected, ok := f.ctrl.SelectedIssue()
	require.True(t, ok)
	assert.Equal(t, "d1", selected.ID)
}

func TestResolveRecordsResolver(t *testing.T) {
	f := newFixture(t, admin)
	ctx := context.Background()

	snap, err := f.ctrl.Resolve(ctx, "d1", models.Resolution{Notes: "cleared", Image: []byte("jpeg"), ResolvedBy: "spoofed"})
	require.NoError(t, err)
	issue, ok := snap.Find("d1")
	require.True(t, ok)
	assert.Equal(t, models.Resolved, issue.Status)
	assert.Equal(t, "asha", *issue.ResolvedBy)
	assert.NoError(t, issue.Validate())
}

func TestInvalidTransitionsNeverReachTheSource(t *testing.T) {
	f := newFixture(t, admin)
	ctx := context.Background()

	_, err := f.ctrl.Dispatch(ctx, "e1")
	assert.ErrorIs(t, err, dashboard.ErrInvalidTransition)
	_, err = f.ctrl.Delete(ctx, "p1")
	assert.ErrorIs(t, err, dashboard.ErrInvalidTransition)
	_, err = f.ctrl.Dispatch(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Len(t, f.st.Snapshot().Issues, 4)
}

func TestDeleteRequiresAdministrator(t *testing.T) {
	head := models.User{Username: "kiran", Department: models.Sanitation, Role: models.DepartmentHead}
	f := newFixture(t, head)
	_, err := f.ctrl.Delete(context.Background(), "e1")
	assert.ErrorIs(t, err, dashboard.ErrForbidden)
}

func TestDeleteRemovesFromTrash(t *testing.T) {
	f := newFixture(t, admin)
	ctx := context.Background()
	require.NoError(t, f.ctrl.SetView(dashboard.ViewTrash))

	_, err := f.ctrl.Delete(ctx, "e1")
	require.NoError(t, err)
	issues, err := f.ctrl.Issues(ctx)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestDepartmentScopedUserCannotTouchOtherDepartments(t *testing.T) {
	staff := models.User{Username: "ravi", Department: models.Water, Role: models.Staff}
	f := newFixture(t, staff)
	ctx := context.Background()

	_, err := f.ctrl.SelectIssue(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.ctrl.Dispatch(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = f.ctrl.Dispatch(ctx, "p2")
	assert.NoError(t, err)

	resolved, err := f.ctrl.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, resolved)
}

func TestSelectionSurvivesOnlyWhileIssueExists(t *testing.T) {
	f := newFixture(t, admin)
	ctx := context.Background()
	_, err := f.ctrl.SelectIssue(ctx, "e1")
	require.NoError(t, err)

	require.NoError(t, f.src.DeleteIssue(ctx, "e1"))
	_, err = f.st.Refresh(ctx)
	require.NoError(t, err)

	_, ok := f.ctrl.SelectedIssue()
	assert.False(t, ok)
	assert.Empty(t, f.ctrl.State().SelectedIssue)
}

func TestApplyIsAllOrNothing(t *testing.T) {
	f := newFixture(t, admin)
	view := dashboard.ViewTrash
	bad := models.Department("Parks")
	search := "leak"

	err := f.ctrl.Apply(Change{View: &view, Search: &search, Department: &bad})
	assert.ErrorIs(t, err, ErrUnknownDepartment)
	assert.Equal(t, State{View: dashboard.ViewDashboard, StatusTab: models.Pending}, f.ctrl.State())

	dep := models.Water
	require.NoError(t, f.ctrl.Apply(Change{View: &view, Search: &search, Department: &dep}))
	assert.Equal(t, State{View: dashboard.ViewTrash, StatusTab: models.Pending, Search: "leak", Department: models.Water}, f.ctrl.State())
}
