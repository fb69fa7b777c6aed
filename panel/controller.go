// Package panel holds the per-session view state of the admin panel and
// wires user actions to the dashboard engines and the issue store.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"civicsync-admin/dashboard"
	"civicsync-admin/models"
	"civicsync-admin/store"
)

var (
	ErrUnknownView       = errors.New("unknown view")
	ErrUnknownStatus     = errors.New("unknown status tab")
	ErrUnknownDepartment = errors.New("unknown department")
)

// AggregateCache is satisfied by cache.Aggregates.
type AggregateCache interface {
	Get(ctx context.Context, key string, dst interface{}) bool
	Set(ctx context.Context, key string, v interface{})
	Purge()
}

// KeyFunc builds a cache key from a snapshot fingerprint and parameters.
type KeyFunc func(fingerprint uint64, parts ...string) string

// Options configures a Controller.
type Options struct {
	Cache AggregateCache
	Key   KeyFunc
	Now   func() time.Time
}

// State is the UI state of one session.
type State struct {
	View          dashboard.View     `json:"view"`
	StatusTab     models.IssueStatus `json:"status"`
	Search        string             `json:"search"`
	Department    models.Department  `json:"department,omitempty"`
	SelectedIssue string             `json:"selectedIssue,omitempty"`
}

// MapFocus centers the map on an issue.
type MapFocus struct {
	IssueID string  `json:"issueId"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Zoom    int     `json:"zoom"`
}

const SearchZoom = 16

// Controller is the view controller of a single session. It references
// issues by id only; the store owns them.
type Controller struct {
	user  models.User
	store *store.Store
	cache AggregateCache
	key   KeyFunc
	now   func() time.Time

	mu    sync.Mutex
	state State
	read  map[string]bool
}

func New(user models.User, st *store.Store, opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		user:  user,
		store: st,
		cache: opts.Cache,
		key:   opts.Key,
		now:   now,
		state: State{View: dashboard.ViewDashboard, StatusTab: models.Pending},
		read:  make(map[string]bool),
	}
}

func (c *Controller) User() models.User {
	return c.user
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) criteria() dashboard.Criteria {
	c.mu.Lock()
	defer c.mu.Unlock()
	return dashboard.Criteria{
		View:       c.state.View,
		StatusTab:  c.state.StatusTab,
		Search:     c.state.Search,
		Department: c.state.Department,
	}
}

// Change is a partial state update. Nil fields are left alone.
type Change struct {
	View       *dashboard.View
	StatusTab  *models.IssueStatus
	Search     *string
	Department *models.Department
}

// Apply validates every field of ch before changing anything.
func (c *Controller) Apply(ch Change) error {
	if ch.View != nil && !ch.View.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownView, *ch.View)
	}
	if ch.StatusTab != nil && !validTab(*ch.StatusTab) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, *ch.StatusTab)
	}
	if ch.Department != nil && !validSelection(*ch.Department) {
		return fmt.Errorf("%w: %q", ErrUnknownDepartment, *ch.Department)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ch.View != nil {
		c.state.View = *ch.View
	}
	if ch.StatusTab != nil {
		c.state.StatusTab = *ch.StatusTab
	}
	if ch.Search != nil {
		c.state.Search = *ch.Search
	}
	if ch.Department != nil {
		c.state.Department = *ch.Department
	}
	return nil
}

func (c *Controller) SetView(v dashboard.View) error {
	return c.Apply(Change{View: &v})
}

func (c *Controller) SetStatusTab(s models.IssueStatus) error {
	return c.Apply(Change{StatusTab: &s})
}

func (c *Controller) SetSearch(term string) {
	_ = c.Apply(Change{Search: &term})
}

// SetDepartment replaces the department filter. Empty clears it.
func (c *Controller) SetDepartment(d models.Department) error {
	return c.Apply(Change{Department: &d})
}

func validTab(s models.IssueStatus) bool {
	for _, tab := range dashboard.StatusTabs {
		if tab == s {
			return true
		}
	}
	return false
}

func validSelection(d models.Department) bool {
	return d == "" || d == models.SewerAndWater || d.IsIssueDepartment()
}

// ToggleDepartment selects d, or clears the filter when d is already selected.
func (c *Controller) ToggleDepartment(d models.Department) (models.Department, error) {
	if d == "" || !validSelection(d) {
		return "", fmt.Errorf("%w: %q", ErrUnknownDepartment, d)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Department == d {
		c.state.Department = ""
	} else {
		c.state.Department = d
	}
	return c.state.Department, nil
}

// Issues returns the filtered issues for the current state.
func (c *Controller) Issues(ctx context.Context) ([]models.Issue, error) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return dashboard.Filter(snap.Issues, c.criteria(), c.user), nil
}

// Focus returns where to center the map after a search: the first issue of
// the current listing, if any.
func (c *Controller) Focus(ctx context.Context) (MapFocus, bool, error) {
	issues, err := c.Issues(ctx)
	if err != nil || len(issues) == 0 {
		return MapFocus{}, false, err
	}
	first := issues[0]
	return MapFocus{IssueID: first.ID, Lat: first.Location.Lat, Lng: first.Location.Lng, Zoom: SearchZoom}, true, nil
}

// Overview computes the dashboard payload, reusing a cached one for the same
// snapshot, criteria, user and minute.
func (c *Controller) Overview(ctx context.Context) (dashboard.Overview, error) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return dashboard.Overview{}, err
	}
	now := c.now().Truncate(time.Minute)
	crit := c.criteria()

	var key string
	if c.cache != nil && c.key != nil {
		key = c.key(snap.Fingerprint,
			string(crit.View), string(crit.StatusTab), crit.Search, string(crit.Department),
			string(c.user.Role), string(c.user.Department),
			strconv.FormatInt(now.Unix(), 10), now.Location().String(),
		)
		var ov dashboard.Overview
		if c.cache.Get(ctx, key, &ov) {
			return ov, nil
		}
	}

	ov := dashboard.BuildOverview(snap.Issues, crit, c.user, now)
	if key != "" {
		c.cache.Set(ctx, key, ov)
	}
	return ov, nil
}

// Profile returns the number of resolved issues credited to the user.
func (c *Controller) Profile(ctx context.Context) (int, error) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return 0, err
	}
	return dashboard.ResolvedForProfile(snap.Issues, c.user), nil
}

// SelectIssue opens an issue's detail. It must be visible to the user.
func (c *Controller) SelectIssue(ctx context.Context, id string) (models.Issue, error) {
	issue, err := c.visibleIssue(ctx, id)
	if err != nil {
		return issue, err
	}
	c.mu.Lock()
	c.state.SelectedIssue = id
	c.mu.Unlock()
	return issue, nil
}

// SelectedIssue returns the open issue. The selection is dropped if the issue
// is gone from the latest snapshot.
func (c *Controller) SelectedIssue() (models.Issue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.SelectedIssue == "" {
		return models.Issue{}, false
	}
	issue, ok := c.store.Snapshot().Find(c.state.SelectedIssue)
	if !ok {
		c.state.SelectedIssue = ""
	}
	return issue, ok
}

func (c *Controller) CloseIssue() {
	c.mu.Lock()
	c.state.SelectedIssue = ""
	c.mu.Unlock()
}

func (c *Controller) visibleIssue(ctx context.Context, id string) (models.Issue, error) {
	snap, err := c.store.Load(ctx)
	if err != nil {
		return models.Issue{}, err
	}
	issue, ok := snap.Find(id)
	if !ok || !models.CanSee(c.user, issue.Department) {
		return models.Issue{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return issue, nil
}
