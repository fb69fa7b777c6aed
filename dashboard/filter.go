package dashboard

import (
	"strings"

	"civicsync-admin/models"

	"golang.org/x/text/cases"
)

// View selects one of the top-level issue listings.
type View string

const (
	ViewDashboard  View = "dashboard"
	ViewAll        View = "all"
	ViewDispatches View = "dispatches"
	ViewCompleted  View = "completed"
	ViewTrash      View = "trash"
)

func (v View) Valid() bool {
	switch v {
	case ViewDashboard, ViewAll, ViewDispatches, ViewCompleted, ViewTrash:
		return true
	}
	return false
}

// Criteria is everything the filter needs besides the issues and the user.
type Criteria struct {
	View View
	// StatusTab only applies to the dashboard view.
	StatusTab  models.IssueStatus
	Search     string
	Department models.Department
}

// StatusTabs are the toggles shown on the dashboard, in display order.
var StatusTabs = []models.IssueStatus{models.Pending, models.InProgress, models.Resolved}

// searcher matches issues against one case-folded search term. A Caser keeps
// state, so each filter pass gets its own.
type searcher struct {
	fold cases.Caser
	term string
}

func newSearcher(term string) *searcher {
	s := &searcher{fold: cases.Fold()}
	s.term = s.fold.String(strings.TrimSpace(term))
	return s
}

func (s *searcher) match(issue models.Issue) bool {
	if s.term == "" {
		return true
	}
	for _, field := range []string{issue.ID, issue.Title, string(issue.Department), issue.Description, issue.UserID} {
		if strings.Contains(s.fold.String(field), s.term) {
			return true
		}
	}
	return false
}

func viewMatch(v View, tab models.IssueStatus, status models.IssueStatus) bool {
	switch v {
	case ViewAll:
		return status != models.Error
	case ViewDispatches:
		return status == models.InProgress
	case ViewCompleted:
		return status == models.Resolved
	case ViewTrash:
		return status == models.Error
	default:
		return status == tab && status != models.Error
	}
}

func departmentMatch(issue models.Issue, selected models.Department) bool {
	return selected == "" || selected.Matches(issue.Department)
}

// Filter returns the issues shown for the criteria, in input order.
func Filter(issues []models.Issue, c Criteria, user models.User) []models.Issue {
	search := newSearcher(c.Search)
	out := make([]models.Issue, 0, len(issues))
	for _, issue := range issues {
		if !viewMatch(c.View, c.StatusTab, issue.Status) {
			continue
		}
		if !search.match(issue) || !models.CanSee(user, issue.Department) || !departmentMatch(issue, c.Department) {
			continue
		}
		out = append(out, issue)
	}
	return out
}

// StatusCounts returns the live count behind each dashboard status tab.
// The view and tab of c are ignored; Error issues are never counted.
func StatusCounts(issues []models.Issue, c Criteria, user models.User) map[models.IssueStatus]int {
	counts := make(map[models.IssueStatus]int, len(StatusTabs))
	for _, tab := range StatusTabs {
		counts[tab] = 0
	}
	search := newSearcher(c.Search)
	for _, issue := range issues {
		if _, ok := counts[issue.Status]; !ok {
			continue
		}
		if search.match(issue) && models.CanSee(user, issue.Department) && departmentMatch(issue, c.Department) {
			counts[issue.Status]++
		}
	}
	return counts
}
