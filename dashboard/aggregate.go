package dashboard

import (
	"fmt"
	"time"

	"civicsync-admin/models"

	"github.com/montanaflynn/stats"
)

const (
	NotAvailable   = "N/A"
	NoDepartment   = "None"
	ZeroRate       = "0.0%"
	RateWindowDays = 30
)

// DepartmentCount is one of the dashboard department cards.
type DepartmentCount struct {
	Department models.Department `json:"department"`
	Count      int               `json:"count"`
}

// CardDepartments is the display order of the department cards.
var CardDepartments = []models.Department{models.Electrical, models.Sanitation, models.SewerAndWater, models.RoadTransport}

// PendingByDepartment tallies pending issues visible to the user, with Sewer
// and Water summed into the Sewer & Water card.
func PendingByDepartment(issues []models.Issue, user models.User) []DepartmentCount {
	tally := make(map[models.Department]int)
	for _, issue := range issues {
		if issue.Status == models.Pending && models.CanSee(user, issue.Department) {
			tally[issue.Department]++
		}
	}
	cards := make([]DepartmentCount, 0, len(CardDepartments))
	for _, dep := range CardDepartments {
		count := tally[dep]
		if dep == models.SewerAndWater {
			count = tally[models.Sewer] + tally[models.Water]
		}
		cards = append(cards, DepartmentCount{Department: dep, Count: count})
	}
	return cards
}

// AverageResolutionTime formats the mean time from submission to resolution
// as whole days and hours.
func AverageResolutionTime(issues []models.Issue) string {
	var durations stats.Float64Data
	for _, issue := range issues {
		if issue.Status == models.Resolved && issue.ResolvedAt != nil {
			durations = append(durations, float64(issue.ResolvedAt.Sub(issue.SubmittedAt).Milliseconds()))
		}
	}
	if len(durations) == 0 {
		return NotAvailable
	}
	mean, err := durations.Mean()
	if err != nil {
		return NotAvailable
	}
	return formatDuration(mean)
}

func formatDuration(millis float64) string {
	const (
		hour = float64(time.Hour / time.Millisecond)
		day  = 24 * hour
	)
	days := int64(millis / day)
	hours := int64((millis - float64(days)*day) / hour)
	return fmt.Sprintf("%dd %dh", days, hours)
}

// TotalPending counts issues that still need work.
func TotalPending(issues []models.Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Status.Open() {
			n++
		}
	}
	return n
}

// BusiestDepartment returns the department with the most open issues. Ties go
// to the department seen first.
func BusiestDepartment(issues []models.Issue) string {
	counts := make(map[models.Department]int)
	var order []models.Department
	for _, issue := range issues {
		if !issue.Status.Open() {
			continue
		}
		if _, seen := counts[issue.Department]; !seen {
			order = append(order, issue.Department)
		}
		counts[issue.Department]++
	}
	if len(order) == 0 {
		return NoDepartment
	}
	busiest := order[0]
	for _, dep := range order[1:] {
		if counts[dep] > counts[busiest] {
			busiest = dep
		}
	}
	return string(busiest)
}

// ResolutionRate compares issues resolved against issues raised over the
// trailing thirty days.
func ResolutionRate(issues []models.Issue, now time.Time) string {
	since := now.AddDate(0, 0, -RateWindowDays)
	raised, resolved := 0, 0
	for _, issue := range issues {
		if !issue.SubmittedAt.Before(since) {
			raised++
		}
		if issue.ResolvedAt != nil && !issue.ResolvedAt.Before(since) {
			resolved++
		}
	}
	if raised == 0 {
		return ZeroRate
	}
	return fmt.Sprintf("%.1f%%", float64(resolved)/float64(raised)*100)
}

// DepartmentStats are the ongoing/resolved tiles of a department-scoped user.
type DepartmentStats struct {
	Department models.Department `json:"department"`
	Ongoing    int               `json:"ongoing"`
	Resolved   int               `json:"resolved"`
}

func DepartmentalStats(issues []models.Issue, user models.User) DepartmentStats {
	st := DepartmentStats{Department: user.Department}
	if user.Department == "" || user.Role == models.Administrator {
		return st
	}
	for _, issue := range issues {
		if issue.Department != user.Department {
			continue
		}
		switch {
		case issue.Status.Open():
			st.Ongoing++
		case issue.Status == models.Resolved:
			st.Resolved++
		}
	}
	return st
}

// ResolvedForProfile counts the resolved issues credited to the user's
// department, or all of them for administrators.
func ResolvedForProfile(issues []models.Issue, user models.User) int {
	n := 0
	for _, issue := range issues {
		if issue.Status == models.Resolved && (user.Role == models.Administrator || issue.Department == user.Department) {
			n++
		}
	}
	return n
}

// Analytics are the headline cards shown to supervisors and above.
type Analytics struct {
	TotalPending          int    `json:"totalPending"`
	AverageResolutionTime string `json:"avgResolutionTime"`
	BusiestDepartment     string `json:"busiestDepartment"`
	ResolutionRate        string `json:"resolutionRate"`
}

func ComputeAnalytics(issues []models.Issue, now time.Time) Analytics {
	return Analytics{
		TotalPending:          TotalPending(issues),
		AverageResolutionTime: AverageResolutionTime(issues),
		BusiestDepartment:     BusiestDepartment(issues),
		ResolutionRate:        ResolutionRate(issues, now),
	}
}

// Overview is the dashboard payload. Sections the user has no capability for
// are left nil.
type Overview struct {
	StatusCounts    map[models.IssueStatus]int `json:"statusCounts"`
	VisibleCount    int                        `json:"visibleCount"`
	Departments     []DepartmentCount          `json:"departments,omitempty"`
	Analytics       *Analytics                 `json:"analytics,omitempty"`
	Trend           *Trend                     `json:"trend,omitempty"`
	DepartmentStats *DepartmentStats           `json:"departmentStats,omitempty"`
}

func BuildOverview(issues []models.Issue, c Criteria, user models.User, now time.Time) Overview {
	ov := Overview{
		StatusCounts: StatusCounts(issues, c, user),
		VisibleCount: len(Filter(issues, c, user)),
	}
	if c.View != ViewDashboard {
		return ov
	}
	if models.CanViewDepartmentCards(user) {
		ov.Departments = PendingByDepartment(issues, user)
	}
	if models.CanViewAnalytics(user.Role) {
		a := ComputeAnalytics(issues, now)
		t := BuildTrend(issues, now)
		ov.Analytics = &a
		ov.Trend = &t
	}
	if models.CanViewDepartmentStats(user.Role, user.Department) {
		st := DepartmentalStats(issues, user)
		ov.DepartmentStats = &st
	}
	return ov
}
