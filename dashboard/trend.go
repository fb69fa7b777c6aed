package dashboard

import (
	"time"

	"civicsync-admin/models"
)

const TrendDays = 30

// Trend holds parallel per-day series, oldest day first.
type Trend struct {
	Dates    []string `json:"dates"`
	Labels   []string `json:"labels"`
	Raised   []int    `json:"raised"`
	Resolved []int    `json:"resolved"`
}

// BuildTrend buckets submissions and resolutions into the thirty calendar days
// ending today. Days are taken in now's location.
func BuildTrend(issues []models.Issue, now time.Time) Trend {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	first := today.AddDate(0, 0, -(TrendDays - 1))

	t := Trend{
		Dates:    make([]string, TrendDays),
		Labels:   make([]string, TrendDays),
		Raised:   make([]int, TrendDays),
		Resolved: make([]int, TrendDays),
	}
	index := make(map[string]int, TrendDays)
	for i := 0; i < TrendDays; i++ {
		date := first.AddDate(0, 0, i)
		key := date.Format("2006-01-02")
		t.Dates[i] = key
		t.Labels[i] = date.Format("Jan 2")
		index[key] = i
	}

	for _, issue := range issues {
		if i, ok := index[issue.SubmittedAt.In(loc).Format("2006-01-02")]; ok {
			t.Raised[i]++
		}
		if issue.ResolvedAt == nil {
			continue
		}
		if i, ok := index[issue.ResolvedAt.In(loc).Format("2006-01-02")]; ok {
			t.Resolved[i]++
		}
	}
	return t
}
