package store

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"sync"
	"time"

	"civicsync-admin/models"
)

// MemorySource keeps issues in process. It backs demo mode and tests.
type MemorySource struct {
	mu     sync.Mutex
	issues []models.Issue
	now    func() time.Time
}

func NewMemorySource(seed []models.Issue) *MemorySource {
	issues := make([]models.Issue, len(seed))
	copy(issues, seed)
	return &MemorySource{issues: issues, now: time.Now}
}

func (m *MemorySource) ListIssues(ctx context.Context) ([]models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Issue, len(m.issues))
	copy(out, m.issues)
	return out, nil
}

func (m *MemorySource) index(id string) int {
	for i := range m.issues {
		if m.issues[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *MemorySource) UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return models.Issue{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	issue := &m.issues[i]
	if patch.Title != nil {
		issue.Title = *patch.Title
	}
	if patch.Description != nil {
		issue.Description = *patch.Description
	}
	if patch.Department != nil {
		issue.Department = *patch.Department
	}
	if patch.Priority != nil {
		issue.Priority = *patch.Priority
	}
	if patch.Notes != nil {
		issue.Notes = *patch.Notes
	}
	if patch.Status != nil {
		issue.Status = *patch.Status
	}
	return *issue, nil
}

func (m *MemorySource) DeleteIssue(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.issues = append(m.issues[:i], m.issues[i+1:]...)
	return nil
}

// ResolveIssue stores the proof image inline as a data URL.
func (m *MemorySource) ResolveIssue(ctx context.Context, id string, res models.Resolution) (models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return models.Issue{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	contentType := res.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(res.Image)
	}
	url := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(res.Image)
	at := m.now()
	notes, by := res.Notes, res.ResolvedBy

	issue := &m.issues[i]
	issue.Status = models.Resolved
	issue.ResolvedAt = &at
	issue.ResolvedImageURL = &url
	issue.ResolutionNotes = &notes
	issue.ResolvedBy = &by
	return *issue, nil
}
