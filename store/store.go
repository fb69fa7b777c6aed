package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"civicsync-admin/config"
	"civicsync-admin/models"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNotFound = errors.New("issue not found")
	// ErrUnavailable wraps failures to fetch the issue set.
	ErrUnavailable = errors.New("issue service unavailable")
)

// Source is the collaborator that owns the canonical issue records.
type Source interface {
	ListIssues(ctx context.Context) ([]models.Issue, error)
	UpdateIssue(ctx context.Context, id string, patch models.IssuePatch) (models.Issue, error)
	DeleteIssue(ctx context.Context, id string) error
	ResolveIssue(ctx context.Context, id string, res models.Resolution) (models.Issue, error)
}

// Snapshot is an immutable view of the issue set at one revision.
type Snapshot struct {
	Issues      []models.Issue
	Revision    uint64
	Fingerprint uint64
}

// Find looks an issue up by id.
func (s Snapshot) Find(id string) (models.Issue, bool) {
	for _, issue := range s.Issues {
		if issue.ID == id {
			return issue, true
		}
	}
	return models.Issue{}, false
}

// Store holds the latest issue snapshot fetched from a Source.
//
// Refreshes are tagged with an increasing sequence number; a fetch that
// completes after a newer one has been applied is dropped.
type Store struct {
	source Source

	seq   atomic.Uint64
	group singleflight.Group

	mu       sync.RWMutex
	snap     Snapshot
	applied  uint64
	loaded   bool
	watchers []func(Snapshot)
}

func New(source Source) *Store {
	return &Store{source: source}
}

// OnChange registers fn to run after every applied snapshot.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

// Snapshot returns the current snapshot. Callers must not modify the slice.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LoadTimeout bounds the shared initial fetch.
const LoadTimeout = 15 * time.Second

// Load fetches the first snapshot if none has been applied yet. Concurrent
// callers share a single fetch, which outlives any one caller's context.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	if s.Loaded() {
		return s.Snapshot(), nil
	}
	ch := s.group.DoChan("load", func() (interface{}, error) {
		if s.Loaded() {
			return s.Snapshot(), nil
		}
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
		defer cancel()
		return s.Refresh(fetchCtx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Snapshot{}, res.Err
		}
		return res.Val.(Snapshot), nil
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// Refresh re-fetches the full issue set.
func (s *Store) Refresh(ctx context.Context) (Snapshot, error) {
	seq := s.seq.Add(1)
	issues, err := s.source.ListIssues(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	for i := range issues {
		if err := issues[i].Validate(); err != nil {
			config.Warning("store: issue %s: %v", issues[i].ID, err)
		}
	}
	normalize(issues)

	s.mu.Lock()
	if seq < s.applied {
		snap, applied := s.snap, s.applied
		s.mu.Unlock()
		config.Info("store: dropping stale refresh %d (applied %d)", seq, applied)
		return snap, nil
	}
	s.applied = seq
	s.loaded = true
	s.snap = Snapshot{
		Issues:      issues,
		Revision:    s.snap.Revision + 1,
		Fingerprint: fingerprint(issues),
	}
	snap := s.snap
	watchers := append([]func(Snapshot){}, s.watchers...)
	s.mu.Unlock()

	for _, fn := range watchers {
		fn(snap)
	}
	return snap, nil
}

// Update applies a partial update and re-fetches before returning.
func (s *Store) Update(ctx context.Context, id string, patch models.IssuePatch) (Snapshot, error) {
	if _, err := s.source.UpdateIssue(ctx, id, patch); err != nil {
		return Snapshot{}, err
	}
	return s.Refresh(ctx)
}

// Resolve closes an issue with proof and re-fetches before returning.
func (s *Store) Resolve(ctx context.Context, id string, res models.Resolution) (Snapshot, error) {
	if _, err := s.source.ResolveIssue(ctx, id, res); err != nil {
		return Snapshot{}, err
	}
	return s.Refresh(ctx)
}

// Delete permanently removes an issue and re-fetches before returning.
func (s *Store) Delete(ctx context.Context, id string) (Snapshot, error) {
	if err := s.source.DeleteIssue(ctx, id); err != nil {
		return Snapshot{}, err
	}
	return s.Refresh(ctx)
}

// normalize puts issues in snapshot order: newest submission first, then id.
func normalize(issues []models.Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		ia, ib := issues[a], issues[b]
		if !ia.SubmittedAt.Equal(ib.SubmittedAt) {
			return ia.SubmittedAt.After(ib.SubmittedAt)
		}
		return ia.ID < ib.ID
	})
}

// fingerprint hashes the fields the dashboard derives anything from.
func fingerprint(issues []models.Issue) uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		d.Write(buf[:])
	}
	writeString := func(v string) {
		d.WriteString(v)
		d.Write([]byte{0})
	}
	for _, issue := range issues {
		writeString(issue.ID)
		writeString(issue.Title)
		writeString(issue.Description)
		writeString(string(issue.Department))
		writeString(string(issue.Status))
		writeString(string(issue.Priority))
		writeString(issue.UserID)
		writeInt(issue.SubmittedAt.UnixNano())
		if issue.ResolvedAt != nil {
			writeInt(issue.ResolvedAt.UnixNano())
		} else {
			writeInt(math.MinInt64)
		}
	}
	return d.Sum64()
}
