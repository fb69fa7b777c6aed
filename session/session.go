// Package session owns the lifetime of authenticated staff sessions. A
// session is created at login and torn down at logout; everything the panel
// knows about the user hangs off it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"civicsync-admin/models"
	"civicsync-admin/panel"

	"github.com/google/uuid"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidProfile     = errors.New("invalid login profile")
	ErrNoSession          = errors.New("session not found")
)

const (
	emailDomain = "municipality.gov.in"
	avatarURL   = "https://i.pravatar.cc/150?u="
)

var joinDate = time.Date(2021, time.August, 15, 0, 0, 0, 0, time.UTC)

// Session binds a user to their view controller.
type Session struct {
	ID        string
	User      models.User
	Panel     *panel.Controller
	ExpiresAt time.Time
}

// Factory builds the view controller for a freshly logged in user.
type Factory func(user models.User) *panel.Controller

type Options struct {
	// LoginDelay simulates the round trip of a real sign-in.
	LoginDelay time.Duration
	// TTL of zero keeps sessions until logout.
	TTL time.Duration
	Now func() time.Time
}

type Manager struct {
	factory Factory
	delay   time.Duration
	ttl     time.Duration
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewManager(factory Factory, opts Options) *Manager {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{
		factory:  factory,
		delay:    opts.LoginDelay,
		ttl:      opts.TTL,
		now:      now,
		sessions: make(map[string]*Session),
	}
}

// Login accepts any non-empty username and password. Blank profile fields
// take the login form defaults.
func (m *Manager) Login(ctx context.Context, creds models.LoginCredentials) (*Session, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	user, err := newUser(creds, m.now())
	if err != nil {
		return nil, err
	}

	s := &Session{ID: uuid.NewString(), User: user}
	if m.ttl > 0 {
		s.ExpiresAt = user.LastLogin.Add(m.ttl)
	}
	if m.factory != nil {
		s.Panel = m.factory(user)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

func newUser(creds models.LoginCredentials, now time.Time) (models.User, error) {
	username := strings.TrimSpace(creds.Username)
	if username == "" || strings.TrimSpace(creds.Password) == "" {
		return models.User{}, ErrMissingCredentials
	}

	dep := creds.Department
	if dep == "" {
		dep = models.Administration
	}
	if dep != models.Administration && !dep.IsIssueDepartment() {
		return models.User{}, fmt.Errorf("%w: department %q", ErrInvalidProfile, dep)
	}
	role := creds.Role
	if role == "" {
		role = models.Staff
	}
	if !role.Valid() {
		return models.User{}, fmt.Errorf("%w: role %q", ErrInvalidProfile, role)
	}
	shift := creds.Shift
	if shift == "" {
		shift = models.Morning
	}
	if !shift.Valid() {
		return models.User{}, fmt.Errorf("%w: shift %q", ErrInvalidProfile, shift)
	}

	local := strings.Replace(strings.ToLower(username), " ", ".", 1)
	return models.User{
		ID:         employeeID(),
		Username:   username,
		Email:      local + "@" + emailDomain,
		Department: dep,
		Role:       role,
		Shift:      shift,
		Location:   strings.TrimSpace(creds.Location),
		LastLogin:  now,
		JoinDate:   joinDate,
		About:      fmt.Sprintf("%s with the %s department.", role, dep),
		AvatarURL:  avatarURL + username,
	}, nil
}

func employeeID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "EMP" + strings.ToUpper(raw[:6])
}

// Get returns a live session. Expired sessions are dropped on access.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNoSession
	}
	if !s.ExpiresAt.IsZero() && !m.now().Before(s.ExpiresAt) {
		m.Logout(id)
		return nil, ErrNoSession
	}
	return s, nil
}

// Logout destroys the session and its view state.
func (m *Manager) Logout(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
