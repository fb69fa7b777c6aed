package models

import "time"

// Role enum
type Role string

const (
	Administrator  Role = "Administrator"
	DepartmentHead Role = "Department Head"
	Supervisor     Role = "Supervisor"
	Staff          Role = "Staff"
)

func (r Role) Valid() bool {
	switch r {
	case Administrator, DepartmentHead, Supervisor, Staff:
		return true
	}
	return false
}

// Shift enum
type Shift string

const (
	Morning  Shift = "Morning"
	Evening  Shift = "Evening"
	Night    Shift = "Night"
	Flexible Shift = "Flexible"
)

func (s Shift) Valid() bool {
	switch s {
	case Morning, Evening, Night, Flexible:
		return true
	}
	return false
}

// User is the staff member behind an authenticated session. It only lives
// as long as the session does.
type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Department Department `json:"department"`
	Role       Role       `json:"role"`
	Shift      Shift      `json:"shift"`
	Location   string     `json:"location"`
	LastLogin  time.Time  `json:"lastLogin"`
	JoinDate   time.Time  `json:"joinDate"`
	About      string     `json:"about"`
	AvatarURL  string     `json:"avatarUrl"`
}

// LoginCredentials is the login form payload.
type LoginCredentials struct {
	Username   string     `json:"username"`
	Password   string     `json:"password"`
	Department Department `json:"department"`
	Role       Role       `json:"role"`
	Shift      Shift      `json:"shift"`
	Location   string     `json:"location"`
}
