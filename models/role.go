package models

// SeesAllIssues reports whether the user is exempt from department scoping.
func SeesAllIssues(u User) bool {
	return u.Role == Administrator || u.Department == Administration
}

// CanSee reports whether an issue filed under dep is visible to the user.
func CanSee(u User, dep Department) bool {
	return SeesAllIssues(u) || dep == u.Department
}

func CanViewAnalytics(r Role) bool {
	switch r {
	case Administrator, DepartmentHead, Supervisor:
		return true
	}
	return false
}

// CanViewDepartmentStats reports whether the ongoing/resolved tiles for the
// user's own department apply.
func CanViewDepartmentStats(r Role, d Department) bool {
	if d == Administration {
		return false
	}
	switch r {
	case Staff, DepartmentHead, Supervisor:
		return true
	}
	return false
}

// CanViewDepartmentCards gates the per-department pending cards on the dashboard.
func CanViewDepartmentCards(u User) bool {
	return SeesAllIssues(u)
}

func CanDeleteIssues(r Role) bool {
	return r == Administrator
}
