package auth

import "taskhub/internal/domain/user"

// Ability grants one action on one subject to a role. "*" matches any
// action or subject.
type Ability struct {
	Role    user.Role
	Action  string
	Subject string
}

// Ruleset is the in-memory ability list evaluated per request.
type Ruleset []Ability

// DefaultRuleset: admins can do everything, members manage their own tasks
// and read their own profile.
func DefaultRuleset() Ruleset {
	return Ruleset{
		{Role: user.RoleAdmin, Action: "*", Subject: "*"},
		{Role: user.RoleMember, Action: "*", Subject: "tasks"},
		{Role: user.RoleMember, Action: "read", Subject: "profile"},
	}
}

// Can reports whether the role is granted the action on the subject.
func (r Ruleset) Can(role user.Role, action, subject string) bool {
	for _, a := range r {
		if a.Role != role {
			continue
		}
		if (a.Action == "*" || a.Action == action) && (a.Subject == "*" || a.Subject == subject) {
			return true
		}
	}
	return false
}
