package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taskhub/internal/domain/user"
)

func TestRulesetCan(t *testing.T) {
	rules := DefaultRuleset()

	tests := []struct {
		name    string
		role    user.Role
		action  string
		subject string
		want    bool
	}{
		{name: "admin can list users", role: user.RoleAdmin, action: "list", subject: "users", want: true},
		{name: "admin wildcard covers anything", role: user.RoleAdmin, action: "purge", subject: "everything", want: true},
		{name: "member manages own tasks", role: user.RoleMember, action: "update", subject: "tasks", want: true},
		{name: "member reads profile", role: user.RoleMember, action: "read", subject: "profile", want: true},
		{name: "member cannot list users", role: user.RoleMember, action: "list", subject: "users", want: false},
		{name: "member cannot write profile", role: user.RoleMember, action: "update", subject: "profile", want: false},
		{name: "unknown role denied", role: user.Role("ghost"), action: "read", subject: "tasks", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Can(tt.role, tt.action, tt.subject))
		})
	}
}

func TestEmptyRulesetDeniesAll(t *testing.T) {
	assert.False(t, Ruleset{}.Can(user.RoleAdmin, "read", "tasks"))
}
