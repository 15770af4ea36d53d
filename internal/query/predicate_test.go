package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taskFilterAllow = NewAllowlist("title", "status", "priority", "created_at")

func TestBuildPredicatesOperators(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		wantSQL  string
		wantArgs map[string]any
	}{
		{
			name:     "eq",
			filter:   Filter{Field: "status", Op: OpEq, Value: "open"},
			wantSQL:  "t.status = @status_eq_1",
			wantArgs: map[string]any{"status_eq_1": "open"},
		},
		{
			name:     "ne",
			filter:   Filter{Field: "status", Op: OpNe, Value: "done"},
			wantSQL:  "t.status <> @status_ne_1",
			wantArgs: map[string]any{"status_ne_1": "done"},
		},
		{
			name:     "gt",
			filter:   Filter{Field: "priority", Op: OpGt, Value: "2"},
			wantSQL:  "t.priority > @priority_gt_1",
			wantArgs: map[string]any{"priority_gt_1": "2"},
		},
		{
			name:     "lte",
			filter:   Filter{Field: "priority", Op: OpLte, Value: "4"},
			wantSQL:  "t.priority <= @priority_lte_1",
			wantArgs: map[string]any{"priority_lte_1": "4"},
		},
		{
			name:     "like wraps and lowercases",
			filter:   Filter{Field: "title", Op: OpLike, Value: "Report"},
			wantSQL:  `lower(t.title) LIKE lower(@title_like_1) ESCAPE '\'`,
			wantArgs: map[string]any{"title_like_1": "%Report%"},
		},
		{
			name:     "in binds a list",
			filter:   Filter{Field: "status", Op: OpIn, Value: []string{"open", "blocked"}},
			wantSQL:  "t.status = ANY(@status_in_1)",
			wantArgs: map[string]any{"status_in_1": []string{"open", "blocked"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := BuildPredicates([]Filter{tt.filter}, taskFilterAllow, "t")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, map[string]any(args))
		})
	}
}

func TestBuildPredicatesConjunction(t *testing.T) {
	filters := []Filter{
		{Field: "priority", Op: OpGte, Value: "2"},
		{Field: "priority", Op: OpLte, Value: "4"},
		{Field: "status", Op: OpEq, Value: "open"},
	}

	sql, args, err := BuildPredicates(filters, taskFilterAllow, "t")
	require.NoError(t, err)
	assert.Equal(t, "t.priority >= @priority_gte_1 AND t.priority <= @priority_lte_2 AND t.status = @status_eq_3", sql)

	// Same field twice must not collide on parameter names.
	assert.Len(t, args, 3)
	assert.Equal(t, "2", args["priority_gte_1"])
	assert.Equal(t, "4", args["priority_lte_2"])
}

func TestBuildPredicatesLikeEscaping(t *testing.T) {
	sql, args, err := BuildPredicates(
		[]Filter{{Field: "title", Op: OpLike, Value: "test%user_name"}},
		taskFilterAllow, "t")
	require.NoError(t, err)
	assert.Contains(t, sql, "LIKE")
	// Wildcards in the user's input must be matched literally.
	assert.Equal(t, `%test\%user\_name%`, args["title_like_1"])
}

func TestBuildPredicatesLikeEscapesBackslash(t *testing.T) {
	_, args, err := BuildPredicates(
		[]Filter{{Field: "title", Op: OpLike, Value: `a\b`}},
		taskFilterAllow, "t")
	require.NoError(t, err)
	assert.Equal(t, `%a\\b%`, args["title_like_1"])
}

func TestBuildPredicatesUnknownField(t *testing.T) {
	_, _, err := BuildPredicates(
		[]Filter{{Field: "password_hash", Op: OpEq, Value: "x"}},
		taskFilterAllow, "t")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "password_hash", verr.Field)
	assert.Contains(t, verr.Message, "allowed fields")
}

func TestBuildPredicatesUnsupportedOperator(t *testing.T) {
	_, _, err := BuildPredicates(
		[]Filter{{Field: "status", Op: Operator("regex"), Value: "x"}},
		taskFilterAllow, "t")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, `"regex"`)
}

func TestBuildPredicatesInRequiresList(t *testing.T) {
	_, _, err := BuildPredicates(
		[]Filter{{Field: "status", Op: OpIn, Value: "open"}},
		taskFilterAllow, "t")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "requires a list")
}

func TestBuildPredicatesFailFast(t *testing.T) {
	// A bad field late in the list leaves nothing half-built.
	filters := []Filter{
		{Field: "status", Op: OpEq, Value: "open"},
		{Field: "secret", Op: OpEq, Value: "x"},
	}
	sql, args, err := BuildPredicates(filters, taskFilterAllow, "t")
	require.Error(t, err)
	assert.Empty(t, sql)
	assert.Nil(t, args)
}

func TestBuildPredicatesNoAlias(t *testing.T) {
	sql, _, err := BuildPredicates(
		[]Filter{{Field: "status", Op: OpEq, Value: "open"}},
		taskFilterAllow, "")
	require.NoError(t, err)
	assert.Equal(t, "status = @status_eq_1", sql)
}
