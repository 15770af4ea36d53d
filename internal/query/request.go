package query

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Direction is a sort direction shared by every field of a multi-field sort.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Operator is the closed set of filter comparison operators.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpLike Operator = "like"
	OpIn   Operator = "in"
)

// Filter is one (field, operator, value) triple contributed to the
// conjunctive WHERE clause. For OpIn the value is a []string.
type Filter struct {
	Field string   `json:"field"`
	Op    Operator `json:"op"`
	Value any      `json:"value"`
}

// ListQuery is the normalized form of a list request. It is built once per
// request by ParseListQuery and not mutated afterwards.
type ListQuery struct {
	Page      int       `json:"page"`
	Limit     int       `json:"limit"`
	SortBy    string    `json:"sortBy"`
	SortOrder Direction `json:"sortOrder"`
	Filters   []Filter  `json:"filters"`
}

// ParseListQuery normalizes raw URL query parameters into a ListQuery.
//
// Recognized parameters:
//
//	page=2
//	limit=25
//	sortBy=priority,created_at
//	sortOrder=ASC
//	filter[status]=open               implicit eq
//	filter[priority][gte]=3           explicit operator
//	filter[status][in]=open,blocked   comma-separated list for in
//
// Filters are sorted by (field, operator) so that the same logical request
// always serializes to the same bytes, which the cache layer relies on.
func ParseListQuery(values url.Values) (*ListQuery, error) {
	q := &ListQuery{Page: DefaultPage, Limit: DefaultLimit, SortOrder: Desc}

	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ValidationError{Field: "page", Message: fmt.Sprintf("page must be an integer, got %q", v)}
		}
		q.Page = n
	}
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ValidationError{Field: "limit", Message: fmt.Sprintf("limit must be an integer, got %q", v)}
		}
		q.Limit = n
	}

	q.SortBy = strings.TrimSpace(values.Get("sortBy"))
	if v := values.Get("sortOrder"); v != "" {
		switch strings.ToUpper(strings.TrimSpace(v)) {
		case string(Asc):
			q.SortOrder = Asc
		case string(Desc):
			q.SortOrder = Desc
		default:
			return nil, &ValidationError{Field: "sortOrder", Message: fmt.Sprintf("sortOrder must be ASC or DESC, got %q", v)}
		}
	}

	for key := range values {
		field, op, ok, err := parseFilterKey(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		raw := values.Get(key)
		var value any = raw
		if op == OpIn {
			parts := strings.Split(raw, ",")
			list := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					list = append(list, p)
				}
			}
			value = list
		}
		q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
	}

	// url.Values iteration order is random; keep the triple order stable.
	sort.Slice(q.Filters, func(i, j int) bool {
		if q.Filters[i].Field != q.Filters[j].Field {
			return q.Filters[i].Field < q.Filters[j].Field
		}
		return q.Filters[i].Op < q.Filters[j].Op
	})

	return q, nil
}

// parseFilterKey recognizes filter[field] and filter[field][op] keys.
// The operator itself is validated later by the predicate builder, except for
// the key shape, which must be rejected here.
func parseFilterKey(key string) (field string, op Operator, ok bool, err error) {
	const prefix = "filter["
	if !strings.HasPrefix(key, prefix) {
		return "", "", false, nil
	}
	if !strings.HasSuffix(key, "]") {
		return "", "", false, &ValidationError{Field: key, Message: fmt.Sprintf("malformed filter parameter %q", key)}
	}
	inner := key[len(prefix) : len(key)-1]
	parts := strings.Split(inner, "][")
	switch len(parts) {
	case 1:
		field = strings.TrimSpace(parts[0])
		op = OpEq
	case 2:
		field = strings.TrimSpace(parts[0])
		op = Operator(strings.TrimSpace(parts[1]))
	default:
		return "", "", false, &ValidationError{Field: key, Message: fmt.Sprintf("malformed filter parameter %q", key)}
	}
	if field == "" {
		return "", "", false, &ValidationError{Field: key, Message: fmt.Sprintf("malformed filter parameter %q", key)}
	}
	return field, op, true, nil
}
