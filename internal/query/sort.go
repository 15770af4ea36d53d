package query

import (
	"strings"
)

// BuildSort translates a comma-separated sort spec into an ORDER BY fragment
// (without the ORDER BY keyword). Every field shares the single requested
// direction and clauses keep the listed order, so the first field is the
// primary sort key and later fields break ties.
//
// An empty spec falls back to the resource's identifier column descending,
// which keeps ordering deterministic when the client asks for none.
func BuildSort(sortBy string, order Direction, allow *Allowlist, alias, idColumn string) (string, error) {
	if order != Asc && order != Desc {
		order = Desc
	}

	fields := SortFields(sortBy)
	if len(fields) == 0 {
		return columnRef(alias, idColumn) + " " + string(Desc), nil
	}
	if err := allow.Validate(fields); err != nil {
		return "", err
	}

	clauses := make([]string, len(fields))
	for i, f := range fields {
		clauses[i] = columnRef(alias, f) + " " + string(order)
	}
	return strings.Join(clauses, ", "), nil
}

// SortFields splits a comma-separated sort spec into trimmed, non-empty
// field names, preserving order.
func SortFields(sortBy string) []string {
	parts := strings.Split(sortBy, ",")
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}
