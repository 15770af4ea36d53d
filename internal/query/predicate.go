package query

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

var comparisonOps = map[Operator]string{
	OpEq:  "=",
	OpNe:  "<>",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// BuildPredicates translates filter triples into an AND-joined WHERE fragment
// with every value bound through a named argument. It returns the fragment
// without a leading WHERE, and the argument map to execute it with.
//
// All fields and operators are validated before any SQL is assembled, so a
// failing request leaves no partial state behind. Parameter names are made
// unique with a per-call counter, which keeps repeated operators on the same
// field (gte+lte range filters) from colliding.
func BuildPredicates(filters []Filter, allow *Allowlist, alias string) (string, pgx.NamedArgs, error) {
	if len(filters) == 0 {
		return "", pgx.NamedArgs{}, nil
	}
	if err := ValidateFilters(filters, allow); err != nil {
		return "", nil, err
	}

	clauses := make([]string, 0, len(filters))
	args := pgx.NamedArgs{}
	for i, f := range filters {
		col := columnRef(alias, f.Field)
		param := paramName(f, i+1)
		switch f.Op {
		case OpLike:
			args[param] = "%" + escapeLikePattern(fmt.Sprint(f.Value)) + "%"
			clauses = append(clauses, fmt.Sprintf(`lower(%s) LIKE lower(@%s) ESCAPE '\'`, col, param))
		case OpIn:
			vals, _ := inValues(f)
			args[param] = vals
			clauses = append(clauses, fmt.Sprintf("%s = ANY(@%s)", col, param))
		default:
			args[param] = f.Value
			clauses = append(clauses, fmt.Sprintf("%s %s @%s", col, comparisonOps[f.Op], param))
		}
	}

	return strings.Join(clauses, " AND "), args, nil
}

// ValidateFilters checks every triple's field against the allowlist, its
// operator against the closed set, and the value shape for "in". It runs in
// full before any SQL fragment is assembled.
func ValidateFilters(filters []Filter, allow *Allowlist) error {
	fields := make([]string, len(filters))
	for i, f := range filters {
		fields[i] = f.Field
	}
	if err := allow.Validate(fields); err != nil {
		return err
	}
	for _, f := range filters {
		if _, ok := comparisonOps[f.Op]; !ok && f.Op != OpLike && f.Op != OpIn {
			return &ValidationError{
				Field:   f.Field,
				Message: fmt.Sprintf("unsupported filter operator %q on field %q", f.Op, f.Field),
			}
		}
		if f.Op == OpIn {
			if _, err := inValues(f); err != nil {
				return err
			}
		}
	}
	return nil
}

func inValues(f Filter) ([]string, error) {
	switch v := f.Value.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, e := range v {
			out[i] = fmt.Sprint(e)
		}
		return out, nil
	default:
		return nil, &ValidationError{
			Field:   f.Field,
			Message: fmt.Sprintf("operator \"in\" on field %q requires a list of values", f.Field),
		}
	}
}

func columnRef(alias, field string) string {
	if alias == "" {
		return field
	}
	return alias + "." + field
}

// paramName derives a bind-parameter name unique within one request's clause
// set from the field, the operator and the clause index.
func paramName(f Filter, n int) string {
	field := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, f.Field)
	return fmt.Sprintf("%s_%s_%d", field, f.Op, n)
}

// escapeLikePattern neutralizes LIKE wildcards in user input so the bound
// value matches as a literal substring.
func escapeLikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
