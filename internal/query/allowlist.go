package query

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError is a client-input fault: an unknown field, an unsupported
// operator, or a malformed parameter. Handlers map it to a 400 response.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Allowlist is the closed set of field names a sort or filter may reference.
// Sortable and filterable sets are supplied separately by each resource; the
// engine never infers them.
type Allowlist struct {
	fields map[string]struct{}
	names  []string
}

func NewAllowlist(fields ...string) *Allowlist {
	a := &Allowlist{fields: make(map[string]struct{}, len(fields))}
	for _, f := range fields {
		if _, dup := a.fields[f]; dup {
			continue
		}
		a.fields[f] = struct{}{}
		a.names = append(a.names, f)
	}
	sort.Strings(a.names)
	return a
}

func (a *Allowlist) Contains(field string) bool {
	_, ok := a.fields[field]
	return ok
}

// Fields returns the allowed names in sorted order, for diagnostics.
func (a *Allowlist) Fields() []string { return a.names }

// Validate checks every requested field against the allowlist and fails on
// the first violation. Nothing is built from a request until all of its
// fields have passed.
func (a *Allowlist) Validate(fields []string) error {
	for _, f := range fields {
		if !a.Contains(f) {
			return &ValidationError{
				Field:   f,
				Message: fmt.Sprintf("unknown field %q, allowed fields: %s", f, strings.Join(a.names, ", ")),
			}
		}
	}
	return nil
}
