package query

// Pagination bounds. Out-of-range page and limit values are clamped rather
// than rejected: a page below 1 becomes 1 and a limit outside [1,100] is
// pulled to the nearest bound. Clamping is the one place the engine corrects
// input instead of failing it.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ClampPage bounds page to [1, ∞).
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampLimit bounds limit to [1, MaxLimit].
func ClampLimit(limit int) int {
	if limit < 1 {
		return 1
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// ComputePage converts a 1-based page and a requested limit into the
// offset/limit pair to execute with.
func ComputePage(page, limit int) (offset, boundedLimit int) {
	p := ClampPage(page)
	l := ClampLimit(limit)
	return (p - 1) * l, l
}

// PageMetadata is the derived pagination summary returned with every page.
// It is recomputed from (page, limit, totalCount) on each call and carries no
// state of its own.
type PageMetadata struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	TotalCount      int64 `json:"totalCount"`
	TotalPages      int64 `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

func NewPageMetadata(page, limit int, totalCount int64) PageMetadata {
	p := ClampPage(page)
	l := ClampLimit(limit)
	totalPages := (totalCount + int64(l) - 1) / int64(l)
	return PageMetadata{
		Page:            p,
		Limit:           l,
		TotalCount:      totalCount,
		TotalPages:      totalPages,
		HasNextPage:     int64(p) < totalPages,
		HasPreviousPage: p > 1,
	}
}

// PaginatedResult is one page of records plus its metadata.
type PaginatedResult[T any] struct {
	Data     []T          `json:"data"`
	Metadata PageMetadata `json:"metadata"`
}
