package query

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// Querier is the slice of a pgx pool the executor needs. *pgxpool.Pool
// satisfies it.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Cache stores serialized list pages. Any error from Get is treated as a
// miss and any error from Set is logged and dropped; the cache can never
// fail a request.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Definition describes one listable resource: where its rows live, which
// fields a client may sort and filter on, and an optional fixed predicate
// (with its own named args) that scopes every query, e.g. to the
// authenticated owner.
type Definition struct {
	Name       string
	Table      string
	Alias      string
	Columns    []string
	IDColumn   string
	Sortable   *Allowlist
	Filterable *Allowlist
	BaseWhere  string
}

// Options tunes a single Run call.
type Options struct {
	Cache Cache
	TTL   time.Duration
}

// KeyPrefix returns the cache key prefix for a resource. Write paths pass
// KeyPrefix(name)+"*" to the cache's pattern delete to drop stale pages.
func KeyPrefix(name string) string { return "list:" + name + ":" }

// Run executes the full list pipeline for one request: validate and build
// predicates and sort clauses, compute offset/limit, then issue one data
// query and one count query. When a cache is configured the pipeline is
// short-circuited by a hit on the serialized request, and a miss stores the
// fresh result with a bounded TTL on the way out.
//
// Validation errors surface as *ValidationError before any store call; store
// errors pass through unwrapped.
func Run[T any](ctx context.Context, db Querier, def Definition, q *ListQuery, baseArgs pgx.NamedArgs, scan func(pgx.Rows) (T, error), opts Options) (*PaginatedResult[T], error) {
	if err := ValidateFilters(q.Filters, def.Filterable); err != nil {
		return nil, err
	}
	if fields := SortFields(q.SortBy); len(fields) > 0 {
		if err := def.Sortable.Validate(fields); err != nil {
			return nil, err
		}
	}

	// A hit on the serialized request skips clause building and both queries.
	var key string
	if opts.Cache != nil {
		key = cacheKey(def.Name, q, baseArgs)
		if res, ok := cacheLookup[T](ctx, opts.Cache, key); ok {
			return res, nil
		}
	}

	where, args, err := BuildPredicates(q.Filters, def.Filterable, def.Alias)
	if err != nil {
		return nil, err
	}
	orderBy, err := BuildSort(q.SortBy, q.SortOrder, def.Sortable, def.Alias, def.IDColumn)
	if err != nil {
		return nil, err
	}
	offset, limit := ComputePage(q.Page, q.Limit)

	for k, v := range baseArgs {
		args[k] = v
	}
	conds := make([]string, 0, 2)
	if def.BaseWhere != "" {
		conds = append(conds, def.BaseWhere)
	}
	if where != "" {
		conds = append(conds, where)
	}
	whereClause := ""
	if len(conds) > 0 {
		whereClause = " WHERE " + strings.Join(conds, " AND ")
	}

	from := def.Table
	if def.Alias != "" {
		from += " " + def.Alias
	}

	dataSQL := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT @__limit OFFSET @__offset",
		strings.Join(def.Columns, ", "), from, whereClause, orderBy)
	countSQL := fmt.Sprintf("SELECT count(*) FROM %s%s", from, whereClause)

	dataArgs := pgx.NamedArgs{"__limit": limit, "__offset": offset}
	for k, v := range args {
		dataArgs[k] = v
	}

	rows, err := db.Query(ctx, dataSQL, dataArgs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	data := make([]T, 0, limit)
	for rows.Next() {
		rec, err := scan(rows)
		if err != nil {
			return nil, err
		}
		data = append(data, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var total int64
	if err := db.QueryRow(ctx, countSQL, args).Scan(&total); err != nil {
		return nil, err
	}

	result := &PaginatedResult[T]{
		Data:     data,
		Metadata: NewPageMetadata(q.Page, limit, total),
	}

	if opts.Cache != nil {
		cacheStore(ctx, opts.Cache, key, result, opts.TTL)
	}
	return result, nil
}

// cacheKey derives a deterministic key from the full request. Filters are
// already sorted by the parser and json.Marshal emits map keys in sorted
// order, so identical logical requests serialize identically.
func cacheKey(name string, q *ListQuery, baseArgs pgx.NamedArgs) string {
	payload, _ := json.Marshal(struct {
		Resource string         `json:"resource"`
		Scope    map[string]any `json:"scope"`
		Query    *ListQuery     `json:"query"`
	}{Resource: name, Scope: baseArgs, Query: q})
	sum := sha256.Sum256(payload)
	return KeyPrefix(name) + hex.EncodeToString(sum[:])
}

func cacheLookup[T any](ctx context.Context, c Cache, key string) (*PaginatedResult[T], bool) {
	raw, err := c.Get(ctx, key)
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	var res PaginatedResult[T]
	if err := json.Unmarshal(raw, &res); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("list cache: undecodable entry, treating as miss")
		return nil, false
	}
	return &res, true
}

func cacheStore[T any](ctx context.Context, c Cache, key string, res *PaginatedResult[T], ttl time.Duration) {
	raw, err := json.Marshal(res)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("list cache: marshal failed")
		return
	}
	if err := c.Set(ctx, key, raw, ttl); err != nil {
		log.Debug().Err(err).Str("key", key).Msg("list cache: set failed")
	}
}
