// Package query turns incoming filter/sort/pagination parameters into a
// store-agnostic read description any entity collection can execute.
//
// Each resource declares an explicit Schema (an allow-list from request
// parameter to field path and expected kind) rather than passing request keys
// through to the database verbatim. A parameter naming an unknown field marks
// the query match-nothing — the list returns zero results and totalCount 0,
// never an error — and a value that fails to parse for its declared kind is
// dropped silently while the remaining filters still apply.
package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Reserved parameters consumed by the builder itself.
var reserved = map[string]struct{}{
	"page":   {},
	"sort":   {},
	"limit":  {},
	"fields": {},
}

// Pagination bounds.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Kind declares how a filter value must parse.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindBool
	KindTime
)

// FieldSpec binds a request parameter to a document field path. Contains
// marks array-valued fields: an equality filter on them matches documents
// whose array holds the value.
type FieldSpec struct {
	Path     string
	Kind     Kind
	Contains bool
}

// Schema is a resource's filter/sort allow-list.
type Schema struct {
	// Filterable maps request parameter names (dotted for nested
	// sub-objects) to field specs.
	Filterable map[string]FieldSpec
	// Sortable maps sort keys to field paths.
	Sortable map[string]string
	// DefaultSort applies when the request carries no sort parameter,
	// e.g. "-createdAt".
	DefaultSort string
}

// Op is a comparison operator. Equality is the default; the four range
// operators arrive as bracket suffixes (param[gte]=v).
type Op string

const (
	OpEq       Op = "="
	OpGt       Op = ">"
	OpGte      Op = ">="
	OpLt       Op = "<"
	OpLte      Op = "<="
	OpContains Op = "CONTAINS"
)

var suffixOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

// Filter is one parsed constraint.
type Filter struct {
	Path  string
	Op    Op
	Value any // string, int64, bool or time.Time per the field's Kind
}

// SortKey is one parsed ordering term.
type SortKey struct {
	Path string
	Desc bool
}

// Query is the parsed read description.
type Query struct {
	Filters []Filter
	Sort    []SortKey
	Fields  []string
	Page    int
	Limit   int

	matchNone bool
}

// MatchNone reports that a filter referenced an unknown field; the caller
// must return an empty page with totalCount 0 without touching the store.
func (q Query) MatchNone() bool { return q.matchNone }

// Offset is the skip window implied by page and limit.
func (q Query) Offset() int { return (q.Page - 1) * q.Limit }

// Parse builds a Query from request parameters under the given schema.
func Parse(values url.Values, schema Schema) Query {
	q := Query{Page: 1, Limit: DefaultLimit}

	// Deterministic filter order keeps rendered statements stable.
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		raw := values.Get(name)
		base, op := splitOperator(name)
		if _, ok := reserved[base]; ok {
			continue
		}

		spec, ok := schema.Filterable[base]
		if !ok {
			q.matchNone = true
			continue
		}
		value, ok := parseValue(raw, spec.Kind)
		if !ok {
			continue
		}
		if spec.Contains && op == OpEq {
			op = OpContains
		}
		q.Filters = append(q.Filters, Filter{Path: spec.Path, Op: op, Value: value})
	}

	q.Sort = parseSort(values.Get("sort"), schema)
	q.Fields = parseFields(values.Get("fields"))
	q.Page, q.Limit = parsePagination(values.Get("page"), values.Get("limit"))
	return q
}

// splitOperator separates "price[gte]" into ("price", OpGte).
func splitOperator(name string) (string, Op) {
	open := strings.IndexByte(name, '[')
	if open == -1 || !strings.HasSuffix(name, "]") {
		return name, OpEq
	}
	if op, ok := suffixOps[name[open+1:len(name)-1]]; ok {
		return name[:open], op
	}
	return name, OpEq
}

func parseValue(raw string, kind Kind) (any, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, false
		}
		return b, true
	case KindTime:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			// Date-only values are common in filters.
			t, err = time.Parse("2006-01-02", raw)
			if err != nil {
				return nil, false
			}
		}
		return t.UTC(), true
	default:
		return raw, true
	}
}

func parseSort(raw string, schema Schema) []SortKey {
	if raw == "" {
		raw = schema.DefaultSort
	}
	var keys []SortKey
	for term := range strings.SplitSeq(raw, ",") {
		term = strings.TrimSpace(term)
		if term == "" {
			continue
		}
		desc := strings.HasPrefix(term, "-")
		name := strings.TrimPrefix(term, "-")
		path, ok := schema.Sortable[name]
		if !ok {
			continue
		}
		keys = append(keys, SortKey{Path: path, Desc: desc})
	}
	return keys
}

func parseFields(raw string) []string {
	if raw == "" {
		return nil
	}
	var fields []string
	for f := range strings.SplitSeq(raw, ",") {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	return fields
}

func parsePagination(rawPage, rawLimit string) (page, limit int) {
	page, limit = 1, DefaultLimit
	if n, err := strconv.Atoi(rawPage); err == nil && n >= 1 {
		page = n
	}
	if n, err := strconv.Atoi(rawLimit); err == nil && n >= 1 {
		limit = min(n, MaxLimit)
	}
	return page, limit
}
