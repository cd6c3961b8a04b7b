package query

import (
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// The in-memory evaluator runs a Query against decoded JSON documents. The
// memory stores use it for listing, and it doubles as the reference
// implementation the SurrealQL renderer is tested against.

// Doc is a decoded JSON document.
type Doc = map[string]any

// ToDoc round-trips an entity through JSON into a document.
func ToDoc(entity any) (Doc, error) {
	raw, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	var doc Doc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Matches reports whether doc satisfies every filter.
func Matches(doc Doc, filters []Filter) bool {
	for _, f := range filters {
		got, ok := Lookup(doc, f.Path)
		if !ok || got == nil {
			return false
		}
		if f.Op == OpContains {
			if !contains(got, f.Value) {
				return false
			}
			continue
		}
		cmp, ok := compare(got, f.Value)
		if !ok {
			return false
		}
		switch f.Op {
		case OpEq:
			if cmp != 0 {
				return false
			}
		case OpGt:
			if cmp <= 0 {
				return false
			}
		case OpGte:
			if cmp < 0 {
				return false
			}
		case OpLt:
			if cmp >= 0 {
				return false
			}
		case OpLte:
			if cmp > 0 {
				return false
			}
		}
	}
	return true
}

// contains matches array-valued fields elementwise.
func contains(got, want any) bool {
	arr, ok := got.([]any)
	if !ok {
		return false
	}
	for _, el := range arr {
		if cmp, ok := compare(el, want); ok && cmp == 0 {
			return true
		}
	}
	return false
}

// Lookup resolves a dotted path inside nested sub-objects.
func Lookup(doc Doc, path string) (any, bool) {
	current := any(doc)
	for part := range strings.SplitSeq(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SortDocs orders docs by the given keys. Missing values sort last.
func SortDocs(docs []Doc, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, k := range keys {
			a, aok := Lookup(docs[i], k.Path)
			b, bok := Lookup(docs[j], k.Path)
			if !aok && !bok {
				continue
			}
			if !aok {
				return false
			}
			if !bok {
				return true
			}
			cmp, ok := compare(a, b)
			if !ok || cmp == 0 {
				continue
			}
			if k.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// Page slices docs to the query's skip/limit window. Out-of-range pages
// yield an empty slice, not an error.
func Page(docs []Doc, q Query) []Doc {
	start := q.Offset()
	if start >= len(docs) {
		return nil
	}
	end := min(start+q.Limit, len(docs))
	return docs[start:end]
}

// internalFields are omitted from responses unless explicitly requested.
var internalFields = map[string]struct{}{"rev": {}}

// Project reduces a document to the requested fields. With no explicit
// selection every field except internal revision metadata is returned.
func Project(doc Doc, fields []string) Doc {
	out := make(Doc, len(doc))
	if len(fields) == 0 {
		for k, v := range doc {
			if _, internal := internalFields[k]; internal {
				continue
			}
			out[k] = v
		}
		return out
	}
	for _, f := range fields {
		if v, ok := Lookup(doc, f); ok {
			assign(out, f, v)
		}
	}
	return out
}

func assign(doc Doc, path string, value any) {
	parts := strings.Split(path, ".")
	for _, part := range parts[:len(parts)-1] {
		next, ok := doc[part].(Doc)
		if !ok {
			next = Doc{}
			doc[part] = next
		}
		doc = next
	}
	doc[parts[len(parts)-1]] = value
}

// compare orders two values of compatible types. JSON numbers arrive as
// float64 while filter values stay typed, so numbers normalize through
// float64. Time compares accept both time.Time and RFC3339 strings.
func compare(a, b any) (int, bool) {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}
	if at, ok := toTime(a); ok {
		bt, ok := toTime(b)
		if !ok {
			return 0, false
		}
		return at.Compare(bt), true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		if av == bv {
			return 0, true
		}
		if !av {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}
