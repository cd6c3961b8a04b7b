package query

import "sort"

// Apply runs a parsed query against a slice of entities: filter, sort and
// page, returning the window plus the total filtered count. Memory stores
// use it so listing behaves exactly like the rendered SurrealQL.
func Apply[T any](entities []*T, q Query) ([]*T, int, error) {
	if q.MatchNone() {
		return nil, 0, nil
	}

	type pair struct {
		entity *T
		doc    Doc
	}
	var matched []pair
	for _, e := range entities {
		doc, err := ToDoc(e)
		if err != nil {
			return nil, 0, err
		}
		if Matches(doc, q.Filters) {
			matched = append(matched, pair{entity: e, doc: doc})
		}
	}
	total := len(matched)

	if len(q.Sort) > 0 {
		sort.SliceStable(matched, func(i, j int) bool {
			for _, k := range q.Sort {
				a, aok := Lookup(matched[i].doc, k.Path)
				b, bok := Lookup(matched[j].doc, k.Path)
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

	start := q.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := min(start+q.Limit, len(matched))

	out := make([]*T, 0, end-start)
	for _, p := range matched[start:end] {
		out = append(out, p.entity)
	}
	return out, total, nil
}
