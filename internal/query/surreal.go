package query

import (
	"fmt"
	"strings"
	"time"
)

// RenderSelect builds the SurrealQL SELECT statement for a query. Field paths
// come from resource schemas, never from the request, so only values travel
// as bound parameters.
func RenderSelect(table string, q Query) (string, map[string]any) {
	var b strings.Builder
	vars := map[string]any{}

	b.WriteString("SELECT * FROM ")
	b.WriteString(table)
	renderWhere(&b, q.Filters, vars)

	if len(q.Sort) > 0 {
		terms := make([]string, 0, len(q.Sort))
		for _, k := range q.Sort {
			dir := "ASC"
			if k.Desc {
				dir = "DESC"
			}
			terms = append(terms, k.Path+" "+dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	b.WriteString(" LIMIT $limit START $start")
	vars["limit"] = q.Limit
	vars["start"] = q.Offset()
	return b.String(), vars
}

// RenderCount builds the companion total-count statement: same filters, no
// sort or pagination.
func RenderCount(table string, q Query) (string, map[string]any) {
	var b strings.Builder
	vars := map[string]any{}

	b.WriteString("SELECT count() AS total FROM ")
	b.WriteString(table)
	renderWhere(&b, q.Filters, vars)
	b.WriteString(" GROUP ALL")
	return b.String(), vars
}

func renderWhere(b *strings.Builder, filters []Filter, vars map[string]any) {
	if len(filters) == 0 {
		return
	}
	conds := make([]string, 0, len(filters))
	for i, f := range filters {
		name := fmt.Sprintf("f%d", i)
		conds = append(conds, f.Path+" "+string(f.Op)+" $"+name)
		vars[name] = bindValue(f.Value)
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(conds, " AND "))
}

// bindValue converts filter values into types the driver encodes natively.
func bindValue(v any) any {
	if t, ok := v.(time.Time); ok {
		return t.Format(time.RFC3339)
	}
	return v
}
