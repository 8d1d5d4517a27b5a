package customer

import (
	"fmt"
	"strings"
)

// ListQuery carries the optional filter/sort/pagination parameters of the
// customer listing. Zero values mean "not set"; Page and Limit are expected
// to be normalized by the caller.
type ListQuery struct {
	Page    int
	Limit   int
	SortBy  string
	Order   string
	City    string
	State   string
	Pincode string
	Q       string
}

// sortColumns allow-lists the ORDER BY targets. The raw parameter is never
// interpolated; unknown values fall back to created_at.
var sortColumns = map[string]string{
	"id":         "c.id",
	"first_name": "c.first_name",
	"last_name":  "c.last_name",
	"phone":      "c.phone",
	"email":      "c.email",
	"created_at": "c.created_at",
	"updated_at": "c.updated_at",
}

// containsColumns are matched OR-combined against the free-text filter.
var containsColumns = []string{"c.first_name", "c.last_name", "c.email", "a.line1", "a.line2"}

// whereBuilder collects WHERE clause fragments and their bound values in
// lock-step, so positional parameters can never drift out of order.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (b *whereBuilder) equals(column string, value interface{}) {
	b.args = append(b.args, value)
	b.clauses = append(b.clauses, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

// contains adds a single OR-group of case-insensitive substring matches,
// one bound parameter per column.
func (b *whereBuilder) contains(columns []string, value string) {
	parts := make([]string, 0, len(columns))
	for _, col := range columns {
		b.args = append(b.args, "%"+value+"%")
		parts = append(parts, fmt.Sprintf("%s ILIKE $%d", col, len(b.args)))
	}
	b.clauses = append(b.clauses, "("+strings.Join(parts, " OR ")+")")
}

func (b *whereBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.clauses, " AND ")
}

// buildListQuery assembles the page query and the filter-equivalent count
// query for the customer listing. Rows are grouped by customer id so the
// one-to-many address join does not duplicate customers; the count query
// shares the filter parameters but not the pagination ones.
func buildListQuery(q ListQuery) (pageSQL, countSQL string, pageArgs, countArgs []interface{}) {
	b := &whereBuilder{}
	if q.City != "" {
		b.equals("a.city", q.City)
	}
	if q.State != "" {
		b.equals("a.state", q.State)
	}
	if q.Pincode != "" {
		b.equals("a.pincode", q.Pincode)
	}
	if q.Q != "" {
		b.contains(containsColumns, q.Q)
	}

	where := b.where()
	countArgs = append(countArgs, b.args...)
	countSQL = strings.TrimSpace(fmt.Sprintf(`
SELECT COUNT(DISTINCT c.id)
FROM customers c
LEFT JOIN addresses a ON a.customer_id = c.id
%s`, where))

	sortCol, ok := sortColumns[q.SortBy]
	if !ok {
		sortCol = "c.created_at"
	}
	dir := "DESC"
	if strings.EqualFold(q.Order, "asc") {
		dir = "ASC"
	}

	pageArgs = append(pageArgs, b.args...)
	pageArgs = append(pageArgs, q.Limit, (q.Page-1)*q.Limit)
	pageSQL = strings.TrimSpace(fmt.Sprintf(`
SELECT c.id, c.first_name, c.last_name, c.phone, c.email, c.account_type,
       c.only_one_address, c.created_at, c.updated_at,
       string_agg(a.city || '|' || a.pincode, ',') AS addresses_summary
FROM customers c
LEFT JOIN addresses a ON a.customer_id = c.id
%s
GROUP BY c.id
ORDER BY %s %s
LIMIT $%d OFFSET $%d`, where, sortCol, dir, len(pageArgs)-1, len(pageArgs)))

	return pageSQL, countSQL, pageArgs, countArgs
}
