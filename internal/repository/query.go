package repository

import (
	"strings"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where accumulates conjunctive predicates and their bind arguments
type where struct {
	clauses []string
	args    []any
}

// eq adds column = value, skipped when value is empty
func (w *where) eq(column, value string) {
	if value == "" {
		return
	}
	w.add(column+" = ?", value)
}

func (w *where) add(clause string, args ...any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, args...)
}

// search adds a case-insensitive substring match over any of columns
func (w *where) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, "LOWER("+col+`) LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}
	w.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// sortable maps the sortBy keys a listing accepts to SQL columns
type sortable struct {
	columns  map[string]string
	fallback string
	tiebreak string
}

// orderBy renders an ORDER BY clause; unknown keys use the fallback column
func (s sortable) orderBy(p domain.ListParams) string {
	col, ok := s.columns[p.SortBy]
	if !ok {
		col = s.columns[s.fallback]
	}
	dir := domain.SortDesc
	if p.SortOrder == domain.SortAsc {
		dir = domain.SortAsc
	}
	return " ORDER BY " + col + " " + dir + ", " + s.tiebreak + " " + dir
}

// columns renders a select list, qualifying each name with alias when set
func columns(alias string, names []string) string {
	if alias == "" {
		return strings.Join(names, ", ")
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = alias + "." + n
	}
	return strings.Join(out, ", ")
}

// namedValues renders ":a, :b" for a named insert
func namedValues(names []string) string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = ":" + n
	}
	return strings.Join(out, ", ")
}

// namedSet renders "a = :a, b = :b" for a named update, skipping id and created_at
func namedSet(names []string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "id" || n == "created_at" {
			continue
		}
		out = append(out, n+" = :"+n)
	}
	return strings.Join(out, ", ")
}
