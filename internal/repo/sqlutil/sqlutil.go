// Package sqlutil holds the query-building pieces shared by the SQL stores.
package sqlutil

import (
	"strings"

	"github.com/geocoder89/eventreg/internal/domain/event"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s match literally inside a LIKE/ILIKE pattern using ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// ContainsPattern is the substring pattern for s.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}

// OrderBy renders the ORDER BY clause for a listing. Column names come from a
// fixed table, never from input. id breaks ties in the same direction so that
// offset pages do not overlap.
func OrderBy(field event.SortField, order event.SortOrder) string {
	col := "starts_at"
	switch field {
	case event.SortByName:
		col = "name"
	case event.SortByCreatedAt:
		col = "created_at"
	}

	dir := "ASC"
	if order == event.OrderDesc {
		dir = "DESC"
	}

	return " ORDER BY " + col + " " + dir + ", id " + dir
}
