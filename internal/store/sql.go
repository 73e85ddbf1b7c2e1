package store

// sql.go assembles the per-record statements executed by BulkWrite. Columns
// come from caller-supplied records, so every identifier is quoted and all
// values travel as positional parameters. Column order is sorted to keep
// statements deterministic for a given record shape.

import (
	"fmt"
	"sort"
	"strings"
)

// buildInsert returns an INSERT for a new record with a pre-assigned id.
func buildInsert(table, id string, fields map[string]any) (string, []any) {
	cols := sortedColumns(fields)

	names := make([]string, 0, len(cols)+1)
	placeholders := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)

	names = append(names, quoteIdentifier("id"))
	placeholders = append(placeholders, "$1")
	args = append(args, id)

	for i, col := range cols {
		names = append(names, quoteIdentifier(col))
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, fields[col])
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(table),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
	)
	return query, args
}

// buildUpdate returns an UPDATE targeting one record by id.
func buildUpdate(table, id string, fields map[string]any) (string, []any) {
	cols := sortedColumns(fields)

	assignments := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", quoteIdentifier(col), i+1))
		args = append(args, fields[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		quoteIdentifier(table),
		strings.Join(assignments, ", "),
		quoteIdentifier("id"),
		len(cols)+1,
	)
	return query, args
}

// buildUpsert returns an INSERT ... ON CONFLICT keyed on the external-id
// column. The statement returns the row id and whether the row was created;
// xmax is zero only for freshly inserted tuples, which is how an upsert can
// tell an insert from an update without a second round trip.
func buildUpsert(table, externalIDCol, id string, fields map[string]any) (string, []any) {
	cols := sortedColumns(fields)

	names := make([]string, 0, len(cols)+1)
	placeholders := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)

	names = append(names, quoteIdentifier("id"))
	placeholders = append(placeholders, "$1")
	args = append(args, id)

	assignments := make([]string, 0, len(cols))
	for i, col := range cols {
		quoted := quoteIdentifier(col)
		names = append(names, quoted)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, fields[col])
		if col != externalIDCol {
			assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", quoted, quoted))
		}
	}
	if len(assignments) == 0 {
		// Nothing to update besides the conflict key; touch it to keep the
		// DO UPDATE form (DO NOTHING would return no row).
		quoted := quoteIdentifier(externalIDCol)
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", quoted, quoted))
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s RETURNING %s, (xmax = 0) AS created",
		quoteIdentifier(table),
		strings.Join(names, ", "),
		strings.Join(placeholders, ", "),
		quoteIdentifier(externalIDCol),
		strings.Join(assignments, ", "),
		quoteIdentifier("id"),
	)
	return query, args
}

// buildDelete returns a DELETE targeting one record by id.
func buildDelete(table, id string) (string, []any) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1",
		quoteIdentifier(table),
		quoteIdentifier("id"),
	)
	return query, []any{id}
}

// sortedColumns returns the field names in deterministic order.
func sortedColumns(fields map[string]any) []string {
	cols := make([]string, 0, len(fields))
	for col := range fields {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
