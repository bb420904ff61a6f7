package rows

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoChanges is returned by Update when the change set is empty.
var ErrNoChanges = errors.New("no changes")

// Field pairs a column with a value. Ordered slices of fields keep column
// order deterministic and agreed with the caller.
type Field struct {
	Column Column
	Value  any
}

// Match is a column = value condition.
type Match = Field

// F is shorthand for building a Field.
func F(c Column, v any) Field {
	return Field{Column: c, Value: v}
}

// Statement is a SQL template with its bound parameters. Only identifiers
// from the schema enumeration are interpolated; every value is a parameter.
type Statement struct {
	SQL  string
	Args []any
}

func columnsOf(fields []Field) []Column {
	cols := make([]Column, len(fields))
	for i, f := range fields {
		cols[i] = f.Column
	}
	return cols
}

func distinct(fields []Field) error {
	seen := make(map[Column]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Column]; ok {
			return fmt.Errorf("column %q given twice", f.Column)
		}
		seen[f.Column] = struct{}{}
	}
	return nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func joinColumns(cols []Column) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}

func where(matches []Match) (string, []any) {
	clauses := make([]string, len(matches))
	args := make([]any, len(matches))
	for i, m := range matches {
		clauses[i] = string(m.Column) + " = ?"
		args[i] = m.Value
	}
	return strings.Join(clauses, " AND "), args
}

// Insert builds an INSERT with one placeholder per value.
func Insert(t Table, values []Field) (Statement, error) {
	if len(values) == 0 {
		return Statement{}, fmt.Errorf("insert into %s: no values", t)
	}
	if err := t.check(columnsOf(values)...); err != nil {
		return Statement{}, err
	}
	if err := distinct(values); err != nil {
		return Statement{}, fmt.Errorf("insert into %s: %w", t, err)
	}

	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v.Value
	}

	return Statement{
		SQL:  fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t, joinColumns(columnsOf(values)), placeholders(len(values))),
		Args: args,
	}, nil
}

// Update builds an UPDATE with one "column = ?" clause per change, keyed on
// a single column.
func Update(t Table, key Match, changes []Field) (Statement, error) {
	if len(changes) == 0 {
		return Statement{}, ErrNoChanges
	}
	if err := t.check(append(columnsOf(changes), key.Column)...); err != nil {
		return Statement{}, err
	}
	if err := distinct(changes); err != nil {
		return Statement{}, fmt.Errorf("update %s: %w", t, err)
	}

	set := make([]string, len(changes))
	args := make([]any, 0, len(changes)+1)
	for i, c := range changes {
		set[i] = string(c.Column) + " = ?"
		args = append(args, c.Value)
	}
	args = append(args, key.Value)

	return Statement{
		SQL:  fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t, strings.Join(set, ", "), key.Column),
		Args: args,
	}, nil
}

// Delete builds a DELETE on a single column match, or a compound match when
// extra names a second column.
func Delete(t Table, match Match, extra ...Match) (Statement, error) {
	if len(extra) > 1 {
		return Statement{}, fmt.Errorf("delete from %s: at most two match columns", t)
	}
	matches := append([]Match{match}, extra...)
	if err := t.check(columnsOf(matches)...); err != nil {
		return Statement{}, err
	}

	cond, args := where(matches)
	return Statement{
		SQL:  fmt.Sprintf("DELETE FROM %s WHERE %s", t, cond),
		Args: args,
	}, nil
}

// Exists builds an existence probe over one or more matches.
func Exists(t Table, matches ...Match) (Statement, error) {
	if len(matches) == 0 {
		return Statement{}, fmt.Errorf("exists on %s: no match columns", t)
	}
	if err := t.check(columnsOf(matches)...); err != nil {
		return Statement{}, err
	}

	cond, args := where(matches)
	return Statement{
		SQL:  fmt.Sprintf("SELECT 1 FROM %s WHERE %s LIMIT 1", t, cond),
		Args: args,
	}, nil
}

// Lookup builds the name to id resolution query. The lowest id wins if names
// were ever duplicated.
func Lookup(t Table, name string) (Statement, error) {
	nameCol := t.NameColumn()
	if nameCol == "" {
		return Statement{}, fmt.Errorf("%w: %s has no name column", ErrUnknownIdentifier, t)
	}
	if err := t.check(ColID, nameCol); err != nil {
		return Statement{}, err
	}

	return Statement{
		SQL:  fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s LIMIT 1", ColID, t, nameCol, ColID),
		Args: []any{name},
	}, nil
}

// Select builds a read of the given columns (all columns when empty) ordered
// by the primary key.
func Select(t Table, cols []Column) (Statement, error) {
	if len(cols) == 0 {
		cols = t.Columns()
	}
	if err := t.check(cols...); err != nil {
		return Statement{}, err
	}

	return Statement{
		SQL: fmt.Sprintf("SELECT %s FROM %s ORDER BY %s", joinColumns(cols), t, joinColumns(t.Key())),
	}, nil
}
