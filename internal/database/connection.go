package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Row is one result tuple in select order.
type Row []any

// Result reports the effect of a write.
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

type fetchKind int

const (
	fetchOne fetchKind = iota
	fetchAll
	fetchMany
)

// FetchMode selects how many rows a read returns.
type FetchMode struct {
	kind fetchKind
	n    int
}

var (
	// FetchOne returns at most one row.
	FetchOne = FetchMode{kind: fetchOne, n: 1}
	// FetchAll returns every row, possibly none.
	FetchAll = FetchMode{kind: fetchAll}
)

// FetchMany returns up to n rows.
func FetchMany(n int) FetchMode {
	return FetchMode{kind: fetchMany, n: n}
}

func (m FetchMode) limit() int {
	if m.kind == fetchAll {
		return -1
	}
	return m.n
}

func (m FetchMode) String() string {
	switch m.kind {
	case fetchOne:
		return "one"
	case fetchMany:
		return fmt.Sprintf("many(%d)", m.n)
	default:
		return "all"
	}
}

// withConn acquires a dedicated connection for the duration of fn and always
// releases it.
func (db *DB) withConn(ctx context.Context, op string, fn func(context.Context, *sql.Conn) error) error {
	if db == nil || db.conn == nil {
		return &Error{Kind: ErrUnavailable, Op: op, Err: fmt.Errorf("database not initialized")}
	}

	if db.statementTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.statementTimeout)
		defer cancel()
	}

	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return normalize(op, err)
	}
	defer conn.Close()

	return normalize(op, fn(ctx, conn))
}

// ExecWrite applies a single INSERT, UPDATE or DELETE with bound parameters
// and commits it.
func (db *DB) ExecWrite(ctx context.Context, statement string, args ...any) (Result, error) {
	var res Result
	err := db.withConn(ctx, "write", func(ctx context.Context, conn *sql.Conn) error {
		tx, err := conn.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback() //nolint:errcheck // no-op after commit

		out, err := tx.ExecContext(ctx, statement, args...)
		if err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}

		res.RowsAffected, _ = out.RowsAffected()
		res.LastInsertID, _ = out.LastInsertId()
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Read applies a single SELECT with bound parameters. On error the rows are
// nil and the normalized error is returned.
func (db *DB) Read(ctx context.Context, statement string, mode FetchMode, args ...any) ([]Row, error) {
	var out []Row
	err := db.withConn(ctx, "read", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, statement, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return err
		}

		limit := mode.limit()
		result := make([]Row, 0)
		for rows.Next() {
			if limit >= 0 && len(result) >= limit {
				break
			}
			row := make(Row, len(cols))
			ptrs := make([]any, len(cols))
			for i := range row {
				ptrs[i] = &row[i]
			}
			if err := rows.Scan(ptrs...); err != nil {
				return err
			}
			result = append(result, row)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		out = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadOne returns the first row of a SELECT, or nil when there is none.
func (db *DB) ReadOne(ctx context.Context, statement string, args ...any) (Row, error) {
	rows, err := db.Read(ctx, statement, FetchOne, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// exec runs a statement outside the gateway. Used by migrations and maintenance.
func (db *DB) exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

func (db *DB) queryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
