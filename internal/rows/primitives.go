package rows

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/collegeapp/registrar/internal/database"
)

// Gateway executes single statements against the store.
type Gateway interface {
	ExecWrite(ctx context.Context, statement string, args ...any) (database.Result, error)
	Read(ctx context.Context, statement string, mode database.FetchMode, args ...any) ([]database.Row, error)
	ReadOne(ctx context.Context, statement string, args ...any) (database.Row, error)
}

var _ Gateway = (*database.DB)(nil)

// Primitives are the generic create/update/delete/resolve/exists operations
// every entity kind is built from.
type Primitives struct {
	gw Gateway
}

// New creates Primitives over a gateway
func New(gw Gateway) *Primitives {
	return &Primitives{gw: gw}
}

// CreateRow inserts one row and returns the store-assigned id.
func (p *Primitives) CreateRow(ctx context.Context, t Table, values []Field) (int64, error) {
	stmt, err := Insert(t, values)
	if err != nil {
		return 0, err
	}

	res, err := p.gw.ExecWrite(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		log.Error().Err(err).Str("table", string(t)).Msg("Failed to create row")
		return 0, fmt.Errorf("failed to create %s row: %w", t, err)
	}

	log.Debug().Str("table", string(t)).Int64("id", res.LastInsertID).Msg("Row created")
	return res.LastInsertID, nil
}

// UpdateRow applies changes to the row matching key and returns the number
// of affected rows. An empty change set never reaches the gateway.
func (p *Primitives) UpdateRow(ctx context.Context, t Table, key Match, changes []Field) (int64, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	stmt, err := Update(t, key, changes)
	if err != nil {
		return 0, err
	}

	res, err := p.gw.ExecWrite(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		log.Error().Err(err).Str("table", string(t)).Any("key", key.Value).Msg("Failed to update row")
		return 0, fmt.Errorf("failed to update %s row: %w", t, err)
	}

	log.Debug().Str("table", string(t)).Any("key", key.Value).Int("columns", len(changes)).Int64("affected", res.RowsAffected).Msg("Row updated")
	return res.RowsAffected, nil
}

// DeleteRow removes rows matching one column, or two when extra is given.
func (p *Primitives) DeleteRow(ctx context.Context, t Table, match Match, extra ...Match) (int64, error) {
	stmt, err := Delete(t, match, extra...)
	if err != nil {
		return 0, err
	}

	res, err := p.gw.ExecWrite(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		log.Error().Err(err).Str("table", string(t)).Msg("Failed to delete row")
		return 0, fmt.Errorf("failed to delete %s row: %w", t, err)
	}

	log.Debug().Str("table", string(t)).Int64("affected", res.RowsAffected).Msg("Row deleted")
	return res.RowsAffected, nil
}

// ResolveID looks up the id of the row whose name equals name. Absence is
// reported as ok == false, not as an error.
func (p *Primitives) ResolveID(ctx context.Context, t Table, name string) (id int64, ok bool, err error) {
	stmt, err := Lookup(t, name)
	if err != nil {
		return 0, false, err
	}

	row, err := p.gw.ReadOne(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve %s id: %w", t, err)
	}
	if len(row) == 0 {
		return 0, false, nil
	}

	id, ok = database.Int64Value(row[0])
	if !ok {
		return 0, false, fmt.Errorf("failed to resolve %s id: unexpected value %v", t, row[0])
	}
	return id, true, nil
}

// RowExists reports whether at least one row satisfies every match.
func (p *Primitives) RowExists(ctx context.Context, t Table, matches ...Match) (bool, error) {
	stmt, err := Exists(t, matches...)
	if err != nil {
		return false, err
	}

	row, err := p.gw.ReadOne(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return false, fmt.Errorf("failed to check %s row: %w", t, err)
	}
	return row != nil, nil
}

// SelectRows reads the given columns of t ordered by primary key.
func (p *Primitives) SelectRows(ctx context.Context, t Table, cols []Column, mode database.FetchMode) ([]database.Row, error) {
	stmt, err := Select(t, cols)
	if err != nil {
		return nil, err
	}

	out, err := p.gw.Read(ctx, stmt.SQL, mode, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", t, err)
	}
	return out, nil
}

// Query runs an arbitrary read through the gateway. Used for joins the
// builder does not express.
func (p *Primitives) Query(ctx context.Context, statement string, mode database.FetchMode, args ...any) ([]database.Row, error) {
	return p.gw.Read(ctx, statement, mode, args...)
}

// IsDuplicate reports whether err is the store rejecting a repeated key.
func IsDuplicate(err error) bool {
	var e *database.Error
	if !errors.As(err, &e) || !database.IsConstraint(err) {
		return false
	}
	return e.Constraint == database.ConstraintUnique || e.Constraint == database.ConstraintPrimaryKey
}
