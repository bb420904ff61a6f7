// Package records implements the in-memory entity records (departments,
// courses, students, instructors, staff). Every kind composes one generic
// Record that owns identity resolution and the add/update/remove lifecycle.
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/collegeapp/registrar/internal/rows"
)

var (
	// ErrInvalid is returned when required attributes are missing or out of range.
	ErrInvalid = errors.New("invalid record")
	// ErrNameTaken is returned when a rename would make name resolution ambiguous.
	ErrNameTaken = errors.New("name already in use")
)

// Record is the generic part of an entity record: its table, the name used
// for identity resolution and the optional surrogate id.
type Record struct {
	prims *rows.Primitives
	table rows.Table
	name  string
	id    *int64
}

func newRecord(ctx context.Context, prims *rows.Primitives, table rows.Table, name string) (Record, error) {
	r := Record{prims: prims, table: table, name: name}
	if err := r.Resolve(ctx); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Find resolves an existing row of any entity table by name. The returned
// record may be unresolved; callers embed it in a kind to update it.
func Find(ctx context.Context, prims *rows.Primitives, table rows.Table, name string) (Record, error) {
	if err := required("name", name); err != nil {
		return Record{}, err
	}
	return newRecord(ctx, prims, table, name)
}

// ID returns the resolved id and whether identity is resolved.
func (r *Record) ID() (int64, bool) {
	if r.id == nil {
		return 0, false
	}
	return *r.id, true
}

// Resolved reports whether the record currently matches a stored row.
func (r *Record) Resolved() bool {
	return r.id != nil
}

// Name returns the in-memory name.
func (r *Record) Name() string {
	return r.name
}

// Table returns the backing table.
func (r *Record) Table() rows.Table {
	return r.table
}

// Resolve looks up the id of the stored row carrying this record's name. The
// identity becomes unresolved when no such row exists.
func (r *Record) Resolve(ctx context.Context) error {
	id, ok, err := r.prims.ResolveID(ctx, r.table, r.name)
	if err != nil {
		return err
	}
	if !ok {
		r.id = nil
		return nil
	}
	r.id = &id
	return nil
}

// reverify re-resolves identity after a failed or ineffective write. A
// lookup failure leaves the record unresolved.
func (r *Record) reverify(ctx context.Context) {
	if err := r.Resolve(ctx); err != nil {
		log.Warn().Err(err).Str("table", string(r.table)).Str("name", r.name).Msg("Failed to re-verify record identity")
		r.id = nil
	}
}

// create inserts values when identity is unresolved and reports whether a row
// was written.
func (r *Record) create(ctx context.Context, values []rows.Field) (bool, error) {
	if !r.Resolved() {
		// Another writer may have stored the same name since construction
		if err := r.Resolve(ctx); err != nil {
			return false, err
		}
	}
	if r.Resolved() {
		return false, nil
	}

	if _, err := r.prims.CreateRow(ctx, r.table, values); err != nil {
		r.reverify(ctx)
		return false, err
	}

	if err := r.Resolve(ctx); err != nil {
		return true, err
	}
	log.Info().Str("table", string(r.table)).Str("name", r.name).Int64("id", *r.id).Msg("Record added")
	return true, nil
}

// update applies changes keyed on explicitID, the cached id, or an id
// resolved by name, in that order. own reports whether the updated row is
// this record's own row; only then does the cached name follow a rename.
func (r *Record) update(ctx context.Context, changes []rows.Field, explicitID *int64) (changed, own bool, err error) {
	if len(changes) == 0 {
		return false, false, nil
	}

	var id int64
	switch {
	case explicitID != nil:
		id = *explicitID
	case r.Resolved():
		id = *r.id
	default:
		if err := r.Resolve(ctx); err != nil {
			return false, false, err
		}
		if !r.Resolved() {
			return false, false, nil
		}
		id = *r.id
	}

	if err := r.checkRename(ctx, id, changes); err != nil {
		return false, false, err
	}

	n, err := r.prims.UpdateRow(ctx, r.table, rows.F(rows.ColID, id), changes)
	if err != nil {
		r.reverify(ctx)
		return false, false, err
	}

	if n == 0 {
		// The row vanished underneath a cached or explicit id
		r.reverify(ctx)
		return false, false, nil
	}

	if !r.Resolved() || *r.id != id {
		// Another row was targeted by id; identity still comes from our name
		r.reverify(ctx)
		return true, false, nil
	}

	for _, c := range changes {
		if c.Column == rows.ColName {
			r.name, _ = c.Value.(string)
		}
	}
	return true, true, nil
}

// checkRename keeps names unique per kind so resolution stays unambiguous.
func (r *Record) checkRename(ctx context.Context, id int64, changes []rows.Field) error {
	for _, c := range changes {
		if c.Column != rows.ColName {
			continue
		}
		name, _ := c.Value.(string)
		other, ok, err := r.prims.ResolveID(ctx, r.table, name)
		if err != nil {
			return err
		}
		if ok && other != id {
			return fmt.Errorf("%w: %s %q", ErrNameTaken, r.table, name)
		}
	}
	return nil
}

// Remove deletes the stored row. It is a no-op when identity never resolved.
func (r *Record) Remove(ctx context.Context) (bool, error) {
	if !r.Resolved() {
		return false, nil
	}

	n, err := r.prims.DeleteRow(ctx, r.table, rows.F(rows.ColID, *r.id))
	if err != nil {
		r.reverify(ctx)
		return false, err
	}

	log.Info().Str("table", string(r.table)).Str("name", r.name).Int64("id", *r.id).Msg("Record removed")
	r.reverify(ctx)
	return n > 0, nil
}

func (r *Record) String() string {
	if id, ok := r.ID(); ok {
		return fmt.Sprintf("%s[%d] %q", r.table, id, r.name)
	}
	return fmt.Sprintf("%s[unresolved] %q", r.table, r.name)
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalid, field)
	}
	return nil
}

func requiredPtr(field string, value *string) error {
	if value == nil {
		return nil
	}
	return required(field, *value)
}

// changeSet accumulates only the fields a caller actually supplied.
type changeSet []rows.Field

func addPtr[T any](c *changeSet, col rows.Column, v *T) {
	if v != nil {
		*c = append(*c, rows.F(col, *v))
	}
}
