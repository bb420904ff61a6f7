package database

import (
	"errors"
	"fmt"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Sentinel error kinds. Every error leaving the gateway matches exactly one
// of them through errors.Is.
var (
	// ErrConstraint means the store rejected a write because of a uniqueness,
	// foreign key, not-null or check rule.
	ErrConstraint = errors.New("constraint violation")
	// ErrUnavailable covers connection and driver failures. The operation is
	// treated as failed with no partial effect.
	ErrUnavailable = errors.New("storage unavailable")
)

// Constraint names the rule a rejected write broke.
type Constraint string

const (
	ConstraintNone       Constraint = ""
	ConstraintUnique     Constraint = "unique"
	ConstraintPrimaryKey Constraint = "primary_key"
	ConstraintForeignKey Constraint = "foreign_key"
	ConstraintNotNull    Constraint = "not_null"
	ConstraintCheck      Constraint = "check"
	ConstraintOther      Constraint = "other"
)

// Error is a normalized storage error.
type Error struct {
	Kind       error
	Op         string
	Constraint Constraint
	Err        error
}

func (e *Error) Error() string {
	if e.Constraint != ConstraintNone {
		return fmt.Sprintf("%s: %v (%s): %v", e.Op, e.Kind, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// IsConstraint reports whether err is a constraint violation.
func IsConstraint(err error) bool {
	return errors.Is(err, ErrConstraint)
}

// IsUnavailable reports whether err is a connection or driver failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// normalize converts a raw driver error into an *Error. Already normalized
// errors pass through untouched.
func normalize(op string, err error) error {
	if err == nil {
		return nil
	}

	var normalized *Error
	if errors.As(err, &normalized) {
		return err
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		if code&0xff == sqlite3.SQLITE_CONSTRAINT {
			return &Error{Kind: ErrConstraint, Op: op, Constraint: constraintFor(code), Err: err}
		}
	}

	return &Error{Kind: ErrUnavailable, Op: op, Err: err}
}

func constraintFor(code int) Constraint {
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return ConstraintUnique
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return ConstraintPrimaryKey
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return ConstraintForeignKey
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return ConstraintNotNull
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return ConstraintCheck
	default:
		return ConstraintOther
	}
}
