package records

import (
	"context"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/rows"
)

// Student is enrolled in courses through the relations manager.
type Student struct {
	Record
	Email string
	Major *string
}

// StudentUpdate lists the fields to change; nil fields are left alone.
type StudentUpdate struct {
	Name  *string
	Email *string
	Major *string
	ID    *int64
}

// NewStudent builds a student and resolves its identity by name.
func NewStudent(ctx context.Context, prims *rows.Primitives, name, email string, major *string) (*Student, error) {
	if err := required("name", name); err != nil {
		return nil, err
	}
	if err := required("email", email); err != nil {
		return nil, err
	}
	rec, err := newRecord(ctx, prims, rows.Students, name)
	if err != nil {
		return nil, err
	}
	return &Student{Record: rec, Email: email, Major: major}, nil
}

// Add stores the student unless a row with its name already exists.
func (s *Student) Add(ctx context.Context) (bool, error) {
	return s.create(ctx, []rows.Field{
		rows.F(rows.ColName, s.name),
		rows.F(rows.ColEmail, s.Email),
		rows.F(rows.ColMajor, database.Nullable(s.Major)),
	})
}

// Update applies the supplied fields.
func (s *Student) Update(ctx context.Context, u StudentUpdate) (bool, error) {
	if err := requiredPtr("name", u.Name); err != nil {
		return false, err
	}
	if err := requiredPtr("email", u.Email); err != nil {
		return false, err
	}

	var c changeSet
	addPtr(&c, rows.ColName, u.Name)
	addPtr(&c, rows.ColEmail, u.Email)
	addPtr(&c, rows.ColMajor, u.Major)

	changed, own, err := s.update(ctx, c, u.ID)
	if own {
		if u.Email != nil {
			s.Email = *u.Email
		}
		if u.Major != nil {
			s.Major = u.Major
		}
	}
	return changed, err
}
