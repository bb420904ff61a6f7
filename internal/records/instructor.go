package records

import (
	"context"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/rows"
)

// Instructor is assigned to courses through the relations manager.
type Instructor struct {
	Record
	Email        string
	DepartmentID *int64
}

// InstructorUpdate lists the fields to change; nil fields are left alone.
type InstructorUpdate struct {
	Name         *string
	Email        *string
	DepartmentID *int64
	ID           *int64
}

// NewInstructor builds an instructor and resolves its identity by name.
func NewInstructor(ctx context.Context, prims *rows.Primitives, name, email string, departmentID *int64) (*Instructor, error) {
	if err := required("name", name); err != nil {
		return nil, err
	}
	if err := required("email", email); err != nil {
		return nil, err
	}
	rec, err := newRecord(ctx, prims, rows.Instructors, name)
	if err != nil {
		return nil, err
	}
	return &Instructor{Record: rec, Email: email, DepartmentID: departmentID}, nil
}

// Add stores the instructor unless a row with its name already exists.
func (i *Instructor) Add(ctx context.Context) (bool, error) {
	return i.create(ctx, []rows.Field{
		rows.F(rows.ColName, i.name),
		rows.F(rows.ColEmail, i.Email),
		rows.F(rows.ColDepartmentID, database.Nullable(i.DepartmentID)),
	})
}

// Update applies the supplied fields.
func (i *Instructor) Update(ctx context.Context, u InstructorUpdate) (bool, error) {
	if err := requiredPtr("name", u.Name); err != nil {
		return false, err
	}
	if err := requiredPtr("email", u.Email); err != nil {
		return false, err
	}

	var c changeSet
	addPtr(&c, rows.ColName, u.Name)
	addPtr(&c, rows.ColEmail, u.Email)
	addPtr(&c, rows.ColDepartmentID, u.DepartmentID)

	changed, own, err := i.update(ctx, c, u.ID)
	if own {
		if u.Email != nil {
			i.Email = *u.Email
		}
		if u.DepartmentID != nil {
			i.DepartmentID = u.DepartmentID
		}
	}
	return changed, err
}
