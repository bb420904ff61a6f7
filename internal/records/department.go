package records

import (
	"context"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/rows"
)

// Department is an academic department. Names are unique.
type Department struct {
	Record
	Description *string
}

// DepartmentUpdate lists the fields to change; nil fields are left alone.
type DepartmentUpdate struct {
	Name        *string
	Description *string
	ID          *int64
}

// NewDepartment builds a department and resolves its identity by name.
func NewDepartment(ctx context.Context, prims *rows.Primitives, name string, description *string) (*Department, error) {
	if err := required("name", name); err != nil {
		return nil, err
	}
	rec, err := newRecord(ctx, prims, rows.Departments, name)
	if err != nil {
		return nil, err
	}
	return &Department{Record: rec, Description: description}, nil
}

// Add stores the department unless a row with its name already exists.
func (d *Department) Add(ctx context.Context) (bool, error) {
	return d.create(ctx, []rows.Field{
		rows.F(rows.ColName, d.name),
		rows.F(rows.ColDescription, database.Nullable(d.Description)),
	})
}

// Update applies the supplied fields.
func (d *Department) Update(ctx context.Context, u DepartmentUpdate) (bool, error) {
	if err := requiredPtr("name", u.Name); err != nil {
		return false, err
	}

	var c changeSet
	addPtr(&c, rows.ColName, u.Name)
	addPtr(&c, rows.ColDescription, u.Description)

	changed, own, err := d.update(ctx, c, u.ID)
	if own && u.Description != nil {
		d.Description = u.Description
	}
	return changed, err
}
