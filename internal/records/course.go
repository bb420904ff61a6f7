package records

import (
	"context"
	"fmt"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/rows"
)

// Course belongs to at most one department.
type Course struct {
	Record
	DepartmentID *int64
	Description  *string
	Credits      int
}

// CourseUpdate lists the fields to change; nil fields are left alone.
type CourseUpdate struct {
	Name         *string
	DepartmentID *int64
	Description  *string
	Credits      *int
	ID           *int64
}

func validCredits(credits int) error {
	if credits < 0 {
		return fmt.Errorf("%w: credits must be >= 0, got %d", ErrInvalid, credits)
	}
	return nil
}

// NewCourse builds a course and resolves its identity by name.
func NewCourse(ctx context.Context, prims *rows.Primitives, name string, departmentID *int64, description *string, credits int) (*Course, error) {
	if err := required("name", name); err != nil {
		return nil, err
	}
	if err := validCredits(credits); err != nil {
		return nil, err
	}
	rec, err := newRecord(ctx, prims, rows.Courses, name)
	if err != nil {
		return nil, err
	}
	return &Course{Record: rec, DepartmentID: departmentID, Description: description, Credits: credits}, nil
}

// Add stores the course unless a row with its name already exists.
func (c *Course) Add(ctx context.Context) (bool, error) {
	return c.create(ctx, []rows.Field{
		rows.F(rows.ColName, c.name),
		rows.F(rows.ColDepartmentID, database.Nullable(c.DepartmentID)),
		rows.F(rows.ColDescription, database.Nullable(c.Description)),
		rows.F(rows.ColCredits, c.Credits),
	})
}

// Update applies the supplied fields.
func (c *Course) Update(ctx context.Context, u CourseUpdate) (bool, error) {
	if err := requiredPtr("name", u.Name); err != nil {
		return false, err
	}
	if u.Credits != nil {
		if err := validCredits(*u.Credits); err != nil {
			return false, err
		}
	}

	var cs changeSet
	addPtr(&cs, rows.ColName, u.Name)
	addPtr(&cs, rows.ColDepartmentID, u.DepartmentID)
	addPtr(&cs, rows.ColDescription, u.Description)
	addPtr(&cs, rows.ColCredits, u.Credits)

	changed, own, err := c.update(ctx, cs, u.ID)
	if own {
		if u.DepartmentID != nil {
			c.DepartmentID = u.DepartmentID
		}
		if u.Description != nil {
			c.Description = u.Description
		}
		if u.Credits != nil {
			c.Credits = *u.Credits
		}
	}
	return changed, err
}
