package records

import (
	"context"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/rows"
)

// StaffMember is a non-teaching employee.
type StaffMember struct {
	Record
	Role         string
	DepartmentID *int64
}

// StaffUpdate lists the fields to change; nil fields are left alone.
type StaffUpdate struct {
	Name         *string
	Role         *string
	DepartmentID *int64
	ID           *int64
}

// NewStaffMember builds a staff member and resolves its identity by name.
func NewStaffMember(ctx context.Context, prims *rows.Primitives, name, role string, departmentID *int64) (*StaffMember, error) {
	if err := required("name", name); err != nil {
		return nil, err
	}
	if err := required("role", role); err != nil {
		return nil, err
	}
	rec, err := newRecord(ctx, prims, rows.Staff, name)
	if err != nil {
		return nil, err
	}
	return &StaffMember{Record: rec, Role: role, DepartmentID: departmentID}, nil
}

// Add stores the staff member unless a row with its name already exists.
func (s *StaffMember) Add(ctx context.Context) (bool, error) {
	return s.create(ctx, []rows.Field{
		rows.F(rows.ColName, s.name),
		rows.F(rows.ColRole, s.Role),
		rows.F(rows.ColDepartmentID, database.Nullable(s.DepartmentID)),
	})
}

// Update applies the supplied fields.
func (s *StaffMember) Update(ctx context.Context, u StaffUpdate) (bool, error) {
	if err := requiredPtr("name", u.Name); err != nil {
		return false, err
	}
	if err := requiredPtr("role", u.Role); err != nil {
		return false, err
	}

	var c changeSet
	addPtr(&c, rows.ColName, u.Name)
	addPtr(&c, rows.ColRole, u.Role)
	addPtr(&c, rows.ColDepartmentID, u.DepartmentID)

	changed, own, err := s.update(ctx, c, u.ID)
	if own {
		if u.Role != nil {
			s.Role = *u.Role
		}
		if u.DepartmentID != nil {
			s.DepartmentID = u.DepartmentID
		}
	}
	return changed, err
}
