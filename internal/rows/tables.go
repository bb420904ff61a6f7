// Package rows holds the generic row access primitives shared by every
// entity kind, together with the fixed table and column enumeration they are
// allowed to interpolate into statements.
package rows

import (
	"errors"
	"fmt"
	"slices"
)

// ErrUnknownIdentifier is returned when a table or column is not part of the
// schema enumeration.
var ErrUnknownIdentifier = errors.New("unknown identifier")

// Table is a schema table name.
type Table string

// Column is a schema column name.
type Column string

const (
	Departments       Table = "departments"
	Courses           Table = "courses"
	Students          Table = "students"
	Instructors       Table = "instructors"
	Staff             Table = "staff"
	CourseStudents    Table = "course_students"
	CourseInstructors Table = "course_instructors"
)

const (
	ColID           Column = "id"
	ColName         Column = "name"
	ColDescription  Column = "description"
	ColDepartmentID Column = "department_id"
	ColCredits      Column = "credits"
	ColEmail        Column = "email"
	ColMajor        Column = "major"
	ColRole         Column = "role"
	ColCourseID     Column = "course_id"
	ColStudentID    Column = "student_id"
	ColInstructorID Column = "instructor_id"
)

type tableInfo struct {
	columns []Column
	// key is the primary key, two columns for junction tables
	key []Column
	// name is the column used for identity resolution, empty for junctions
	name Column
}

var schema = map[Table]tableInfo{
	Departments: {
		columns: []Column{ColID, ColName, ColDescription},
		key:     []Column{ColID},
		name:    ColName,
	},
	Courses: {
		columns: []Column{ColID, ColName, ColDepartmentID, ColDescription, ColCredits},
		key:     []Column{ColID},
		name:    ColName,
	},
	Students: {
		columns: []Column{ColID, ColName, ColEmail, ColMajor},
		key:     []Column{ColID},
		name:    ColName,
	},
	Instructors: {
		columns: []Column{ColID, ColName, ColEmail, ColDepartmentID},
		key:     []Column{ColID},
		name:    ColName,
	},
	Staff: {
		columns: []Column{ColID, ColName, ColRole, ColDepartmentID},
		key:     []Column{ColID},
		name:    ColName,
	},
	CourseStudents: {
		columns: []Column{ColCourseID, ColStudentID},
		key:     []Column{ColCourseID, ColStudentID},
	},
	CourseInstructors: {
		columns: []Column{ColCourseID, ColInstructorID},
		key:     []Column{ColCourseID, ColInstructorID},
	},
}

// Tables lists every known table in a stable order.
func Tables() []Table {
	return []Table{Departments, Courses, Students, Instructors, Staff, CourseStudents, CourseInstructors}
}

// ParseTable validates an externally supplied table name.
func ParseTable(name string) (Table, error) {
	t := Table(name)
	if !t.Valid() {
		return "", fmt.Errorf("%w: table %q", ErrUnknownIdentifier, name)
	}
	return t, nil
}

// Valid reports whether t is part of the schema.
func (t Table) Valid() bool {
	_, ok := schema[t]
	return ok
}

// Columns returns the table's columns in schema order.
func (t Table) Columns() []Column {
	return slices.Clone(schema[t].columns)
}

// Key returns the primary key columns.
func (t Table) Key() []Column {
	return slices.Clone(schema[t].key)
}

// NameColumn returns the identity resolution column, empty for junctions.
func (t Table) NameColumn() Column {
	return schema[t].name
}

// HasColumn reports whether c belongs to t.
func (t Table) HasColumn(c Column) bool {
	return slices.Contains(schema[t].columns, c)
}

// ParseColumns validates externally supplied column names against t.
func (t Table) ParseColumns(names []string) ([]Column, error) {
	cols := make([]Column, 0, len(names))
	for _, n := range names {
		c := Column(n)
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("%w: column %q on %s", ErrUnknownIdentifier, n, t)
		}
		cols = append(cols, c)
	}
	return cols, nil
}

func (t Table) check(cols ...Column) error {
	if !t.Valid() {
		return fmt.Errorf("%w: table %q", ErrUnknownIdentifier, string(t))
	}
	for _, c := range cols {
		if !t.HasColumn(c) {
			return fmt.Errorf("%w: column %q on %s", ErrUnknownIdentifier, string(c), t)
		}
	}
	return nil
}
