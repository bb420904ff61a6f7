// Package view provides read-only access to stored tables for presentation
// code. Nothing here mutates the store.
package view

import (
	"context"
	"fmt"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/relations"
	"github.com/collegeapp/registrar/internal/rows"
)

// Result is a table read in column order.
type Result struct {
	Table   rows.Table     `json:"table"`
	Columns []rows.Column  `json:"columns"`
	Rows    []database.Row `json:"rows"`
}

// ScheduleEntry is one enrolled course with its instructors.
type ScheduleEntry struct {
	Course      relations.Course   `json:"course"`
	Instructors []relations.Person `json:"instructors"`
}

// Viewer reads tables and derived views.
type Viewer struct {
	prims     *rows.Primitives
	relations *relations.Manager
}

// New creates a Viewer
func New(prims *rows.Primitives, rel *relations.Manager) *Viewer {
	return &Viewer{prims: prims, relations: rel}
}

// Table returns the rows of table restricted to columns (all when empty).
// Names are validated against the schema since they may come from users.
// A positive limit caps the number of rows.
func (v *Viewer) Table(ctx context.Context, table string, columns []string, limit int) (*Result, error) {
	t, err := rows.ParseTable(table)
	if err != nil {
		return nil, err
	}

	cols := t.Columns()
	if len(columns) > 0 {
		if cols, err = t.ParseColumns(columns); err != nil {
			return nil, err
		}
	}

	mode := database.FetchAll
	if limit > 0 {
		mode = database.FetchMany(limit)
	}

	out, err := v.prims.SelectRows(ctx, t, cols, mode)
	if err != nil {
		return nil, err
	}
	return &Result{Table: t, Columns: cols, Rows: out}, nil
}

// StudentSchedule lists the courses a student is enrolled in along with the
// instructors teaching each one.
func (v *Viewer) StudentSchedule(ctx context.Context, studentID int64) ([]ScheduleEntry, error) {
	courses, err := v.relations.CoursesForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	schedule := make([]ScheduleEntry, 0, len(courses))
	for _, c := range courses {
		instructors, err := v.relations.InstructorsForCourse(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load instructors for course %d: %w", c.ID, err)
		}
		schedule = append(schedule, ScheduleEntry{Course: c, Instructors: instructors})
	}
	return schedule, nil
}
