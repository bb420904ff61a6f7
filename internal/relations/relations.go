// Package relations manages the many-to-many links between courses and
// students (enrollment) and courses and instructors (assignment).
package relations

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/collegeapp/registrar/internal/rows"
)

// Member is anything with an optionally resolved identity, typically a
// *records.Student or *records.Instructor.
type Member interface {
	ID() (int64, bool)
}

// junction describes one link table.
type junction struct {
	table   rows.Table
	member  rows.Column
	members rows.Table
	label   string
}

var (
	enrollment = junction{table: rows.CourseStudents, member: rows.ColStudentID, members: rows.Students, label: "enrollment"}
	assignment = junction{table: rows.CourseInstructors, member: rows.ColInstructorID, members: rows.Instructors, label: "assignment"}
)

// Manager guards every link mutation with existence checks so junction rows
// never reference a missing course and are never duplicated.
type Manager struct {
	prims *rows.Primitives
	// mu serializes check-then-act sequences within this process
	mu sync.Mutex
}

// New creates a relationship manager
func New(prims *rows.Primitives) *Manager {
	return &Manager{prims: prims}
}

// Enroll links student to courseID. It reports whether a row was written;
// unresolved or deleted students, missing courses and existing enrollments
// are no-ops.
func (m *Manager) Enroll(ctx context.Context, student Member, courseID int64) (bool, error) {
	return m.link(ctx, enrollment, student, courseID)
}

// Withdraw removes the enrollment of student in courseID if present.
func (m *Manager) Withdraw(ctx context.Context, student Member, courseID int64) (bool, error) {
	return m.unlink(ctx, enrollment, student, courseID)
}

// Assign links instructor to courseID with the same guards as Enroll.
func (m *Manager) Assign(ctx context.Context, instructor Member, courseID int64) (bool, error) {
	return m.link(ctx, assignment, instructor, courseID)
}

// Unassign removes the assignment of instructor to courseID if present.
func (m *Manager) Unassign(ctx context.Context, instructor Member, courseID int64) (bool, error) {
	return m.unlink(ctx, assignment, instructor, courseID)
}

func (m *Manager) link(ctx context.Context, j junction, member Member, courseID int64) (bool, error) {
	memberID, ok := member.ID()
	if !ok {
		log.Debug().Str("relation", j.label).Int64("course_id", courseID).Msg("Member identity unresolved, skipping link")
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	courseExists, err := m.prims.RowExists(ctx, rows.Courses, rows.F(rows.ColID, courseID))
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", j.label, err)
	}
	if !courseExists {
		log.Debug().Str("relation", j.label).Int64("course_id", courseID).Msg("Course does not exist, skipping link")
		return false, nil
	}

	// A cached member id may point at a row deleted elsewhere
	memberExists, err := m.prims.RowExists(ctx, j.members, rows.F(rows.ColID, memberID))
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", j.label, err)
	}
	if !memberExists {
		log.Debug().Str("relation", j.label).Int64("member_id", memberID).Msg("Member does not exist, skipping link")
		return false, nil
	}

	pair := []rows.Match{rows.F(rows.ColCourseID, courseID), rows.F(j.member, memberID)}
	linked, err := m.prims.RowExists(ctx, j.table, pair...)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", j.label, err)
	}
	if linked {
		return false, nil
	}

	if _, err := m.prims.CreateRow(ctx, j.table, pair); err != nil {
		// Another writer got there first; the composite key kept one row
		if rows.IsDuplicate(err) {
			log.Debug().Str("relation", j.label).Int64("course_id", courseID).Int64("member_id", memberID).Msg("Link already present")
			return false, nil
		}
		return false, fmt.Errorf("failed to create %s: %w", j.label, err)
	}

	log.Info().Str("relation", j.label).Int64("course_id", courseID).Int64("member_id", memberID).Msg("Link created")
	return true, nil
}

func (m *Manager) unlink(ctx context.Context, j junction, member Member, courseID int64) (bool, error) {
	memberID, ok := member.ID()
	if !ok {
		return false, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	course := rows.F(rows.ColCourseID, courseID)
	who := rows.F(j.member, memberID)

	linked, err := m.prims.RowExists(ctx, j.table, course, who)
	if err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", j.label, err)
	}
	if !linked {
		return false, nil
	}

	n, err := m.prims.DeleteRow(ctx, j.table, course, who)
	if err != nil {
		return false, fmt.Errorf("failed to remove %s: %w", j.label, err)
	}

	log.Info().Str("relation", j.label).Int64("course_id", courseID).Int64("member_id", memberID).Msg("Link removed")
	return n > 0, nil
}

// ByID adapts a bare id to Member, for callers that hold ids rather than records.
type ByID int64

// ID implements Member.
func (id ByID) ID() (int64, bool) {
	return int64(id), id > 0
}
