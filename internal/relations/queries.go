package relations

import (
	"context"
	"fmt"

	"github.com/collegeapp/registrar/internal/database"
)

// Course is a course row as seen from a relationship.
type Course struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	DepartmentID *int64  `json:"department_id"`
	Description  *string `json:"description"`
	Credits      int64   `json:"credits"`
}

// Person is a student or instructor as seen from a relationship.
type Person struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

const (
	coursesForStudentSQL = `
		SELECT c.id, c.name, c.department_id, c.description, c.credits
		FROM courses c
		JOIN course_students cs ON cs.course_id = c.id
		WHERE cs.student_id = ?
		ORDER BY c.id`

	coursesForInstructorSQL = `
		SELECT c.id, c.name, c.department_id, c.description, c.credits
		FROM courses c
		JOIN course_instructors ci ON ci.course_id = c.id
		WHERE ci.instructor_id = ?
		ORDER BY c.id`

	studentsInCourseSQL = `
		SELECT s.id, s.name, s.email
		FROM students s
		JOIN course_students cs ON cs.student_id = s.id
		WHERE cs.course_id = ?
		ORDER BY s.id`

	instructorsForCourseSQL = `
		SELECT i.id, i.name, i.email
		FROM instructors i
		JOIN course_instructors ci ON ci.instructor_id = i.id
		WHERE ci.course_id = ?
		ORDER BY i.id`
)

// CoursesForStudent lists the courses a student is enrolled in.
func (m *Manager) CoursesForStudent(ctx context.Context, studentID int64) ([]Course, error) {
	return m.courses(ctx, coursesForStudentSQL, studentID)
}

// CoursesForInstructor lists the courses an instructor teaches.
func (m *Manager) CoursesForInstructor(ctx context.Context, instructorID int64) ([]Course, error) {
	return m.courses(ctx, coursesForInstructorSQL, instructorID)
}

// StudentsInCourse lists the students enrolled in a course.
func (m *Manager) StudentsInCourse(ctx context.Context, courseID int64) ([]Person, error) {
	return m.people(ctx, studentsInCourseSQL, courseID)
}

// InstructorsForCourse lists the instructors assigned to a course.
func (m *Manager) InstructorsForCourse(ctx context.Context, courseID int64) ([]Person, error) {
	return m.people(ctx, instructorsForCourseSQL, courseID)
}

func (m *Manager) courses(ctx context.Context, query string, id int64) ([]Course, error) {
	result, err := m.prims.Query(ctx, query, database.FetchAll, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	courses := make([]Course, 0, len(result))
	for _, row := range result {
		c := Course{
			Name:         database.StringValue(row[1]),
			DepartmentID: database.Int64Ptr(row[2]),
			Description:  database.StringPtr(row[3]),
		}
		c.ID, _ = database.Int64Value(row[0])
		c.Credits, _ = database.Int64Value(row[4])
		courses = append(courses, c)
	}
	return courses, nil
}

func (m *Manager) people(ctx context.Context, query string, id int64) ([]Person, error) {
	result, err := m.prims.Query(ctx, query, database.FetchAll, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	people := make([]Person, 0, len(result))
	for _, row := range result {
		p := Person{
			Name:  database.StringValue(row[1]),
			Email: database.StringValue(row[2]),
		}
		p.ID, _ = database.Int64Value(row[0])
		people = append(people, p)
	}
	return people, nil
}
