package rows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert(t *testing.T) {
	stmt, err := Insert(Students, []Field{
		F(ColName, "Alice"),
		F(ColEmail, "a@example.com"),
		F(ColMajor, "CS"),
	})

	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO students (name, email, major) VALUES (?, ?, ?)", stmt.SQL)
	assert.Equal(t, []any{"Alice", "a@example.com", "CS"}, stmt.Args)
}

func TestInsert_ValueNeverInterpolated(t *testing.T) {
	hostile := "x'); DROP TABLE students; --"
	stmt, err := Insert(Departments, []Field{F(ColName, hostile)})

	require.NoError(t, err)
	assert.NotContains(t, stmt.SQL, "DROP")
	assert.Equal(t, []any{hostile}, stmt.Args)
}

func TestUpdate(t *testing.T) {
	stmt, err := Update(Courses, F(ColID, int64(4)), []Field{
		F(ColCredits, 3),
		F(ColDescription, nil),
	})

	require.NoError(t, err)
	assert.Equal(t, "UPDATE courses SET credits = ?, description = ? WHERE id = ?", stmt.SQL)
	assert.Equal(t, []any{3, nil, int64(4)}, stmt.Args)
}

func TestDelete(t *testing.T) {
	stmt, err := Delete(Staff, F(ColID, int64(2)))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM staff WHERE id = ?", stmt.SQL)

	stmt, err = Delete(CourseStudents, F(ColCourseID, int64(1)), F(ColStudentID, int64(9)))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM course_students WHERE course_id = ? AND student_id = ?", stmt.SQL)
	assert.Equal(t, []any{int64(1), int64(9)}, stmt.Args)

	_, err = Delete(CourseStudents, F(ColCourseID, 1), F(ColStudentID, 2), F(ColCourseID, 3))
	assert.Error(t, err)
}

func TestExistsAndLookup(t *testing.T) {
	stmt, err := Exists(CourseInstructors, F(ColCourseID, int64(1)), F(ColInstructorID, int64(2)))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM course_instructors WHERE course_id = ? AND instructor_id = ? LIMIT 1", stmt.SQL)

	stmt, err = Lookup(Departments, "Physics")
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM departments WHERE name = ? ORDER BY id LIMIT 1", stmt.SQL)
	assert.Equal(t, []any{"Physics"}, stmt.Args)

	_, err = Lookup(CourseStudents, "x")
	assert.ErrorIs(t, err, ErrUnknownIdentifier)
}

func TestSelect(t *testing.T) {
	stmt, err := Select(Departments, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT id, name, description FROM departments ORDER BY id", stmt.SQL)

	stmt, err = Select(CourseStudents, []Column{ColStudentID})
	require.NoError(t, err)
	assert.Equal(t, "SELECT student_id FROM course_students ORDER BY course_id, student_id", stmt.SQL)
}

func TestBuilderRejectsUnknownIdentifiers(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
	}{
		{"insert unknown table", func() error {
			_, err := Insert(Table("users"), []Field{F(ColName, "x")})
			return err
		}},
		{"insert foreign column", func() error {
			_, err := Insert(Departments, []Field{F(ColEmail, "x")})
			return err
		}},
		{"update unknown key", func() error {
			_, err := Update(Students, F(Column("rowid; --"), 1), []Field{F(ColName, "x")})
			return err
		}},
		{"select unknown column", func() error {
			_, err := Select(Staff, []Column{"password"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), ErrUnknownIdentifier)
		})
	}
}

func TestBuilderRejectsBadShapes(t *testing.T) {
	_, err := Insert(Students, nil)
	assert.Error(t, err)

	_, err = Update(Students, F(ColID, 1), nil)
	assert.ErrorIs(t, err, ErrNoChanges)

	_, err = Update(Students, F(ColID, 1), []Field{F(ColName, "a"), F(ColName, "b")})
	assert.Error(t, err)

	_, err = Exists(Students)
	assert.Error(t, err)
}

func TestParseTableAndColumns(t *testing.T) {
	table, err := ParseTable("courses")
	require.NoError(t, err)
	assert.Equal(t, Courses, table)

	_, err = ParseTable("sqlite_master")
	assert.ErrorIs(t, err, ErrUnknownIdentifier)

	cols, err := Courses.ParseColumns([]string{"name", "credits"})
	require.NoError(t, err)
	assert.Equal(t, []Column{ColName, ColCredits}, cols)

	_, err = Courses.ParseColumns([]string{"name", "1=1"})
	assert.ErrorIs(t, err, ErrUnknownIdentifier)

	assert.Len(t, Tables(), 7)
	for _, tbl := range Tables() {
		assert.True(t, tbl.Valid(), tbl)
		assert.NotEmpty(t, tbl.Key(), tbl)
	}
}
