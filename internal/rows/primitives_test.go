package rows

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeapp/registrar/internal/database"
)

// countingGateway records calls without touching a store.
type countingGateway struct {
	writes int
	reads  int
	row    database.Row
	err    error
}

func (g *countingGateway) ExecWrite(_ context.Context, _ string, _ ...any) (database.Result, error) {
	g.writes++
	return database.Result{RowsAffected: 1}, g.err
}

func (g *countingGateway) Read(_ context.Context, _ string, _ database.FetchMode, _ ...any) ([]database.Row, error) {
	g.reads++
	if g.row == nil {
		return []database.Row{}, g.err
	}
	return []database.Row{g.row}, g.err
}

func (g *countingGateway) ReadOne(_ context.Context, _ string, _ ...any) (database.Row, error) {
	g.reads++
	return g.row, g.err
}

func newMockPrimitives(t *testing.T) (*Primitives, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return New(database.NewFromConn(conn)), mock
}

func TestUpdateRow_EmptyChangesNeverReachGateway(t *testing.T) {
	gw := &countingGateway{}
	p := New(gw)

	n, err := p.UpdateRow(context.Background(), Students, F(ColID, int64(1)), nil)

	assert.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, gw.writes)
	assert.Zero(t, gw.reads)
}

func TestCreateRow(t *testing.T) {
	p, mock := newMockPrimitives(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO departments (name, description) VALUES (?, ?)")).
		WithArgs("Computer Science", "CS dept").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	id, err := p.CreateRow(context.Background(), Departments, []Field{
		F(ColName, "Computer Science"),
		F(ColDescription, "CS dept"),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRow_ReportsStorageError(t *testing.T) {
	gw := &countingGateway{err: errors.New("boom")}
	p := New(gw)

	_, err := p.CreateRow(context.Background(), Departments, []Field{F(ColName, "Physics")})

	assert.Error(t, err)
	assert.Equal(t, 1, gw.writes)
}

func TestUpdateRow(t *testing.T) {
	p, mock := newMockPrimitives(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET major = ? WHERE id = ?")).
		WithArgs("Physics", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := p.UpdateRow(context.Background(), Students, F(ColID, int64(3)), []Field{F(ColMajor, "Physics")})

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRow_Compound(t *testing.T) {
	p, mock := newMockPrimitives(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM course_students WHERE course_id = ? AND student_id = ?")).
		WithArgs(int64(1), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := p.DeleteRow(context.Background(), CourseStudents, F(ColCourseID, int64(1)), F(ColStudentID, int64(2)))

	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveID(t *testing.T) {
	lookup := regexp.QuoteMeta("SELECT id FROM departments WHERE name = ? ORDER BY id LIMIT 1")

	t.Run("found", func(t *testing.T) {
		p, mock := newMockPrimitives(t)
		mock.ExpectQuery(lookup).WithArgs("Physics").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))

		id, ok, err := p.ResolveID(context.Background(), Departments, "Physics")

		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(3), id)
	})

	t.Run("absent is not an error", func(t *testing.T) {
		p, mock := newMockPrimitives(t)
		mock.ExpectQuery(lookup).WithArgs("Astronomy").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		id, ok, err := p.ResolveID(context.Background(), Departments, "Astronomy")

		require.NoError(t, err)
		assert.False(t, ok)
		assert.Zero(t, id)
	})

	t.Run("storage error", func(t *testing.T) {
		p, mock := newMockPrimitives(t)
		mock.ExpectQuery(lookup).WithArgs("Physics").WillReturnError(errors.New("disk I/O error"))

		_, ok, err := p.ResolveID(context.Background(), Departments, "Physics")

		assert.False(t, ok)
		assert.ErrorIs(t, err, database.ErrUnavailable)
	})
}

func TestRowExists(t *testing.T) {
	gw := &countingGateway{row: database.Row{int64(1)}}
	p := New(gw)

	ok, err := p.RowExists(context.Background(), CourseStudents, F(ColCourseID, int64(1)), F(ColStudentID, int64(2)))
	require.NoError(t, err)
	assert.True(t, ok)

	gw.row = nil
	ok, err = p.RowExists(context.Background(), Courses, F(ColID, int64(99)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, IsDuplicate(&database.Error{Kind: database.ErrConstraint, Constraint: database.ConstraintPrimaryKey, Err: errors.New("x")}))
	assert.False(t, IsDuplicate(&database.Error{Kind: database.ErrConstraint, Constraint: database.ConstraintForeignKey, Err: errors.New("x")}))
	assert.False(t, IsDuplicate(errors.New("x")))
}
