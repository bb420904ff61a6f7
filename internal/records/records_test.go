package records

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/collegeapp/registrar/internal/database"
	"github.com/collegeapp/registrar/internal/rows"
)

// countingGateway forwards to a real database and counts writes.
type countingGateway struct {
	*database.DB
	writes int
}

func (g *countingGateway) ExecWrite(ctx context.Context, statement string, args ...any) (database.Result, error) {
	g.writes++
	return g.DB.ExecWrite(ctx, statement, args...)
}

func setup(t *testing.T) (*countingGateway, *rows.Primitives) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	gw := &countingGateway{DB: db}
	return gw, rows.New(gw)
}

func ptr[T any](v T) *T { return &v }

func countRows(t *testing.T, gw *countingGateway, table rows.Table) int {
	t.Helper()
	got, err := gw.Read(context.Background(), "SELECT * FROM "+string(table), database.FetchAll)
	if err != nil {
		t.Fatalf("failed to read %s: %v", table, err)
	}
	return len(got)
}

func TestDepartment_AddResolvesConsistently(t *testing.T) {
	ctx := context.Background()
	gw, prims := setup(t)

	dept, err := NewDepartment(ctx, prims, "Computer Science", ptr("CS dept"))
	if err != nil {
		t.Fatalf("NewDepartment returned error: %v", err)
	}
	if dept.Resolved() {
		t.Fatal("expected new department to be unresolved")
	}

	added, err := dept.Add(ctx)
	if err != nil || !added {
		t.Fatalf("Add returned %v, %v", added, err)
	}
	id, ok := dept.ID()
	if !ok {
		t.Fatal("expected identity to be resolved after add")
	}

	resolved, found, err := prims.ResolveID(ctx, rows.Departments, "Computer Science")
	if err != nil || !found || resolved != id {
		t.Fatalf("expected resolve to return %d, got %d (%v, %v)", id, resolved, found, err)
	}

	added, err = dept.Add(ctx)
	if err != nil || added {
		t.Fatalf("expected second Add to be a no-op, got %v, %v", added, err)
	}

	twin, err := NewDepartment(ctx, prims, "Computer Science", ptr("duplicate"))
	if err != nil {
		t.Fatalf("NewDepartment returned error: %v", err)
	}
	if twinID, _ := twin.ID(); twinID != id {
		t.Fatalf("expected twin to resolve to %d, got %d", id, twinID)
	}
	if added, err := twin.Add(ctx); err != nil || added {
		t.Fatalf("expected twin Add to be a no-op, got %v, %v", added, err)
	}
	if n := countRows(t, gw, rows.Departments); n != 1 {
		t.Fatalf("expected 1 department row, got %d", n)
	}
}

func TestRemove_UnresolvedIsNoOp(t *testing.T) {
	ctx := context.Background()
	gw, prims := setup(t)

	staff, err := NewStaffMember(ctx, prims, "Eve Adams", "Registrar", nil)
	if err != nil {
		t.Fatalf("NewStaffMember returned error: %v", err)
	}

	removed, err := staff.Remove(ctx)
	if err != nil || removed {
		t.Fatalf("expected no-op, got %v, %v", removed, err)
	}
	if gw.writes != 0 {
		t.Fatalf("expected no writes, got %d", gw.writes)
	}
}

func TestRemove_DeletesAndUnresolves(t *testing.T) {
	ctx := context.Background()
	gw, prims := setup(t)

	course, err := NewCourse(ctx, prims, "Calculus I", nil, nil, 4)
	if err != nil {
		t.Fatalf("NewCourse returned error: %v", err)
	}
	if _, err := course.Add(ctx); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	removed, err := course.Remove(ctx)
	if err != nil || !removed {
		t.Fatalf("Remove returned %v, %v", removed, err)
	}
	if course.Resolved() {
		t.Fatal("expected identity to be unresolved after remove")
	}
	if n := countRows(t, gw, rows.Courses); n != 0 {
		t.Fatalf("expected no course rows, got %d", n)
	}
}

func TestUpdate_NoFieldsNoWrite(t *testing.T) {
	ctx := context.Background()
	gw, prims := setup(t)

	student, err := NewStudent(ctx, prims, "Alice", "a@example.com", ptr("CS"))
	if err != nil {
		t.Fatalf("NewStudent returned error: %v", err)
	}
	if _, err := student.Add(ctx); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	before := gw.writes

	changed, err := student.Update(ctx, StudentUpdate{})
	if err != nil || changed {
		t.Fatalf("expected no-op update, got %v, %v", changed, err)
	}
	if gw.writes != before {
		t.Fatalf("expected no writes, got %d", gw.writes-before)
	}
}

func TestUpdate_PartialKeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	gw, prims := setup(t)

	student, err := NewStudent(ctx, prims, "Alice", "a@example.com", ptr("CS"))
	if err != nil {
		t.Fatalf("NewStudent returned error: %v", err)
	}
	if _, err := student.Add(ctx); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	id, _ := student.ID()

	changed, err := student.Update(ctx, StudentUpdate{Major: ptr("Physics")})
	if err != nil || !changed {
		t.Fatalf("Update returned %v, %v", changed, err)
	}

	row, err := gw.ReadOne(ctx, "SELECT name, email, major FROM students WHERE id = ?", id)
	if err != nil {
		t.Fatalf("ReadOne returned error: %v", err)
	}
	if database.StringValue(row[0]) != "Alice" || database.StringValue(row[1]) != "a@example.com" || database.StringValue(row[2]) != "Physics" {
		t.Fatalf("unexpected row after partial update: %v", row)
	}
}

func TestUpdate_RenameFollowsName(t *testing.T) {
	ctx := context.Background()
	_, prims := setup(t)

	inst, err := NewInstructor(ctx, prims, "Dr. Hopper", "hopper@example.edu", nil)
	if err != nil {
		t.Fatalf("NewInstructor returned error: %v", err)
	}
	if _, err := inst.Add(ctx); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	if _, err := inst.Update(ctx, InstructorUpdate{Name: ptr("Dr. Grace Hopper")}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if inst.Name() != "Dr. Grace Hopper" {
		t.Fatalf("expected cached name to follow rename, got %q", inst.Name())
	}
	if err := inst.Resolve(ctx); err != nil || !inst.Resolved() {
		t.Fatalf("expected renamed instructor to resolve, got %v", err)
	}
}

func TestUpdate_RenameToTakenName(t *testing.T) {
	ctx := context.Background()
	_, prims := setup(t)

	for _, name := range []string{"Linear Algebra", "Calculus I"} {
		c, err := NewCourse(ctx, prims, name, nil, nil, 3)
		if err != nil {
			t.Fatalf("NewCourse returned error: %v", err)
		}
		if _, err := c.Add(ctx); err != nil {
			t.Fatalf("Add returned error: %v", err)
		}
	}

	calc, _ := NewCourse(ctx, prims, "Calculus I", nil, nil, 3)
	_, err := calc.Update(ctx, CourseUpdate{Name: ptr("Linear Algebra")})
	if !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestUpdate_VanishedRowUnresolves(t *testing.T) {
	ctx := context.Background()
	gw, prims := setup(t)

	dept, _ := NewDepartment(ctx, prims, "Physics", nil)
	if _, err := dept.Add(ctx); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	id, _ := dept.ID()

	if _, err := gw.ExecWrite(ctx, "DELETE FROM departments WHERE id = ?", id); err != nil {
		t.Fatalf("external delete failed: %v", err)
	}

	changed, err := dept.Update(ctx, DepartmentUpdate{Description: ptr("gone")})
	if err != nil || changed {
		t.Fatalf("expected no change, got %v, %v", changed, err)
	}
	if dept.Resolved() {
		t.Fatal("expected identity to be unresolved after updating a vanished row")
	}
}

func TestUpdate_ExplicitID(t *testing.T) {
	ctx := context.Background()
	gw, prims := setup(t)

	res, err := gw.ExecWrite(ctx, "INSERT INTO staff (name, role) VALUES (?, ?)", "Frank", "Secretary")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	other, _ := NewStaffMember(ctx, prims, "Someone Else", "Clerk", nil)
	changed, err := other.Update(ctx, StaffUpdate{Role: ptr("Dean"), ID: ptr(res.LastInsertID)})
	if err != nil || !changed {
		t.Fatalf("Update returned %v, %v", changed, err)
	}

	row, _ := gw.ReadOne(ctx, "SELECT role FROM staff WHERE id = ?", res.LastInsertID)
	if database.StringValue(row[0]) != "Dean" {
		t.Fatalf("expected role Dean, got %v", row[0])
	}
}

func TestUpdate_ExplicitIDKeepsOwnIdentity(t *testing.T) {
	ctx := context.Background()
	gw, prims := setup(t)

	res, err := gw.ExecWrite(ctx, "INSERT INTO staff (name, role) VALUES (?, ?)", "Frank", "Secretary")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	frankID := res.LastInsertID

	other, _ := NewStaffMember(ctx, prims, "Someone Else", "Clerk", nil)
	if _, err := other.Update(ctx, StaffUpdate{Role: ptr("Dean"), ID: ptr(frankID)}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if other.Resolved() {
		t.Fatalf("expected record to stay unresolved, got %s", other.String())
	}
	if other.Role != "Clerk" {
		t.Fatalf("expected cached role Clerk, got %q", other.Role)
	}

	if removed, err := other.Remove(ctx); err != nil || removed {
		t.Fatalf("Remove = (%v, %v), want (false, nil)", removed, err)
	}
	if exists, _ := prims.RowExists(ctx, rows.Staff, rows.F(rows.ColID, frankID)); !exists {
		t.Fatal("expected Frank's row to survive")
	}

	added, err := other.Add(ctx)
	if err != nil || !added {
		t.Fatalf("Add = (%v, %v), want (true, nil)", added, err)
	}
	if id, _ := other.ID(); id == frankID {
		t.Fatal("expected a row of its own, got Frank's id")
	}

	// A resolved record renaming another row by id keeps its own name
	if _, err := other.Update(ctx, StaffUpdate{Name: ptr("Francis"), ID: ptr(frankID)}); err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if other.Name() != "Someone Else" {
		t.Fatalf("expected cached name Someone Else, got %q", other.Name())
	}
	if id, ok := other.ID(); !ok || id == frankID {
		t.Fatalf("expected own id to be kept, got (%d, %v)", id, ok)
	}
}

func TestAdd_ConstraintViolationLeavesUnresolved(t *testing.T) {
	ctx := context.Background()
	_, prims := setup(t)

	alice, _ := NewStudent(ctx, prims, "Alice", "shared@example.com", nil)
	if _, err := alice.Add(ctx); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	bob, _ := NewStudent(ctx, prims, "Bob", "shared@example.com", nil)
	added, err := bob.Add(ctx)
	if added || !database.IsConstraint(err) {
		t.Fatalf("expected constraint violation, got %v, %v", added, err)
	}
	if bob.Resolved() {
		t.Fatal("expected failed add to leave identity unresolved")
	}
}

func TestValidation(t *testing.T) {
	ctx := context.Background()
	_, prims := setup(t)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"department without name", func() error {
			_, err := NewDepartment(ctx, prims, " ", nil)
			return err
		}},
		{"course with negative credits", func() error {
			_, err := NewCourse(ctx, prims, "Optics", nil, nil, -1)
			return err
		}},
		{"student without email", func() error {
			_, err := NewStudent(ctx, prims, "Carol", "", nil)
			return err
		}},
		{"instructor without email", func() error {
			_, err := NewInstructor(ctx, prims, "Dr. X", "", nil)
			return err
		}},
		{"staff without role", func() error {
			_, err := NewStaffMember(ctx, prims, "Helen", "", nil)
			return err
		}},
		{"update course to negative credits", func() error {
			c, err := NewCourse(ctx, prims, "Optics", nil, nil, 3)
			if err != nil {
				return err
			}
			_, err = c.Update(ctx, CourseUpdate{Credits: ptr(-2)})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestFind_EmbedsIntoKind(t *testing.T) {
	ctx := context.Background()
	_, prims := setup(t)

	s, err := NewStudent(ctx, prims, "Ada", "ada@example.edu", nil)
	if err != nil {
		t.Fatalf("NewStudent returned error: %v", err)
	}
	if _, err := s.Add(ctx); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}

	rec, err := Find(ctx, prims, rows.Students, "Ada")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	wantID, _ := s.ID()
	if id, ok := rec.ID(); !ok || id != wantID {
		t.Fatalf("Find resolved (%d, %v), want (%d, true)", id, ok, wantID)
	}

	found := &Student{Record: rec}
	changed, err := found.Update(ctx, StudentUpdate{Major: ptr("Mathematics")})
	if err != nil || !changed {
		t.Fatalf("Update = (%v, %v), want (true, nil)", changed, err)
	}

	missing, err := Find(ctx, prims, rows.Students, "Nobody")
	if err != nil {
		t.Fatalf("Find returned error: %v", err)
	}
	if missing.Resolved() {
		t.Fatal("expected unknown name to stay unresolved")
	}

	if _, err := Find(ctx, prims, rows.Students, ""); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Find with empty name error = %v, want ErrInvalid", err)
	}
}
