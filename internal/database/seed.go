package database

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// seedTable inserts rows through one prepared statement. Foreign keys are
// looked up by name inside the statement, never assumed from surrogate ids.
type seedTable struct {
	name string
	sql  string
	rows [][]any
}

var seedTables = []seedTable{
	{
		name: "departments",
		sql:  `INSERT INTO departments (name, description) VALUES (?, ?)`,
		rows: [][]any{
			{"Computer Science", "Department of Computer Science and Engineering"},
			{"Mathematics", "Department of Mathematics and Statistics"},
			{"Physics", "Department of Physics"},
			{"English", "Department of English Language and Literature"},
		},
	},
	{
		name: "courses",
		sql: `INSERT INTO courses (name, department_id, description, credits)
			VALUES (?, (SELECT id FROM departments WHERE name = ?), ?, ?)`,
		rows: [][]any{
			{"Introduction to Programming", "Computer Science", "Fundamentals of programming in a modern language", 4},
			{"Data Structures", "Computer Science", "Lists, trees, graphs and their algorithms", 4},
			{"Calculus I", "Mathematics", "Limits, derivatives and integrals", 4},
			{"Linear Algebra", "Mathematics", "Vector spaces and linear maps", 3},
			{"Classical Mechanics", "Physics", "Newtonian mechanics", 4},
			{"Composition", "English", "Academic writing and rhetoric", 3},
		},
	},
	{
		name: "students",
		sql:  `INSERT INTO students (name, email, major) VALUES (?, ?, ?)`,
		rows: [][]any{
			{"Alice Johnson", "alice.johnson@example.edu", "Computer Science"},
			{"Bob Smith", "bob.smith@example.edu", "Mathematics"},
			{"Carol White", "carol.white@example.edu", "Physics"},
			{"David Brown", "david.brown@example.edu", nil},
		},
	},
	{
		name: "instructors",
		sql: `INSERT INTO instructors (name, email, department_id)
			VALUES (?, ?, (SELECT id FROM departments WHERE name = ?))`,
		rows: [][]any{
			{"Dr. Grace Hopper", "grace.hopper@example.edu", "Computer Science"},
			{"Dr. Emmy Noether", "emmy.noether@example.edu", "Mathematics"},
			{"Dr. Richard Feynman", "richard.feynman@example.edu", "Physics"},
			{"Dr. Toni Morrison", "toni.morrison@example.edu", "English"},
		},
	},
	{
		name: "staff",
		sql: `INSERT INTO staff (name, role, department_id)
			VALUES (?, ?, (SELECT id FROM departments WHERE name = ?))`,
		rows: [][]any{
			{"Eve Adams", "Registrar", nil},
			{"Frank Miller", "Department Secretary", "Computer Science"},
			{"Helen Clark", "Lab Technician", "Physics"},
		},
	},
	{
		name: "course_students",
		sql: `INSERT INTO course_students (course_id, student_id) VALUES (
			(SELECT id FROM courses WHERE name = ?),
			(SELECT id FROM students WHERE name = ?))`,
		rows: [][]any{
			{"Introduction to Programming", "Alice Johnson"},
			{"Data Structures", "Alice Johnson"},
			{"Calculus I", "Bob Smith"},
			{"Linear Algebra", "Bob Smith"},
			{"Classical Mechanics", "Carol White"},
			{"Calculus I", "Carol White"},
			{"Composition", "David Brown"},
		},
	},
	{
		name: "course_instructors",
		sql: `INSERT INTO course_instructors (course_id, instructor_id) VALUES (
			(SELECT id FROM courses WHERE name = ?),
			(SELECT id FROM instructors WHERE name = ?))`,
		rows: [][]any{
			{"Introduction to Programming", "Dr. Grace Hopper"},
			{"Data Structures", "Dr. Grace Hopper"},
			{"Calculus I", "Dr. Emmy Noether"},
			{"Linear Algebra", "Dr. Emmy Noether"},
			{"Classical Mechanics", "Dr. Richard Feynman"},
			{"Composition", "Dr. Toni Morrison"},
		},
	},
}

const seededRowsSQL = `SELECT
	(SELECT COUNT(*) FROM departments) + (SELECT COUNT(*) FROM courses) +
	(SELECT COUNT(*) FROM students) + (SELECT COUNT(*) FROM instructors) +
	(SELECT COUNT(*) FROM staff) + (SELECT COUNT(*) FROM course_students) +
	(SELECT COUNT(*) FROM course_instructors)`

// Seed loads demonstration rows into an empty schema. It does nothing when
// any entity or junction table already has rows and reports whether anything
// was inserted.
func (db *DB) Seed() (bool, error) {
	var count int
	if err := db.queryRow(seededRowsSQL).Scan(&count); err != nil {
		return false, normalize("seed", fmt.Errorf("failed to count existing rows: %w", err))
	}
	if count > 0 {
		log.Debug().Int("rows", count).Msg("Database already populated, skipping seed")
		return false, nil
	}

	err := db.Transaction(func(tx *sql.Tx) error {
		for _, table := range seedTables {
			if err := seedRows(tx, table); err != nil {
				return err
			}
			log.Debug().Str("table", table.name).Int("rows", len(table.rows)).Msg("Seeded table")
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	log.Info().Msg("Demonstration data loaded")
	return true, nil
}

func seedRows(tx *sql.Tx, table seedTable) error {
	stmt, err := tx.Prepare(table.sql)
	if err != nil {
		return fmt.Errorf("failed to prepare %s seed: %w", table.name, err)
	}
	defer stmt.Close()

	for _, row := range table.rows {
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("failed to seed %s: %w", table.name, err)
		}
	}
	return nil
}
