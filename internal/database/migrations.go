package database

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Migrate runs all database migrations
func (db *DB) Migrate() error {
	log.Info().Msg("Running database migrations")

	_, err := db.exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return normalize("migrate", fmt.Errorf("failed to create migrations table: %w", err))
	}

	currentVersion, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	log.Debug().Int("current_version", currentVersion).Msg("Current schema version")

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		log.Info().Int("version", migration.Version).Str("name", migration.Name).Msg("Applying migration")

		if err := db.Transaction(func(tx *sql.Tx) error {
			// Each statement is executed separately so errors point at the failing one
			statements := splitSQLStatements(migration.SQL)
			for i, stmt := range statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d statement %d failed: %w", migration.Version, i+1, err)
				}
			}

			if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", migration.Version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
			}

			return nil
		}); err != nil {
			return err
		}
	}

	log.Info().Msg("Database migrations complete")
	return nil
}

// SchemaVersion returns the highest applied migration version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	if err := db.queryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, normalize("migrate", fmt.Errorf("failed to get current migration version: %w", err))
	}
	return version, nil
}

type migration struct {
	Version int
	Name    string
	SQL     string
}

// splitSQLStatements splits a SQL string into individual statements.
// It handles comments and only returns non-empty statements.
func splitSQLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	lines := strings.SplitSeq(sql, "\n")
	for line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" && stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			CREATE TABLE departments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL UNIQUE,
				description TEXT
			);

			CREATE TABLE courses (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				department_id INTEGER REFERENCES departments(id) ON DELETE SET NULL,
				description TEXT,
				credits INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0)
			);

			CREATE TABLE students (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				major TEXT
			);

			CREATE TABLE instructors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE,
				department_id INTEGER REFERENCES departments(id) ON DELETE SET NULL
			);

			CREATE TABLE staff (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT NOT NULL,
				role TEXT NOT NULL,
				department_id INTEGER REFERENCES departments(id) ON DELETE SET NULL
			);

			-- Enrollment junction
			CREATE TABLE course_students (
				course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
				student_id INTEGER NOT NULL REFERENCES students(id) ON DELETE CASCADE,
				PRIMARY KEY (course_id, student_id)
			);

			-- Assignment junction
			CREATE TABLE course_instructors (
				course_id INTEGER NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
				instructor_id INTEGER NOT NULL REFERENCES instructors(id) ON DELETE CASCADE,
				PRIMARY KEY (course_id, instructor_id)
			);

			CREATE INDEX idx_courses_name ON courses(name);
			CREATE INDEX idx_students_name ON students(name);
			CREATE INDEX idx_instructors_name ON instructors(name);
			CREATE INDEX idx_staff_name ON staff(name);
			CREATE INDEX idx_course_students_student ON course_students(student_id);
			CREATE INDEX idx_course_instructors_instructor ON course_instructors(instructor_id);
		`,
	},
	{
		Version: 2,
		Name:    "settings",
		SQL: `
			CREATE TABLE settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
}
