package database

import "fmt"

// Optimize runs SQLite's PRAGMA optimize to refresh planner stats.
func (db *DB) Optimize() error {
	if db == nil || db.conn == nil {
		return fmt.Errorf("database not initialized")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.exec("PRAGMA optimize"); err != nil {
		return normalize("optimize", fmt.Errorf("failed to optimize database: %w", err))
	}

	return nil
}

// Vacuum rebuilds the database file to reclaim unused space.
func (db *DB) Vacuum() error {
	if db == nil || db.conn == nil {
		return fmt.Errorf("database not initialized")
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, err := db.exec("VACUUM"); err != nil {
		return normalize("vacuum", fmt.Errorf("failed to vacuum database: %w", err))
	}

	return nil
}

// IntegrityCheck runs PRAGMA integrity_check and returns the reported problems.
// An empty slice means the file is consistent.
func (db *DB) IntegrityCheck() ([]string, error) {
	if db == nil || db.conn == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.conn.Query("PRAGMA integrity_check")
	if err != nil {
		return nil, normalize("integrity_check", err)
	}
	defer rows.Close()

	var problems []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return nil, normalize("integrity_check", err)
		}
		if line != "ok" {
			problems = append(problems, line)
		}
	}
	return problems, normalize("integrity_check", rows.Err())
}
