package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// GetSetting retrieves a setting value by key. A missing key yields "".
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.queryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", normalize("settings", fmt.Errorf("failed to get setting %s: %w", key, err))
	}
	return value, nil
}

// SetSetting stores a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.exec(`
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now())
	if err != nil {
		return normalize("settings", fmt.Errorf("failed to set setting %s: %w", key, err))
	}
	return nil
}

// SetSettingJSON stores a setting as JSON
func (db *DB) SetSettingJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal setting %s: %w", key, err)
	}
	return db.SetSetting(key, string(data))
}

// Setting is a stored key/value pair.
type Setting struct {
	Key   string
	Value string
}

// ListSettings returns all settings ordered by key.
func (db *DB) ListSettings() ([]Setting, error) {
	rows, err := db.conn.Query("SELECT key, value FROM settings")
	if err != nil {
		return nil, normalize("settings", fmt.Errorf("failed to get settings: %w", err))
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, normalize("settings", fmt.Errorf("failed to scan setting: %w", err))
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, normalize("settings", err)
	}

	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return settings, nil
}

// InitializeDefaults stores each default whose key is not set yet
func (db *DB) InitializeDefaults(defaults map[string]any) error {
	for key, value := range defaults {
		existing, err := db.GetSetting(key)
		if err != nil {
			return err
		}
		if existing != "" {
			continue
		}
		// Strings are stored raw so they parse as durations
		if s, ok := value.(string); ok {
			if err := db.SetSetting(key, s); err != nil {
				return err
			}
			continue
		}
		if err := db.SetSettingJSON(key, value); err != nil {
			return err
		}
	}
	return nil
}
