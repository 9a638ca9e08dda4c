package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// nullableIntToValue converts a *int to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the int value.
func nullableIntToValue(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func parseNullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// intToBool converts a SQLite integer (0 or 1) to a Go bool.
func intToBool(i int) bool {
	return i != 0
}

// encodeUnits stores a unit list as a JSON array.
func encodeUnits(units []string) (string, error) {
	if units == nil {
		units = []string{}
	}
	data, err := json.Marshal(units)
	if err != nil {
		return "", fmt.Errorf("encoding units: %w", err)
	}
	return string(data), nil
}

func decodeUnits(s string) ([]string, error) {
	var units []string
	if err := json.Unmarshal([]byte(s), &units); err != nil {
		return nil, fmt.Errorf("decoding units %q: %w", s, err)
	}
	return units, nil
}

func parseTimestamp(column, s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %s: %w", column, err)
	}
	return t, nil
}
