package repository

import (
	"database/sql"
	"fmt"
	"time"
)

// Fixed-width UTC layout so lexical ordering matches chronological ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type rowScanner interface {
	Scan(dest ...any) error
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func formatSQLiteTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := formatSQLiteTime(*t)
	return &v
}

func parseSQLiteTime(raw string) (time.Time, error) {
	t, err := time.Parse(sqliteTimeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", raw, err)
	}
	return t, nil
}

func parseSQLiteTimePtr(raw sql.NullString) (*time.Time, error) {
	if !raw.Valid {
		return nil, nil
	}
	t, err := parseSQLiteTime(raw.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}
