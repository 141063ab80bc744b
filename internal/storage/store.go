package storage

import (
	"database/sql"
)

// Store exposes the persistence operations over an open DB. All writes go
// through upserts or single statements so concurrent sessions interleave
// safely at the row level.
type Store struct {
	db *DB
}

// NewStore creates a store over an open database.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database handle.
func (s *Store) DB() *DB {
	return s.db
}

func nullString(v string) interface{} {
	if v == "" {
		return nil
	}
	return v
}

func nullInt64(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullBool(v *bool) interface{} {
	if v == nil {
		return nil
	}
	if *v {
		return 1
	}
	return 0
}

func stringOrEmpty(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}
