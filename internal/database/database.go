package database

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the postgres record store behind the players and matches
// tables and verifies it is reachable.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, err
	}

	// The record store sees one write per finished match; a small pool is
	// plenty.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, nil
}
