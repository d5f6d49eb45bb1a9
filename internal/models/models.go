package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a registered player in the record store
type Player struct {
	UUID      uuid.UUID `db:"uuid" json:"uuid"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Match represents a decided game between two registered players
type Match struct {
	UUID      uuid.UUID `db:"uuid" json:"uuid"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	WinnerID  uuid.UUID `db:"winner_id" json:"winner_id"`
	LoserID   uuid.UUID `db:"loser_id" json:"loser_id"`
}

// MatchWithNames is a match row joined with both player names, the shape
// the tabulator consumes
type MatchWithNames struct {
	UUID       uuid.UUID `db:"uuid" json:"uuid"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	WinnerName string    `db:"winner_name" json:"winner_name"`
	LoserName  string    `db:"loser_name" json:"loser_name"`
}

// AddPlayerRequest is the payload for POST /api/add_player
type AddPlayerRequest struct {
	Name string `json:"name" binding:"required"`
}

// RecordMatchRequest is the payload for POST /api/match
type RecordMatchRequest struct {
	Winner string `json:"winner" binding:"required"`
	Loser  string `json:"loser" binding:"required"`
}

// LoginRequest is the payload for POST /api/login
type LoginRequest struct {
	Name   string     `json:"name" binding:"required"`
	UserID *uuid.UUID `json:"user_id"`
}
