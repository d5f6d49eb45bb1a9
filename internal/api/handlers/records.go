package handlers

import (
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/quadline/backend/internal/models"
	"github.com/quadline/backend/internal/summary"
)

// rehydrate refreshes the summary cache after a record-store write. A
// hydration failure never fails the request that caused it; the stale
// document is served until the next write.
func rehydrate(c *gin.Context, hydrator *summary.Hydrator) {
	if err := hydrator.Hydrate(c.Request.Context()); err != nil {
		log.Printf("[SUMMARY] Rehydration failed: %v", err)
	}
}

// AddPlayer handles POST /api/add_player. A duplicate name keeps its
// historical 500 response for client compatibility.
func AddPlayer(db *sqlx.DB, hydrator *summary.Hydrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AddPlayerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
			return
		}

		var exists bool
		if err := db.Get(&exists,
			`SELECT EXISTS (SELECT 1 FROM players WHERE name = $1)`, req.Name); err != nil {
			log.Printf("[RECORDS] Failed to check player %q: %v", req.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add player"})
			return
		}
		if exists {
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Player already exists"})
			return
		}

		if _, err := db.Exec(
			`INSERT INTO players (uuid, name) VALUES ($1, $2)`, uuid.New(), req.Name); err != nil {
			log.Printf("[RECORDS] Failed to insert player %q: %v", req.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add player"})
			return
		}

		rehydrate(c, hydrator)
		c.JSON(http.StatusOK, gin.H{"status": 200})
	}
}

// ListPlayers handles GET /api/players.
func ListPlayers(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var players []models.Player
		if err := db.Select(&players,
			`SELECT uuid, name, created_at FROM players ORDER BY name ASC`); err != nil {
			log.Printf("[RECORDS] Failed to list players: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list players"})
			return
		}
		if players == nil {
			players = []models.Player{}
		}
		c.JSON(http.StatusOK, gin.H{"players": players})
	}
}

// RecordMatch handles POST /api/match. Both names must refer to registered
// players.
func RecordMatch(db *sqlx.DB, hydrator *summary.Hydrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RecordMatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Winner and loser are required"})
			return
		}

		winnerID, err := playerIDByName(db, req.Winner)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No player named " + req.Winner})
			return
		}
		loserID, err := playerIDByName(db, req.Loser)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No player named " + req.Loser})
			return
		}

		if _, err := db.Exec(
			`INSERT INTO matches (uuid, winner_id, loser_id) VALUES ($1, $2, $3)`,
			uuid.New(), winnerID, loserID); err != nil {
			log.Printf("[RECORDS] Failed to record match %s > %s: %v", req.Winner, req.Loser, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record match"})
			return
		}

		rehydrate(c, hydrator)
		c.JSON(http.StatusOK, gin.H{"status": 200})
	}
}

// UndoMatch handles POST /api/undo by deleting the most recently recorded
// match.
func UndoMatch(db *sqlx.DB, hydrator *summary.Hydrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := db.Exec(
			`DELETE FROM matches WHERE uuid =
			 (SELECT uuid FROM matches ORDER BY created_at DESC LIMIT 1)`)
		if err != nil {
			log.Printf("[RECORDS] Failed to undo match: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to undo match"})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "No matches to undo"})
			return
		}

		rehydrate(c, hydrator)
		c.JSON(http.StatusOK, gin.H{"status": 200})
	}
}

// GetSummary handles GET /api/summary. The document is served exactly as
// cached; an empty cache yields an empty JSON object.
func GetSummary(cache summary.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := cache.Get(c.Request.Context())
		if errors.Is(err, summary.ErrCacheMiss) {
			payload = "{}"
		} else if err != nil {
			log.Printf("[SUMMARY] Cache read failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read summary"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"response_json_str": payload})
	}
}

func playerIDByName(db *sqlx.DB, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := db.Get(&id, `SELECT uuid FROM players WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, err
	}
	return id, err
}
