package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/quadline/backend/internal/game"
)

// ListGames handles GET /api/game and returns the ids of every game the
// registry knows about, finished ones included.
func ListGames(registry *game.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"game_ids": registry.AllIDs()})
	}
}

// CreateGame handles POST /api/game. The caller becomes the host and must
// open a streaming connection within the sentinel window or the lobby is
// closed.
func CreateGame(registry *game.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		hostID := c.MustGet("user_id").(uuid.UUID)

		g, err := registry.Create(hostID)
		if err != nil {
			log.Printf("[API] Failed to create game for %s: %v", hostID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"game_id": g.ID,
		})
	}
}

// GetGame handles both GET /api/game/:uuid and GET /api/game/code.
//
// gin refuses to register a static "code" segment next to the ":uuid"
// wildcard, so the code lookup is folded into this handler: when the path
// parameter is the literal "code" the game is resolved from the ?code
// query instead.
func GetGame(registry *game.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		param := c.Param("uuid")

		if param == "code" {
			code := strings.ToUpper(c.Query("code"))
			g := registry.ByCode(code)
			if g == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "No game found with that code"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"game_id": g.ID})
			return
		}

		gameID, err := uuid.Parse(param)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game uuid"})
			return
		}

		// The REST fetch serves the full state, move history included;
		// the cached network snapshot is for the streaming path only.
		var payload []byte
		err = registry.ReadScope(gameID, func(g *game.Game) error {
			var mErr error
			payload, mErr = g.FullJSON()
			return mErr
		})
		switch {
		case errors.Is(err, game.ErrUnknownGame):
			c.JSON(http.StatusNotFound, gin.H{"error": "No game found with that uuid"})
			return
		case err != nil:
			log.Printf("[API] Failed to serialize game %s: %v", gameID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to serialize game"})
			return
		}
		c.Data(http.StatusOK, "application/json", payload)
	}
}
