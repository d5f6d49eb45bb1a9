package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/quadline/backend/internal/api/handlers"
	"github.com/quadline/backend/internal/config"
	"github.com/quadline/backend/internal/game"
	"github.com/quadline/backend/internal/session"
	"github.com/quadline/backend/internal/summary"
	"github.com/quadline/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	router *gin.Engine,
	db *sqlx.DB,
	cfg *config.Config,
	registry *game.Registry,
	sessions *session.Manager,
	fabric *ws.Fabric,
	cache summary.Cache,
	hydrator *summary.Hydrator,
) {
	router.GET("/health", handlers.HealthCheck)

	// Back-office auth (OAuth2 password flow)
	router.POST("/token", handlers.AdminToken(cfg))
	router.GET("/is_authorized", handlers.IsAuthorized(cfg))

	apiGroup := router.Group("/api")
	{
		apiGroup.POST("/login", handlers.Login(sessions))

		// Live-state endpoints require a session token
		authed := apiGroup.Group("")
		authed.Use(handlers.SessionAuth(sessions))
		{
			authed.GET("/session", handlers.ValidSession())
			authed.GET("/game", handlers.ListGames(registry))
			authed.POST("/game", handlers.CreateGame(registry))
			// Also serves /api/game/code?code=XXXX; see handlers.GetGame
			authed.GET("/game/:uuid", handlers.GetGame(registry))
		}

		// The gateway authenticates inside the upgrade so rejections can
		// come back as close frames
		apiGroup.GET("/game/:uuid/ws", ws.Gateway(registry, sessions, fabric))

		// Record store (players, matches, leaderboard)
		apiGroup.POST("/add_player", handlers.AddPlayer(db, hydrator))
		apiGroup.GET("/players", handlers.ListPlayers(db))
		apiGroup.POST("/match", handlers.RecordMatch(db, hydrator))
		apiGroup.POST("/undo", handlers.UndoMatch(db, hydrator))
		apiGroup.GET("/summary", handlers.GetSummary(cache))
	}
}
