package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quadline/backend/internal/game"
	"github.com/quadline/backend/internal/session"
)

const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is handled at the HTTP layer
	},
}

// Gateway returns the handler for GET /api/game/:uuid/ws. It upgrades the
// connection, authenticates the token, resolves the connection's role
// against the game, and then pumps inbound commands until the client goes
// away. Outbound traffic is owned entirely by the subscription fabric.
func Gateway(registry *game.Registry, sessions *session.Manager, fabric *Fabric) gin.HandlerFunc {
	dispatcher := NewDispatcher(registry)

	return func(c *gin.Context) {
		gameID, err := uuid.Parse(c.Param("uuid"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game uuid"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		// Auth and game checks run after the upgrade so rejections reach
		// the client as proper close frames instead of failed handshakes.
		userID, err := sessions.Validate(c.Query("token"))
		if err != nil {
			closeWith(conn, "Invalid token")
			return
		}
		if registry.ByID(gameID) == nil {
			closeWith(conn, "No game found with that uuid")
			return
		}

		role := attach(registry, gameID, userID)
		log.Printf("[WS] %s connected to game %s as %s", userID, gameID, role)

		subID, err := fabric.Subscribe(conn, gameID)
		if err != nil {
			closeWith(conn, "No game found with that uuid")
			return
		}

		defer func() {
			fabric.Unsubscribe(subID)
			detach(registry, gameID, userID, role)
			log.Printf("[WS] %s disconnected from game %s", userID, gameID)
		}()

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			_, frame, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Printf("[WS] Read error on game %s: %v", gameID, err)
				}
				return
			}

			cc := ConnContext{
				UserID:  userID,
				GameID:  gameID,
				Role:    role,
				Refresh: func() { fabric.RefreshSub(subID) },
			}
			newRole := dispatcher.Dispatch(cc, frame)
			if newRole != role {
				promote(registry, gameID, userID)
				role = newRole
			}
		}
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, msg)
}

// attach resolves the connection's role and records its presence on the
// game: players flip their color's connected flag, spectators bump the
// spectator count. A connecting host also disarms the host-connect
// sentinel.
func attach(registry *game.Registry, gameID, userID uuid.UUID) Role {
	role := RoleSpectator
	err := registry.WithScope(gameID, func(g *game.Game) error {
		switch {
		case g.HostPlayerID != nil && *g.HostPlayerID == userID:
			role = RoleHost
		case g.IsPlayer(userID):
			role = RolePlayer
		}

		switch {
		case g.WhitePlayerID != nil && *g.WhitePlayerID == userID:
			g.WhiteIsConnected = true
		case g.BlackPlayerID != nil && *g.BlackPlayerID == userID:
			g.BlackIsConnected = true
		default:
			g.SpectatorCount++
		}
		return nil
	})
	if err != nil {
		log.Printf("[WS] Could not record presence on game %s: %v", gameID, err)
		return RoleSpectator
	}

	if role == RoleHost {
		registry.ConfirmHost(gameID)
	}
	return role
}

// promote moves a connection's presence from the spectator count to its
// newly held color slot after a successful become_player.
func promote(registry *game.Registry, gameID, userID uuid.UUID) {
	err := registry.WithScope(gameID, func(g *game.Game) error {
		if g.SpectatorCount > 0 {
			g.SpectatorCount--
		}
		switch {
		case g.WhitePlayerID != nil && *g.WhitePlayerID == userID:
			g.WhiteIsConnected = true
		case g.BlackPlayerID != nil && *g.BlackPlayerID == userID:
			g.BlackIsConnected = true
		}
		return nil
	})
	if err != nil {
		log.Printf("[WS] Could not record promotion on game %s: %v", gameID, err)
	}
}

// detach reverses attach when the connection goes away. Slot ownership is
// re-checked against the live game: a kicked player no longer holds a slot
// and falls through to the spectator count.
func detach(registry *game.Registry, gameID, userID uuid.UUID, role Role) {
	err := registry.WithScope(gameID, func(g *game.Game) error {
		switch {
		case g.WhitePlayerID != nil && *g.WhitePlayerID == userID:
			g.WhiteIsConnected = false
		case g.BlackPlayerID != nil && *g.BlackPlayerID == userID:
			g.BlackIsConnected = false
		case role == RoleSpectator:
			if g.SpectatorCount > 0 {
				g.SpectatorCount--
			}
		}
		// A player kicked before disconnecting holds no slot and never
		// counted as a spectator; nothing to clear.
		return nil
	})
	if err != nil {
		log.Printf("[WS] Could not clear presence on game %s: %v", gameID, err)
	}
}
