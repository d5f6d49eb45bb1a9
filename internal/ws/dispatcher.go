package ws

import (
	"log"

	"github.com/google/uuid"

	"github.com/quadline/backend/internal/game"
)

// ConnContext is the identity a connection established at upgrade time.
// Commands are authorized against it, never against fields the client puts
// in the frame.
type ConnContext struct {
	UserID uuid.UUID
	GameID uuid.UUID
	Role   Role

	// Refresh re-flags this connection's subscription so the current
	// snapshot is redelivered.
	Refresh func()
}

// commandFloor is the minimum role a command requires. become_player is
// absent: it is the one command gated on an exact role, handled separately.
var commandFloor = map[CommandType]Role{
	CmdGetGameState:   RoleSpectator,
	CmdPlayWhitePiece: RolePlayer,
	CmdPlayBlackPiece: RolePlayer,
	CmdLeave:          RolePlayer,
	CmdForfeit:        RolePlayer,
	CmdStartGame:      RoleHost,
	CmdKickPlayer:     RoleHost,
	CmdCloseGame:      RoleHost,
	CmdSwitchPlaces:   RoleHost,
}

// Dispatcher routes inbound command frames to game mutations. Commands are
// fire-and-forget: a rejected or malformed command is logged and dropped,
// never answered. Clients observe outcomes through the snapshot stream.
type Dispatcher struct {
	registry *game.Registry
}

func NewDispatcher(registry *game.Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch handles one inbound frame and returns the connection's role,
// updated if the command changed it (become_player).
func (d *Dispatcher) Dispatch(cc ConnContext, frame []byte) Role {
	cmd, err := ParseCommand(frame)
	if err != nil {
		log.Printf("[DISPATCH] Dropping malformed frame from %s: %v", cc.UserID, err)
		return cc.Role
	}

	if cmd.Type == CmdBecomePlayer {
		if cc.Role != RoleSpectator {
			log.Printf("[DISPATCH] %s requires role SPECTATOR, connection %s has %s", cmd.Type, cc.UserID, cc.Role)
			return cc.Role
		}
	} else {
		floor, known := commandFloor[cmd.Type]
		if !known {
			log.Printf("[DISPATCH] Dropping unknown command %q from %s", cmd.Type, cc.UserID)
			return cc.Role
		}
		if cc.Role < floor {
			log.Printf("[DISPATCH] %s requires role %s, connection %s has %s", cmd.Type, floor, cc.UserID, cc.Role)
			return cc.Role
		}
	}

	var body Body
	if err := cmd.DecodeBody(&body); err != nil {
		log.Printf("[DISPATCH] Dropping %s from %s: %v", cmd.Type, cc.UserID, err)
		return cc.Role
	}
	// Identity lives in the connection; a frame claiming another user or
	// game is dropped regardless of role.
	if body.GameID != cc.GameID || body.UserID != cc.UserID {
		log.Printf("[DISPATCH] Dropping %s from %s: body identity does not match connection", cmd.Type, cc.UserID)
		return cc.Role
	}

	switch cmd.Type {
	case CmdGetGameState:
		cc.Refresh()
		return cc.Role

	case CmdBecomePlayer:
		err = d.registry.WithScope(cc.GameID, func(g *game.Game) error {
			return g.Promote(cc.UserID)
		})
		if err == nil {
			return RolePlayer
		}

	case CmdPlayWhitePiece, CmdPlayBlackPiece:
		color := game.White
		if cmd.Type == CmdPlayBlackPiece {
			color = game.Black
		}
		var play PlayPieceBody
		if err = cmd.DecodeBody(&play); err != nil {
			break
		}
		err = d.registry.WithScope(cc.GameID, func(g *game.Game) error {
			if !holdsSlot(g, color, cc.UserID) {
				return game.ErrNotAPlayer
			}
			return g.PlayPiece(color, play.PosX, play.PosY, play.PosZ, play.CurrentTurn)
		})

	case CmdLeave:
		err = d.registry.WithScope(cc.GameID, func(g *game.Game) error {
			return g.Leave(cc.UserID)
		})

	case CmdForfeit:
		err = d.registry.WithScope(cc.GameID, func(g *game.Game) error {
			return g.Forfeit(cc.UserID)
		})

	case CmdStartGame:
		err = d.registry.WithScope(cc.GameID, func(g *game.Game) error {
			return g.Start()
		})

	case CmdKickPlayer:
		var kick KickPlayerBody
		if err = cmd.DecodeBody(&kick); err != nil {
			break
		}
		err = d.registry.WithScope(cc.GameID, func(g *game.Game) error {
			return g.RemovePlayer(kick.KickedPlayerID)
		})

	case CmdCloseGame:
		err = d.registry.WithScope(cc.GameID, func(g *game.Game) error {
			return g.Close()
		})

	case CmdSwitchPlaces:
		err = d.registry.WithScope(cc.GameID, func(g *game.Game) error {
			return g.SwitchColors()
		})
	}

	if err != nil {
		log.Printf("[DISPATCH] %s from %s rejected: %v", cmd.Type, cc.UserID, err)
	}
	return cc.Role
}

// holdsSlot reports whether uid occupies the given color slot.
func holdsSlot(g *game.Game, color game.Mark, uid uuid.UUID) bool {
	owner := g.WhitePlayerID
	if color == game.Black {
		owner = g.BlackPlayerID
	}
	return owner != nil && *owner == uid
}
