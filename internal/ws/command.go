package ws

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CommandType routes an inbound frame to its handler. The set is closed;
// frames with any other type are dropped.
type CommandType string

const (
	// spectator commands
	CmdGetGameState CommandType = "get_game_state"
	CmdBecomePlayer CommandType = "become_player"
	// player commands
	CmdPlayWhitePiece CommandType = "play_white_piece"
	CmdPlayBlackPiece CommandType = "play_black_piece"
	CmdLeave          CommandType = "leave"   // only valid before game starts
	CmdForfeit        CommandType = "forfeit" // only valid after game starts
	// host controls
	CmdStartGame    CommandType = "start_game"
	CmdKickPlayer   CommandType = "kick_player"
	CmdCloseGame    CommandType = "close_game"
	CmdSwitchPlaces CommandType = "switch_places"
)

// Body carries the fields common to every command.
type Body struct {
	Version   int       `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	EventID   uuid.UUID `json:"event_id"`
	GameID    uuid.UUID `json:"game_id"`
	UserID    uuid.UUID `json:"user_id"`
}

// PlayPieceBody adds the move geometry and the turn fencing token.
type PlayPieceBody struct {
	Body
	CurrentTurn int `json:"current_turn"`
	PosX        int `json:"pos_x"`
	PosY        int `json:"pos_y"`
	PosZ        int `json:"pos_z"`
}

// KickPlayerBody names the player the host wants removed.
type KickPlayerBody struct {
	Body
	KickedPlayerID uuid.UUID `json:"kicked_player_id"`
}

// Command is the envelope of an inbound frame. The body is kept raw until
// the type is known and then decoded into the matching body type.
type Command struct {
	Type CommandType     `json:"type"`
	Body json.RawMessage `json:"body"`
}

// ParseCommand decodes an inbound frame into its envelope.
func ParseCommand(data []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Command{}, fmt.Errorf("decode command envelope: %w", err)
	}
	if cmd.Type == "" {
		return Command{}, fmt.Errorf("command frame missing type")
	}
	return cmd, nil
}

// DecodeBody unmarshals the raw body into dst, which must be one of the
// body types above.
func (c Command) DecodeBody(dst interface{}) error {
	if len(c.Body) == 0 {
		return fmt.Errorf("command %s missing body", c.Type)
	}
	if err := json.Unmarshal(c.Body, dst); err != nil {
		return fmt.Errorf("decode %s body: %w", c.Type, err)
	}
	return nil
}
