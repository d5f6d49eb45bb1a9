package game

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// networkSnapshot is the wire view of a game. It carries everything the
// Game does except the move history, plus the derived whose_turn field.
// Field order is fixed so re-serializing a decoded snapshot is byte-stable.
type networkSnapshot struct {
	ID               uuid.UUID  `json:"uuid"`
	Code             string     `json:"code"`
	CreatedAt        time.Time  `json:"created_at"`
	ModifiedAt       time.Time  `json:"modified_at"`
	FinishedAt       *time.Time `json:"finished_at"`
	Board            Board      `json:"board"`
	HostPlayerID     *uuid.UUID `json:"host_player_id"`
	WhitePlayerID    *uuid.UUID `json:"white_player_id"`
	BlackPlayerID    *uuid.UUID `json:"black_player_id"`
	WhiteIsConnected bool       `json:"white_is_connected"`
	BlackIsConnected bool       `json:"black_is_connected"`
	SpectatorCount   int        `json:"spectator_count"`
	Phase            Phase      `json:"phase"`
	EndReason        EndReason  `json:"end_reason,omitempty"`
	Winner           Mark       `json:"winner"`
	TurnNumber       int        `json:"turn_number"`
	WhoseTurn        Mark       `json:"whose_turn"`
}

// FullJSON serializes the complete game state, move history included. The
// REST fetch serves this; streaming clients get NetworkJSON.
func (g *Game) FullJSON() ([]byte, error) {
	return json.Marshal(g)
}

// NetworkJSON serializes the snapshot clients receive over the streaming
// connection. The registry caches the result so multiple subscribers do
// not serialize the same state.
func (g *Game) NetworkJSON() ([]byte, error) {
	return json.Marshal(networkSnapshot{
		ID:               g.ID,
		Code:             g.Code,
		CreatedAt:        g.CreatedAt,
		ModifiedAt:       g.ModifiedAt,
		FinishedAt:       g.FinishedAt,
		Board:            g.Board,
		HostPlayerID:     g.HostPlayerID,
		WhitePlayerID:    g.WhitePlayerID,
		BlackPlayerID:    g.BlackPlayerID,
		WhiteIsConnected: g.WhiteIsConnected,
		BlackIsConnected: g.BlackIsConnected,
		SpectatorCount:   g.SpectatorCount,
		Phase:            g.Phase,
		EndReason:        g.EndReason,
		Winner:           g.Winner,
		TurnNumber:       g.TurnNumber,
		WhoseTurn:        g.WhoseTurn(),
	})
}
