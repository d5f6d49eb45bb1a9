package game

import (
	"time"

	"github.com/google/uuid"
)

// Phase is the lifecycle state of a game.
type Phase int

const (
	PhaseInitialized Phase = 0
	PhaseRunning     Phase = 1
	PhasePaused      Phase = 2
	PhaseFinished    Phase = 3
	PhaseError       Phase = 4
)

// EndReason records why a game reached a terminal phase.
type EndReason string

const (
	EndBoardPosition EndReason = "BOARD_POSITION"
	EndForfeit       EndReason = "FORFEIT"
	EndLobbyClose    EndReason = "LOBBY_CLOSE"
	EndInternalError EndReason = "ERROR"
)

// Move is a single history entry: who played where.
type Move struct {
	Player Mark `json:"player"`
	X      int  `json:"x"`
	Y      int  `json:"y"`
	Z      int  `json:"z"`
}

// Game is a single live match instance. The registry is its sole owner and
// all mutation happens inside a registry scope. Storage in a single process
// is acceptable for now; a multi-process variant would move this behind a
// shared store.
type Game struct {
	ID   uuid.UUID `json:"uuid"`
	Code string    `json:"code"`

	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	FinishedAt *time.Time `json:"finished_at"`

	Board Board `json:"board"`

	// The host gets extra permissions in the lobby, for example to swap
	// player colors or kick a player. The host is the player that created
	// the game and occupies the white slot by default.
	HostPlayerID  *uuid.UUID `json:"host_player_id"`
	WhitePlayerID *uuid.UUID `json:"white_player_id"`
	BlackPlayerID *uuid.UUID `json:"black_player_id"`

	WhiteIsConnected bool `json:"white_is_connected"`
	BlackIsConnected bool `json:"black_is_connected"`
	SpectatorCount   int  `json:"spectator_count"`

	Phase     Phase     `json:"phase"`
	EndReason EndReason `json:"end_reason,omitempty"`
	Winner    Mark      `json:"winner"`

	// Clients provide the turn number with each play request so the same
	// move is never applied twice under retries.
	TurnNumber int `json:"turn_number"`

	// Move history is not broadcast over the network unless specifically
	// requested by a client.
	MoveHistory []Move `json:"move_history"`
}

// NewGame creates a lobby hosted by hostID. The host takes the white slot
// by default; colors may be swapped while the game is still INITIALIZED.
func NewGame(hostID uuid.UUID, code string) *Game {
	now := time.Now().UTC()
	host := hostID
	white := hostID
	return &Game{
		ID:            uuid.New(),
		Code:          code,
		CreatedAt:     now,
		ModifiedAt:    now,
		HostPlayerID:  &host,
		WhitePlayerID: &white,
		Phase:         PhaseInitialized,
		MoveHistory:   []Move{},
	}
}

// WhoseTurn returns the color to move: white on even turns, black on odd,
// and Empty outside the RUNNING phase.
func (g *Game) WhoseTurn() Mark {
	if g.Phase != PhaseRunning {
		return Empty
	}
	if g.TurnNumber%2 == 0 {
		return White
	}
	return Black
}

// Terminal reports whether the game has reached FINISHED or ERROR.
func (g *Game) Terminal() bool {
	return g.Phase == PhaseFinished || g.Phase == PhaseError
}

// IsPlayer reports whether uid occupies either color slot.
func (g *Game) IsPlayer(uid uuid.UUID) bool {
	return g.colorOf(uid) != Empty
}

func (g *Game) colorOf(uid uuid.UUID) Mark {
	if g.WhitePlayerID != nil && *g.WhitePlayerID == uid {
		return White
	}
	if g.BlackPlayerID != nil && *g.BlackPlayerID == uid {
		return Black
	}
	return Empty
}

// Start moves the lobby into the RUNNING phase. Both player slots must be
// filled.
func (g *Game) Start() error {
	if g.Phase != PhaseInitialized {
		return ErrWrongPhase
	}
	if g.WhitePlayerID == nil || g.BlackPlayerID == nil {
		return ErrNotReady
	}
	g.Phase = PhaseRunning
	return nil
}

// SwitchColors swaps the white and black slots. Lobby only.
func (g *Game) SwitchColors() error {
	if g.Phase != PhaseInitialized {
		return ErrWrongPhase
	}
	g.WhitePlayerID, g.BlackPlayerID = g.BlackPlayerID, g.WhitePlayerID
	return nil
}

// RemovePlayer clears whichever color slot uid occupies. Lobby only. A
// lobby whose last player leaves has nobody left to start it, so it is
// closed rather than left dangling.
func (g *Game) RemovePlayer(uid uuid.UUID) error {
	if g.Phase != PhaseInitialized {
		return ErrWrongPhase
	}
	cleared := false
	if g.WhitePlayerID != nil && *g.WhitePlayerID == uid {
		g.WhitePlayerID = nil
		cleared = true
	}
	if g.BlackPlayerID != nil && *g.BlackPlayerID == uid {
		g.BlackPlayerID = nil
		cleared = true
	}
	if cleared && g.WhitePlayerID == nil && g.BlackPlayerID == nil {
		return g.Close()
	}
	return nil
}

// Promote fills the single free color slot with uid. There are always
// either 0 or 1 open slots in a well-formed lobby; with 0 open slots the
// request is rejected.
func (g *Game) Promote(uid uuid.UUID) error {
	if g.Phase != PhaseInitialized {
		return ErrWrongPhase
	}
	if g.IsPlayer(uid) {
		return ErrNoSlot
	}
	switch {
	case g.WhitePlayerID == nil:
		u := uid
		g.WhitePlayerID = &u
	case g.BlackPlayerID == nil:
		u := uid
		g.BlackPlayerID = &u
	default:
		return ErrSlotsFull
	}
	return nil
}

// Leave clears uid's slot if it holds one; a spectator leaving is a no-op.
// Lobby only.
func (g *Game) Leave(uid uuid.UUID) error {
	if g.Phase != PhaseInitialized {
		return ErrWrongPhase
	}
	return g.RemovePlayer(uid)
}

// PlayPiece applies color's move at (x, y, z). expectedTurn is the
// client-provided fencing token: it must match the current turn number or
// the move is rejected, which keeps retried commands idempotent. A move
// that completes four in a line ends the game immediately.
func (g *Game) PlayPiece(color Mark, x, y, z, expectedTurn int) error {
	if g.Phase != PhaseRunning {
		return ErrWrongPhase
	}
	if expectedTurn != g.TurnNumber {
		return ErrOutOfTurn
	}
	if color != g.WhoseTurn() {
		return ErrNotYourTurn
	}
	if !InBounds(x, y, z) {
		return ErrOutOfBounds
	}
	if g.Board[x][y][z] != Empty {
		return ErrCellOccupied
	}

	g.Board[x][y][z] = color
	g.MoveHistory = append(g.MoveHistory, Move{Player: color, X: x, Y: y, Z: z})
	g.TurnNumber++

	if HasLine(&g.Board, color) {
		g.endOfGame(color, EndBoardPosition)
	}
	return nil
}

// Forfeit ends a running game in favor of uid's opponent.
func (g *Game) Forfeit(uid uuid.UUID) error {
	if g.Phase != PhaseRunning {
		return ErrWrongPhase
	}
	color := g.colorOf(uid)
	if color == Empty {
		return ErrNotAPlayer
	}
	winner := White
	if color == White {
		winner = Black
	}
	g.endOfGame(winner, EndForfeit)
	return nil
}

// Close terminates the game without a winner. Closing an already-terminal
// game is a no-op.
func (g *Game) Close() error {
	if g.Terminal() {
		return nil
	}
	g.endOfGame(Empty, EndLobbyClose)
	return nil
}

// Fail rotates the game into the ERROR phase after an unrecoverable
// internal fault.
func (g *Game) Fail() {
	if g.Terminal() {
		return
	}
	g.endOfGame(Empty, EndInternalError)
}

func (g *Game) endOfGame(winner Mark, reason EndReason) {
	if reason == EndInternalError {
		g.Phase = PhaseError
	} else {
		g.Phase = PhaseFinished
	}
	g.Winner = winner
	g.EndReason = reason
	now := time.Now().UTC()
	g.FinishedAt = &now
}

// clone returns a deep copy used for snapshot/rollback. The board is a
// value array, so the struct copy takes care of it; only the history slice
// and the id pointers need explicit copies.
func (g *Game) clone() *Game {
	cp := *g
	cp.MoveHistory = append([]Move(nil), g.MoveHistory...)
	if g.HostPlayerID != nil {
		v := *g.HostPlayerID
		cp.HostPlayerID = &v
	}
	if g.WhitePlayerID != nil {
		v := *g.WhitePlayerID
		cp.WhitePlayerID = &v
	}
	if g.BlackPlayerID != nil {
		v := *g.BlackPlayerID
		cp.BlackPlayerID = &v
	}
	return &cp
}
