package game

import "errors"

// Error kinds surfaced by game operations. The dispatcher and the HTTP
// handlers map these to drop-and-log or to status codes.
var (
	ErrUnknownGame  = errors.New("no game with that id")
	ErrWrongPhase   = errors.New("operation not valid in current phase")
	ErrNotReady     = errors.New("both player slots must be filled")
	ErrOutOfTurn    = errors.New("piece does not match current turn")
	ErrNotYourTurn  = errors.New("not this color's turn")
	ErrCellOccupied = errors.New("cell is already occupied")
	ErrOutOfBounds  = errors.New("coordinates outside the board")
	ErrNotAPlayer   = errors.New("user is not a player in this game")
	ErrNoSlot       = errors.New("no free player slot")
	ErrSlotsFull    = errors.New("both player slots are filled")
	ErrCodesDrained = errors.New("join code pool is exhausted")
)
