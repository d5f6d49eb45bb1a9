package game

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

// newLobby returns a lobby with both slots filled: the host on white and a
// second player on black.
func newLobby(t *testing.T) (*Game, uuid.UUID, uuid.UUID) {
	t.Helper()
	host := uuid.New()
	guest := uuid.New()
	g := NewGame(host, "ABCD")
	if err := g.Promote(guest); err != nil {
		t.Fatalf("promote guest: %v", err)
	}
	return g, host, guest
}

func TestNewGameHostTakesWhite(t *testing.T) {
	host := uuid.New()
	g := NewGame(host, "ABCD")

	if g.Phase != PhaseInitialized {
		t.Errorf("new game phase = %v, want INITIALIZED", g.Phase)
	}
	if g.WhitePlayerID == nil || *g.WhitePlayerID != host {
		t.Error("host did not take the white slot")
	}
	if g.BlackPlayerID != nil {
		t.Error("black slot occupied in a fresh lobby")
	}
	if g.WhoseTurn() != Empty {
		t.Error("a lobby has no turn to move")
	}
}

func TestStartRequiresBothSlots(t *testing.T) {
	g := NewGame(uuid.New(), "ABCD")
	if err := g.Start(); !errors.Is(err, ErrNotReady) {
		t.Errorf("start with open slot = %v, want ErrNotReady", err)
	}
	if g.Phase != PhaseInitialized {
		t.Errorf("failed start changed phase to %v", g.Phase)
	}

	g, _, _ = newLobby(t)
	if err := g.Start(); err != nil {
		t.Fatalf("start full lobby: %v", err)
	}
	if g.Phase != PhaseRunning {
		t.Errorf("phase after start = %v, want RUNNING", g.Phase)
	}
	if g.WhoseTurn() != White {
		t.Error("white does not open the game")
	}
	if err := g.Start(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("double start = %v, want ErrWrongPhase", err)
	}
}

func TestPromoteRejections(t *testing.T) {
	g, _, guest := newLobby(t)

	if err := g.Promote(guest); !errors.Is(err, ErrNoSlot) {
		t.Errorf("re-promoting a player = %v, want ErrNoSlot", err)
	}
	if err := g.Promote(uuid.New()); !errors.Is(err, ErrSlotsFull) {
		t.Errorf("promoting into full lobby = %v, want ErrSlotsFull", err)
	}
}

func TestSwitchColors(t *testing.T) {
	g, host, guest := newLobby(t)

	if err := g.SwitchColors(); err != nil {
		t.Fatalf("switch colors: %v", err)
	}
	if *g.WhitePlayerID != guest || *g.BlackPlayerID != host {
		t.Error("slots not swapped")
	}

	g.Start()
	if err := g.SwitchColors(); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("switch after start = %v, want ErrWrongPhase", err)
	}
}

func TestKickReopensSlot(t *testing.T) {
	g, _, guest := newLobby(t)

	if err := g.RemovePlayer(guest); err != nil {
		t.Fatalf("remove player: %v", err)
	}
	if g.BlackPlayerID != nil {
		t.Error("kicked player still holds the black slot")
	}
	if err := g.Promote(uuid.New()); err != nil {
		t.Errorf("promote into reopened slot: %v", err)
	}
}

func TestLastPlayerLeavingClosesLobby(t *testing.T) {
	host := uuid.New()
	g := NewGame(host, "ABCD")

	if err := g.Leave(host); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if !g.Terminal() || g.EndReason != EndLobbyClose {
		t.Errorf("empty lobby left alive: phase=%v reason=%q", g.Phase, g.EndReason)
	}
	if g.FinishedAt == nil {
		t.Error("closed lobby has no finished_at")
	}
}

func TestKickingBothPlayersClosesLobby(t *testing.T) {
	g, host, guest := newLobby(t)

	if err := g.RemovePlayer(guest); err != nil {
		t.Fatalf("remove guest: %v", err)
	}
	if g.Terminal() {
		t.Fatal("lobby closed while the host still holds a slot")
	}

	if err := g.RemovePlayer(host); err != nil {
		t.Fatalf("remove host: %v", err)
	}
	if !g.Terminal() || g.EndReason != EndLobbyClose {
		t.Errorf("slotless lobby left alive: phase=%v reason=%q", g.Phase, g.EndReason)
	}
}

func TestSpectatorLeavingEmptyLobbyIsNoOp(t *testing.T) {
	// The seeded dev lobby starts with neither slot held; a spectator
	// bouncing off it must not close it.
	g := &Game{Phase: PhaseInitialized, MoveHistory: []Move{}}

	if err := g.Leave(uuid.New()); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if g.Terminal() {
		t.Error("spectator leave closed an empty lobby")
	}
}

func TestPlayGuards(t *testing.T) {
	g, _, _ := newLobby(t)

	if err := g.PlayPiece(White, 0, 0, 0, 0); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("play before start = %v, want ErrWrongPhase", err)
	}

	g.Start()

	if err := g.PlayPiece(White, 0, 0, 0, 7); !errors.Is(err, ErrOutOfTurn) {
		t.Errorf("stale turn token = %v, want ErrOutOfTurn", err)
	}
	if err := g.PlayPiece(Black, 0, 0, 0, 0); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("black opening = %v, want ErrNotYourTurn", err)
	}
	if err := g.PlayPiece(White, 0, 0, 5, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("off-board play = %v, want ErrOutOfBounds", err)
	}

	if err := g.PlayPiece(White, 0, 0, 0, 0); err != nil {
		t.Fatalf("valid opening move: %v", err)
	}
	if err := g.PlayPiece(Black, 0, 0, 0, 1); !errors.Is(err, ErrCellOccupied) {
		t.Errorf("play onto occupied cell = %v, want ErrCellOccupied", err)
	}

	// A rejected move leaves the board and counters untouched.
	if g.TurnNumber != 1 || len(g.MoveHistory) != 1 {
		t.Errorf("turn=%d history=%d after one accepted move", g.TurnNumber, len(g.MoveHistory))
	}
}

func TestTurnNumberTracksHistory(t *testing.T) {
	g, _, _ := newLobby(t)
	g.Start()

	moves := []struct {
		color   Mark
		x, y, z int
	}{
		{White, 0, 0, 0},
		{Black, 1, 0, 0},
		{White, 0, 1, 0},
		{Black, 1, 1, 0},
	}
	for i, m := range moves {
		if err := g.PlayPiece(m.color, m.x, m.y, m.z, i); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
		if g.TurnNumber != len(g.MoveHistory) {
			t.Fatalf("turn_number %d != history length %d", g.TurnNumber, len(g.MoveHistory))
		}
	}
}

func TestFourInLineEndsGame(t *testing.T) {
	g, _, _ := newLobby(t)
	g.Start()

	// White builds a column while black plays elsewhere.
	plays := []struct {
		color   Mark
		x, y, z int
	}{
		{White, 0, 0, 0},
		{Black, 1, 0, 0},
		{White, 0, 0, 1},
		{Black, 1, 0, 1},
		{White, 0, 0, 2},
		{Black, 1, 0, 2},
		{White, 0, 0, 3},
	}
	for i, m := range plays {
		if err := g.PlayPiece(m.color, m.x, m.y, m.z, i); err != nil {
			t.Fatalf("move %d: %v", i, err)
		}
	}

	if g.Phase != PhaseFinished {
		t.Fatalf("phase after winning move = %v, want FINISHED", g.Phase)
	}
	if g.Winner != White {
		t.Errorf("winner = %v, want white", g.Winner)
	}
	if g.EndReason != EndBoardPosition {
		t.Errorf("end reason = %q, want BOARD_POSITION", g.EndReason)
	}
	if g.FinishedAt == nil {
		t.Error("finished_at not set")
	}
	if !HasLine(&g.Board, White) {
		t.Error("finished game board holds no winning line")
	}

	if err := g.PlayPiece(Black, 4, 4, 4, 7); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("play after finish = %v, want ErrWrongPhase", err)
	}
}

func TestForfeit(t *testing.T) {
	g, host, _ := newLobby(t)

	if err := g.Forfeit(host); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("forfeit in lobby = %v, want ErrWrongPhase", err)
	}

	g.Start()
	if err := g.Forfeit(uuid.New()); !errors.Is(err, ErrNotAPlayer) {
		t.Errorf("forfeit by outsider = %v, want ErrNotAPlayer", err)
	}

	if err := g.Forfeit(host); err != nil {
		t.Fatalf("forfeit: %v", err)
	}
	if g.Winner != Black {
		t.Errorf("winner after white forfeits = %v, want black", g.Winner)
	}
	if g.EndReason != EndForfeit {
		t.Errorf("end reason = %q, want FORFEIT", g.EndReason)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	g, _, _ := newLobby(t)

	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if g.Phase != PhaseFinished || g.EndReason != EndLobbyClose || g.Winner != Empty {
		t.Errorf("closed lobby: phase=%v reason=%q winner=%v", g.Phase, g.EndReason, g.Winner)
	}

	finishedAt := *g.FinishedAt
	if err := g.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if *g.FinishedAt != finishedAt {
		t.Error("second close rewrote finished_at")
	}
}

func TestLeaveBySpectatorIsNoOp(t *testing.T) {
	g, _, guest := newLobby(t)

	if err := g.Leave(uuid.New()); err != nil {
		t.Fatalf("spectator leave: %v", err)
	}
	if g.BlackPlayerID == nil || *g.BlackPlayerID != guest {
		t.Error("spectator leave disturbed the slots")
	}
}
