package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadline/backend/internal/game"
)

func frame(t *testing.T, typ CommandType, body interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	payload, err := json.Marshal(map[string]interface{}{
		"type": typ,
		"body": json.RawMessage(raw),
	})
	require.NoError(t, err)
	return payload
}

func commandBody(gameID, userID uuid.UUID) Body {
	return Body{
		Version:   1,
		Timestamp: time.Now().UTC(),
		EventID:   uuid.New(),
		GameID:    gameID,
		UserID:    userID,
	}
}

// newDispatchSetup builds a registry with one full lobby: host on white,
// guest on black.
func newDispatchSetup(t *testing.T) (*game.Registry, *Dispatcher, *game.Game, uuid.UUID, uuid.UUID) {
	t.Helper()
	registry := game.NewRegistry(game.NewCodePool(10))
	host := uuid.New()
	guest := uuid.New()

	g, err := registry.Create(host)
	require.NoError(t, err)
	registry.ConfirmHost(g.ID)
	require.NoError(t, registry.WithScope(g.ID, func(live *game.Game) error {
		return live.Promote(guest)
	}))

	return registry, NewDispatcher(registry), g, host, guest
}

func ctx(userID, gameID uuid.UUID, role Role) ConnContext {
	return ConnContext{UserID: userID, GameID: gameID, Role: role, Refresh: func() {}}
}

func TestGarbageFramesAreDropped(t *testing.T) {
	registry, d, g, host, _ := newDispatchSetup(t)

	cc := ctx(host, g.ID, RoleHost)
	for i := 0; i < 3; i++ {
		role := d.Dispatch(cc, []byte(`{"garbage": true}`))
		assert.Equal(t, RoleHost, role)
	}
	assert.Equal(t, game.PhaseInitialized, registry.ByID(g.ID).Phase)

	// The connection still processes valid commands afterwards.
	d.Dispatch(cc, frame(t, CmdStartGame, commandBody(g.ID, host)))
	assert.Equal(t, game.PhaseRunning, registry.ByID(g.ID).Phase)
}

func TestUnknownCommandDropped(t *testing.T) {
	registry, d, g, host, _ := newDispatchSetup(t)

	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, "self_destruct", commandBody(g.ID, host)))
	assert.Equal(t, game.PhaseInitialized, registry.ByID(g.ID).Phase)
}

func TestRoleFloorBlocksHostCommands(t *testing.T) {
	registry, d, g, _, guest := newDispatchSetup(t)

	// A player may not start the game, kick, close, or swap colors.
	cc := ctx(guest, g.ID, RolePlayer)
	d.Dispatch(cc, frame(t, CmdStartGame, commandBody(g.ID, guest)))
	assert.Equal(t, game.PhaseInitialized, registry.ByID(g.ID).Phase)

	d.Dispatch(cc, frame(t, CmdCloseGame, commandBody(g.ID, guest)))
	assert.False(t, registry.ByID(g.ID).Terminal())
}

func TestSpectatorCannotPlay(t *testing.T) {
	registry, d, g, host, _ := newDispatchSetup(t)
	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdStartGame, commandBody(g.ID, host)))

	watcher := uuid.New()
	body := PlayPieceBody{Body: commandBody(g.ID, watcher), CurrentTurn: 0, PosX: 0, PosY: 0, PosZ: 0}
	d.Dispatch(ctx(watcher, g.ID, RoleSpectator), frame(t, CmdPlayWhitePiece, body))

	assert.Equal(t, 0, registry.ByID(g.ID).TurnNumber)
}

func TestBodyIdentityMustMatchConnection(t *testing.T) {
	registry, d, g, host, _ := newDispatchSetup(t)

	// Valid role, but the frame claims another user.
	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdStartGame, commandBody(g.ID, uuid.New())))
	assert.Equal(t, game.PhaseInitialized, registry.ByID(g.ID).Phase)

	// Or another game.
	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdStartGame, commandBody(uuid.New(), host)))
	assert.Equal(t, game.PhaseInitialized, registry.ByID(g.ID).Phase)
}

func TestBecomePlayerPromotesSpectator(t *testing.T) {
	registry, d, g, _, guest := newDispatchSetup(t)

	// Free the black slot first.
	require.NoError(t, registry.WithScope(g.ID, func(live *game.Game) error {
		return live.RemovePlayer(guest)
	}))

	watcher := uuid.New()
	role := d.Dispatch(ctx(watcher, g.ID, RoleSpectator), frame(t, CmdBecomePlayer, commandBody(g.ID, watcher)))
	assert.Equal(t, RolePlayer, role)
	assert.True(t, registry.ByID(g.ID).IsPlayer(watcher))

	// A player cannot become a player again.
	role = d.Dispatch(ctx(watcher, g.ID, RolePlayer), frame(t, CmdBecomePlayer, commandBody(g.ID, watcher)))
	assert.Equal(t, RolePlayer, role)
}

func TestPlayPieceThroughDispatcher(t *testing.T) {
	registry, d, g, host, guest := newDispatchSetup(t)
	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdStartGame, commandBody(g.ID, host)))

	// The host holds white and opens the game.
	play := PlayPieceBody{Body: commandBody(g.ID, host), CurrentTurn: 0, PosX: 2, PosY: 2, PosZ: 2}
	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdPlayWhitePiece, play))
	assert.Equal(t, 1, registry.ByID(g.ID).TurnNumber)

	// The black player may not move white pieces.
	wrong := PlayPieceBody{Body: commandBody(g.ID, guest), CurrentTurn: 1, PosX: 0, PosY: 0, PosZ: 0}
	d.Dispatch(ctx(guest, g.ID, RolePlayer), frame(t, CmdPlayWhitePiece, wrong))
	assert.Equal(t, 1, registry.ByID(g.ID).TurnNumber)

	// Replaying the first move with its stale turn token changes nothing.
	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdPlayWhitePiece, play))
	assert.Equal(t, 1, registry.ByID(g.ID).TurnNumber)

	// Black answers.
	answer := PlayPieceBody{Body: commandBody(g.ID, guest), CurrentTurn: 1, PosX: 0, PosY: 0, PosZ: 0}
	d.Dispatch(ctx(guest, g.ID, RolePlayer), frame(t, CmdPlayBlackPiece, answer))
	assert.Equal(t, 2, registry.ByID(g.ID).TurnNumber)
}

func TestLeaveAndForfeit(t *testing.T) {
	registry, d, g, host, guest := newDispatchSetup(t)

	// Leaving the lobby frees the slot.
	d.Dispatch(ctx(guest, g.ID, RolePlayer), frame(t, CmdLeave, commandBody(g.ID, guest)))
	assert.False(t, registry.ByID(g.ID).IsPlayer(guest))

	// Refill and start; forfeit then decides the game.
	require.NoError(t, registry.WithScope(g.ID, func(live *game.Game) error {
		return live.Promote(guest)
	}))
	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdStartGame, commandBody(g.ID, host)))
	d.Dispatch(ctx(guest, g.ID, RolePlayer), frame(t, CmdForfeit, commandBody(g.ID, guest)))

	live := registry.ByID(g.ID)
	assert.Equal(t, game.PhaseFinished, live.Phase)
	assert.Equal(t, game.EndForfeit, live.EndReason)
	assert.Equal(t, game.White, live.Winner)
}

func TestKickAndSwitchPlaces(t *testing.T) {
	registry, d, g, host, guest := newDispatchSetup(t)

	kick := KickPlayerBody{Body: commandBody(g.ID, host), KickedPlayerID: guest}
	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdKickPlayer, kick))
	assert.False(t, registry.ByID(g.ID).IsPlayer(guest))

	d.Dispatch(ctx(host, g.ID, RoleHost), frame(t, CmdSwitchPlaces, commandBody(g.ID, host)))
	live := registry.ByID(g.ID)
	assert.Nil(t, live.WhitePlayerID)
	require.NotNil(t, live.BlackPlayerID)
	assert.Equal(t, host, *live.BlackPlayerID)
}

func TestGetGameStateTriggersRefresh(t *testing.T) {
	_, d, g, host, _ := newDispatchSetup(t)

	refreshed := false
	cc := ConnContext{
		UserID:  host,
		GameID:  g.ID,
		Role:    RoleHost,
		Refresh: func() { refreshed = true },
	}
	d.Dispatch(cc, frame(t, CmdGetGameState, commandBody(g.ID, host)))
	assert.True(t, refreshed)
}
