package game

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SentinelTimeout is how long a freshly created lobby waits for its host
// to open a streaming connection before it is closed.
const SentinelTimeout = 60 * time.Second

// TestGameID is a fixed lobby id seeded in dev and test runs so clients
// have a known game to poke at.
var TestGameID = uuid.MustParse("230ebb4c-3eb1-4cb3-96c2-bce8f7654580")

// Observer runs on every committed game change. Observers are invoked
// synchronously under the registry lock and must not block.
type Observer func(*Game)

type observerEntry struct {
	id int
	fn Observer
}

// Registry exclusively owns all live games, the join-code pool, and the
// per-game serialized snapshot cache. Every mutation goes through
// WithScope, which serializes writers on a single lock; the scope body is
// synchronous and must not block, which is the invariant that removes the
// need for per-game locks.
type Registry struct {
	mu        sync.Mutex
	games     map[uuid.UUID]*Game
	byCode    map[string]*Game
	cache     map[uuid.UUID][]byte
	observers []observerEntry
	nextObsID int
	sentinels map[uuid.UUID]chan struct{}
	codes     *CodePool

	sentinelTimeout time.Duration
}

// Option configures a Registry.
type Option func(*Registry)

// WithSentinelTimeout overrides the host-connect window. Used by tests.
func WithSentinelTimeout(d time.Duration) Option {
	return func(r *Registry) { r.sentinelTimeout = d }
}

// WithTestGame seeds the fixed TestGameID lobby. The test lobby has no
// host and no join code; it exists so clients can connect without going
// through game creation.
func WithTestGame() Option {
	return func(r *Registry) {
		now := time.Now().UTC()
		g := &Game{
			ID:          TestGameID,
			CreatedAt:   now,
			ModifiedAt:  now,
			Phase:       PhaseInitialized,
			MoveHistory: []Move{},
		}
		r.games[g.ID] = g
		r.refreshCache(g)
	}
}

// NewRegistry creates an empty registry drawing join codes from codes.
func NewRegistry(codes *CodePool, opts ...Option) *Registry {
	r := &Registry{
		games:           make(map[uuid.UUID]*Game),
		byCode:          make(map[string]*Game),
		cache:           make(map[uuid.UUID][]byte),
		sentinels:       make(map[uuid.UUID]chan struct{}),
		codes:           codes,
		sentinelTimeout: SentinelTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create allocates a new lobby hosted by hostID: pops a join code, indexes
// the game by id and by code, notifies observers, and arms the
// host-connect sentinel. If the host does not connect within the sentinel
// window the lobby is closed.
func (r *Registry) Create(hostID uuid.UUID) (*Game, error) {
	r.mu.Lock()
	code, err := r.codes.Pop()
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	g := NewGame(hostID, code)
	r.games[g.ID] = g
	r.byCode[code] = g
	confirm := make(chan struct{}, 1)
	r.sentinels[g.ID] = confirm
	r.commitLocked(g)
	snapshot := g.clone()
	r.mu.Unlock()

	go r.watchHostConnect(g.ID, confirm)

	log.Printf("[REGISTRY] Created game %s code=%s host=%s", g.ID, code, hostID)
	return snapshot, nil
}

// watchHostConnect closes the lobby if the host never connects within the
// sentinel window. Closing an already-terminated game is a no-op, so the
// sentinel is always safe to fire.
func (r *Registry) watchHostConnect(gameID uuid.UUID, confirm <-chan struct{}) {
	select {
	case <-confirm:
		return
	case <-time.After(r.sentinelTimeout):
	}

	log.Printf("[SENTINEL] Host never connected to game %s, closing lobby", gameID)
	if err := r.WithScope(gameID, func(g *Game) error {
		return g.Close()
	}); err != nil {
		log.Printf("[SENTINEL] Failed to close abandoned game %s: %v", gameID, err)
	}
}

// ConfirmHost signals that the host of gameID has opened a streaming
// connection, disarming the sentinel. Idempotent; safe for unknown ids.
func (r *Registry) ConfirmHost(gameID uuid.UUID) {
	r.mu.Lock()
	confirm := r.sentinels[gameID]
	r.mu.Unlock()
	if confirm == nil {
		return
	}
	select {
	case confirm <- struct{}{}:
	default:
	}
}

// ByID returns a detached copy of the game with the given id, or nil. The
// copy is safe to read without any lock; it never observes later commits.
// Mutation goes through WithScope.
func (r *Registry) ByID(id uuid.UUID) *Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return nil
	}
	return g.clone()
}

// ByCode returns a detached copy of the game with the given join code, or
// nil. Terminated games are unindexed from their code.
func (r *Registry) ByCode(code string) *Game {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.byCode[code]
	if !ok {
		return nil
	}
	return g.clone()
}

// AllIDs lists the ids of every game the registry knows about.
func (r *Registry) AllIDs() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(r.games))
	for id := range r.games {
		ids = append(ids, id)
	}
	return ids
}

// Snapshot returns the cached network serialization for a game, or nil if
// the game is unknown. Callers must not mutate the returned bytes.
func (r *Registry) Snapshot(id uuid.UUID) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cache[id]
}

// ReadScope runs f with the live game under the registry lock without
// committing anything. f must not mutate the game and must not block.
func (r *Registry) ReadScope(id uuid.UUID, f func(*Game) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.games[id]
	if !ok {
		return ErrUnknownGame
	}
	return f(g)
}

// WithScope runs f as a transactional mutation of one game. The game's
// state is snapshotted on entry; on clean return the change is committed
// (modified_at bumped, network cache refreshed, observers notified), on
// error the snapshot is restored and no observer runs. The scope holds the
// registry lock for its whole extent, so f must not block.
//
// A multi-process variant would replace the map behind this with a shared
// store and wrap the scope in a distributed lock; this method is the
// extension point.
func (r *Registry) WithScope(id uuid.UUID, f func(*Game) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.games[id]
	if !ok {
		return ErrUnknownGame
	}

	snapshot := g.clone()
	if err := f(g); err != nil {
		*g = *snapshot
		return err
	}

	g.ModifiedAt = time.Now().UTC()
	r.commitLocked(g)
	return nil
}

// Subscribe registers an observer for committed game changes and returns
// a handle for Unsubscribe.
func (r *Registry) Subscribe(fn Observer) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextObsID++
	r.observers = append(r.observers, observerEntry{id: r.nextObsID, fn: fn})
	return r.nextObsID
}

// Unsubscribe removes a previously registered observer.
func (r *Registry) Unsubscribe(handle int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.observers {
		if e.id == handle {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
	log.Printf("[REGISTRY] Tried to remove non-existent observer %d", handle)
}

// commitLocked refreshes the serialized cache, reclaims the join code of a
// terminated game, and fans the change out to observers. Caller holds the
// lock.
func (r *Registry) commitLocked(g *Game) {
	r.refreshCache(g)

	if g.Terminal() {
		if indexed, ok := r.byCode[g.Code]; ok && indexed == g {
			delete(r.byCode, g.Code)
			r.codes.Reclaim(g.Code)
		}
		delete(r.sentinels, g.ID)
	}

	for _, e := range r.observers {
		e.fn(g)
	}
}

func (r *Registry) refreshCache(g *Game) {
	payload, err := g.NetworkJSON()
	if err != nil {
		log.Printf("[REGISTRY] Failed to serialize game %s: %v", g.ID, err)
		return
	}
	r.cache[g.ID] = payload
}
