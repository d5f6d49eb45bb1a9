package ws

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/quadline/backend/internal/game"
)

const (
	// writeWait bounds a single outbound write.
	writeWait = 10 * time.Second
	// pingPeriod keeps idle connections alive between snapshots.
	pingPeriod = 30 * time.Second
	// maxSendFailures is how many consecutive failed deliveries a
	// subscription survives before it is marked dead.
	maxSendFailures = 3
)

// Conn is the outbound half of a streaming connection. *websocket.Conn
// satisfies it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
}

// Subscription binds one outbound connection to one game and delivers the
// latest snapshot with stale-coalescing semantics.
//
// If publishes back up for whatever reason, a naive per-event queue falls
// progressively further behind. Instead each game change only marks the
// subscription stale; the delivery loop reads the current cached snapshot
// when it gets around to sending. If many updates land while a send is in
// flight, the single pending stale event collapses them into one delivery
// of the newest state.
type Subscription struct {
	id     uuid.UUID
	gameID uuid.UUID
	conn   Conn

	// stale is the edge-triggered flag: capacity one, non-blocking set.
	stale  chan struct{}
	cancel chan struct{}
	once   sync.Once
}

func (s *Subscription) markStale() {
	select {
	case s.stale <- struct{}{}:
	default:
	}
}

func (s *Subscription) stop() {
	s.once.Do(func() { close(s.cancel) })
}

// run is the dedicated delivery task. The flag starts set, so every
// subscription delivers the current snapshot once at start. A failed send
// is retried implicitly by the next stale event; after maxSendFailures
// consecutive failures the subscription is dropped.
func (s *Subscription) run(f *Fabric) {
	pings := time.NewTicker(pingPeriod)
	defer pings.Stop()

	failures := 0
	for {
		select {
		case <-s.cancel:
			return
		case <-pings.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[WS] Ping failed for subscription %s: %v", s.id, err)
			}
			continue
		case <-s.stale:
		}

		payload := f.registry.Snapshot(s.gameID)
		if payload == nil {
			continue
		}

		s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			failures++
			log.Printf("[WS] Snapshot send failed for subscription %s (%d/%d): %v", s.id, failures, maxSendFailures, err)
			if failures >= maxSendFailures {
				log.Printf("[WS] Subscription %s is dead, unsubscribing", s.id)
				f.remove(s.id)
				return
			}
			continue
		}
		failures = 0
	}
}

// Fabric exclusively owns subscriptions. It registers itself as a registry
// observer; the observer only sets stale flags, so it is safe to run
// synchronously under the registry's scope.
type Fabric struct {
	registry *game.Registry

	mu     sync.Mutex
	subs   map[uuid.UUID]*Subscription
	byGame map[uuid.UUID][]*Subscription
}

// NewFabric creates the fabric and hooks it into the registry's change
// notifications.
func NewFabric(registry *game.Registry) *Fabric {
	f := &Fabric{
		registry: registry,
		subs:     make(map[uuid.UUID]*Subscription),
		byGame:   make(map[uuid.UUID][]*Subscription),
	}
	registry.Subscribe(func(g *game.Game) {
		f.MarkStale(g.ID)
	})
	return f
}

// MarkStale flags every subscription of gameID for redelivery.
func (f *Fabric) MarkStale(gameID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.byGame[gameID] {
		sub.markStale()
	}
}

// Subscribe registers conn as an observer of gameID and starts its
// delivery task. The first delivery carries the current snapshot.
func (f *Fabric) Subscribe(conn Conn, gameID uuid.UUID) (uuid.UUID, error) {
	if f.registry.ByID(gameID) == nil {
		return uuid.Nil, game.ErrUnknownGame
	}

	sub := &Subscription{
		id:     uuid.New(),
		gameID: gameID,
		conn:   conn,
		stale:  make(chan struct{}, 1),
		cancel: make(chan struct{}),
	}
	sub.markStale()

	f.mu.Lock()
	f.subs[sub.id] = sub
	f.byGame[gameID] = append(f.byGame[gameID], sub)
	f.mu.Unlock()

	go sub.run(f)
	return sub.id, nil
}

// Unsubscribe cancels the delivery task and removes the subscription.
func (f *Fabric) Unsubscribe(subID uuid.UUID) {
	f.remove(subID)
}

// RefreshSub re-flags a single subscription so it redelivers the current
// snapshot. Backs the explicit get_game_state command.
func (f *Fabric) RefreshSub(subID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sub, ok := f.subs[subID]; ok {
		sub.markStale()
	}
}

// Count reports the number of live subscriptions for a game.
func (f *Fabric) Count(gameID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byGame[gameID])
}

func (f *Fabric) remove(subID uuid.UUID) {
	f.mu.Lock()
	sub, ok := f.subs[subID]
	if !ok {
		f.mu.Unlock()
		log.Printf("[WS] Could not find subscription %s", subID)
		return
	}
	delete(f.subs, subID)
	peers := f.byGame[sub.gameID]
	for i, p := range peers {
		if p == sub {
			f.byGame[sub.gameID] = append(peers[:i], peers[i+1:]...)
			break
		}
	}
	if len(f.byGame[sub.gameID]) == 0 {
		delete(f.byGame, sub.gameID)
	}
	f.mu.Unlock()

	sub.stop()
}
