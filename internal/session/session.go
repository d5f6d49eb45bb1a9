package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrUnauthorized covers absent, malformed, or expired tokens.
var ErrUnauthorized = errors.New("could not validate credentials")

// DefaultTTL is how long a session lives without a fresh login.
const DefaultTTL = 48 * time.Hour

// Session is the server-side record of a logged-in user. Tokens are
// self-describing and stateless; the session records exist for
// operational introspection and future invalidation lists.
type Session struct {
	ID        uuid.UUID `json:"uuid"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry. Existence of a
// session record does not guarantee validity.
func (s Session) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}

// Manager issues and validates session tokens. It exclusively owns the
// session indexes; a later login for the same user displaces the earlier
// session.
type Manager struct {
	mu     sync.Mutex
	secret []byte
	ttl    time.Duration

	sessions map[uuid.UUID]Session
	byUser   map[uuid.UUID]Session
}

// NewManager creates a session manager signing tokens with secret.
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		secret:   []byte(secret),
		ttl:      ttl,
		sessions: make(map[uuid.UUID]Session),
		byUser:   make(map[uuid.UUID]Session),
	}
}

// Login creates a session for the user and mints its bearer token. When
// userID is nil a fresh identity is generated; the caller returns it to
// the client for reuse on later logins.
func (m *Manager) Login(userID *uuid.UUID, name string) (Session, string, error) {
	uid := uuid.New()
	if userID != nil {
		uid = *userID
	}

	s := Session{
		ID:        uuid.New(),
		UserID:    uid,
		Name:      name,
		ExpiresAt: time.Now().UTC().Add(m.ttl),
	}

	claims := jwt.MapClaims{
		"user_id": uid.String(),
		"exp":     s.ExpiresAt.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return Session{}, "", fmt.Errorf("sign session token: %w", err)
	}

	m.mu.Lock()
	if prior, ok := m.byUser[uid]; ok {
		delete(m.sessions, prior.ID)
	}
	m.sessions[s.ID] = s
	m.byUser[uid] = s
	m.mu.Unlock()

	return s, signed, nil
}

// Validate checks a bearer token's signature and expiry and returns the
// user identity it carries.
func (m *Manager) Validate(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrUnauthorized
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	raw, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, ErrUnauthorized
	}
	uid, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthorized
	}
	return uid, nil
}

// ByUser returns the active session for a user id.
func (m *Manager) ByUser(userID uuid.UUID) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byUser[userID]
	return s, ok
}

// ByID returns a session by its own id.
func (m *Manager) ByID(sessionID uuid.UUID) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}
