package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginGeneratesIdentityWhenAbsent(t *testing.T) {
	m := NewManager("secret", time.Hour)

	s, token, err := m.Login(nil, "Ada")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, s.UserID)
	assert.NotEmpty(t, token)

	uid, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, uid)
}

func TestLoginKeepsProvidedIdentity(t *testing.T) {
	m := NewManager("secret", time.Hour)
	want := uuid.New()

	s, token, err := m.Login(&want, "Ada")
	require.NoError(t, err)
	assert.Equal(t, want, s.UserID)

	uid, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, want, uid)
}

func TestLoginDisplacesPriorSession(t *testing.T) {
	m := NewManager("secret", time.Hour)
	uid := uuid.New()

	first, _, err := m.Login(&uid, "Ada")
	require.NoError(t, err)
	second, _, err := m.Login(&uid, "Ada")
	require.NoError(t, err)

	_, ok := m.ByID(first.ID)
	assert.False(t, ok, "displaced session still resolvable")
	current, ok := m.ByUser(uid)
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewManager("secret", time.Hour)

	for _, token := range []string{"", "junk", "a.b.c"} {
		_, err := m.Validate(token)
		assert.ErrorIs(t, err, ErrUnauthorized, "token %q", token)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	_, token, err := issuer.Login(nil, "Ada")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewManager("secret", time.Hour)

	claims := jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(-time.Minute).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.Validate(expired)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestValidateRejectsWrongAlgorithm(t *testing.T) {
	m := NewManager("secret", time.Hour)

	// alg "none" tokens must never pass.
	claims := jwt.MapClaims{
		"user_id": uuid.New().String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.Validate(unsigned)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSessionExpiry(t *testing.T) {
	s := Session{ExpiresAt: time.Now().UTC().Add(-time.Second)}
	assert.True(t, s.Expired())

	s.ExpiresAt = time.Now().UTC().Add(time.Hour)
	assert.False(t, s.Expired())
}
