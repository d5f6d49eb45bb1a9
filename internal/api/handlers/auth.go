package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/quadline/backend/internal/config"
	"github.com/quadline/backend/internal/models"
	"github.com/quadline/backend/internal/session"
)

// Login handles POST /api/login. Clients without stored credentials send
// only a name; the generated user id comes back inside the session for
// reuse on later logins.
func Login(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
			return
		}

		s, token, err := sessions.Login(req.UserID, req.Name)
		if err != nil {
			log.Printf("[AUTH] Login failed for %q: %v", req.Name, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"code":    200,
			"message": "successful login",
			"session": s,
			"token":   token,
		})
	}
}

// ValidSession handles GET /api/session. Reaching it means SessionAuth
// already accepted the token.
func ValidSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// SessionAuth validates the bearer token on live-state routes and stashes
// the caller's user id in the request context.
func SessionAuth(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := sessions.Validate(bearerToken(c))
		if err != nil {
			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.Set("user_id", userID)
		c.Next()
	}
}

// AdminToken handles POST /token, the OAuth2 password flow for back-office
// operations. The configured admin password may be stored as a bcrypt hash
// or, for local development, in the clear.
func AdminToken(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := c.PostForm("username")
		password := c.PostForm("password")

		if !adminCredentialsValid(cfg, username, password) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
			return
		}

		expiry := time.Now().UTC().Add(time.Duration(cfg.TokenExpiryMinutes) * time.Minute)
		claims := jwt.MapClaims{
			"sub": username,
			"exp": expiry.Unix(),
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("[AUTH] Failed to sign admin token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"access_token": signed,
			"token_type":   "bearer",
		})
	}
}

// IsAuthorized handles GET /is_authorized, a probe for back-office clients
// to check a stored admin token without side effects.
func IsAuthorized(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !adminTokenValid(cfg, bearerToken(c)) {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.JSON(http.StatusOK, "ok")
	}
}

func adminCredentialsValid(cfg *config.Config, username, password string) bool {
	if cfg.AdminPassword == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(cfg.AdminUsername)) != 1 {
		return false
	}
	if strings.HasPrefix(cfg.AdminPassword, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(cfg.AdminPassword), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(cfg.AdminPassword)) == 1
}

func adminTokenValid(cfg *config.Config, tokenString string) bool {
	if tokenString == "" {
		return false
	}
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(cfg.JWTSecret), nil
	})
	return err == nil && parsed.Valid
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	// WebSocket clients cannot set headers; they pass the token in the
	// query string instead.
	return c.Query("token")
}
