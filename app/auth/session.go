package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"yatube/app/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrNoSession    = errors.New("no session cookie")
)

const issuer = "yatube"

// SessionConfig defines how session cookies are signed and scoped
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Claims is the content of a session token
type Claims struct {
	UserID   int    `json:"uid"`
	Username string `json:"username"`
	// AuthHash ties the session to the password it was issued under
	AuthHash string `json:"auh"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies session cookies holding HS256 tokens
type SessionManager struct {
	config SessionConfig
}

// NewSessionManager creates a SessionManager
func NewSessionManager(config SessionConfig) *SessionManager {
	if config.CookieName == "" {
		config.CookieName = "yatube_session"
	}
	if config.TTL <= 0 {
		config.TTL = 14 * 24 * time.Hour
	}
	return &SessionManager{config: config}
}

// CookieName returns the name of the session cookie
func (s *SessionManager) CookieName() string {
	return s.config.CookieName
}

// Issue signs a session token for user
func (s *SessionManager) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		AuthHash: s.authHash(user),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.TTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   strconv.Itoa(user.ID),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *SessionManager) authHash(user *models.User) string {
	mac := hmac.New(sha256.New, []byte(s.config.Secret))
	mac.Write([]byte(user.PasswordHash))
	return hex.EncodeToString(mac.Sum(nil)[:16])
}

// Matches reports whether claims still describe user. Renaming the user or
// changing their password ends every session issued before.
func (s *SessionManager) Matches(claims *Claims, user *models.User) bool {
	if claims.UserID != user.ID || claims.Username != user.Username {
		return false
	}
	return hmac.Equal([]byte(claims.AuthHash), []byte(s.authHash(user)))
}

// Parse validates a session token and returns its claims
func (s *SessionManager) Parse(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	}, jwt.WithIssuer(issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Login writes a fresh session cookie for user
func (s *SessionManager) Login(w http.ResponseWriter, user *models.User) error {
	token, err := s.Issue(user)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.config.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout expires the session cookie
func (s *SessionManager) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// FromRequest returns the claims carried by the request's session cookie
func (s *SessionManager) FromRequest(r *http.Request) (*Claims, error) {
	cookie, err := r.Cookie(s.config.CookieName)
	if err != nil {
		return nil, ErrNoSession
	}
	return s.Parse(cookie.Value)
}
