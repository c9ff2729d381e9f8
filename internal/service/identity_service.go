package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prepdeck/prepdeck-backend/internal/config"
	"github.com/prepdeck/prepdeck-backend/internal/model"
	"github.com/prepdeck/prepdeck-backend/internal/repository"
)

// IdentityCookieName is the cookie carrying the signed identity token.
const IdentityCookieName = "prepdeck_uid"

// ErrInvalidIdentity is returned for malformed or tampered identity tokens.
var ErrInvalidIdentity = errors.New("invalid identity token")

// IdentityClaims extends JWT standard claims with the anonymous user ID.
type IdentityClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// IdentityService mints and validates the anonymous identity cookie.
// There are no passwords: identity is a UUID the client keeps, signed
// server-side so it cannot be forged into someone else's history.
type IdentityService struct {
	cfg      *config.Config
	userRepo *repository.UserRepository
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(cfg *config.Config, userRepo *repository.UserRepository) *IdentityService {
	return &IdentityService{cfg: cfg, userRepo: userRepo}
}

// Track performs the identity handshake: it accepts a caller-supplied UUID
// or mints a fresh one, upserts the user row, and returns the user with a
// signed token for the cookie.
func (s *IdentityService) Track(ctx context.Context, req *model.TrackRequest) (*model.User, string, error) {
	userID := req.UserID
	if userID == "" {
		userID = uuid.New().String()
	}

	user, err := s.userRepo.Upsert(ctx, userID, req.Name)
	if err != nil {
		return nil, "", fmt.Errorf("upsert user: %w", err)
	}

	token, err := s.mintToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// SetCookie writes the identity cookie on the response.
func (s *IdentityService) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		IdentityCookieName,
		token,
		int(s.cfg.CookieMaxAge.Seconds()),
		"/",
		"",
		false, // Secure is left to the TLS terminator
		true,  // HttpOnly
	)
}

// ValidateToken parses and validates an identity token, returning the claims.
func (s *IdentityService) ValidateToken(tokenStr string) (*IdentityClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &IdentityClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.CookieSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidIdentity
	}

	return claims, nil
}

func (s *IdentityService) mintToken(userID string) (string, error) {
	now := time.Now()

	claims := IdentityClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.CookieMaxAge)),
		},
		UserID: userID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.CookieSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
