package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/SAP-F-2025/survey-service/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenClaims are carried by both access and refresh tokens.
type TokenClaims struct {
	AdminID  uint             `json:"adminId"`
	UserName string           `json:"userName"`
	Role     models.AdminRole `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 session tokens.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (m *TokenManager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *TokenManager) IssueAccessToken(admin *models.Admin) (string, error) {
	return m.sign(admin, m.accessSecret, m.accessTTL)
}

func (m *TokenManager) IssueRefreshToken(admin *models.Admin) (string, error) {
	return m.sign(admin, m.refreshSecret, m.refreshTTL)
}

func (m *TokenManager) ParseAccessToken(token string) (*TokenClaims, error) {
	return m.parse(token, m.accessSecret)
}

func (m *TokenManager) ParseRefreshToken(token string) (*TokenClaims, error) {
	return m.parse(token, m.refreshSecret)
}

func (m *TokenManager) sign(admin *models.Admin, secret []byte, ttl time.Duration) (string, error) {
	now := m.now()
	claims := TokenClaims{
		AdminID:  admin.ID,
		UserName: admin.UserName,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(admin.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (m *TokenManager) parse(token string, secret []byte) (*TokenClaims, error) {
	claims := &TokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
