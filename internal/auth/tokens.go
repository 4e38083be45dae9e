package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrTokenExpired indicates the presented token is past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid indicates the presented token is malformed or its
	// signature does not verify.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager signs and verifies the compact tokens used as bearer
// credentials. Access and refresh tokens use distinct secrets and lifetimes so
// one can never stand in for the other.
type TokenManager struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	// NowFunc allows tests to pin the clock. Defaults to time.Now.
	NowFunc func() time.Time
}

// NewTokenManager constructs a manager issuing HMAC-SHA256 signed tokens.
func NewTokenManager(issuer, accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if issuer == "" {
		panic("auth: token issuer must not be empty")
	}
	if accessSecret == "" || refreshSecret == "" {
		panic("auth: token secrets must not be empty")
	}
	return &TokenManager{
		issuer:        issuer,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair creates a new access and refresh token pair for the provided user
// identifier.
func (m *TokenManager) IssuePair(userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	accessToken, accessExp, err := m.sign(userID, m.accessSecret, m.accessTTL)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, refreshExp, err := m.sign(userID, m.refreshSecret, m.refreshTTL)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccess validates an access token and returns its subject.
func (m *TokenManager) VerifyAccess(token string) (string, error) {
	return m.verify(token, m.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its subject.
func (m *TokenManager) VerifyRefresh(token string) (string, error) {
	return m.verify(token, m.refreshSecret)
}

func (m *TokenManager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return time.Now()
}

func (m *TokenManager) sign(userID string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (m *TokenManager) verify(tokenString string, secret []byte) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithIssuer(m.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrTokenInvalid
	}

	return subject, nil
}
