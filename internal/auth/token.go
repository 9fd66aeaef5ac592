package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clubtix/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrWrongKind    = errors.New("wrong token kind")
)

// ContextClaimsKey is where the auth middleware stores parsed claims on
// the request context.
const ContextClaimsKey = "claims"

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Claims carry the signed-in user's identity plus the profile fields the
// frontend reads straight from the token instead of fetching the profile.
type Claims struct {
	jwt.RegisteredClaims
	Kind           string  `json:"kind"`
	Username       string  `json:"username"`
	Email          string  `json:"email"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	StudentID      *string `json:"student_id"`
	UserType       string  `json:"user_type"`
	AccountType    string  `json:"account_type"`
	Verified       bool    `json:"verified"`
	ProfilePicture string  `json:"profile_picture"`
	EventID        *int64  `json:"event,omitempty"`
}

// TokenManager signs and verifies access and refresh tokens.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *TokenManager) RefreshTTL() time.Duration { return m.refreshTTL }

// IssuePair signs an access and a refresh token for the user. The refresh
// token's jti must be stored so rotation can revoke it.
func (m *TokenManager) IssuePair(user *model.User, verified bool, picture string, refreshID string) (access, refresh string, err error) {
	access, err = m.sign(user, verified, picture, kindAccess, "", m.accessTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = m.sign(user, verified, picture, kindRefresh, refreshID, m.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func (m *TokenManager) sign(user *model.User, verified bool, picture, kind, jti string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind:           kind,
		Username:       user.Username,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		StudentID:      user.StudentID,
		UserType:       user.UserType,
		AccountType:    user.AccountType,
		Verified:       verified,
		ProfilePicture: picture,
		EventID:        user.EventID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseAccess verifies an access token and returns its claims.
func (m *TokenManager) ParseAccess(raw string) (*Claims, error) {
	return m.parse(raw, kindAccess)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (m *TokenManager) ParseRefresh(raw string) (*Claims, error) {
	return m.parse(raw, kindRefresh)
}

func (m *TokenManager) parse(raw, kind string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Kind != kind {
		return nil, ErrWrongKind
	}
	return claims, nil
}

// UserID extracts the numeric user id from the subject claim.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
