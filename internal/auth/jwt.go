// internal/auth/jwt.go
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenManager(accessSecret, refreshSecret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		issuer:        issuer,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// Claims: uid is the user id, sid the role-specific id (customer id for
// customers, user id otherwise).
type Claims struct {
	UserID    int64  `json:"uid"`
	SubjectID int64  `json:"sid"`
	Role      string `json:"role"`
	Type      string `json:"typ"` // "access" | "refresh"
	jwt.RegisteredClaims
}

type Pair struct {
	Access    string
	Refresh   string
	AccessExp time.Time
}

func (tm *TokenManager) sign(userID, subjectID int64, role, typ string, ttl time.Duration, secret []byte, now time.Time) (string, time.Time, error) {
	exp := now.Add(ttl)
	c := Claims{
		UserID:    userID,
		SubjectID: subjectID,
		Role:      role,
		Type:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tm.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
	return s, exp, err
}

// GeneratePair issues an access and a refresh token for the same identity.
func (tm *TokenManager) GeneratePair(userID, subjectID int64, role string) (Pair, error) {
	now := tm.now()
	access, exp, err := tm.sign(userID, subjectID, role, "access", tm.accessTTL, tm.accessSecret, now)
	if err != nil {
		return Pair{}, err
	}
	refresh, _, err := tm.sign(userID, subjectID, role, "refresh", tm.refreshTTL, tm.refreshSecret, now)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Access: access, Refresh: refresh, AccessExp: exp}, nil
}

func (tm *TokenManager) parse(tokenStr string, secret []byte, typ string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(tm.now),
	}
	if tm.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tm.issuer))
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) { return secret, nil }, opts...)
	if err != nil || claims.Type != typ {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (tm *TokenManager) ParseAccess(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, tm.accessSecret, "access")
}

func (tm *TokenManager) ParseRefresh(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, tm.refreshSecret, "refresh")
}
