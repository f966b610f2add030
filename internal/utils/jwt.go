package utils // package utils provides helpers for token handling and hashing

import (
    "crypto/sha256" // SHA‑256 hashing for storage keys
    "encoding/hex"  // hex encoding of digests
    "time"          // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and inspecting tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  The sandbox scheduling service issues these
// on login and the UI server forwards them as bearer credentials.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID, the user's role, and a TTL.  The JWT
// includes the standard claims subject (sub), expiration (exp) and issued
// at (iat) plus the role.
func NewAccessToken(secret, userID, role string, ttl time.Duration) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "exp":  exp.Unix(),
        "iat":  now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its
// signature.  The UI server does not hold the issuer's key; the expiry is
// only used to drop sessions that can no longer work.  ok is false when
// raw is not a JWT or carries no exp claim.
func TokenExpiry(raw string) (exp time.Time, ok bool) {
    claims := jwt.MapClaims{}
    if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
        return time.Time{}, false
    }
    d, err := claims.GetExpirationTime()
    if err != nil || d == nil {
        return time.Time{}, false
    }
    return d.Time, true
}

// HashKey returns the SHA‑256 hash of raw as a hex string.  Session
// storage is keyed by the hash of the browser's session id so that a
// leaked storage dump cannot be replayed as cookies.
func HashKey(raw string) string {
    sum := sha256.Sum256([]byte(raw))
    return hex.EncodeToString(sum[:])
}
