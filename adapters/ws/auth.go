package ws

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingBearerToken is returned when a connection's Authorization
// header does not carry a bearer token at all.
var ErrMissingBearerToken = errors.New("ws: missing bearer token")

// Claims is the handshake token's payload: which session a reconnecting
// client is entitled to resume, alongside the registered claims jwt.v5
// already validates (expiry, not-before; the issuer is not checked).
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid,omitempty"`
}

// bearerToken extracts the token from a "Bearer <token>" Authorization
// header value.
func bearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", ErrMissingBearerToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", ErrMissingBearerToken
	}
	return token, nil
}

// verifyBearerToken parses and validates a bearer token against secret
// using HMAC, returning the claims on success.
func verifyBearerToken(header string, secret []byte) (*Claims, error) {
	raw, err := bearerToken(header)
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
