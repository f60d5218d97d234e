package remoteaccess

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenIssuer is the issuer claim of connection tokens.
	TokenIssuer = "hostlink"
	// DefaultTokenExpiry is used when IssueToken gets a non-positive ttl.
	DefaultTokenExpiry = 24 * time.Hour

	authHeader = "Authorization"
	tokenQuery = "token"
)

// IssueToken signs a connection token with secret.
func IssueToken(secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenExpiry
	}
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    TokenIssuer,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken reports whether tokenString was signed with secret, is
// unexpired and was issued by this host.
func ValidateToken(secret, tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(TokenIssuer))

	return err == nil && token.Valid
}

// requestToken extracts a bearer token from the header or the query string.
// Browsers cannot set headers on WebSocket handshakes, hence the query form.
func requestToken(r *http.Request) string {
	if h := r.Header.Get(authHeader); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get(tokenQuery)
}
