package fakeshop

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTokenTTL = 30 * time.Minute
	accountKey      = "account"
)

// tokenClaims carries the username in sub. Role is only set when the server
// is configured to disclose it.
type tokenClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 access tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (t *Tokens) Issue(username string, role types.Role, withRole bool) (string, error) {
	now := t.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	if withRole {
		claims.Role = string(role)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify returns the username in a valid token.
func (t *Tokens) Verify(raw string) (string, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(tok *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

// authenticate resolves the bearer token to an account and stores it on the
// context. Any failure is a 401.
func authenticate(store *Store, tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(c, unauthorized("Not authenticated"))
			return
		}
		username, err := tokens.Verify(raw)
		if err != nil {
			writeError(c, unauthorized("Could not validate credentials"))
			return
		}
		acct, err := store.AccountByUsername(username)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(accountKey, acct)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if current(c).Role != types.RoleAdmin {
			writeError(c, forbidden("Admin access required"))
			return
		}
		c.Next()
	}
}

// requireSeller admits approved sellers only.
func requireSeller() gin.HandlerFunc {
	return func(c *gin.Context) {
		acct := current(c)
		if acct.Role != types.RoleSeller {
			writeError(c, forbidden("Seller access required"))
			return
		}
		if !acct.Approved {
			writeError(c, withCode(http.StatusForbidden, types.CodeNotApproved, "Seller account not approved yet"))
			return
		}
		c.Next()
	}
}

func current(c *gin.Context) *account {
	return c.MustGet(accountKey).(*account)
}
