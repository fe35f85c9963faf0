package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"dealsscannerpro/internal/utils"
)

// opsClaims is the minimal claim set an ops-issued bearer token carries:
// who it was issued to and when it expires. There is no login endpoint in
// this service — tokens are minted out of band by whoever operates the
// scan API.
type opsClaims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// RequireOpsToken verifies a bearer JWT signed with secret, guarding the
// scan endpoint behind a single ops role rather than a full user/session
// system, since the scanner has no concept of end users.
func RequireOpsToken(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.Error(c, 401, "unauthorized", nil)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := &opsClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			utils.Error(c, 401, "invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set("opsSubject", claims.Subject)
		c.Next()
	}
}

// IssueOpsToken mints a bearer token for subject, valid for ttl. Exposed for
// an operator's own tooling to call directly — there is no HTTP endpoint
// for minting tokens, since this service has no user-facing auth system.
func IssueOpsToken(secret, subject string, ttl time.Duration) (string, error) {
	claims := opsClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
