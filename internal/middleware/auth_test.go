package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newOpsTestRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/scan", RequireOpsToken(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"subject": c.GetString("opsSubject")})
	})
	return r
}

func TestRequireOpsToken_MissingHeaderRejected(t *testing.T) {
	r := newOpsTestRouter("s3cret")
	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireOpsToken_ValidTokenAccepted(t *testing.T) {
	secret := "s3cret"
	token, err := IssueOpsToken(secret, "ops-user", time.Hour)
	if err != nil {
		t.Fatalf("IssueOpsToken error: %v", err)
	}

	r := newOpsTestRouter(secret)
	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
}

func TestRequireOpsToken_ExpiredTokenRejected(t *testing.T) {
	secret := "s3cret"
	token, err := IssueOpsToken(secret, "ops-user", -time.Hour)
	if err != nil {
		t.Fatalf("IssueOpsToken error: %v", err)
	}

	r := newOpsTestRouter(secret)
	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for an expired token", w.Code)
	}
}

func TestRequireOpsToken_WrongSecretRejected(t *testing.T) {
	token, err := IssueOpsToken("secret-a", "ops-user", time.Hour)
	if err != nil {
		t.Fatalf("IssueOpsToken error: %v", err)
	}

	r := newOpsTestRouter("secret-b")
	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for a token signed with the wrong secret", w.Code)
	}
}

func TestRequireOpsToken_MalformedHeaderRejected(t *testing.T) {
	r := newOpsTestRouter("s3cret")
	req := httptest.NewRequest(http.MethodGet, "/scan", nil)
	req.Header.Set("Authorization", "Basic somevalue")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for a non-Bearer header", w.Code)
	}
}
