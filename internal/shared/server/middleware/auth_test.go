package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"document-backend/internal/shared/auth"
)

func newAuthRouter(signer *auth.Signer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(signer))
	router.GET("/api/v1/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c)})
	})
	router.DELETE("/api/v1/admin/documents/1", RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAuthShortCircuitsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(auth.NewSigner("test-secret", time.Minute, time.Hour)))
	reached := false
	router.OPTIONS("/api/v1/documents", func(c *gin.Context) {
		reached = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if reached {
		t.Fatal("preflight must not reach protected handlers")
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router := newAuthRouter(auth.NewSigner("test-secret", time.Minute, time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthAcceptsValidToken(t *testing.T) {
	signer := auth.NewSigner("test-secret", time.Minute, time.Hour)
	router := newAuthRouter(signer)

	pair, err := signer.IssuePair("user-1", "maria", false)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAuthRejectsRefreshTokenOnAPI(t *testing.T) {
	signer := auth.NewSigner("test-secret", time.Minute, time.Hour)
	router := newAuthRouter(signer)

	pair, err := signer.IssuePair("user-1", "maria", false)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRequireAdminBlocksRegularUsers(t *testing.T) {
	signer := auth.NewSigner("test-secret", time.Minute, time.Hour)
	router := newAuthRouter(signer)

	pair, err := signer.IssuePair("user-1", "maria", false)
	if err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/documents/1", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.Code)
	}

	adminPair, err := signer.IssuePair("admin-1", "root", true)
	if err != nil {
		t.Fatalf("issue admin pair: %v", err)
	}
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/documents/1", nil)
	req.Header.Set("Authorization", "Bearer "+adminPair.Access)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.Code)
	}
}
