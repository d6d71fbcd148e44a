package bootstrap_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"document-backend/internal/bootstrap"
	"document-backend/internal/shared/config"
)

func buildApp(t *testing.T) *bootstrap.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:            "0",
		Env:             "dev",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		JWTSecret:       "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		TempDir:         t.TempDir(),
		OCRLang:         "spa",
		OCRDPI:          500,
		OCRTimeout:      time.Second,
		TesseractCmd:    "tesseract-not-installed",
		PdftoppmCmd:     "pdftoppm-not-installed",
	}

	app, err := bootstrap.Build(cfg)
	if err != nil {
		t.Fatalf("bootstrap build: %v", err)
	}
	return app
}

func registerAndLogin(t *testing.T, router *gin.Engine) string {
	t.Helper()

	register := map[string]string{
		"username":         "ana",
		"email":            "ana@example.com",
		"password":         "contrasena-larga",
		"password_confirm": "contrasena-larga",
	}
	body, _ := json.Marshal(register)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201 on register, got %d: %s", resp.Code, resp.Body.String())
	}

	login := map[string]string{"username": "ana", "password": "contrasena-larga"}
	body, _ = json.Marshal(login)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 on login, got %d", resp.Code)
	}

	var pair struct {
		Access string `json:"access"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if pair.Access == "" {
		t.Fatalf("expected access token, got empty")
	}
	return pair.Access
}

func TestHealthEndpointReportsMemoryStorage(t *testing.T) {
	app := buildApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var status struct {
		OK      bool   `json:"ok"`
		Storage string `json:"storage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if !status.OK || status.Storage != "memory" {
		t.Fatalf("unexpected health status: %+v", status)
	}
}

func TestDocumentRoutesRequireAuthentication(t *testing.T) {
	app := buildApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", resp.Code)
	}
}

func TestUploadOfUnreadablePDFIsRejectedNotCrashed(t *testing.T) {
	app := buildApp(t)
	token := registerAndLogin(t, app.Router)

	// Not a real PDF: the native pass fails and the OCR fallback cannot run
	// with the stubbed binaries, so extraction degrades to empty text.
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile("file", "falso.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("this is not a pdf")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestStatsForFreshUserAreEmpty(t *testing.T) {
	app := buildApp(t)
	token := registerAndLogin(t, app.Router)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	var stats struct {
		Totals struct {
			TotalDocuments int64  `json:"total_documents"`
			TotalSizeHuman string `json:"total_size_human"`
		} `json:"totals"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats response: %v", err)
	}
	if stats.Totals.TotalDocuments != 0 {
		t.Fatalf("expected 0 documents, got %d", stats.Totals.TotalDocuments)
	}
	if stats.Totals.TotalSizeHuman != "0.0 B" {
		t.Fatalf("unexpected size: %s", stats.Totals.TotalSizeHuman)
	}
	if stats.Username != "ana" {
		t.Fatalf("expected username ana, got %s", stats.Username)
	}
}
