package ingest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"document-backend/internal/documents"
	"document-backend/internal/extract"
	"document-backend/internal/ingest"
	"document-backend/internal/shared/telemetry"
)

type fixedExtractor struct {
	result extract.Result
}

func (f fixedExtractor) Extract(ctx context.Context, path string) extract.Result {
	return f.result
}

func newUploadRouter(t *testing.T, result extract.Result) (*gin.Engine, *documents.MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := documents.NewMemoryRepo()
	svc := ingest.NewService(fixedExtractor{result: result}, repo, telemetry.Default(), t.TempDir())
	handler := ingest.NewHandler(svc)

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Set("userName", "ana")
		c.Next()
	})
	handler.RegisterRoutes(api)
	return router, repo
}

func multipartPDF(t *testing.T, fieldName, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fw, err := writer.CreateFormFile(fieldName, fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadEndpointPersistsDocument(t *testing.T) {
	router, repo := newUploadRouter(t, extract.Result{
		Text:   "texto extraido con suficiente contenido",
		Method: extract.MethodTextLayer,
	})

	body, contentType := multipartPDF(t, "file", "informe.pdf", []byte("%PDF-1.4 fake content"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code)

	var created ingest.UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.True(t, created.Success)
	require.NotEmpty(t, created.DocumentID)
	require.Equal(t, "informe.pdf", created.FileName)
	require.Equal(t, documents.MethodNative, created.ExtractionMethod)
	require.NotNil(t, created.ProcessingSeconds)

	doc, err := repo.GetOwned(context.Background(), "user-1", created.DocumentID)
	require.NoError(t, err)
	require.Equal(t, "texto extraido con suficiente contenido", doc.ExtractedText)
}

func TestUploadEndpointRequiresFile(t *testing.T) {
	router, _ := newUploadRouter(t, extract.Result{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	require.Equal(t, "missing_file", errResp.Error.Code)
}

func TestUploadEndpointRejectsNonPDF(t *testing.T) {
	router, _ := newUploadRouter(t, extract.Result{})

	body, contentType := multipartPDF(t, "file", "notas.txt", []byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	require.Equal(t, "unsupported_format", errResp.Error.Code)
}

func TestUploadEndpointReportsInsufficientText(t *testing.T) {
	router, _ := newUploadRouter(t, extract.Result{
		Text:   "corto",
		Method: extract.MethodOCR,
	})

	body, contentType := multipartPDF(t, "file", "escaneo.pdf", []byte("%PDF-1.4 scanned"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	require.Equal(t, "insufficient_text", errResp.Error.Code)
}
