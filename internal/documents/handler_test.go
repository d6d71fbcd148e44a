package documents_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"document-backend/internal/documents"
	"document-backend/internal/shared/server/middleware"
	"document-backend/internal/shared/telemetry"
)

func newDocumentsRouter(t *testing.T, repo documents.Repo, userID, username string, admin bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := documents.NewHandler(documents.NewService(repo, telemetry.Default()))

	router := gin.New()
	api := router.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Set("userName", username)
		c.Set("isAdmin", admin)
		c.Next()
	})
	handler.RegisterRoutes(api)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.RequireAdmin())
	handler.RegisterAdminRoutes(adminGroup)
	return router
}

func seedRepo(t *testing.T, repo documents.Repo, docs ...documents.Document) {
	t.Helper()
	for _, doc := range docs {
		if doc.CreatedAt.IsZero() {
			doc.CreatedAt = time.Now().UTC()
			doc.UpdatedAt = doc.CreatedAt
		}
		require.NoError(t, repo.Create(context.Background(), doc))
	}
}

func TestListEndpointReturnsEnvelope(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedRepo(t, repo,
		documents.Document{ID: "d1", UserID: "u1", OwnerUsername: "ana", FileName: "a.pdf", SizeBytes: 2048, ExtractedText: "texto de prueba suficiente", ExtractionMethod: documents.MethodNative},
		documents.Document{ID: "d2", UserID: "u2", OwnerUsername: "beto", FileName: "b.pdf", SizeBytes: 1024, ExtractedText: "texto de otro usuario", ExtractionMethod: documents.MethodOCR},
	)
	router := newDocumentsRouter(t, repo, "u1", "ana", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var body documents.ListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Results, 1)
	require.Equal(t, "d1", body.Results[0].ID)
	require.Equal(t, "2.0 KB", body.Results[0].SizeHuman)
	require.Equal(t, 1, body.Pagination.TotalCount)
	require.Equal(t, 10, body.Pagination.PageSize)
}

func TestSearchEndpointRequiresTerm(t *testing.T) {
	repo := documents.NewMemoryRepo()
	router := newDocumentsRouter(t, repo, "u1", "ana", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/search", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestSearchEndpointGlobalScope(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedRepo(t, repo,
		documents.Document{ID: "d1", UserID: "u1", OwnerUsername: "ana", FileName: "a.pdf", ExtractedText: "contenido propio del usuario", ExtractionMethod: documents.MethodNative},
		documents.Document{ID: "d2", UserID: "u2", OwnerUsername: "beto", FileName: "b.pdf", ExtractedText: "contenido ajeno relevante", ExtractionMethod: documents.MethodNative},
	)
	router := newDocumentsRouter(t, repo, "u1", "ana", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/search?q=contenido", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var personal documents.SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&personal))
	require.Equal(t, 1, personal.Search.ResultsFound)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/search?q=contenido&global=true", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var global documents.SearchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&global))
	require.Equal(t, 2, global.Search.ResultsFound)
	require.True(t, global.Search.Global)
	require.Equal(t, "contenido", global.Search.Term)
}

func TestDetailEndpointHidesForeignDocuments(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedRepo(t, repo,
		documents.Document{ID: "d2", UserID: "u2", OwnerUsername: "beto", FileName: "b.pdf", ExtractedText: "texto de otro usuario", ExtractionMethod: documents.MethodNative},
	)
	router := newDocumentsRouter(t, repo, "u1", "ana", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/d2", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusNotFound, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/global/d2", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var body documents.DetailResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "beto", body.Owner.Username)
}

func TestDeleteEndpointReturnsConfirmation(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedRepo(t, repo,
		documents.Document{ID: "d1", UserID: "u1", OwnerUsername: "ana", FileName: "informe.pdf", ExtractedText: "texto de prueba suficiente", ExtractionMethod: documents.MethodNative},
	)
	router := newDocumentsRouter(t, repo, "u1", "ana", false)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/documents/d1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var body documents.DeleteResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Success)
	require.Equal(t, "informe.pdf", body.DeletedDocument.FileName)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/documents/d1", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStatsEndpoint(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedRepo(t, repo,
		documents.Document{ID: "d1", UserID: "u1", OwnerUsername: "ana", FileName: "a.pdf", SizeBytes: 1024, ExtractedText: "texto de prueba suficiente", ExtractionMethod: documents.MethodNative},
		documents.Document{ID: "d2", UserID: "u1", OwnerUsername: "ana", FileName: "b.pdf", SizeBytes: 2048, ExtractedText: "segundo texto de prueba", ExtractionMethod: documents.MethodOCR},
	)
	router := newDocumentsRouter(t, repo, "u1", "ana", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/documents/stats", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var body documents.StatsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, int64(2), body.Totals.TotalDocuments)
	require.Equal(t, int64(3072), body.Totals.TotalSizeBytes)
	require.Equal(t, "3.0 KB", body.Totals.TotalSizeHuman)
	require.Equal(t, "ana", body.Username)
}

func TestAdminRoutesRequireAdminClaim(t *testing.T) {
	repo := documents.NewMemoryRepo()
	seedRepo(t, repo,
		documents.Document{ID: "d1", UserID: "u1", OwnerUsername: "ana", FileName: "a.pdf", ExtractedText: "texto de prueba suficiente", ExtractionMethod: documents.MethodNative},
	)

	plain := newDocumentsRouter(t, repo, "u1", "ana", false)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/documents/d1/restore", nil)
	resp := httptest.NewRecorder()
	plain.ServeHTTP(resp, req)
	require.Equal(t, http.StatusForbidden, resp.Code)

	require.NoError(t, repo.SoftDelete(context.Background(), "u1", "d1", time.Now().UTC()))

	admin := newDocumentsRouter(t, repo, "admin-1", "root", true)
	req = httptest.NewRequest(http.MethodPost, "/api/v1/admin/documents/d1/restore", nil)
	resp = httptest.NewRecorder()
	admin.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var restored documents.DetailResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&restored))
	require.False(t, restored.Deleted)

	req = httptest.NewRequest(http.MethodDelete, "/api/v1/admin/documents/d1/permanent", nil)
	resp = httptest.NewRecorder()
	admin.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	_, err := repo.GetAny(context.Background(), "d1")
	require.ErrorIs(t, err, documents.ErrNotFound)
}
