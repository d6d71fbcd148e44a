package documents

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"document-backend/internal/shared/server/middleware"
	"document-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the authenticated router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/documents/search", h.search)
	rg.GET("/documents/stats", h.stats)
	rg.GET("/documents/global/:id", h.globalDetail)
	rg.GET("/documents/:id", h.detail)
	rg.DELETE("/documents/:id", h.remove)
}

// RegisterAdminRoutes attaches the administrative restore and hard-delete
// routes; the group must already enforce the admin claim.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/restore", h.restore)
	rg.DELETE("/documents/:id/permanent", h.hardDelete)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	q := ListQuery{
		Method:   strings.TrimSpace(c.Query("method")),
		FileName: strings.TrimSpace(c.Query("file_name")),
	}
	q.Page, q.PageSize = pageParams(c)
	q.OrderBy, q.Descending = orderingParam(c)

	if v := c.Query("created_from"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid created_from date", nil)
			return
		}
		q.CreatedFrom = &t
	}
	if v := c.Query("created_to"); v != "" {
		t, err := parseTimeParam(v)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid created_to date", nil)
			return
		}
		q.CreatedTo = &t
	}

	resp, err := h.Svc.List(c.Request.Context(), userID, q)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list documents", nil)
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) search(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	global := strings.EqualFold(c.Query("global"), "true")

	var q SearchQuery
	q.Page, q.PageSize = pageParams(c)
	q.OrderBy, q.Descending = orderingParam(c)

	resp, err := h.Svc.Search(c.Request.Context(), userID, global, c.Query("q"), q)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingQuery):
			respond.Error(c, http.StatusBadRequest, "validation_error", `search parameter "q" is required`, nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "search failed", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) stats(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	username := middleware.UsernameFromContext(c)

	resp, err := h.Svc.Stats(c.Request.Context(), userID, username)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to compute statistics", nil)
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) detail(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	resp, err := h.Svc.Detail(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondDocumentError(c, err, "failed to fetch document")
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) globalDetail(c *gin.Context) {
	resp, err := h.Svc.GlobalDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDocumentError(c, err, "failed to fetch document")
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) remove(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	username := middleware.UsernameFromContext(c)

	resp, err := h.Svc.Delete(c.Request.Context(), userID, username, c.Param("id"))
	if err != nil {
		respondDocumentError(c, err, "failed to delete document")
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) restore(c *gin.Context) {
	username := middleware.UsernameFromContext(c)

	resp, err := h.Svc.Restore(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		respondDocumentError(c, err, "failed to restore document")
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) hardDelete(c *gin.Context) {
	username := middleware.UsernameFromContext(c)

	resp, err := h.Svc.HardDelete(c.Request.Context(), username, c.Param("id"))
	if err != nil {
		respondDocumentError(c, err, "failed to delete document")
		return
	}
	respond.JSON(c, http.StatusOK, resp)
}

func respondDocumentError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
}

func pageParams(c *gin.Context) (int, int) {
	page := 1
	size := defaultPageSize
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}
	if v := c.Query("page_size"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			size = parsed
		}
	}
	return normalizePage(page, size)
}

// orderingParam reads an ordering field with an optional leading minus for
// descending order, defaulting to newest-first.
func orderingParam(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.Query("ordering"))
	if raw == "" {
		return "created_at", true
	}
	descending := strings.HasPrefix(raw, "-")
	return strings.TrimPrefix(raw, "-"), descending
}

func parseTimeParam(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}
