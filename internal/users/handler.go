package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"document-backend/internal/shared/auth"
	"document-backend/internal/shared/server/middleware"
	"document-backend/internal/shared/server/respond"
)

// Handler wires account and token endpoints.
type Handler struct {
	Svc    *Service
	Signer *auth.Signer
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, signer *auth.Signer) *Handler {
	return &Handler{Svc: svc, Signer: signer}
}

// RegisterPublicRoutes attaches the unauthenticated account routes.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/refresh", h.refresh)
}

// RegisterRoutes attaches the authenticated account routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.me)
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.Register(c.Request.Context(), RegisterInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
	})
	if err != nil {
		var regErr *RegistrationError
		if errors.As(err, &regErr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "registration failed", regErr.Fields)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to register user", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"success": true,
		"message": "user created successfully",
		"user":    toProfile(user),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	user, err := h.Svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", ErrInvalidCredentials.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "login failed", nil)
		return
	}

	pair, err := h.Signer.IssuePair(user.ID, user.Username, user.IsStaff)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue tokens", nil)
		return
	}
	respond.JSON(c, http.StatusOK, pair)
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

func (h *Handler) refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Refresh == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "refresh token is required", nil)
		return
	}

	claims, err := h.Signer.Verify(req.Refresh, auth.TypeRefresh)
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "invalid refresh token", nil)
		return
	}

	access, err := h.Signer.IssueAccess(claims.Subject, claims.Username, claims.Admin)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"access": access})
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch profile", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"success": true,
		"user":    toProfile(user),
	})
}
