package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agrovex/campoflow/internal/domain/models"
	"github.com/agrovex/campoflow/internal/service/user"
)

// UserHandler exposes account management over HTTP.
type UserHandler struct {
	svc    *user.Service
	logger *zap.Logger
}

// NewUserHandler constructs the HTTP handler adapter.
func NewUserHandler(svc *user.Service, logger *zap.Logger) *UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserHandler{svc: svc, logger: logger}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Create inserts a new account.
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.Create(c.Request.Context(), currentSession(c), user.CreateInput{
		Username: req.Username,
		Password: req.Password,
		Role:     models.Role(req.Role),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get returns a single account.
func (h *UserHandler) Get(c *gin.Context) {
	record, err := h.svc.GetByID(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// List returns accounts visible to the caller.
func (h *UserHandler) List(c *gin.Context) {
	includeAdmins := c.Query("include_admins") == "true"

	records, err := h.svc.List(c.Request.Context(), currentSession(c), includeAdmins)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
}

// Update applies a partial update.
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	in := user.UpdateInput{Username: req.Username}
	if req.Role != nil {
		role := models.Role(*req.Role)
		in.Role = &role
	}

	if err := h.svc.Update(c.Request.Context(), currentSession(c), c.Param("id"), in); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Delete removes an account permanently.
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), currentSession(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
