package tokens

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cutline/internal/pkg/response"
)

// Handler exposes the device token endpoints. Registration is the
// write that triggers cross-account reconciliation.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/notifications/device-tokens", h.RegisterDeviceToken)
	rg.DELETE("/notifications/device-tokens", h.RemoveDeviceToken)
}

func (h *Handler) RegisterDeviceToken(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req RegisterDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.service.RegisterToken(c.Request.Context(), userID, req.Token); err != nil {
		response.Error(c, http.StatusInternalServerError, "REGISTER_FAILED", "Failed to register device token")
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"status": "registered"})
}

func (h *Handler) RemoveDeviceToken(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "User not authenticated")
		return
	}

	var req RemoveDeviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	if err := h.service.RemoveToken(c.Request.Context(), userID, req.Token); err != nil {
		response.Error(c, http.StatusInternalServerError, "REMOVE_FAILED", "Failed to remove device token")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "removed"})
}
