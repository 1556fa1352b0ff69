package profiles

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/profile/prompt", h.getPrompt)
	rg.PUT("/profile/prompt", h.putPrompt)
}

type promptPayload struct {
	CustomPrompt string `json:"customPrompt"`
}

func (h *Handler) getPrompt(c *gin.Context) {
	prompt, err := h.Svc.CustomPrompt(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.FromError(c, err, "failed to load prompt")
		return
	}
	respond.OK(c, promptPayload{CustomPrompt: prompt})
}

func (h *Handler) putPrompt(c *gin.Context) {
	var req promptPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	if err := h.Svc.SaveCustomPrompt(c.Request.Context(), userID, req.CustomPrompt); err != nil {
		respond.FromError(c, err, "failed to save prompt")
		return
	}
	respond.OK(c, req)
}
