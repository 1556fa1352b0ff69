package analyses

import (
	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications/:applicationId/resumes/:resumeId/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	analysis, err := h.Svc.Analyze(
		c.Request.Context(),
		middleware.UserIDFromContext(c),
		c.Param("applicationId"),
		c.Param("resumeId"),
	)
	if err != nil {
		respond.FromError(c, err, "failed to analyze resume")
		return
	}
	respond.OK(c, analysis)
}
