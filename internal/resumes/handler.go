package resumes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the resume service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/applications/:applicationId/resumes", h.list)
	rg.POST("/applications/:applicationId/resumes/generate", h.generate)
	rg.POST("/applications/:applicationId/resumes/import", h.importResume)
	rg.GET("/resumes/cooldown", h.cooldown)
	rg.GET("/resumes/:resumeId", h.get)
	rg.DELETE("/resumes/:resumeId", h.delete)
	rg.GET("/resumes/:resumeId/pdf", h.pdf)
}

type generateRequest struct {
	JobDescription string `json:"jobDescription"`
	CustomPrompt   string `json:"customPrompt"`
}

type importRequest struct {
	Content json.RawMessage `json:"content"`
}

// VersionResponse is the JSON shape of a stored version.
type VersionResponse struct {
	ID               string          `json:"id"`
	JobApplicationID string          `json:"jobApplicationId"`
	Version          int             `json:"version"`
	Source           string          `json:"source"`
	Content          json.RawMessage `json:"content"`
	Analysis         *Analysis       `json:"analysis,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// NewVersionResponse converts a Version for output.
func NewVersionResponse(v Version) VersionResponse {
	return VersionResponse{
		ID:               v.ID,
		JobApplicationID: v.JobApplicationID,
		Version:          v.Version,
		Source:           v.Source,
		Content:          json.RawMessage(v.Content),
		Analysis:         v.Analysis,
		CreatedAt:        v.CreatedAt,
	}
}

func (h *Handler) list(c *gin.Context) {
	versions, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("applicationId"))
	if err != nil {
		respond.FromError(c, err, "failed to list resumes")
		return
	}
	items := make([]VersionResponse, 0, len(versions))
	for _, v := range versions {
		items = append(items, NewVersionResponse(v))
	}
	respond.OK(c, gin.H{"items": items})
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid JSON body", nil)
			return
		}
	}
	v, err := h.Svc.Generate(c.Request.Context(), GenerateParams{
		UserID:             middleware.UserIDFromContext(c),
		JobApplicationID:   c.Param("applicationId"),
		JobDescription:     req.JobDescription,
		CustomInstructions: req.CustomPrompt,
	})
	if err != nil {
		respond.FromError(c, err, "failed to generate resume")
		return
	}
	respond.Created(c, NewVersionResponse(v))
}

// importResume accepts content either as a JSON object or as a string holding one.
func (h *Handler) importResume(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Content) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "content is required", nil)
		return
	}
	raw := string(req.Content)
	var asString string
	if err := json.Unmarshal(req.Content, &asString); err == nil {
		raw = asString
	}
	v, err := h.Svc.Import(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("applicationId"), raw)
	if err != nil {
		respond.FromError(c, err, "failed to import resume")
		return
	}
	respond.Created(c, NewVersionResponse(v))
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("resumeId"))
	if err != nil {
		respond.FromError(c, err, "failed to load resume")
		return
	}
	respond.OK(c, NewVersionResponse(v))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("resumeId")); err != nil {
		respond.FromError(c, err, "failed to delete resume")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) pdf(c *gin.Context) {
	v, data, err := h.Svc.RenderPDF(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("resumeId"))
	if err != nil {
		respond.FromError(c, err, "failed to render resume")
		return
	}
	respond.Attachment(c, "application/pdf", fmt.Sprintf("resume-v%d.pdf", v.Version), data)
}

func (h *Handler) cooldown(c *gin.Context) {
	status, err := h.Svc.Cooldown(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.FromError(c, err, "failed to load cooldown")
		return
	}
	respond.OK(c, status)
}
