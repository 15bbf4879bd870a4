package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"profileplus/internal/session"
	"profileplus/internal/shared/server/middleware"
	"profileplus/internal/shared/server/respond"
)

// Handler wires the contact form to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches contact routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/public/profiles/:id/contact", h.submit)
}

type submitResponse struct {
	CandidateID string `json:"candidateId"`
	Name        string `json:"name"`
	Revealed    bool   `json:"revealed"`
}

func (h *Handler) submit(c *gin.Context) {
	st := session.FromGin(c)
	candidate, ok := st.Catalog().Get(c.Param("id"))
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "The requested profile could not be found.", nil)
		return
	}

	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if err := h.Svc.Submit(c.Request.Context(), candidate, req, st, middleware.RequestIDFromContext(c)); err != nil {
		switch {
		case errors.Is(err, ErrMissingFields), errors.Is(err, ErrInvalidEmail):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to send message", nil)
		}
		return
	}
	respond.OK(c, submitResponse{CandidateID: candidate.ID, Name: candidate.Name, Revealed: true})
}
