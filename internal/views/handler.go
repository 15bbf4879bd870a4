package views

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profileplus/internal/session"
	"profileplus/internal/shared/server/middleware"
	"profileplus/internal/shared/server/respond"
	"profileplus/internal/shared/util"
)

const (
	msgCVPreview     = "The CV will be available for download on the public profile after you save your changes."
	msgCVUnavailable = "File storage is not connected in this demo mode. In a real deployment, the PDF would download here."
	msgCVMissing     = "No CV has been uploaded by the candidate."
)

// Handler serves view resolution and CV downloads.
type Handler struct {
	Resolver *Resolver
}

// NewHandler constructs a Handler.
func NewHandler(r *Resolver) *Handler {
	return &Handler{Resolver: r}
}

// RegisterRoutes attaches view routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/view", h.view)
	rg.GET("/public/profiles/:id/cv", h.downloadCV)
}

func (h *Handler) view(c *gin.Context) {
	st := session.FromGin(c)
	fragment, ok := c.GetQuery("fragment")
	if !ok {
		fragment = st.Location()
	}
	v := h.Resolver.Resolve(c.Request.Context(), fragment, st)
	c.Set(middleware.RouteKindKey, string(v.Kind))
	respond.OK(c, v)
}

func (h *Handler) downloadCV(c *gin.Context) {
	st := session.FromGin(c)
	id := c.Param("id")

	if c.Query("preview") == "true" {
		respond.Error(c, http.StatusConflict, "cv_preview", msgCVPreview, nil)
		return
	}

	p, ok := st.Catalog().Get(id)
	if !ok {
		respond.Error(c, http.StatusNotFound, "not_found", "The requested profile could not be found.", nil)
		return
	}

	switch {
	case p.CVFile != nil:
		contentType := p.CVFile.ContentType
		if contentType == "" {
			contentType = "application/pdf"
		}
		name := fmt.Sprintf("CV-%s.pdf", util.UnderscoreSpaces(p.Name))
		if safe, err := util.SanitizeFileName(name); err == nil {
			name = safe
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", strings.ReplaceAll(name, `"`, "")))
		c.Data(http.StatusOK, contentType, p.CVFile.Data)
	case p.HasCVFile:
		respond.Error(c, http.StatusNotFound, "cv_unavailable", msgCVUnavailable, nil)
	default:
		respond.Error(c, http.StatusNotFound, "cv_missing", msgCVMissing, nil)
	}
}
