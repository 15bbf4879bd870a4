package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"profileplus/internal/extract"
	"profileplus/internal/identity"
	"profileplus/internal/previews"
	"profileplus/internal/profiles"
	"profileplus/internal/routing"
	"profileplus/internal/session"
	"profileplus/internal/shared/server/respond"
	"profileplus/internal/shared/telemetry"
	"profileplus/internal/views"
)

// DefaultCVMaxBytes caps uploaded CV files when no limit is configured.
const DefaultCVMaxBytes = 5 << 20

// Handler serves the signed-in profile editor.
type Handler struct {
	Preview    *previews.Channel
	CVMaxBytes int64
}

// NewHandler constructs a Handler.
func NewHandler(preview *previews.Channel, cvMaxBytes int64) *Handler {
	if cvMaxBytes <= 0 {
		cvMaxBytes = DefaultCVMaxBytes
	}
	return &Handler{Preview: preview, CVMaxBytes: cvMaxBytes}
}

// RegisterRoutes attaches dashboard routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/profile", h.getProfile)
	rg.PUT("/dashboard/profile", h.saveProfile)
	rg.POST("/dashboard/preview", h.preview)
	rg.GET("/dashboard/assistant", h.assistantState)
	rg.POST("/dashboard/assistant/generate", h.generate)
	rg.POST("/dashboard/assistant/reset", h.resetAssistant)
}

type saveResponse struct {
	Profile   profiles.Profile `json:"profile"`
	PublicURL string           `json:"publicUrl"`
}

type previewResponse struct {
	PreviewURL string `json:"previewUrl"`
}

// requireUser writes 401 and returns false when the session has no user.
func requireUser(c *gin.Context) (*session.State, identity.User, bool) {
	st := session.FromGin(c)
	if st == nil {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Please log in to continue.", nil)
		return nil, identity.User{}, false
	}
	user, err := st.RequireUser()
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Please log in to continue.", nil)
		return nil, identity.User{}, false
	}
	return st, user, true
}

func (h *Handler) getProfile(c *gin.Context) {
	st, user, ok := requireUser(c)
	if !ok {
		return
	}
	respond.OK(c, views.DashboardFor(st, user))
}

func (h *Handler) saveProfile(c *gin.Context) {
	st, _, ok := requireUser(c)
	if !ok {
		return
	}
	req, file, err := readProfileRequest(c, "cv", h.CVMaxBytes, extract.MimePDF)
	if err != nil {
		writeFormError(c, err)
		return
	}

	id := st.DraftID()
	current, exists := st.Catalog().Get(id)
	if !exists {
		current = profiles.NewDraft(id)
	}
	next := req.apply(current)
	next.ID = id
	if file != nil {
		next.CVFile = file
	}

	if fieldErrs := profiles.Validate(next); len(fieldErrs) > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Please fill in all required fields.", fieldErrs)
		return
	}

	saved, err := st.SaveProfile(c.Request.Context(), next)
	if err != nil {
		telemetry.Error("profile.save_failed", map[string]any{
			"profile_id": id,
			"session_id": st.ID(),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save profile", nil)
		return
	}
	telemetry.Info("profile.saved", map[string]any{
		"profile_id":  id,
		"session_id":  st.ID(),
		"has_cv_file": saved.HasCVFile,
	})
	respond.OK(c, saveResponse{Profile: saved, PublicURL: routing.PublicProfileFragment(id, false)})
}

// preview writes the submitted draft to the preview slot without saving
// it. Required fields are not enforced so a partial draft can be viewed.
func (h *Handler) preview(c *gin.Context) {
	st, _, ok := requireUser(c)
	if !ok {
		return
	}
	req, file, err := readProfileRequest(c, "cv", h.CVMaxBytes, extract.MimePDF)
	if err != nil {
		writeFormError(c, err)
		return
	}

	id := st.DraftID()
	current, exists := st.Catalog().Get(id)
	if !exists {
		current = profiles.NewDraft(id)
	}
	draft := req.apply(current)
	draft.ID = id
	if file != nil {
		draft.CVFile = file
	}
	if draft.Tier != "" && !draft.Tier.Valid() {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid tier", []profiles.FieldError{{Field: "tier", Issue: "must be one of Free, Pro, Exclusive"}})
		return
	}

	if err := h.Preview.Write(c.Request.Context(), draft); err != nil {
		telemetry.Error("preview.write_failed", map[string]any{
			"profile_id": id,
			"session_id": st.ID(),
			"error":      err.Error(),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to write preview", nil)
		return
	}
	respond.OK(c, previewResponse{PreviewURL: routing.PublicProfileFragment(id, true)})
}

func writeFormError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errFileTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "The uploaded file is too large.", nil)
	case errors.Is(err, errUnsupportedFile):
		respond.Error(c, http.StatusBadRequest, "unsupported_file", "Please upload a PDF file.", nil)
	default:
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
	}
}
