package dashboard

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"profileplus/internal/assistant"
	"profileplus/internal/extract"
	"profileplus/internal/llm"
	"profileplus/internal/profiles"
	"profileplus/internal/shared/server/respond"
	"profileplus/internal/views"
)

type generateRequest struct {
	CVText string          `json:"cvText"`
	Draft  *profileRequest `json:"draft"`
}

type generateResponse struct {
	Assistant assistant.Snapshot `json:"assistant"`
	Draft     profiles.Profile   `json:"draft"`
}

func (h *Handler) assistantState(c *gin.Context) {
	st, _, ok := requireUser(c)
	if !ok {
		return
	}
	respond.OK(c, st.Assistant().Snapshot())
}

// generate runs the CV analysis. The text comes from cvText, an uploaded
// "file" part (PDF or DOCX), or the CV already attached to the saved
// profile, in that order. The result is merged into the submitted draft,
// or into the current dashboard record when no draft is sent.
func (h *Handler) generate(c *gin.Context) {
	st, user, ok := requireUser(c)
	if !ok {
		return
	}

	var req generateRequest
	var file *profiles.Attachment
	if isMultipart(c) {
		if err := parseMultipart(c, h.CVMaxBytes); err != nil {
			writeFormError(c, err)
			return
		}
		req.CVText = c.PostForm("cvText")
		f, err := readAttachment(c, "file", h.CVMaxBytes, extract.MimePDF, extract.MimeDOCX, extract.MimePlain)
		if err != nil {
			writeFormError(c, err)
			return
		}
		file = f
	} else if err := c.ShouldBindJSON(&req); err != nil {
		writeFormError(c, errBadBody)
		return
	}

	base := views.DashboardFor(st, user).Profile
	draft := base
	if req.Draft != nil {
		draft = req.Draft.apply(base)
		draft.ID = base.ID
	}
	if file == nil && strings.TrimSpace(req.CVText) == "" && base.CVFile != nil {
		file = base.CVFile
	}

	merged, err := st.Assistant().Generate(c.Request.Context(), assistant.Input{
		CVText: req.CVText,
		File:   file,
		Draft:  draft,
	})
	if err != nil {
		switch {
		case errors.Is(err, assistant.ErrInFlight):
			respond.Error(c, http.StatusConflict, "analysis_in_flight", "An analysis is already running. Please wait for it to finish.", nil)
		case errors.Is(err, assistant.ErrNoInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", assistant.ErrNoInput.Error(), nil)
		case errors.Is(err, assistant.ErrExtractFailed):
			respond.Error(c, http.StatusUnprocessableEntity, "extract_failed", assistant.ErrExtractFailed.Error(), nil)
		case errors.Is(err, llm.ErrAnalysisFailed):
			respond.Error(c, http.StatusBadGateway, "analysis_failed", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
		}
		return
	}
	respond.OK(c, generateResponse{Assistant: st.Assistant().Snapshot(), Draft: merged})
}

// resetAssistant returns the assistant to idle.
func (h *Handler) resetAssistant(c *gin.Context) {
	st, _, ok := requireUser(c)
	if !ok {
		return
	}
	if err := st.Assistant().Reset(); err != nil {
		if errors.Is(err, assistant.ErrInFlight) {
			respond.Error(c, http.StatusConflict, "analysis_in_flight", "An analysis is already running. Please wait for it to finish.", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to reset assistant", nil)
		return
	}
	respond.OK(c, st.Assistant().Snapshot())
}
