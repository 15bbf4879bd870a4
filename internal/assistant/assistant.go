package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"profileplus/internal/extract"
	"profileplus/internal/llm"
	"profileplus/internal/profiles"
	"profileplus/internal/shared/metrics"
	"profileplus/internal/shared/telemetry"
)

// Status is the state of the assistant.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

const successMessage = "Profile details generated! Please review and save."

var (
	ErrInFlight      = errors.New("an analysis is already in progress")
	ErrNoInput       = errors.New("Please paste your CV text or upload a PDF file.")
	ErrExtractFailed = errors.New("Could not read text from the uploaded file. Please paste your CV text instead.")
)

// Input is one generate request: CV text or an uploaded file, plus the
// draft the result is merged into.
type Input struct {
	CVText string
	File   *profiles.Attachment
	Draft  profiles.Profile
}

// Snapshot is the observable state of an Assistant.
type Snapshot struct {
	Status  Status            `json:"status"`
	Error   string            `json:"error,omitempty"`
	Message string            `json:"message,omitempty"`
	Draft   *profiles.Profile `json:"draft,omitempty"`
}

// Assistant wraps the CV analyzer in a state machine that refuses to start
// a second analysis while one is running.
type Assistant struct {
	analyzer llm.CVAnalyzer

	mu      sync.Mutex
	status  Status
	errMsg  string
	message string
	draft   *profiles.Profile
}

// New constructs an idle Assistant.
func New(analyzer llm.CVAnalyzer) *Assistant {
	return &Assistant{analyzer: analyzer, status: StatusIdle}
}

// Snapshot returns a copy of the current state.
func (a *Assistant) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Snapshot{Status: a.status, Error: a.errMsg, Message: a.message}
	if a.draft != nil {
		d := a.draft.Clone()
		s.Draft = &d
	}
	return s
}

// Reset returns the assistant to idle. It fails with ErrInFlight while an
// analysis is running.
func (a *Assistant) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusGenerating {
		return ErrInFlight
	}
	a.status = StatusIdle
	a.errMsg = ""
	a.message = ""
	a.draft = nil
	return nil
}

// Generate analyzes the CV and returns in.Draft with the analysis merged in.
func (a *Assistant) Generate(ctx context.Context, in Input) (profiles.Profile, error) {
	if err := a.begin(in); err != nil {
		return profiles.Profile{}, err
	}
	start := time.Now()

	text := in.CVText
	if strings.TrimSpace(text) == "" {
		extracted, err := extract.ExtractTextFromBytes(ctx, in.File.Data, in.File.ContentType, in.File.FileName)
		if err != nil {
			telemetry.Warn("assistant.extract_failed", map[string]any{
				"file_name": in.File.FileName,
				"error":     err,
			})
			a.fail(ErrExtractFailed.Error())
			metrics.IncAnalysisFailed()
			return profiles.Profile{}, ErrExtractFailed
		}
		text = extracted
	}

	analysis, err := a.analyzer.AnalyzeCV(ctx, text)
	metrics.ObserveAnalysisDuration(time.Since(start))
	if err != nil {
		telemetry.Error("assistant.analysis_failed", map[string]any{
			"error":       llm.Cause(err),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		metrics.IncAnalysisFailed()
		if !errors.Is(err, llm.ErrAnalysisFailed) {
			err = llm.Failed(err)
		}
		a.fail(err.Error())
		return profiles.Profile{}, err
	}

	merged := Merge(in.Draft, analysis)
	a.mu.Lock()
	a.status = StatusSuccess
	a.message = successMessage
	d := merged.Clone()
	a.draft = &d
	a.mu.Unlock()

	metrics.IncAnalysisCompleted()
	telemetry.Info("assistant.analysis_complete", map[string]any{
		"duration_ms": time.Since(start).Milliseconds(),
		"skills":      len(merged.Skills),
	})
	return merged, nil
}

func (a *Assistant) begin(in Input) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == StatusGenerating {
		metrics.IncAnalysisRejected()
		return ErrInFlight
	}
	if strings.TrimSpace(in.CVText) == "" && in.File == nil {
		a.status = StatusError
		a.errMsg = ErrNoInput.Error()
		a.message = ""
		return ErrNoInput
	}
	a.status = StatusGenerating
	a.errMsg = ""
	a.message = ""
	metrics.IncAnalysisStarted()
	return nil
}

func (a *Assistant) fail(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.status = StatusError
	a.errMsg = msg
	a.message = ""
}

// Merge overlays the non-empty fields of an analysis onto draft.
func Merge(draft profiles.Profile, analysis llm.Analysis) profiles.Profile {
	out := draft.Clone()
	if s := strings.TrimSpace(analysis.Name); s != "" {
		out.Name = s
	}
	if s := strings.TrimSpace(analysis.Role); s != "" {
		out.Role = s
	}
	if s := strings.TrimSpace(analysis.AboutMe); s != "" {
		out.AboutMe = s
	}
	if skills := profiles.CleanSkills(analysis.Skills); len(skills) > 0 {
		out.Skills = skills
	}
	return out
}
