package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrAnalysisFailed is the user-facing failure of a CV analysis. Provider
// errors are wrapped so that Error() returns this message unchanged.
var ErrAnalysisFailed = errors.New("Failed to analyze CV. Please check the text and try again.")

// CVAnalyzer extracts profile fields from raw CV text.
type CVAnalyzer interface {
	AnalyzeCV(ctx context.Context, cvText string) (Analysis, error)
}

// Analysis is the partial profile returned by an analyzer. Empty fields
// mean the analyzer had nothing to offer for them.
type Analysis struct {
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	AboutMe string   `json:"aboutMe"`
	Skills  []string `json:"skills"`
}

type analysisError struct {
	cause error
}

func (e *analysisError) Error() string        { return ErrAnalysisFailed.Error() }
func (e *analysisError) Unwrap() []error      { return []error{ErrAnalysisFailed, e.cause} }
func (e *analysisError) Is(target error) bool { return target == ErrAnalysisFailed }

// Failed wraps a provider error as an analysis failure.
func Failed(cause error) error {
	if cause == nil {
		cause = errors.New("unknown error")
	}
	return &analysisError{cause: cause}
}

// Cause returns the provider error behind an analysis failure, or err itself.
func Cause(err error) error {
	var ae *analysisError
	if errors.As(err, &ae) {
		return ae.cause
	}
	return err
}

// BuildPrompt renders the extraction instruction around cvText.
func BuildPrompt(cvText string) string {
	var b strings.Builder
	b.WriteString("Analyze the following CV text and extract the candidate's information according to the provided JSON schema. ")
	b.WriteString("Create a compelling professional summary.\n\n")
	b.WriteString("Return a JSON object with the keys name (full name), role (most recent or desired job title), ")
	b.WriteString("summary (first person, under 150 words) and skills (5 to 10 key technical and soft skills).\n\n")
	b.WriteString("CV TEXT:\n---\n")
	b.WriteString(cvText)
	b.WriteString("\n---")
	return b.String()
}

type rawAnalysis struct {
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Summary string   `json:"summary"`
	Skills  []string `json:"skills"`
}

// ParseAnalysis decodes the model's JSON answer. The model calls the
// about-me text "summary".
func ParseAnalysis(raw string) (Analysis, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var r rawAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &r); err != nil {
		return Analysis{}, fmt.Errorf("decode analysis: %w", err)
	}
	return Analysis{
		Name:    strings.TrimSpace(r.Name),
		Role:    strings.TrimSpace(r.Role),
		AboutMe: strings.TrimSpace(r.Summary),
		Skills:  r.Skills,
	}, nil
}
