package gemini

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"

	"profileplus/internal/llm"
)

type fakeModels struct {
	text   string
	err    error
	model  string
	config *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.config = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(f.text, genai.RoleModel)}},
	}, nil
}

func TestAnalyzeCVParsesSchemaResponse(t *testing.T) {
	fake := &fakeModels{text: `{"name":"Ada Lovelace","role":"Analyst","summary":"I write programs.","skills":["Math","Engines"]}`}
	c := &Client{models: fake, model: DefaultModel}

	got, err := c.AnalyzeCV(context.Background(), "cv")
	if err != nil {
		t.Fatalf("AnalyzeCV: %v", err)
	}
	if got.Name != "Ada Lovelace" || got.AboutMe != "I write programs." || len(got.Skills) != 2 {
		t.Fatalf("unexpected analysis %#v", got)
	}
	if fake.model != "gemini-2.5-flash" {
		t.Fatalf("unexpected model %s", fake.model)
	}
	if fake.config.ResponseMIMEType != "application/json" || fake.config.ResponseSchema == nil {
		t.Fatalf("expected JSON schema response config")
	}
}

func TestAnalyzeCVWrapsFailures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeModels
	}{
		{name: "api error", fake: &fakeModels{err: errors.New("429")}},
		{name: "empty text", fake: &fakeModels{text: ""}},
		{name: "bad json", fake: &fakeModels{text: "not json"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{models: tt.fake, model: DefaultModel}
			_, err := c.AnalyzeCV(context.Background(), "cv")
			if !errors.Is(err, llm.ErrAnalysisFailed) {
				t.Fatalf("expected ErrAnalysisFailed, got %v", err)
			}
		})
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(context.Background(), " ", ""); err == nil {
		t.Fatalf("expected error without API key")
	}
}
