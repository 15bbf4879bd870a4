package gemini

import (
	"context"
	"fmt"
	"log"
	"strings"

	"google.golang.org/genai"

	"profileplus/internal/llm"
)

// DefaultModel is used when LLM_MODEL is empty.
const DefaultModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.CVAnalyzer with the Gemini API.
type Client struct {
	models contentGenerator
	model  string
}

// NewClient constructs a Gemini-backed analyzer.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY is required for gemini")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{models: client.Models, model: model}, nil
}

// responseSchema constrains the model to the four extracted fields.
var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"name": {
			Type:        genai.TypeString,
			Description: "The full name of the candidate.",
		},
		"role": {
			Type:        genai.TypeString,
			Description: "The candidate's most recent or desired job title/role.",
		},
		"summary": {
			Type:        genai.TypeString,
			Description: "A professional summary about the candidate, written in the first person, under 150 words.",
		},
		"skills": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of 5-10 key technical and soft skills extracted from the CV.",
		},
	},
	Required: []string{"name", "role", "summary", "skills"},
}

func (c *Client) AnalyzeCV(ctx context.Context, cvText string) (llm.Analysis, error) {
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(llm.BuildPrompt(cvText)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return llm.Analysis{}, llm.Failed(fmt.Errorf("gemini generate: %w", err))
	}
	if resp.UsageMetadata != nil {
		log.Printf("llm response model=%s prompt_tokens=%d candidates_tokens=%d",
			c.model, resp.UsageMetadata.PromptTokenCount, resp.UsageMetadata.CandidatesTokenCount)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return llm.Analysis{}, llm.Failed(fmt.Errorf("gemini response empty"))
	}
	analysis, err := llm.ParseAnalysis(text)
	if err != nil {
		return llm.Analysis{}, llm.Failed(err)
	}
	return analysis, nil
}

var _ llm.CVAnalyzer = (*Client)(nil)
