package report

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yeoyun/SpendingAnalysis/internal/analysis"
)

// DefaultModelName is the Gemini model used when no override is configured.
const DefaultModelName = "gemini-2.5-flash"

const generationTemperature = 0.4

// Generator produces structured reports through the Gemini API.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a generator. Credentials come from the environment
// (GEMINI_API_KEY, or the Vertex variables when GOOGLE_GENAI_USE_VERTEXAI is
// set). An empty model falls back to DefaultModelName.
func NewGenerator(ctx context.Context, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	if model == "" {
		model = DefaultModelName
	}
	return &Generator{client: client, model: model}, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string { return g.model }

// Generate builds the prompts for the summary, calls the model with a JSON
// response MIME type and parses the result. Markdown fences are stripped
// before parsing in case the model ignores the no-fences instruction.
func (g *Generator) Generate(ctx context.Context, summary analysis.Summary, mode Mode) (Report, error) {
	userPrompt, err := BuildUserPrompt(summary, mode)
	if err != nil {
		return Report{}, err
	}

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: userPrompt}},
		},
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemPrompt(mode)}},
		},
		Temperature:      genai.Ptr[float32](generationTemperature),
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return Report{}, fmt.Errorf("generate content: %w", err)
	}

	raw := resp.Text()
	if raw == "" {
		return Report{}, fmt.Errorf("empty response from model %s", g.model)
	}

	return ParseModelJSON(raw)
}

// ParseModelJSON decodes the model output into a Report, tolerating markdown
// fences and stray text around the JSON object.
func ParseModelJSON(raw string) (Report, error) {
	clean := cleanModelJSON(raw)

	var rep Report
	if err := json.Unmarshal([]byte(clean), &rep); err != nil {
		return Report{}, fmt.Errorf("unmarshal model JSON: %w", err)
	}
	if len(rep.ThreeLines) == 0 {
		return Report{}, fmt.Errorf("model JSON missing three_lines")
	}
	return rep, nil
}

// cleanModelJSON strips ``` fences and keeps only the outermost JSON object
// when the model wrapped it in extra prose.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
