package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Agent wraps the Gemini client and model used for topic classification.
type Agent struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewAgent initializes the Gemini client. If the API key is empty, the
// caller receives a nil Agent and no error so that callers can decide how
// to handle missing configuration (e.g. fall back to MockAgent).
func NewAgent(ctx context.Context, apiKey string) (*Agent, error) {
	if apiKey == "" {
		return nil, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.5-flash-preview-09-2025")

	return &Agent{
		client: client,
		model:  model,
	}, nil
}

// Close releases underlying resources.
func (a *Agent) Close() {
	if a == nil || a.client == nil {
		return
	}
	if err := a.client.Close(); err != nil {
		log.Printf("warning: failed to close Gemini client: %v", err)
	}
}

const systemPrompt = `You are a regulatory-intelligence analyst. Given a business description, its sector, and the country whose regulations apply, identify the regulatory topics the business should monitor.

RULES:
1. Only propose topics enforceable in the given country.
2. Each topic gets a "primary_ambit" (e.g. fiscal, labor, environmental, data-protection, consumer, sector-specific) and a "relevance" of exactly "high", "medium" or "low".
3. Respond ONLY with a single, minified JSON object. Do not include markdown ticks, "json", or any other conversational text.
4. The JSON format MUST be: {"summary":"...","company_guess":"...","sector_guess":"...","topics":[{"id":"...","title":"...","primary_ambit":"...","relevance":"...","reason":"..."}]}
5. Return at most the requested number of topics, ordered most relevant first.`

// Recommend asks the model for topic recommendations and normalizes the
// response. A provider failure is returned as-is; partial output is never
// merged into wizard state by callers on error.
func (a *Agent) Recommend(ctx context.Context, req Request) (*Analysis, error) {
	if a == nil || a.model == nil {
		return nil, fmt.Errorf("ai agent is not initialized")
	}

	userPrompt := fmt.Sprintf(
		`Business description: %q, Sector: %q, Country: %q, Max topics: %d`,
		req.Description, req.Sector, req.Country, req.MaxTopics,
	)

	a.model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}

	resp, err := a.model.GenerateContent(ctx, genai.Text(userPrompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from agent: %v", resp)
	}

	part := resp.Candidates[0].Content.Parts[0]
	textPart, ok := part.(genai.Text)
	if !ok {
		return nil, fmt.Errorf("unexpected response type from agent: %T", part)
	}

	log.Printf("AI Agent Raw Response: %s", textPart)

	var payload providerPayload
	cleaned := stripFences(string(textPart))
	if uErr := json.Unmarshal([]byte(cleaned), &payload); uErr != nil {
		return nil, fmt.Errorf("failed to parse agent's JSON response: %w (response was: %s)", uErr, textPart)
	}

	return normalize(payload, req.MaxTopics), nil
}

// stripFences removes markdown code fences the model sometimes wraps its
// JSON in despite the prompt rules.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
