package recommend

import (
	"context"
	"fmt"
	"strings"
)

// MockAgent provides simulated classification responses for demos and
// tests without API keys. Patterns are keyword-driven and deliberately
// small; real classification comes from the Gemini-backed Agent.
type MockAgent struct{}

// NewMockAgent creates a mock agent for running without API keys.
func NewMockAgent() *MockAgent {
	return &MockAgent{}
}

// Recommend simulates the provider. It deliberately returns the loose
// provider payload through the same normalization path the real agent
// uses, including topics without identifiers.
func (m *MockAgent) Recommend(ctx context.Context, req Request) (*Analysis, error) {
	lower := strings.ToLower(req.Description + " " + req.Sector)

	payload := providerPayload{
		Summary: fmt.Sprintf("Business operating in %s; monitoring scope derived from the provided description.", req.Country),
	}

	add := func(id, title, ambit, relevance, reason string) {
		payload.Topics = append(payload.Topics, providerTopic{
			ID: id, Title: title, PrimaryAmbit: ambit, Relevance: relevance, Reason: reason,
		})
	}

	switch {
	case strings.Contains(lower, "food") || strings.Contains(lower, "restaurant"):
		payload.SectorGuess = "hospitality"
		add("food-safety", "Food safety and hygiene", "consumer", "high", "Food handling is directly regulated")
		add("", "Allergen labelling", "consumer", "high", "Mandatory labelling rules")
		add("", "Workplace safety", "labor", "medium", "Kitchen staff protections")
	case strings.Contains(lower, "software") || strings.Contains(lower, "saas") || strings.Contains(lower, "data"):
		payload.SectorGuess = "technology"
		add("data-protection", "Personal data protection", "data-protection", "high", "Processing of customer data")
		add("", "Consumer contract terms", "consumer", "medium", "Online terms of service rules")
		add("", "E-invoicing requirements", "fiscal", "low", "Upcoming e-invoicing mandates")
	case strings.Contains(lower, "construction") || strings.Contains(lower, "manufactur"):
		payload.SectorGuess = "industrial"
		add("workplace-safety", "Workplace health and safety", "labor", "high", "On-site risk obligations")
		add("", "Environmental permits", "environmental", "high", "Emissions and waste rules")
		add("", "Equipment certification", "sector-specific", "medium", "Machinery conformity rules")
	default:
		add("corporate-tax", "Corporate tax filings", "fiscal", "high", "Applies to every registered company")
		add("", "Employment contracts", "labor", "medium", "Baseline employer obligations")
		add("", "Data protection basics", "data-protection", "medium", "Customer records handling")
	}

	return normalize(payload, req.MaxTopics), nil
}
