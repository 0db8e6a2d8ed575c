// Package recommend calls the AI topic-classification provider and
// normalizes its loosely-typed payload into the wizard's strict
// TopicRecommendation shape. All "trust but verify" handling of the
// provider lives at this one seam.
package recommend

import (
	"context"

	"reglens/internal/wizard"
)

// Request carries everything the provider needs to classify a business.
// Country matters: it selects the regulatory corpus being matched against.
type Request struct {
	Description string `json:"description"`
	Sector      string `json:"sector"`
	Country     string `json:"country"`
	MaxTopics   int    `json:"max_topics"`
}

// Analysis is the normalized provider response.
type Analysis struct {
	Summary      string                       `json:"summary"`
	CompanyGuess string                       `json:"company_guess,omitempty"`
	SectorGuess  string                       `json:"sector_guess,omitempty"`
	Topics       []wizard.TopicRecommendation `json:"topics"`
}

// Recommender is implemented by the Gemini-backed Agent and by MockAgent
// for offline runs and tests.
type Recommender interface {
	Recommend(ctx context.Context, req Request) (*Analysis, error)
}
