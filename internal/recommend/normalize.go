package recommend

import (
	"strings"

	"github.com/google/uuid"

	"reglens/internal/wizard"
)

// providerPayload mirrors the provider's JSON as loosely as it actually
// arrives: identifiers may be missing, relevance is free text, and field
// names do not match the internal shape.
type providerPayload struct {
	Summary      string          `json:"summary"`
	CompanyGuess string          `json:"company_guess"`
	SectorGuess  string          `json:"sector_guess"`
	Topics       []providerTopic `json:"topics"`
}

type providerTopic struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PrimaryAmbit string `json:"primary_ambit"`
	Relevance    string `json:"relevance"`
	Reason       string `json:"reason"`
}

// normalize maps the loose provider payload into the strict internal
// shape. Topics without an identifier get a locally synthesized token so
// list rendering and toggling stay stable across re-renders; entries
// without a title are dropped; unknown relevance falls back to medium.
// maxTopics truncates an over-long response.
func normalize(p providerPayload, maxTopics int) *Analysis {
	out := &Analysis{
		Summary:      strings.TrimSpace(p.Summary),
		CompanyGuess: strings.TrimSpace(p.CompanyGuess),
		SectorGuess:  strings.TrimSpace(p.SectorGuess),
	}
	for _, t := range p.Topics {
		title := strings.TrimSpace(t.Title)
		if title == "" {
			continue
		}
		if maxTopics > 0 && len(out.Topics) >= maxTopics {
			break
		}
		id := strings.TrimSpace(t.ID)
		if id == "" {
			id = "local-" + uuid.NewString()
		}
		out.Topics = append(out.Topics, wizard.TopicRecommendation{
			ID:        id,
			Title:     title,
			Ambit:     strings.TrimSpace(t.PrimaryAmbit),
			Relevance: parseRelevance(t.Relevance),
			Reason:    strings.TrimSpace(t.Reason),
			Selected:  false,
		})
	}
	return out
}

func parseRelevance(s string) wizard.Relevance {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return wizard.RelevanceHigh
	case "low":
		return wizard.RelevanceLow
	default:
		return wizard.RelevanceMedium
	}
}
