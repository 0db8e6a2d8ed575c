package recommend

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reglens/internal/wizard"
)

func TestNormalizeSynthesizesMissingIDs(t *testing.T) {
	payload := providerPayload{
		Summary: "A summary.",
		Topics: []providerTopic{
			{ID: "srv-1", Title: "Has an ID", PrimaryAmbit: "fiscal", Relevance: "high"},
			{Title: "No ID", PrimaryAmbit: "labor", Relevance: "low"},
		},
	}

	out := normalize(payload, 10)
	require.Len(t, out.Topics, 2)
	assert.Equal(t, "srv-1", out.Topics[0].ID)
	assert.True(t, strings.HasPrefix(out.Topics[1].ID, "local-"))
	assert.NotEmpty(t, strings.TrimPrefix(out.Topics[1].ID, "local-"))

	// Synthesized IDs are unique across calls on identical input.
	again := normalize(payload, 10)
	assert.NotEqual(t, out.Topics[1].ID, again.Topics[1].ID)
}

func TestNormalizeRelevanceFallsBackToMedium(t *testing.T) {
	payload := providerPayload{Topics: []providerTopic{
		{Title: "A", Relevance: "HIGH"},
		{Title: "B", Relevance: "banana"},
		{Title: "C", Relevance: ""},
		{Title: "D", Relevance: "low"},
	}}

	out := normalize(payload, 10)
	require.Len(t, out.Topics, 4)
	assert.Equal(t, wizard.RelevanceHigh, out.Topics[0].Relevance)
	assert.Equal(t, wizard.RelevanceMedium, out.Topics[1].Relevance)
	assert.Equal(t, wizard.RelevanceMedium, out.Topics[2].Relevance)
	assert.Equal(t, wizard.RelevanceLow, out.Topics[3].Relevance)
}

func TestNormalizeDropsUntitledAndTruncates(t *testing.T) {
	payload := providerPayload{Topics: []providerTopic{
		{Title: "  "},
		{Title: "One"},
		{Title: "Two"},
		{Title: "Three"},
	}}

	out := normalize(payload, 2)
	require.Len(t, out.Topics, 2)
	assert.Equal(t, "One", out.Topics[0].Title)
	assert.Equal(t, "Two", out.Topics[1].Title)
}

func TestNormalizeNothingSelectedByDefault(t *testing.T) {
	out := normalize(providerPayload{Topics: []providerTopic{{Title: "A"}}}, 10)
	for _, topic := range out.Topics {
		assert.False(t, topic.Selected)
	}
}

func TestStripFences(t *testing.T) {
	raw := "```json\n{\"summary\":\"ok\"}\n```"
	assert.Equal(t, `{"summary":"ok"}`, stripFences(raw))
	assert.Equal(t, `{"summary":"ok"}`, stripFences(`{"summary":"ok"}`))
}

func TestMockAgentRespectsMaxTopics(t *testing.T) {
	agent := NewMockAgent()
	analysis, err := agent.Recommend(context.Background(), Request{
		Description: "We run a software platform processing customer data for small retailers.",
		Sector:      "technology",
		Country:     "ES",
		MaxTopics:   2,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, analysis.Summary)
	assert.LessOrEqual(t, len(analysis.Topics), 2)
	for _, topic := range analysis.Topics {
		assert.NotEmpty(t, topic.ID, "every normalized topic carries an ID")
		assert.NotEmpty(t, topic.Title)
	}
}
