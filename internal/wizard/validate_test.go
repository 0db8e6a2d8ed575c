package wizard

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDescriptionBounds(t *testing.T) {
	tests := []struct {
		name   string
		length int
		wantOK bool
	}{
		{"one below minimum", 49, false},
		{"exactly minimum", 50, true},
		{"exactly maximum", 500, true},
		{"one above maximum", 501, false},
		{"empty", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateDescription(strings.Repeat("x", tt.length))
			assert.Equal(t, tt.wantOK, result.OK)
		})
	}
}

func TestValidateDescriptionCountsRunes(t *testing.T) {
	// 50 multi-byte characters must pass even though the byte count is higher.
	result := ValidateDescription(strings.Repeat("ñ", 50))
	assert.True(t, result.OK)
}

func TestValidateGeography(t *testing.T) {
	assert.False(t, ValidateGeography(Geography{}).OK)
	assert.True(t, ValidateGeography(Geography{SelectedCountry: "ES"}).OK)
	// Waitlist entries alone do not satisfy the active-country requirement.
	assert.False(t, ValidateGeography(Geography{WaitlistCountries: []string{"PT", "FR"}}).OK)
	// And they never block advancement.
	assert.True(t, ValidateGeography(Geography{SelectedCountry: "ES", WaitlistCountries: []string{"PT", "FR", "DE"}}).OK)
}

func TestValidateTopicAdvance(t *testing.T) {
	state := &WizardState{TopicSelections: topicsFixture(0, 5)}
	assert.False(t, ValidateTopicAdvance(state).OK)

	state.TopicSelections = topicsFixture(1, 5)
	assert.True(t, ValidateTopicAdvance(state).OK)

	state.TopicSelections = topicsFixture(MaxSelectedTopics, MaxSelectedTopics+2)
	assert.True(t, ValidateTopicAdvance(state).OK)
}

func TestValidateAccountIdentity(t *testing.T) {
	ok := AccountIdentity{FullName: "Ada", Email: "ada@example.com", InterfaceLanguage: "en", ContentLanguage: "es"}
	assert.True(t, ValidateAccountIdentity(ok).OK)

	result := ValidateAccountIdentity(AccountIdentity{Email: "not-an-email"})
	assert.False(t, result.OK)
	assert.Contains(t, result.FieldErrors, "full_name")
	assert.Contains(t, result.FieldErrors, "email")
}

func TestValidateCompanyProfile(t *testing.T) {
	assert.True(t, ValidateCompanyProfile(CompanyProfile{CompanyName: "Co", CompanySize: "1-10", Sector: "tech"}).OK)

	result := ValidateCompanyProfile(CompanyProfile{Website: "https://x.example"})
	assert.False(t, result.OK)
	assert.Contains(t, result.FieldErrors, "company_name")
}

func TestCanRequestRecommendationGates(t *testing.T) {
	longEnough := strings.Repeat("x", 50)

	// Length 49 never triggers the adapter; 50 is the minimum that does.
	state := &WizardState{
		BusinessDescription: strings.Repeat("x", 49),
		CompanyProfile:      &CompanyProfile{CompanyName: "Co", CompanySize: "1-10", Sector: "tech"},
		Geography:           &Geography{SelectedCountry: "ES"},
	}
	assert.False(t, CanRequestRecommendation(state))

	state.BusinessDescription = longEnough
	assert.True(t, CanRequestRecommendation(state))

	state.Geography = nil
	assert.False(t, CanRequestRecommendation(state))

	state.Geography = &Geography{SelectedCountry: "ES"}
	state.CompanyProfile = nil
	assert.False(t, CanRequestRecommendation(state))
}

func TestRelevanceSubscriptionPriority(t *testing.T) {
	assert.Equal(t, 1, RelevanceHigh.SubscriptionPriority())
	assert.Equal(t, 2, RelevanceMedium.SubscriptionPriority())
	assert.Equal(t, 3, RelevanceLow.SubscriptionPriority())
	assert.Equal(t, 2, Relevance("weird").SubscriptionPriority())
}
