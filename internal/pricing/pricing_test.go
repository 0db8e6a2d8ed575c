package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reglens/internal/wizard"
)

func TestTotalProfessionalYearlyWithAddon(t *testing.T) {
	base, err := BasePrice(wizard.PlanProfessional, wizard.CycleYearly)
	require.NoError(t, err)
	addon, err := AddonPrice(AddonExtraCountry)
	require.NoError(t, err)

	total, err := Total(wizard.PlanSelection{
		Plan:         wizard.PlanProfessional,
		BillingCycle: wizard.CycleYearly,
		Addons:       []string{AddonExtraCountry},
	})
	require.NoError(t, err)
	assert.Equal(t, base+addon, total)
}

func TestTotalAddonsAreAdditive(t *testing.T) {
	base, _ := BasePrice(wizard.PlanStarter, wizard.CycleMonthly)
	a1, _ := AddonPrice(AddonExtraTopics)
	a2, _ := AddonPrice(AddonPrioritySupport)

	total, err := Total(wizard.PlanSelection{
		Plan:         wizard.PlanStarter,
		BillingCycle: wizard.CycleMonthly,
		Addons:       []string{AddonExtraTopics, AddonPrioritySupport},
	})
	require.NoError(t, err)
	assert.Equal(t, base+a1+a2, total)
}

func TestTrialHasNoPrice(t *testing.T) {
	_, err := BasePrice(wizard.PlanTrial, wizard.CycleMonthly)
	assert.Error(t, err)

	// But a trial selection is always valid.
	assert.NoError(t, Validate(wizard.PlanSelection{Plan: wizard.PlanTrial}))
}

func TestValidateRejectsUnknowns(t *testing.T) {
	assert.Error(t, Validate(wizard.PlanSelection{Plan: "platinum", BillingCycle: wizard.CycleMonthly}))
	assert.Error(t, Validate(wizard.PlanSelection{Plan: wizard.PlanStarter, BillingCycle: "weekly"}))
	assert.Error(t, Validate(wizard.PlanSelection{
		Plan:         wizard.PlanStarter,
		BillingCycle: wizard.CycleMonthly,
		Addons:       []string{"jetpack"},
	}))
}

func TestLineItems(t *testing.T) {
	items, err := LineItems(wizard.PlanSelection{
		Plan:         wizard.PlanProfessional,
		BillingCycle: wizard.CycleMonthly,
		Addons:       []string{AddonExtraCountry},
	})
	require.NoError(t, err)
	require.Len(t, items, 2)

	base, _ := BasePrice(wizard.PlanProfessional, wizard.CycleMonthly)
	assert.Equal(t, "professional_monthly", items[0].Code)
	assert.Equal(t, int64(base), items[0].AmountCents)
	assert.Equal(t, 1, items[0].Quantity)

	addon, _ := AddonPrice(AddonExtraCountry)
	assert.Equal(t, AddonExtraCountry, items[1].Code)
	assert.Equal(t, int64(addon), items[1].AmountCents)
}

func TestLineItemsSingleItemNoAddons(t *testing.T) {
	items, err := LineItems(wizard.PlanSelection{
		Plan:         wizard.PlanProfessional,
		BillingCycle: wizard.CycleMonthly,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	base, _ := BasePrice(wizard.PlanProfessional, wizard.CycleMonthly)
	assert.Equal(t, int64(base), items[0].AmountCents)
}
