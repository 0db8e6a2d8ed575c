// Package pricing owns the plan/addon price table and checkout line-item
// construction. All amounts are integer cents; totals are exact sums with
// no rounding anywhere.
package pricing

import (
	"fmt"

	"reglens/internal/wizard"
)

// Cents is an exact amount in the account's billing currency.
type Cents int64

// Base prices per plan and cycle. Yearly prices are the discounted annual
// charge, not twelve monthly charges.
var basePrices = map[wizard.Plan]map[wizard.BillingCycle]Cents{
	wizard.PlanStarter: {
		wizard.CycleMonthly: 4900,
		wizard.CycleYearly:  49900,
	},
	wizard.PlanProfessional: {
		wizard.CycleMonthly: 14900,
		wizard.CycleYearly:  149900,
	},
	wizard.PlanBusiness: {
		wizard.CycleMonthly: 39900,
		wizard.CycleYearly:  399900,
	},
}

// Addon identifiers accepted on a plan selection.
const (
	AddonExtraCountry    = "extra_country"
	AddonExtraTopics     = "extra_topics"
	AddonPrioritySupport = "priority_support"
)

var addonPrices = map[string]Cents{
	AddonExtraCountry:    2900,
	AddonExtraTopics:     1900,
	AddonPrioritySupport: 4900,
}

// LineItem is one row of the checkout session: the plan itself plus one
// row per addon.
type LineItem struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	AmountCents int64  `json:"amount_cents"`
	Quantity    int    `json:"quantity"`
}

// BasePrice returns the plan's base price for the cycle. The trial plan
// has no price; asking for one is an error.
func BasePrice(plan wizard.Plan, cycle wizard.BillingCycle) (Cents, error) {
	if plan == wizard.PlanTrial {
		return 0, fmt.Errorf("trial plan has no price")
	}
	cycles, ok := basePrices[plan]
	if !ok {
		return 0, fmt.Errorf("unknown plan: %s", plan)
	}
	price, ok := cycles[cycle]
	if !ok {
		return 0, fmt.Errorf("unknown billing cycle: %s", cycle)
	}
	return price, nil
}

// AddonPrice returns the flat price of one addon.
func AddonPrice(addon string) (Cents, error) {
	price, ok := addonPrices[addon]
	if !ok {
		return 0, fmt.Errorf("unknown addon: %s", addon)
	}
	return price, nil
}

// Total computes base + sum of addon prices for a selection.
func Total(sel wizard.PlanSelection) (Cents, error) {
	total, err := BasePrice(sel.Plan, sel.BillingCycle)
	if err != nil {
		return 0, err
	}
	for _, addon := range sel.Addons {
		price, addonErr := AddonPrice(addon)
		if addonErr != nil {
			return 0, addonErr
		}
		total += price
	}
	return total, nil
}

// Validate checks a plan selection before the confirm step. A trial
// selection is always valid and carries no addons into billing; a paid
// selection must price cleanly.
func Validate(sel wizard.PlanSelection) error {
	switch sel.Plan {
	case wizard.PlanTrial:
		return nil
	case wizard.PlanStarter, wizard.PlanProfessional, wizard.PlanBusiness:
		_, err := Total(sel)
		return err
	default:
		return fmt.Errorf("unknown plan: %s", sel.Plan)
	}
}

// LineItems builds the checkout line-item set for a paid selection: one
// item for the plan, one per addon.
func LineItems(sel wizard.PlanSelection) ([]LineItem, error) {
	base, err := BasePrice(sel.Plan, sel.BillingCycle)
	if err != nil {
		return nil, err
	}
	items := []LineItem{{
		Code:        fmt.Sprintf("%s_%s", sel.Plan, sel.BillingCycle),
		Description: fmt.Sprintf("RegLens %s plan (%s)", sel.Plan, sel.BillingCycle),
		AmountCents: int64(base),
		Quantity:    1,
	}}
	for _, addon := range sel.Addons {
		price, addonErr := AddonPrice(addon)
		if addonErr != nil {
			return nil, addonErr
		}
		items = append(items, LineItem{
			Code:        addon,
			Description: fmt.Sprintf("RegLens addon: %s", addon),
			AmountCents: int64(price),
			Quantity:    1,
		})
	}
	return items, nil
}
