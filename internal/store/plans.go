package store

import (
	"context"
	"fmt"

	"reglens/internal/pricing"
	"reglens/internal/wizard"
)

// PlanRow is one entry of the plan catalog table. The table mirrors the
// in-code price table so support tooling and the billing reconciliation
// jobs can read prices without linking this module.
type PlanRow struct {
	PlanCode     string `db:"plan_code" json:"plan_code"`
	BillingCycle string `db:"billing_cycle" json:"billing_cycle"`
	AmountCents  int64  `db:"amount_cents" json:"amount_cents"`
}

// SeedPlans writes the current price table into the plan catalog.
func (s *Store) SeedPlans(ctx context.Context) error {
	plans := []wizard.Plan{wizard.PlanStarter, wizard.PlanProfessional, wizard.PlanBusiness}
	cycles := []wizard.BillingCycle{wizard.CycleMonthly, wizard.CycleYearly}
	for _, plan := range plans {
		for _, cycle := range cycles {
			price, err := pricing.BasePrice(plan, cycle)
			if err != nil {
				return fmt.Errorf("failed to price %s/%s: %w", plan, cycle, err)
			}
			_, err = s.db.ExecContext(ctx, `
				INSERT INTO reglens.plans (plan_code, billing_cycle, amount_cents)
				VALUES ($1, $2, $3)
				ON CONFLICT (plan_code, billing_cycle)
				DO UPDATE SET amount_cents = EXCLUDED.amount_cents`,
				string(plan), string(cycle), int64(price))
			if err != nil {
				return fmt.Errorf("failed to seed plan %s/%s: %w", plan, cycle, err)
			}
		}
	}
	return nil
}

// ListPlans returns the plan catalog ordered by plan then cycle.
func (s *Store) ListPlans(ctx context.Context) ([]PlanRow, error) {
	var rows []PlanRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT plan_code, billing_cycle, amount_cents
		FROM reglens.plans
		ORDER BY plan_code ASC, billing_cycle ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	return rows, nil
}
