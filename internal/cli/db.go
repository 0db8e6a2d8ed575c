package cli

import (
	"context"
	"fmt"

	"reglens/internal/store"
)

// RunInitDB handles the 'init-db' command.
func RunInitDB(ctx context.Context, st *store.Store) error {
	if err := st.InitDB(ctx); err != nil {
		return err
	}
	fmt.Println("Database initialized successfully.")
	return nil
}

// RunSeedPlans handles the 'seed-plans' command.
func RunSeedPlans(ctx context.Context, st *store.Store) error {
	if err := st.SeedPlans(ctx); err != nil {
		return err
	}
	plans, err := st.ListPlans(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d plan rows:\n", len(plans))
	for _, p := range plans {
		fmt.Printf("  %-14s %-8s %8d cents\n", p.PlanCode, p.BillingCycle, p.AmountCents)
	}
	return nil
}
