package cli

import (
	"context"
	"flag"
	"fmt"

	"reglens/internal/store"
)

// RunCreateAccount handles the 'create-account' command: bootstrap a
// not-yet-onboarded account for local development.
func RunCreateAccount(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("create-account", flag.ExitOnError)
	email := fs.String("email", "", "Account email (required)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *email == "" {
		fs.Usage()
		return fmt.Errorf("error: --email flag is required")
	}

	accountID, err := st.CreateAccount(ctx, *email)
	if err != nil {
		return err
	}
	fmt.Printf("Created account %s (%s)\n", accountID, *email)
	return nil
}

// RunAccount handles the 'account' command: print an account with its
// country licenses and topic subscriptions.
func RunAccount(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("account", flag.ExitOnError)
	accountID := fs.String("account", "", "Account ID (required)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *accountID == "" {
		fs.Usage()
		return fmt.Errorf("error: --account flag is required")
	}

	account, err := st.GetAccount(ctx, *accountID)
	if err != nil {
		return err
	}

	fmt.Printf("Account:  %s\n", account.AccountID)
	fmt.Printf("Email:    %s\n", account.Email)
	fmt.Printf("Company:  %s (%s, %s)\n", account.CompanyName, account.CompanySize, account.Sector)
	fmt.Printf("Plan:     %s\n", account.Plan)
	if account.OnboardingCompletedAt != nil {
		fmt.Printf("Onboarded: %s\n", account.OnboardingCompletedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Onboarded: no")
	}

	licenses, err := st.ListCountryLicenses(ctx, *accountID)
	if err != nil {
		return err
	}
	fmt.Printf("\nCountries (%d):\n", len(licenses))
	for _, l := range licenses {
		fmt.Printf("  %-4s %s\n", l.CountryCode, l.Status)
	}

	subs, err := st.ListTopicSubscriptions(ctx, *accountID)
	if err != nil {
		return err
	}
	fmt.Printf("\nTopic subscriptions (%d):\n", len(subs))
	for _, sub := range subs {
		fmt.Printf("  [p%d] %-40s %s\n", sub.Priority, sub.Title, sub.Ambit)
	}
	return nil
}

// RunDraft handles the 'draft' command: inspect or delete the server-side
// draft snapshot written by migrate-drafts.
func RunDraft(ctx context.Context, st *store.Store, args []string) error {
	fs := flag.NewFlagSet("draft", flag.ExitOnError)
	accountID := fs.String("account", "", "Account ID (required)")
	remove := fs.Bool("delete", false, "Delete the snapshot instead of printing it")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *accountID == "" {
		fs.Usage()
		return fmt.Errorf("error: --account flag is required")
	}

	if *remove {
		if err := st.DeleteWizardDraft(ctx, *accountID); err != nil {
			return err
		}
		fmt.Printf("Draft snapshot deleted for account %s\n", *accountID)
		return nil
	}

	draft, err := st.GetWizardDraft(ctx, *accountID)
	if err != nil {
		return err
	}
	fmt.Printf("Updated: %s\n%s\n", draft.UpdatedAt.Format("2006-01-02 15:04:05"), draft.State)
	return nil
}
