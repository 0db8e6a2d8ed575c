package cli

import (
	"context"
	"flag"
	"fmt"

	"reglens/internal/finalize"
)

// RunFinalize handles the 'finalize' command: drive the commit protocol
// for an account from the operator console, e.g. to unstick an onboarding
// whose client died after payment.
func RunFinalize(ctx context.Context, orch *finalize.Orchestrator, args []string) error {
	fs := flag.NewFlagSet("finalize", flag.ExitOnError)
	accountID := fs.String("account", "", "Account ID (required)")
	email := fs.String("email", "", "Account email (required for paid plans)")
	sessionID := fs.String("session", "", "Checkout session ID to complete a paid onboarding")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *accountID == "" {
		fs.Usage()
		return fmt.Errorf("error: --account flag is required")
	}

	if *sessionID != "" {
		if err := orch.CompleteCheckout(ctx, *accountID, *sessionID); err != nil {
			return err
		}
		fmt.Println("Checkout verified and onboarding committed.")
		return nil
	}

	result, err := orch.Finalize(ctx, *accountID, *email)
	if err != nil {
		return err
	}
	if result.Completed {
		fmt.Println("Onboarding committed (trial path).")
		return nil
	}
	fmt.Printf("Checkout required. Send the user to:\n%s\n", result.RedirectURL)
	return nil
}
