package cli

import (
	"encoding/json"
	"flag"
	"fmt"

	"reglens/internal/wizard"
)

// RunState handles the 'state' command: print the persisted wizard state
// for an account plus the step a reloading client would resume at.
func RunState(wizards *wizard.Store, args []string) error {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	accountID := fs.String("account", "", "Account ID (required)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *accountID == "" {
		fs.Usage()
		return fmt.Errorf("error: --account flag is required")
	}

	state := wizards.Load(*accountID)
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to render state: %w", err)
	}
	fmt.Println(string(data))
	fmt.Printf("Resume step: %s\n", wizard.FirstIncomplete(state))
	return nil
}

// RunResetState handles the 'reset-state' command: explicit start-over.
func RunResetState(wizards *wizard.Store, args []string) error {
	fs := flag.NewFlagSet("reset-state", flag.ExitOnError)
	accountID := fs.String("account", "", "Account ID (required)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}
	if *accountID == "" {
		fs.Usage()
		return fmt.Errorf("error: --account flag is required")
	}

	if err := wizards.Reset(*accountID); err != nil {
		return err
	}
	fmt.Printf("Wizard state cleared for account %s\n", *accountID)
	return nil
}
