package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reglens/internal/config"
	"reglens/internal/store"
)

// MigrateDraftsCommand creates the migrate-drafts command: copy the
// file-backed wizard drafts into the wizard_drafts table so support staff
// can inspect stuck onboardings through the usual database tooling.
func MigrateDraftsCommand() *cobra.Command {
	var (
		stateDir  string
		dbConnStr string
		cleanup   bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "migrate-drafts",
		Short: "Copy file-backed wizard drafts into the database",
		Long: `Copy every persisted wizard draft from the state directory into the
reglens.wizard_drafts table.

Examples:
  # See what would be migrated
  ./reglens migrate-drafts --dry-run

  # Migrate and remove the files afterwards
  ./reglens migrate-drafts --cleanup`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateDrafts(cmd.Context(), stateDir, dbConnStr, cleanup, dryRun)
		},
	}

	cfg := config.Load()
	cmd.Flags().StringVar(&stateDir, "state-dir", cfg.StateDir, "Directory holding wizard state files")
	cmd.Flags().StringVar(&dbConnStr, "db", cfg.DBConnStr, "PostgreSQL connection string")
	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Delete state files after a successful copy")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List drafts without writing to the database")

	return cmd
}

func runMigrateDrafts(ctx context.Context, stateDir, dbConnStr string, cleanup, dryRun bool) error {
	entries, err := os.ReadDir(stateDir)
	if err != nil {
		return fmt.Errorf("failed to read state directory: %w", err)
	}

	var st *store.Store
	if !dryRun {
		st, err = store.New(dbConnStr)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	migrated := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		accountID := strings.TrimSuffix(name, ".json")
		path := filepath.Join(stateDir, name)

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return fmt.Errorf("failed to read draft %s: %w", name, readErr)
		}
		if !json.Valid(data) {
			fmt.Printf("skipping %s: not valid JSON\n", name)
			continue
		}

		if dryRun {
			fmt.Printf("would migrate %s (%d bytes)\n", accountID, len(data))
			migrated++
			continue
		}

		if saveErr := st.SaveWizardDraft(ctx, accountID, data); saveErr != nil {
			return saveErr
		}
		migrated++
		if cleanup {
			if rmErr := os.Remove(path); rmErr != nil {
				return fmt.Errorf("failed to remove migrated draft %s: %w", name, rmErr)
			}
		}
	}

	fmt.Printf("Migrated %d draft(s).\n", migrated)
	return nil
}
