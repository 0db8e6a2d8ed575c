package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"reglens/internal/billing"
	"reglens/internal/cli"
	"reglens/internal/config"
	"reglens/internal/finalize"
	"reglens/internal/recommend"
	"reglens/internal/store"
	"reglens/internal/wizard"
)

func main() {
	os.Exit(run())
}

func run() int {
	if len(os.Args) < 2 {
		printUsage()
		return 1
	}

	command := os.Args[1]
	args := os.Args[2:]

	if command == "help" {
		printUsage()
		return 0
	}

	cfg := config.Load()
	ctx := context.Background()

	var err error
	switch command {
	case "init-db", "seed-plans", "create-account", "account", "draft":
		st, stErr := store.New(cfg.DBConnStr)
		if stErr != nil {
			log.Printf("Failed to connect to database: %v", stErr)
			return 1
		}
		defer st.Close()
		switch command {
		case "init-db":
			err = cli.RunInitDB(ctx, st)
		case "seed-plans":
			err = cli.RunSeedPlans(ctx, st)
		case "create-account":
			err = cli.RunCreateAccount(ctx, st, args)
		case "account":
			err = cli.RunAccount(ctx, st, args)
		case "draft":
			err = cli.RunDraft(ctx, st, args)
		}

	case "state", "reset-state":
		wizards, wErr := newWizardStore(cfg)
		if wErr != nil {
			log.Printf("Failed to open wizard state: %v", wErr)
			return 1
		}
		if command == "state" {
			err = cli.RunState(wizards, args)
		} else {
			err = cli.RunResetState(wizards, args)
		}

	case "recommend":
		recommender, rErr := newRecommender(ctx)
		if rErr != nil {
			log.Printf("Failed to initialize AI agent: %v", rErr)
			return 1
		}
		err = cli.RunRecommend(ctx, recommender, args)

	case "finalize":
		st, stErr := store.New(cfg.DBConnStr)
		if stErr != nil {
			log.Printf("Failed to connect to database: %v", stErr)
			return 1
		}
		defer st.Close()
		wizards, wErr := newWizardStore(cfg)
		if wErr != nil {
			log.Printf("Failed to open wizard state: %v", wErr)
			return 1
		}
		checkout := billing.NewClient(cfg.BillingURL, cfg.BillingKey)
		orch := finalize.New(st, checkout, wizards, cfg.SuccessURL, cfg.CancelURL)
		err = cli.RunFinalize(ctx, orch, args)

	case "migrate-drafts":
		cmd := cli.MigrateDraftsCommand()
		cmd.SetArgs(args)
		err = cmd.ExecuteContext(ctx)

	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		return 1
	}

	if err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	return 0
}

func newWizardStore(cfg config.Config) (*wizard.Store, error) {
	backend, err := wizard.NewFileStorage(cfg.StateDir)
	if err != nil {
		return nil, err
	}
	return wizard.NewStore(backend), nil
}

func newRecommender(ctx context.Context) (recommend.Recommender, error) {
	if config.IsMockAIMode() {
		fmt.Println("Running with MOCK AI agent")
		return recommend.NewMockAgent(), nil
	}
	agent, err := recommend.NewAgent(ctx, config.GeminiAPIKey())
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, fmt.Errorf("neither GEMINI_API_KEY nor GOOGLE_API_KEY is set (or use REGLENS_AI_MODE=mock)")
	}
	return agent, nil
}

func printUsage() {
	fmt.Println("RegLens onboarding service - operator commands")
	fmt.Println()
	fmt.Println("Usage: reglens <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init-db                                Create the reglens schema and tables")
	fmt.Println("  seed-plans                             Write the price table into the plan catalog")
	fmt.Println("  create-account --email=<email>         Bootstrap a fresh account for local use")
	fmt.Println("  account --account=<id>                 Print an account with its countries and topics")
	fmt.Println("  draft --account=<id> [--delete]        Inspect or remove a migrated draft snapshot")
	fmt.Println("  state --account=<id>                   Print an account's wizard state and resume step")
	fmt.Println("  reset-state --account=<id>             Clear an account's wizard state (start over)")
	fmt.Println("  recommend --description=... --country=XX [--sector=...] [--max=10]")
	fmt.Println("                                         Run topic classification directly")
	fmt.Println("  finalize --account=<id> [--email=...] [--session=<checkout session>]")
	fmt.Println("                                         Drive the commit protocol for an account")
	fmt.Println("  migrate-drafts [--dry-run] [--cleanup] Copy file-backed drafts into the database")
	fmt.Println("  help                                   Show this help")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  DB_CONN_STRING         PostgreSQL connection string")
	fmt.Println("  REGLENS_STATE_DIR      Wizard state directory (default data/wizard-state)")
	fmt.Println("  GEMINI_API_KEY         Gemini API key (GOOGLE_API_KEY also accepted)")
	fmt.Println("  REGLENS_AI_MODE=mock   Use the offline mock classifier")
	fmt.Println("  BILLING_API_URL        Hosted checkout provider base URL")
}
