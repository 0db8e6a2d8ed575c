// Web server for the RegLens onboarding API.
package main

import (
	"context"
	"flag"
	"log"

	"reglens/internal/billing"
	"reglens/internal/config"
	"reglens/internal/finalize"
	"reglens/internal/httpapi"
	"reglens/internal/identity"
	"reglens/internal/recommend"
	"reglens/internal/store"
	"reglens/internal/wizard"
)

func main() {
	cfg := config.Load()

	addr := flag.String("addr", cfg.ListenAddr, "Listen address")
	flag.Parse()

	ctx := context.Background()

	st, err := store.New(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer st.Close()

	backend, err := wizard.NewFileStorage(cfg.StateDir)
	if err != nil {
		log.Fatalf("opening wizard state directory: %v", err)
	}
	wizards := wizard.NewStore(backend)

	var recommender recommend.Recommender
	if config.IsMockAIMode() {
		log.Println("Running with MOCK AI agent")
		recommender = recommend.NewMockAgent()
	} else {
		agent, agentErr := recommend.NewAgent(ctx, config.GeminiAPIKey())
		if agentErr != nil {
			log.Fatalf("initializing AI agent: %v", agentErr)
		}
		if agent == nil {
			log.Fatal("neither GEMINI_API_KEY nor GOOGLE_API_KEY is set (or use REGLENS_AI_MODE=mock)")
		}
		defer agent.Close()
		recommender = agent
	}

	checkout := billing.NewClient(cfg.BillingURL, cfg.BillingKey)
	orchestrator := finalize.New(st, checkout, wizards, cfg.SuccessURL, cfg.CancelURL)

	// The hosted auth service validates tokens in production; the dev
	// resolver stands in until that integration is configured.
	provider := identity.NewStoreProvider(st, identity.DevTokenResolver)

	server := httpapi.NewServer(wizards, provider, recommender, orchestrator)
	router := server.Router(cfg.CORSOrigins)

	log.Printf("RegLens onboarding API listening on %s", *addr)
	if err := router.Run(*addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
