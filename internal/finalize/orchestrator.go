// Package finalize turns accumulated wizard state into backend records.
// The trial path commits everything synchronously; the paid path persists
// the profile, redirects into hosted checkout, and commits the rest only
// after payment is independently re-verified on return.
package finalize

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"reglens/internal/billing"
	"reglens/internal/pricing"
	"reglens/internal/store"
	"reglens/internal/wizard"
)

var (
	// ErrFinalizeInFlight is returned when a second submit lands while the
	// first one is still running (double-click). The caller retries after
	// the first attempt resolves.
	ErrFinalizeInFlight = errors.New("finalize already in flight for this account")

	// ErrPaymentNotCompleted is returned on checkout return when the
	// billing provider does not confirm the payment. Wizard state is
	// retained so the user loses nothing.
	ErrPaymentNotCompleted = errors.New("payment not completed")
)

// Accounts is the slice of the persistence collaborator the commit
// sequence writes through.
type Accounts interface {
	UpdateAccountProfile(ctx context.Context, accountID string, p store.ProfileUpdate) error
	UpsertCountryLicense(ctx context.Context, accountID, countryCode, status string) error
	InsertTopicSubscription(ctx context.Context, accountID, topicID, title, ambit string, priority int) error
	InsertKnowledgeSeed(ctx context.Context, accountID, description, aiSummary string) error
	MarkOnboardingCompleted(ctx context.Context, accountID, plan string) error
}

// Result is the outcome of a finalize call. Exactly one of Completed or
// RedirectURL is meaningful: trial commits finish in place, paid plans
// hand back the hosted checkout URL.
type Result struct {
	Completed   bool   `json:"completed"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// Orchestrator drives the commit protocol.
type Orchestrator struct {
	accounts   Accounts
	billing    billing.Checkout
	wizards    *wizard.Store
	successURL string
	cancelURL  string

	mu       sync.Mutex
	inflight map[string]bool
}

// New builds an orchestrator. successURL should contain the provider's
// session placeholder so the return callback can identify the session.
func New(accounts Accounts, checkout billing.Checkout, wizards *wizard.Store, successURL, cancelURL string) *Orchestrator {
	return &Orchestrator{
		accounts:   accounts,
		billing:    checkout,
		wizards:    wizards,
		successURL: successURL,
		cancelURL:  cancelURL,
		inflight:   make(map[string]bool),
	}
}

func (o *Orchestrator) acquire(accountID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inflight[accountID] {
		return false
	}
	o.inflight[accountID] = true
	return true
}

func (o *Orchestrator) release(accountID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inflight, accountID)
}

// Finalize commits the wizard state for the account, or opens a checkout
// session for paid plans. A second call while one is running returns
// ErrFinalizeInFlight.
func (o *Orchestrator) Finalize(ctx context.Context, accountID, email string) (*Result, error) {
	if !o.acquire(accountID) {
		return nil, ErrFinalizeInFlight
	}
	defer o.release(accountID)

	state := o.wizards.Load(accountID)
	if err := checkComplete(state); err != nil {
		return nil, err
	}

	if state.PlanSelection.Plan == wizard.PlanTrial {
		if err := o.commit(ctx, accountID, state); err != nil {
			return nil, err
		}
		if err := o.wizards.Reset(accountID); err != nil {
			// The commit landed; a stale draft is an inconvenience, not
			// a failure.
			log.Printf("finalize: clearing wizard state for %s: %v", accountID, err)
		}
		return &Result{Completed: true}, nil
	}

	// Paid path: persist the profile now so an abandoned checkout does
	// not lose the collected fields, then redirect.
	if err := o.accounts.UpdateAccountProfile(ctx, accountID, profileUpdate(state)); err != nil {
		return nil, fmt.Errorf("failed to persist profile before checkout: %w", err)
	}

	items, err := pricing.LineItems(*state.PlanSelection)
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout line items: %w", err)
	}

	session, err := o.billing.CreateCheckoutSession(ctx, billing.CheckoutParams{
		AccountID:  accountID,
		Email:      email,
		LineItems:  items,
		SuccessURL: o.successURL,
		CancelURL:  o.cancelURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &Result{RedirectURL: session.CheckoutURL}, nil
}

// CompleteCheckout finishes the paid path after the user returns from
// hosted checkout. Payment is re-verified with the billing collaborator
// before any deferred write happens; wizard state is cleared only after
// that verification and the commit both succeed.
func (o *Orchestrator) CompleteCheckout(ctx context.Context, accountID, sessionID string) error {
	if !o.acquire(accountID) {
		return ErrFinalizeInFlight
	}
	defer o.release(accountID)

	verdict, err := o.billing.VerifySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to verify checkout session: %w", err)
	}
	if !verdict.Success {
		return ErrPaymentNotCompleted
	}

	state := o.wizards.Load(accountID)
	if err := checkComplete(state); err != nil {
		return err
	}
	if err := o.commit(ctx, accountID, state); err != nil {
		return err
	}
	if err := o.wizards.Reset(accountID); err != nil {
		log.Printf("finalize: clearing wizard state for %s: %v", accountID, err)
	}
	return nil
}

// commit issues the full write sequence. The sequence is not atomic: each
// write is independent and already-applied writes are not rolled back on a
// later failure. Every write uses a natural-key upsert so a user retry
// re-issues the sequence without duplicating rows.
func (o *Orchestrator) commit(ctx context.Context, accountID string, state *wizard.WizardState) error {
	if err := o.accounts.UpdateAccountProfile(ctx, accountID, profileUpdate(state)); err != nil {
		log.Printf("finalize: account update failed for %s: %v", accountID, err)
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}

	if err := o.accounts.UpsertCountryLicense(ctx, accountID, state.Geography.SelectedCountry, store.LicenseActive); err != nil {
		log.Printf("finalize: country upsert failed for %s: %v", accountID, err)
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	for _, cc := range state.Geography.WaitlistCountries {
		if err := o.accounts.UpsertCountryLicense(ctx, accountID, cc, store.LicenseWaitlisted); err != nil {
			log.Printf("finalize: waitlist upsert failed for %s: %v", accountID, err)
			return fmt.Errorf("failed to complete onboarding: %w", err)
		}
	}

	for _, topic := range state.SelectedTopics() {
		err := o.accounts.InsertTopicSubscription(ctx, accountID,
			topic.ID, topic.Title, topic.Ambit, topic.Relevance.SubscriptionPriority())
		if err != nil {
			log.Printf("finalize: topic insert failed for %s (%s): %v", accountID, topic.ID, err)
			return fmt.Errorf("failed to complete onboarding: %w", err)
		}
	}

	summary := ""
	if state.AIAnalysis != nil {
		summary = state.AIAnalysis.Summary
	}
	if err := o.accounts.InsertKnowledgeSeed(ctx, accountID, state.BusinessDescription, summary); err != nil {
		log.Printf("finalize: knowledge seed failed for %s: %v", accountID, err)
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}

	if err := o.accounts.MarkOnboardingCompleted(ctx, accountID, string(state.PlanSelection.Plan)); err != nil {
		log.Printf("finalize: completion stamp failed for %s: %v", accountID, err)
		return fmt.Errorf("failed to complete onboarding: %w", err)
	}
	return nil
}

// checkComplete re-runs the guard chain at the commit boundary so a stale
// or hand-crafted request cannot finalize an incomplete state.
func checkComplete(state *wizard.WizardState) error {
	if decision := wizard.CanEnter(state, wizard.StepConfirm); !decision.OK {
		return fmt.Errorf("onboarding is incomplete: missing %s", decision.RedirectTo)
	}
	if state.PlanSelection == nil {
		return fmt.Errorf("onboarding is incomplete: missing plan")
	}
	if err := pricing.Validate(*state.PlanSelection); err != nil {
		return fmt.Errorf("invalid plan selection: %w", err)
	}
	return nil
}

func profileUpdate(state *wizard.WizardState) store.ProfileUpdate {
	p := store.ProfileUpdate{}
	if state.AccountIdentity != nil {
		p.FullName = state.AccountIdentity.FullName
		p.InterfaceLanguage = state.AccountIdentity.InterfaceLanguage
		p.ContentLanguage = state.AccountIdentity.ContentLanguage
	}
	if state.CompanyProfile != nil {
		p.CompanyName = state.CompanyProfile.CompanyName
		p.CompanySize = state.CompanyProfile.CompanySize
		p.Sector = state.CompanyProfile.Sector
		p.Website = state.CompanyProfile.Website
	}
	return p
}
