// Package identity abstracts the managed auth provider. The wizard only
// consumes two facts: who the caller is, and whether their account already
// finished onboarding.
package identity

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// User is the authenticated principal behind a session token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Account is the provider's view of the account. A non-nil
// OnboardingCompletedAt skips the entire wizard.
type Account struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	OnboardingCompletedAt *time.Time `json:"onboarding_completed_at,omitempty"`
}

// Provider resolves session tokens and account status.
type Provider interface {
	CurrentUser(ctx context.Context, token string) (*User, error)
	GetAccount(ctx context.Context, accountID string) (*Account, error)
}

// StaticProvider is a fixed token table used in mock mode and tests.
type StaticProvider struct {
	mu       sync.RWMutex
	tokens   map[string]User
	accounts map[string]Account
}

// NewStaticProvider builds an empty provider; populate with AddUser.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		tokens:   make(map[string]User),
		accounts: make(map[string]Account),
	}
}

// AddUser registers a token for a user and its backing account.
func (p *StaticProvider) AddUser(token string, user User, account Account) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens[token] = user
	p.accounts[account.ID] = account
}

// CompleteOnboarding stamps the account, mirroring what finalize does
// against the real provider.
func (p *StaticProvider) CompleteOnboarding(accountID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if acct, ok := p.accounts[accountID]; ok {
		now := time.Now().UTC()
		acct.OnboardingCompletedAt = &now
		p.accounts[accountID] = acct
	}
}

func (p *StaticProvider) CurrentUser(ctx context.Context, token string) (*User, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	user, ok := p.tokens[token]
	if !ok {
		return nil, fmt.Errorf("unknown session token")
	}
	return &user, nil
}

func (p *StaticProvider) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	acct, ok := p.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("no account found: %s", accountID)
	}
	return &acct, nil
}
