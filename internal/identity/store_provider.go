package identity

import (
	"context"
	"fmt"

	"reglens/internal/store"
)

// TokenResolver turns a bearer token into the email it was issued for.
// The real deployment delegates to the hosted auth service; dev mode uses
// the token as the email directly.
type TokenResolver func(ctx context.Context, token string) (string, error)

// DevTokenResolver treats the token itself as the email. Only wired when
// the service runs in mock mode.
func DevTokenResolver(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("missing session token")
	}
	return token, nil
}

// StoreProvider resolves identities against the accounts table.
type StoreProvider struct {
	store   *store.Store
	resolve TokenResolver
}

// NewStoreProvider wires the accounts table behind the Provider contract.
func NewStoreProvider(s *store.Store, resolve TokenResolver) *StoreProvider {
	return &StoreProvider{store: s, resolve: resolve}
}

func (p *StoreProvider) CurrentUser(ctx context.Context, token string) (*User, error) {
	email, err := p.resolve(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve session token: %w", err)
	}
	account, err := p.store.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return &User{ID: account.AccountID, Email: account.Email}, nil
}

func (p *StoreProvider) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	account, err := p.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return &Account{
		ID:                    account.AccountID,
		Email:                 account.Email,
		OnboardingCompletedAt: account.OnboardingCompletedAt,
	}, nil
}
