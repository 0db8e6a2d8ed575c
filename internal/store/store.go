// Package store is the persistence collaborator: record-oriented reads and
// writes against PostgreSQL for accounts, country licenses, topic
// subscriptions, knowledge-base seeds and the plan catalog. The onboarding
// core never mediates read-modify-write races here; a single authenticated
// session drives onboarding for a given account, so last-write-wins holds.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store wraps the database connection and all record operations.
type Store struct {
	db *sqlx.DB
}

// New connects to PostgreSQL and verifies the connection.
func New(connStr string) (*Store, error) {
	db, err := sqlx.Connect("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection; used by tests with sqlmock.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: sqlx.NewDb(db, "postgres")}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Account is the account record as onboarding sees it. Guards key off
// OnboardingCompletedAt: non-nil means the wizard is skipped entirely.
type Account struct {
	AccountID             string     `db:"account_id" json:"account_id"`
	Email                 string     `db:"email" json:"email"`
	FullName              string     `db:"full_name" json:"full_name"`
	InterfaceLanguage     string     `db:"interface_language" json:"interface_language"`
	ContentLanguage       string     `db:"content_language" json:"content_language"`
	CompanyName           string     `db:"company_name" json:"company_name"`
	CompanySize           string     `db:"company_size" json:"company_size"`
	Sector                string     `db:"sector" json:"sector"`
	Website               string     `db:"website" json:"website"`
	Plan                  string     `db:"plan" json:"plan"`
	OnboardingCompletedAt *time.Time `db:"onboarding_completed_at" json:"onboarding_completed_at,omitempty"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at" json:"updated_at"`
}

// GetAccount retrieves an account by ID.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var account Account
	err := s.db.GetContext(ctx, &account, `
		SELECT account_id, email, full_name, interface_language, content_language,
		       company_name, company_size, sector, website, plan,
		       onboarding_completed_at, created_at, updated_at
		FROM reglens.accounts
		WHERE account_id = $1`,
		accountID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no account found: %s", accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves an account by email, used by the bearer-token
// identity lookup.
func (s *Store) GetAccountByEmail(ctx context.Context, email string) (*Account, error) {
	var account Account
	err := s.db.GetContext(ctx, &account, `
		SELECT account_id, email, full_name, interface_language, content_language,
		       company_name, company_size, sector, website, plan,
		       onboarding_completed_at, created_at, updated_at
		FROM reglens.accounts
		WHERE email = $1`,
		email)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no account found for email: %s", email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

// CreateAccount inserts a fresh, not-yet-onboarded account and returns its ID.
func (s *Store) CreateAccount(ctx context.Context, email string) (string, error) {
	var accountID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reglens.accounts (email)
		VALUES ($1)
		RETURNING account_id`,
		email).Scan(&accountID)
	if err != nil {
		return "", fmt.Errorf("failed to create account: %w", err)
	}
	return accountID, nil
}

// ProfileUpdate is the slice of account fields the wizard writes at
// finalize (and at checkout start, so an abandoned checkout loses nothing).
type ProfileUpdate struct {
	FullName          string
	InterfaceLanguage string
	ContentLanguage   string
	CompanyName       string
	CompanySize       string
	Sector            string
	Website           string
}

// UpdateAccountProfile writes the collected identity and company fields
// onto the account record.
func (s *Store) UpdateAccountProfile(ctx context.Context, accountID string, p ProfileUpdate) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reglens.accounts
		SET full_name = $1,
		    interface_language = $2,
		    content_language = $3,
		    company_name = $4,
		    company_size = $5,
		    sector = $6,
		    website = $7,
		    updated_at = (now() at time zone 'utc')
		WHERE account_id = $8`,
		p.FullName, p.InterfaceLanguage, p.ContentLanguage,
		p.CompanyName, p.CompanySize, p.Sector, p.Website, accountID)
	if err != nil {
		return fmt.Errorf("failed to update account profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no account found: %s", accountID)
	}
	return nil
}

// MarkOnboardingCompleted stamps the account as onboarded with its plan.
func (s *Store) MarkOnboardingCompleted(ctx context.Context, accountID, plan string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reglens.accounts
		SET plan = $1,
		    onboarding_completed_at = (now() at time zone 'utc'),
		    updated_at = (now() at time zone 'utc')
		WHERE account_id = $2`,
		plan, accountID)
	if err != nil {
		return fmt.Errorf("failed to mark onboarding completed: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no account found: %s", accountID)
	}
	return nil
}
