package store

import (
	"context"
	"fmt"
	"time"
)

// CountryLicense is the "active country" record created at finalize plus
// any waitlist entries the user registered interest in.
type CountryLicense struct {
	LicenseID   string    `db:"license_id" json:"license_id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	CountryCode string    `db:"country_code" json:"country_code"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// License statuses.
const (
	LicenseActive     = "active"
	LicenseWaitlisted = "waitlisted"
)

// TopicSubscription is one monitored topic on an account. Priority derives
// from the recommendation relevance (high=1, medium=2, low=3).
type TopicSubscription struct {
	SubscriptionID string    `db:"subscription_id" json:"subscription_id"`
	AccountID      string    `db:"account_id" json:"account_id"`
	TopicID        string    `db:"topic_id" json:"topic_id"`
	Title          string    `db:"title" json:"title"`
	Ambit          string    `db:"ambit" json:"ambit"`
	Priority       int       `db:"priority" json:"priority"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// KnowledgeSeed carries the original business description and the AI
// summary into the account's knowledge base so monitoring starts with
// context about the business.
type KnowledgeSeed struct {
	SeedID      string    `db:"seed_id" json:"seed_id"`
	AccountID   string    `db:"account_id" json:"account_id"`
	Description string    `db:"description" json:"description"`
	AISummary   string    `db:"ai_summary" json:"ai_summary"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// UpsertCountryLicense creates or refreshes a country record for the
// account. The (account_id, country_code) natural key makes a retried
// finalize idempotent.
func (s *Store) UpsertCountryLicense(ctx context.Context, accountID, countryCode, status string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reglens.country_licenses (account_id, country_code, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id, country_code)
		DO UPDATE SET status = EXCLUDED.status`,
		accountID, countryCode, status)
	if err != nil {
		return fmt.Errorf("failed to upsert country license: %w", err)
	}
	return nil
}

// InsertTopicSubscription records one monitored topic. Conflicts on the
// (account_id, topic_id) natural key are ignored so a retried finalize
// after a partial failure cannot duplicate subscriptions.
func (s *Store) InsertTopicSubscription(ctx context.Context, accountID, topicID, title, ambit string, priority int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reglens.topic_subscriptions (account_id, topic_id, title, ambit, priority)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (account_id, topic_id) DO NOTHING`,
		accountID, topicID, title, ambit, priority)
	if err != nil {
		return fmt.Errorf("failed to insert topic subscription: %w", err)
	}
	return nil
}

// InsertKnowledgeSeed stores the onboarding description and AI summary.
// One seed per account; a retry overwrites rather than duplicates.
func (s *Store) InsertKnowledgeSeed(ctx context.Context, accountID, description, aiSummary string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reglens.knowledge_seeds (account_id, description, ai_summary)
		VALUES ($1, $2, $3)
		ON CONFLICT (account_id)
		DO UPDATE SET description = EXCLUDED.description, ai_summary = EXCLUDED.ai_summary`,
		accountID, description, aiSummary)
	if err != nil {
		return fmt.Errorf("failed to insert knowledge seed: %w", err)
	}
	return nil
}

// ListTopicSubscriptions returns the account's subscriptions ordered by
// priority then title.
func (s *Store) ListTopicSubscriptions(ctx context.Context, accountID string) ([]TopicSubscription, error) {
	var subs []TopicSubscription
	err := s.db.SelectContext(ctx, &subs, `
		SELECT subscription_id, account_id, topic_id, title, ambit, priority, created_at
		FROM reglens.topic_subscriptions
		WHERE account_id = $1
		ORDER BY priority ASC, title ASC`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list topic subscriptions: %w", err)
	}
	return subs, nil
}

// ListCountryLicenses returns the account's country records, active first.
func (s *Store) ListCountryLicenses(ctx context.Context, accountID string) ([]CountryLicense, error) {
	var licenses []CountryLicense
	err := s.db.SelectContext(ctx, &licenses, `
		SELECT license_id, account_id, country_code, status, created_at
		FROM reglens.country_licenses
		WHERE account_id = $1
		ORDER BY status ASC, country_code ASC`,
		accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list country licenses: %w", err)
	}
	return licenses, nil
}
