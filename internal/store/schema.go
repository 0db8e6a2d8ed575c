package store

import (
	"context"
	"fmt"
)

// schemaDDL creates the reglens schema. Idempotent; run via `init-db`.
const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS reglens;

CREATE TABLE IF NOT EXISTS reglens.accounts (
    account_id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email                   text NOT NULL UNIQUE,
    full_name               text NOT NULL DEFAULT '',
    interface_language      text NOT NULL DEFAULT 'en',
    content_language        text NOT NULL DEFAULT 'en',
    company_name            text NOT NULL DEFAULT '',
    company_size            text NOT NULL DEFAULT '',
    sector                  text NOT NULL DEFAULT '',
    website                 text NOT NULL DEFAULT '',
    plan                    text NOT NULL DEFAULT '',
    onboarding_completed_at timestamptz,
    created_at              timestamptz NOT NULL DEFAULT (now() at time zone 'utc'),
    updated_at              timestamptz NOT NULL DEFAULT (now() at time zone 'utc')
);

CREATE TABLE IF NOT EXISTS reglens.country_licenses (
    license_id   uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    account_id   uuid NOT NULL REFERENCES reglens.accounts(account_id),
    country_code text NOT NULL,
    status       text NOT NULL DEFAULT 'active',
    created_at   timestamptz NOT NULL DEFAULT (now() at time zone 'utc'),
    UNIQUE (account_id, country_code)
);

CREATE TABLE IF NOT EXISTS reglens.topic_subscriptions (
    subscription_id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    account_id      uuid NOT NULL REFERENCES reglens.accounts(account_id),
    topic_id        text NOT NULL,
    title           text NOT NULL,
    ambit           text NOT NULL DEFAULT '',
    priority        int  NOT NULL DEFAULT 2,
    created_at      timestamptz NOT NULL DEFAULT (now() at time zone 'utc'),
    UNIQUE (account_id, topic_id)
);

CREATE TABLE IF NOT EXISTS reglens.knowledge_seeds (
    seed_id     uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    account_id  uuid NOT NULL UNIQUE REFERENCES reglens.accounts(account_id),
    description text NOT NULL,
    ai_summary  text NOT NULL DEFAULT '',
    created_at  timestamptz NOT NULL DEFAULT (now() at time zone 'utc')
);

CREATE TABLE IF NOT EXISTS reglens.plans (
    plan_code     text NOT NULL,
    billing_cycle text NOT NULL,
    amount_cents  bigint NOT NULL,
    PRIMARY KEY (plan_code, billing_cycle)
);

CREATE TABLE IF NOT EXISTS reglens.wizard_drafts (
    account_id uuid PRIMARY KEY REFERENCES reglens.accounts(account_id),
    state      jsonb NOT NULL,
    updated_at timestamptz NOT NULL DEFAULT (now() at time zone 'utc')
);
`

// InitDB creates the schema and all tables.
func (s *Store) InitDB(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
