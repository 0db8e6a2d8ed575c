package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// WizardDraft is a server-side snapshot of an in-flight wizard state,
// written by the migrate-drafts command so support staff can inspect a
// stuck onboarding without access to the user's device.
type WizardDraft struct {
	AccountID string          `db:"account_id" json:"account_id"`
	State     json.RawMessage `db:"state" json:"state"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}

// SaveWizardDraft upserts the draft snapshot for an account.
func (s *Store) SaveWizardDraft(ctx context.Context, accountID string, state json.RawMessage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reglens.wizard_drafts (account_id, state, updated_at)
		VALUES ($1, $2, (now() at time zone 'utc'))
		ON CONFLICT (account_id)
		DO UPDATE SET state = EXCLUDED.state, updated_at = (now() at time zone 'utc')`,
		accountID, []byte(state))
	if err != nil {
		return fmt.Errorf("failed to save wizard draft: %w", err)
	}
	return nil
}

// GetWizardDraft fetches the draft snapshot for an account.
func (s *Store) GetWizardDraft(ctx context.Context, accountID string) (*WizardDraft, error) {
	var draft WizardDraft
	err := s.db.GetContext(ctx, &draft, `
		SELECT account_id, state, updated_at
		FROM reglens.wizard_drafts
		WHERE account_id = $1`,
		accountID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no wizard draft found: %s", accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wizard draft: %w", err)
	}
	return &draft, nil
}

// DeleteWizardDraft removes the snapshot once the onboarding resolves.
func (s *Store) DeleteWizardDraft(ctx context.Context, accountID string) error {
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM reglens.wizard_drafts WHERE account_id = $1`,
		accountID); err != nil {
		return fmt.Errorf("failed to delete wizard draft: %w", err)
	}
	return nil
}
