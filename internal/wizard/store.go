package wizard

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"
)

// Patch is a partial WizardState produced by a step screen. Nil fields are
// left untouched; nested aggregates deep-merge field by field so a step
// never clobbers answers it did not collect.
type Patch struct {
	AccountIdentity     *AccountIdentity
	CompanyProfile      *CompanyProfile
	BusinessDescription *string
	AIAnalysis          *AIAnalysis
	Geography           *Geography
	TopicSelections     []TopicRecommendation
	PlanSelection       *PlanSelection
}

// Store owns the persisted wizard state for every in-flight onboarding.
// All mutation goes through Merge; every Merge persists synchronously so a
// page reload always sees the last answer.
type Store struct {
	mu      sync.Mutex
	backend Storage
}

// NewStore wraps a storage backend.
func NewStore(backend Storage) *Store {
	return &Store{backend: backend}
}

// Load reconstructs state for the account. Absent or malformed persisted
// data yields fresh defaults; malformed data is never surfaced as an error.
func (s *Store) Load(accountID string) *WizardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(accountID)
}

func (s *Store) load(accountID string) *WizardState {
	data, err := s.backend.Read(accountID)
	if err != nil {
		log.Printf("wizard: read state for %s: %v (starting fresh)", accountID, err)
		return &WizardState{}
	}
	if len(data) == 0 {
		return &WizardState{}
	}
	var state WizardState
	if err := json.Unmarshal(data, &state); err != nil {
		log.Printf("wizard: malformed state for %s: %v (starting fresh)", accountID, err)
		return &WizardState{}
	}
	return &state
}

// Merge applies the patch on top of the current state, persists, and
// returns the merged state so the caller can render immediately.
//
// Merge is monotonically additive: top-level fields shallow-merge, the
// named nested aggregates deep-merge, and AccountIdentity is write-once.
func (s *Store) Merge(accountID string, patch Patch) (*WizardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(accountID)

	if patch.AccountIdentity != nil && state.AccountIdentity == nil {
		v := *patch.AccountIdentity
		state.AccountIdentity = &v
	}
	if patch.CompanyProfile != nil {
		state.CompanyProfile = mergeCompanyProfile(state.CompanyProfile, patch.CompanyProfile)
	}
	if patch.BusinessDescription != nil {
		state.BusinessDescription = *patch.BusinessDescription
	}
	if patch.AIAnalysis != nil {
		v := *patch.AIAnalysis
		state.AIAnalysis = &v
	}
	if patch.Geography != nil {
		state.Geography = mergeGeography(state.Geography, patch.Geography)
	}
	if patch.TopicSelections != nil {
		state.TopicSelections = append([]TopicRecommendation(nil), patch.TopicSelections...)
	}
	if patch.PlanSelection != nil {
		state.PlanSelection = mergePlanSelection(state.PlanSelection, patch.PlanSelection)
	}
	state.UpdatedAt = time.Now().UTC()

	if err := s.persist(accountID, state); err != nil {
		return nil, err
	}
	return state.Clone(), nil
}

// ToggleTopic flips the selection of one topic in place, enforcing the
// selectable cap: toggling on beyond MaxSelectedTopics is a silent no-op.
// Returns the new state and whether the toggle was applied.
func (s *Store) ToggleTopic(accountID, topicID string) (*WizardState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.load(accountID)
	applied := false
	for i := range state.TopicSelections {
		if state.TopicSelections[i].ID != topicID {
			continue
		}
		if !state.TopicSelections[i].Selected && state.SelectedTopicCount() >= MaxSelectedTopics {
			return state.Clone(), false, nil
		}
		state.TopicSelections[i].Selected = !state.TopicSelections[i].Selected
		applied = true
		break
	}
	if !applied {
		return state.Clone(), false, nil
	}
	state.UpdatedAt = time.Now().UTC()
	if err := s.persist(accountID, state); err != nil {
		return nil, false, err
	}
	return state.Clone(), true, nil
}

// Reset clears persisted state. Called only after a successful finalize or
// on an explicit "start over".
func (s *Store) Reset(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(accountID); err != nil {
		return fmt.Errorf("failed to reset wizard state: %w", err)
	}
	return nil
}

func (s *Store) persist(accountID string, state *WizardState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal wizard state: %w", err)
	}
	if err := s.backend.Write(accountID, data); err != nil {
		return fmt.Errorf("failed to persist wizard state: %w", err)
	}
	return nil
}

func mergeCompanyProfile(cur, patch *CompanyProfile) *CompanyProfile {
	if cur == nil {
		v := *patch
		return &v
	}
	out := *cur
	if patch.CompanyName != "" {
		out.CompanyName = patch.CompanyName
	}
	if patch.CompanySize != "" {
		out.CompanySize = patch.CompanySize
	}
	if patch.Sector != "" {
		out.Sector = patch.Sector
	}
	if patch.Website != "" {
		out.Website = patch.Website
	}
	return &out
}

func mergeGeography(cur, patch *Geography) *Geography {
	if cur == nil {
		v := *patch
		v.WaitlistCountries = append([]string(nil), patch.WaitlistCountries...)
		return &v
	}
	out := *cur
	if patch.SelectedCountry != "" {
		out.SelectedCountry = patch.SelectedCountry
	}
	if patch.WaitlistCountries != nil {
		out.WaitlistCountries = append([]string(nil), patch.WaitlistCountries...)
	}
	return &out
}

func mergePlanSelection(cur, patch *PlanSelection) *PlanSelection {
	if cur == nil {
		v := *patch
		v.Addons = append([]string(nil), patch.Addons...)
		return &v
	}
	out := *cur
	if patch.Plan != "" {
		out.Plan = patch.Plan
	}
	if patch.BillingCycle != "" {
		out.BillingCycle = patch.BillingCycle
	}
	if patch.Addons != nil {
		out.Addons = append([]string(nil), patch.Addons...)
	}
	return &out
}
