// Package wizard holds the onboarding wizard's accumulated state, the
// step prerequisite guards, and the per-step validation rules.
//
// The wizard is strictly sequential: one step is live at a time, every
// step merges its answers into WizardState through the Store, and the
// guard chain decides where a reload or deep-link lands.
package wizard

import "time"

// Relevance is the tri-level ordinal attached to a recommended topic.
// It drives display ordering and subscription priority, never selection logic.
type Relevance string

const (
	RelevanceHigh   Relevance = "high"
	RelevanceMedium Relevance = "medium"
	RelevanceLow    Relevance = "low"
)

// SubscriptionPriority maps a relevance tier to the priority stored on the
// topic subscription record (high=1, medium=2, low=3).
func (r Relevance) SubscriptionPriority() int {
	switch r {
	case RelevanceHigh:
		return 1
	case RelevanceLow:
		return 3
	default:
		return 2
	}
}

// MaxSelectedTopics caps how many topics can be selected at once.
const MaxSelectedTopics = 10

// AccountIdentity is collected once at the first step and is immutable for
// the rest of the session.
type AccountIdentity struct {
	FullName          string `json:"full_name"`
	Email             string `json:"email"`
	InterfaceLanguage string `json:"interface_language"`
	ContentLanguage   string `json:"content_language"`
}

// CompanyProfile describes the business being onboarded. All fields are
// required before topic recommendation can run.
type CompanyProfile struct {
	CompanyName string `json:"company_name"`
	CompanySize string `json:"company_size"`
	Sector      string `json:"sector"`
	Website     string `json:"website"`
}

// AIAnalysis is the last recommendation response, kept verbatim so the
// review step can show the summary and the finalize step can seed the
// knowledge base with it.
type AIAnalysis struct {
	Summary        string    `json:"summary"`
	CompanyGuess   string    `json:"company_guess,omitempty"`
	SectorGuess    string    `json:"sector_guess,omitempty"`
	GeneratedAt    time.Time `json:"generated_at"`
	TopicsReturned int       `json:"topics_returned"`
}

// Geography holds exactly one active country plus any number of
// "notify me when you cover this" waitlist entries.
type Geography struct {
	SelectedCountry   string   `json:"selected_country"`
	WaitlistCountries []string `json:"waitlist_countries,omitempty"`
}

// TopicRecommendation is one entry of the topic checklist. ID is either
// provider-issued or a locally synthesized token (see recommend.Normalize)
// so toggling stays stable across re-renders.
type TopicRecommendation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Ambit     string    `json:"ambit"`
	Relevance Relevance `json:"relevance"`
	Reason    string    `json:"reason,omitempty"`
	Selected  bool      `json:"selected"`
}

// Plan tiers offered at the final step.
type Plan string

const (
	PlanTrial        Plan = "trial"
	PlanStarter      Plan = "starter"
	PlanProfessional Plan = "professional"
	PlanBusiness     Plan = "business"
)

// BillingCycle is the charge interval for paid plans.
type BillingCycle string

const (
	CycleMonthly BillingCycle = "monthly"
	CycleYearly  BillingCycle = "yearly"
)

// PlanSelection is absent (nil on WizardState) until the plan step; the
// confirm step is the only one guarded on its presence.
type PlanSelection struct {
	Plan         Plan         `json:"plan"`
	BillingCycle BillingCycle `json:"billing_cycle"`
	Addons       []string     `json:"addons,omitempty"`
}

// WizardState is the single mutable aggregate for the whole flow. It is
// created empty the first time any onboarding screen mounts, mutated only
// via Store.Merge, and cleared only after finalize reports success.
type WizardState struct {
	AccountIdentity     *AccountIdentity      `json:"account_identity,omitempty"`
	CompanyProfile      *CompanyProfile       `json:"company_profile,omitempty"`
	BusinessDescription string                `json:"business_description,omitempty"`
	AIAnalysis          *AIAnalysis           `json:"ai_analysis,omitempty"`
	Geography           *Geography            `json:"geography,omitempty"`
	TopicSelections     []TopicRecommendation `json:"topic_selections,omitempty"`
	PlanSelection       *PlanSelection        `json:"plan_selection,omitempty"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// SelectedTopics returns the entries currently toggled on, in list order.
func (s *WizardState) SelectedTopics() []TopicRecommendation {
	var out []TopicRecommendation
	for _, t := range s.TopicSelections {
		if t.Selected {
			out = append(out, t)
		}
	}
	return out
}

// SelectedTopicCount returns how many topics are toggled on.
func (s *WizardState) SelectedTopicCount() int {
	n := 0
	for _, t := range s.TopicSelections {
		if t.Selected {
			n++
		}
	}
	return n
}

// Clone returns a deep copy so callers can hand state out without exposing
// the store's internal copy to mutation.
func (s *WizardState) Clone() *WizardState {
	if s == nil {
		return nil
	}
	out := *s
	if s.AccountIdentity != nil {
		v := *s.AccountIdentity
		out.AccountIdentity = &v
	}
	if s.CompanyProfile != nil {
		v := *s.CompanyProfile
		out.CompanyProfile = &v
	}
	if s.AIAnalysis != nil {
		v := *s.AIAnalysis
		out.AIAnalysis = &v
	}
	if s.Geography != nil {
		v := *s.Geography
		v.WaitlistCountries = append([]string(nil), s.Geography.WaitlistCountries...)
		out.Geography = &v
	}
	if s.TopicSelections != nil {
		out.TopicSelections = append([]TopicRecommendation(nil), s.TopicSelections...)
	}
	if s.PlanSelection != nil {
		v := *s.PlanSelection
		v.Addons = append([]string(nil), s.PlanSelection.Addons...)
		out.PlanSelection = &v
	}
	return &out
}
