package wizard

// Step identifies one screen of the onboarding wizard.
type Step string

const (
	StepAccount     Step = "account"
	StepDescription Step = "description"
	StepCompany     Step = "company"
	StepCountry     Step = "country"
	StepTopics      Step = "topics"
	StepReview      Step = "review"
	StepPlan        Step = "plan"
	StepConfirm     Step = "confirm"
)

// StepOrder is the canonical screen sequence.
var StepOrder = []Step{
	StepAccount,
	StepDescription,
	StepCompany,
	StepCountry,
	StepTopics,
	StepReview,
	StepPlan,
	StepConfirm,
}

// ParseStep maps a route segment to a Step.
func ParseStep(s string) (Step, bool) {
	for _, step := range StepOrder {
		if string(step) == s {
			return step, true
		}
	}
	return "", false
}

// Next returns the step after s, or s itself when s is the last one.
func Next(s Step) Step {
	for i, step := range StepOrder {
		if step == s && i+1 < len(StepOrder) {
			return StepOrder[i+1]
		}
	}
	return s
}

// Decision is the outcome of a guard check. When OK is false, RedirectTo
// names the earliest step whose prerequisite is unmet; being out of
// sequence is a redirect, never a user-visible error.
type Decision struct {
	OK         bool `json:"ok"`
	RedirectTo Step `json:"redirect_to,omitempty"`
}

// prerequisite reports whether the answer a given step contributes is
// already present in state. Used to gate every LATER step.
func prerequisite(state *WizardState, s Step) bool {
	switch s {
	case StepAccount:
		return state.AccountIdentity != nil
	case StepDescription:
		return state.BusinessDescription != ""
	case StepCompany:
		return state.CompanyProfile != nil
	case StepCountry:
		return state.Geography != nil && state.Geography.SelectedCountry != ""
	case StepTopics:
		return state.SelectedTopicCount() >= 1
	case StepReview:
		// Review gathers nothing of its own.
		return true
	case StepPlan:
		return state.PlanSelection != nil
	default:
		return true
	}
}

// CanEnter evaluates the prerequisite chain for entering step s. It is
// evaluated on every mount, not just forward navigation, so reloads and
// deep links bounce deterministically to the earliest unmet step.
//
// A step whose own answer already exists remains enterable: revisiting
// pre-fills, it never clears.
func CanEnter(state *WizardState, s Step) Decision {
	for _, prior := range StepOrder {
		if prior == s {
			break
		}
		if !prerequisite(state, prior) {
			return Decision{OK: false, RedirectTo: prior}
		}
	}
	return Decision{OK: true}
}

// FirstIncomplete returns the earliest step whose own answer is missing,
// used to resume a reloaded session at the right screen.
func FirstIncomplete(state *WizardState) Step {
	for _, s := range StepOrder {
		if !prerequisite(state, s) {
			return s
		}
	}
	return StepConfirm
}
