package wizard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Business description bounds. The recommendation adapter is never invoked
// below the minimum.
const (
	MinDescriptionLen = 50
	MaxDescriptionLen = 500
)

// ValidationResult carries per-field inline errors. Validation failures
// block advancement and never reach a collaborator.
type ValidationResult struct {
	OK          bool              `json:"ok"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

func invalid(field, msg string) ValidationResult {
	return ValidationResult{FieldErrors: map[string]string{field: msg}}
}

func valid() ValidationResult {
	return ValidationResult{OK: true}
}

// ValidateAccountIdentity checks the step 1 form.
func ValidateAccountIdentity(in AccountIdentity) ValidationResult {
	errs := map[string]string{}
	if strings.TrimSpace(in.FullName) == "" {
		errs["full_name"] = "full name is required"
	}
	if !strings.Contains(in.Email, "@") {
		errs["email"] = "a valid email address is required"
	}
	if in.InterfaceLanguage == "" {
		errs["interface_language"] = "interface language is required"
	}
	if in.ContentLanguage == "" {
		errs["content_language"] = "content language is required"
	}
	if len(errs) > 0 {
		return ValidationResult{FieldErrors: errs}
	}
	return valid()
}

// ValidateDescription enforces the 50-500 character window. Length is
// counted in runes so multi-byte input is not penalized.
func ValidateDescription(description string) ValidationResult {
	n := utf8.RuneCountInString(strings.TrimSpace(description))
	if n < MinDescriptionLen {
		return invalid("business_description",
			fmt.Sprintf("description must be at least %d characters (got %d)", MinDescriptionLen, n))
	}
	if n > MaxDescriptionLen {
		return invalid("business_description",
			fmt.Sprintf("description must be at most %d characters (got %d)", MaxDescriptionLen, n))
	}
	return valid()
}

// ValidateCompanyProfile checks the company details form.
func ValidateCompanyProfile(in CompanyProfile) ValidationResult {
	errs := map[string]string{}
	if strings.TrimSpace(in.CompanyName) == "" {
		errs["company_name"] = "company name is required"
	}
	if in.CompanySize == "" {
		errs["company_size"] = "company size is required"
	}
	if strings.TrimSpace(in.Sector) == "" {
		errs["sector"] = "sector is required"
	}
	if len(errs) > 0 {
		return ValidationResult{FieldErrors: errs}
	}
	return valid()
}

// ValidateGeography requires exactly one active country. Waitlist entries
// are unlimited and never block advancement.
func ValidateGeography(in Geography) ValidationResult {
	if strings.TrimSpace(in.SelectedCountry) == "" {
		return invalid("selected_country", "select one country to monitor")
	}
	return valid()
}

// ValidateTopicAdvance gates leaving the topics step: 1..MaxSelectedTopics
// topics must be toggled on.
func ValidateTopicAdvance(state *WizardState) ValidationResult {
	n := state.SelectedTopicCount()
	if n < 1 {
		return invalid("topics", "select at least one topic to monitor")
	}
	if n > MaxSelectedTopics {
		return invalid("topics", fmt.Sprintf("at most %d topics can be selected", MaxSelectedTopics))
	}
	return valid()
}

// CanRequestRecommendation gates the AI adapter call: the description must
// clear the minimum length and a country must already be selected, because
// the country decides which regulatory corpus is queried.
func CanRequestRecommendation(state *WizardState) bool {
	if utf8.RuneCountInString(strings.TrimSpace(state.BusinessDescription)) < MinDescriptionLen {
		return false
	}
	if state.Geography == nil || state.Geography.SelectedCountry == "" {
		return false
	}
	return state.CompanyProfile != nil
}
