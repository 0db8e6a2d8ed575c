package httpapi

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"reglens/internal/finalize"
	"reglens/internal/pricing"
	"reglens/internal/recommend"
	"reglens/internal/wizard"
)

func validationFailed(c *gin.Context, result wizard.ValidationResult) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": gin.H{
		"kind":         "validation",
		"field_errors": result.FieldErrors,
	}})
}

// collaboratorFailed surfaces an external failure as a retry-capable
// notice. The message is generic; details go to the log, never the user.
func collaboratorFailed(c *gin.Context, err error) {
	log.Printf("httpapi: collaborator failure: %v", err)
	c.JSON(http.StatusBadGateway, gin.H{"error": gin.H{
		"kind":      "collaborator",
		"message":   "something went wrong, please try again",
		"retryable": true,
	}})
}

func redirect(c *gin.Context, to wizard.Step) {
	c.JSON(http.StatusOK, gin.H{"ok": false, "redirect_to": to})
}

// handleState returns the full accumulated state plus the resume step, so
// a reloaded client can land on the right screen.
func (s *Server) handleState(c *gin.Context) {
	user := currentUser(c)
	state := s.wizards.Load(user.ID)
	c.JSON(http.StatusOK, gin.H{
		"state":  state,
		"resume": wizard.FirstIncomplete(state),
	})
}

// handlePlans exposes the price table to the plan screen.
func (s *Server) handlePlans(c *gin.Context) {
	type planOut struct {
		Plan         wizard.Plan `json:"plan"`
		MonthlyCents int64       `json:"monthly_cents"`
		YearlyCents  int64       `json:"yearly_cents"`
	}
	var plans []planOut
	for _, p := range []wizard.Plan{wizard.PlanStarter, wizard.PlanProfessional, wizard.PlanBusiness} {
		monthly, _ := pricing.BasePrice(p, wizard.CycleMonthly)
		yearly, _ := pricing.BasePrice(p, wizard.CycleYearly)
		plans = append(plans, planOut{Plan: p, MonthlyCents: int64(monthly), YearlyCents: int64(yearly)})
	}
	addons := gin.H{}
	for _, a := range []string{pricing.AddonExtraCountry, pricing.AddonExtraTopics, pricing.AddonPrioritySupport} {
		price, _ := pricing.AddonPrice(a)
		addons[a] = int64(price)
	}
	c.JSON(http.StatusOK, gin.H{"plans": plans, "addons": addons})
}

// handleStepGet is the mount check: every screen asks before rendering.
// Out of sequence is a redirect, not an error; in sequence returns the
// pre-fill data so revisiting a step never blanks it.
func (s *Server) handleStepGet(c *gin.Context) {
	step, ok := wizard.ParseStep(c.Param("step"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"kind": "not_found", "message": "unknown step"}})
		return
	}

	user := currentUser(c)
	state := s.wizards.Load(user.ID)

	if decision := wizard.CanEnter(state, step); !decision.OK {
		redirect(c, decision.RedirectTo)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"step":    step,
		"next":    wizard.Next(step),
		"prefill": prefill(state, step),
	})
}

// prefill returns the slice of state a step's form renders from.
func prefill(state *wizard.WizardState, step wizard.Step) any {
	switch step {
	case wizard.StepAccount:
		return state.AccountIdentity
	case wizard.StepDescription:
		return gin.H{"business_description": state.BusinessDescription}
	case wizard.StepCompany:
		return state.CompanyProfile
	case wizard.StepCountry:
		return state.Geography
	case wizard.StepTopics:
		return gin.H{"analysis": state.AIAnalysis, "topics": state.TopicSelections}
	case wizard.StepReview, wizard.StepConfirm:
		return state
	case wizard.StepPlan:
		return state.PlanSelection
	default:
		return nil
	}
}

// handleStepPost validates the step's input, merges it, and names the next
// screen. Guards run here too: a deep-linked POST is bounced like a GET.
func (s *Server) handleStepPost(c *gin.Context) {
	step, ok := wizard.ParseStep(c.Param("step"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"kind": "not_found", "message": "unknown step"}})
		return
	}

	user := currentUser(c)
	state := s.wizards.Load(user.ID)

	if decision := wizard.CanEnter(state, step); !decision.OK {
		redirect(c, decision.RedirectTo)
		return
	}

	var patch wizard.Patch
	switch step {
	case wizard.StepAccount:
		var in wizard.AccountIdentity
		if err := c.ShouldBindJSON(&in); err != nil {
			validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{"body": "malformed request"}})
			return
		}
		if result := wizard.ValidateAccountIdentity(in); !result.OK {
			validationFailed(c, result)
			return
		}
		patch.AccountIdentity = &in

	case wizard.StepDescription:
		var in struct {
			BusinessDescription string `json:"business_description"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{"body": "malformed request"}})
			return
		}
		if result := wizard.ValidateDescription(in.BusinessDescription); !result.OK {
			validationFailed(c, result)
			return
		}
		patch.BusinessDescription = &in.BusinessDescription

	case wizard.StepCompany:
		var in wizard.CompanyProfile
		if err := c.ShouldBindJSON(&in); err != nil {
			validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{"body": "malformed request"}})
			return
		}
		if result := wizard.ValidateCompanyProfile(in); !result.OK {
			validationFailed(c, result)
			return
		}
		patch.CompanyProfile = &in

	case wizard.StepCountry:
		var in wizard.Geography
		if err := c.ShouldBindJSON(&in); err != nil {
			validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{"body": "malformed request"}})
			return
		}
		if result := wizard.ValidateGeography(in); !result.OK {
			validationFailed(c, result)
			return
		}
		patch.Geography = &in

	case wizard.StepTopics:
		// Selection happens through /topics/toggle; advancing only checks
		// the 1..10 window.
		if result := wizard.ValidateTopicAdvance(state); !result.OK {
			validationFailed(c, result)
			return
		}

	case wizard.StepReview:
		// Review gathers nothing; its edit links jump back without
		// clearing anything.

	case wizard.StepPlan:
		var in wizard.PlanSelection
		if err := c.ShouldBindJSON(&in); err != nil {
			validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{"body": "malformed request"}})
			return
		}
		if err := pricing.Validate(in); err != nil {
			validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{"plan": err.Error()}})
			return
		}
		patch.PlanSelection = &in

	case wizard.StepConfirm:
		s.handleFinalize(c)
		return
	}

	newState, err := s.wizards.Merge(user.ID, patch)
	if err != nil {
		collaboratorFailed(c, err)
		return
	}

	resp := gin.H{"ok": true, "next": wizard.Next(step)}
	if step == wizard.StepPlan && newState.PlanSelection != nil && newState.PlanSelection.Plan != wizard.PlanTrial {
		if total, totalErr := pricing.Total(*newState.PlanSelection); totalErr == nil {
			resp["total_cents"] = int64(total)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// handleRecommend invokes the AI adapter and merges the normalized result.
// A provider failure surfaces as a retryable notice and never touches
// wizard state; re-running keeps previously selected topics selected when
// the provider returns them again.
func (s *Server) handleRecommend(c *gin.Context) {
	user := currentUser(c)
	state := s.wizards.Load(user.ID)

	if !wizard.CanRequestRecommendation(state) {
		validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{
			"business_description": "complete the description, company and country steps first",
		}})
		return
	}

	analysis, err := s.recommender.Recommend(c.Request.Context(), recommendRequest(state))
	if err != nil {
		collaboratorFailed(c, err)
		return
	}

	selected := map[string]bool{}
	for _, t := range state.TopicSelections {
		if t.Selected {
			selected[t.ID] = true
		}
	}
	topics := make([]wizard.TopicRecommendation, len(analysis.Topics))
	copy(topics, analysis.Topics)
	for i := range topics {
		if selected[topics[i].ID] {
			topics[i].Selected = true
		}
	}

	newState, err := s.wizards.Merge(user.ID, wizard.Patch{
		AIAnalysis: &wizard.AIAnalysis{
			Summary:        analysis.Summary,
			CompanyGuess:   analysis.CompanyGuess,
			SectorGuess:    analysis.SectorGuess,
			GeneratedAt:    time.Now().UTC(),
			TopicsReturned: len(topics),
		},
		TopicSelections: topics,
	})
	if err != nil {
		collaboratorFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"analysis": newState.AIAnalysis,
		"topics":   newState.TopicSelections,
	})
}

// handleTopicToggle flips one topic. The 11th toggle-on is a no-op: the
// response carries applied=false and the unchanged count, no error.
func (s *Server) handleTopicToggle(c *gin.Context) {
	var in struct {
		TopicID string `json:"topic_id"`
	}
	if err := c.ShouldBindJSON(&in); err != nil || in.TopicID == "" {
		validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{"topic_id": "topic_id is required"}})
		return
	}

	user := currentUser(c)
	state, applied, err := s.wizards.ToggleTopic(user.ID, in.TopicID)
	if err != nil {
		collaboratorFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":             true,
		"applied":        applied,
		"selected_count": state.SelectedTopicCount(),
	})
}

// handleFinalize runs the commit protocol: trial plans complete in place,
// paid plans come back with a checkout redirect.
func (s *Server) handleFinalize(c *gin.Context) {
	user := currentUser(c)
	state := s.wizards.Load(user.ID)

	if decision := wizard.CanEnter(state, wizard.StepConfirm); !decision.OK {
		redirect(c, decision.RedirectTo)
		return
	}
	if state.PlanSelection == nil {
		redirect(c, wizard.StepPlan)
		return
	}

	result, err := s.orchestrator.Finalize(c.Request.Context(), user.ID, user.Email)
	if err != nil {
		if errors.Is(err, finalize.ErrFinalizeInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": gin.H{
				"kind":    "in_flight",
				"message": "submission already in progress",
			}})
			return
		}
		collaboratorFailed(c, err)
		return
	}

	if result.Completed {
		c.JSON(http.StatusOK, gin.H{"ok": true, "completed": true, "redirect_to": "dashboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "completed": false, "checkout_url": result.RedirectURL})
}

// handleCheckoutReturn finishes the paid path. Verification failure is
// terminal for the session but loses no data: the state stays so the user
// can go back to plan selection or contact support.
func (s *Server) handleCheckoutReturn(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		validationFailed(c, wizard.ValidationResult{FieldErrors: map[string]string{"session_id": "session_id is required"}})
		return
	}

	user := currentUser(c)
	err := s.orchestrator.CompleteCheckout(c.Request.Context(), user.ID, sessionID)
	if err != nil {
		if errors.Is(err, finalize.ErrPaymentNotCompleted) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": gin.H{
				"kind":    "payment",
				"message": "we could not confirm your payment",
				"options": []string{"back_to_plan", "contact_support"},
			}})
			return
		}
		if errors.Is(err, finalize.ErrFinalizeInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": gin.H{
				"kind":    "in_flight",
				"message": "submission already in progress",
			}})
			return
		}
		collaboratorFailed(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "completed": true, "redirect_to": "dashboard"})
}

// handleReset clears the draft on an explicit "start over".
func (s *Server) handleReset(c *gin.Context) {
	user := currentUser(c)
	if err := s.wizards.Reset(user.ID); err != nil {
		collaboratorFailed(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func recommendRequest(state *wizard.WizardState) recommend.Request {
	req := recommend.Request{
		Description: state.BusinessDescription,
		MaxTopics:   wizard.MaxSelectedTopics,
	}
	if state.CompanyProfile != nil {
		req.Sector = state.CompanyProfile.Sector
	}
	if state.Geography != nil {
		req.Country = state.Geography.SelectedCountry
	}
	return req
}
