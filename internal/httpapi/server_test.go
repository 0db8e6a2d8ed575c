package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reglens/internal/billing"
	"reglens/internal/finalize"
	"reglens/internal/identity"
	"reglens/internal/recommend"
	"reglens/internal/store"
	"reglens/internal/wizard"
)

type recordingAccounts struct {
	profileUpdates int
	countries      map[string]string
	subscriptions  map[string]int
	seeds          int
	completed      []string
}

func newRecordingAccounts() *recordingAccounts {
	return &recordingAccounts{countries: map[string]string{}, subscriptions: map[string]int{}}
}

func (r *recordingAccounts) UpdateAccountProfile(ctx context.Context, accountID string, p store.ProfileUpdate) error {
	r.profileUpdates++
	return nil
}

func (r *recordingAccounts) UpsertCountryLicense(ctx context.Context, accountID, countryCode, status string) error {
	r.countries[countryCode] = status
	return nil
}

func (r *recordingAccounts) InsertTopicSubscription(ctx context.Context, accountID, topicID, title, ambit string, priority int) error {
	r.subscriptions[topicID] = priority
	return nil
}

func (r *recordingAccounts) InsertKnowledgeSeed(ctx context.Context, accountID, description, aiSummary string) error {
	r.seeds++
	return nil
}

func (r *recordingAccounts) MarkOnboardingCompleted(ctx context.Context, accountID, plan string) error {
	r.completed = append(r.completed, plan)
	return nil
}

type stubCheckout struct {
	created []billing.CheckoutParams
	success bool
}

func (s *stubCheckout) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (*billing.CheckoutSession, error) {
	s.created = append(s.created, params)
	return &billing.CheckoutSession{SessionID: "sess-9", CheckoutURL: "https://pay.example/sess-9"}, nil
}

func (s *stubCheckout) VerifySession(ctx context.Context, sessionID string) (*billing.VerifyResult, error) {
	return &billing.VerifyResult{SessionID: sessionID, Success: s.success}, nil
}

type testEnv struct {
	router   *gin.Engine
	wizards  *wizard.Store
	accounts *recordingAccounts
	checkout *stubCheckout
	provider *identity.StaticProvider
}

const (
	testToken   = "tok-1"
	testAccount = "acc-1"
)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	wizards := wizard.NewStore(wizard.NewMemoryStorage())
	accounts := newRecordingAccounts()
	checkout := &stubCheckout{success: true}
	provider := identity.NewStaticProvider()
	provider.AddUser(testToken,
		identity.User{ID: testAccount, Email: "eva@example.com"},
		identity.Account{ID: testAccount, Email: "eva@example.com"})

	orch := finalize.New(accounts, checkout, wizards, "https://app/return", "https://app/cancel")
	server := NewServer(wizards, provider, recommend.NewMockAgent(), orch)

	return &testEnv{
		router:   server.Router(nil),
		wizards:  wizards,
		accounts: accounts,
		checkout: checkout,
		provider: provider,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest("GET", "/api/onboarding/steps/account", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCompletedAccountIsRoutedToDashboard(t *testing.T) {
	env := newTestEnv(t)
	completed := time.Now().UTC()
	env.provider.AddUser("tok-done",
		identity.User{ID: "acc-done", Email: "done@example.com"},
		identity.Account{ID: "acc-done", Email: "done@example.com", OnboardingCompletedAt: &completed})

	req := httptest.NewRequest("GET", "/api/onboarding/steps/account", nil)
	req.Header.Set("Authorization", "Bearer tok-done")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "dashboard", body["redirect_to"])
}

func TestDeepLinkToReviewRedirectsToEarliestUnmetStep(t *testing.T) {
	env := newTestEnv(t)

	// Account step answered, nothing else.
	w := env.do(t, "POST", "/api/onboarding/steps/account", wizard.AccountIdentity{
		FullName: "Eva", Email: "eva@example.com", InterfaceLanguage: "es", ContentLanguage: "es",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "GET", "/api/onboarding/steps/review", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "description", body["redirect_to"])
}

func TestShortDescriptionIsRejectedInline(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, "POST", "/api/onboarding/steps/account", wizard.AccountIdentity{
		FullName: "Eva", Email: "eva@example.com", InterfaceLanguage: "es", ContentLanguage: "es",
	})

	w := env.do(t, "POST", "/api/onboarding/steps/description", gin.H{
		"business_description": strings.Repeat("x", 49),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Nothing merged.
	assert.Empty(t, env.wizards.Load(testAccount).BusinessDescription)
}

func advanceToTopics(t *testing.T, env *testEnv) {
	t.Helper()
	steps := []struct {
		path string
		body any
	}{
		{"/api/onboarding/steps/account", wizard.AccountIdentity{
			FullName: "Eva", Email: "eva@example.com", InterfaceLanguage: "es", ContentLanguage: "es"}},
		{"/api/onboarding/steps/description", gin.H{
			"business_description": "We run a software platform processing customer data for small retailers in Spain."}},
		{"/api/onboarding/steps/company", wizard.CompanyProfile{
			CompanyName: "Eva SL", CompanySize: "11-50", Sector: "software"}},
		{"/api/onboarding/steps/country", wizard.Geography{
			SelectedCountry: "ES", WaitlistCountries: []string{"PT"}}},
	}
	for _, step := range steps {
		w := env.do(t, "POST", step.path, step.body)
		require.Equal(t, http.StatusOK, w.Code, "step %s: %s", step.path, w.Body.String())
		require.Equal(t, true, decode(t, w)["ok"], "step %s", step.path)
	}
}

func TestRecommendMergesNormalizedTopics(t *testing.T) {
	env := newTestEnv(t)
	advanceToTopics(t, env)

	w := env.do(t, "POST", "/api/onboarding/recommend", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	state := env.wizards.Load(testAccount)
	require.NotNil(t, state.AIAnalysis)
	assert.NotEmpty(t, state.AIAnalysis.Summary)
	require.NotEmpty(t, state.TopicSelections)
	for _, topic := range state.TopicSelections {
		assert.NotEmpty(t, topic.ID)
		assert.False(t, topic.Selected)
	}
}

func TestRecommendBeforePrerequisitesIsValidationError(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "POST", "/api/onboarding/recommend", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestTrialFlowEndToEnd(t *testing.T) {
	env := newTestEnv(t)
	advanceToTopics(t, env)

	w := env.do(t, "POST", "/api/onboarding/recommend", nil)
	require.Equal(t, http.StatusOK, w.Code)

	state := env.wizards.Load(testAccount)
	require.NotEmpty(t, state.TopicSelections)

	// Select the first two topics.
	for _, topic := range state.TopicSelections[:2] {
		w = env.do(t, "POST", "/api/onboarding/topics/toggle", gin.H{"topic_id": topic.ID})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, decode(t, w)["applied"])
	}

	w = env.do(t, "POST", "/api/onboarding/steps/topics", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "POST", "/api/onboarding/steps/plan", wizard.PlanSelection{Plan: wizard.PlanTrial})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "POST", "/api/onboarding/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, true, body["completed"])
	assert.Equal(t, "dashboard", body["redirect_to"])

	// Trial path: committed records, no checkout, state cleared.
	assert.Equal(t, map[string]string{"ES": store.LicenseActive, "PT": store.LicenseWaitlisted}, env.accounts.countries)
	assert.Len(t, env.accounts.subscriptions, 2)
	assert.Equal(t, 1, env.accounts.seeds)
	assert.Empty(t, env.checkout.created)
	assert.Empty(t, env.wizards.Load(testAccount).BusinessDescription)
}

func TestPaidFlowRedirectsToCheckout(t *testing.T) {
	env := newTestEnv(t)
	advanceToTopics(t, env)

	w := env.do(t, "POST", "/api/onboarding/recommend", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := env.wizards.Load(testAccount)
	w = env.do(t, "POST", "/api/onboarding/topics/toggle", gin.H{"topic_id": state.TopicSelections[0].ID})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "POST", "/api/onboarding/steps/plan", wizard.PlanSelection{
		Plan: wizard.PlanProfessional, BillingCycle: wizard.CycleMonthly,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, decode(t, w)["total_cents"])

	w = env.do(t, "POST", "/api/onboarding/finalize", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, false, body["completed"])
	assert.Equal(t, "https://pay.example/sess-9", body["checkout_url"])

	// Deferred writes have not happened and state survives the redirect.
	assert.Empty(t, env.accounts.subscriptions)
	assert.NotEmpty(t, env.wizards.Load(testAccount).BusinessDescription)

	// Returning with a verified session commits and clears.
	w = env.do(t, "GET", "/api/onboarding/checkout/return?session_id=sess-9", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["completed"])
	assert.Len(t, env.accounts.subscriptions, 1)
	assert.Empty(t, env.wizards.Load(testAccount).BusinessDescription)
}

func TestCheckoutReturnPaymentFailure(t *testing.T) {
	env := newTestEnv(t)
	env.checkout.success = false
	advanceToTopics(t, env)

	w := env.do(t, "POST", "/api/onboarding/recommend", nil)
	require.Equal(t, http.StatusOK, w.Code)
	state := env.wizards.Load(testAccount)
	env.do(t, "POST", "/api/onboarding/topics/toggle", gin.H{"topic_id": state.TopicSelections[0].ID})
	env.do(t, "POST", "/api/onboarding/steps/plan", wizard.PlanSelection{
		Plan: wizard.PlanBusiness, BillingCycle: wizard.CycleYearly,
	})

	w = env.do(t, "GET", "/api/onboarding/checkout/return?session_id=sess-9", nil)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)

	var out struct {
		Error struct {
			Kind    string   `json:"kind"`
			Options []string `json:"options"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "payment", out.Error.Kind)
	assert.Contains(t, out.Error.Options, "back_to_plan")

	// Data is never lost on a failed payment.
	assert.NotEmpty(t, env.wizards.Load(testAccount).BusinessDescription)
}

func TestRevisitingAnsweredStepPrefills(t *testing.T) {
	env := newTestEnv(t)
	advanceToTopics(t, env)

	w := env.do(t, "GET", "/api/onboarding/steps/company", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var out struct {
		OK      bool                   `json:"ok"`
		Prefill *wizard.CompanyProfile `json:"prefill"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.True(t, out.OK)
	require.NotNil(t, out.Prefill)
	assert.Equal(t, "Eva SL", out.Prefill.CompanyName)
}

func TestResetStartsOver(t *testing.T) {
	env := newTestEnv(t)
	advanceToTopics(t, env)

	w := env.do(t, "POST", "/api/onboarding/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, "GET", "/api/onboarding/steps/description", nil)
	body := decode(t, w)
	assert.Equal(t, false, body["ok"])
	assert.Equal(t, "account", body["redirect_to"])
}

func TestPlansEndpoint(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, "GET", "/api/onboarding/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Len(t, body["plans"], 3)
}
