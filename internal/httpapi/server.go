// Package httpapi exposes the onboarding wizard over HTTP. Handlers are
// thin: guards decide, the wizard store merges, the orchestrator commits.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"reglens/internal/finalize"
	"reglens/internal/identity"
	"reglens/internal/recommend"
	"reglens/internal/wizard"
)

// Server wires the wizard core to its collaborators.
type Server struct {
	wizards      *wizard.Store
	identity     identity.Provider
	recommender  recommend.Recommender
	orchestrator *finalize.Orchestrator
}

// NewServer builds the API server.
func NewServer(wizards *wizard.Store, provider identity.Provider, recommender recommend.Recommender, orchestrator *finalize.Orchestrator) *Server {
	return &Server{
		wizards:      wizards,
		identity:     provider,
		recommender:  recommender,
		orchestrator: orchestrator,
	}
}

// Router assembles the gin engine. allowedOrigins may be empty for
// same-origin deployments.
func (s *Server) Router(allowedOrigins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Authorization", "Content-Type"},
		}))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/onboarding")
	api.Use(s.authMiddleware())
	{
		api.GET("/plans", s.handlePlans)
		api.GET("/state", s.handleState)
		api.GET("/steps/:step", s.handleStepGet)
		api.POST("/steps/:step", s.handleStepPost)
		api.POST("/recommend", s.handleRecommend)
		api.POST("/topics/toggle", s.handleTopicToggle)
		api.POST("/finalize", s.handleFinalize)
		api.GET("/checkout/return", s.handleCheckoutReturn)
		api.POST("/reset", s.handleReset)
	}

	return r
}

const (
	ctxUserKey    = "onboarding_user"
	ctxAccountKey = "onboarding_account"
)

// authMiddleware resolves the bearer token and loads the account so every
// handler can key wizard state off the account ID. An account that already
// completed onboarding is routed straight to the dashboard; the wizard is
// never an error for them, just a redirect.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"kind":    "auth",
				"message": "missing session token",
			}})
			return
		}

		user, err := s.identity.CurrentUser(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"kind":    "auth",
				"message": "invalid session",
			}})
			return
		}

		account, err := s.identity.GetAccount(c.Request.Context(), user.ID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{
				"kind":    "auth",
				"message": "account not found",
			}})
			return
		}

		if account.OnboardingCompletedAt != nil && c.FullPath() != "/api/onboarding/plans" {
			c.AbortWithStatusJSON(http.StatusOK, gin.H{
				"ok":          false,
				"redirect_to": "dashboard",
			})
			return
		}

		c.Set(ctxUserKey, user)
		c.Set(ctxAccountKey, account)
		c.Next()
	}
}

func currentUser(c *gin.Context) *identity.User {
	v, _ := c.Get(ctxUserKey)
	user, _ := v.(*identity.User)
	return user
}
