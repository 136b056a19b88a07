package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"referral-rewards/internal/auth"
)

// Router bundles the handlers served by the API
type Router struct {
	Referral       *ReferralHandler
	Leaderboard    *LeaderboardHandler
	User           *UserHandler
	AllowedOrigins []string
}

// Setup builds the gin engine with every route registered
func (r *Router) Setup(engine *gin.Engine) *gin.Engine {
	origins := r.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := engine.Group("/api")
	{
		api.POST("/referrals", r.Referral.AcceptReferral)
		api.GET("/leaderboard", r.Leaderboard.GetLeaderboard)
	}

	// User endpoints (protected)
	userRoutes := api.Group("/user")
	userRoutes.Use(auth.AuthMiddleware())
	{
		userRoutes.POST("/account", r.User.EnsureAccount)
		userRoutes.GET("/me", r.User.GetProfile)
		userRoutes.GET("/dashboard", r.User.GetDashboard)
		userRoutes.GET("/referrals", r.User.GetReferrals)
		userRoutes.GET("/referral-link", r.User.GetReferralLink)
		userRoutes.GET("/referral-qr", r.User.GetReferralQRCode)
		userRoutes.GET("/share-links", r.User.GetShareLinks)
	}

	return engine
}
