package routes

import (
	"construction-monitoring-api/controllers"
	"construction-monitoring-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, submissions *controllers.SubmissionController) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Construction Monitoring API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)

			// Construction sites
			sites := protected.Group("/sites")
			{
				sites.GET("", controllers.GetSites)
				sites.GET("/:id", controllers.GetSite)
				sites.GET("/:id/submissions", submissions.GetSiteSubmissions)

				// Only admin can register sites
				sites.POST("", middleware.RequireRole(middleware.RoleAdmin), controllers.CreateSite)
			}

			// Photo submissions
			subs := protected.Group("/submissions")
			{
				subs.GET("/:id", submissions.GetSubmission)

				// Only surveyors upload photos
				subs.POST("", middleware.RequireRole(middleware.RoleSurveyor), submissions.CreateSubmission)

				// Only admin triggers re-analysis
				subs.POST("/:id/analyze", middleware.RequireRole(middleware.RoleAdmin), submissions.AnalyzeSubmission)
			}

			// Fraud flag review workflow (admin only)
			flags := protected.Group("/fraud-flags")
			flags.Use(middleware.RequireRole(middleware.RoleAdmin))
			{
				flags.GET("", controllers.GetFraudFlags)
				flags.POST("/:id/resolve", controllers.ResolveFraudFlag)
			}
		}
	}
}
