package app

import (
	"talent_portal_backend/docs"
	"talent_portal_backend/internal/config"
	"talent_portal_backend/internal/middleware"
	"talent_portal_backend/internal/model"
	"talent_portal_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// Public routes, no login required.
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/login", c.auth.Login)
	}

	// Authenticated candidate routes.
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)

		authGroup.GET("/assessments", c.attempt.ListAvailable)
		authGroup.GET("/my/results", c.attempt.MyResults)

		authGroup.POST("/assessments/:id/attempts", c.attempt.StartAttempt)
		authGroup.GET("/attempts/:token", c.attempt.GetState)
		authGroup.POST("/attempts/:token/select", c.attempt.SelectOption)
		authGroup.POST("/attempts/:token/answer", c.attempt.SubmitAnswer)
		authGroup.POST("/attempts/:token/events", c.attempt.ReportEvent)
		authGroup.GET("/attempts/:token/ws", c.attempt.StreamState)

		// HR content management and result review.
		hr := authGroup.Group("/hr")
		hr.Use(middleware.RoleMiddleware(model.HR, model.Manager, model.Director))
		{
			hr.GET("/assessments", c.assessment.ListAssessments)
			hr.POST("/assessments", c.assessment.CreateAssessment)
			hr.GET("/assessments/:id", c.assessment.GetAssessment)
			hr.PUT("/assessments/:id", c.assessment.UpdateAssessment)
			hr.DELETE("/assessments/:id", c.assessment.DeleteAssessment)
			hr.POST("/assessments/:id/publish", c.assessment.PublishAssessment)
			hr.GET("/assessments/:id/results", c.assessment.ListResults)

			hr.POST("/sections", c.assessment.CreateSection)
			hr.PUT("/sections/:id", c.assessment.UpdateSection)
			hr.DELETE("/sections/:id", c.assessment.DeleteSection)

			hr.POST("/questions", c.assessment.CreateQuestion)
			hr.PUT("/questions/:id", c.assessment.UpdateQuestion)
			hr.DELETE("/questions/:id", c.assessment.DeleteQuestion)

			hr.GET("/activity", c.assessment.ListActivity)
		}
	}
}
