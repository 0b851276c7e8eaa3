package controller

import (
	"net/http"
	"talent_portal_backend/internal/service"
	"talent_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthController struct {
	DB             *gorm.DB
	AttemptService *service.AttemptService
}

func NewHealthController(db *gorm.DB, attemptService *service.AttemptService) *HealthController {
	return &HealthController{DB: db, AttemptService: attemptService}
}

// @Summary Health check
// @Description Service status including live attempt count
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	sqlDB, err := c.DB.DB()
	if err != nil {
		util.InternalServerError(ctx)
		return
	}

	if err := sqlDB.Ping(); err != nil {
		util.Error(ctx, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"database": "up",
		},
		"liveAttempts": c.AttemptService.LiveSessions(),
	})
}
