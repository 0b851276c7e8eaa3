package controller

import (
	"errors"
	"net/http"
	"talent_portal_backend/internal/service"
	"talent_portal_backend/internal/util"
	"talent_portal_backend/pkg/logger"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// AttemptController is the candidate surface: browse published assessments,
// run a timed attempt, and stream its state over a websocket.
type AttemptController struct {
	AttemptService *service.AttemptService
	ContentService *service.ContentService
}

func NewAttemptController(attemptService *service.AttemptService, contentService *service.ContentService) *AttemptController {
	return &AttemptController{
		AttemptService: attemptService,
		ContentService: contentService,
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ListAvailable godoc
// @Summary Published assessments
// @Description Assessments a candidate can start right now
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Assessment} "Success"
// @Router /api/assessments [get]
func (c *AttemptController) ListAvailable(ctx *gin.Context) {
	list, err := c.ContentService.ListPublishedAssessments()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// MyResults godoc
// @Summary My completed results
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.AssessmentResult} "Success"
// @Router /api/my/results [get]
func (c *AttemptController) MyResults(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	list, err := c.ContentService.ListCandidateResults(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, list)
}

// StartAttempt godoc
// @Summary Start an attempt
// @Description Loads a fresh shuffled snapshot and starts the countdown on question one. Starting again abandons any previous in-progress attempt for the same assessment.
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assessment ID"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 404 {object} util.Response "Assessment not found"
// @Failure 409 {object} util.Response "Assessment not published"
// @Failure 503 {object} util.Response "Content unavailable"
// @Router /api/assessments/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	token, state, err := c.AttemptService.StartAttempt(claims.UserID, util.MustParseUint(ctx.Param("id")))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrAssessmentNotLive):
			util.Error(ctx, http.StatusConflict, "Assessment is not published")
		case errors.Is(err, util.ErrContentUnavailable):
			util.Error(ctx, http.StatusServiceUnavailable, "Assessment content is unavailable")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, gin.H{"attemptToken": token, "state": state})
}

// GetState godoc
// @Summary Attempt state
// @Description Current observable snapshot; reading it never mutates the attempt
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   token path string true "Attempt token"
// @Success 200 {object} util.Response{data=service.AttemptState} "Success"
// @Failure 404 {object} util.Response "Attempt not found"
// @Router /api/attempts/{token} [get]
func (c *AttemptController) GetState(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.AttemptService.State(ctx.Param("token"), claims.UserID)
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, state)
}

type SelectOptionRequest struct {
	OptionIndex int `json:"optionIndex"`
}

// SelectOption godoc
// @Summary Select an option
// @Description Records the pending selection for the current question; selecting again overwrites
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   token path string true "Attempt token"
// @Param   body body SelectOptionRequest true "Zero-based option index"
// @Success 200 {object} util.Response{data=service.AttemptState} "Success"
// @Failure 400 {object} util.Response "Option index out of range"
// @Failure 404 {object} util.Response "Attempt not found"
// @Failure 409 {object} util.Response "Attempt not in progress"
// @Router /api/attempts/{token}/select [post]
func (c *AttemptController) SelectOption(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SelectOptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.AttemptService.SelectOption(ctx.Param("token"), claims.UserID, req.OptionIndex)
	if err != nil {
		c.attemptError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

// SubmitAnswer godoc
// @Summary Submit the current answer
// @Description Commits the pending selection (or nothing) and advances; on the last question this completes and scores the attempt
// @Tags attempts
// @Produce  json
// @Security ApiKeyAuth
// @Param   token path string true "Attempt token"
// @Success 200 {object} util.Response{data=service.AttemptState} "Success"
// @Failure 404 {object} util.Response "Attempt not found"
// @Failure 409 {object} util.Response "Attempt not in progress"
// @Router /api/attempts/{token}/answer [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	state, err := c.AttemptService.SubmitAnswer(ctx.Param("token"), claims.UserID)
	if err != nil {
		c.attemptError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

type IntegrityEventRequest struct {
	Type string `json:"type" binding:"required,oneof=visibility_hidden focus_lost unload_intent"`
}

// ReportEvent godoc
// @Summary Report an integrity signal
// @Description Advisory only: the countdown keeps running and the attempt is never failed for it
// @Tags attempts
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   token path string true "Attempt token"
// @Param   body body IntegrityEventRequest true "Signal type"
// @Success 200 {object} util.Response{data=service.AttemptState} "Success"
// @Failure 404 {object} util.Response "Attempt not found"
// @Router /api/attempts/{token}/events [post]
func (c *AttemptController) ReportEvent(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req IntegrityEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	state, err := c.AttemptService.ReportIntegrityEvent(ctx.Param("token"), claims.UserID, service.IntegrityEventType(req.Type))
	if err != nil {
		c.attemptError(ctx, err)
		return
	}
	util.Success(ctx, state)
}

func (c *AttemptController) attemptError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrAttemptNotRunning), errors.Is(err, util.ErrAttemptFinished):
		util.Error(ctx, http.StatusConflict, "Attempt is not in progress")
	case errors.Is(err, util.ErrInvalidOption):
		util.BadRequest(ctx, "Option index is out of range")
	default:
		util.LogInternalError(ctx, err)
	}
}

// StreamState godoc
// @Summary Live attempt stream
// @Description Pushes the attempt state once per second over a websocket until the attempt completes
// @Tags attempts
// @Security ApiKeyAuth
// @Param   token path string true "Attempt token"
// @Success 101 {string} string "Switching protocols"
// @Failure 404 {object} util.Response "Attempt not found"
// @Router /api/attempts/{token}/ws [get]
func (c *AttemptController) StreamState(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	attemptToken := ctx.Param("token")
	if _, err := c.AttemptService.State(attemptToken, claims.UserID); err != nil {
		util.NotFound(ctx)
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		logger.Log.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close handshakes are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		state, err := c.AttemptService.State(attemptToken, claims.UserID)
		if err != nil {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "attempt gone"),
				time.Now().Add(time.Second))
			return
		}

		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(state); err != nil {
			return
		}

		if state.Status == service.StatusCompleted {
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "attempt completed"),
				time.Now().Add(time.Second))
			return
		}

		<-ticker.C
	}
}
