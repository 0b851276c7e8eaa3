package controller

import (
	"errors"
	"strconv"
	"talent_portal_backend/internal/service"
	"talent_portal_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AssessmentController is the HR surface: authoring assessments, sections and
// questions, publishing, and reviewing results.
type AssessmentController struct {
	ContentService *service.ContentService
}

func NewAssessmentController(contentService *service.ContentService) *AssessmentController {
	return &AssessmentController{ContentService: contentService}
}

func pageParams(ctx *gin.Context) (int, int) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

// ListAssessments godoc
// @Summary List assessments
// @Description Paginated list of all assessments, published or not
// @Tags assessments
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number"
// @Param   limit query int false "Page size"
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/hr/assessments [get]
func (c *AssessmentController) ListAssessments(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	list, total, err := c.ContentService.ListAssessments(page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// CreateAssessment godoc
// @Summary Create an assessment
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.AssessmentRequest true "Assessment definition"
// @Success 201 {object} util.Response{data=model.Assessment} "Created"
// @Failure 400 {object} util.Response "Invalid request body"
// @Router /api/hr/assessments [post]
func (c *AssessmentController) CreateAssessment(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.ContentService.CreateAssessment(req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, a)
}

// GetAssessment godoc
// @Summary Assessment detail
// @Description Full definition including sections and questions
// @Tags assessments
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assessment ID"
// @Success 200 {object} util.Response{data=service.AssessmentDetail} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/hr/assessments/{id} [get]
func (c *AssessmentController) GetAssessment(ctx *gin.Context) {
	detail, err := c.ContentService.GetAssessmentDetail(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, detail)
}

// UpdateAssessment godoc
// @Summary Update an assessment
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assessment ID"
// @Param   body body service.AssessmentRequest true "Assessment definition"
// @Success 200 {object} util.Response{data=model.Assessment} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/hr/assessments/{id} [put]
func (c *AssessmentController) UpdateAssessment(ctx *gin.Context) {
	var req service.AssessmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	a, err := c.ContentService.UpdateAssessment(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, a)
}

// DeleteAssessment godoc
// @Summary Delete an assessment
// @Tags assessments
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assessment ID"
// @Success 200 {object} util.Response "Success"
// @Router /api/hr/assessments/{id} [delete]
func (c *AssessmentController) DeleteAssessment(ctx *gin.Context) {
	if err := c.ContentService.DeleteAssessment(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// PublishAssessment godoc
// @Summary Publish an assessment
// @Description Marks the assessment live after validating it has loadable content
// @Tags assessments
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assessment ID"
// @Success 200 {object} util.Response{data=model.Assessment} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Failure 422 {object} util.Response "Content incomplete"
// @Router /api/hr/assessments/{id}/publish [post]
func (c *AssessmentController) PublishAssessment(ctx *gin.Context) {
	a, err := c.ContentService.Publish(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrAssessmentNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrContentUnavailable):
			util.Error(ctx, 422, "Assessment has no complete section content to publish")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, a)
}

// CreateSection godoc
// @Summary Create a section
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.SectionRequest true "Section definition"
// @Success 201 {object} util.Response{data=model.AssessmentSection} "Created"
// @Failure 404 {object} util.Response "Assessment not found"
// @Router /api/hr/sections [post]
func (c *AssessmentController) CreateSection(ctx *gin.Context) {
	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sec, err := c.ContentService.CreateSection(req)
	if err != nil {
		if errors.Is(err, util.ErrAssessmentNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Created(ctx, sec)
}

// UpdateSection godoc
// @Summary Update a section
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Section ID"
// @Param   body body service.SectionRequest true "Section definition"
// @Success 200 {object} util.Response{data=model.AssessmentSection} "Success"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/hr/sections/{id} [put]
func (c *AssessmentController) UpdateSection(ctx *gin.Context) {
	var req service.SectionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	sec, err := c.ContentService.UpdateSection(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		if errors.Is(err, util.ErrSectionNotFound) {
			util.NotFound(ctx)
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}
	util.Success(ctx, sec)
}

// DeleteSection godoc
// @Summary Delete a section
// @Tags assessments
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Section ID"
// @Success 200 {object} util.Response "Success"
// @Router /api/hr/sections/{id} [delete]
func (c *AssessmentController) DeleteSection(ctx *gin.Context) {
	if err := c.ContentService.DeleteSection(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// CreateQuestion godoc
// @Summary Create a question
// @Description Questions need at least two options and an in-range correct index
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuestionRequest true "Question definition"
// @Success 201 {object} util.Response{data=model.AssessmentQuestion} "Created"
// @Failure 400 {object} util.Response "Malformed question"
// @Failure 404 {object} util.Response "Section not found"
// @Router /api/hr/questions [post]
func (c *AssessmentController) CreateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ContentService.CreateQuestion(req)
	if err != nil {
		c.questionError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// UpdateQuestion godoc
// @Summary Update a question
// @Tags assessments
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Question ID"
// @Param   body body service.QuestionRequest true "Question definition"
// @Success 200 {object} util.Response{data=model.AssessmentQuestion} "Success"
// @Failure 400 {object} util.Response "Malformed question"
// @Failure 404 {object} util.Response "Not found"
// @Router /api/hr/questions/{id} [put]
func (c *AssessmentController) UpdateQuestion(ctx *gin.Context) {
	var req service.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.ContentService.UpdateQuestion(util.MustParseUint(ctx.Param("id")), req)
	if err != nil {
		c.questionError(ctx, err)
		return
	}
	util.Success(ctx, q)
}

func (c *AssessmentController) questionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrQuestionNeedsOptions):
		util.BadRequest(ctx, "A question needs at least two options")
	case errors.Is(err, util.ErrInvalidOption):
		util.BadRequest(ctx, "Correct answer index is out of range")
	case errors.Is(err, util.ErrSectionNotFound), errors.Is(err, util.ErrQuestionNotFound):
		util.NotFound(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}

// DeleteQuestion godoc
// @Summary Delete a question
// @Tags assessments
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Question ID"
// @Success 200 {object} util.Response "Success"
// @Router /api/hr/questions/{id} [delete]
func (c *AssessmentController) DeleteQuestion(ctx *gin.Context) {
	if err := c.ContentService.DeleteQuestion(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

// ListResults godoc
// @Summary Results for an assessment
// @Tags results
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "Assessment ID"
// @Param   page query int false "Page number"
// @Param   limit query int false "Page size"
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/hr/assessments/{id}/results [get]
func (c *AssessmentController) ListResults(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	list, total, err := c.ContentService.ListResults(util.MustParseUint(ctx.Param("id")), page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}

// ListActivity godoc
// @Summary Audit trail
// @Description Paginated activity log, optionally filtered by user
// @Tags results
// @Produce  json
// @Security ApiKeyAuth
// @Param   page query int false "Page number"
// @Param   limit query int false "Page size"
// @Param   userId query int false "Filter by user ID"
// @Success 200 {object} util.Response{data=util.PageResponse} "Success"
// @Router /api/hr/activity [get]
func (c *AssessmentController) ListActivity(ctx *gin.Context) {
	page, limit := pageParams(ctx)
	list, total, err := c.ContentService.ListActivity(page, limit, util.MustParseUint(ctx.Query("userId")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{List: list, Total: total, Page: page, Limit: limit})
}
