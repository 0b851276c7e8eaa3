package service

import (
	"encoding/json"
	"talent_portal_backend/internal/model"
	"talent_portal_backend/internal/repository"
	"talent_portal_backend/internal/util"
	"time"
)

// ContentService is the HR-facing side of assessment content: the definitions
// the content provider later serves to attempts.
type ContentService struct {
	Repo     *repository.AssessmentRepository
	Results  *repository.ResultRepository
	Activity *repository.ActivityRepository
}

func NewContentService(repo *repository.AssessmentRepository, results *repository.ResultRepository, activity *repository.ActivityRepository) *ContentService {
	return &ContentService{Repo: repo, Results: results, Activity: activity}
}

type AssessmentRequest struct {
	Title               string `json:"title" binding:"required"`
	Description         string `json:"description"`
	TimeLimitSeconds    int    `json:"timeLimitSeconds"`
	RandomizeQuestions  bool   `json:"randomizeQuestions"`
	PreventBacktracking bool   `json:"preventBacktracking"`
}

func (s *ContentService) CreateAssessment(req AssessmentRequest) (*model.Assessment, error) {
	a := &model.Assessment{
		Title:               req.Title,
		Description:         req.Description,
		TimeLimitSeconds:    req.TimeLimitSeconds,
		RandomizeQuestions:  req.RandomizeQuestions,
		PreventBacktracking: req.PreventBacktracking,
	}
	if err := s.Repo.CreateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ContentService) UpdateAssessment(id uint, req AssessmentRequest) (*model.Assessment, error) {
	a, err := s.Repo.GetAssessment(id)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}

	a.Title = req.Title
	a.Description = req.Description
	a.TimeLimitSeconds = req.TimeLimitSeconds
	a.RandomizeQuestions = req.RandomizeQuestions
	a.PreventBacktracking = req.PreventBacktracking
	if err := s.Repo.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *ContentService) DeleteAssessment(id uint) error {
	return s.Repo.DeleteAssessment(id)
}

func (s *ContentService) ListAssessments(page, limit int) ([]model.Assessment, int64, error) {
	return s.Repo.ListAssessments(page, limit)
}

func (s *ContentService) ListPublishedAssessments() ([]model.Assessment, error) {
	return s.Repo.ListPublished()
}

// Publish flips the assessment live after checking it would actually load:
// every section needs at least one well-formed question.
func (s *ContentService) Publish(id uint) (*model.Assessment, error) {
	a, err := s.Repo.GetAssessment(id)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}

	sections, err := s.Repo.GetSections(id)
	if err != nil || len(sections) == 0 {
		return nil, util.ErrContentUnavailable
	}
	for _, sec := range sections {
		qs, err := s.Repo.GetQuestions(sec.ID)
		if err != nil || len(qs) == 0 {
			return nil, util.ErrContentUnavailable
		}
	}

	now := time.Now()
	a.IsPublished = true
	a.PublishedAt = &now
	if err := s.Repo.UpdateAssessment(a); err != nil {
		return nil, err
	}
	return a, nil
}

type SectionRequest struct {
	AssessmentID uint   `json:"assessmentId" binding:"required"`
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	Order        int    `json:"order"`
}

func (s *ContentService) CreateSection(req SectionRequest) (*model.AssessmentSection, error) {
	if _, err := s.Repo.GetAssessment(req.AssessmentID); err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	sec := &model.AssessmentSection{
		AssessmentID: req.AssessmentID,
		Title:        req.Title,
		Description:  req.Description,
		Order:        req.Order,
	}
	if err := s.Repo.CreateSection(sec); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *ContentService) UpdateSection(id uint, req SectionRequest) (*model.AssessmentSection, error) {
	sec, err := s.Repo.FindSectionByID(id)
	if err != nil {
		return nil, util.ErrSectionNotFound
	}
	sec.Title = req.Title
	sec.Description = req.Description
	sec.Order = req.Order
	if err := s.Repo.UpdateSection(sec); err != nil {
		return nil, err
	}
	return sec, nil
}

func (s *ContentService) DeleteSection(id uint) error {
	return s.Repo.DeleteSection(id)
}

type QuestionRequest struct {
	SectionID          uint     `json:"sectionId" binding:"required"`
	Text               string   `json:"text" binding:"required"`
	Options            []string `json:"options" binding:"required"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	TimeLimitSeconds   int      `json:"timeLimitSeconds"`
	Order              int      `json:"order"`
}

func (s *ContentService) CreateQuestion(req QuestionRequest) (*model.AssessmentQuestion, error) {
	if len(req.Options) < 2 {
		return nil, util.ErrQuestionNeedsOptions
	}
	if req.CorrectAnswerIndex < 0 || req.CorrectAnswerIndex >= len(req.Options) {
		return nil, util.ErrInvalidOption
	}
	if _, err := s.Repo.FindSectionByID(req.SectionID); err != nil {
		return nil, util.ErrSectionNotFound
	}

	options, _ := json.Marshal(req.Options)
	q := &model.AssessmentQuestion{
		SectionID:          req.SectionID,
		Text:               req.Text,
		Options:            options,
		CorrectAnswerIndex: req.CorrectAnswerIndex,
		TimeLimitSeconds:   req.TimeLimitSeconds,
		Order:              req.Order,
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ContentService) UpdateQuestion(id uint, req QuestionRequest) (*model.AssessmentQuestion, error) {
	q, err := s.Repo.FindQuestionByID(id)
	if err != nil {
		return nil, util.ErrQuestionNotFound
	}
	if len(req.Options) < 2 {
		return nil, util.ErrQuestionNeedsOptions
	}
	if req.CorrectAnswerIndex < 0 || req.CorrectAnswerIndex >= len(req.Options) {
		return nil, util.ErrInvalidOption
	}

	options, _ := json.Marshal(req.Options)
	q.Text = req.Text
	q.Options = options
	q.CorrectAnswerIndex = req.CorrectAnswerIndex
	q.TimeLimitSeconds = req.TimeLimitSeconds
	q.Order = req.Order
	if err := s.Repo.UpdateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *ContentService) DeleteQuestion(id uint) error {
	return s.Repo.DeleteQuestion(id)
}

type AssessmentDetail struct {
	Assessment *model.Assessment `json:"assessment"`
	Sections   []SectionDetail   `json:"sections"`
}

type SectionDetail struct {
	Section   model.AssessmentSection    `json:"section"`
	Questions []model.AssessmentQuestion `json:"questions"`
}

func (s *ContentService) GetAssessmentDetail(id uint) (*AssessmentDetail, error) {
	a, err := s.Repo.GetAssessment(id)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}

	sections, err := s.Repo.GetSections(id)
	if err != nil {
		return nil, err
	}

	detail := &AssessmentDetail{Assessment: a}
	for _, sec := range sections {
		qs, err := s.Repo.GetQuestions(sec.ID)
		if err != nil {
			return nil, err
		}
		detail.Sections = append(detail.Sections, SectionDetail{Section: sec, Questions: qs})
	}
	return detail, nil
}

func (s *ContentService) ListResults(assessmentID uint, page, limit int) ([]model.AssessmentResult, int64, error) {
	return s.Results.ListByAssessment(assessmentID, page, limit)
}

func (s *ContentService) ListCandidateResults(candidateID uint) ([]model.AssessmentResult, error) {
	return s.Results.ListByCandidate(candidateID)
}

func (s *ContentService) ListActivity(page, limit int, userID uint) ([]model.ActivityLog, int64, error) {
	return s.Activity.List(page, limit, userID)
}
