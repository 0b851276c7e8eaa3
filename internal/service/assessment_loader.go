package service

import (
	"encoding/json"
	"math/rand"
	"talent_portal_backend/internal/model"
	"talent_portal_backend/internal/util"
	"talent_portal_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

// ContentProvider delivers assessment definitions. Satisfied by
// repository.AssessmentRepository; tests use an in-memory implementation.
type ContentProvider interface {
	GetAssessment(id uint) (*model.Assessment, error)
	GetSections(assessmentID uint) ([]model.AssessmentSection, error)
	GetQuestions(sectionID uint) ([]model.AssessmentQuestion, error)
}

// AttemptQuestion is the immutable per-attempt view of a question.
// TimeLimitSeconds of 0 falls back to the assessment default.
type AttemptQuestion struct {
	ID                 uint     `json:"id"`
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"-"`
	TimeLimitSeconds   int      `json:"timeLimitSeconds"`
}

type AttemptSection struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Questions   []AttemptQuestion `json:"questions"`
}

// AttemptAssessment is the snapshot one attempt runs against. Question order
// inside each section is fixed at load time; the running attempt never
// re-shuffles.
type AttemptAssessment struct {
	ID                  uint             `json:"id"`
	Title               string           `json:"title"`
	Description         string           `json:"description"`
	TimeLimitSeconds    int              `json:"timeLimitSeconds"`
	RandomizeQuestions  bool             `json:"randomizeQuestions"`
	PreventBacktracking bool             `json:"preventBacktracking"`
	Sections            []AttemptSection `json:"sections"`
	TotalQuestions      int              `json:"totalQuestions"`
}

// EffectiveLimit returns the question's own limit when set, else the
// assessment default.
func (a *AttemptAssessment) EffectiveLimit(q *AttemptQuestion) int {
	if q.TimeLimitSeconds > 0 {
		return q.TimeLimitSeconds
	}
	return a.TimeLimitSeconds
}

// AssessmentLoader builds attempt snapshots from the content provider. Seed
// is re-evaluated on every load, so two loads of a randomized assessment may
// differ while each stays fixed for its attempt.
type AssessmentLoader struct {
	Provider               ContentProvider
	DefaultQuestionSeconds int
	Seed                   func() int64
}

func NewAssessmentLoader(provider ContentProvider, defaultQuestionSeconds int) *AssessmentLoader {
	return &AssessmentLoader{
		Provider:               provider,
		DefaultQuestionSeconds: defaultQuestionSeconds,
		Seed:                   func() int64 { return time.Now().UnixNano() },
	}
}

// Load fetches and validates the full assessment definition. Any missing or
// malformed piece makes the whole assessment unavailable; a partial
// assessment is never startable.
func (l *AssessmentLoader) Load(assessmentID uint) (*AttemptAssessment, error) {
	a, err := l.Provider.GetAssessment(assessmentID)
	if err != nil {
		logger.Log.Warn("assessment fetch failed",
			zap.Uint("assessment_id", assessmentID), zap.Error(err))
		return nil, util.ErrContentUnavailable
	}
	if !a.IsPublished {
		return nil, util.ErrAssessmentNotLive
	}

	snapshot := &AttemptAssessment{
		ID:                  a.ID,
		Title:               a.Title,
		Description:         a.Description,
		TimeLimitSeconds:    a.TimeLimitSeconds,
		RandomizeQuestions:  a.RandomizeQuestions,
		PreventBacktracking: a.PreventBacktracking,
	}
	if snapshot.TimeLimitSeconds <= 0 {
		snapshot.TimeLimitSeconds = l.DefaultQuestionSeconds
	}

	sections, err := l.Provider.GetSections(a.ID)
	if err != nil {
		logger.Log.Warn("section fetch failed",
			zap.Uint("assessment_id", a.ID), zap.Error(err))
		return nil, util.ErrContentUnavailable
	}

	rng := rand.New(rand.NewSource(l.Seed()))

	for _, sec := range sections {
		rows, err := l.Provider.GetQuestions(sec.ID)
		if err != nil {
			logger.Log.Warn("question fetch failed",
				zap.Uint("section_id", sec.ID), zap.Error(err))
			return nil, util.ErrContentUnavailable
		}

		questions := make([]AttemptQuestion, 0, len(rows))
		for _, row := range rows {
			var options []string
			if err := json.Unmarshal(row.Options, &options); err != nil {
				return nil, util.ErrContentUnavailable
			}
			if len(options) < 2 || row.CorrectAnswerIndex < 0 || row.CorrectAnswerIndex >= len(options) {
				return nil, util.ErrContentUnavailable
			}
			questions = append(questions, AttemptQuestion{
				ID:                 row.ID,
				Text:               row.Text,
				Options:            options,
				CorrectAnswerIndex: row.CorrectAnswerIndex,
				TimeLimitSeconds:   row.TimeLimitSeconds,
			})
		}
		if len(questions) == 0 {
			return nil, util.ErrContentUnavailable
		}

		if a.RandomizeQuestions {
			questions = shuffleQuestions(rng, questions)
		}

		snapshot.Sections = append(snapshot.Sections, AttemptSection{
			ID:          sec.ID,
			Title:       sec.Title,
			Description: sec.Description,
			Questions:   questions,
		})
		snapshot.TotalQuestions += len(questions)
	}

	if snapshot.TotalQuestions == 0 {
		return nil, util.ErrContentUnavailable
	}

	return snapshot, nil
}

// shuffleQuestions returns an independent uniform permutation. Sections are
// never reordered, only questions within one.
func shuffleQuestions(rng *rand.Rand, questions []AttemptQuestion) []AttemptQuestion {
	shuffled := make([]AttemptQuestion, len(questions))
	copy(shuffled, questions)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}
