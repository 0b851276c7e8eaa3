package service

import (
	"sync"
	"talent_portal_backend/internal/util"
	"talent_portal_backend/pkg/logger"
	"talent_portal_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

type AttemptStatus string

const (
	StatusNotStarted AttemptStatus = "not_started"
	StatusInProgress AttemptStatus = "in_progress"
	StatusCompleted  AttemptStatus = "completed"
)

type IntegrityEventType string

const (
	IntegrityVisibilityHidden IntegrityEventType = "visibility_hidden"
	IntegrityFocusLost        IntegrityEventType = "focus_lost"
	IntegrityUnloadIntent     IntegrityEventType = "unload_intent"
)

type IntegrityEvent struct {
	Type IntegrityEventType `json:"type"`
	At   time.Time          `json:"at"`
}

// AttemptResult is the final state handed to the result submitter. Maps are
// copies; the engine keeps ownership of its own.
type AttemptResult struct {
	CandidateID  uint
	AssessmentID uint
	Score        float64
	Answers      map[uint]int
	Timings      map[uint]int
	StartedAt    time.Time
}

// QuestionView is the candidate-facing slice of the current question. The
// correct index never leaves the engine.
type QuestionView struct {
	ID      uint     `json:"id"`
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Number  int      `json:"number"` // 1-based across the whole assessment
	Total   int      `json:"total"`
}

// AttemptState is the observable snapshot rendered by the host page.
type AttemptState struct {
	Status             AttemptStatus `json:"status"`
	AssessmentID       uint          `json:"assessmentId"`
	AssessmentTitle    string        `json:"assessmentTitle"`
	SectionIndex       int           `json:"sectionIndex"`
	QuestionIndex      int           `json:"questionIndex"`
	SectionTitle       string        `json:"sectionTitle,omitempty"`
	Question           *QuestionView `json:"question,omitempty"`
	SelectedOption     *int          `json:"selectedOption,omitempty"`
	TimeRemaining      int           `json:"timeRemaining"`
	ProgressPercent    float64       `json:"progressPercent"`
	IntegrityWarnings  int           `json:"integrityWarnings"`
	Score              *float64      `json:"score,omitempty"`
	Passed             *bool         `json:"passed,omitempty"`
	PersistenceWarning bool          `json:"persistenceWarning"`
}

// AttemptEngine runs one candidate's live attempt. All mutation goes through
// the mutex, so clock ticks and UI actions land on a single timeline: the
// commit for question N fully updates the answer and timing maps before the
// countdown for N+1 starts.
type AttemptEngine struct {
	mu sync.Mutex

	assessment    *AttemptAssessment
	candidateID   uint
	passThreshold float64
	clock         Clock
	onComplete    func(AttemptResult) error

	status            AttemptStatus
	sectionIdx        int
	questionIdx       int
	pending           *int
	answers           map[uint]int
	timings           map[uint]int
	startedAt         time.Time
	questionStartedAt time.Time
	timeRemaining     int
	score             float64
	integrityEvents   []IntegrityEvent
	persistenceFailed bool
}

func NewAttemptEngine(assessment *AttemptAssessment, candidateID uint, passThreshold float64, clock Clock, onComplete func(AttemptResult) error) *AttemptEngine {
	return &AttemptEngine{
		assessment:    assessment,
		candidateID:   candidateID,
		passThreshold: passThreshold,
		clock:         clock,
		onComplete:    onComplete,
		status:        StatusNotStarted,
		answers:       make(map[uint]int),
		timings:       make(map[uint]int),
	}
}

// Start moves NotStarted -> InProgress at cursor (0,0) and begins the first
// countdown. A fresh start always begins at the first question with empty
// maps; there is no resume.
func (e *AttemptEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusNotStarted {
		return util.ErrAttemptFinished
	}

	e.status = StatusInProgress
	e.sectionIdx = 0
	e.questionIdx = 0
	e.startedAt = e.clock.Now()
	e.questionStartedAt = e.startedAt
	e.timeRemaining = e.assessment.EffectiveLimit(e.currentQuestion())

	e.clock.Start(time.Second, e.tick)
	monitoring.AttemptsStarted.Inc()

	logger.Log.Info("attempt started",
		zap.Uint("candidate_id", e.candidateID),
		zap.Uint("assessment_id", e.assessment.ID))
	return nil
}

// SelectOption records the pending selection for the current question.
// Selecting again overwrites; nothing is committed until submit or timeout.
func (e *AttemptEngine) SelectOption(index int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusInProgress {
		return util.ErrAttemptNotRunning
	}
	q := e.currentQuestion()
	if index < 0 || index >= len(q.Options) {
		return util.ErrInvalidOption
	}
	idx := index
	e.pending = &idx
	return nil
}

// SubmitCurrentAnswer commits the pending selection (if any) and advances.
func (e *AttemptEngine) SubmitCurrentAnswer() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusInProgress {
		return util.ErrAttemptNotRunning
	}
	e.commit(false)
	return nil
}

// RecordIntegrityEvent notes a tab-visibility/focus/unload signal. Advisory
// only: the countdown keeps running and the attempt is never failed for it.
func (e *AttemptEngine) RecordIntegrityEvent(t IntegrityEventType) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusInProgress {
		return util.ErrAttemptNotRunning
	}
	e.integrityEvents = append(e.integrityEvents, IntegrityEvent{Type: t, At: e.clock.Now()})
	monitoring.IntegrityEvents.WithLabelValues(string(t)).Inc()
	logger.Log.Warn("integrity event during attempt",
		zap.Uint("candidate_id", e.candidateID),
		zap.Uint("assessment_id", e.assessment.ID),
		zap.String("type", string(t)))
	return nil
}

// Abandon stops the countdown without writing anything. Used when the
// candidate walks away or a new attempt replaces this one.
func (e *AttemptEngine) Abandon() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusInProgress {
		e.clock.Stop()
	}
}

func (e *AttemptEngine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status != StatusInProgress {
		return
	}
	e.timeRemaining--
	if e.timeRemaining <= 0 {
		e.commit(true)
	}
}

func (e *AttemptEngine) currentQuestion() *AttemptQuestion {
	return &e.assessment.Sections[e.sectionIdx].Questions[e.questionIdx]
}

// commit finalizes the current question: stamps its timing, writes the
// pending selection (if any) into the answer map, then advances the cursor or
// completes the attempt. Caller holds the lock.
func (e *AttemptEngine) commit(timedOut bool) {
	q := e.currentQuestion()
	limit := e.assessment.EffectiveLimit(q)

	elapsed := limit
	if !timedOut {
		elapsed = int(e.clock.Now().Sub(e.questionStartedAt) / time.Second)
		if elapsed < 0 {
			elapsed = 0
		}
		if elapsed > limit {
			elapsed = limit
		}
	}
	e.timings[q.ID] = elapsed

	if e.pending != nil {
		e.answers[q.ID] = *e.pending
	}
	e.pending = nil

	// Forward-only advance: a committed question is never revisited.
	if e.questionIdx+1 < len(e.assessment.Sections[e.sectionIdx].Questions) {
		e.questionIdx++
	} else if e.sectionIdx+1 < len(e.assessment.Sections) {
		e.sectionIdx++
		e.questionIdx = 0
	} else {
		e.complete()
		return
	}

	e.questionStartedAt = e.clock.Now()
	e.timeRemaining = e.assessment.EffectiveLimit(e.currentQuestion())
}

func (e *AttemptEngine) complete() {
	e.status = StatusCompleted
	e.clock.Stop()
	e.timeRemaining = 0
	e.score = e.computeScore()
	monitoring.AttemptsCompleted.Inc()

	answers := make(map[uint]int, len(e.answers))
	for k, v := range e.answers {
		answers[k] = v
	}
	timings := make(map[uint]int, len(e.timings))
	for k, v := range e.timings {
		timings[k] = v
	}

	// Scoring is done and shown regardless of what persistence does; a
	// failed write only flags a warning on the completed view.
	if e.onComplete != nil {
		if err := e.onComplete(AttemptResult{
			CandidateID:  e.candidateID,
			AssessmentID: e.assessment.ID,
			Score:        e.score,
			Answers:      answers,
			Timings:      timings,
			StartedAt:    e.startedAt,
		}); err != nil {
			e.persistenceFailed = true
		}
	}
}

// computeScore: 100 * correct / total. Unanswered questions stay in the
// denominator and count as incorrect.
func (e *AttemptEngine) computeScore() float64 {
	correct := 0
	for _, sec := range e.assessment.Sections {
		for _, q := range sec.Questions {
			if idx, ok := e.answers[q.ID]; ok && idx == q.CorrectAnswerIndex {
				correct++
			}
		}
	}
	return 100 * float64(correct) / float64(e.assessment.TotalQuestions)
}

// State returns the observable snapshot. Reading it has no side effects:
// re-rendering a completed attempt never re-submits.
func (e *AttemptEngine) State() AttemptState {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := AttemptState{
		Status:             e.status,
		AssessmentID:       e.assessment.ID,
		AssessmentTitle:    e.assessment.Title,
		SectionIndex:       e.sectionIdx,
		QuestionIndex:      e.questionIdx,
		TimeRemaining:      e.timeRemaining,
		IntegrityWarnings:  len(e.integrityEvents),
		PersistenceWarning: e.persistenceFailed,
	}

	committed := len(e.timings)
	state.ProgressPercent = 100 * float64(committed) / float64(e.assessment.TotalQuestions)

	switch e.status {
	case StatusInProgress:
		sec := e.assessment.Sections[e.sectionIdx]
		q := e.currentQuestion()
		state.SectionTitle = sec.Title
		number := e.questionIdx + 1
		for i := 0; i < e.sectionIdx; i++ {
			number += len(e.assessment.Sections[i].Questions)
		}
		state.Question = &QuestionView{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
			Number:  number,
			Total:   e.assessment.TotalQuestions,
		}
		if e.pending != nil {
			sel := *e.pending
			state.SelectedOption = &sel
		}
	case StatusCompleted:
		score := e.score
		passed := score >= e.passThreshold
		state.Score = &score
		state.Passed = &passed
	}

	return state
}
