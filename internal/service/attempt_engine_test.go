package service

import (
	"errors"
	"os"
	"sync"
	"talent_portal_backend/internal/util"
	"talent_portal_backend/pkg/logger"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	logger.Log = zap.NewNop()
	os.Exit(m.Run())
}

// fakeClock drives the engine tick by tick from the test goroutine.
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	tick func()
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Start(interval time.Duration, tick func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = tick
}

func (c *fakeClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = nil
}

func (c *fakeClock) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick != nil
}

// Advance moves the clock forward one second at a time, firing the tick after
// each step like the production ticker would.
func (c *fakeClock) Advance(seconds int) {
	for i := 0; i < seconds; i++ {
		c.mu.Lock()
		c.now = c.now.Add(time.Second)
		tick := c.tick
		c.mu.Unlock()
		if tick != nil {
			tick()
		}
	}
}

func testAssessment() *AttemptAssessment {
	return &AttemptAssessment{
		ID:               7,
		Title:            "Backend Engineer Screen",
		TimeLimitSeconds: 5,
		Sections: []AttemptSection{
			{
				ID:    1,
				Title: "Aptitude",
				Questions: []AttemptQuestion{
					{ID: 1, Text: "Q1", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 0},
					{ID: 2, Text: "Q2", Options: []string{"a", "b"}, CorrectAnswerIndex: 1, TimeLimitSeconds: 3},
				},
			},
			{
				ID:    2,
				Title: "Role Fit",
				Questions: []AttemptQuestion{
					{ID: 3, Text: "Q3", Options: []string{"a", "b", "c"}, CorrectAnswerIndex: 2},
					{ID: 4, Text: "Q4", Options: []string{"a", "b"}, CorrectAnswerIndex: 0},
				},
			},
		},
		TotalQuestions: 4,
	}
}

type completionRecorder struct {
	mu      sync.Mutex
	calls   int
	last    AttemptResult
	failErr error
}

func (r *completionRecorder) submit(res AttemptResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.last = res
	return r.failErr
}

func newTestEngine(t *testing.T) (*AttemptEngine, *fakeClock, *completionRecorder) {
	t.Helper()
	clock := newFakeClock()
	rec := &completionRecorder{}
	engine := NewAttemptEngine(testAssessment(), 42, 70, clock, rec.submit)
	return engine, clock, rec
}

func mustStart(t *testing.T, engine *AttemptEngine) {
	t.Helper()
	if err := engine.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
}

func answer(t *testing.T, engine *AttemptEngine, option int) {
	t.Helper()
	if err := engine.SelectOption(option); err != nil {
		t.Fatalf("SelectOption(%d): %v", option, err)
	}
	if err := engine.SubmitCurrentAnswer(); err != nil {
		t.Fatalf("SubmitCurrentAnswer: %v", err)
	}
}

func TestStartInitialState(t *testing.T) {
	engine, clock, _ := newTestEngine(t)
	mustStart(t, engine)

	state := engine.State()
	if state.Status != StatusInProgress {
		t.Fatalf("status = %s, want %s", state.Status, StatusInProgress)
	}
	if state.SectionIndex != 0 || state.QuestionIndex != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", state.SectionIndex, state.QuestionIndex)
	}
	if state.TimeRemaining != 5 {
		t.Errorf("timeRemaining = %d, want 5", state.TimeRemaining)
	}
	if state.Question == nil || state.Question.Number != 1 || state.Question.Total != 4 {
		t.Errorf("question view = %+v, want number 1 of 4", state.Question)
	}
	if state.SelectedOption != nil {
		t.Errorf("selectedOption = %v, want nil", *state.SelectedOption)
	}
	if !clock.running() {
		t.Error("countdown not running after start")
	}

	if err := engine.Start(); err == nil {
		t.Error("second Start succeeded, want error")
	}
}

func TestForwardOnlyAdvance(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	mustStart(t, engine)

	var numbers []int
	for engine.State().Status == StatusInProgress {
		numbers = append(numbers, engine.State().Question.Number)
		answer(t, engine, 0)
	}

	want := []int{1, 2, 3, 4}
	if len(numbers) != len(want) {
		t.Fatalf("visited %d questions, want %d", len(numbers), len(want))
	}
	for i := range want {
		if numbers[i] != want[i] {
			t.Errorf("visit %d = question %d, want %d", i, numbers[i], want[i])
		}
	}
}

func TestSectionTransition(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	mustStart(t, engine)

	answer(t, engine, 0)
	answer(t, engine, 0)

	state := engine.State()
	if state.SectionIndex != 1 || state.QuestionIndex != 0 {
		t.Fatalf("cursor = (%d,%d), want (1,0)", state.SectionIndex, state.QuestionIndex)
	}
	if state.SectionTitle != "Role Fit" {
		t.Errorf("sectionTitle = %q, want %q", state.SectionTitle, "Role Fit")
	}
}

func TestScoringHalfCorrect(t *testing.T) {
	engine, _, rec := newTestEngine(t)
	mustStart(t, engine)

	answer(t, engine, 0) // correct
	answer(t, engine, 1) // correct
	answer(t, engine, 0) // wrong
	answer(t, engine, 1) // wrong

	state := engine.State()
	if state.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", state.Status)
	}
	if state.Score == nil || *state.Score != 50 {
		t.Fatalf("score = %v, want 50", state.Score)
	}
	if state.Passed == nil || *state.Passed {
		t.Errorf("passed = %v, want false at threshold 70", state.Passed)
	}
	if rec.last.Score != 50 {
		t.Errorf("submitted score = %v, want 50", rec.last.Score)
	}
}

func TestScoringAllCorrect(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	mustStart(t, engine)

	answer(t, engine, 0)
	answer(t, engine, 1)
	answer(t, engine, 2)
	answer(t, engine, 0)

	state := engine.State()
	if state.Score == nil || *state.Score != 100 {
		t.Fatalf("score = %v, want 100", state.Score)
	}
	if state.Passed == nil || !*state.Passed {
		t.Errorf("passed = %v, want true", state.Passed)
	}
}

func TestUnansweredStayInDenominator(t *testing.T) {
	engine, clock, rec := newTestEngine(t)
	mustStart(t, engine)

	answer(t, engine, 0) // correct
	// Let the remaining three questions time out unanswered.
	clock.Advance(3 + 5 + 5)

	state := engine.State()
	if state.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", state.Status)
	}
	if state.Score == nil || *state.Score != 25 {
		t.Fatalf("score = %v, want 25", state.Score)
	}
	if len(rec.last.Answers) != 1 {
		t.Errorf("answers recorded = %d, want only the submitted one", len(rec.last.Answers))
	}
}

func TestTimeoutAutoCommit(t *testing.T) {
	engine, clock, _ := newTestEngine(t)
	mustStart(t, engine)

	if err := engine.SelectOption(1); err != nil {
		t.Fatalf("SelectOption: %v", err)
	}
	clock.Advance(5)

	state := engine.State()
	if state.QuestionIndex != 1 {
		t.Fatalf("questionIndex = %d, want 1 after timeout", state.QuestionIndex)
	}
	// The pending selection commits on timeout and the next countdown uses
	// the question's own shorter limit.
	if state.TimeRemaining != 3 {
		t.Errorf("timeRemaining = %d, want 3", state.TimeRemaining)
	}
	if state.SelectedOption != nil {
		t.Errorf("selection leaked across questions: %v", *state.SelectedOption)
	}
}

func TestTimeoutWithoutSelectionRecordsNoAnswer(t *testing.T) {
	engine, clock, rec := newTestEngine(t)
	mustStart(t, engine)

	clock.Advance(5 + 3 + 5 + 5)

	if engine.State().Status != StatusCompleted {
		t.Fatal("attempt did not complete after all questions timed out")
	}
	if len(rec.last.Answers) != 0 {
		t.Errorf("answers = %v, want none", rec.last.Answers)
	}
	for id, secs := range rec.last.Timings {
		want := 5
		if id == 2 {
			want = 3
		}
		if secs != want {
			t.Errorf("timing[%d] = %d, want full limit %d", id, secs, want)
		}
	}
	if len(rec.last.Timings) != 4 {
		t.Errorf("timings recorded for %d questions, want 4", len(rec.last.Timings))
	}
}

func TestManualSubmitRecordsElapsed(t *testing.T) {
	engine, clock, rec := newTestEngine(t)
	mustStart(t, engine)

	clock.Advance(2)
	answer(t, engine, 0)

	clock.Advance(3 + 5 + 5) // time out the rest

	if got := rec.last.Timings[1]; got != 2 {
		t.Errorf("timing[1] = %d, want 2", got)
	}
}

func TestSelectOverwritesPending(t *testing.T) {
	engine, _, rec := newTestEngine(t)
	mustStart(t, engine)

	if err := engine.SelectOption(0); err != nil {
		t.Fatalf("SelectOption: %v", err)
	}
	if err := engine.SelectOption(2); err != nil {
		t.Fatalf("SelectOption: %v", err)
	}

	state := engine.State()
	if state.SelectedOption == nil || *state.SelectedOption != 2 {
		t.Fatalf("selectedOption = %v, want 2", state.SelectedOption)
	}

	if err := engine.SubmitCurrentAnswer(); err != nil {
		t.Fatalf("SubmitCurrentAnswer: %v", err)
	}
	answer(t, engine, 0)
	answer(t, engine, 0)
	answer(t, engine, 0)

	if got := rec.last.Answers[1]; got != 2 {
		t.Errorf("answers[1] = %d, want last selection 2", got)
	}
}

func TestSelectOutOfRange(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	mustStart(t, engine)

	if err := engine.SelectOption(3); !errors.Is(err, util.ErrInvalidOption) {
		t.Errorf("SelectOption(3) = %v, want ErrInvalidOption", err)
	}
	if err := engine.SelectOption(-1); !errors.Is(err, util.ErrInvalidOption) {
		t.Errorf("SelectOption(-1) = %v, want ErrInvalidOption", err)
	}
}

func TestCompletionSubmitsExactlyOnce(t *testing.T) {
	engine, clock, rec := newTestEngine(t)
	mustStart(t, engine)

	answer(t, engine, 0)
	answer(t, engine, 1)
	answer(t, engine, 2)
	answer(t, engine, 0)

	// Re-reading the completed state and stray ticks must not resubmit.
	for i := 0; i < 5; i++ {
		_ = engine.State()
	}
	clock.Advance(10)
	_ = engine.State()

	if rec.calls != 1 {
		t.Fatalf("onComplete called %d times, want 1", rec.calls)
	}
	if err := engine.SubmitCurrentAnswer(); !errors.Is(err, util.ErrAttemptNotRunning) {
		t.Errorf("submit after completion = %v, want ErrAttemptNotRunning", err)
	}
	if err := engine.SelectOption(0); !errors.Is(err, util.ErrAttemptNotRunning) {
		t.Errorf("select after completion = %v, want ErrAttemptNotRunning", err)
	}
}

func TestPersistenceFailureStillShowsScore(t *testing.T) {
	engine, _, rec := newTestEngine(t)
	rec.failErr = errors.New("db down")
	mustStart(t, engine)

	answer(t, engine, 0)
	answer(t, engine, 1)
	answer(t, engine, 2)
	answer(t, engine, 0)

	state := engine.State()
	if state.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", state.Status)
	}
	if state.Score == nil || *state.Score != 100 {
		t.Fatalf("score = %v, want 100 despite persistence failure", state.Score)
	}
	if !state.PersistenceWarning {
		t.Error("persistenceWarning = false, want true")
	}
}

func TestIntegrityEventsAreAdvisory(t *testing.T) {
	engine, clock, _ := newTestEngine(t)
	mustStart(t, engine)

	clock.Advance(2)
	before := engine.State()

	if err := engine.RecordIntegrityEvent(IntegrityVisibilityHidden); err != nil {
		t.Fatalf("RecordIntegrityEvent: %v", err)
	}
	if err := engine.RecordIntegrityEvent(IntegrityFocusLost); err != nil {
		t.Fatalf("RecordIntegrityEvent: %v", err)
	}

	after := engine.State()
	if after.Status != StatusInProgress {
		t.Fatalf("status = %s, want still in progress", after.Status)
	}
	if after.TimeRemaining != before.TimeRemaining {
		t.Errorf("timeRemaining changed %d -> %d on integrity event", before.TimeRemaining, after.TimeRemaining)
	}
	if after.SectionIndex != before.SectionIndex || after.QuestionIndex != before.QuestionIndex {
		t.Error("cursor moved on integrity event")
	}
	if after.IntegrityWarnings != 2 {
		t.Errorf("integrityWarnings = %d, want 2", after.IntegrityWarnings)
	}
}

func TestProgressPercent(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	mustStart(t, engine)

	if got := engine.State().ProgressPercent; got != 0 {
		t.Errorf("progress at start = %v, want 0", got)
	}
	answer(t, engine, 0)
	if got := engine.State().ProgressPercent; got != 25 {
		t.Errorf("progress after one commit = %v, want 25", got)
	}
}

func TestAbandonStopsCountdown(t *testing.T) {
	engine, clock, rec := newTestEngine(t)
	mustStart(t, engine)

	engine.Abandon()
	if clock.running() {
		t.Error("countdown still running after abandon")
	}
	if rec.calls != 0 {
		t.Errorf("onComplete called %d times for abandoned attempt, want 0", rec.calls)
	}
}
