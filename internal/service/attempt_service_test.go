package service

import (
	"errors"
	"talent_portal_backend/internal/util"
	"testing"
	"time"
)

func newTestAttemptService(t *testing.T) (*AttemptService, *fakeResultSink, *fakeClock) {
	t.Helper()
	loader := newTestLoader(newTestProvider(t, false), 1)
	results := &fakeResultSink{}
	submitter := NewResultSubmitter(results, &fakeActivitySink{})

	svc := NewAttemptService(loader, submitter, 70, 2*time.Hour)
	clock := newFakeClock()
	svc.NewClock = func() Clock { return clock }
	return svc, results, clock
}

func TestStartAttempt(t *testing.T) {
	svc, _, _ := newTestAttemptService(t)

	token, state, err := svc.StartAttempt(11, 1)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	if token == "" {
		t.Fatal("empty attempt token")
	}
	if state.Status != StatusInProgress {
		t.Errorf("status = %s, want in progress", state.Status)
	}
	if state.Question == nil || state.Question.Number != 1 {
		t.Errorf("question = %+v, want first question", state.Question)
	}
	if svc.LiveSessions() != 1 {
		t.Errorf("live sessions = %d, want 1", svc.LiveSessions())
	}
}

func TestStartAttemptUnknownAssessment(t *testing.T) {
	svc, _, _ := newTestAttemptService(t)

	if _, _, err := svc.StartAttempt(11, 99); !errors.Is(err, util.ErrContentUnavailable) {
		t.Errorf("StartAttempt = %v, want ErrContentUnavailable", err)
	}
}

func TestRestartAbandonsPreviousAttempt(t *testing.T) {
	svc, results, _ := newTestAttemptService(t)

	first, _, err := svc.StartAttempt(11, 1)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}
	second, _, err := svc.StartAttempt(11, 1)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	if _, err := svc.State(first, 11); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("old token State = %v, want ErrAttemptNotFound", err)
	}
	if _, err := svc.State(second, 11); err != nil {
		t.Errorf("new token State: %v", err)
	}
	if svc.LiveSessions() != 1 {
		t.Errorf("live sessions = %d, want 1", svc.LiveSessions())
	}
	if len(results.inserted) != 0 {
		t.Error("abandoned attempt produced a result")
	}
}

func TestAttemptOwnership(t *testing.T) {
	svc, _, _ := newTestAttemptService(t)

	token, _, err := svc.StartAttempt(11, 1)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	if _, err := svc.State(token, 12); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("other candidate State = %v, want ErrAttemptNotFound", err)
	}
	if _, err := svc.SubmitAnswer(token, 12); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("other candidate SubmitAnswer = %v, want ErrAttemptNotFound", err)
	}
}

func TestFullAttemptThroughService(t *testing.T) {
	svc, results, _ := newTestAttemptService(t)

	token, _, err := svc.StartAttempt(11, 1)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	// Provider fixture: corrects are 0,1,2,0 then 1,0. Answer everything
	// correctly.
	for _, correct := range []int{0, 1, 2, 0, 1, 0} {
		if _, err := svc.SelectOption(token, 11, correct); err != nil {
			t.Fatalf("SelectOption: %v", err)
		}
		if _, err := svc.SubmitAnswer(token, 11); err != nil {
			t.Fatalf("SubmitAnswer: %v", err)
		}
	}

	state, err := svc.State(token, 11)
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", state.Status)
	}
	if state.Score == nil || *state.Score != 100 {
		t.Fatalf("score = %v, want 100", state.Score)
	}

	if len(results.inserted) != 1 {
		t.Fatalf("results written = %d, want 1", len(results.inserted))
	}
	if results.inserted[0].Score != 100 {
		t.Errorf("stored score = %v, want 100", results.inserted[0].Score)
	}
}

func TestReapDropsStaleSessions(t *testing.T) {
	svc, results, _ := newTestAttemptService(t)
	svc.SessionTTL = time.Minute

	token, _, err := svc.StartAttempt(11, 1)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	svc.Reap()
	if svc.LiveSessions() != 1 {
		t.Fatal("fresh session reaped")
	}

	svc.mu.Lock()
	svc.sessions[token].LastTouch = time.Now().Add(-2 * time.Minute)
	svc.mu.Unlock()

	svc.Reap()
	if svc.LiveSessions() != 0 {
		t.Fatal("stale session survived reap")
	}
	if _, err := svc.State(token, 11); !errors.Is(err, util.ErrAttemptNotFound) {
		t.Errorf("State after reap = %v, want ErrAttemptNotFound", err)
	}
	if len(results.inserted) != 0 {
		t.Error("reaped in-progress attempt produced a result")
	}
}

func TestIntegrityEventThroughService(t *testing.T) {
	svc, _, _ := newTestAttemptService(t)

	token, _, err := svc.StartAttempt(11, 1)
	if err != nil {
		t.Fatalf("StartAttempt: %v", err)
	}

	state, err := svc.ReportIntegrityEvent(token, 11, IntegrityUnloadIntent)
	if err != nil {
		t.Fatalf("ReportIntegrityEvent: %v", err)
	}
	if state.IntegrityWarnings != 1 {
		t.Errorf("integrityWarnings = %d, want 1", state.IntegrityWarnings)
	}
	if state.Status != StatusInProgress {
		t.Errorf("status = %s, want still in progress", state.Status)
	}
}
