package service

import (
	"encoding/json"
	"errors"
	"talent_portal_backend/internal/model"
	"talent_portal_backend/internal/util"
	"testing"
	"time"
)

type fakeResultSink struct {
	inserted []*model.AssessmentResult
	err      error
}

func (s *fakeResultSink) InsertResult(res *model.AssessmentResult) error {
	if s.err != nil {
		return s.err
	}
	s.inserted = append(s.inserted, res)
	return nil
}

type fakeActivitySink struct {
	entries []*model.ActivityLog
	err     error
}

func (s *fakeActivitySink) LogActivity(entry *model.ActivityLog) error {
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, entry)
	return nil
}

func sampleResult() AttemptResult {
	return AttemptResult{
		CandidateID:  11,
		AssessmentID: 7,
		Score:        75,
		Answers:      map[uint]int{1: 0, 2: 1},
		Timings:      map[uint]int{1: 12, 2: 30},
		StartedAt:    time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestSubmitWritesResultAndAudit(t *testing.T) {
	results := &fakeResultSink{}
	activity := &fakeActivitySink{}
	submitter := NewResultSubmitter(results, activity)

	if err := submitter.Submit(sampleResult()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if len(results.inserted) != 1 {
		t.Fatalf("results written = %d, want 1", len(results.inserted))
	}
	record := results.inserted[0]
	if record.CandidateID != 11 || record.AssessmentID != 7 || record.Score != 75 {
		t.Errorf("record = %+v, want candidate 11, assessment 7, score 75", record)
	}
	if !record.Completed {
		t.Error("record not marked completed")
	}

	var answers map[uint]int
	if err := json.Unmarshal(record.Answers, &answers); err != nil {
		t.Fatalf("answers payload: %v", err)
	}
	if answers[2] != 1 {
		t.Errorf("answers[2] = %d, want 1", answers[2])
	}

	if len(activity.entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(activity.entries))
	}
	entry := activity.entries[0]
	if entry.Action != "Completed Assessment" || entry.UserID != 11 || entry.EntityID != 7 {
		t.Errorf("audit entry = %+v", entry)
	}
}

func TestSubmitResultFailure(t *testing.T) {
	results := &fakeResultSink{err: errors.New("deadlock")}
	activity := &fakeActivitySink{}
	submitter := NewResultSubmitter(results, activity)

	err := submitter.Submit(sampleResult())
	if !errors.Is(err, util.ErrPersistenceFailure) {
		t.Fatalf("Submit = %v, want ErrPersistenceFailure", err)
	}
	if len(activity.entries) != 0 {
		t.Error("audit event written despite result failure")
	}
}

func TestSubmitAuditFailureIsBestEffort(t *testing.T) {
	results := &fakeResultSink{}
	activity := &fakeActivitySink{err: errors.New("table locked")}
	submitter := NewResultSubmitter(results, activity)

	if err := submitter.Submit(sampleResult()); err != nil {
		t.Fatalf("Submit = %v, want nil when only the audit write fails", err)
	}
	if len(results.inserted) != 1 {
		t.Error("result not written")
	}
}
