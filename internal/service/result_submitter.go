package service

import (
	"encoding/json"
	"talent_portal_backend/internal/model"
	"talent_portal_backend/internal/util"
	"talent_portal_backend/pkg/logger"
	"talent_portal_backend/pkg/monitoring"
	"time"

	"go.uber.org/zap"
)

// ResultSink persists a completed attempt. Satisfied by
// repository.ResultRepository.
type ResultSink interface {
	InsertResult(res *model.AssessmentResult) error
}

// ActivitySink records the audit event. Satisfied by
// repository.ActivityRepository.
type ActivitySink interface {
	LogActivity(entry *model.ActivityLog) error
}

// ResultSubmitter runs once per completed attempt: one result write, one
// audit event. The audit event is best effort and never rolls back the
// result.
type ResultSubmitter struct {
	Results  ResultSink
	Activity ActivitySink
}

func NewResultSubmitter(results ResultSink, activity ActivitySink) *ResultSubmitter {
	return &ResultSubmitter{Results: results, Activity: activity}
}

func (s *ResultSubmitter) Submit(res AttemptResult) error {
	completedAt := time.Now()

	answersJSON, _ := json.Marshal(res.Answers)
	timingsJSON, _ := json.Marshal(res.Timings)

	record := &model.AssessmentResult{
		CandidateID:   res.CandidateID,
		AssessmentID:  res.AssessmentID,
		Score:         res.Score,
		Answers:       answersJSON,
		AnswerTimings: timingsJSON,
		Completed:     true,
		StartedAt:     res.StartedAt,
		CompletedAt:   completedAt,
	}

	if err := s.Results.InsertResult(record); err != nil {
		monitoring.ResultWriteFailures.Inc()
		logger.Log.Error("result persistence failed",
			zap.Uint("candidate_id", res.CandidateID),
			zap.Uint("assessment_id", res.AssessmentID),
			zap.Error(err))
		return util.ErrPersistenceFailure
	}

	details, _ := json.Marshal(map[string]interface{}{"score": res.Score})
	if err := s.Activity.LogActivity(&model.ActivityLog{
		UserID:     res.CandidateID,
		Action:     "Completed Assessment",
		EntityType: "assessment",
		EntityID:   res.AssessmentID,
		Details:    details,
	}); err != nil {
		logger.Log.Warn("audit event write failed",
			zap.Uint("candidate_id", res.CandidateID),
			zap.Uint("assessment_id", res.AssessmentID),
			zap.Error(err))
	}

	return nil
}
