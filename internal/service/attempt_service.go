package service

import (
	"fmt"
	"sync"
	"talent_portal_backend/internal/model"
	"talent_portal_backend/internal/util"
	"talent_portal_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
)

type attemptSession struct {
	Token        string
	CandidateID  uint
	AssessmentID uint
	Engine       *AttemptEngine
	LastTouch    time.Time
}

// AttemptService owns every live engine, keyed by an opaque token. One live
// attempt per (candidate, assessment): a fresh start abandons the previous
// one, and abandoned attempts never produce a Result.
type AttemptService struct {
	Loader        *AssessmentLoader
	Submitter     *ResultSubmitter
	PassThreshold float64
	SessionTTL    time.Duration

	// NewClock is swapped for a fake in tests.
	NewClock func() Clock

	mu       sync.Mutex
	sessions map[string]*attemptSession
	byOwner  map[string]string
}

func NewAttemptService(loader *AssessmentLoader, submitter *ResultSubmitter, passThreshold float64, sessionTTL time.Duration) *AttemptService {
	return &AttemptService{
		Loader:        loader,
		Submitter:     submitter,
		PassThreshold: passThreshold,
		SessionTTL:    sessionTTL,
		NewClock:      func() Clock { return NewTickerClock() },
		sessions:      make(map[string]*attemptSession),
		byOwner:       make(map[string]string),
	}
}

func ownerKey(candidateID, assessmentID uint) string {
	return fmt.Sprintf("%d:%d", candidateID, assessmentID)
}

// StartAttempt loads a fresh snapshot and starts a new engine at (0,0) with
// empty maps.
func (s *AttemptService) StartAttempt(candidateID, assessmentID uint) (string, AttemptState, error) {
	snapshot, err := s.Loader.Load(assessmentID)
	if err != nil {
		return "", AttemptState{}, err
	}

	engine := NewAttemptEngine(snapshot, candidateID, s.PassThreshold, s.NewClock(), s.Submitter.Submit)
	token := model.GenerateUUID()

	s.mu.Lock()
	owner := ownerKey(candidateID, assessmentID)
	if prevToken, ok := s.byOwner[owner]; ok {
		if prev, ok := s.sessions[prevToken]; ok {
			prev.Engine.Abandon()
			delete(s.sessions, prevToken)
			logger.Log.Info("previous attempt abandoned",
				zap.Uint("candidate_id", candidateID),
				zap.Uint("assessment_id", assessmentID))
		}
	}
	s.sessions[token] = &attemptSession{
		Token:        token,
		CandidateID:  candidateID,
		AssessmentID: assessmentID,
		Engine:       engine,
		LastTouch:    time.Now(),
	}
	s.byOwner[owner] = token
	s.mu.Unlock()

	if err := engine.Start(); err != nil {
		return "", AttemptState{}, err
	}
	return token, engine.State(), nil
}

func (s *AttemptService) engineFor(token string, candidateID uint) (*AttemptEngine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok || sess.CandidateID != candidateID {
		return nil, util.ErrAttemptNotFound
	}
	sess.LastTouch = time.Now()
	return sess.Engine, nil
}

func (s *AttemptService) State(token string, candidateID uint) (AttemptState, error) {
	engine, err := s.engineFor(token, candidateID)
	if err != nil {
		return AttemptState{}, err
	}
	return engine.State(), nil
}

func (s *AttemptService) SelectOption(token string, candidateID uint, index int) (AttemptState, error) {
	engine, err := s.engineFor(token, candidateID)
	if err != nil {
		return AttemptState{}, err
	}
	if err := engine.SelectOption(index); err != nil {
		return AttemptState{}, err
	}
	return engine.State(), nil
}

func (s *AttemptService) SubmitAnswer(token string, candidateID uint) (AttemptState, error) {
	engine, err := s.engineFor(token, candidateID)
	if err != nil {
		return AttemptState{}, err
	}
	if err := engine.SubmitCurrentAnswer(); err != nil {
		return AttemptState{}, err
	}
	return engine.State(), nil
}

func (s *AttemptService) ReportIntegrityEvent(token string, candidateID uint, t IntegrityEventType) (AttemptState, error) {
	engine, err := s.engineFor(token, candidateID)
	if err != nil {
		return AttemptState{}, err
	}
	if err := engine.RecordIntegrityEvent(t); err != nil {
		return AttemptState{}, err
	}
	return engine.State(), nil
}

// Reap drops completed sessions and abandons ones idle past the TTL. Runs on
// the app's background ticker.
func (s *AttemptService) Reap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, sess := range s.sessions {
		state := sess.Engine.State()
		stale := now.Sub(sess.LastTouch) > s.SessionTTL
		if state.Status == StatusCompleted && stale {
			delete(s.sessions, token)
			delete(s.byOwner, ownerKey(sess.CandidateID, sess.AssessmentID))
		} else if state.Status == StatusInProgress && stale {
			sess.Engine.Abandon()
			delete(s.sessions, token)
			delete(s.byOwner, ownerKey(sess.CandidateID, sess.AssessmentID))
			logger.Log.Info("stale attempt reaped",
				zap.Uint("candidate_id", sess.CandidateID),
				zap.Uint("assessment_id", sess.AssessmentID))
		}
	}
}

// LiveSessions reports the current registry size (health endpoint).
func (s *AttemptService) LiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
