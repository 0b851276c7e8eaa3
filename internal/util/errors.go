package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrPermissionDenied     = errors.New("permission denied")
	ErrContentUnavailable   = errors.New("assessment content unavailable")
	ErrAssessmentNotFound   = errors.New("assessment not found")
	ErrAssessmentNotLive    = errors.New("assessment not published or not accessible")
	ErrAttemptNotFound      = errors.New("attempt not found")
	ErrAttemptNotRunning    = errors.New("attempt is not in progress")
	ErrAttemptFinished      = errors.New("attempt already completed")
	ErrInvalidOption        = errors.New("selected option index out of range")
	ErrPersistenceFailure   = errors.New("result could not be recorded")
	ErrSectionNotFound      = errors.New("section not found")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrQuestionNeedsOptions = errors.New("question requires at least two options")
)
