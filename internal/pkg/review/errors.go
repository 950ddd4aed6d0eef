package review

import "github.com/pkg/errors"

var (
	//ErrNotFound indicates a missing job, lock or notification
	ErrNotFound = errors.New("not found")
	//ErrLocked indicates the job is claimed by another editor
	ErrLocked = errors.New("job is locked by another editor")
	//ErrNotReviewable indicates the job is not in pending_review or in_review status
	ErrNotReviewable = errors.New("job is not in a reviewable state")
	//ErrWrongTransition indicates an illegal status change
	ErrWrongTransition = errors.New("wrong status transition")
	//ErrImmutable indicates an attempt to overwrite the original transcript
	ErrImmutable = errors.New("transcript is already set")
)
