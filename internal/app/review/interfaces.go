package review

import (
	"context"

	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/airenas/listreview/internal/pkg/review"
	"github.com/airenas/listreview/internal/pkg/transcriber"
)

//JobRegistry keeps the jobs
type JobRegistry interface {
	Create(ctx context.Context, data review.NewJob) (*persistence.Job, error)
	Get(ctx context.Context, id string) (*persistence.Job, error)
	Update(ctx context.Context, id string, upd review.JobUpdate) (*persistence.Job, error)
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, f review.Filter) ([]*persistence.Job, error)
	StartProcessing(ctx context.Context, id, externalID string) (*persistence.Job, error)
	Complete(ctx context.Context, id string, tr *persistence.Transcript) (*persistence.Job, error)
	Fail(ctx context.Context, id, reason string) (*persistence.Job, error)
	RequestReview(ctx context.Context, id string) (*persistence.Job, error)
}

//LockManager controls review locks
type LockManager interface {
	Acquire(ctx context.Context, jobID, editorID, editorName string) (*persistence.Lock, error)
	Release(ctx context.Context, jobID, editorID string) (bool, error)
	Refresh(ctx context.Context, jobID, editorID string) (*persistence.Lock, error)
	Verify(ctx context.Context, jobID, editorID string, edited *persistence.Transcript) (*persistence.Job, error)
	Get(ctx context.Context, jobID string) (*persistence.Lock, error)
	List(ctx context.Context) ([]*persistence.Lock, error)
	Queue(ctx context.Context, editorID string) ([]*review.ReviewTask, error)
}

//Notifications provides user notifications
type Notifications interface {
	ListFor(ctx context.Context, userID string) ([]*persistence.Notification, error)
	MarkRead(ctx context.Context, id string) (bool, error)
}

//Transcriber talks to the transcription backend
type Transcriber interface {
	Submit(ctx context.Context, audioURL string) (*transcriber.JobResponse, error)
	Status(ctx context.Context, externalID string) (*transcriber.JobStatus, error)
	Transcript(ctx context.Context, url string) (*persistence.Transcript, error)
}

//JobListener gets the changed and deleted jobs
type JobListener interface {
	JobChanged(job *persistence.Job)
	JobDeleted(job *persistence.Job)
}
