package persistence

import (
	"time"

	"github.com/airenas/listreview/internal/pkg/status"
)

const (
	//KindJobCompleted notification kind
	KindJobCompleted = "job_completed"
	//KindReviewCompleted notification kind
	KindReviewCompleted = "review_completed"
	//KindJobFailed notification kind
	KindJobFailed = "job_failed"
)

type (
	Segment struct {
		ID        int    `json:"id" bson:"id"`
		StartTime string `json:"start_time" bson:"startTime"`
		EndTime   string `json:"end_time" bson:"endTime"`
		Type      string `json:"type" bson:"type"`
		Text      string `json:"text" bson:"text"`
	}

	Transcript struct {
		JobID    string    `json:"job_id" bson:"jobID"`
		Status   string    `json:"status,omitempty" bson:"status,omitempty"`
		Duration float64   `json:"duration" bson:"duration"`
		Language string    `json:"language" bson:"language"`
		Text     string    `json:"text" bson:"text"`
		Segments []Segment `json:"segments" bson:"segments"`
	}

	Job struct {
		ID                 string        `json:"id" bson:"ID"`
		OwnerID            string        `json:"userId" bson:"ownerID"`
		OwnerEmail         string        `json:"email,omitempty" bson:"ownerEmail,omitempty"`
		AudioURL           string        `json:"audioUrl" bson:"audioURL"`
		AudioFileName      string        `json:"audioFileName" bson:"audioFileName"`
		ExternalID         string        `json:"externalJobId,omitempty" bson:"externalID,omitempty"`
		Status             status.Status `json:"status" bson:"status"`
		RequestHumanReview bool          `json:"requestHumanReview" bson:"requestHumanReview"`
		Transcript         *Transcript   `json:"transcript,omitempty" bson:"transcript,omitempty"`
		EditedTranscript   *Transcript   `json:"editedTranscript,omitempty" bson:"editedTranscript,omitempty"`
		Error              string        `json:"error,omitempty" bson:"error,omitempty"`
		CreatedAt          time.Time     `json:"createdAt" bson:"createdAt"`
		UpdatedAt          time.Time     `json:"updatedAt" bson:"updatedAt"`
		CompletedAt        *time.Time    `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
		VerifiedAt         *time.Time    `json:"verifiedAt,omitempty" bson:"verifiedAt,omitempty"`
		VerifiedBy         string        `json:"verifiedBy,omitempty" bson:"verifiedBy,omitempty"`
	}

	Lock struct {
		JobID      string    `json:"jobId" bson:"jobID"`
		EditorID   string    `json:"editorId" bson:"editorID"`
		EditorName string    `json:"editorName" bson:"editorName"`
		LockedAt   time.Time `json:"lockedAt" bson:"lockedAt"`
		ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
	}

	Notification struct {
		ID        string    `json:"id" bson:"ID"`
		UserID    string    `json:"userId" bson:"userID"`
		Kind      string    `json:"type" bson:"kind"`
		Message   string    `json:"message" bson:"message"`
		JobID     string    `json:"jobId" bson:"jobID"`
		Read      bool      `json:"read" bson:"read"`
		CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	}

	//Snapshot is a full state of the review service
	Snapshot struct {
		Jobs          []*Job          `json:"jobs" bson:"jobs"`
		Locks         []*Lock         `json:"locks" bson:"locks"`
		Notifications []*Notification `json:"notifications" bson:"notifications"`
	}
)

//Expired returns true if the lock is not valid at the time
func (l *Lock) Expired(at time.Time) bool {
	return l.ExpiresAt.Before(at)
}

//Copy makes a deep copy of the job
func (j *Job) Copy() *Job {
	if j == nil {
		return nil
	}
	r := *j
	r.Transcript = j.Transcript.Copy()
	r.EditedTranscript = j.EditedTranscript.Copy()
	r.CompletedAt = copyTime(j.CompletedAt)
	r.VerifiedAt = copyTime(j.VerifiedAt)
	return &r
}

//Copy makes a deep copy of the transcript
func (t *Transcript) Copy() *Transcript {
	if t == nil {
		return nil
	}
	r := *t
	if t.Segments != nil {
		r.Segments = append([]Segment(nil), t.Segments...)
	}
	return &r
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	r := *t
	return &r
}
