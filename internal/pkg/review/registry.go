package review

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/airenas/listreview/internal/pkg/status"
	"github.com/pkg/errors"
)

type (
	//NewJob is the data of a submitted job
	NewJob struct {
		OwnerID            string
		OwnerEmail         string
		AudioURL           string
		AudioFileName      string
		RequestHumanReview bool
	}

	//JobUpdate keeps the fields to merge into the job, nil fields are left untouched
	JobUpdate struct {
		Status             *status.Status
		AudioFileName      *string
		ExternalID         *string
		Error              *string
		RequestHumanReview *bool
		Transcript         *persistence.Transcript
	}

	//Filter selects jobs in List, empty fields match any job
	Filter struct {
		OwnerID string
		Status  status.Status
	}
)

type lockKeeper interface {
	expire(jobID string, now time.Time, c *change) *persistence.Lock
	drop(jobID string, c *change)
	expireAll(ctx context.Context) error
}

//Registry keeps job records and drives the transcription part of job lifecycle.
//Lock driven transitions are left for the LockManager.
type Registry struct {
	state    *State
	locks    lockKeeper
	notifier *Notifier
}

func newRegistry(state *State, notifier *Notifier) *Registry {
	return &Registry{state: state, notifier: notifier}
}

//Create adds a new pending job
func (r *Registry) Create(ctx context.Context, data NewJob) (*persistence.Job, error) {
	if data.OwnerID == "" {
		return nil, errors.New("No owner")
	}
	now := r.state.now()
	j := &persistence.Job{ID: r.state.newID(), OwnerID: data.OwnerID, OwnerEmail: data.OwnerEmail,
		AudioURL: data.AudioURL, AudioFileName: data.AudioFileName, RequestHumanReview: data.RequestHumanReview,
		Status: status.Pending, CreatedAt: now, UpdatedAt: now}
	if j.AudioFileName == "" {
		j.AudioFileName = fileName(j.AudioURL)
	}

	unlock := r.state.keys.Lock(j.ID)
	defer unlock()
	c := newChange()
	c.putJob(j)
	if err := r.state.apply(ctx, c); err != nil {
		return nil, err
	}
	cmdapp.Log.Infof("Created job %s for %s", j.ID, j.OwnerID)
	return j.Copy(), nil
}

//Get returns the job, ErrNotFound if it is absent
func (r *Registry) Get(ctx context.Context, id string) (*persistence.Job, error) {
	unlock := r.state.keys.Lock(id)
	defer unlock()

	c := newChange()
	r.locks.expire(id, r.state.now(), c)
	j := c.job(r.state, id)
	if j == nil {
		return nil, ErrNotFound
	}
	if err := r.state.apply(ctx, c); err != nil {
		return nil, err
	}
	return j, nil
}

//Update merges the fields into the job.
//Status may change only by a job driven transition.
func (r *Registry) Update(ctx context.Context, id string, upd JobUpdate) (*persistence.Job, error) {
	unlock := r.state.keys.Lock(id)
	defer unlock()

	now := r.state.now()
	c := newChange()
	r.locks.expire(id, now, c)
	j := c.job(r.state, id)
	if j == nil {
		return nil, ErrNotFound
	}
	from := j.Status
	if upd.AudioFileName != nil {
		j.AudioFileName = *upd.AudioFileName
	}
	if upd.ExternalID != nil {
		j.ExternalID = *upd.ExternalID
	}
	if upd.Error != nil {
		j.Error = *upd.Error
	}
	if upd.Transcript != nil {
		if j.Transcript != nil {
			return nil, ErrImmutable
		}
		j.Transcript = prepareTranscript(upd.Transcript, id)
	}
	if upd.RequestHumanReview != nil {
		j.RequestHumanReview = *upd.RequestHumanReview
		if j.RequestHumanReview && j.Status == status.Completed && upd.Status == nil {
			j.Status = status.PendingReview
		}
	}
	if upd.Status != nil && *upd.Status != from {
		j.Status = *upd.Status
	}
	if j.Status != from {
		if !status.CanTransit(from, j.Status, status.ByJob) {
			return nil, errors.Wrapf(ErrWrongTransition, "%s -> %s", from, j.Status)
		}
		if (j.Status == status.Completed || j.Status == status.PendingReview) && j.CompletedAt == nil {
			ct := now
			j.CompletedAt = &ct
		}
	}
	stamp(j, now)
	c.putJob(j)
	if err := r.state.apply(ctx, c); err != nil {
		return nil, err
	}
	cmdapp.Log.Infof("Updated job %s (%s -> %s)", id, from, j.Status)
	return j, nil
}

//Delete removes the job and its lock. Returns false if the job is absent.
func (r *Registry) Delete(ctx context.Context, id string) (bool, error) {
	unlock := r.state.keys.Lock(id)
	defer unlock()

	if r.state.job(id) == nil {
		return false, nil
	}
	c := newChange()
	c.dropJob(id)
	r.locks.drop(id, c)
	if err := r.state.apply(ctx, c); err != nil {
		return false, err
	}
	cmdapp.Log.Infof("Deleted job %s", id)
	return true, nil
}

//List returns the jobs matching the filter, newest first
func (r *Registry) List(ctx context.Context, f Filter) ([]*persistence.Job, error) {
	if err := r.locks.expireAll(ctx); err != nil {
		return nil, err
	}
	r.state.m.RLock()
	defer r.state.m.RUnlock()
	res := make([]*persistence.Job, 0)
	for _, j := range r.state.jobs {
		if f.OwnerID != "" && j.OwnerID != f.OwnerID {
			continue
		}
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		res = append(res, j.Copy())
	}
	sort.Slice(res, func(i, j int) bool { return newer(res[i], res[j]) })
	return res, nil
}

//StartProcessing marks the job accepted by the transcriber
func (r *Registry) StartProcessing(ctx context.Context, id, externalID string) (*persistence.Job, error) {
	st := status.Processing
	return r.Update(ctx, id, JobUpdate{Status: &st, ExternalID: &externalID})
}

//Complete attaches the transcript and finishes transcription.
//The job goes to pending_review if a human review was requested, otherwise to completed.
func (r *Registry) Complete(ctx context.Context, id string, tr *persistence.Transcript) (*persistence.Job, error) {
	if tr == nil {
		return nil, errors.New("No transcript")
	}
	j, n, err := r.complete(ctx, id, tr)
	if err != nil {
		return nil, err
	}
	r.notifier.deliver(ctx, n)
	return j, nil
}

func (r *Registry) complete(ctx context.Context, id string, tr *persistence.Transcript) (*persistence.Job,
	*persistence.Notification, error) {
	unlock := r.state.keys.Lock(id)
	defer unlock()

	now := r.state.now()
	c := newChange()
	j := c.job(r.state, id)
	if j == nil {
		return nil, nil, ErrNotFound
	}
	if j.Status != status.Processing {
		return nil, nil, errors.Wrapf(ErrWrongTransition, "can't complete %s job", j.Status)
	}
	if j.Transcript != nil {
		return nil, nil, ErrImmutable
	}
	j.Transcript = prepareTranscript(tr, id)
	j.Status = status.Completed
	if j.RequestHumanReview {
		j.Status = status.PendingReview
	}
	ct := now
	j.CompletedAt = &ct
	stamp(j, now)
	c.putJob(j)
	var n *persistence.Notification
	if j.Status == status.Completed {
		n = r.notifier.newNotification(j.OwnerID, persistence.KindJobCompleted,
			fmt.Sprintf("Your transcription for \"%s\" is ready.", j.AudioFileName), id, now)
		c.addNotification(n)
	}
	if err := r.state.apply(ctx, c); err != nil {
		return nil, nil, err
	}
	cmdapp.Log.Infof("Completed job %s: %s", id, j.Status)
	return j, n, nil
}

//Fail marks the job failed and notifies the owner
func (r *Registry) Fail(ctx context.Context, id, reason string) (*persistence.Job, error) {
	j, n, err := r.fail(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	r.notifier.deliver(ctx, n)
	return j, nil
}

func (r *Registry) fail(ctx context.Context, id, reason string) (*persistence.Job, *persistence.Notification, error) {
	unlock := r.state.keys.Lock(id)
	defer unlock()

	now := r.state.now()
	c := newChange()
	j := c.job(r.state, id)
	if j == nil {
		return nil, nil, ErrNotFound
	}
	if !status.CanTransit(j.Status, status.Failed, status.ByJob) {
		return nil, nil, errors.Wrapf(ErrWrongTransition, "can't fail %s job", j.Status)
	}
	j.Status = status.Failed
	j.Error = reason
	stamp(j, now)
	c.putJob(j)
	n := r.notifier.newNotification(j.OwnerID, persistence.KindJobFailed,
		fmt.Sprintf("Transcription of \"%s\" failed.", j.AudioFileName), id, now)
	c.addNotification(n)
	if err := r.state.apply(ctx, c); err != nil {
		return nil, nil, err
	}
	cmdapp.Log.Infof("Failed job %s: %s", id, reason)
	return j, n, nil
}

//RequestReview lets the owner opt into a human review of a completed job
func (r *Registry) RequestReview(ctx context.Context, id string) (*persistence.Job, error) {
	rr := true
	return r.Update(ctx, id, JobUpdate{RequestHumanReview: &rr})
}

//OwnerEmail returns the email of the job's owner
func (r *Registry) OwnerEmail(ctx context.Context, jobID string) (string, error) {
	j := r.state.job(jobID)
	if j == nil {
		return "", ErrNotFound
	}
	return j.OwnerEmail, nil
}

func prepareTranscript(tr *persistence.Transcript, jobID string) *persistence.Transcript {
	res := tr.Copy()
	res.JobID = jobID
	if res.Text == "" {
		res.Text = joinText(res.Segments)
	}
	return res
}

func newer(a, b *persistence.Job) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func fileName(url string) string {
	url = strings.TrimRight(url, "/")
	if i := strings.LastIndex(url, "/"); i >= 0 {
		url = url[i+1:]
	}
	if url == "" {
		return "audio.mp3"
	}
	return url
}
