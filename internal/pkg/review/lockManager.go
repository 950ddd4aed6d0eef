package review

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/airenas/listreview/internal/pkg/status"
)

//ReviewTask is a reviewable job with its lock info for an editor
type ReviewTask struct {
	Job                   *persistence.Job  `json:"job"`
	Lock                  *persistence.Lock `json:"lock,omitempty"`
	IsLocked              bool              `json:"isLocked"`
	IsLockedByCurrentUser bool              `json:"isLockedByCurrentUser"`
}

//LockManager guarantees at most one active reviewer per job.
//Expired locks are removed lazily by the first operation observing them.
type LockManager struct {
	state    *State
	jobs     *Registry
	notifier *Notifier
}

func newLockManager(state *State, jobs *Registry, notifier *Notifier) *LockManager {
	res := &LockManager{state: state, jobs: jobs, notifier: notifier}
	jobs.locks = res
	return res
}

//Acquire takes the review lock for the editor.
//Returns ErrLocked if other editor holds a live lock.
//The same editor gets the existing lock unchanged.
func (lm *LockManager) Acquire(ctx context.Context, jobID, editorID, editorName string) (*persistence.Lock, error) {
	unlock := lm.state.keys.Lock(jobID)
	defer unlock()

	now := lm.state.now()
	c := newChange()
	l := lm.expire(jobID, now, c)
	j := c.job(lm.state, jobID)
	if j == nil {
		return nil, ErrNotFound
	}
	if l != nil {
		if err := lm.state.apply(ctx, c); err != nil {
			return nil, err
		}
		if l.EditorID != editorID {
			cmdapp.Log.Infof("Lock %s denied for %s, held by %s", jobID, editorID, l.EditorID)
			return nil, ErrLocked
		}
		cmdapp.Log.Debugf("Lock %s already held by %s", jobID, editorID)
		return l, nil
	}
	if !status.Reviewable(j.Status) {
		if err := lm.state.apply(ctx, c); err != nil {
			return nil, err
		}
		return nil, ErrNotReviewable
	}
	l = &persistence.Lock{JobID: jobID, EditorID: editorID, EditorName: editorName,
		LockedAt: now, ExpiresAt: now.Add(lm.state.ttl)}
	c.putLock(l)
	if j.Status != status.InReview {
		j.Status = status.InReview
		stamp(j, now)
		c.putJob(j)
	}
	if err := lm.state.apply(ctx, c); err != nil {
		return nil, err
	}
	cmdapp.Log.Infof("Locked %s by %s till %s", jobID, editorID, l.ExpiresAt.Format(time.RFC3339))
	res := *l
	return &res, nil
}

//Release drops the editor's live lock and returns the job to pending_review.
//Returns false if the editor holds no live lock.
func (lm *LockManager) Release(ctx context.Context, jobID, editorID string) (bool, error) {
	unlock := lm.state.keys.Lock(jobID)
	defer unlock()

	now := lm.state.now()
	c := newChange()
	l := lm.expire(jobID, now, c)
	if l == nil || l.EditorID != editorID {
		return false, lm.state.apply(ctx, c)
	}
	c.dropLock(jobID)
	if j := c.job(lm.state, jobID); j != nil && j.Status == status.InReview {
		j.Status = status.PendingReview
		stamp(j, now)
		c.putJob(j)
	}
	if err := lm.state.apply(ctx, c); err != nil {
		return false, err
	}
	cmdapp.Log.Infof("Released %s by %s", jobID, editorID)
	return true, nil
}

//Refresh extends the editor's live lock by the full ttl from now.
//Returns nil lock if the claim is gone.
func (lm *LockManager) Refresh(ctx context.Context, jobID, editorID string) (*persistence.Lock, error) {
	unlock := lm.state.keys.Lock(jobID)
	defer unlock()

	now := lm.state.now()
	c := newChange()
	l := lm.expire(jobID, now, c)
	if l == nil || l.EditorID != editorID {
		return nil, lm.state.apply(ctx, c)
	}
	l.ExpiresAt = now.Add(lm.state.ttl)
	c.putLock(l)
	if err := lm.state.apply(ctx, c); err != nil {
		return nil, err
	}
	cmdapp.Log.Debugf("Refreshed %s by %s", jobID, editorID)
	res := *l
	return &res, nil
}

//Verify finalizes the review: attaches the edited transcript, marks the job verified,
//drops any lock of the job and notifies the owner.
//A lock is not required, pending_review jobs can be verified directly.
func (lm *LockManager) Verify(ctx context.Context, jobID, editorID string,
	edited *persistence.Transcript) (*persistence.Job, error) {
	j, n, err := lm.verify(ctx, jobID, editorID, edited)
	if err != nil {
		return nil, err
	}
	lm.notifier.deliver(ctx, n)
	return j, nil
}

func (lm *LockManager) verify(ctx context.Context, jobID, editorID string,
	edited *persistence.Transcript) (*persistence.Job, *persistence.Notification, error) {
	unlock := lm.state.keys.Lock(jobID)
	defer unlock()

	now := lm.state.now()
	c := newChange()
	lm.expire(jobID, now, c)
	j := c.job(lm.state, jobID)
	if j == nil {
		return nil, nil, ErrNotFound
	}
	if !status.Reviewable(j.Status) {
		return nil, nil, orErr(lm.state.apply(ctx, c), ErrNotReviewable)
	}
	if edited != nil {
		j.EditedTranscript = mergeTranscript(j.Transcript, edited, jobID)
	}
	j.Status = status.Verified
	j.VerifiedBy = editorID
	vt := now
	j.VerifiedAt = &vt
	stamp(j, now)
	c.putJob(j)
	c.dropLock(jobID)
	n := lm.notifier.newNotification(j.OwnerID, persistence.KindReviewCompleted,
		fmt.Sprintf("Your transcription for \"%s\" has been verified.", j.AudioFileName), jobID, now)
	c.addNotification(n)
	if err := lm.state.apply(ctx, c); err != nil {
		return nil, nil, err
	}
	cmdapp.Log.Infof("Verified %s by %s", jobID, editorID)
	return j, n, nil
}

//Get returns the live lock of the job or nil
func (lm *LockManager) Get(ctx context.Context, jobID string) (*persistence.Lock, error) {
	unlock := lm.state.keys.Lock(jobID)
	defer unlock()

	c := newChange()
	l := lm.expire(jobID, lm.state.now(), c)
	if err := lm.state.apply(ctx, c); err != nil {
		return nil, err
	}
	return l, nil
}

//List returns all live locks
func (lm *LockManager) List(ctx context.Context) ([]*persistence.Lock, error) {
	if err := lm.expireAll(ctx); err != nil {
		return nil, err
	}
	now := lm.state.now()
	lm.state.m.RLock()
	defer lm.state.m.RUnlock()
	res := make([]*persistence.Lock, 0, len(lm.state.locks))
	for _, l := range lm.state.locks {
		if l.Expired(now) {
			continue
		}
		lc := *l
		res = append(res, &lc)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].LockedAt.Before(res[j].LockedAt) })
	return res, nil
}

//Queue returns pending_review and in_review jobs, newest first, with lock info for the editor
func (lm *LockManager) Queue(ctx context.Context, editorID string) ([]*ReviewTask, error) {
	if err := lm.expireAll(ctx); err != nil {
		return nil, err
	}
	now := lm.state.now()
	lm.state.m.RLock()
	defer lm.state.m.RUnlock()
	res := make([]*ReviewTask, 0)
	for _, j := range lm.state.jobs {
		if !status.Reviewable(j.Status) {
			continue
		}
		t := &ReviewTask{Job: j.Copy()}
		if l, ok := lm.state.locks[j.ID]; ok && !l.Expired(now) {
			lc := *l
			t.Lock = &lc
			t.IsLocked = true
			t.IsLockedByCurrentUser = editorID != "" && l.EditorID == editorID
		}
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool { return newer(res[i].Job, res[j].Job) })
	return res, nil
}

// expire returns the live lock of the job.
// An expired lock is dropped and an in_review job without a live lock
// goes back to pending_review. Must be called under the job's key.
func (lm *LockManager) expire(jobID string, now time.Time, c *change) *persistence.Lock {
	l := c.lock(lm.state, jobID)
	if l != nil && l.Expired(now) {
		cmdapp.Log.Infof("Lock %s of %s expired at %s", jobID, l.EditorID, l.ExpiresAt.Format(time.RFC3339))
		c.dropLock(jobID)
		l = nil
	}
	if l == nil {
		if j := c.job(lm.state, jobID); j != nil && j.Status == status.InReview {
			j.Status = status.PendingReview
			stamp(j, now)
			c.putJob(j)
		}
	}
	return l
}

// drop removes the lock unconditionally. Must be called under the job's key.
func (lm *LockManager) drop(jobID string, c *change) {
	if c.lock(lm.state, jobID) != nil {
		cmdapp.Log.Infof("Dropping lock %s", jobID)
		c.dropLock(jobID)
	}
}

// expireAll sweeps every expired lock and every in_review job left without a lock
func (lm *LockManager) expireAll(ctx context.Context) error {
	now := lm.state.now()
	for _, id := range lm.staleIDs(now) {
		if err := lm.expireOne(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (lm *LockManager) expireOne(ctx context.Context, jobID string) error {
	unlock := lm.state.keys.Lock(jobID)
	defer unlock()

	c := newChange()
	lm.expire(jobID, lm.state.now(), c)
	return lm.state.apply(ctx, c)
}

func (lm *LockManager) staleIDs(now time.Time) []string {
	lm.state.m.RLock()
	defer lm.state.m.RUnlock()
	var res []string
	for id, l := range lm.state.locks {
		if l.Expired(now) {
			res = append(res, id)
		}
	}
	for id, j := range lm.state.jobs {
		if _, ok := lm.state.locks[id]; !ok && j.Status == status.InReview {
			res = append(res, id)
		}
	}
	return res
}

func orErr(err, def error) error {
	if err != nil {
		return err
	}
	return def
}
