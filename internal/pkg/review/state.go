package review

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/pkg/errors"
)

// State owns jobs, locks and notifications of the service.
// Compound operations on one job run under the job's key in keys,
// map access is guarded by m.
type State struct {
	store persistence.Store
	now   func() time.Time
	ttl   time.Duration
	newID func() string

	keys *keyedMutex

	m             sync.RWMutex
	jobs          map[string]*persistence.Job
	locks         map[string]*persistence.Lock
	notifications map[string]*persistence.Notification
	ver           uint64 // commits applied, guarded by m

	saveM    sync.Mutex
	savedVer uint64 // last stored commit, guarded by saveM
}

func newState(store persistence.Store, o *options) *State {
	return &State{store: store, now: o.now, ttl: o.ttl, newID: o.newID,
		keys:          newKeyedMutex(),
		jobs:          make(map[string]*persistence.Job),
		locks:         make(map[string]*persistence.Lock),
		notifications: make(map[string]*persistence.Notification)}
}

//Load replaces the in memory state with the stored snapshot
func (s *State) Load(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return errors.Wrap(err, "Can't load state")
	}
	s.m.Lock()
	defer s.m.Unlock()
	s.jobs = make(map[string]*persistence.Job)
	s.locks = make(map[string]*persistence.Lock)
	s.notifications = make(map[string]*persistence.Notification)
	for _, j := range snap.Jobs {
		s.jobs[j.ID] = j.Copy()
	}
	for _, l := range snap.Locks {
		if _, ok := s.jobs[l.JobID]; !ok {
			cmdapp.Log.Warnf("Skip lock of missing job %s", l.JobID)
			continue
		}
		lc := *l
		s.locks[l.JobID] = &lc
	}
	for _, n := range snap.Notifications {
		nc := *n
		s.notifications[n.ID] = &nc
	}
	cmdapp.Log.Infof("Loaded state: jobs %d, locks %d, notifications %d", len(s.jobs), len(s.locks),
		len(s.notifications))
	return nil
}

//Close flushes the state to the store
func (s *State) Close(ctx context.Context) error {
	s.saveM.Lock()
	defer s.saveM.Unlock()
	return s.save(ctx)
}

// flush stores the state unless a snapshot taken after commit ver is already stored.
// Commits waiting for a running save are stored together by the next one.
func (s *State) flush(ctx context.Context, ver uint64) error {
	s.saveM.Lock()
	defer s.saveM.Unlock()

	if s.savedVer >= ver {
		return nil
	}
	return s.save(ctx)
}

// save must be called under saveM
func (s *State) save(ctx context.Context) error {
	snap, ver := s.snapshot()
	if err := s.store.Save(ctx, snap); err != nil {
		return errors.Wrap(err, "Can't save state")
	}
	if ver > s.savedVer {
		s.savedVer = ver
	}
	return nil
}

func (s *State) snapshot() (*persistence.Snapshot, uint64) {
	s.m.RLock()
	defer s.m.RUnlock()
	res := &persistence.Snapshot{}
	for _, j := range s.jobs {
		res.Jobs = append(res.Jobs, j.Copy())
	}
	for _, l := range s.locks {
		lc := *l
		res.Locks = append(res.Locks, &lc)
	}
	for _, n := range s.notifications {
		nc := *n
		res.Notifications = append(res.Notifications, &nc)
	}
	sort.Slice(res.Jobs, func(i, j int) bool { return res.Jobs[i].ID < res.Jobs[j].ID })
	sort.Slice(res.Locks, func(i, j int) bool { return res.Locks[i].JobID < res.Locks[j].JobID })
	sort.Slice(res.Notifications, func(i, j int) bool { return res.Notifications[i].ID < res.Notifications[j].ID })
	return res, s.ver
}

// apply commits all the changes at once and saves the state
func (s *State) apply(ctx context.Context, c *change) error {
	if c.empty() {
		return nil
	}
	s.m.Lock()
	for id, j := range c.jobs {
		if j == nil {
			delete(s.jobs, id)
		} else {
			s.jobs[id] = j.Copy()
		}
	}
	for id, l := range c.locks {
		if l == nil {
			delete(s.locks, id)
		} else {
			lc := *l
			s.locks[id] = &lc
		}
	}
	for _, n := range c.notifications {
		nc := *n
		s.notifications[n.ID] = &nc
	}
	s.ver++
	ver := s.ver
	s.m.Unlock()
	return s.flush(ctx, ver)
}

func (s *State) job(id string) *persistence.Job {
	s.m.RLock()
	defer s.m.RUnlock()
	return s.jobs[id].Copy()
}

func (s *State) lock(jobID string) *persistence.Lock {
	s.m.RLock()
	defer s.m.RUnlock()
	l, ok := s.locks[jobID]
	if !ok {
		return nil
	}
	res := *l
	return &res
}

func (s *State) notification(id string) *persistence.Notification {
	s.m.RLock()
	defer s.m.RUnlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil
	}
	res := *n
	return &res
}

// change collects the mutations of one operation, nil value marks deletion
type change struct {
	jobs          map[string]*persistence.Job
	locks         map[string]*persistence.Lock
	notifications []*persistence.Notification
}

func newChange() *change {
	return &change{jobs: make(map[string]*persistence.Job), locks: make(map[string]*persistence.Lock)}
}

func (c *change) empty() bool {
	return len(c.jobs) == 0 && len(c.locks) == 0 && len(c.notifications) == 0
}

func (c *change) putJob(j *persistence.Job) {
	c.jobs[j.ID] = j
}

func (c *change) dropJob(id string) {
	c.jobs[id] = nil
}

func (c *change) putLock(l *persistence.Lock) {
	c.locks[l.JobID] = l
}

func (c *change) dropLock(jobID string) {
	c.locks[jobID] = nil
}

func (c *change) addNotification(n *persistence.Notification) {
	c.notifications = append(c.notifications, n)
}

// job returns the job as it will be after the change
func (c *change) job(s *State, id string) *persistence.Job {
	if j, ok := c.jobs[id]; ok {
		return j.Copy()
	}
	return s.job(id)
}

// lock returns the lock as it will be after the change
func (c *change) lock(s *State, jobID string) *persistence.Lock {
	if l, ok := c.locks[jobID]; ok {
		if l == nil {
			return nil
		}
		res := *l
		return &res
	}
	return s.lock(jobID)
}

// stamp sets UpdatedAt never moving it back
func stamp(j *persistence.Job, now time.Time) {
	if now.After(j.UpdatedAt) {
		j.UpdatedAt = now
	}
}
