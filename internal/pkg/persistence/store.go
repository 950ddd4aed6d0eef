package persistence

import (
	"context"
	"sync"
)

//Store is a persistence substrate for the full service state.
//Save must be atomic for the whole snapshot.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, s *Snapshot) error
}

//MemoryStore keeps the last saved snapshot in memory
type MemoryStore struct {
	m     sync.Mutex
	data  *Snapshot
	saves int
}

//NewMemoryStore creates an empty in memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

//Load returns the last saved snapshot or an empty one
func (ms *MemoryStore) Load(ctx context.Context) (*Snapshot, error) {
	ms.m.Lock()
	defer ms.m.Unlock()
	if ms.data == nil {
		return &Snapshot{}, nil
	}
	return ms.data.Copy(), nil
}

//Save keeps a copy of the snapshot
func (ms *MemoryStore) Save(ctx context.Context, s *Snapshot) error {
	ms.m.Lock()
	defer ms.m.Unlock()
	ms.data = s.Copy()
	ms.saves++
	return nil
}

//Saves returns how many times Save was invoked
func (ms *MemoryStore) Saves() int {
	ms.m.Lock()
	defer ms.m.Unlock()
	return ms.saves
}

//Copy makes a deep copy of the snapshot
func (s *Snapshot) Copy() *Snapshot {
	r := &Snapshot{}
	for _, j := range s.Jobs {
		r.Jobs = append(r.Jobs, j.Copy())
	}
	for _, l := range s.Locks {
		lc := *l
		r.Locks = append(r.Locks, &lc)
	}
	for _, n := range s.Notifications {
		nc := *n
		r.Notifications = append(r.Notifications, &nc)
	}
	return r
}
