package review

import (
	"context"

	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/pkg/errors"
)

//Core wires the job registry, the lock manager and the notifier over one state
type Core struct {
	State    *State
	Jobs     *Registry
	Locks    *LockManager
	Notifier *Notifier
}

//New creates the review core. Call Load to restore the stored state.
func New(store persistence.Store, opts ...Option) (*Core, error) {
	if store == nil {
		return nil, errors.New("No store")
	}
	o := newOptions(opts)
	if o.ttl <= 0 {
		return nil, errors.Errorf("Wrong lock ttl %v", o.ttl)
	}
	res := &Core{State: newState(store, o)}
	res.Notifier = newNotifier(res.State, o.sinks...)
	res.Jobs = newRegistry(res.State, res.Notifier)
	res.Locks = newLockManager(res.State, res.Jobs, res.Notifier)
	return res, nil
}

//Load restores the state from the store
func (c *Core) Load(ctx context.Context) error {
	return c.State.Load(ctx)
}

//Close flushes the state
func (c *Core) Close(ctx context.Context) error {
	return c.State.Close(ctx)
}
