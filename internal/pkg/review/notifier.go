package review

import (
	"context"
	"sort"
	"time"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
)

//NotificationSink delivers a stored notification to the outside world
type NotificationSink interface {
	Deliver(ctx context.Context, n *persistence.Notification) error
}

//Notifier keeps user notifications
type Notifier struct {
	state *State
	sinks []NotificationSink
}

func newNotifier(state *State, sinks ...NotificationSink) *Notifier {
	return &Notifier{state: state, sinks: sinks}
}

//Notify stores a new unread notification for the user
func (n *Notifier) Notify(ctx context.Context, userID, kind, message, jobID string) (*persistence.Notification, error) {
	res := n.newNotification(userID, kind, message, jobID, n.state.now())
	c := newChange()
	c.addNotification(res)
	if err := n.state.apply(ctx, c); err != nil {
		return nil, err
	}
	n.deliver(ctx, res)
	rc := *res
	return &rc, nil
}

//MarkRead flips the read flag, returns false if the notification is absent
func (n *Notifier) MarkRead(ctx context.Context, id string) (bool, error) {
	unlock := n.state.keys.Lock("notification/" + id)
	defer unlock()

	r := n.state.notification(id)
	if r == nil {
		return false, nil
	}
	if r.Read {
		return true, nil
	}
	r.Read = true
	c := newChange()
	c.addNotification(r)
	if err := n.state.apply(ctx, c); err != nil {
		return false, err
	}
	return true, nil
}

//ListFor returns user's notifications, most recent first
func (n *Notifier) ListFor(ctx context.Context, userID string) ([]*persistence.Notification, error) {
	n.state.m.RLock()
	defer n.state.m.RUnlock()
	res := make([]*persistence.Notification, 0)
	for _, v := range n.state.notifications {
		if v.UserID == userID {
			vc := *v
			res = append(res, &vc)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].ID > res[j].ID
		}
		return res[i].CreatedAt.After(res[j].CreatedAt)
	})
	return res, nil
}

func (n *Notifier) newNotification(userID, kind, message, jobID string, now time.Time) *persistence.Notification {
	return &persistence.Notification{ID: n.state.newID(), UserID: userID, Kind: kind, Message: message,
		JobID: jobID, CreatedAt: now}
}

// deliver hands the notification to the sinks, failures are only logged
func (n *Notifier) deliver(ctx context.Context, nt *persistence.Notification) {
	if nt == nil {
		return
	}
	cmdapp.Log.Infof("Notification %s for %s: %s", nt.Kind, nt.UserID, nt.JobID)
	for _, s := range n.sinks {
		nc := *nt
		if err := s.Deliver(ctx, &nc); err != nil {
			cmdapp.Log.Errorf("Can't deliver notification %s: %v", nt.ID, err)
		}
	}
}
