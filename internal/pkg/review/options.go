package review

import (
	"time"

	"github.com/google/uuid"
)

//DefaultLockTTL is the review lock duration
const DefaultLockTTL = 30 * time.Minute

type options struct {
	now   func() time.Time
	ttl   time.Duration
	newID func() string
	sinks []NotificationSink
}

//Option configures the review core
type Option func(*options)

//WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

//WithLockTTL overrides the lock duration
func WithLockTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

//WithIDGenerator overrides job and notification ID generation
func WithIDGenerator(f func() string) Option {
	return func(o *options) {
		o.newID = f
	}
}

//WithSinks adds notification delivery sinks
func WithSinks(sinks ...NotificationSink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, sinks...)
	}
}

func newOptions(opts []Option) *options {
	res := &options{now: time.Now, ttl: DefaultLockTTL, newID: func() string { return uuid.New().String() }}
	for _, o := range opts {
		o(res)
	}
	return res
}
