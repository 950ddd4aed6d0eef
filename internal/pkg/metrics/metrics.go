package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

//Service keeps the collectors of the review service
type Service struct {
	ResponseDur *prometheus.HistogramVec
	LockCalls   *prometheus.CounterVec
}

//NewService creates unregistered collectors under the namespace
func NewService(namespace string) *Service {
	return &Service{
		ResponseDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "response_duration_seconds",
			Help:      "Response duration by handler",
			Buckets:   prometheus.DefBuckets,
		}, []string{"handler", "code", "method"}),
		LockCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lock_calls_total",
			Help:      "Lock manager calls by action and outcome",
		}, []string{"action", "result"}),
	}
}

//Register adds the collectors to the default registry
func (s *Service) Register() error {
	if err := register(s.ResponseDur); err != nil {
		return errors.Wrap(err, "Can't register response metric")
	}
	if err := register(s.LockCalls); err != nil {
		return errors.Wrap(err, "Can't register lock metric")
	}
	return nil
}

//CountLock increments lock call counter
func (s *Service) CountLock(action, result string) {
	s.LockCalls.WithLabelValues(action, result).Inc()
}

// register tries to register or reregister metric to prometheus default registry
func register(m prometheus.Collector) error {
	err := prometheus.Register(m)
	if err != nil {
		prometheus.Unregister(m)
		err = prometheus.Register(m)
	}
	return err
}
