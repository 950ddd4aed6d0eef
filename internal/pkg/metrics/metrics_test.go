package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Twice(t *testing.T) {
	s := NewService("test_review")
	assert.Nil(t, s.Register())
	s2 := NewService("test_review")
	assert.Nil(t, s2.Register())
}

func TestCountLock(t *testing.T) {
	s := NewService("test_count")
	s.CountLock("acquire", "ok")
	s.CountLock("acquire", "ok")
	s.CountLock("acquire", "denied")
	assert.Equal(t, 2.0, testutil.ToFloat64(s.LockCalls.WithLabelValues("acquire", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.LockCalls.WithLabelValues("acquire", "denied")))
}
