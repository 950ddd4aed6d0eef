package review

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airenas/listreview/internal/pkg/persistence"
)

type wsConnMock struct {
	m         sync.Mutex
	read      chan string
	sent      []interface{}
	failOn    bool
	closed    bool
	deadlines int
	block     chan struct{}
}

func newWsConnMock() *wsConnMock {
	return &wsConnMock{read: make(chan string, 5)}
}

func (c *wsConnMock) ReadMessage() (int, []byte, error) {
	s, ok := <-c.read
	if !ok {
		return 0, nil, errors.New("closed")
	}
	return 1, []byte(s), nil
}

func (c *wsConnMock) Close() error {
	c.m.Lock()
	defer c.m.Unlock()
	c.closed = true
	return nil
}

func (c *wsConnMock) SetWriteDeadline(t time.Time) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.deadlines++
	return nil
}

func (c *wsConnMock) WriteJSON(v interface{}) error {
	if c.block != nil {
		<-c.block
	}
	c.m.Lock()
	defer c.m.Unlock()
	if c.failOn {
		return errors.New("olia")
	}
	c.sent = append(c.sent, v)
	return nil
}

func TestHub_Deliver(t *testing.T) {
	h := NewHub()
	c := newWsConnMock()
	h.saveConnection(c, "u1")

	assert.Nil(t, h.Deliver(ctx, &persistence.Notification{ID: "n1", UserID: "u1"}))
	assert.Nil(t, h.Deliver(ctx, &persistence.Notification{ID: "n2", UserID: "u2"}))
	h.JobChanged(&persistence.Job{ID: "j1", OwnerID: "u1"})

	if assert.Len(t, c.sent, 2) {
		assert.Equal(t, "notification", c.sent[0].(*event).Type)
		assert.Equal(t, "job", c.sent[1].(*event).Type)
	}
	assert.Equal(t, 2, c.deadlines)
}

func TestHub_JobDeleted(t *testing.T) {
	h := NewHub()
	c := newWsConnMock()
	h.saveConnection(c, "u1")

	h.JobDeleted(&persistence.Job{ID: "j1", OwnerID: "u1"})

	if assert.Len(t, c.sent, 1) {
		e := c.sent[0].(*event)
		assert.Equal(t, "job_deleted", e.Type)
		assert.Equal(t, map[string]string{"id": "j1"}, e.Data)
	}
}

func TestHub_DeliverFails(t *testing.T) {
	h := NewHub()
	c := newWsConnMock()
	c.failOn = true
	h.saveConnection(c, "u1")

	assert.NotNil(t, h.Deliver(ctx, &persistence.Notification{ID: "n1", UserID: "u1"}))
	assert.True(t, c.closed)
}

func TestHub_SlowSubscriberDoesNotBlockOthers(t *testing.T) {
	h := NewHub()
	slow := newWsConnMock()
	slow.block = make(chan struct{})
	fast := newWsConnMock()
	h.saveConnection(slow, "u1")
	h.saveConnection(fast, "u2")

	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		_ = h.Deliver(ctx, &persistence.Notification{ID: "n1", UserID: "u1"})
	}()

	fastDone := make(chan error)
	go func() {
		fastDone <- h.Deliver(ctx, &persistence.Notification{ID: "n2", UserID: "u2"})
	}()
	select {
	case err := <-fastDone:
		assert.Nil(t, err)
	case <-time.After(2 * time.Second):
		require.Fail(t, "delivery blocked by other subscriber")
	}
	h.saveConnection(newWsConnMock(), "u3")

	close(slow.block)
	<-slowDone
	assert.Len(t, slow.sent, 1)
	assert.Len(t, fast.sent, 1)
}

func TestHub_Resubscribe(t *testing.T) {
	h := NewHub()
	c := newWsConnMock()
	h.saveConnection(c, "u1")
	h.saveConnection(c, "u2")

	assert.Len(t, h.connections, 1)
	assert.Nil(t, h.userConns["u1"])
	assert.Len(t, h.userConns["u2"], 1)
}

func TestHub_HandleConnection(t *testing.T) {
	h := NewHub()
	c := newWsConnMock()
	c.read <- "u1"
	close(c.read)

	h.handleConnection(c)

	assert.True(t, c.closed)
	assert.Empty(t, h.connections)
	assert.Empty(t, h.userConns)
}
