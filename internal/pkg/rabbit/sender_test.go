package rabbit

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/airenas/listreview/internal/pkg/messages"
	"github.com/airenas/listreview/internal/pkg/persistence"
)

type senderMock struct {
	mock.Mock
}

func (m *senderMock) Send(message interface{}, queue string) error {
	args := m.Called(message, queue)
	return args.Error(0)
}

func TestGetBytes_Message(t *testing.T) {
	m := &messages.NotificationMessage{ID: "id", UserID: "u", Kind: "k", Message: "m",
		CreatedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	b, err := getBytes(m)
	assert.Nil(t, err)
	assert.Equal(t, `{"id":"id","userId":"u","type":"k","message":"m","createdAt":"2026-01-02T00:00:00Z"}`, string(b))
}

func TestGetBytes_Bytes(t *testing.T) {
	b, err := getBytes([]byte("olia"))
	assert.Nil(t, err)
	assert.Equal(t, "olia", string(b))
}

func TestGetBytes_String(t *testing.T) {
	b, err := getBytes("olia")
	assert.Nil(t, err)
	assert.Equal(t, "\"olia\"", string(b))
}

func TestNotificationPublisher(t *testing.T) {
	_, err := NewNotificationPublisher(nil)
	assert.NotNil(t, err)

	sm := &senderMock{}
	sm.On("Send", mock.MatchedBy(func(m *messages.NotificationMessage) bool {
		return m.ID == "n1" && m.UserID == "u1" && m.JobID == "j1"
	}), messages.Notification).Return(nil)
	p, err := NewNotificationPublisher(sm)
	assert.Nil(t, err)

	err = p.Deliver(context.Background(), &persistence.Notification{ID: "n1", UserID: "u1", JobID: "j1"})
	assert.Nil(t, err)
	sm.AssertExpectations(t)
}

func TestNotificationPublisher_Fails(t *testing.T) {
	sm := &senderMock{}
	sm.On("Send", mock.Anything, mock.Anything).Return(errors.New("olia"))
	p, _ := NewNotificationPublisher(sm)

	err := p.Deliver(context.Background(), &persistence.Notification{ID: "n1"})
	assert.NotNil(t, err)
}
