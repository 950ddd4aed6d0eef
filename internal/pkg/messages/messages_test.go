package messages

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/airenas/listreview/internal/pkg/persistence"
)

func TestNewNotificationMessage(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewNotificationMessage(&persistence.Notification{ID: "n1", UserID: "u1", Kind: persistence.KindReviewCompleted,
		Message: "msg", JobID: "j1", Read: true, CreatedAt: at})
	b, err := json.Marshal(m)
	assert.Nil(t, err)
	assert.Equal(t, `{"id":"n1","userId":"u1","type":"review_completed","message":"msg","jobId":"j1",`+
		`"createdAt":"2026-01-02T03:04:05Z"}`, string(b))
}
