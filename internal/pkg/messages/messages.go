package messages

import (
	"time"

	"github.com/airenas/listreview/internal/pkg/persistence"
)

//NotificationMessage is a user notification going through the broker
type NotificationMessage struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Kind      string    `json:"type"`
	Message   string    `json:"message"`
	JobID     string    `json:"jobId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

//NewNotificationMessage creates the broker message from the notification
func NewNotificationMessage(n *persistence.Notification) *NotificationMessage {
	return &NotificationMessage{ID: n.ID, UserID: n.UserID, Kind: n.Kind, Message: n.Message, JobID: n.JobID,
		CreatedAt: n.CreatedAt}
}
