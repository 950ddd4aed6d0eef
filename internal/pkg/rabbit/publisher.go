package rabbit

import (
	"context"

	"github.com/airenas/listreview/internal/pkg/messages"
	"github.com/airenas/listreview/internal/pkg/persistence"
	"github.com/pkg/errors"
)

//NotificationPublisher pushes user notifications to the broker queue
type NotificationPublisher struct {
	Sender messages.Sender
	Queue  string
}

//NewNotificationPublisher initializes rabbit notification publisher
func NewNotificationPublisher(sender messages.Sender) (*NotificationPublisher, error) {
	if sender == nil {
		return nil, errors.New("No sender")
	}
	return &NotificationPublisher{Sender: sender, Queue: messages.Notification}, nil
}

//Deliver publishes the notification
func (p *NotificationPublisher) Deliver(ctx context.Context, n *persistence.Notification) error {
	return p.Sender.Send(messages.NewNotificationMessage(n), p.Queue)
}
