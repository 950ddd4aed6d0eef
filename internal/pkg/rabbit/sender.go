package rabbit

import (
	"encoding/json"
	"sync"

	"github.com/airenas/listreview/internal/pkg/cmdapp"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

//Sender performs messages sending using rabbit mq broker
type Sender struct {
	ChannelProvider *ChannelProvider
	declared        map[string]bool
	m               sync.Mutex
}

//NewSender initializes rabbit sender
func NewSender(provider *ChannelProvider) *Sender {
	return &Sender{ChannelProvider: provider, declared: make(map[string]bool)}
}

//Send sends the message to the queue, the queue is declared on first use
func (sender *Sender) Send(message interface{}, queue string) error {
	msgBytes, err := getBytes(message)
	if err != nil {
		return errors.Wrap(err, "Can't marshal message")
	}
	qName := sender.ChannelProvider.QueueName(queue)
	cmdapp.Log.Infof("Sending message to %s", qName)

	err = sender.ChannelProvider.RunOnChannelWithRetry(func(ch *amqp.Channel) error {
		if err := sender.declare(ch, qName); err != nil {
			return err
		}
		return ch.Publish(
			"", // exchange
			qName,
			false, // mandatory
			false,
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				ContentType:  "application/json",
				Body:         msgBytes,
			})
	})
	if err != nil {
		return errors.Wrap(err, "Can't send message")
	}
	return nil
}

func (sender *Sender) declare(ch *amqp.Channel, qName string) error {
	sender.m.Lock()
	defer sender.m.Unlock()

	if sender.declared[qName] {
		return nil
	}
	if _, err := Declare(ch, qName); err != nil {
		return errors.Wrap(err, "Can't declare queue "+qName)
	}
	sender.declared[qName] = true
	return nil
}

func getBytes(msg interface{}) ([]byte, error) {
	if b, ok := msg.([]byte); ok {
		return b, nil
	}
	return json.Marshal(msg)
}
