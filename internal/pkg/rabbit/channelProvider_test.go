package rabbit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
)

func TestEmptyQueueName(t *testing.T) {
	var prv ChannelProvider
	prv.qPrefix = "prefix"
	assert.Equal(t, "", prv.QueueName(""))
}

func TestNoPrefix(t *testing.T) {
	var prv ChannelProvider
	assert.Equal(t, "olia", prv.QueueName("olia"))
}

func TestPrefix(t *testing.T) {
	var prv ChannelProvider
	prv.qPrefix = "prefix"
	assert.Equal(t, "prefix_olia", prv.QueueName("olia"))
}

func TestNewChannelProvider(t *testing.T) {
	cmdapp.Config.Set("messageServer.url", "rabbit:5672")
	cmdapp.Config.Set("messageServer.user", "u")
	cmdapp.Config.Set("messageServer.pass", "p")
	defer cmdapp.Config.Set("messageServer.url", "")
	defer cmdapp.Config.Set("messageServer.user", "")
	defer cmdapp.Config.Set("messageServer.pass", "")

	prv, err := NewChannelProvider()
	assert.Nil(t, err)
	assert.Equal(t, "amqp://u:p@rabbit:5672", prv.url)
}

func TestNewChannelProvider_Fails(t *testing.T) {
	cmdapp.Config.Set("messageServer.url", "")
	_, err := NewChannelProvider()
	assert.NotNil(t, err)

	cmdapp.Config.Set("messageServer.url", "rabbit:5672")
	cmdapp.Config.Set("messageServer.user", "u")
	defer cmdapp.Config.Set("messageServer.url", "")
	defer cmdapp.Config.Set("messageServer.user", "")
	_, err = NewChannelProvider()
	assert.NotNil(t, err)
}
