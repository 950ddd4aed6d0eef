package inform

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFullHost(t *testing.T) {
	assert.Equal(t, "net.olia:445", getFullHost("net.olia", 445))
	assert.Equal(t, "net.olia:25", getFullHost("net.olia", 0))
}

func TestNewSimpleEmailSender_NoHost(t *testing.T) {
	_, err := NewSimpleEmailSender(viper.New())
	assert.NotNil(t, err)
}
