package inform

import (
	"net/smtp"
	"strconv"
	"time"

	"github.com/jordan-wright/email"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

//SimpleEmailSender sends emails through the smtp pool
type SimpleEmailSender struct {
	sendPool *email.Pool
	timeout  time.Duration
}

//NewSimpleEmailSender creates the sender from smtp.* config
func NewSimpleEmailSender(c *viper.Viper) (*SimpleEmailSender, error) {
	host, err := getStringNonNil(c, "smtp.host")
	if err != nil {
		return nil, err
	}
	r := SimpleEmailSender{timeout: 10 * time.Second}
	r.sendPool, err = email.NewPool(getFullHost(host, c.GetInt("smtp.port")), 1,
		smtp.PlainAuth("", c.GetString("smtp.username"), c.GetString("smtp.password"), host))
	if err != nil {
		return nil, errors.Wrap(err, "Can't init smtp pool")
	}
	return &r, nil
}

//Send sends the email
func (s *SimpleEmailSender) Send(email *email.Email) error {
	return s.sendPool.Send(email, s.timeout)
}

//Close closes the pool
func (s *SimpleEmailSender) Close() {
	s.sendPool.Close()
}

func getFullHost(host string, port int) string {
	if port <= 0 {
		port = 25
	}
	return host + ":" + strconv.Itoa(port)
}
