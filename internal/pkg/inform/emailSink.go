package inform

import (
	"context"
	"time"

	"github.com/jordan-wright/email"
	"github.com/pkg/errors"

	"github.com/airenas/listreview/internal/pkg/cmdapp"
	"github.com/airenas/listreview/internal/pkg/persistence"
)

//Sender send emails
type Sender interface {
	Send(email *email.Email) error
}

//EmailMaker prepares the email
type EmailMaker interface {
	Make(data *Data) (*email.Email, error)
}

//EmailRetriever return the owner's email by job ID
type EmailRetriever interface {
	OwnerEmail(ctx context.Context, jobID string) (string, error)
}

//EmailSink emails notifications to the job owners
type EmailSink struct {
	sender    Sender
	maker     EmailMaker
	retriever EmailRetriever
	location  *time.Location
}

//NewEmailSink creates the sink, location may be nil
func NewEmailSink(sender Sender, maker EmailMaker, retriever EmailRetriever, location *time.Location) (*EmailSink, error) {
	if sender == nil {
		return nil, errors.New("No sender")
	}
	if maker == nil {
		return nil, errors.New("No email maker")
	}
	if retriever == nil {
		return nil, errors.New("No email retriever")
	}
	return &EmailSink{sender: sender, maker: maker, retriever: retriever, location: location}, nil
}

//Deliver sends the notification email, notifications without an owner email are skipped
func (s *EmailSink) Deliver(ctx context.Context, n *persistence.Notification) error {
	if n.JobID == "" {
		return nil
	}
	mail, err := s.retriever.OwnerEmail(ctx, n.JobID)
	if err != nil {
		return errors.Wrapf(err, "Can't get email for %s", n.JobID)
	}
	if mail == "" {
		cmdapp.Log.Debugf("No email for %s, skip", n.JobID)
		return nil
	}
	data := &Data{ID: n.JobID, Email: mail, MsgType: n.Kind, MsgTime: s.toLocalTime(n.CreatedAt), Message: n.Message}
	e, err := s.maker.Make(data)
	if err != nil {
		return errors.Wrap(err, "Can't prepare email")
	}
	if err = s.sender.Send(e); err != nil {
		return errors.Wrap(err, "Can't send email")
	}
	cmdapp.Log.Infof("Sent %s email for %s", n.Kind, n.JobID)
	return nil
}

func (s *EmailSink) toLocalTime(t time.Time) time.Time {
	if s.location != nil {
		return t.In(s.location)
	}
	return t
}
