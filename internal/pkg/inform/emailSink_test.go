package inform

import (
	"context"
	"testing"
	"time"

	"github.com/jordan-wright/email"
	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/mock"

	"github.com/airenas/listreview/internal/pkg/persistence"
)

type senderMock struct{ mock.Mock }

func (m *senderMock) Send(e *email.Email) error {
	return m.Called(e).Error(0)
}

type makerMock struct{ mock.Mock }

func (m *makerMock) Make(data *Data) (*email.Email, error) {
	args := m.Called(data)
	return args.Get(0).(*email.Email), args.Error(1)
}

type retrieverMock struct{ mock.Mock }

func (m *retrieverMock) OwnerEmail(ctx context.Context, jobID string) (string, error) {
	args := m.Called(jobID)
	return args.String(0), args.Error(1)
}

func TestNewEmailSink(t *testing.T) {
	Convey("Given missing parts", t, func() {
		_, err := NewEmailSink(nil, &makerMock{}, &retrieverMock{}, nil)
		So(err, ShouldNotBeNil)
		_, err = NewEmailSink(&senderMock{}, nil, &retrieverMock{}, nil)
		So(err, ShouldNotBeNil)
		_, err = NewEmailSink(&senderMock{}, &makerMock{}, nil, nil)
		So(err, ShouldNotBeNil)
	})
}

func TestDeliver(t *testing.T) {
	Convey("Given the sink", t, func() {
		sm, mm, rm := &senderMock{}, &makerMock{}, &retrieverMock{}
		loc := time.FixedZone("LT", 2*3600)
		s, err := NewEmailSink(sm, mm, rm, loc)
		So(err, ShouldBeNil)
		at := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
		n := &persistence.Notification{ID: "n1", UserID: "u1", JobID: "j1", Kind: persistence.KindReviewCompleted,
			Message: "msg", CreatedAt: at}
		e := email.NewEmail()
		Convey("When all works", func() {
			rm.On("OwnerEmail", "j1").Return("a@a.lt", nil)
			mm.On("Make", mock.MatchedBy(func(d *Data) bool {
				return d.Email == "a@a.lt" && d.ID == "j1" && d.MsgType == persistence.KindReviewCompleted &&
					d.MsgTime.Location() == loc && d.MsgTime.Equal(at)
			})).Return(e, nil)
			sm.On("Send", e).Return(nil)
			Convey("Then the email is sent", func() {
				So(s.Deliver(context.Background(), n), ShouldBeNil)
				sm.AssertNumberOfCalls(t, "Send", 1)
			})
		})
		Convey("When there is no email", func() {
			rm.On("OwnerEmail", "j1").Return("", nil)
			Convey("Then nothing is sent", func() {
				So(s.Deliver(context.Background(), n), ShouldBeNil)
				mm.AssertNotCalled(t, "Make", mock.Anything)
			})
		})
		Convey("When retriever fails", func() {
			rm.On("OwnerEmail", "j1").Return("", errors.New("olia"))
			Convey("Then error is returned", func() {
				So(s.Deliver(context.Background(), n), ShouldNotBeNil)
			})
		})
		Convey("When send fails", func() {
			rm.On("OwnerEmail", "j1").Return("a@a.lt", nil)
			mm.On("Make", mock.Anything).Return(e, nil)
			sm.On("Send", e).Return(errors.New("olia"))
			Convey("Then error is returned", func() {
				So(s.Deliver(context.Background(), n), ShouldNotBeNil)
			})
		})
	})
}
