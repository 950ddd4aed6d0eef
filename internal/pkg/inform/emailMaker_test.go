package inform

import (
	"testing"
	"time"

	"github.com/spf13/viper"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFailsInit(t *testing.T) {
	Convey("Given no url", t, func() {
		m, err := NewSimpleEmailMaker(viper.New())
		Convey("Constructor should fail", func() {
			So(err, ShouldNotBeNil)
			So(m, ShouldBeNil)
		})
	})
}

func TestInit_OK(t *testing.T) {
	Convey("Given url", t, func() {
		v := viper.New()
		v.Set("mail.url", "url")
		m, err := NewSimpleEmailMaker(v)
		Convey("Constructor should succeed", func() {
			So(err, ShouldBeNil)
			So(m.url, ShouldEqual, "url")
		})
	})
}

func TestEmail(t *testing.T) {
	Convey("Given config", t, func() {
		v := viper.New()
		v.Set("mail.url", "http://list/review/{{ID}}")
		v.Set("mail.review_completed.subject", "subject")
		v.Set("mail.review_completed.text", "text")
		v.Set("smtp.username", "from@list.lt")
		m, _ := NewSimpleEmailMaker(v)
		data := Data{Email: "email", ID: "id", MsgType: "review_completed", MsgTime: time.Now(), Message: "verified"}
		Convey("Mail should be made", func() {
			e, err := m.Make(&data)
			So(err, ShouldBeNil)
			So(e.Subject, ShouldEqual, "subject")
			So(e.To, ShouldContain, "email")
			So(e.From, ShouldEqual, "from@list.lt")
			So(string(e.Text), ShouldEqual, "text")
		})
		Convey("Should fail no subject", func() {
			v.Set("mail.review_completed.subject", "")
			_, err := m.Make(&data)
			So(err, ShouldNotBeNil)
		})
		Convey("Should fail no text", func() {
			v.Set("mail.review_completed.text", "")
			_, err := m.Make(&data)
			So(err, ShouldNotBeNil)
		})
		Convey("Should change ID", func() {
			v.Set("mail.review_completed.text", "{{ID}}")
			e, _ := m.Make(&data)
			So(string(e.Text), ShouldEqual, "id")
		})
		Convey("Should change URL", func() {
			v.Set("mail.review_completed.text", "{{URL}}")
			e, _ := m.Make(&data)
			So(string(e.Text), ShouldEqual, "http://list/review/id")
		})
		Convey("Should change message", func() {
			v.Set("mail.review_completed.text", "<{{MESSAGE}}>")
			e, _ := m.Make(&data)
			So(string(e.Text), ShouldEqual, "<verified>")
		})
		Convey("Should change Date", func() {
			v.Set("mail.review_completed.text", "{{DATE}}")
			e, _ := m.Make(&data)
			So(string(e.Text), ShouldStartWith, data.MsgTime.Format("2006-01-02 15:04:05"))
		})
	})
}
