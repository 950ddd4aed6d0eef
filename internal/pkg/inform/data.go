package inform

import "time"

//Data keeps the info for one email
type Data struct {
	ID      string
	Email   string
	MsgType string
	MsgTime time.Time
	Message string
}
