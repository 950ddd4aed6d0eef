package messages

const (
	// Notification queue for user notifications
	Notification string = "ReviewNotification"
)
