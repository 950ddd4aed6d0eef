package status

//Status represents transcription job status
type Status string

const (
	//Pending - job is created, not yet accepted by the transcriber
	Pending Status = "pending"
	//Processing - transcriber is working
	Processing Status = "processing"
	//Completed - transcript is ready, no review requested
	Completed Status = "completed"
	//Failed - transcription failed
	Failed Status = "failed"
	//PendingReview - transcript waits for an editor
	PendingReview Status = "pending_review"
	//InReview - an editor holds the review lock
	InReview Status = "in_review"
	//Verified - review is finished
	Verified Status = "verified"
)

var (
	nameStatus = map[string]Status{string(Pending): Pending, string(Processing): Processing,
		string(Completed): Completed, string(Failed): Failed,
		string(PendingReview): PendingReview, string(InReview): InReview,
		string(Verified): Verified}
)

//Name returns status name
func Name(st Status) string {
	return string(st)
}

//From parses status from name, returns false if the name is unknown
func From(st string) (Status, bool) {
	r, ok := nameStatus[st]
	return r, ok
}

//Reviewable returns true if the job can be taken or verified by an editor
func Reviewable(st Status) bool {
	return st == PendingReview || st == InReview
}
