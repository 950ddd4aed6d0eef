package status

// Trigger tells who drives the status change
type Trigger int

const (
	//ByJob - change is driven by the job registry (transcriber events, owner actions)
	ByJob Trigger = iota + 1
	//ByLock - change is a side effect of the review lock state
	ByLock
)

type transition struct {
	from, to Status
}

var transitions = map[transition]Trigger{
	{Pending, Processing}:       ByJob,
	{Pending, Failed}:           ByJob,
	{Processing, Completed}:     ByJob,
	{Processing, PendingReview}: ByJob,
	{Processing, Failed}:        ByJob,
	{Completed, PendingReview}:  ByJob,
	{PendingReview, InReview}:   ByLock,
	{InReview, PendingReview}:   ByLock,
	{InReview, Verified}:        ByLock,
	{PendingReview, Verified}:   ByLock,
}

//CanTransit checks if the transition is allowed for the trigger
func CanTransit(from, to Status, by Trigger) bool {
	t, ok := transitions[transition{from: from, to: to}]
	return ok && t == by
}

//Terminal returns true if no transition leaves the status.
//Completed is terminal only if no review is requested later.
func Terminal(st Status) bool {
	for t := range transitions {
		if t.from == st {
			return false
		}
	}
	return true
}
