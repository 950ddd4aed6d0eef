package mongo

import "time"

const (
	store      = "review"
	stateTable = "state"
	stateID    = "current"

	opTimeout = 15 * time.Second
)
