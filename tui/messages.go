package tui

import (
	"time"

	"github.com/bassamadnan/triage/backend"
)

// Every result message carries the mount it was issued for; results from a
// view that has since been left are dropped.

type emailsFetchedMsg struct {
	mount  int
	emails []backend.Email
	err    error
}

type emailsDeletedMsg struct {
	mount int
	err   error
}

type emailLoadedMsg struct {
	mount int
	email backend.Email
	err   error
}

type replyGeneratedMsg struct {
	mount int
	reply backend.ReplySuggestion
	err   error
}

type emailSentMsg struct {
	mount int
	resp  backend.MessageResponse
	err   error
}

type copiedMsg struct {
	mount int
	err   error
}

// A message for timed status updates.
type StatusTickMsg struct{ Time time.Time }

// Message to clear a temporary status message after a timeout.
type clearTempStatusMsg struct{ seq int }
