package triage

import (
	"errors"

	"github.com/bassamadnan/triage/backend"
)

// Phase is the lifecycle of a reply view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// GenerateFailedText is shown when the reply cannot be produced.
const GenerateFailedText = "Failed to generate reply. Please try again later."

var errNotLoading = errors.New("reply view is not loading")

// Draft is the editable reply.
type Draft struct {
	Subject string
	Body    string
}

// ReplyPage is the state of one reply view mount:
// idle -> loading -> {ready | error}. Ready and error are terminal for the
// mount; edits keep the page in ready.
type ReplyPage struct {
	id      backend.ID
	email   *backend.Email
	phase   Phase
	draft   Draft
	err     error
	sending bool
}

func NewReplyPage(id backend.ID) *ReplyPage {
	return &ReplyPage{id: id}
}

func (r *ReplyPage) ID() backend.ID { return r.id }

func (r *ReplyPage) Phase() Phase { return r.phase }

// Email returns the email being replied to, nil until one is loaded.
func (r *ReplyPage) Email() *backend.Email { return r.email }

func (r *ReplyPage) Draft() Draft { return r.draft }

func (r *ReplyPage) Err() error { return r.err }

func (r *ReplyPage) Sending() bool { return r.sending }

// Start moves idle to loading. It returns false on any other phase.
func (r *ReplyPage) Start() bool {
	if r.phase != PhaseIdle {
		return false
	}
	r.phase = PhaseLoading
	return true
}

// EmailLoaded records the looked-up email. The page stays loading until the
// suggestion arrives.
func (r *ReplyPage) EmailLoaded(email backend.Email) error {
	if r.phase != PhaseLoading {
		return errNotLoading
	}
	e := email
	r.email = &e
	return nil
}

// ReplyRequest builds the generation request for the loaded email.
func (r *ReplyPage) ReplyRequest() (backend.ReplyRequest, bool) {
	if r.phase != PhaseLoading || r.email == nil {
		return backend.ReplyRequest{}, false
	}
	return backend.ReplyRequest{Body: r.email.Body, Subject: r.email.Subject}, true
}

// Ready seeds the draft from the suggestion.
func (r *ReplyPage) Ready(s backend.ReplySuggestion) error {
	if r.phase != PhaseLoading || r.email == nil {
		return errNotLoading
	}
	r.draft = Draft{Subject: s.Subject, Body: s.Body}
	r.phase = PhaseReady
	return nil
}

// Fail moves loading to the terminal error phase.
func (r *ReplyPage) Fail(err error) error {
	if r.phase != PhaseLoading {
		return errNotLoading
	}
	r.err = err
	r.phase = PhaseError
	return nil
}

// ErrorText is the user-facing message of the error phase.
func (r *ReplyPage) ErrorText() string {
	if r.phase != PhaseError {
		return ""
	}
	return GenerateFailedText
}

// SetSubject edits the draft subject. Ignored outside ready.
func (r *ReplyPage) SetSubject(s string) {
	if r.phase == PhaseReady {
		r.draft.Subject = s
	}
}

// SetBody edits the draft body. Ignored outside ready.
func (r *ReplyPage) SetBody(s string) {
	if r.phase == PhaseReady {
		r.draft.Body = s
	}
}

// CanCopy reports whether the copy action is enabled.
func (r *ReplyPage) CanCopy() bool {
	return r.phase == PhaseReady && r.draft.Body != ""
}

// CanSend reports whether the send action is enabled.
func (r *ReplyPage) CanSend() bool {
	return r.phase == PhaseReady && r.draft.Subject != "" && r.draft.Body != ""
}

// BeginSend returns the request to submit. ok is false when send is disabled
// or a send is already in flight.
func (r *ReplyPage) BeginSend() (req backend.SendRequest, ok bool) {
	if !r.CanSend() || r.sending {
		return backend.SendRequest{}, false
	}
	r.sending = true
	return backend.SendRequest{
		Recipient: r.email.Sender,
		Subject:   r.draft.Subject,
		Body:      r.draft.Body,
	}, true
}

// SendDone clears the in-flight flag. The draft is kept either way.
func (r *ReplyPage) SendDone() { r.sending = false }
