package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ID identifies an email. Backends send it either as a JSON string (Gmail
// message ids) or as a number; both decode into the same string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Sentiment holds the backend's polarity scores. A nil score means the backend
// did not provide it.
type Sentiment struct {
	Pos      *float64 `json:"pos,omitempty"`
	Neg      *float64 `json:"neg,omitempty"`
	Neu      *float64 `json:"neu,omitempty"`
	Compound *float64 `json:"compound,omitempty"`
}

// Timestamp decodes both RFC 3339 and mail header style dates.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) > 0 && data[0] != '"' {
		// Unix seconds
		secs, err := strconv.ParseInt(string(data), 10, 64)
		if err != nil {
			return err
		}
		t.Time = time.Unix(secs, 0)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	// An unreadable date renders as N/A on its card instead of failing the
	// whole list.
	parsed, err := ParseDate(s)
	if err != nil {
		t.Time = time.Time{}
		return nil
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// Email is the backend-owned record shown in the list and reply views.
type Email struct {
	ID        ID        `json:"id"`
	Sender    string    `json:"sender"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Date      Timestamp `json:"date"`
	Sentiment Sentiment `json:"sentiment"`
	Keywords  []string  `json:"keywords"`
}

// DeleteRequest is the body of POST /emails/delete.
type DeleteRequest struct {
	EmailIDs []ID `json:"email_ids"`
}

// ReplyRequest is the body of POST /generate_reply. Subject is optional and
// only helps the backend build a "Re:" line.
type ReplyRequest struct {
	Body    string `json:"body"`
	Subject string `json:"subject,omitempty"`
}

// ReplySuggestion is the generated draft returned by POST /generate_reply.
type ReplySuggestion struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendRequest is the body of POST /send_email.
type SendRequest struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

// MessageResponse is the generic {message} acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the {error} payload returned on failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
