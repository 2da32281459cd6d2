package gmail

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
)

func b64(s string) string { return base64.URLEncoding.EncodeToString([]byte(s)) }

func TestParseMessageHeaders(t *testing.T) {
	msg := &gmail.Message{
		Id:       "m1",
		ThreadId: "t1",
		Snippet:  "snip",
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Quarterly numbers"},
				{Name: "From", Value: "Bob <bob@example.com>"},
				{Name: "To", Value: "me@example.com"},
				{Name: "Date", Value: "Tue, 5 Mar 2024 10:15:00 +0100 (CET)"},
			},
			Body: &gmail.MessagePartBody{Data: b64("Numbers attached.")},
		},
	}

	got := parseMessage(msg)
	assert.Equal(t, "m1", got.ID)
	assert.Equal(t, "t1", got.ThreadID)
	assert.Equal(t, "Quarterly numbers", got.Subject)
	assert.Equal(t, "Bob <bob@example.com>", got.From)
	assert.Equal(t, "Numbers attached.", got.Body)
	assert.True(t, got.Date.Equal(time.Date(2024, 3, 5, 9, 15, 0, 0, time.UTC)))

	email := got.Email()
	assert.Equal(t, "m1", email.ID.String())
	assert.Equal(t, "Bob <bob@example.com>", email.Sender)
	assert.Nil(t, email.Sentiment.Pos)
}

func TestParseMessageDateFallsBackToInternalDate(t *testing.T) {
	msg := &gmail.Message{
		Id:           "m2",
		InternalDate: 1709630100000,
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{{Name: "Date", Value: "sometime last week"}},
		},
		Snippet: "preview only",
	}
	got := parseMessage(msg)
	assert.Equal(t, int64(1709630100), got.Date.Unix())
	assert.Equal(t, "preview only", got.Body)
}

func TestExtractBodyPrefersPlainText(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmail.MessagePart{
					{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>html</p>")}},
					{MimeType: "text/plain", Body: &gmail.MessagePartBody{Data: b64("plain")}},
				},
			},
		},
	}
	assert.Equal(t, "plain", extractBody(payload))
}

func TestExtractBodyHTMLFallback(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/alternative",
		Parts: []*gmail.MessagePart{
			{MimeType: "text/html", Body: &gmail.MessagePartBody{Data: b64("<p>Hello <b>team</b></p><p></p><p></p><p>Bye</p>")}},
		},
	}
	got := extractBody(payload)
	assert.Contains(t, got, "Hello team")
	assert.Contains(t, got, "Bye")
	assert.NotContains(t, got, "<")
	assert.NotContains(t, got, "\n\n\n")
}

func TestDecodeBodyUnpadded(t *testing.T) {
	raw := base64.RawURLEncoding.EncodeToString([]byte("hi?"))
	require.False(t, strings.HasSuffix(raw, "="))
	got, err := decodeBody(raw)
	require.NoError(t, err)
	assert.Equal(t, "hi?", string(got))
}
