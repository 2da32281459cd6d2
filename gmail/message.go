package gmail

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/k3a/html2text"
	"google.golang.org/api/gmail/v1"

	"github.com/bassamadnan/triage/backend"
)

// ProcessedEmail holds the essential information extracted from a Gmail message.
type ProcessedEmail struct {
	ID           string
	ThreadID     string
	From         string
	To           string
	Date         time.Time
	Subject      string
	Snippet      string
	Body         string
	InternalDate int64 // milliseconds since epoch
}

// Email converts to the wire type; analysis fields are left empty.
func (p ProcessedEmail) Email() backend.Email {
	return backend.Email{
		ID:       backend.ID(p.ID),
		Sender:   p.From,
		Subject:  p.Subject,
		Body:     p.Body,
		Date:     backend.Timestamp{Time: p.Date},
		Keywords: []string{},
	}
}

func parseMessage(msg *gmail.Message) ProcessedEmail {
	email := ProcessedEmail{
		ID:           msg.Id,
		ThreadID:     msg.ThreadId,
		Snippet:      msg.Snippet,
		InternalDate: msg.InternalDate,
	}
	if msg.Payload == nil {
		return email
	}
	for _, header := range msg.Payload.Headers {
		switch strings.ToLower(header.Name) {
		case "subject":
			email.Subject = header.Value
		case "from":
			email.From = header.Value
		case "to":
			email.To = header.Value
		case "date":
			if t, err := backend.ParseDate(header.Value); err == nil {
				email.Date = t
			}
		}
	}
	if email.Date.IsZero() && msg.InternalDate > 0 {
		email.Date = time.UnixMilli(msg.InternalDate)
	}
	email.Body = extractBody(msg.Payload)
	if email.Body == "" {
		email.Body = msg.Snippet
	}
	return email
}

// extractBody prefers the first text/plain part and falls back to the first
// text/html part rendered as text.
func extractBody(payload *gmail.MessagePart) string {
	if body := findPart(payload, "text/plain"); body != "" {
		return body
	}
	if html := findPart(payload, "text/html"); html != "" {
		return htmlToText(html)
	}
	return ""
}

func findPart(part *gmail.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if strings.EqualFold(part.MimeType, mimeType) && part.Body != nil && part.Body.Data != "" {
		if data, err := decodeBody(part.Body.Data); err == nil {
			return string(data)
		}
	}
	for _, child := range part.Parts {
		if body := findPart(child, mimeType); body != "" {
			return body
		}
	}
	return ""
}

// decodeBody accepts padded and unpadded base64url; Gmail emits both.
func decodeBody(data string) ([]byte, error) {
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}

func htmlToText(html string) string {
	text := html2text.HTML2Text(html)
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blank++
			if blank > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blank = 0
		out = append(out, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
