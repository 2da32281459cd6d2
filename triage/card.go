package triage

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bassamadnan/triage/backend"
)

const (
	// BodyPreviewLimit is the number of runes of body shown on a card.
	BodyPreviewLimit = 150
	// MaxKeywords is how many keywords a card shows.
	MaxKeywords = 3

	ellipsis = "..."
	unknown  = "N/A"
)

var sentimentEmoji = struct{ pos, neg, neu string }{"😊", "😟", "😐"}

// TruncateBody shortens body to BodyPreviewLimit runes followed by "...".
func TruncateBody(body string) string {
	return truncateRunes(body, BodyPreviewLimit)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + ellipsis
}

// TopKeywords returns at most MaxKeywords keywords in their original order.
func TopKeywords(keywords []string) []string {
	n := len(keywords)
	if n > MaxKeywords {
		n = MaxKeywords
	}
	out := make([]string, n)
	copy(out, keywords[:n])
	return out
}

// FormatScore renders one sentiment score, N/A when unknown.
func FormatScore(v *float64) string {
	if v == nil {
		return unknown
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// SentimentLine renders the three polarity scores of a card.
func SentimentLine(s backend.Sentiment) string {
	return fmt.Sprintf("%s Positive: %s, %s Negative: %s, %s Neutral: %s",
		sentimentEmoji.pos, FormatScore(s.Pos),
		sentimentEmoji.neg, FormatScore(s.Neg),
		sentimentEmoji.neu, FormatScore(s.Neu))
}

// FormatDate renders a card date in local time.
func FormatDate(t backend.Timestamp) string {
	if t.IsZero() {
		return unknown
	}
	return t.Local().Format("Jan 2, 2006, 3:04:05 PM")
}

// Card is the display form of one email.
type Card struct {
	ID        backend.ID
	Subject   string
	Sender    string
	Date      string
	Received  backend.Timestamp
	Preview   string
	Sentiment string
	Keywords  []string
	Selected  bool
}

// NewCard derives the card for email. The email itself is not modified.
func NewCard(email backend.Email, selected bool) Card {
	subject := email.Subject
	if strings.TrimSpace(subject) == "" {
		subject = "(No Subject)"
	}
	return Card{
		ID:        email.ID,
		Subject:   subject,
		Sender:    email.Sender,
		Date:      FormatDate(email.Date),
		Received:  email.Date,
		Preview:   TruncateBody(email.Body),
		Sentiment: SentimentLine(email.Sentiment),
		Keywords:  TopKeywords(email.Keywords),
		Selected:  selected,
	}
}

// Cards renders the list page's snapshot.
func (p *ListPage) Cards() []Card {
	cards := make([]Card, len(p.emails))
	for i, e := range p.emails {
		cards[i] = NewCard(e, p.selection.Has(e.ID))
	}
	return cards
}

// DateAge is used by frontends that prefer a compact date column.
func DateAge(t backend.Timestamp, now time.Time) string {
	if t.IsZero() {
		return "???"
	}
	local := t.Local()
	if local.Year() == now.Year() && local.YearDay() == now.YearDay() {
		return local.Format("15:04")
	}
	return local.Format("Jan02")
}
