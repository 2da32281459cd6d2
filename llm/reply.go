package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/bassamadnan/triage/backend"
)

// DefaultReplyTemplate asks for a subject line followed by the reply body.
const DefaultReplyTemplate = `Given the following email:

Subject: {{subject}}

{{body}}

Compose a professional and appropriate reply. Start your answer with a single
line of the form "Subject: <subject>", then a blank line, then the reply body.`

// Replier drafts replies with a Provider.
type Replier struct {
	provider Provider
	template string
}

// NewReplier wraps provider; an empty template selects DefaultReplyTemplate.
func NewReplier(provider Provider, template string) *Replier {
	if strings.TrimSpace(template) == "" {
		template = DefaultReplyTemplate
	}
	return &Replier{provider: provider, template: template}
}

// Provider returns the underlying provider.
func (r *Replier) Provider() Provider { return r.provider }

// DraftReply generates a reply suggestion for an email.
func (r *Replier) DraftReply(ctx context.Context, req backend.ReplyRequest) (backend.ReplySuggestion, error) {
	prompt := strings.ReplaceAll(r.template, "{{subject}}", req.Subject)
	prompt = strings.ReplaceAll(prompt, "{{body}}", req.Body)

	text, err := r.provider.Generate(ctx, prompt)
	if err != nil {
		return backend.ReplySuggestion{}, fmt.Errorf("%s: %w", r.provider.Name(), err)
	}
	return ParseReply(text, req.Subject), nil
}

// ParseReply splits generated text into subject and body. A leading
// "Subject:" line wins; otherwise the subject is derived from the original.
func ParseReply(text, originalSubject string) backend.ReplySuggestion {
	text = strings.TrimSpace(text)
	first, rest, _ := strings.Cut(text, "\n")
	if label, value, ok := strings.Cut(first, ":"); ok && strings.EqualFold(strings.TrimSpace(label), "subject") {
		if subject := strings.TrimSpace(value); subject != "" {
			return backend.ReplySuggestion{Subject: subject, Body: strings.TrimSpace(rest)}
		}
	}
	return backend.ReplySuggestion{Subject: ReplySubject(originalSubject), Body: text}
}

// ReplySubject prefixes "Re: " unless the subject already carries it.
func ReplySubject(subject string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "Re:"
	}
	if len(subject) >= 3 && strings.EqualFold(subject[:3], "re:") {
		return subject
	}
	return "Re: " + subject
}
