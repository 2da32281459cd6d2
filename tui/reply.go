package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/triage"
)

type replyFocus int

const (
	focusSubject replyFocus = iota
	focusBody
)

// replyView is the reply route: triage state plus the editing widgets.
type replyView struct {
	page    *triage.ReplyPage
	subject textinput.Model
	body    textarea.Model
	spinner spinner.Model
	focus   replyFocus
}

func newReplyView(id backend.ID) *replyView {
	subject := textinput.New()
	subject.Placeholder = "Subject"
	subject.Prompt = ""
	subject.CharLimit = 0

	body := textarea.New()
	body.Placeholder = "Reply"
	body.ShowLineNumbers = false
	body.CharLimit = 0

	s := spinner.New()
	s.Spinner = spinner.Dot

	return &replyView{
		page:    triage.NewReplyPage(id),
		subject: subject,
		body:    body,
		spinner: s,
	}
}

// populate seeds the widgets from the ready draft.
func (r *replyView) populate() {
	d := r.page.Draft()
	r.subject.SetValue(d.Subject)
	r.body.SetValue(d.Body)
	r.setFocus(focusBody)
}

func (r *replyView) ready() bool { return r.page.Phase() == triage.PhaseReady }

func (r *replyView) loading() bool { return r.page.Phase() == triage.PhaseLoading }

func (r *replyView) setFocus(f replyFocus) {
	r.focus = f
	if f == focusSubject {
		r.body.Blur()
		r.subject.Focus()
		return
	}
	r.subject.Blur()
	r.body.Focus()
}

func (m Model) updateReply(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.reply
	switch msg.String() {
	case "esc":
		cmd := m.mountList()
		return m, cmd
	case "ctrl+y":
		if !r.page.CanCopy() {
			return m, nil
		}
		return m, copyCmd(m.clip, m.mount, r.page.Draft().Body)
	case "ctrl+s":
		req, ok := r.page.BeginSend()
		if !ok {
			return m, nil
		}
		m.logger.Info("sending reply", zap.String("id", string(r.page.ID())))
		return m, sendEmailCmd(m.ctx, m.api, m.mount, req)
	}

	if !r.ready() {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab":
		if r.focus == focusSubject {
			r.setFocus(focusBody)
		} else {
			r.setFocus(focusSubject)
		}
		return m, nil
	}

	var cmd tea.Cmd
	if r.focus == focusSubject {
		r.subject, cmd = r.subject.Update(msg)
		r.page.SetSubject(r.subject.Value())
	} else {
		r.body, cmd = r.body.Update(msg)
		r.page.SetBody(r.body.Value())
	}
	return m, cmd
}

func (m Model) handleEmailLoaded(msg emailLoadedMsg) (tea.Model, tea.Cmd) {
	r := m.reply
	if msg.err != nil {
		m.logger.Error("error loading email", zap.String("id", string(r.page.ID())), zap.Error(msg.err))
		_ = r.page.Fail(msg.err)
		return m, nil
	}
	cmd := m.generateFor(msg.email)
	return m, cmd
}

// generateFor records email on the loading page and requests its suggestion.
func (m *Model) generateFor(email backend.Email) tea.Cmd {
	r := m.reply
	if err := r.page.EmailLoaded(email); err != nil {
		return nil
	}
	m.layoutReply()
	req, ok := r.page.ReplyRequest()
	if !ok {
		return nil
	}
	return generateReplyCmd(m.ctx, m.api, m.mount, req)
}

// layoutReply sizes the editors to the space left under the original email.
func (m *Model) layoutReply() {
	r := m.reply
	inner := max(m.width-ContentBoxStyle.GetHorizontalFrameSize(), 10)
	r.subject.Width = inner - 9
	r.body.SetWidth(inner)
	r.body.SetHeight(max(m.contentHeight()-lipgloss.Height(r.preamble(inner))-6, 3))
}

func (m Model) handleReplyGenerated(msg replyGeneratedMsg) (tea.Model, tea.Cmd) {
	r := m.reply
	if msg.err != nil {
		m.logger.Error("error generating reply", zap.Error(msg.err))
		_ = r.page.Fail(msg.err)
		return m, nil
	}
	if err := r.page.Ready(msg.reply); err != nil {
		return m, nil
	}
	r.populate()
	m.layoutReply()
	return m, textarea.Blink
}

func (m Model) handleEmailSent(msg emailSentMsg) (tea.Model, tea.Cmd) {
	m.reply.page.SendDone()
	if msg.err != nil {
		m.logger.Error("error sending email", zap.Error(msg.err))
		m.alert = fmt.Sprintf("Failed to send email: %v", msg.err)
		return m, nil
	}
	m.alert = "Email sent successfully!"
	return m, nil
}

func (m Model) handleCopied(msg copiedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("error copying reply", zap.Error(msg.err))
		m.alert = fmt.Sprintf("Failed to copy reply: %v", msg.err)
		return m, nil
	}
	m.alert = "Reply copied to clipboard!"
	return m, nil
}

// preamble is everything rendered above the editors.
func (r *replyView) preamble(inner int) string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Reply Recommendation"))
	b.WriteString("\n\n")

	if email := r.page.Email(); email != nil {
		b.WriteString(HeaderKeyStyle.Render("To: ") + HeaderValStyle.Render(truncate(email.Sender, inner-4)) + "\n")
		b.WriteString(HeaderKeyStyle.Render("Subject: ") + HeaderValStyle.Render(truncate(singleLine(email.Subject), inner-9)) + "\n")
		b.WriteString(HeaderKeyStyle.Render("Date: ") + HeaderValStyle.Render(triage.FormatDate(email.Date)) + "\n")
		original := wrapLines(email.Body, inner, 6)
		b.WriteString(BodyStyle.Render(NormalSecondaryTextStyle.Render(strings.Join(original, "\n"))))
		b.WriteString("\n\n")
	}

	b.WriteString(HeaderKeyStyle.Render("Recommended Reply:"))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderReply(width, height int) string {
	r := m.reply
	inner := max(width-ContentBoxStyle.GetHorizontalFrameSize(), 10)

	var b strings.Builder
	b.WriteString(r.preamble(inner))

	switch r.page.Phase() {
	case triage.PhaseIdle, triage.PhaseLoading:
		b.WriteString(r.spinner.View() + " Generating reply...")
	case triage.PhaseError:
		b.WriteString(ErrorTextStyle.Render(r.page.ErrorText()))
	case triage.PhaseReady:
		b.WriteString(HeaderKeyStyle.Render("Subject: ") + r.subject.View() + "\n")
		b.WriteString(r.body.View())
	}
	b.WriteString("\n\n")
	b.WriteString(renderAction("Copy [ctrl+y]", r.page.CanCopy()))
	b.WriteString(" ")
	sendLabel := "Send [ctrl+s]"
	if r.page.Sending() {
		sendLabel = "Sending..."
	}
	b.WriteString(renderAction(sendLabel, r.page.CanSend() && !r.page.Sending()))

	return ContentBoxStyle.Width(width - 2).Height(max(height-2, 0)).MaxHeight(height).Render(b.String())
}

func renderAction(label string, enabled bool) string {
	if enabled {
		return ActionStyle.Render(label)
	}
	return DisabledStyle.Render(label)
}
