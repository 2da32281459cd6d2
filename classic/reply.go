package classic

import (
	"context"
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/triage"
)

type replyPage struct {
	root     *tview.Flex
	original *tview.TextView
	status   *tview.TextView
	subject  *tview.InputField
	body     *tview.TextArea
	actions  *tview.TextView

	app  *App
	page *triage.ReplyPage
	// populating suppresses change callbacks while the widgets are seeded.
	populating bool
}

func newReplyPage(app *App) *replyPage {
	rp := &replyPage{app: app, page: triage.NewReplyPage("")}

	rp.original = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	rp.original.SetBorder(true).SetTitle("Reply Recommendation")
	rp.original.SetBackgroundColor(tcell.ColorDefault)

	rp.status = tview.NewTextView().SetDynamicColors(true)
	rp.status.SetBackgroundColor(tcell.ColorDefault)

	rp.subject = tview.NewInputField().SetLabel("Subject: ")
	rp.subject.SetChangedFunc(rp.subjectChanged)

	rp.body = tview.NewTextArea().SetPlaceholder("Reply")
	rp.body.SetBorder(true).SetTitle("Recommended Reply")
	rp.body.SetChangedFunc(rp.bodyChanged)

	rp.actions = tview.NewTextView().SetDynamicColors(true)
	rp.actions.SetBackgroundColor(tcell.ColorDefault)

	rp.root = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(rp.original, 0, 1, false).
		AddItem(rp.status, 1, 0, false).
		AddItem(rp.subject, 1, 0, false).
		AddItem(rp.body, 0, 1, false).
		AddItem(rp.actions, 1, 0, false)
	rp.root.SetBackgroundColor(tcell.ColorDefault)
	return rp
}

// mount starts a reply generation for email. Without one it looks id up
// first.
func (rp *replyPage) mount(id backend.ID, email *backend.Email) {
	rp.page = triage.NewReplyPage(id)
	rp.page.Start()
	rp.seed("", "")
	rp.original.SetText("[::d]Loading email...")
	rp.render()
	rp.app.SetFocus(rp.original)

	if email != nil {
		rp.emailLoaded(*email, nil)
		return
	}
	rp.app.request(func(ctx context.Context) func() {
		email, err := rp.app.api.GetEmail(ctx, id)
		return func() { rp.emailLoaded(email, err) }
	})
}

func (rp *replyPage) emailLoaded(email backend.Email, err error) {
	if err != nil {
		rp.app.logger.Error("error loading email", zap.String("id", string(rp.page.ID())), zap.Error(err))
		_ = rp.page.Fail(err)
		rp.render()
		return
	}
	if err := rp.page.EmailLoaded(email); err != nil {
		return
	}
	rp.showOriginal(email)
	req, ok := rp.page.ReplyRequest()
	if !ok {
		return
	}
	rp.app.request(func(ctx context.Context) func() {
		reply, err := rp.app.api.GenerateReply(ctx, req)
		return func() { rp.replyGenerated(reply, err) }
	})
}

func (rp *replyPage) replyGenerated(reply backend.ReplySuggestion, err error) {
	if err != nil {
		rp.app.logger.Error("error generating reply", zap.Error(err))
		_ = rp.page.Fail(err)
		rp.render()
		return
	}
	if err := rp.page.Ready(reply); err != nil {
		return
	}
	d := rp.page.Draft()
	rp.seed(d.Subject, d.Body)
	rp.render()
	rp.app.SetFocus(rp.body)
}

func (rp *replyPage) subjectChanged(text string) {
	if !rp.populating {
		rp.page.SetSubject(text)
		rp.renderActions()
	}
}

func (rp *replyPage) bodyChanged() {
	if !rp.populating {
		rp.page.SetBody(rp.body.GetText())
		rp.renderActions()
	}
}

func (rp *replyPage) seed(subject, body string) {
	rp.populating = true
	defer func() { rp.populating = false }()
	rp.subject.SetText(subject)
	rp.body.SetText(body, true)
}

func (rp *replyPage) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		rp.app.showList()
		return nil
	case tcell.KeyCtrlY:
		rp.copyReply()
		return nil
	case tcell.KeyCtrlS:
		rp.sendReply()
		return nil
	case tcell.KeyTab, tcell.KeyBacktab:
		if rp.page.Phase() == triage.PhaseReady {
			if rp.app.GetFocus() == rp.subject {
				rp.app.SetFocus(rp.body)
			} else {
				rp.app.SetFocus(rp.subject)
			}
		}
		return nil
	}
	return event
}

func (rp *replyPage) focusCurrent() {
	if rp.page.Phase() == triage.PhaseReady {
		rp.app.SetFocus(rp.body)
		return
	}
	rp.app.SetFocus(rp.original)
}

func (rp *replyPage) copyReply() {
	if !rp.page.CanCopy() {
		return
	}
	text := rp.page.Draft().Body
	rp.app.request(func(context.Context) func() {
		err := rp.app.clip.Copy(text)
		return func() {
			if err != nil {
				rp.app.logger.Error("error copying reply", zap.Error(err))
				rp.app.showAlert(fmt.Sprintf("Failed to copy reply: %v", err))
				return
			}
			rp.app.showAlert("Reply copied to clipboard!")
		}
	})
}

func (rp *replyPage) sendReply() {
	req, ok := rp.page.BeginSend()
	if !ok {
		return
	}
	rp.app.logger.Info("sending reply", zap.String("id", string(rp.page.ID())))
	rp.renderActions()
	rp.app.request(func(ctx context.Context) func() {
		_, err := rp.app.api.SendEmail(ctx, req)
		return func() {
			rp.page.SendDone()
			rp.renderActions()
			if err != nil {
				rp.app.logger.Error("error sending email", zap.Error(err))
				rp.app.showAlert(fmt.Sprintf("Failed to send email: %v", err))
				return
			}
			rp.app.showAlert("Email sent successfully!")
		}
	})
}

func (rp *replyPage) showOriginal(email backend.Email) {
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]To:[::-] %s\n", tview.Escape(email.Sender))
	fmt.Fprintf(&b, "[::b]Subject:[::-] %s\n", tview.Escape(email.Subject))
	fmt.Fprintf(&b, "[::b]Date:[::-] %s\n\n", triage.FormatDate(email.Date))
	b.WriteString(tview.Escape(strings.ReplaceAll(email.Body, "\r\n", "\n")))
	rp.original.SetText(b.String()).ScrollToBeginning()
}

func (rp *replyPage) render() {
	switch rp.page.Phase() {
	case triage.PhaseIdle, triage.PhaseLoading:
		rp.status.SetText("[yellow]Generating reply...")
	case triage.PhaseError:
		rp.status.SetText("[red]" + rp.page.ErrorText())
		if rp.page.Email() == nil {
			rp.original.SetText("[::d]Email unavailable.")
		}
	case triage.PhaseReady:
		rp.status.SetText("")
	}
	editable := rp.page.Phase() == triage.PhaseReady
	rp.subject.SetDisabled(!editable)
	rp.body.SetDisabled(!editable)
	rp.renderActions()
}

func (rp *replyPage) renderActions() {
	copyLabel := action("Copy [Ctrl+Y]", rp.page.CanCopy())
	sendLabel := "Send [Ctrl+S]"
	if rp.page.Sending() {
		sendLabel = "Sending..."
	}
	rp.actions.SetText(copyLabel + "  " + action(sendLabel, rp.page.CanSend() && !rp.page.Sending()))
}

func action(label string, enabled bool) string {
	if enabled {
		return "[white:slateblue:b] " + tview.Escape(label) + " [-:-:-]"
	}
	return "[gray::d] " + tview.Escape(label) + " [-:-:-]"
}
