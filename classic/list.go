package classic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/triage"
)

type listPage struct {
	*tview.List
	root    *tview.Flex
	preview *tview.TextView

	app  *App
	page *triage.ListPage
	// refetch is set when a delete succeeded while a fetch was still out.
	refetch bool
}

func newListPage(app *App) *listPage {
	list := tview.NewList().
		ShowSecondaryText(true).
		SetSecondaryTextColor(tcell.ColorDimGray)
	list.SetBackgroundColor(tcell.ColorDefault)
	list.SetSelectedStyle(tcell.StyleDefault.
		Foreground(tcell.ColorWhite).
		Background(tcell.ColorSteelBlue).
		Attributes(tcell.AttrBold))
	list.SetBorder(true).SetTitle("Emails")

	lp := &listPage{
		List: list,
		app:  app,
		page: triage.NewListPage(),
	}
	lp.preview = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	lp.preview.SetBackgroundColor(tcell.ColorDefault)
	lp.preview.SetBorder(true).SetTitle("Preview")

	lp.root = tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(lp.preview, 0, 2, false)
	lp.root.SetBackgroundColor(tcell.ColorDefault)

	list.SetChangedFunc(func(index int, _ string, _ string, _ rune) {
		lp.showPreview(index)
	})

	list.SetSelectedFunc(func(index int, _ string, _ string, _ rune) {
		if email, ok := lp.page.Email(index); ok {
			lp.app.showReply(email.ID, &email)
		}
	})
	return lp
}

// mount resets the page and starts the initial fetch.
func (lp *listPage) mount() {
	lp.page = triage.NewListPage()
	lp.refetch = false
	lp.render()
	lp.fetch()
}

func (lp *listPage) handleKey(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyDelete {
		lp.deleteSelected()
		return nil
	}
	if event.Key() != tcell.KeyRune {
		return event
	}
	switch event.Rune() {
	case 'q', 'Q':
		lp.app.Quit()
	case ' ', 'x':
		lp.toggleCurrent()
	case 'd', 'D':
		lp.deleteSelected()
	case 'r', 'R':
		lp.fetch()
	case 'j':
		return tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone)
	case 'k':
		return tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone)
	default:
		return event
	}
	return nil
}

func (lp *listPage) fetch() {
	if !lp.page.BeginFetch() {
		return
	}
	lp.SetTitle("Emails (loading...)")
	lp.app.request(func(ctx context.Context) func() {
		emails, err := lp.app.api.ListEmails(ctx)
		return func() { lp.fetchDone(emails, err) }
	})
}

func (lp *listPage) fetchDone(emails []backend.Email, err error) {
	lp.page.FetchDone(emails, err)
	lp.render()
	if err != nil {
		lp.app.logger.Error("error fetching emails", zap.Error(err))
		lp.app.setStatusError(fmt.Sprintf("Error fetching emails: %v", err))
	} else {
		lp.app.logger.Info("fetched emails", zap.Int("count", lp.page.Len()))
		lp.app.setStandardStatusMessage()
	}
	if lp.refetch {
		lp.refetch = false
		lp.fetch()
	}
}

func (lp *listPage) toggleCurrent() {
	if email, ok := lp.page.Email(lp.GetCurrentItem()); ok {
		lp.page.Toggle(email.ID)
		lp.render()
	}
}

func (lp *listPage) deleteSelected() {
	ids, ok := lp.page.BeginDelete()
	if !ok {
		return
	}
	lp.app.logger.Info("deleting emails", zap.Int("count", len(ids)))
	lp.render()
	lp.app.request(func(ctx context.Context) func() {
		err := lp.app.api.DeleteEmails(ctx, ids)
		return func() { lp.deleteDone(err) }
	})
}

func (lp *listPage) deleteDone(err error) {
	if !lp.page.DeleteDone(err) {
		lp.app.logger.Error("error deleting emails", zap.Error(err))
		lp.render()
		lp.app.showAlert(fmt.Sprintf("Failed to delete emails: %v", err))
		return
	}
	lp.render()
	if lp.page.Fetching() {
		lp.refetch = true
		return
	}
	lp.fetch()
}

func (lp *listPage) render() {
	current := lp.GetCurrentItem()
	lp.Clear()
	cards := lp.page.Cards()
	if len(cards) == 0 && lp.page.Loaded() {
		lp.AddItem("[::d]No emails available.", "", 0, nil)
	}
	now := time.Now()
	for _, c := range cards {
		check := "[ ]"
		if c.Selected {
			check = "[x]"
		}
		subject := c.Subject
		if subject == "" {
			subject = "(No Subject)"
		}
		main := fmt.Sprintf("%s [white]%s", tview.Escape(check), tview.Escape(subject))
		secondary := fmt.Sprintf("[::d]    %s · %s", tview.Escape(c.Sender), triage.DateAge(c.Received, now))
		lp.AddItem(main, secondary, 0, nil)
	}
	if lp.GetItemCount() > 0 {
		lp.SetCurrentItem(min(max(current, 0), lp.GetItemCount()-1))
	}
	lp.showPreview(lp.GetCurrentItem())

	title := fmt.Sprintf("Emails (%d)", lp.page.Len())
	if n := lp.page.Selection().Len(); n > 0 {
		title += fmt.Sprintf(" %d selected", n)
	}
	if lp.page.Deleting() {
		title += " deleting..."
	}
	lp.SetTitle(title)
}

// showPreview renders the card at index in the side pane.
func (lp *listPage) showPreview(index int) {
	cards := lp.page.Cards()
	if index < 0 || index >= len(cards) {
		lp.preview.SetText("\n[::d]No email selected.\n\nNavigate with ↑ ↓, Space selects, Enter opens the reply view.")
		return
	}
	c := cards[index]
	var b strings.Builder
	fmt.Fprintf(&b, "[::b]From:[::-] %s\n", tview.Escape(c.Sender))
	fmt.Fprintf(&b, "[::b]Date:[::-] %s\n", c.Date)
	fmt.Fprintf(&b, "[::b]Subject:[::-] %s\n\n", tview.Escape(c.Subject))
	b.WriteString(strings.Repeat("─", 60) + "\n\n")
	b.WriteString(tview.Escape(c.Preview))
	b.WriteString("\n\n")
	b.WriteString(c.Sentiment)
	if len(c.Keywords) > 0 {
		b.WriteString("\n\n[::b]Keywords:[::-] ")
		chips := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			chips = append(chips, "[black:gray] "+tview.Escape(k)+" [-:-]")
		}
		b.WriteString(strings.Join(chips, " "))
	}
	lp.preview.SetText(b.String()).ScrollToBeginning()
}
