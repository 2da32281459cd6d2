package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/triage"
)

// listView is the email list route: triage state plus cursor and scroll.
type listView struct {
	page *triage.ListPage
	// refetch is set when a delete succeeded while a fetch was still out.
	refetch bool

	cursor          int
	viewportTopLine int
}

func newListView() *listView {
	return &listView{page: triage.NewListPage()}
}

func (l *listView) clampCursor() {
	if l.cursor >= l.page.Len() {
		l.cursor = l.page.Len() - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

func (l *listView) ensureCursorVisible(itemsThatFit int) {
	if l.page.Len() == 0 {
		l.viewportTopLine = 0
		return
	}
	if itemsThatFit <= 0 {
		l.viewportTopLine = l.cursor
		return
	}
	if l.cursor < l.viewportTopLine {
		l.viewportTopLine = l.cursor
	} else if l.cursor >= l.viewportTopLine+itemsThatFit {
		l.viewportTopLine = l.cursor - itemsThatFit + 1
	}
	maxTop := max(l.page.Len()-itemsThatFit, 0)
	l.viewportTopLine = min(max(l.viewportTopLine, 0), maxTop)
}

func (m Model) listItemsThatFit() int {
	h := m.contentHeight() - lipgloss.Height(EmailListTitleStyle.Render(" "))
	return max(h/cardHeight, 0)
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.list
	switch msg.String() {
	case "q":
		m.stop()
		return m, tea.Quit
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < l.page.Len()-1 {
			l.cursor++
		}
	case " ", "x":
		if email, ok := l.page.Email(l.cursor); ok {
			l.page.Toggle(email.ID)
		}
	case "enter":
		if email, ok := l.page.Email(l.cursor); ok {
			cmd := m.mountReply(email.ID, &email)
			return m, cmd
		}
	case "d", "delete":
		ids, ok := l.page.BeginDelete()
		if !ok {
			if !l.page.CanDelete() {
				cmd := m.showTemporaryStatus("Select emails with space before deleting", 3*time.Second)
				return m, cmd
			}
			return m, nil
		}
		m.logger.Info("deleting emails", zap.Int("count", len(ids)))
		return m, deleteEmailsCmd(m.ctx, m.api, m.mount, ids)
	case "r":
		if l.page.BeginFetch() {
			return m, fetchEmailsCmd(m.ctx, m.api, m.mount)
		}
	}
	l.ensureCursorVisible(m.listItemsThatFit())
	return m, nil
}

func (m Model) handleEmailsFetched(msg emailsFetchedMsg) (tea.Model, tea.Cmd) {
	l := m.list
	l.page.FetchDone(msg.emails, msg.err)
	l.clampCursor()
	l.ensureCursorVisible(m.listItemsThatFit())

	var cmds []tea.Cmd
	if msg.err != nil {
		m.logger.Error("error fetching emails", zap.Error(msg.err))
		m.updateStatusError(fmt.Sprintf("Error fetching emails: %v", msg.err))
	} else {
		m.logger.Info("fetched emails", zap.Int("count", l.page.Len()))
		m.setStandardStatus()
	}
	if l.refetch && l.page.BeginFetch() {
		l.refetch = false
		cmds = append(cmds, fetchEmailsCmd(m.ctx, m.api, m.mount))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleEmailsDeleted(msg emailsDeletedMsg) (tea.Model, tea.Cmd) {
	l := m.list
	count := l.page.Selection().Len()
	if !l.page.DeleteDone(msg.err) {
		m.logger.Error("error deleting emails", zap.Error(msg.err))
		m.alert = fmt.Sprintf("Failed to delete emails: %v", msg.err)
		return m, nil
	}
	cmd := m.showTemporaryStatus(fmt.Sprintf("Deleted %d emails", count), 3*time.Second)
	if l.page.BeginFetch() {
		return m, tea.Batch(cmd, fetchEmailsCmd(m.ctx, m.api, m.mount))
	}
	l.refetch = true
	return m, cmd
}

func (m Model) renderList(width, height int) string {
	l := m.list
	title := fmt.Sprintf("Email List (%d)", l.page.Len())
	if n := l.page.Selection().Len(); n > 0 {
		title += fmt.Sprintf(", %d selected", n)
	}
	if l.page.Deleting() {
		title += ", deleting..."
	}
	header := EmailListTitleStyle.Render(title)

	var body string
	switch {
	case !l.page.Loaded():
		body = EmptyStyle.Render("Loading emails...")
	case l.page.Len() == 0:
		body = EmptyStyle.Render("No emails available.")
	default:
		fit := max(m.listItemsThatFit(), 1)
		start := min(l.viewportTopLine, l.page.Len())
		end := min(start+fit, l.page.Len())
		cards := l.page.Cards()[start:end]
		rendered := make([]string, 0, len(cards))
		for i, c := range cards {
			rendered = append(rendered, renderCard(c, start+i == l.cursor, width-4, m.now))
		}
		body = strings.Join(rendered, "\n")
	}

	return lipgloss.NewStyle().Width(width).Height(height).MaxHeight(height).
		Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}
