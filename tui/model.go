package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/clipboard"
)

type route int

const (
	routeList route = iota
	routeReply
)

const statusBarHeight = 1

// Options configures the bubbletea frontend.
type Options struct {
	API        backend.API
	Clipboard  clipboard.Clipboard
	Logger     *zap.Logger
	BackendURL string
}

// Model is the application shell: header, one routed view, status bar and a
// blocking alert overlay.
type Model struct {
	api        backend.API
	clip       clipboard.Clipboard
	logger     *zap.Logger
	backendURL string

	route route
	// mount increments on every view mount. Results tagged with an older
	// mount belong to a view that is gone.
	mount  int
	ctx    context.Context
	cancel context.CancelFunc

	list  *listView
	reply *replyView

	alert string

	width, height int
	now           time.Time
	statusBarText string
	statusIsError bool
	statusIsTemp  bool
	statusSeq     int
}

func NewModel(opts Options) Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.NewSystem()
	}
	m := Model{
		api:           opts.API,
		clip:          clip,
		logger:        logger,
		backendURL:    opts.BackendURL,
		now:           time.Now(),
		statusBarText: "Loading emails...",
	}
	m.mountList()
	return m
}

func (m Model) Init() tea.Cmd {
	m.logger.Info("tui started", zap.String("backend", m.backendURL))
	return tea.Batch(
		fetchEmailsCmd(m.ctx, m.api, m.mount),
		statusTickCmd(1*time.Second),
	)
}

// unmount cancels every request of the current view.
func (m *Model) unmount() {
	if m.cancel != nil {
		m.cancel()
	}
	m.mount++
	m.ctx, m.cancel = context.WithCancel(context.Background())
}

// mountList shows a fresh list view. The caller runs the returned fetch.
func (m *Model) mountList() tea.Cmd {
	m.unmount()
	m.route = routeList
	m.reply = nil
	m.list = newListView()
	m.list.page.BeginFetch()
	m.setStandardStatus()
	return fetchEmailsCmd(m.ctx, m.api, m.mount)
}

// stop cancels the current view's requests without mounting another.
func (m *Model) stop() {
	if m.cancel != nil {
		m.cancel()
	}
}

// mountReply shows the reply view for email and starts generation. A nil
// email is looked up by id first.
func (m *Model) mountReply(id backend.ID, email *backend.Email) tea.Cmd {
	m.unmount()
	m.route = routeReply
	m.list = nil
	m.reply = newReplyView(id)
	m.reply.page.Start()
	m.setStandardStatus()
	m.layoutReply()
	if email == nil {
		return tea.Batch(m.reply.spinner.Tick, loadEmailCmd(m.ctx, m.api, m.mount, id))
	}
	cmd := m.generateFor(*email)
	return tea.Batch(m.reply.spinner.Tick, cmd)
}

func (m Model) contentHeight() int {
	return max(m.height-statusBarHeight-lipgloss.Height(m.renderHeader()), 0)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.list != nil {
			m.list.ensureCursorVisible(m.listItemsThatFit())
		}
		if m.reply != nil {
			m.layoutReply()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.stop()
			return m, tea.Quit
		}
		if m.alert != "" {
			switch msg.String() {
			case "enter", "esc":
				m.alert = ""
			}
			return m, nil
		}
		if m.route == routeReply {
			return m.updateReply(msg)
		}
		return m.updateList(msg)

	case emailsFetchedMsg:
		if msg.mount != m.mount || m.list == nil {
			return m, nil
		}
		return m.handleEmailsFetched(msg)

	case emailsDeletedMsg:
		if msg.mount != m.mount || m.list == nil {
			return m, nil
		}
		return m.handleEmailsDeleted(msg)

	case emailLoadedMsg:
		if msg.mount != m.mount || m.reply == nil {
			return m, nil
		}
		return m.handleEmailLoaded(msg)

	case replyGeneratedMsg:
		if msg.mount != m.mount || m.reply == nil {
			return m, nil
		}
		return m.handleReplyGenerated(msg)

	case emailSentMsg:
		if msg.mount != m.mount || m.reply == nil {
			return m, nil
		}
		return m.handleEmailSent(msg)

	case copiedMsg:
		if msg.mount != m.mount || m.reply == nil {
			return m, nil
		}
		return m.handleCopied(msg)

	case spinner.TickMsg:
		if m.reply == nil || !m.reply.loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.reply.spinner, cmd = m.reply.spinner.Update(msg)
		return m, cmd

	case StatusTickMsg:
		m.now = msg.Time
		if !m.statusIsTemp && !m.statusIsError {
			m.setStandardStatus()
		}
		return m, statusTickCmd(1 * time.Second)

	case clearTempStatusMsg:
		if m.statusIsTemp && msg.seq == m.statusSeq {
			m.statusIsTemp = false
			m.setStandardStatus()
		}
		return m, nil
	}

	// Cursor blink and other widget messages.
	if m.reply != nil && m.reply.ready() {
		var cmd tea.Cmd
		if m.reply.focus == focusSubject {
			m.reply.subject, cmd = m.reply.subject.Update(msg)
		} else {
			m.reply.body, cmd = m.reply.body.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) showTemporaryStatus(text string, duration time.Duration) tea.Cmd {
	m.statusSeq++
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = true
	return clearStatusCmd(m.statusSeq, duration)
}

func (m *Model) updateStatusBar(text string) {
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = false
}

func (m *Model) updateStatusError(text string) {
	m.statusBarText = text
	m.statusIsError = true
	m.statusIsTemp = false
}

func (m *Model) setStandardStatus() {
	if m.statusIsTemp {
		return
	}

	var keyHints string
	status := m.now.Format("15:04:05")
	switch m.route {
	case routeList:
		if m.list != nil {
			status += fmt.Sprintf(" | %d emails", m.list.page.Len())
		}
		keyHints = "[↑↓/jk]:Nav | [Space]:Select | [Enter]:Reply | [D]:Delete | [R]:Refresh | [Q]:Quit"
	case routeReply:
		keyHints = "[Tab]:Field | [Ctrl+Y]:Copy | [Ctrl+S]:Send | [Esc]:Back | [Ctrl+C]:Quit"
	}
	m.updateStatusBar(fmt.Sprintf(" %s | %s", status, keyHints))
}

func (m Model) routeName() string {
	if m.route == routeReply && m.reply != nil {
		return "reply/" + string(m.reply.page.ID())
	}
	return "list"
}

func (m Model) renderHeader() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		HeaderStyle.Render("Email Manager"),
		RouteStyle.Render(m.routeName()),
	)
}

func (m Model) renderStatusBar() string {
	style := StatusBarNormalStyle
	if m.statusIsError {
		style = StatusBarErrorStyle
	} else if m.statusIsTemp {
		style = StatusBarSuccessStyle
	}
	return style.Width(m.width).MaxHeight(statusBarHeight).Render(truncate(m.statusBarText, max(m.width-2, 0)))
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing terminal size..."
	}

	header := lipgloss.NewStyle().Width(m.width).Background(HeaderStyle.GetBackground()).Render(m.renderHeader())
	contentHeight := m.contentHeight()

	var body string
	switch m.route {
	case routeReply:
		body = m.renderReply(m.width, contentHeight)
	default:
		body = m.renderList(m.width, contentHeight)
	}
	if m.alert != "" {
		box := AlertStyle.Render(m.alert + "\n\n" + NormalSecondaryTextStyle.Render("[Enter] OK"))
		body = lipgloss.Place(m.width, contentHeight, lipgloss.Center, lipgloss.Center, box)
	}

	return AppStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, body, m.renderStatusBar()))
}
