// Package classic is the tview rendition of the triage client.
package classic

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/clipboard"
)

const (
	PageList  = "list"
	PageReply = "reply"
	PageAlert = "alert"
)

// Options configures the tview frontend.
type Options struct {
	API       backend.API
	Clipboard clipboard.Clipboard
	Logger    *zap.Logger
}

type App struct {
	*tview.Application
	rootPages *tview.Pages
	header    *tview.TextView
	statusBar *tview.TextView
	alert     *tview.Modal

	list  *listPage
	reply *replyPage

	api    backend.API
	clip   clipboard.Clipboard
	logger *zap.Logger

	// queue runs f on the event loop; run starts a request off it.
	queue func(f func())
	run   func(f func())

	mount     int
	ctx       context.Context
	cancel    context.CancelFunc
	alertOpen bool
	stopped   chan struct{}

	// statusPinned keeps an error in the status bar until the next mount.
	statusPinned bool
}

func NewApp(opts Options) *App {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.NewSystem()
	}
	a := &App{
		Application: tview.NewApplication(),
		api:         opts.API,
		clip:        clip,
		logger:      logger,
		stopped:     make(chan struct{}),
	}
	a.queue = func(f func()) { a.QueueUpdateDraw(f) }
	a.run = func(f func()) { go f() }

	a.header = tview.NewTextView().SetDynamicColors(true)
	a.header.SetBackgroundColor(tcell.ColorSlateBlue)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	a.statusBar.SetBackgroundColor(tcell.ColorDefault)

	a.alert = tview.NewModal().
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) { a.closeAlert() })

	a.list = newListPage(a)
	a.reply = newReplyPage(a)

	a.rootPages = tview.NewPages().
		AddPage(PageList, a.list.root, true, true).
		AddPage(PageReply, a.reply.root, true, false).
		AddPage(PageAlert, a.alert, false, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 0, false).
		AddItem(a.rootPages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	layout.SetBackgroundColor(tcell.ColorDefault)

	a.Application.SetRoot(layout, true)
	a.Application.SetInputCapture(a.captureInput)
	return a
}

// Run mounts the list view and blocks until the application stops.
func (a *App) Run() error {
	a.showList()
	go a.updateStatusTimer()
	defer close(a.stopped)
	return a.Application.Run()
}

// Quit cancels outstanding requests and stops the event loop.
func (a *App) Quit() {
	if a.cancel != nil {
		a.cancel()
	}
	a.Stop()
}

func (a *App) captureInput(event *tcell.EventKey) *tcell.EventKey {
	if event.Key() == tcell.KeyCtrlC {
		a.Quit()
		return nil
	}
	if a.alertOpen {
		switch event.Key() {
		case tcell.KeyEnter, tcell.KeyEscape:
			a.closeAlert()
		}
		return nil
	}
	page, _ := a.rootPages.GetFrontPage()
	if page == PageList {
		return a.list.handleKey(event)
	}
	return a.reply.handleKey(event)
}

// remount cancels the current view's requests and returns the new mount.
func (a *App) remount() int {
	if a.cancel != nil {
		a.cancel()
	}
	a.mount++
	a.statusPinned = false
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a.mount
}

func (a *App) showList() {
	a.remount()
	a.rootPages.SwitchToPage(PageList)
	a.setHeader(PageList)
	a.list.mount()
	a.SetFocus(a.list.List)
	a.setStandardStatusMessage()
}

// showReply opens the reply view for id. A nil email is looked up first.
func (a *App) showReply(id backend.ID, email *backend.Email) {
	a.remount()
	a.rootPages.SwitchToPage(PageReply)
	a.setHeader(PageReply + "/" + string(id))
	a.reply.mount(id, email)
	a.setStandardStatusMessage()
}

// request runs call off the event loop and delivers done on it, unless the
// view it was issued from has been left.
func (a *App) request(call func(ctx context.Context) func()) {
	mount, ctx := a.mount, a.ctx
	a.run(func() {
		done := call(ctx)
		a.queue(func() {
			if mount != a.mount {
				return
			}
			done()
		})
	})
}

func (a *App) showAlert(text string) {
	a.alertOpen = true
	a.alert.SetText(text)
	a.rootPages.ShowPage(PageAlert)
	a.SetFocus(a.alert)
}

func (a *App) closeAlert() {
	a.alertOpen = false
	a.rootPages.HidePage(PageAlert)
	page, _ := a.rootPages.GetFrontPage()
	if page == PageList {
		a.SetFocus(a.list.List)
	} else {
		a.reply.focusCurrent()
	}
}

func (a *App) setHeader(route string) {
	a.header.SetText(fmt.Sprintf(" [white::b]Email Manager[-::-]  [::d]%s", route))
}

func (a *App) updateStatusTimer() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopped:
			return
		case <-ticker.C:
			a.QueueUpdateDraw(func() {
				if !a.statusPinned {
					a.setStandardStatusMessage()
				}
			})
		}
	}
}

func (a *App) setStandardStatusMessage() {
	now := time.Now().Format("15:04:05")
	page, _ := a.rootPages.GetFrontPage()
	if page == PageReply {
		a.statusBar.SetText(fmt.Sprintf(" [::d]%s | [::b]Tab[::-]:Field [::b]Ctrl+Y[::-]:Copy [::b]Ctrl+S[::-]:Send [::b]Esc[::-]:Back [::b]Ctrl+C[::-]:Quit", now))
		return
	}
	a.statusBar.SetText(fmt.Sprintf(" [::d]%s | %d emails | [::b]Space[::-]:Select [::b]Ent[::-]:Reply [::b]D[::-]:Delete [::b]R[::-]:Refresh [::b]Q[::-]:Quit",
		now, len(a.list.page.Emails())))
}

func (a *App) setStatusError(text string) {
	a.statusPinned = true
	a.statusBar.SetText(" [red]" + tview.Escape(text))
}
