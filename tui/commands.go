package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/clipboard"
)

func fetchEmailsCmd(ctx context.Context, api backend.API, mount int) tea.Cmd {
	return func() tea.Msg {
		emails, err := api.ListEmails(ctx)
		return emailsFetchedMsg{mount: mount, emails: emails, err: err}
	}
}

func deleteEmailsCmd(ctx context.Context, api backend.API, mount int, ids []backend.ID) tea.Cmd {
	return func() tea.Msg {
		return emailsDeletedMsg{mount: mount, err: api.DeleteEmails(ctx, ids)}
	}
}

func loadEmailCmd(ctx context.Context, api backend.API, mount int, id backend.ID) tea.Cmd {
	return func() tea.Msg {
		email, err := api.GetEmail(ctx, id)
		return emailLoadedMsg{mount: mount, email: email, err: err}
	}
}

func generateReplyCmd(ctx context.Context, api backend.API, mount int, req backend.ReplyRequest) tea.Cmd {
	return func() tea.Msg {
		reply, err := api.GenerateReply(ctx, req)
		return replyGeneratedMsg{mount: mount, reply: reply, err: err}
	}
}

func sendEmailCmd(ctx context.Context, api backend.API, mount int, req backend.SendRequest) tea.Cmd {
	return func() tea.Msg {
		resp, err := api.SendEmail(ctx, req)
		return emailSentMsg{mount: mount, resp: resp, err: err}
	}
}

func copyCmd(clip clipboard.Clipboard, mount int, text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{mount: mount, err: clip.Copy(text)}
	}
}

// statusTickCmd creates a ticker for updating the status bar clock.
func statusTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return StatusTickMsg{Time: t}
	})
}

func clearStatusCmd(seq int, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return clearTempStatusMsg{seq: seq}
	})
}
