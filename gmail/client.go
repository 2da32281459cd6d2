package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/config"
	"github.com/bassamadnan/triage/mailer"
)

const (
	user = "me"

	// DefaultQuery fetches from every inbox category but skips drafts.
	DefaultQuery = "in:inbox -in:draft"
)

// Options tunes a Client.
type Options struct {
	Query   string
	Workers int
	Filters *config.FilterManager
	Logger  *zap.Logger
}

// Client reads, trashes and sends mail for the authorised account.
type Client struct {
	srv     *gmail.Service
	query   string
	workers int
	filters *config.FilterManager
	logger  *zap.Logger
}

// NewClient authorises against Gmail and builds a client.
func NewClient(ctx context.Context, auth Auth, opts Options) (*Client, error) {
	httpClient, err := auth.httpClient(ctx)
	if err != nil {
		return nil, err
	}
	return newClient(ctx, opts, option.WithHTTPClient(httpClient))
}

func newClient(ctx context.Context, opts Options, svcOpts ...option.ClientOption) (*Client, error) {
	srv, err := gmail.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail service: %w", err)
	}
	if opts.Query == "" {
		opts.Query = DefaultQuery
	}
	if opts.Workers <= 0 {
		opts.Workers = 5
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Client{
		srv:     srv,
		query:   opts.Query,
		workers: opts.Workers,
		filters: opts.Filters,
		logger:  opts.Logger.Named("gmail"),
	}, nil
}

// Name identifies the source in logs.
func (c *Client) Name() string { return "gmail" }

// Fetch returns up to limit messages matching the query, newest first, with
// ignore rules applied.
func (c *Client) Fetch(ctx context.Context, limit int) ([]backend.Email, error) {
	list, err := c.srv.Users.Messages.List(user).
		MaxResults(int64(limit)).
		Q(c.query).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	fetched := make([]*ProcessedEmail, len(list.Messages))
	var mu sync.Mutex
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, m := range list.Messages {
		g.Go(func() error {
			full, err := c.srv.Users.Messages.Get(user, m.Id).Format("full").Context(gctx).Do()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.logger.Warn("unable to retrieve message", zap.String("id", m.Id), zap.Error(err))
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			p := parseMessage(full)
			fetched[i] = &p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if failed > 0 && failed == len(list.Messages) {
		return nil, fmt.Errorf("unable to retrieve any of %d messages", failed)
	}

	out := make([]backend.Email, 0, len(fetched))
	for _, p := range fetched {
		if p == nil {
			continue
		}
		if c.filters != nil {
			if rule := c.filters.Match(p.From, p.Subject, p.Body); rule != "" {
				c.logger.Debug("filtered message", zap.String("id", p.ID), zap.String("rule", rule))
				continue
			}
		}
		out = append(out, p.Email())
	}
	c.logger.Info("fetched messages", zap.Int("listed", len(list.Messages)), zap.Int("kept", len(out)))
	return out, nil
}

// Trash moves messages to the Gmail trash.
func (c *Client) Trash(ctx context.Context, ids []backend.ID) error {
	for _, id := range ids {
		if _, err := c.srv.Users.Messages.Trash(user, string(id)).Context(ctx).Do(); err != nil {
			return fmt.Errorf("trash %s: %w", id, err)
		}
	}
	return nil
}

// Send delivers a reply from the authorised account.
func (c *Client) Send(ctx context.Context, req backend.SendRequest) error {
	e, err := mailer.Compose("", req)
	if err != nil {
		return err
	}
	raw, err := e.Bytes()
	if err != nil {
		return fmt.Errorf("compose message: %w", err)
	}
	msg := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}
	if _, err := c.srv.Users.Messages.Send(user, msg).Context(ctx).Do(); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}
