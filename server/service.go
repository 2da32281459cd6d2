package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bassamadnan/triage/analysis"
	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/mailer"
	"github.com/bassamadnan/triage/store"
)

var (
	// ErrInvalid marks a request the caller must fix.
	ErrInvalid = errors.New("invalid request")
	// ErrUpstream marks a failure of Gmail, the LLM or the mail relay.
	ErrUpstream = errors.New("upstream failure")
)

// Source supplies raw, unanalysed mail.
type Source interface {
	Name() string
	Fetch(ctx context.Context, limit int) ([]backend.Email, error)
}

// Trasher is implemented by sources that can delete mail remotely.
type Trasher interface {
	Trash(ctx context.Context, ids []backend.ID) error
}

// Sender delivers replies.
type Sender interface {
	Name() string
	Send(ctx context.Context, req backend.SendRequest) error
}

// Generator drafts reply suggestions.
type Generator interface {
	DraftReply(ctx context.Context, req backend.ReplyRequest) (backend.ReplySuggestion, error)
}

// Service implements the triage operations on top of the store.
type Service struct {
	store      *store.Store
	source     Source
	generator  Generator
	sender     Sender
	logger     *zap.Logger
	fetchLimit int
	// syncOnList refreshes from the source on every list call; disabled
	// when a background poller keeps the store current.
	syncOnList bool
}

// ServiceConfig wires a Service. Source, Generator and Sender may be nil;
// the matching operations then fail with ErrUpstream.
type ServiceConfig struct {
	Store      *store.Store
	Source     Source
	Generator  Generator
	Sender     Sender
	Logger     *zap.Logger
	FetchLimit int
	SyncOnList bool
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 10
	}
	return &Service{
		store:      cfg.Store,
		source:     cfg.Source,
		generator:  cfg.Generator,
		sender:     cfg.Sender,
		logger:     cfg.Logger,
		fetchLimit: cfg.FetchLimit,
		syncOnList: cfg.SyncOnList,
	}
}

// Sync pulls the latest mail from the source, analyses it and stores it.
func (s *Service) Sync(ctx context.Context) (int, error) {
	if s.source == nil {
		return 0, nil
	}
	emails, err := s.source.Fetch(ctx, s.fetchLimit)
	if err != nil {
		emailsSynced.WithLabelValues(s.source.Name(), "failed").Inc()
		return 0, fmt.Errorf("%w: fetch from %s: %v", ErrUpstream, s.source.Name(), err)
	}
	for i := range emails {
		s.analyze(&emails[i])
	}
	n, err := s.store.Upsert(ctx, emails)
	if err != nil {
		return 0, fmt.Errorf("store emails: %w", err)
	}
	emailsSynced.WithLabelValues(s.source.Name(), "success").Add(float64(n))
	s.logger.Info("synced emails", zap.String("source", s.source.Name()), zap.Int("fetched", len(emails)), zap.Int("stored", n))
	return n, nil
}

// analyze fills sentiment and keywords unless the source already did.
func (s *Service) analyze(e *backend.Email) {
	if e.Sentiment.Pos != nil || len(e.Keywords) > 0 {
		return
	}
	r := analysis.Analyze(e.Body)
	e.Sentiment = r.Sentiment
	e.Keywords = r.Keywords
}

// List returns the stored snapshot, refreshing it first when configured to.
// A failed refresh is logged and the previous snapshot served.
func (s *Service) List(ctx context.Context) ([]backend.Email, error) {
	if s.syncOnList {
		if _, err := s.Sync(ctx); err != nil {
			s.logger.Warn("sync before list failed; serving stored emails", zap.Error(err))
		}
	}
	return s.store.List(ctx, s.fetchLimit)
}

// Get returns one stored email.
func (s *Service) Get(ctx context.Context, id backend.ID) (backend.Email, error) {
	if strings.TrimSpace(string(id)) == "" {
		return backend.Email{}, fmt.Errorf("%w: email id is required", ErrInvalid)
	}
	return s.store.Get(ctx, id)
}

// Delete trashes emails at the source, when supported, then removes them
// locally. Nothing is removed locally if the source refuses.
func (s *Service) Delete(ctx context.Context, ids []backend.ID) (int, error) {
	clean := make([]backend.ID, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(string(id)) != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return 0, fmt.Errorf("%w: email_ids must not be empty", ErrInvalid)
	}
	if t, ok := s.source.(Trasher); ok {
		if err := t.Trash(ctx, clean); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}
	n, err := s.store.Delete(ctx, clean)
	if err != nil {
		return 0, fmt.Errorf("delete emails: %w", err)
	}
	s.logger.Info("deleted emails", zap.Int("requested", len(clean)), zap.Int("removed", n))
	return n, nil
}

// GenerateReply drafts a reply for an email body.
func (s *Service) GenerateReply(ctx context.Context, req backend.ReplyRequest) (backend.ReplySuggestion, error) {
	if strings.TrimSpace(req.Body) == "" {
		return backend.ReplySuggestion{}, fmt.Errorf("%w: body is required", ErrInvalid)
	}
	if s.generator == nil {
		return backend.ReplySuggestion{}, fmt.Errorf("%w: no reply generator configured", ErrUpstream)
	}
	reply, err := s.generator.DraftReply(ctx, req)
	if err != nil {
		repliesGenerated.WithLabelValues("failed").Inc()
		return backend.ReplySuggestion{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	repliesGenerated.WithLabelValues("success").Inc()
	return reply, nil
}

// Send delivers a reply.
func (s *Service) Send(ctx context.Context, req backend.SendRequest) error {
	if err := mailer.Validate(req); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if s.sender == nil {
		return fmt.Errorf("%w: no mail transport configured", ErrUpstream)
	}
	if err := s.sender.Send(ctx, req); err != nil {
		emailsSent.WithLabelValues(s.sender.Name(), "failed").Inc()
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	emailsSent.WithLabelValues(s.sender.Name(), "success").Inc()
	s.logger.Info("sent email", zap.String("transport", s.sender.Name()), zap.String("recipient", req.Recipient))
	return nil
}

// Ready reports whether the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}
