package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/bassamadnan/triage/backend"
	"github.com/bassamadnan/triage/store"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type fakeSource struct {
	mu       sync.Mutex
	emails   []backend.Email
	err      error
	fetches  int
	trashed  []backend.ID
	trashErr error
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) Fetch(_ context.Context, limit int) ([]backend.Email, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	out := append([]backend.Email(nil), f.emails...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSource) Trash(_ context.Context, ids []backend.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.trashErr != nil {
		return f.trashErr
	}
	f.trashed = append(f.trashed, ids...)
	return nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

type fakeGenerator struct {
	reply backend.ReplySuggestion
	err   error
	got   backend.ReplyRequest
}

func (f *fakeGenerator) DraftReply(_ context.Context, req backend.ReplyRequest) (backend.ReplySuggestion, error) {
	f.got = req
	return f.reply, f.err
}

type fakeSender struct {
	sent []backend.SendRequest
	err  error
}

func (f *fakeSender) Name() string { return "fake" }

func (f *fakeSender) Send(_ context.Context, req backend.SendRequest) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

type fixture struct {
	source    *fakeSource
	generator *fakeGenerator
	sender    *fakeSender
	store     *store.Store
	svc       *Service
	router    http.Handler
}

func date(day int) backend.Timestamp {
	return backend.Timestamp{Time: time.Date(2024, 5, day, 12, 0, 0, 0, time.UTC)}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "triage.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	f := &fixture{
		source: &fakeSource{emails: []backend.Email{
			{ID: "1", Sender: "alice@example.com", Subject: "Great launch", Body: "The launch was a great success, thank you!", Date: date(3)},
			{ID: "2", Sender: "bob@example.com", Subject: "Outage", Body: "The build failed again and customers are upset.", Date: date(2)},
		}},
		generator: &fakeGenerator{reply: backend.ReplySuggestion{Subject: "Re: Great launch", Body: "Thanks Alice!"}},
		sender:    &fakeSender{},
		store:     st,
	}
	f.svc = NewService(ServiceConfig{
		Store:      st,
		Source:     f.source,
		Generator:  f.generator,
		Sender:     f.sender,
		FetchLimit: 10,
		SyncOnList: true,
	})
	f.router = NewRouter(f.svc, "http://localhost:3000", zap.NewNop())
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestListEmailsAnalyses(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/emails", nil)
	require.Equal(t, http.StatusOK, w.Code)
	emails := decode[[]backend.Email](t, w)
	require.Len(t, emails, 2)

	assert.Equal(t, backend.ID("1"), emails[0].ID)
	require.NotNil(t, emails[0].Sentiment.Compound)
	assert.Greater(t, *emails[0].Sentiment.Compound, 0.0)
	assert.Less(t, *emails[1].Sentiment.Compound, 0.0)
	assert.Contains(t, emails[0].Keywords, "launch")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestListEmailsServesSnapshotWhenSourceFails(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/emails", nil).Code)

	f.source.err = errors.New("gmail down")
	w := f.do(t, http.MethodGet, "/emails", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]backend.Email](t, w), 2)
}

func TestListEmailsEmptyIsArray(t *testing.T) {
	f := newFixture(t)
	f.source.emails = nil
	w := f.do(t, http.MethodGet, "/emails", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestGetEmail(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Sync(context.Background())
	require.NoError(t, err)

	w := f.do(t, http.MethodGet, "/emails/2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Outage", decode[backend.Email](t, w).Subject)

	w = f.do(t, http.MethodGet, "/emails/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, decode[backend.ErrorResponse](t, w).Error)
}

func TestDeleteEmails(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Sync(context.Background())
	require.NoError(t, err)

	w := f.do(t, http.MethodPost, "/emails/delete", map[string]any{"email_ids": []any{"1", 99}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Deleted 1 emails", decode[backend.MessageResponse](t, w).Message)
	assert.Equal(t, []backend.ID{"1", "99"}, f.source.trashed)

	// a refresh must not bring the deleted email back
	emails := decode[[]backend.Email](t, f.do(t, http.MethodGet, "/emails", nil))
	require.Len(t, emails, 1)
	assert.Equal(t, backend.ID("2"), emails[0].ID)
}

func TestDeleteEmailsErrors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/emails/delete", map[string]any{"email_ids": []string{}}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/emails/delete", "nope").Code)

	_, err := f.svc.Sync(context.Background())
	require.NoError(t, err)
	f.source.trashErr = errors.New("quota")
	w := f.do(t, http.MethodPost, "/emails/delete", map[string]any{"email_ids": []string{"1"}})
	assert.Equal(t, http.StatusBadGateway, w.Code)

	// nothing was removed locally
	_, err = f.store.Get(context.Background(), "1")
	assert.NoError(t, err)
}

func TestGenerateReply(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/generate_reply", backend.ReplyRequest{Body: "Hello", Subject: "Great launch"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, f.generator.reply, decode[backend.ReplySuggestion](t, w))
	assert.Equal(t, "Great launch", f.generator.got.Subject)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/generate_reply", backend.ReplyRequest{}).Code)

	f.generator.err = errors.New("model offline")
	w = f.do(t, http.MethodPost, "/generate_reply", backend.ReplyRequest{Body: "Hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, decode[backend.ErrorResponse](t, w).Error, "model offline")
}

func TestSendEmail(t *testing.T) {
	f := newFixture(t)

	req := backend.SendRequest{Recipient: "alice@example.com", Subject: "Re: Hi", Body: "Thanks"}
	w := f.do(t, http.MethodPost, "/send_email", req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Email sent successfully", decode[backend.MessageResponse](t, w).Message)
	assert.Equal(t, []backend.SendRequest{req}, f.sender.sent)

	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/send_email", backend.SendRequest{Recipient: "a@b.c"}).Code)

	f.sender.err = errors.New("relay refused")
	assert.Equal(t, http.StatusBadGateway, f.do(t, http.MethodPost, "/send_email", req).Code)
}

func TestMissingCollaborators(t *testing.T) {
	st, err := store.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	defer st.Close()

	svc := NewService(ServiceConfig{Store: st})
	_, err = svc.GenerateReply(context.Background(), backend.ReplyRequest{Body: "x"})
	assert.ErrorIs(t, err, ErrUpstream)
	err = svc.Send(context.Background(), backend.SendRequest{Recipient: "a", Subject: "b", Body: "c"})
	assert.ErrorIs(t, err, ErrUpstream)

	n, err := svc.Sync(context.Background())
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	assert.JSONEq(t, `{"status":"ok"}`, f.do(t, http.MethodGet, "/healthz", nil).Body.String())
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/readyz", nil).Code)

	f.do(t, http.MethodGet, "/emails", nil)
	w := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "triage_http_request_duration_seconds")
	assert.Contains(t, w.Body.String(), "triage_emails_synced_total")
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/emails", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDPropagates(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestRunPoller(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.svc.RunPoller(ctx, 10*time.Millisecond)
	}()

	assert.Eventually(t, func() bool { return f.source.fetchCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	n, err := f.store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestServerRunShutsDown(t *testing.T) {
	f := newFixture(t)
	srv := New("127.0.0.1:0", f.router, f.svc, 0, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
  {"id": 1, "sender": "a@example.com", "subject": "old", "body": "x", "date": "Mon, 01 Jan 2024 10:00:00 +0000"},
  {"id": "b", "sender": "b@example.com", "subject": "new", "body": "y", "date": "2024-02-01T10:00:00Z"}
]`), 0o644))

	src := NewFileSource(path)
	got, err := src.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "new", got[0].Subject)
	assert.Equal(t, backend.ID("1"), got[1].ID)

	got, err = src.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background(), 1)
	assert.Error(t, err)
}
