package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL, 5*time.Second)
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	c, err := NewClient("", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())

	c, err = NewClient("http://localhost:9000/", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000", c.BaseURL())

	_, err = NewClient("ftp://example.com", 0)
	assert.Error(t, err)
}

func TestClient_ListEmails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		_, _ = w.Write([]byte(`[
			{"id": 1, "sender": "a@example.com", "subject": "Hi", "body": "Hello there",
			 "date": "Mon, 2 Jan 2006 15:04:05 -0700",
			 "sentiment": {"pos": 0.5, "neg": 0, "neu": 0.5}, "keywords": ["hello", "there"]},
			{"id": "18c2f", "sender": null, "subject": null, "body": "", "date": null,
			 "sentiment": {}, "keywords": []}
		]`))
	})

	emails, err := c.ListEmails(context.Background())
	require.NoError(t, err)
	require.Len(t, emails, 2)

	assert.Equal(t, ID("1"), emails[0].ID)
	assert.Equal(t, "Hi", emails[0].Subject)
	assert.Equal(t, 2006, emails[0].Date.Year())
	require.NotNil(t, emails[0].Sentiment.Pos)
	assert.InDelta(t, 0.5, *emails[0].Sentiment.Pos, 1e-9)
	require.NotNil(t, emails[0].Sentiment.Neg)

	assert.Equal(t, ID("18c2f"), emails[1].ID)
	assert.True(t, emails[1].Date.IsZero())
	assert.Nil(t, emails[1].Sentiment.Pos)
	assert.Nil(t, emails[1].Sentiment.Neu)
}

func TestClient_ListEmails_NullBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	})
	emails, err := c.ListEmails(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, emails)
	assert.Empty(t, emails)
}

func TestClient_ListEmails_UnreadableDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1, "sender": "a@x", "subject": "one", "date": "Tue, 05 Mar 2024 10:00:00 +0000"},
			{"id": 2, "sender": "b@x", "subject": "two", "date": "sometime last week"}
		]`))
	})
	emails, err := c.ListEmails(context.Background())
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, 2024, emails[0].Date.Year())
	assert.Equal(t, ID("2"), emails[1].ID)
	assert.True(t, emails[1].Date.IsZero())
}

func TestClient_ListEmails_MalformedJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "date": 12x}]`))
	})
	_, err := c.ListEmails(context.Background())
	assert.Error(t, err)
}

func TestClient_GetEmail_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails/abc", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"email abc not found"}`))
	})

	_, err := c.GetEmail(context.Background(), "abc")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusNotFound, serr.Code)
	assert.Equal(t, "email abc not found", serr.Message)
}

func TestClient_GetEmail_EmptyID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := c.GetEmail(context.Background(), " ")
	assert.Error(t, err)
}

func TestClient_DeleteEmails(t *testing.T) {
	var got DeleteRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails/delete", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":"deleted"}`))
	})

	err := c.DeleteEmails(context.Background(), []ID{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, []ID{"1", "2"}, got.EmailIDs)
}

func TestClient_DeleteEmails_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	err := c.DeleteEmails(context.Background(), []ID{"1"})
	var serr *StatusError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, http.StatusInternalServerError, serr.Code)
	assert.Equal(t, "boom", serr.Message)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestClient_GenerateReply(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req ReplyRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Can we meet?", req.Body)
		_, _ = w.Write([]byte(`{"subject":"Re: Hi","body":"Sure, sounds good."}`))
	})

	out, err := c.GenerateReply(context.Background(), ReplyRequest{Body: "Can we meet?"})
	require.NoError(t, err)
	assert.Equal(t, ReplySuggestion{Subject: "Re: Hi", Body: "Sure, sounds good."}, out)
}

func TestClient_SendEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req SendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, SendRequest{Recipient: "a@example.com", Subject: "Re: Hi", Body: "ok"}, req)
		_, _ = w.Write([]byte(`{"message":"Email sent successfully"}`))
	})

	out, err := c.SendEmail(context.Background(), SendRequest{Recipient: "a@example.com", Subject: "Re: Hi", Body: "ok"})
	require.NoError(t, err)
	assert.Equal(t, "Email sent successfully", out.Message)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second)
	require.NoError(t, err)
	_, err = c.ListEmails(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestClient_CancelledContext(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListEmails(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		year  int
	}{
		{"rfc3339", "2024-03-01T10:00:00Z", 2024},
		{"rfc1123z", "Fri, 01 Mar 2024 10:00:00 +0000", 2024},
		{"unpadded day", "Fri, 1 Mar 2024 10:00:00 +0100", 2024},
		{"tz comment", "Fri, 1 Mar 2024 10:00:00 +0000 (UTC)", 2024},
		{"no weekday", "1 Mar 2024 10:00:00 +0000", 2024},
		{"naive iso", "2024-03-05T10:00:00", 2024},
		{"naive iso with space", "2024-03-05 10:00:00.123456", 2024},
		{"trailing comment only", "Fri, 1 Mar 2024 10:00:00 +0000 (Coordinated Universal Time)", 2024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.year, got.Year())
		})
	}

	_, err := ParseDate("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	ts := Timestamp{time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	data, err = json.Marshal(ts)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-01T10:00:00Z"`, string(data))

	var back Timestamp
	require.NoError(t, json.Unmarshal([]byte(`1709287200`), &back))
	assert.Equal(t, int64(1709287200), back.Unix())
}
