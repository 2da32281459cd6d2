package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	maxErrorBody   = 4 << 10
)

// API is the contract the triage views consume.
type API interface {
	ListEmails(ctx context.Context) ([]Email, error)
	GetEmail(ctx context.Context, id ID) (Email, error)
	DeleteEmails(ctx context.Context, ids []ID) error
	GenerateReply(ctx context.Context, req ReplyRequest) (ReplySuggestion, error)
	SendEmail(ctx context.Context, req SendRequest) (MessageResponse, error)
}

// Client talks to a triage backend over HTTP/JSON.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A zero timeout leaves requests
// bounded only by their context.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	return &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// BaseURL returns the backend address this client targets.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// ListEmails fetches the whole collection. A JSON null decodes to an empty list.
func (c *Client) ListEmails(ctx context.Context) ([]Email, error) {
	var emails []Email
	if err := c.do(ctx, http.MethodGet, "/emails", nil, &emails); err != nil {
		return nil, err
	}
	if emails == nil {
		emails = []Email{}
	}
	return emails, nil
}

// GetEmail looks one email up by identifier.
func (c *Client) GetEmail(ctx context.Context, id ID) (Email, error) {
	var email Email
	if strings.TrimSpace(string(id)) == "" {
		return email, fmt.Errorf("get email: empty id")
	}
	err := c.do(ctx, http.MethodGet, "/emails/"+url.PathEscape(string(id)), nil, &email)
	return email, err
}

// DeleteEmails asks the backend to delete the given identifiers.
func (c *Client) DeleteEmails(ctx context.Context, ids []ID) error {
	return c.do(ctx, http.MethodPost, "/emails/delete", DeleteRequest{EmailIDs: ids}, nil)
}

// GenerateReply requests a reply suggestion for an email body.
func (c *Client) GenerateReply(ctx context.Context, req ReplyRequest) (ReplySuggestion, error) {
	var out ReplySuggestion
	err := c.do(ctx, http.MethodPost, "/generate_reply", req, &out)
	return out, err
}

// SendEmail submits a reply for delivery.
func (c *Client) SendEmail(ctx context.Context, req SendRequest) (MessageResponse, error) {
	var out MessageResponse
	err := c.do(ctx, http.MethodPost, "/send_email", req, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		serr := &StatusError{Method: method, Path: path, Code: resp.StatusCode}
		var payload ErrorResponse
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			serr.Message = payload.Error
		} else {
			serr.Message = strings.TrimSpace(string(raw))
		}
		return serr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
