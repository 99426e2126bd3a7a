package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Standard client errors
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBadStatus          = errors.New("unexpected backend status")
	ErrInvalidInput       = errors.New("invalid input provided")
)

// Client talks to the Elva AI backend over its HTTP contract.
// All endpoints live under {base}/api.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a backend client. backendURL is the base URL without the
// /api suffix; timeout applies to every call.
func NewClient(backendURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(backendURL, "/") + "/api",
		httpc:   &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the resolved API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// History fetches the stored chat history for a session
func (c *Client) History(ctx context.Context, sessionID string) (*HistoryResponse, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidInput)
	}
	var out HistoryResponse
	if err := c.get(ctx, "/history/"+url.PathEscape(sessionID), &out); err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &out, nil
}

// Chat submits a user message for intent parsing and AI reply
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" || strings.TrimSpace(req.SessionID) == "" {
		return nil, fmt.Errorf("%w: message and session id required", ErrInvalidInput)
	}
	var out ChatResponse
	if err := c.post(ctx, "/chat", req, &out); err != nil {
		return nil, fmt.Errorf("send chat message: %w", err)
	}
	return &out, nil
}

// Approve resolves a pending AI-proposed action
func (c *Client) Approve(ctx context.Context, req ApproveRequest) (*ApproveResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.MessageID) == "" {
		return nil, fmt.Errorf("%w: session id and message id required", ErrInvalidInput)
	}
	var out ApproveResponse
	if err := c.post(ctx, "/approve", req, &out); err != nil {
		return nil, fmt.Errorf("submit approval: %w", err)
	}
	return &out, nil
}

// GmailStatus polls the Gmail connection status for a session
func (c *Client) GmailStatus(ctx context.Context, sessionID string) (*GmailStatus, error) {
	var out GmailStatus
	if err := c.get(ctx, "/gmail/status?session_id="+url.QueryEscape(sessionID), &out); err != nil {
		return nil, fmt.Errorf("gmail status: %w", err)
	}
	return &out, nil
}

// GmailAuthURL asks the backend for the Google OAuth consent URL
func (c *Client) GmailAuthURL(ctx context.Context, sessionID string) (*GmailAuthResponse, error) {
	var out GmailAuthResponse
	if err := c.get(ctx, "/gmail/auth?session_id="+url.QueryEscape(sessionID), &out); err != nil {
		return nil, fmt.Errorf("gmail auth url: %w", err)
	}
	return &out, nil
}

// GmailCallback forwards an OAuth authorization code to the backend for
// token exchange (non-redirect callback path)
func (c *Client) GmailCallback(ctx context.Context, code string) (*GmailCallbackResponse, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: empty authorization code", ErrInvalidInput)
	}
	var out GmailCallbackResponse
	if err := c.post(ctx, "/gmail/callback", GmailCallbackRequest{Code: code}, &out); err != nil {
		return nil, fmt.Errorf("gmail callback: %w", err)
	}
	return &out, nil
}

// GmailDebug fetches the backend's Gmail integration diagnostics
func (c *Client) GmailDebug(ctx context.Context) (*GmailDebugResponse, error) {
	var out GmailDebugResponse
	if err := c.get(ctx, "/gmail/debug", &out); err != nil {
		return nil, fmt.Errorf("gmail debug: %w", err)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for error context
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", ErrBadStatus, resp.Status, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode backend response: %w", err)
	}
	return nil
}
