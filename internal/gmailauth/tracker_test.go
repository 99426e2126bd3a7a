package gmailauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elva-ai/elva-tui/internal/api"
	"github.com/elva-ai/elva-tui/internal/chat"
	"github.com/elva-ai/elva-tui/internal/store"
)

func TestRewriteState(t *testing.T) {
	tests := []struct {
		name          string
		authURL       string
		sessionID     string
		expectedState string
	}{
		{
			name:          "existing state gets prefixed",
			authURL:       "https://accounts.google.com/o/oauth2/auth?client_id=x&state=abc123",
			sessionID:     "session_1",
			expectedState: "session_1_abc123",
		},
		{
			name:          "missing state still carries the session",
			authURL:       "https://accounts.google.com/o/oauth2/auth?client_id=x",
			sessionID:     "session_1",
			expectedState: "session_1_",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rewritten, err := RewriteState(tt.authURL, tt.sessionID)
			require.NoError(t, err)

			u, err := url.Parse(rewritten)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedState, u.Query().Get("state"))
			assert.Equal(t, "x", u.Query().Get("client_id"))
		})
	}
}

func TestParseRedirect(t *testing.T) {
	u, err := url.Parse("http://127.0.0.1:8765/?auth=error&service=gmail&message=access_denied&details=denied&session_id=session_1")
	require.NoError(t, err)

	res := ParseRedirect(u)
	assert.Equal(t, "error", res.Auth)
	assert.Equal(t, "gmail", res.Service)
	assert.Equal(t, "access_denied", res.Message)
	assert.Equal(t, "denied", res.Details)
	assert.Equal(t, "session_1", res.SessionID)
	assert.Empty(t, res.Code)
}

func TestExplainOAuthError(t *testing.T) {
	tests := []struct {
		name            string
		code            string
		details         string
		expectedUserMsg string
		expectedDebug   string
	}{
		{
			name:            "access denied",
			code:            "access_denied",
			expectedUserMsg: "Gmail authentication was cancelled. You can try connecting again anytime.",
			expectedDebug:   "User denied access during OAuth2 flow.",
		},
		{
			name:            "no code",
			code:            "no_code",
			expectedUserMsg: "Gmail authentication failed - no authorization received.",
			expectedDebug:   "OAuth2 callback did not receive authorization code.",
		},
		{
			name:            "token exchange failure with details",
			code:            "auth_failed",
			details:         "exchange timed out",
			expectedUserMsg: "Gmail authentication failed during token exchange.",
			expectedDebug:   "exchange timed out",
		},
		{
			name:            "server error default details",
			code:            "server_error",
			expectedUserMsg: "Gmail authentication failed due to a server error.",
			expectedDebug:   "Backend server error during OAuth2 processing.",
		},
		{
			name:            "unknown code",
			code:            "weird_thing",
			expectedUserMsg: "Gmail authentication failed. Please try again.",
			expectedDebug:   "Unknown error: weird_thing",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userMsg, debug := explainOAuthError(tt.code, tt.details)
			assert.Equal(t, tt.expectedUserMsg, userMsg)
			assert.Equal(t, tt.expectedDebug, debug)
		})
	}
}

func newStatusBackend(t *testing.T, status api.GmailStatus) *api.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/gmail/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(status)
	}))
	t.Cleanup(srv.Close)
	return api.NewClient(srv.URL, 2*time.Second)
}

func TestCheckConnected(t *testing.T) {
	client := newStatusBackend(t, api.GmailStatus{
		Success:               true,
		Authenticated:         true,
		CredentialsConfigured: true,
	})
	tr := chat.NewTranscript()
	tracker := NewTracker(client, tr, nil)

	st := tracker.Check(context.Background(), "session_1")
	assert.True(t, st.Authenticated)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)

	// Healthy status stays quiet
	assert.Equal(t, 0, tr.Len())
	assert.True(t, tracker.Status().Authenticated)
}

func TestCheckMissingCredentialsAppendsOneDiagnostic(t *testing.T) {
	client := newStatusBackend(t, api.GmailStatus{
		Success:               true,
		Authenticated:         false,
		CredentialsConfigured: false,
	})
	tr := chat.NewTranscript()
	tracker := NewTracker(client, tr, nil)

	tracker.Check(context.Background(), "session_1")
	tracker.Check(context.Background(), "session_1")
	tracker.Check(context.Background(), "session_1")

	// Repeated polls never duplicate the diagnostic
	require.Equal(t, 1, tr.Len())
	msg := tr.Messages()[0]
	assert.True(t, msg.IsSystem)
	assert.True(t, strings.HasPrefix(msg.ID, chat.GmailDebugIDPrefix))
	assert.Contains(t, msg.Body(), "credentials.json file is missing")
}

func TestCheckUnauthenticatedButConfiguredStaysQuiet(t *testing.T) {
	client := newStatusBackend(t, api.GmailStatus{
		Success:               true,
		Authenticated:         false,
		CredentialsConfigured: true,
	})
	tr := chat.NewTranscript()
	tracker := NewTracker(client, tr, nil)

	st := tracker.Check(context.Background(), "session_1")
	assert.False(t, st.Authenticated)
	assert.Equal(t, 0, tr.Len())
}

func TestCheckBackendDown(t *testing.T) {
	client := api.NewClient("http://127.0.0.1:1", 500*time.Millisecond)
	tr := chat.NewTranscript()
	tracker := NewTracker(client, tr, nil)

	st := tracker.Check(context.Background(), "session_1")
	assert.False(t, st.Authenticated)
	assert.NotEmpty(t, st.Error)
}

func TestHandleRedirectError(t *testing.T) {
	client := newStatusBackend(t, api.GmailStatus{
		Success:               true,
		CredentialsConfigured: true,
	})
	tr := chat.NewTranscript()
	tracker := NewTracker(client, tr, nil)

	flash := tracker.HandleRedirect(context.Background(), "session_1", RedirectResult{
		Auth:    "error",
		Message: "access_denied",
	})
	assert.Equal(t, "❌ Gmail authentication failed", flash)

	require.Equal(t, 1, tr.Len())
	msg := tr.Messages()[0]
	assert.True(t, strings.HasPrefix(msg.ID, chat.GmailErrorIDPrefix))
	assert.Contains(t, msg.Body(), "cancelled")
	assert.Contains(t, msg.Body(), "session_1")
}

func TestHandleRedirectSuccess(t *testing.T) {
	client := newStatusBackend(t, api.GmailStatus{
		Success:               true,
		Authenticated:         true,
		CredentialsConfigured: true,
	})
	tracker := NewTracker(client, chat.NewTranscript(), nil)

	flash := tracker.HandleRedirect(context.Background(), "session_1", RedirectResult{
		Auth:    "success",
		Service: "gmail",
	})
	assert.Equal(t, "✅ Gmail connected successfully!", flash)
	assert.True(t, tracker.Status().Authenticated)
}

func TestHandleRedirectRawCode(t *testing.T) {
	var callbackBody api.GmailCallbackRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/gmail/callback", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&callbackBody))
		_ = json.NewEncoder(w).Encode(api.GmailCallbackResponse{Success: true})
	})
	mux.HandleFunc("/api/gmail/status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.GmailStatus{Success: true, Authenticated: true, CredentialsConfigured: true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tracker := NewTracker(api.NewClient(srv.URL, 2*time.Second), chat.NewTranscript(), nil)

	flash := tracker.HandleRedirect(context.Background(), "session_1", RedirectResult{Code: "4/abc"})
	assert.Equal(t, "✅ Gmail connected successfully!", flash)
	assert.Equal(t, "4/abc", callbackBody.Code)
}

func TestHandleRedirectDoesNotCacheUnverifiedAuth(t *testing.T) {
	// The redirect claims success but the re-polled status endpoint says not
	// authenticated; the local cache follows the poll, not the redirect.
	mux := http.NewServeMux()
	mux.HandleFunc("/api/gmail/callback", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.GmailCallbackResponse{Success: true})
	})
	mux.HandleFunc("/api/gmail/status", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(api.GmailStatus{Success: true, Authenticated: false, CredentialsConfigured: true})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	tests := []struct {
		name string
		res  RedirectResult
	}{
		{
			name: "backend redirect claims success",
			res:  RedirectResult{Auth: "success", Service: "gmail"},
		},
		{
			name: "raw code exchange succeeds",
			res:  RedirectResult{Code: "4/abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "elva.sqlite3"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = settings.Close() })

			tracker := NewTracker(api.NewClient(srv.URL, 2*time.Second), chat.NewTranscript(), settings)

			flash := tracker.HandleRedirect(context.Background(), "session_1", tt.res)
			assert.Equal(t, "✅ Gmail connected successfully!", flash)
			assert.False(t, tracker.Status().Authenticated)

			_, ok, err := settings.Get(context.Background(), store.KeyGmailAuthStatus)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}
