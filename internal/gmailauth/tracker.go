package gmailauth

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/elva-ai/elva-tui/internal/api"
	"github.com/elva-ai/elva-tui/internal/chat"
	"github.com/elva-ai/elva-tui/internal/store"
)

// Status is the tri-state Gmail connection view: checking (Loading),
// connected, or disconnected, plus whatever the backend reported wrong.
type Status struct {
	Authenticated         bool
	Loading               bool
	CredentialsConfigured bool
	Error                 string
	LastChecked           time.Time
}

// Tracker owns the Gmail connection state for the current session. It polls
// the backend status endpoint, persists the connected flag locally, and
// surfaces credential problems in the transcript exactly once per session.
type Tracker struct {
	mu         sync.Mutex
	client     *api.Client
	transcript *chat.Transcript
	settings   *store.Store
	status     Status
}

// NewTracker creates a tracker in the checking state. settings may be nil
// when the local store is unavailable.
func NewTracker(client *api.Client, transcript *chat.Transcript, settings *store.Store) *Tracker {
	return &Tracker{
		client:     client,
		transcript: transcript,
		settings:   settings,
		status:     Status{Loading: true},
	}
}

// Status returns the last observed connection state
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Check polls the backend Gmail status for the session and updates local
// state. A credentials problem appends one diagnostic message to the
// transcript; repeated checks never append a second one.
func (t *Tracker) Check(ctx context.Context, sessionID string) Status {
	t.mu.Lock()
	t.status.Loading = true
	t.mu.Unlock()

	resp, err := t.client.GmailStatus(ctx, sessionID)
	if err != nil {
		st := Status{
			Authenticated: false,
			Loading:       false,
			Error:         err.Error(),
			LastChecked:   time.Now(),
		}
		t.setStatus(st)
		t.persist(ctx, false)
		return st
	}

	st := Status{
		Authenticated:         resp.Authenticated,
		Loading:               false,
		CredentialsConfigured: resp.CredentialsConfigured,
		Error:                 resp.Error,
		LastChecked:           time.Now(),
	}
	t.setStatus(st)
	t.persist(ctx, resp.Authenticated)

	// Mere "not authenticated yet" is normal and stays quiet; only real
	// misconfiguration earns a transcript diagnostic.
	if !resp.CredentialsConfigured || resp.Error != "" {
		t.transcript.AppendOncePrefix(chat.GmailDebugIDPrefix, t.diagnosticMessage(sessionID, resp))
	}

	return st
}

func (t *Tracker) setStatus(st Status) {
	t.mu.Lock()
	t.status = st
	t.mu.Unlock()
}

func (t *Tracker) persist(ctx context.Context, authenticated bool) {
	if t.settings == nil {
		return
	}
	if authenticated {
		_ = t.settings.Set(ctx, store.KeyGmailAuthStatus, "true")
	} else {
		_ = t.settings.Delete(ctx, store.KeyGmailAuthStatus)
	}
}

func (t *Tracker) diagnosticMessage(sessionID string, resp *api.GmailStatus) chat.Message {
	var b strings.Builder
	b.WriteString("🔧 Gmail Connection Debug\n\n")
	fmt.Fprintf(&b, "📋 Status: %s\n", onOff(resp.Success, "Service Running", "Service Error"))
	fmt.Fprintf(&b, "🔑 Credentials: %s\n", onOff(resp.CredentialsConfigured, "Configured ✅", "Missing ❌"))
	fmt.Fprintf(&b, "🔐 Authentication: %s\n", onOff(resp.Authenticated, "Connected ✅", "Not Connected ❌"))
	fmt.Fprintf(&b, "🆔 Session ID: %s\n", sessionID)
	if resp.Error != "" {
		fmt.Fprintf(&b, "❌ Error: %s\n", resp.Error)
	}
	b.WriteString("\n")
	switch {
	case !resp.CredentialsConfigured:
		b.WriteString("⚠️ Issue: Gmail credentials.json file is missing from the backend. It is required for OAuth2 authentication to work.")
	case resp.Error != "":
		fmt.Fprintf(&b, "⚠️ Issue: %s", resp.Error)
	default:
		b.WriteString("💡 Use Connect Gmail (Ctrl+G) to authenticate with your Google account.")
	}

	m := chat.SystemMessage(b.String())
	m.ID = chat.NewID(chat.GmailDebugIDPrefix)
	return m
}

// InitiateAuth asks the backend for the Google consent URL and rewrites its
// state parameter to carry the session id, so the redirect can be matched
// back to this session.
func (t *Tracker) InitiateAuth(ctx context.Context, sessionID string) (string, error) {
	resp, err := t.client.GmailAuthURL(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if !resp.Success || resp.AuthURL == "" {
		return "", fmt.Errorf("no auth url from backend: %s", resp.Message)
	}
	return RewriteState(resp.AuthURL, sessionID)
}

// RewriteState prefixes the OAuth state parameter with "<sessionID>_"
func RewriteState(authURL, sessionID string) (string, error) {
	u, err := url.Parse(authURL)
	if err != nil {
		return "", fmt.Errorf("parse auth url: %w", err)
	}
	q := u.Query()
	q.Set("state", sessionID+"_"+q.Get("state"))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// RedirectResult is the parsed query of the OAuth redirect the backend sends
// back to the loopback listener
type RedirectResult struct {
	Auth      string // "success" or "error", empty for a raw code callback
	Service   string
	Message   string
	Details   string
	SessionID string
	Code      string
}

// ParseRedirect extracts the OAuth outcome from a redirect URL
func ParseRedirect(u *url.URL) RedirectResult {
	q := u.Query()
	return RedirectResult{
		Auth:      q.Get("auth"),
		Service:   q.Get("service"),
		Message:   q.Get("message"),
		Details:   q.Get("details"),
		SessionID: q.Get("session_id"),
		Code:      q.Get("code"),
	}
}

// HandleRedirect processes one OAuth redirect outcome. It returns a short
// flash line for the status bar; failures also append a detailed error
// message to the transcript.
func (t *Tracker) HandleRedirect(ctx context.Context, sessionID string, res RedirectResult) string {
	switch {
	case res.Code != "" && res.Auth == "":
		// Raw authorization code path: the backend has not exchanged the
		// token yet, forward the code first.
		cb, err := t.client.GmailCallback(ctx, res.Code)
		if err != nil {
			t.appendAuthError(sessionID, "auth_failed", err.Error())
			t.Check(ctx, sessionID)
			return "❌ Gmail authentication failed"
		}
		if !cb.Success {
			t.appendAuthError(sessionID, "auth_failed", cb.Message)
			t.Check(ctx, sessionID)
			return "❌ Gmail authentication failed"
		}
		// Check re-polls the backend and persists the answer; the local
		// flag follows what the status endpoint reports, not the redirect.
		t.Check(ctx, sessionID)
		return "✅ Gmail connected successfully!"

	case res.Auth == "success" && res.Service == "gmail":
		t.Check(ctx, sessionID)
		return "✅ Gmail connected successfully!"

	case res.Auth == "error":
		t.appendAuthError(sessionID, res.Message, res.Details)
		t.Check(ctx, sessionID)
		return "❌ Gmail authentication failed"

	default:
		return ""
	}
}

func (t *Tracker) appendAuthError(sessionID, code, details string) {
	userMessage, debugInfo := explainOAuthError(code, details)

	var b strings.Builder
	b.WriteString("❌ Gmail Authentication Error\n\n")
	b.WriteString(userMessage)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "🔧 Debug Info: %s\n", debugInfo)
	fmt.Fprintf(&b, "🆔 Session: %s\n\n", sessionID)
	b.WriteString("💡 Next Steps: Check that the Gmail status line shows the correct state, or try the authentication flow again.")

	m := chat.SystemMessage(b.String())
	m.ID = chat.NewID(chat.GmailErrorIDPrefix)
	t.transcript.Append(m)
}

// explainOAuthError maps OAuth error codes to user-facing text
func explainOAuthError(code, details string) (userMessage, debugInfo string) {
	switch code {
	case "access_denied":
		return "Gmail authentication was cancelled. You can try connecting again anytime.",
			"User denied access during OAuth2 flow."
	case "no_code":
		return "Gmail authentication failed - no authorization received.",
			"OAuth2 callback did not receive authorization code."
	case "auth_failed":
		if details == "" {
			details = "Token exchange with Google failed."
		}
		return "Gmail authentication failed during token exchange.", details
	case "server_error":
		if details == "" {
			details = "Backend server error during OAuth2 processing."
		}
		return "Gmail authentication failed due to a server error.", details
	default:
		if details == "" {
			details = fmt.Sprintf("Unknown error: %s", code)
		}
		return "Gmail authentication failed. Please try again.", details
	}
}

// DebugReport fetches backend Gmail diagnostics and renders them for the
// transcript. Used by the "gmail debug" chat shortcut.
func (t *Tracker) DebugReport(ctx context.Context) string {
	resp, err := t.client.GmailDebug(ctx)
	if err != nil {
		return "❌ Debug Error: Failed to retrieve Gmail debug information. Check the log file for details."
	}
	info := resp.DebugInfo

	clientID, redirectURI := false, false
	if cc := info.GmailServiceStatus.CredentialsContent; cc != nil {
		clientID = cc.ClientIDConfigured
		redirectURI = cc.RedirectURIConfigured
	}

	var b strings.Builder
	b.WriteString("🔧 Gmail Integration Debug Report\n\n")
	fmt.Fprintf(&b, "📁 Credentials File: %s\n", onOff(info.GmailServiceStatus.CredentialsFileExists, "Found ✅", "Missing ❌"))
	fmt.Fprintf(&b, "📂 File Path: %s\n", info.GmailServiceStatus.CredentialsFilePath)
	fmt.Fprintf(&b, "🔑 Client ID Configured: %s\n", onOff(clientID, "Yes ✅", "No ❌"))
	fmt.Fprintf(&b, "🔄 Redirect URI Configured: %s\n", onOff(redirectURI, "Yes ✅", "No ❌"))
	fmt.Fprintf(&b, "🗄️ Database Connection: %s\n", onOff(info.DatabaseStatus.Connection == "connected", "Connected ✅", "Error ❌"))
	fmt.Fprintf(&b, "🎫 Stored Tokens: %d tokens found\n", info.DatabaseStatus.GmailTokenCount)
	fmt.Fprintf(&b, "🌐 Environment Variables: %s\n\n", onOff(info.Environment["GMAIL_REDIRECT_URI"] != "", "Configured ✅", "Missing ❌"))

	b.WriteString("🔧 Next Steps:\n")
	switch {
	case !info.GmailServiceStatus.CredentialsFileExists:
		b.WriteString("1. Missing credentials.json - add your Google OAuth2 credentials file to the backend\n")
		b.WriteString("2. See the backend's credentials.json.template for the required format\n")
		b.WriteString("3. Get credentials from the Google Cloud Console\n")
	case info.DatabaseStatus.Connection != "connected":
		b.WriteString("1. Database issue - backend token storage connection problem\n")
	default:
		b.WriteString("1. Setup looks good - try the OAuth2 flow again\n")
	}
	return b.String()
}

func onOff(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
