package tui

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"

	"github.com/elva-ai/elva-tui/internal/api"
	"github.com/elva-ai/elva-tui/internal/chat"
	"github.com/elva-ai/elva-tui/internal/config"
	"github.com/elva-ai/elva-tui/internal/gmailauth"
	"github.com/elva-ai/elva-tui/internal/store"
	"github.com/elva-ai/elva-tui/internal/version"
)

// App encapsulates the terminal UI and the backend client
type App struct {
	*tview.Application
	Pages  *tview.Pages
	Config *config.Config
	Keys   config.KeyBindings

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.RWMutex
	views map[string]tview.Primitive

	client     *api.Client
	transcript *chat.Transcript
	approvals  *chat.ApprovalController
	dispatcher *chat.Dispatcher
	gmail      *gmailauth.Tracker
	settings   *store.Store

	errorHandler *ErrorHandler
	theme        *config.Theme
	themeLoader  *config.ThemeLoader

	sessionID    string
	sending      bool
	authInFlight bool
	showHelp     bool

	logger  *log.Logger
	logFile *os.File
}

// NewApp wires the terminal client. settings may be nil when the local store
// could not be opened.
func NewApp(client *api.Client, settings *store.Store, cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	transcript := chat.NewTranscript()
	approvals := chat.NewApprovalController(client, transcript)

	app := &App{
		Application: tview.NewApplication(),
		Pages:       tview.NewPages(),
		Config:      cfg,
		Keys:        cfg.Keys,
		ctx:         ctx,
		cancel:      cancel,
		views:       make(map[string]tview.Primitive),
		client:      client,
		transcript:  transcript,
		approvals:   approvals,
		settings:    settings,
		themeLoader: config.NewThemeLoader(cfg.CustomThemeDir),
		sessionID:   chat.NewSessionID(),
		logger:      log.New(os.Stderr, "[elva] ", log.LstdFlags),
	}

	app.initLogger()

	app.gmail = gmailauth.NewTracker(client, transcript, settings)
	app.dispatcher = chat.NewDispatcher(client, transcript, approvals, cfg.UserID, app.logger)
	app.dispatcher.SetDebugReport(app.gmail.DebugReport)

	app.loadTheme()
	app.initViews()
	app.bindKeys()

	app.errorHandler = NewErrorHandler(app.Application, app, app.statusView(), app.logger)

	// Background appends refresh the transcript view
	transcript.SetOnAppend(func(chat.Message) {
		app.QueueUpdateDraw(func() {
			app.renderTranscript()
		})
	})

	return app
}

// Run starts the session and the event loop
func (a *App) Run() error {
	defer a.closeLogger()
	defer a.cancel()

	go a.startSession(a.sessionID)

	a.SetRoot(a.Pages, true)
	a.SetFocus(a.inputField())
	return a.Application.Run()
}

// Stop terminates the event loop
func (a *App) Stop() {
	a.cancel()
	a.Application.Stop()
}

// SessionID returns the current session id
func (a *App) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

// startSession hydrates history and polls Gmail status for a fresh session.
// Runs in a background goroutine.
func (a *App) startSession(sid string) {
	st := a.gmail.Check(a.ctx, sid)

	msgs := a.dispatcher.LoadHistory(a.ctx, sid, st.Authenticated)

	// A replaced session drops the in-flight hydration on the floor
	if a.SessionID() != sid {
		return
	}
	for _, m := range msgs {
		a.transcript.Append(m)
	}
	a.QueueUpdateDraw(func() {
		a.updateHeader()
	})
}

// newChat replaces the session: fresh id, cleared transcript, dropped
// pending approval. Runs in a background goroutine.
func (a *App) newChat() {
	sid := chat.NewSessionID()

	a.mu.Lock()
	a.sessionID = sid
	a.mu.Unlock()

	a.approvals.Discard()
	a.transcript.Reset()

	a.QueueUpdateDraw(func() {
		a.renderTranscript()
		a.updateHeader()
		a.hideApprovalPanel()
	})

	a.errorHandler.ShowInfo(a.ctx, "Started a new chat")
	a.startSession(sid)
}

// submit routes one line of input through the dispatcher. Runs in a
// background goroutine.
func (a *App) submit(input string) {
	input = strings.TrimSpace(input)
	if input == "" {
		return
	}

	a.mu.Lock()
	if a.sending {
		a.mu.Unlock()
		a.errorHandler.ShowWarning(a.ctx, "Still waiting for the previous reply")
		return
	}
	a.sending = true
	sid := a.sessionID
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.sending = false
		a.mu.Unlock()
	}()

	// Direct automation shows its waiting status while the call runs;
	// anything else headed for the chat endpoint gets the thinking line
	resolving := a.approvals.State() != chat.StateIdle && chat.DetectDecision(input) != chat.DecisionNone
	if status, ok := chat.AutomationStatusMessage(input); ok {
		a.errorHandler.ShowProgress(a.ctx, status)
	} else if !resolving {
		a.errorHandler.ShowProgress(a.ctx, "🤖 Elva is thinking...")
	}
	defer a.errorHandler.ClearProgress()

	result, err := a.dispatcher.Send(a.ctx, sid, input)
	if err != nil {
		// The transcript already carries the canned failure message
		a.logger.Printf("send failed: %v", err)
		return
	}

	if result.OpenedApproval {
		a.QueueUpdateDraw(func() {
			a.showApprovalPanel()
		})
	} else {
		a.QueueUpdateDraw(func() {
			a.hideApprovalPanel()
		})
	}
}

// resolveApproval submits the pending decision. Runs in a background
// goroutine.
func (a *App) resolveApproval(approved bool) {
	sid := a.SessionID()

	a.QueueUpdateDraw(func() {
		a.hideApprovalPanel()
	})

	if err := a.approvals.Resolve(a.ctx, sid, approved); err != nil {
		a.errorHandler.ShowBackendError(a.ctx, "approval", err)
		return
	}
	if approved {
		a.errorHandler.ShowSuccess(a.ctx, "Action executed")
	} else {
		a.errorHandler.ShowInfo(a.ctx, "Action cancelled")
	}
}

// connectGmail runs the OAuth round trip: consent URL with session-tagged
// state, loopback redirect listener, outcome handling. Runs in a background
// goroutine.
func (a *App) connectGmail() {
	a.mu.Lock()
	if a.authInFlight {
		a.mu.Unlock()
		a.errorHandler.ShowWarning(a.ctx, "Gmail authentication already in progress")
		return
	}
	a.authInFlight = true
	sid := a.sessionID
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.authInFlight = false
		a.mu.Unlock()
	}()

	authURL, err := a.gmail.InitiateAuth(a.ctx, sid)
	if err != nil {
		a.errorHandler.ShowBackendError(a.ctx, "gmail auth", err)
		return
	}

	a.transcript.Append(chat.SystemMessage(fmt.Sprintf(
		"🔐 Gmail authorization required\n\n1. Open this link in your browser:\n%s\n\n2. Grant access to your Google account\n3. You will be redirected back automatically\n\nWaiting for authorization...", authURL)))
	a.errorHandler.ShowProgress(a.ctx, "Waiting for Gmail authorization in the browser...")
	defer a.errorHandler.ClearProgress()

	res, err := gmailauth.AwaitRedirect(a.ctx, a.Config.CallbackAddr, 5*time.Minute)
	if err != nil {
		a.errorHandler.HandleError(a.ctx, err, "Gmail authorization did not complete")
		return
	}

	flash := a.gmail.HandleRedirect(a.ctx, sid, res)
	a.QueueUpdateDraw(func() {
		a.updateHeader()
	})
	if flash != "" {
		if strings.HasPrefix(flash, "✅") {
			a.errorHandler.ShowSuccess(a.ctx, strings.TrimPrefix(flash, "✅ "))
		} else {
			a.errorHandler.ShowError(a.ctx, strings.TrimPrefix(flash, "❌ "))
		}
	}
}

// gmailDebug appends the backend diagnostics report to the transcript.
// Runs in a background goroutine.
func (a *App) gmailDebug() {
	report := a.gmail.DebugReport(a.ctx)
	a.transcript.Append(chat.SystemMessage(report))
}

// statusBaseline is the status line text when nothing else is going on
func (a *App) statusBaseline() string {
	gmail := "Checking…"
	st := a.gmail.Status()
	switch {
	case st.Loading:
	case st.Authenticated:
		gmail = "Connected"
	default:
		gmail = "Not connected"
	}
	return fmt.Sprintf("%s • Gmail: %s • %s for help", version.GetVersionString(), gmail, strings.ToUpper(a.Keys.Help))
}

// getStatusColor returns theme-aware colors for status levels
func (a *App) getStatusColor(level string) tcell.Color {
	t := a.currentTheme()
	switch level {
	case "warning":
		return tcell.GetColor(t.Warning)
	case "error":
		return tcell.GetColor(t.Error)
	case "success":
		return tcell.GetColor(t.Success)
	default:
		return tcell.GetColor(t.Info)
	}
}

func (a *App) currentTheme() *config.Theme {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.theme == nil {
		return config.DarkTheme()
	}
	return a.theme
}

// loadTheme resolves the active theme: local store override first, then the
// configured name, then the builtin dark theme
func (a *App) loadTheme() {
	name := a.Config.Theme
	if a.settings != nil {
		if v, ok, err := a.settings.Get(a.ctx, store.KeyTheme); err == nil && ok {
			name = v
		}
	}

	theme, err := a.themeLoader.LoadTheme(name)
	if err != nil {
		a.logger.Printf("theme %q not loadable, using builtin dark: %v", name, err)
		theme = config.DarkTheme()
	}

	a.mu.Lock()
	a.theme = theme
	a.mu.Unlock()
}

// toggleTheme flips between the builtin dark and light themes and persists
// the choice. Runs in a background goroutine.
func (a *App) toggleTheme() {
	next := "elva-dark"
	if a.currentTheme().Name == "elva-dark" {
		next = "elva-light"
	}

	theme, err := a.themeLoader.LoadTheme(next)
	if err != nil {
		a.errorHandler.HandleError(a.ctx, err, "Theme switch failed")
		return
	}

	a.mu.Lock()
	a.theme = theme
	a.mu.Unlock()

	if a.settings != nil {
		_ = a.settings.Set(a.ctx, store.KeyTheme, next)
	}

	a.QueueUpdateDraw(func() {
		a.applyTheme()
		a.renderTranscript()
		a.updateHeader()
	})
	a.errorHandler.ShowInfo(a.ctx, fmt.Sprintf("Theme: %s", theme.Name))
}
