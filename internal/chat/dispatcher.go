package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/elva-ai/elva-tui/internal/api"
)

// Canned transcript messages outside the approval flow
const (
	MsgChatFailed = "Sorry, I encountered an error. Please try again! 🤖"

	MsgNoPendingApproval = "🤔 I don't see any pending actions to approve. Try asking me to do something first, like 'Send an email to John about the meeting' or 'Create a reminder for tomorrow'!"

	MsgApprovalPanelHelp = "📋 I've opened the approval panel with pre-filled details. You can review and edit the fields, then approve with Enter or just type 'Send it' to execute! Type 'Cancel' to abort."

	welcomeBase = "Hi Buddy 👋 Good to see you! Elva AI at your service. Ask me anything or tell me what to do!"

	welcomeGmailConnected = "\n\n🎉 Gmail is connected! I can now help you with:\n• 📧 Check your Gmail inbox\n• ✉️ Send emails\n• 📨 Read specific emails\n• 🔍 Search your messages"

	welcomeGmailTip = "\n\n💡 Tip: Connect Gmail (Ctrl+G) for email assistance!"
)

// SendResult describes how one line of input was routed
type SendResult struct {
	Decision         Decision
	DirectAutomation bool
	AutomationStatus string
	OpenedApproval   bool
	OverwrotePending bool
}

// Dispatcher routes each line of user input to exactly one of: approval
// resolution, the no-pending help notice, or a chat/automation backend call.
type Dispatcher struct {
	client     *api.Client
	transcript *Transcript
	approvals  *ApprovalController
	userID     string
	logger     *log.Logger

	// Optional local diagnostics hook for "gmail debug" style input;
	// set by the TUI to avoid a dependency on the auth tracker here.
	debugReport func(ctx context.Context) string
}

// NewDispatcher wires the message router
func NewDispatcher(client *api.Client, transcript *Transcript, approvals *ApprovalController, userID string, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		client:     client,
		transcript: transcript,
		approvals:  approvals,
		userID:     userID,
		logger:     logger,
	}
}

// SetDebugReport registers the Gmail diagnostics provider
func (d *Dispatcher) SetDebugReport(fn func(ctx context.Context) string) {
	d.debugReport = fn
}

// Send routes one line of input. Transport failures surface as a canned
// assistant message in the transcript and as the returned error; the caller
// only needs the error for logging.
func (d *Dispatcher) Send(ctx context.Context, sessionID, input string) (*SendResult, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return &SendResult{}, nil
	}

	result := &SendResult{Decision: DetectDecision(input)}

	// Route 1 and 2: a decision phrase while an action is pending resolves
	// it; no chat request is made.
	if d.approvals.State() != StateIdle && result.Decision != DecisionNone {
		d.transcript.Append(UserMessage(input))
		err := d.approvals.Resolve(ctx, sessionID, result.Decision == DecisionApprove)
		if err != nil {
			d.logger.Printf("approval resolve failed: %v", err)
		}
		return result, err
	}

	// Approval phrase with nothing pending gets the help notice instead of
	// confusing the chat model
	if result.Decision == DecisionApprove && d.approvals.State() == StateIdle {
		d.transcript.Append(UserMessage(input))
		d.transcript.Append(SystemMessage(MsgNoPendingApproval))
		result.Decision = DecisionNone
		return result, nil
	}
	result.Decision = DecisionNone

	// Local diagnostics shortcut
	lower := strings.ToLower(input)
	if d.debugReport != nil && (strings.Contains(lower, "gmail debug") || strings.Contains(lower, "test gmail")) {
		d.transcript.Append(UserMessage(input))
		d.transcript.Append(SystemMessage(d.debugReport(ctx)))
		return result, nil
	}

	// Routes 3 and 4: direct automation and plain chat both go through the
	// chat endpoint; direct automation skips the approval step on return.
	result.AutomationStatus, result.DirectAutomation = AutomationStatusMessage(input)

	d.transcript.Append(UserMessage(input))

	resp, err := d.client.Chat(ctx, api.ChatRequest{
		Message:   input,
		SessionID: sessionID,
		UserID:    d.userID,
	})
	if err != nil {
		d.logger.Printf("chat request failed: %v", err)
		d.transcript.Append(AssistantMessage(MsgChatFailed))
		return result, fmt.Errorf("sending chat message: %w", err)
	}

	ai := Message{
		ID:                 resp.ID,
		Response:           resp.Response,
		Timestamp:          parseBackendTime(resp.Timestamp),
		IsDirectAutomation: result.DirectAutomation,
		IntentData:         resp.IntentData,
		NeedsApproval:      resp.NeedsApproval,
	}
	if ai.ID == "" {
		ai.ID = NewID("")
	}
	d.transcript.Append(ai)

	if resp.NeedsApproval && len(resp.IntentData) > 0 && !result.DirectAutomation {
		result.OpenedApproval = true
		result.OverwrotePending = d.approvals.Open(ai.ID, resp.Response, resp.IntentData)
		if result.OverwrotePending {
			d.transcript.Append(SystemMessage(MsgApprovalReplaced))
		}
		d.transcript.Append(SystemMessage(MsgApprovalPanelHelp))
	}

	return result, nil
}

// LoadHistory fetches stored messages for the session. An empty or failed
// fetch yields a single welcome message tailored to the Gmail connection
// state. The caller applies the result to the transcript, guarding against
// a session replaced while the request was in flight.
func (d *Dispatcher) LoadHistory(ctx context.Context, sessionID string, gmailConnected bool) []Message {
	resp, err := d.client.History(ctx, sessionID)
	if err != nil {
		d.logger.Printf("history load failed: %v", err)
		return []Message{WelcomeMessage(gmailConnected)}
	}
	if len(resp.Messages) == 0 {
		return []Message{WelcomeMessage(gmailConnected)}
	}

	out := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, Message{
			ID: m.ID,
			// Stored entries render as assistant output
			Response:      m.Response,
			Timestamp:     parseBackendTime(m.Timestamp),
			IntentData:    m.IntentData,
			NeedsApproval: m.NeedsApproval,
		})
	}
	return out
}

// WelcomeMessage builds the greeting shown at the start of an empty session
func WelcomeMessage(gmailConnected bool) Message {
	text := welcomeBase + welcomeGmailTip
	if gmailConnected {
		text = welcomeBase + welcomeGmailConnected
	}
	m := Message{
		ID:        NewID(WelcomeIDPrefix),
		Response:  text,
		Timestamp: time.Now(),
		IsWelcome: true,
	}
	return m
}

func parseBackendTime(ts string) time.Time {
	if ts == "" {
		return time.Now()
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Now()
}
