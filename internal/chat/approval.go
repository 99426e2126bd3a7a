package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/elva-ai/elva-tui/internal/api"
)

// ApprovalState tracks the approval workflow:
// idle -> pending(edit) <-> pending(view) -> idle
type ApprovalState int

const (
	StateIdle ApprovalState = iota
	StatePendingEdit
	StatePendingView
)

// Canned transcript messages for approval outcomes
const (
	MsgApprovalExecuted  = "✅ Perfect! Action executed successfully! Your request has been sent to the automation system."
	MsgApprovalCancelled = "❌ No worries! Action cancelled as requested."
	MsgApprovalFailed    = "⚠️ Something went wrong with the approval. Please try again!"
	MsgApprovalReplaced  = "⚠️ A new action needs review. The previous pending action was replaced without executing."
)

// ErrNoPendingApproval is returned when resolving with nothing pending
var ErrNoPendingApproval = fmt.Errorf("no pending approval")

// PendingApproval holds the AI-proposed action under review. Original is the
// backend's intent data and is never mutated; Edited starts as a copy and
// absorbs field changes.
type PendingApproval struct {
	MessageID string
	Summary   string
	Original  map[string]any
	Edited    map[string]any

	editEngaged bool
}

// Field is one editable intent-data entry
type Field struct {
	Key   string
	Value any
}

// ApprovalController owns the at-most-one pending approval and its
// resolution through the backend approval endpoint.
type ApprovalController struct {
	mu         sync.Mutex
	client     *api.Client
	transcript *Transcript
	state      ApprovalState
	pending    *PendingApproval
}

// NewApprovalController creates an idle controller
func NewApprovalController(client *api.Client, transcript *Transcript) *ApprovalController {
	return &ApprovalController{
		client:     client,
		transcript: transcript,
		state:      StateIdle,
	}
}

// Open enters pending(edit) for a backend response that needs approval.
// A second open while one action is pending replaces it; the caller should
// surface MsgApprovalReplaced when overwrote is true.
func (c *ApprovalController) Open(messageID, summary string, intentData map[string]any) (overwrote bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	overwrote = c.pending != nil

	edited := make(map[string]any, len(intentData))
	for k, v := range intentData {
		edited[k] = v
	}

	c.pending = &PendingApproval{
		MessageID:   messageID,
		Summary:     summary,
		Original:    intentData,
		Edited:      edited,
		editEngaged: true, // review starts in edit mode
	}
	c.state = StatePendingEdit
	return overwrote
}

// State returns the current workflow state
func (c *ApprovalController) State() ApprovalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pending returns a copy of the pending action, or nil when idle
func (c *ApprovalController) Pending() *PendingApproval {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return nil
	}
	cp := *c.pending
	return &cp
}

// ToggleEditMode flips pending(edit) <-> pending(view). Field data is
// retained across toggles; only presentation changes.
func (c *ApprovalController) ToggleEditMode() ApprovalState {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StatePendingEdit:
		c.state = StatePendingView
	case StatePendingView:
		c.state = StatePendingEdit
		c.pending.editEngaged = true
	}
	return c.state
}

// SetField updates one intent-data field on the editable copy. The intent
// key itself is not editable.
func (c *ApprovalController) SetField(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return ErrNoPendingApproval
	}
	if key == "intent" {
		return fmt.Errorf("field %q is not editable", key)
	}
	c.pending.Edited[key] = value
	return nil
}

// EditableFields returns the editable projection of the intent data in a
// stable order, excluding the intent key
func (c *ApprovalController) EditableFields() []Field {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return nil
	}
	keys := make([]string, 0, len(c.pending.Edited))
	for k := range c.pending.Edited {
		if k == "intent" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Field{Key: k, Value: c.pending.Edited[k]})
	}
	return fields
}

// Discard drops the pending action without telling the backend. Used when
// the session is replaced while an action is pending.
func (c *ApprovalController) Discard() {
	c.mu.Lock()
	c.pending = nil
	c.state = StateIdle
	c.mu.Unlock()
}

// Resolve submits the approve/cancel decision and unconditionally resets to
// idle, success or failure. Edited data travels only when edit mode was
// engaged; an edit-echo message is appended first when fields actually
// changed. Failed submissions are not retried; the user must re-trigger the
// action.
func (c *ApprovalController) Resolve(ctx context.Context, sessionID string, approved bool) error {
	c.mu.Lock()
	pending := c.pending
	// Reset happens no matter how the request goes
	c.pending = nil
	c.state = StateIdle
	c.mu.Unlock()

	if pending == nil {
		return ErrNoPendingApproval
	}

	var editedData map[string]any
	if pending.editEngaged {
		editedData = pending.Edited
	}

	if pending.editEngaged && !reflect.DeepEqual(pending.Original, pending.Edited) {
		c.transcript.Append(editEchoMessage(pending.Edited))
	}

	resp, err := c.client.Approve(ctx, api.ApproveRequest{
		SessionID:  sessionID,
		MessageID:  pending.MessageID,
		Approved:   approved,
		EditedData: editedData,
	})
	if err != nil {
		c.transcript.Append(AssistantMessage(MsgApprovalFailed))
		return err
	}

	if approved {
		c.transcript.Append(AssistantMessage(MsgApprovalExecuted))
	} else {
		c.transcript.Append(AssistantMessage(MsgApprovalCancelled))
	}

	if approved && len(resp.N8NResponse) > 0 {
		detail, merr := json.MarshalIndent(resp.N8NResponse, "", "  ")
		if merr == nil {
			c.transcript.Append(SystemMessage("🔗 Automation Response: " + string(detail)))
		}
	}

	return nil
}

// editEchoMessage renders the edited field set into an edit-flagged entry so
// the user sees what changed before execution
func editEchoMessage(edited map[string]any) Message {
	detail, err := json.MarshalIndent(edited, "", "  ")
	if err != nil {
		detail = []byte(fmt.Sprintf("%v", edited))
	}
	m := AssistantMessage("📝 Updated details:\n" + string(detail))
	m.IsEdit = true
	return m
}
