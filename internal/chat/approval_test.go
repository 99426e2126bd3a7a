package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elva-ai/elva-tui/internal/api"
)

func newApprovalBackend(t *testing.T, status int, reply api.ApproveResponse) (*api.Client, *[]api.ApproveRequest) {
	t.Helper()

	var captured []api.ApproveRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/approve", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req api.ApproveRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		captured = append(captured, req)

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)

	return api.NewClient(srv.URL, 2*time.Second), &captured
}

func intent() map[string]any {
	return map[string]any{
		"intent":    "send_email",
		"recipient": "john@example.com",
		"subject":   "Meeting",
		"body":      "See you at 3pm",
	}
}

func TestApprovalOpenStartsInEditMode(t *testing.T) {
	ctrl := NewApprovalController(nil, NewTranscript())

	overwrote := ctrl.Open("msg_1", "Send an email to John", intent())
	assert.False(t, overwrote)
	assert.Equal(t, StatePendingEdit, ctrl.State())

	pending := ctrl.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, "msg_1", pending.MessageID)
	assert.Equal(t, intent(), pending.Original)
}

func TestApprovalOpenOverwritesPending(t *testing.T) {
	ctrl := NewApprovalController(nil, NewTranscript())

	assert.False(t, ctrl.Open("msg_1", "first", intent()))
	assert.True(t, ctrl.Open("msg_2", "second", intent()))
	assert.Equal(t, "msg_2", ctrl.Pending().MessageID)
}

func TestApprovalEditableFields(t *testing.T) {
	ctrl := NewApprovalController(nil, NewTranscript())
	ctrl.Open("msg_1", "send email", intent())

	fields := ctrl.EditableFields()
	require.Len(t, fields, 3)

	// Sorted by key, intent excluded
	assert.Equal(t, "body", fields[0].Key)
	assert.Equal(t, "recipient", fields[1].Key)
	assert.Equal(t, "subject", fields[2].Key)
}

func TestApprovalSetField(t *testing.T) {
	ctrl := NewApprovalController(nil, NewTranscript())
	ctrl.Open("msg_1", "send email", intent())

	require.NoError(t, ctrl.SetField("subject", "Rescheduled"))
	assert.Error(t, ctrl.SetField("intent", "something_else"))

	pending := ctrl.Pending()
	assert.Equal(t, "Rescheduled", pending.Edited["subject"])
	// The original is untouched
	assert.Equal(t, "Meeting", pending.Original["subject"])
}

func TestApprovalToggleEditMode(t *testing.T) {
	ctrl := NewApprovalController(nil, NewTranscript())
	ctrl.Open("msg_1", "send email", intent())

	assert.Equal(t, StatePendingView, ctrl.ToggleEditMode())
	assert.Equal(t, StatePendingEdit, ctrl.ToggleEditMode())
}

func TestApprovalResolveApproved(t *testing.T) {
	client, captured := newApprovalBackend(t, http.StatusOK, api.ApproveResponse{Success: true})
	tr := NewTranscript()
	ctrl := NewApprovalController(client, tr)

	ctrl.Open("msg_1", "send email", intent())
	require.NoError(t, ctrl.SetField("subject", "Rescheduled"))

	require.NoError(t, ctrl.Resolve(context.Background(), "session_1", true))

	require.Len(t, *captured, 1)
	req := (*captured)[0]
	assert.Equal(t, "session_1", req.SessionID)
	assert.Equal(t, "msg_1", req.MessageID)
	assert.True(t, req.Approved)
	require.NotNil(t, req.EditedData)
	assert.Equal(t, "Rescheduled", req.EditedData["subject"])

	// Edit echo before the outcome message, then reset to idle
	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[0].IsEdit)
	assert.Contains(t, msgs[0].Body(), "Updated details")
	assert.Equal(t, MsgApprovalExecuted, msgs[1].Body())
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Nil(t, ctrl.Pending())
}

func TestApprovalResolveRejected(t *testing.T) {
	client, captured := newApprovalBackend(t, http.StatusOK, api.ApproveResponse{Success: true})
	tr := NewTranscript()
	ctrl := NewApprovalController(client, tr)

	ctrl.Open("msg_1", "send email", intent())
	require.NoError(t, ctrl.Resolve(context.Background(), "session_1", false))

	require.Len(t, *captured, 1)
	assert.False(t, (*captured)[0].Approved)

	// No edits were made, so no edit echo
	msgs := tr.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, MsgApprovalCancelled, msgs[0].Body())
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestApprovalResolveFailureStillResets(t *testing.T) {
	client, _ := newApprovalBackend(t, http.StatusInternalServerError, api.ApproveResponse{})
	tr := NewTranscript()
	ctrl := NewApprovalController(client, tr)

	ctrl.Open("msg_1", "send email", intent())
	err := ctrl.Resolve(context.Background(), "session_1", true)
	require.Error(t, err)

	msgs := tr.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, MsgApprovalFailed, msgs[0].Body())

	// Failed submissions are not retried
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Nil(t, ctrl.Pending())
	assert.ErrorIs(t, ctrl.Resolve(context.Background(), "session_1", true), ErrNoPendingApproval)
}

func TestApprovalResolveAppendsAutomationResponse(t *testing.T) {
	client, _ := newApprovalBackend(t, http.StatusOK, api.ApproveResponse{
		Success:     true,
		N8NResponse: map[string]any{"workflow": "email", "status": "queued"},
	})
	tr := NewTranscript()
	ctrl := NewApprovalController(client, tr)

	ctrl.Open("msg_1", "send email", intent())
	require.NoError(t, ctrl.Resolve(context.Background(), "session_1", true))

	msgs := tr.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, MsgApprovalExecuted, msgs[0].Body())
	assert.Contains(t, msgs[1].Body(), "Automation Response")
	assert.Contains(t, msgs[1].Body(), "queued")
}

func TestApprovalResolveNoPending(t *testing.T) {
	ctrl := NewApprovalController(nil, NewTranscript())
	assert.ErrorIs(t, ctrl.Resolve(context.Background(), "session_1", true), ErrNoPendingApproval)
}

func TestApprovalDiscard(t *testing.T) {
	ctrl := NewApprovalController(nil, NewTranscript())
	ctrl.Open("msg_1", "send email", intent())

	ctrl.Discard()
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Nil(t, ctrl.Pending())
}
