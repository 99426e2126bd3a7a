package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message id prefixes for locally generated transcript entries. Prefixes are
// what the transcript deduplicates on, so keep them stable.
const (
	WelcomeIDPrefix    = "welcome_"
	GmailDebugIDPrefix = "gmail_debug_"
	GmailErrorIDPrefix = "gmail_auth_error_"
)

// Message is a single transcript entry, user or assistant
type Message struct {
	ID        string
	Text      string // user input (empty for assistant entries)
	Response  string // assistant output (empty for user entries)
	IsUser    bool
	Timestamp time.Time

	// Rendering/semantic variants
	IsWelcome          bool
	IsSystem           bool
	IsEdit             bool
	IsDirectAutomation bool
	IsGmailSuccess     bool

	// Backend echoes
	IntentData    map[string]any
	NeedsApproval bool
}

// Body returns the displayable text regardless of direction
func (m Message) Body() string {
	if m.IsUser {
		return m.Text
	}
	return m.Response
}

// NewID generates a unique message id with the given prefix ("" for plain
// message ids)
func NewID(prefix string) string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s%d_%s", prefix, time.Now().UnixMilli(), short)
}

// UserMessage builds a user transcript entry for raw input text
func UserMessage(text string) Message {
	return Message{
		ID:        NewID(""),
		Text:      text,
		IsUser:    true,
		Timestamp: time.Now(),
	}
}

// AssistantMessage builds a plain assistant transcript entry
func AssistantMessage(response string) Message {
	return Message{
		ID:        NewID(""),
		Response:  response,
		Timestamp: time.Now(),
	}
}

// SystemMessage builds an assistant entry flagged as a system notice
func SystemMessage(response string) Message {
	m := AssistantMessage(response)
	m.IsSystem = true
	return m
}
