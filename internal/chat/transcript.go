package chat

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Transcript is the ordered, append-only in-memory list of messages for the
// current session. It is hydrated once from backend history on session start
// and never reordered; "reset" only happens when the session is replaced.
type Transcript struct {
	mu       sync.RWMutex
	messages []Message
	onAppend func(Message)
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{}
}

// SetOnAppend registers a single observer notified after every append.
// The TUI uses this to refresh the transcript view.
func (t *Transcript) SetOnAppend(fn func(Message)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onAppend = fn
}

// Append adds a message at the end of the transcript
func (t *Transcript) Append(msg Message) {
	t.mu.Lock()
	t.messages = append(t.messages, msg)
	fn := t.onAppend
	t.mu.Unlock()

	if fn != nil {
		fn(msg)
	}
}

// AppendOncePrefix appends msg only if no existing message id carries the
// given prefix. Returns true when the message was appended. Used to keep
// repeated Gmail status polls from spamming diagnostics.
func (t *Transcript) AppendOncePrefix(prefix string, msg Message) bool {
	t.mu.Lock()
	for _, m := range t.messages {
		if strings.HasPrefix(m.ID, prefix) {
			t.mu.Unlock()
			return false
		}
	}
	t.messages = append(t.messages, msg)
	fn := t.onAppend
	t.mu.Unlock()

	if fn != nil {
		fn(msg)
	}
	return true
}

// Messages returns a snapshot copy in display order
func (t *Transcript) Messages() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// Reset discards all messages; called when the session is replaced
func (t *Transcript) Reset() {
	t.mu.Lock()
	t.messages = nil
	t.mu.Unlock()
}

// Export writes the transcript as plain text: "User:"/"AI:" prefixed lines
// separated by blank lines, matching the exported chat file layout.
func (t *Transcript) Export(w io.Writer) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i, m := range t.messages {
		speaker := "AI"
		if m.IsUser {
			speaker = "User"
		}
		sep := "\n\n"
		if i == len(t.messages)-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(w, "%s: %s%s", speaker, m.Body(), sep); err != nil {
			return err
		}
	}
	return nil
}
