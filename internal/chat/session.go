package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewSessionID generates an opaque session identifier. Sessions are created
// once at startup, replaced (never mutated) on "new chat", and not persisted
// across runs.
func NewSessionID() string {
	short := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), short)
}
