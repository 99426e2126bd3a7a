package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptAppendAndSnapshot(t *testing.T) {
	tr := NewTranscript()

	var notified []string
	tr.SetOnAppend(func(m Message) {
		notified = append(notified, m.Body())
	})

	tr.Append(UserMessage("hello"))
	tr.Append(AssistantMessage("hi there"))

	require.Equal(t, 2, tr.Len())
	msgs := tr.Messages()
	assert.True(t, msgs[0].IsUser)
	assert.Equal(t, "hello", msgs[0].Body())
	assert.False(t, msgs[1].IsUser)
	assert.Equal(t, "hi there", msgs[1].Body())
	assert.Equal(t, []string{"hello", "hi there"}, notified)

	// Snapshot is a copy, not the backing slice
	msgs[0].Text = "mutated"
	assert.Equal(t, "hello", tr.Messages()[0].Body())
}

func TestTranscriptAppendOncePrefix(t *testing.T) {
	tr := NewTranscript()

	first := SystemMessage("credentials missing")
	first.ID = NewID(GmailDebugIDPrefix)
	second := SystemMessage("credentials still missing")
	second.ID = NewID(GmailDebugIDPrefix)

	assert.True(t, tr.AppendOncePrefix(GmailDebugIDPrefix, first))
	assert.False(t, tr.AppendOncePrefix(GmailDebugIDPrefix, second))
	assert.Equal(t, 1, tr.Len())

	// Other prefixes are unaffected
	errMsg := SystemMessage("auth failed")
	errMsg.ID = NewID(GmailErrorIDPrefix)
	assert.True(t, tr.AppendOncePrefix(GmailErrorIDPrefix, errMsg))
	assert.Equal(t, 2, tr.Len())
}

func TestTranscriptReset(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserMessage("hello"))
	tr.Append(AssistantMessage("hi"))

	tr.Reset()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Messages())
}

func TestTranscriptExport(t *testing.T) {
	tr := NewTranscript()
	tr.Append(UserMessage("send an email to john"))
	tr.Append(AssistantMessage("Sure, here is a draft."))

	var sb strings.Builder
	require.NoError(t, tr.Export(&sb))

	assert.Equal(t, "User: send an email to john\n\nAI: Sure, here is a draft.\n", sb.String())
}
