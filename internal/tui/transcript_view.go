package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/derailed/tview"
	"github.com/mattn/go-runewidth"

	"github.com/elva-ai/elva-tui/internal/chat"
	"github.com/elva-ai/elva-tui/internal/config"
)

// Intents whose raw data adds nothing for the user: plain conversation and
// read-only inbox checks
var hiddenIntents = map[string]bool{
	"general_chat":       true,
	"check_gmail_inbox":  true,
	"check_gmail_unread": true,
	"gmail_inbox_check":  true,
}

// renderTranscript redraws the whole chat view from the transcript snapshot.
// Event loop only.
func (a *App) renderTranscript() {
	t := a.currentTheme()
	view := a.transcriptView()

	var b strings.Builder
	for i, m := range a.transcript.Messages() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		a.renderMessage(&b, t, m)
	}

	view.SetText(b.String())
	view.ScrollToEnd()
}

func (a *App) renderMessage(b *strings.Builder, t *config.Theme, m chat.Message) {
	color := t.Assistant
	speaker := "Elva"
	switch {
	case m.IsUser:
		color = t.User
		speaker = "You"
	case m.IsWelcome:
		color = t.Welcome
	case m.IsEdit:
		color = t.Edit
	case m.IsSystem:
		color = t.System
	case m.IsDirectAutomation:
		color = t.DirectAutomation
	}

	stamp := ""
	if !m.Timestamp.IsZero() {
		stamp = m.Timestamp.Format("15:04")
	}

	fmt.Fprintf(b, "[%s::b]%s[-::-] [%s]%s[-]\n", color, speaker, t.System, stamp)
	fmt.Fprintf(b, "[%s]%s[-]", color, tview.Escape(m.Body()))

	if block := intentBlock(m); block != "" {
		fmt.Fprintf(b, "\n[%s]%s[-]", t.System, tview.Escape(block))
	}
	if m.IsWelcome {
		fmt.Fprintf(b, "\n[%s]✨ Ready to help you![-]", t.Welcome)
	}
}

// intentBlock renders the proposed action data under an assistant message,
// skipping intents that carry nothing reviewable
func intentBlock(m chat.Message) string {
	if m.IsUser || len(m.IntentData) == 0 {
		return ""
	}
	if intent, _ := m.IntentData["intent"].(string); hiddenIntents[intent] {
		return ""
	}

	title := "📦 Action details"
	if intent, _ := m.IntentData["intent"].(string); intent != "" {
		title = runewidth.Truncate(fmt.Sprintf("📦 Action details (%s)", intent), 60, "…")
	}

	data, err := json.MarshalIndent(m.IntentData, "", "  ")
	if err != nil {
		return ""
	}
	return title + "\n" + string(data)
}
