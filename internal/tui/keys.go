package tui

import (
	"strings"

	"github.com/derailed/tcell/v2"
)

// bindKeys installs the global shortcut handler. Bindings come from the
// config and are matched against tcell's normalized key names.
func (a *App) bindKeys() {
	a.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		name := normalizeKeyName(ev)

		switch name {
		case strings.ToLower(a.Keys.Quit):
			a.Stop()
			return nil
		case strings.ToLower(a.Keys.NewChat):
			go a.newChat()
			return nil
		case strings.ToLower(a.Keys.ExportChat):
			go a.exportChat()
			return nil
		case strings.ToLower(a.Keys.ConnectGmail):
			go a.connectGmail()
			return nil
		case strings.ToLower(a.Keys.GmailDebug):
			go a.gmailDebug()
			return nil
		case strings.ToLower(a.Keys.ToggleTheme):
			go a.toggleTheme()
			return nil
		case strings.ToLower(a.Keys.Help):
			a.toggleHelp()
			return nil
		}
		return ev
	})
}

// normalizeKeyName maps an event to a config-style binding like "ctrl+n"
func normalizeKeyName(ev *tcell.EventKey) string {
	return strings.ToLower(strings.ReplaceAll(ev.Name(), " ", ""))
}
