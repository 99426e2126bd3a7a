package tui

import (
	"fmt"
	"strings"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// toggleHelp shows or hides the shortcut overlay. Event loop only.
func (a *App) toggleHelp() {
	if a.showHelp {
		a.showHelp = false
		if a.Pages.HasPage(pageHelp) {
			a.Pages.RemovePage(pageHelp)
		}
		a.SetFocus(a.inputField())
		return
	}
	a.showHelp = true

	t := a.currentTheme()

	var b strings.Builder
	b.WriteString("Elva keyboard shortcuts\n\n")
	for _, row := range [][2]string{
		{a.Keys.NewChat, "Start a new chat (fresh session)"},
		{a.Keys.ExportChat, "Export this chat to a text file"},
		{a.Keys.ConnectGmail, "Connect Gmail"},
		{a.Keys.GmailDebug, "Gmail integration debug report"},
		{a.Keys.ToggleTheme, "Toggle dark/light theme"},
		{a.Keys.Help, "Toggle this help"},
		{a.Keys.Quit, "Quit"},
	} {
		fmt.Fprintf(&b, "  %-10s %s\n", row[0], row[1])
	}
	b.WriteString("\nWhile an action is pending you can also just type\n'Send it' to approve or 'Cancel' to abort.\n\nPress any key to close")

	help := tview.NewTextView().SetWrap(false)
	help.SetBorder(true).SetTitle(" Help ")
	help.SetBackgroundColor(tcell.GetColor(t.Background))
	help.SetTextColor(tcell.GetColor(t.Foreground))
	help.SetText(b.String())
	help.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		a.toggleHelp()
		return nil
	})

	a.Pages.AddPage(pageHelp, center(help, 58, 16), true, true)
	a.SetFocus(help)
}
