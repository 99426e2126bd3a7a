package tui

import (
	"fmt"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"
)

// View names in the views map
const (
	viewHeader     = "header"
	viewTranscript = "transcript"
	viewStatus     = "status"
	viewInput      = "input"
)

// Page names
const (
	pageMain     = "main"
	pageApproval = "approval"
	pageHelp     = "help"
)

// initViews builds the main layout: header, transcript, status line, input
func (a *App) initViews() {
	header := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)

	transcript := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true).
		SetScrollable(true)
	transcript.SetBorder(true).SetTitle(" Chat ")

	status := tview.NewTextView().
		SetDynamicColors(false).
		SetWrap(false)

	input := tview.NewInputField().
		SetLabel("You ❯ ").
		SetPlaceholder("Ask me anything or tell me what to do!")
	input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := input.GetText()
		input.SetText("")
		go a.submit(text)
	})

	a.views[viewHeader] = header
	a.views[viewTranscript] = transcript
	a.views[viewStatus] = status
	a.views[viewInput] = input

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(transcript, 0, 1, false).
		AddItem(status, 1, 0, false).
		AddItem(input, 1, 0, true)

	a.Pages.AddPage(pageMain, main, true, true)

	a.applyTheme()
	a.updateHeader()
}

func (a *App) headerView() *tview.TextView {
	return a.views[viewHeader].(*tview.TextView)
}

func (a *App) transcriptView() *tview.TextView {
	return a.views[viewTranscript].(*tview.TextView)
}

func (a *App) statusView() *tview.TextView {
	return a.views[viewStatus].(*tview.TextView)
}

func (a *App) inputField() *tview.InputField {
	return a.views[viewInput].(*tview.InputField)
}

// applyTheme pushes the active palette onto every view. Event loop only.
func (a *App) applyTheme() {
	t := a.currentTheme()
	bg := tcell.GetColor(t.Background)
	fg := tcell.GetColor(t.Foreground)

	header := a.headerView()
	header.SetBackgroundColor(bg)
	header.SetTextColor(fg)

	transcript := a.transcriptView()
	transcript.SetBackgroundColor(bg)
	transcript.SetTextColor(fg)
	transcript.SetBorderColor(tcell.GetColor(t.Info))
	transcript.SetTitleColor(fg)

	status := a.statusView()
	status.SetBackgroundColor(bg)
	status.SetTextColor(tcell.GetColor(t.Info))

	input := a.inputField()
	input.SetBackgroundColor(bg)
	input.SetLabelColor(tcell.GetColor(t.User))
	input.SetFieldBackgroundColor(bg)
	input.SetFieldTextColor(fg)
	input.SetPlaceholderTextColor(tcell.GetColor(t.System))

	status.SetText(a.statusBaseline())
}

// updateHeader redraws the title bar with the Gmail connection badge.
// Event loop only.
func (a *App) updateHeader() {
	t := a.currentTheme()
	st := a.gmail.Status()

	badge := fmt.Sprintf("[%s]⏳ Checking Gmail…[-]", t.Warning)
	switch {
	case st.Loading:
	case st.Authenticated:
		badge = fmt.Sprintf("[%s]✅ Gmail Connected[-]", t.Success)
	default:
		badge = fmt.Sprintf("[%s]🔗 Connect Gmail (%s)[-]", t.Warning, a.Keys.ConnectGmail)
	}

	a.headerView().SetText(fmt.Sprintf("[%s::b]🤖 Elva AI[-::-] • Your personal smart assistant  %s", t.Welcome, badge))
	a.statusView().SetText(a.statusBaseline())
}
