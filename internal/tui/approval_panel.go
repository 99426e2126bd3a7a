package tui

import (
	"encoding/json"
	"fmt"

	"github.com/derailed/tcell/v2"
	"github.com/derailed/tview"

	"github.com/elva-ai/elva-tui/internal/chat"
	"github.com/mattn/go-runewidth"
)

// showApprovalPanel opens (or rebuilds) the review panel for the pending
// action, in whichever mode the controller is in. Event loop only.
func (a *App) showApprovalPanel() {
	pending := a.approvals.Pending()
	if pending == nil {
		a.hideApprovalPanel()
		return
	}

	var content tview.Primitive
	if a.approvals.State() == chat.StatePendingEdit {
		content = a.buildApprovalForm(pending)
	} else {
		content = a.buildApprovalViewer(pending)
	}

	if a.Pages.HasPage(pageApproval) {
		a.Pages.RemovePage(pageApproval)
	}
	a.Pages.AddPage(pageApproval, center(content, 72, 20), true, true)
	a.SetFocus(content)
}

// hideApprovalPanel closes the panel without resolving; the pending action
// stays resolvable by keyword. Event loop only.
func (a *App) hideApprovalPanel() {
	if a.Pages.HasPage(pageApproval) {
		a.Pages.RemovePage(pageApproval)
	}
	a.SetFocus(a.inputField())
}

// buildApprovalForm is the edit-mode panel: one input per intent-data field,
// pre-filled with the AI-generated values
func (a *App) buildApprovalForm(pending *chat.PendingApproval) tview.Primitive {
	t := a.currentTheme()

	form := tview.NewForm()
	form.SetBorder(true)
	form.SetTitle(runewidth.Truncate(fmt.Sprintf(" ✨ Review: %s ", pending.Summary), 68, "… "))
	form.SetBackgroundColor(tcell.GetColor(t.Background))
	form.SetTitleColor(tcell.GetColor(t.Foreground))
	form.SetLabelColor(tcell.GetColor(t.Edit))
	form.SetFieldBackgroundColor(tcell.GetColor(t.Background))
	form.SetFieldTextColor(tcell.GetColor(t.Foreground))
	form.SetButtonBackgroundColor(tcell.GetColor(t.Info))

	for _, f := range a.approvals.EditableFields() {
		key := f.Key
		form.AddInputField(key, fieldString(f.Value), 0, nil, func(text string) {
			_ = a.approvals.SetField(key, text)
		})
	}

	form.AddButton("✅ Approve", func() {
		go a.resolveApproval(true)
	})
	form.AddButton("❌ Cancel Action", func() {
		go a.resolveApproval(false)
	})
	form.AddButton("👁 View JSON", func() {
		a.approvals.ToggleEditMode()
		a.showApprovalPanel()
	})
	form.AddButton("Close", func() {
		a.hideApprovalPanel()
	})

	form.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape {
			a.hideApprovalPanel()
			return nil
		}
		return ev
	})
	return form
}

// buildApprovalViewer is the view-mode panel: the raw action data as JSON
func (a *App) buildApprovalViewer(pending *chat.PendingApproval) tview.Primitive {
	t := a.currentTheme()

	data, err := json.MarshalIndent(pending.Edited, "", "  ")
	if err != nil {
		data = []byte(fmt.Sprintf("%v", pending.Edited))
	}

	viewer := tview.NewTextView().
		SetDynamicColors(false).
		SetWrap(true).
		SetScrollable(true)
	viewer.SetBorder(true)
	viewer.SetTitle(runewidth.Truncate(fmt.Sprintf(" ✨ Review: %s ", pending.Summary), 68, "… "))
	viewer.SetBackgroundColor(tcell.GetColor(t.Background))
	viewer.SetTextColor(tcell.GetColor(t.Foreground))
	viewer.SetText(string(data) + "\n\nEnter approve • c cancel • e edit fields • Esc close")

	viewer.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch {
		case ev.Key() == tcell.KeyEscape:
			a.hideApprovalPanel()
			return nil
		case ev.Key() == tcell.KeyEnter:
			go a.resolveApproval(true)
			return nil
		case ev.Rune() == 'c':
			go a.resolveApproval(false)
			return nil
		case ev.Rune() == 'e':
			a.approvals.ToggleEditMode()
			a.showApprovalPanel()
			return nil
		}
		return ev
	})
	return viewer
}

func fieldString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return ""
	default:
		if data, err := json.Marshal(val); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", val)
	}
}

// center wraps a primitive in a fixed-size centered overlay
func center(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 0, true).
			AddItem(nil, 0, 1, false), width, 0, true).
		AddItem(nil, 0, 1, false)
}
