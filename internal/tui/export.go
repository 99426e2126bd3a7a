package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// exportChat writes the transcript to elva-chat-YYYY-MM-DD.txt in the
// configured export directory. Runs in a background goroutine.
func (a *App) exportChat() {
	if a.transcript.Len() == 0 {
		a.errorHandler.ShowWarning(a.ctx, "Nothing to export yet")
		return
	}

	dir := a.Config.ExportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		a.errorHandler.HandleError(a.ctx, err, "Export failed")
		return
	}

	path := filepath.Join(dir, fmt.Sprintf("elva-chat-%s.txt", time.Now().Format("2006-01-02")))
	f, err := os.Create(path)
	if err != nil {
		a.errorHandler.HandleError(a.ctx, err, "Export failed")
		return
	}
	defer func() { _ = f.Close() }()

	if err := a.transcript.Export(f); err != nil {
		a.errorHandler.HandleError(a.ctx, err, "Export failed")
		return
	}

	a.errorHandler.ShowSuccess(a.ctx, fmt.Sprintf("Chat exported to %s", path))
}
