package tui

import (
	"log"
	"os"
	"path/filepath"

	"github.com/elva-ai/elva-tui/internal/config"
)

// initLogger initializes the file logger under ~/.config/elva/elva.log (or
// the configured path) if possible
func (a *App) initLogger() {
	if a.logger != nil && a.logFile != nil {
		return
	}
	lf := a.Config.LogFile
	if lf == "" {
		logDir := config.DefaultLogDir()
		if logDir == "" {
			return
		}
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return
		}
		lf = filepath.Join(logDir, "elva.log")
	}
	if f, err := os.OpenFile(lf, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		a.logFile = f
		a.logger = log.New(f, "[elva] ", log.LstdFlags|log.Lmicroseconds)
	}
}

// closeLogger closes the log file if opened
func (a *App) closeLogger() {
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}
