package ui

import (
	"time"

	"sapcca/client/internal/config"
)

// toast flashes a transient notification in the status bar, the terminal
// analogue of the web client's toast popups. Must be called on the UI
// goroutine; use toastAsync from background goroutines.
func (a *App) toast(message string, isError bool) {
	if a.statusBar == nil {
		return
	}
	a.toastSeq++
	seq := a.toastSeq

	a.statusBar.SetText(" " + message + " ")
	if isError {
		a.statusBar.SetBackgroundColor(ColorToastErr)
	} else {
		a.statusBar.SetBackgroundColor(ColorToastOK)
	}

	go func() {
		time.Sleep(config.ToastDuration)
		a.app.QueueUpdateDraw(func() {
			// A newer toast owns the bar now; leave it alone.
			if a.toastSeq != seq || a.statusBar == nil {
				return
			}
			a.statusBar.SetBackgroundColor(ColorStatusBar)
			a.statusBar.SetText(a.statusHint)
		})
	}()
}

// toastAsync schedules a toast from any goroutine.
func (a *App) toastAsync(message string, isError bool) {
	a.app.QueueUpdateDraw(func() {
		a.toast(message, isError)
	})
}

// setStatusHint sets the persistent key-binding hint shown when no toast is
// active.
func (a *App) setStatusHint(hint string) {
	a.statusHint = hint
	if a.statusBar != nil {
		a.statusBar.SetBackgroundColor(ColorStatusBar)
		a.statusBar.SetText(hint)
	}
}
