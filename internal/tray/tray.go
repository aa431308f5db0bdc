// Package tray provides a system tray status menu for the swing analyzer.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/swingscope/internal/app"
	"github.com/ayusman/swingscope/internal/swing"
)

// Tray represents the system tray application.
type Tray struct {
	onDashboard func()
	onQuit      func()
	analyzing   bool
	last        string
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuStatus *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new idle Tray instance.
func New() *Tray {
	return &Tray{last: LastTitle(nil)}
}

// OnDashboard sets the callback function to be called when the dashboard menu item is clicked.
func (t *Tray) OnDashboard(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDashboard = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// StatusTitle is the label of the status item.
func StatusTitle(analyzing bool) string {
	if analyzing {
		return "○ Analyzing…"
	}
	return "● Idle"
}

// LastTitle summarises the last finished analysis, or says so when there is none.
func LastTitle(sum *swing.Summary) string {
	if sum == nil {
		return "Last: none"
	}
	return fmt.Sprintf("Last: %d swings (%d FH / %d BH / %d Serve)",
		sum.Total, sum.Forehand, sum.Backhand, sum.Serve)
}

// HandleEvent updates the menu from a runner event. It is meant to be
// registered with Runner.Subscribe.
func (t *Tray) HandleEvent(ev app.Event) {
	t.mu.Lock()
	switch ev.Type {
	case app.EventStarted:
		t.analyzing = true
	case app.EventCompleted:
		t.analyzing = false
		if ev.Analysis != nil && ev.Analysis.Result != nil {
			t.last = LastTitle(&ev.Analysis.Result.Summary)
		}
	case app.EventFailed:
		t.analyzing = false
		t.last = "Last: failed"
	}
	analyzing, last := t.analyzing, t.last
	status, lastItem := t.menuStatus, t.menuLast
	t.mu.Unlock()

	if status != nil {
		status.SetTitle(StatusTitle(analyzing))
	}
	if lastItem != nil {
		lastItem.SetTitle(last)
	}
}

// IsAnalyzing reports whether a run is in progress.
func (t *Tray) IsAnalyzing() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.analyzing
}

// Last returns the current label of the last-run item.
func (t *Tray) Last() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Swingscope")
	systray.SetTooltip("Swingscope swing analysis")

	t.mu.Lock()
	t.menuStatus = systray.AddMenuItem(StatusTitle(t.analyzing), "Analysis status")
	t.menuStatus.Disable()
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem(t.last, "Last analysis")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open Dashboard...", "Open the dashboard in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Swingscope")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuDashboard.ClickedCh:
				t.handleDashboard()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleDashboard handles the dashboard menu item click.
func (t *Tray) handleDashboard() {
	t.mu.RLock()
	callback := t.onDashboard
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}
