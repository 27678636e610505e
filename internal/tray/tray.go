// Package tray provides a system tray menu for adjusting and monitoring a running session.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/furkanemreguler/Harder-Better-Faster-Stronger/internal/trigger"
)

// Tray represents the system tray menu.
type Tray struct {
	onBigger    func()
	onSmaller   func()
	onToggle    func(enabled bool)
	onDashboard func()
	onQuit      func()
	enabled     bool
	radii       trigger.Radii
	last        string
	mu          sync.RWMutex

	// Menu items stored for later updates
	menuRadii  *systray.MenuItem
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
}

// New creates a new Tray showing r, with triggers enabled.
func New(r trigger.Radii) *Tray {
	return &Tray{
		enabled: true,
		radii:   r,
	}
}

// OnBigger sets the callback for "Bigger touch zones".
func (t *Tray) OnBigger(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onBigger = fn
}

// OnSmaller sets the callback for "Smaller touch zones".
func (t *Tray) OnSmaller(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSmaller = fn
}

// OnToggle sets the callback function to be called when triggers are paused or resumed.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnDashboard sets the callback for "Open dashboard".
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
// This function blocks until Quit is called and must run on the main thread.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("HBFS")
	systray.SetTooltip("Harder Better Faster Stronger")

	t.mu.Lock()
	t.menuRadii = systray.AddMenuItem(RadiiTitle(t.radii), "Current touch-zone sizes")
	t.menuRadii.Disable()
	t.mu.Unlock()

	menuBigger := systray.AddMenuItem("Bigger touch zones", "Grow finger and thumb zones")
	menuSmaller := systray.AddMenuItem("Smaller touch zones", "Shrink finger and thumb zones")
	systray.AddSeparator()

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume triggers")
	t.menuLast = systray.AddMenuItem(LastTitle(t.last), "Last dispatched trigger")
	t.menuLast.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuDashboard := systray.AddMenuItem("Open dashboard...", "Open the control surface in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Stop the session")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-menuBigger.ClickedCh:
				t.handle(func() func() { return t.onBigger })
			case <-menuSmaller.ClickedCh:
				t.handle(func() func() { return t.onSmaller })
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuDashboard.ClickedCh:
				t.handle(func() func() { return t.onDashboard })
			case <-menuQuit.ClickedCh:
				t.handle(func() func() { return t.onQuit })
				systray.Quit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handle reads a callback under the lock and calls it outside.
func (t *Tray) handle(get func() func()) {
	t.mu.RLock()
	callback := get()
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleToggle handles the pause/resume menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// SetRadii updates the radii readout.
func (t *Tray) SetRadii(r trigger.Radii) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.radii = r
	if t.menuRadii != nil {
		t.menuRadii.SetTitle(RadiiTitle(r))
	}
}

// SetLastTrigger updates the last trigger display in the menu.
func (t *Tray) SetLastTrigger(label string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.last = label
	if t.menuLast != nil {
		t.menuLast.SetTitle(LastTitle(label))
	}
}

// IsEnabled returns whether triggers are enabled.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// Radii returns the radii last shown.
func (t *Tray) Radii() trigger.Radii {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.radii
}

// LastTrigger returns the label last shown.
func (t *Tray) LastTrigger() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last
}

// RadiiTitle formats the radii readout.
func RadiiTitle(r trigger.Radii) string {
	return fmt.Sprintf("Zones: finger %dpx, thumb %dpx", r.Finger, r.Thumb)
}

// LastTitle formats the last trigger line.
func LastTitle(label string) string {
	if label == "" {
		return "Last: none"
	}
	return "Last: " + label
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Triggers on"
	}
	return "○ Triggers paused"
}
