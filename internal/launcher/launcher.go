// Package launcher implements the strategies that bring the application's
// primary surface to the user.
//
// Two variants exist:
//   - SingleWindow: legacy hosts with one application window
//   - HostManaged: hosts that open windows on demand and deliver menu and
//     launch notifications to the background process
package launcher

import (
	"fmt"

	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/manifest"
)

const (
	// NewWindowMenuID identifies the launcher menu entry that opens a window.
	NewWindowMenuID = "new-window"
	// NewWindowMessageKey is the catalog key for that entry's title.
	NewWindowMessageKey = "NEW_WINDOW"
	// LauncherContext is the menu context the entry is shown in.
	LauncherContext = "launcher"
)

// Launcher presents the application's primary interactive surface.
type Launcher interface {
	Launch()
}

// Surface is the host's window primitive.
type Surface interface {
	// Show brings the existing window to the foreground.
	Show()
	// Open creates a new window.
	Open()
}

// Messages looks up localized strings.
type Messages interface {
	GetMessage(key string) string
}

// SingleWindow re-shows the one application window.
type SingleWindow struct {
	surface Surface
}

// NewSingleWindow creates the legacy launcher.
func NewSingleWindow(surface Surface) *SingleWindow {
	return &SingleWindow{surface: surface}
}

// Launch shows the window.
func (l *SingleWindow) Launch() {
	l.surface.Show()
}

// HostManaged opens a new window per launch and is driven by host events.
type HostManaged struct {
	surface Surface
}

// NewHostManaged creates the multi-window launcher. Call Register once.
func NewHostManaged(surface Surface) *HostManaged {
	return &HostManaged{surface: surface}
}

// Launch opens a new window.
func (l *HostManaged) Launch() {
	l.surface.Open()
}

// Register creates the "new window" menu entry and subscribes Launch to the
// entry's clicks and to the host's launched notification. It must run exactly
// once per process; a second call duplicates the handlers.
func (l *HostManaged) Register(menus host.MenuRegistrar, events host.EventSource, messages Messages) ([]*host.Subscription, error) {
	err := menus.Create(host.MenuItem{
		ID:       NewWindowMenuID,
		Contexts: []string{LauncherContext},
		Title:    messages.GetMessage(NewWindowMessageKey),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s menu entry: %w", NewWindowMenuID, err)
	}

	onClicked := events.Subscribe(host.MenuClicked, func(ev host.Event) {
		if ev.MenuItemID == NewWindowMenuID {
			l.Launch()
		}
	})
	onLaunched := events.Subscribe(host.Launched, func(host.Event) {
		l.Launch()
	})
	return []*host.Subscription{onClicked, onLaunched}, nil
}

// New returns the launcher variant for mode.
func New(mode manifest.LaunchMode, surface Surface) Launcher {
	if mode == manifest.HostManaged {
		return NewHostManaged(surface)
	}
	return NewSingleWindow(surface)
}
