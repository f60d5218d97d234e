//go:build !windows

package desktop

import (
	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/launcher"
)

// TrayMenu records menu entries on platforms without a tray. The launcher
// entry is reachable through the window and through relaunching the app.
type TrayMenu struct {
	*host.Registry
	logger *zap.Logger
}

// NewTrayMenu creates a tray menu without a native tray.
func NewTrayMenu(post func(host.Event), messages launcher.Messages, quit func(), logger *zap.Logger) *TrayMenu {
	return &TrayMenu{Registry: host.NewRegistry(), logger: logger}
}

// Start is a no-op on non-Windows platforms.
func (t *TrayMenu) Start() {
	t.logger.Debug("No system tray on this platform")
}

// UpdateStatus is a no-op on non-Windows platforms.
func (t *TrayMenu) UpdateStatus(Status) {}
