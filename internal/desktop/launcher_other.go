//go:build !windows

package desktop

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"github.com/awsl-project/hostlink/internal/manifest"
)

// BeforeClose keeps a host-managed process alive in the background: its
// windows come back through the launcher menu or a relaunch. Legacy hosts
// quit.
func (a *App) BeforeClose(ctx context.Context) bool {
	a.mu.RLock()
	rt := a.runtime
	a.mu.RUnlock()

	if rt != nil && rt.Mode == manifest.HostManaged {
		a.logger.Info("Window close requested, staying in background")
		runtime.WindowHide(ctx)
		return true
	}
	a.logger.Info("Window close requested")
	return false
}
