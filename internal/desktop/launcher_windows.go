//go:build windows

package desktop

import (
	"context"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// BeforeClose hides the window to the tray; the background service keeps
// accepting connection requests.
func (a *App) BeforeClose(ctx context.Context) bool {
	a.logger.Info("Window close requested, hiding to tray")
	runtime.WindowHide(ctx)
	return true
}
