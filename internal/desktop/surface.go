package desktop

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// WindowSurface presents the Wails window. Calls before Bind are dropped.
type WindowSurface struct {
	mu  sync.RWMutex
	ctx context.Context
}

// Bind attaches the Wails runtime context from OnStartup.
func (s *WindowSurface) Bind(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
}

func (s *WindowSurface) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// Show brings the window to the foreground.
func (s *WindowSurface) Show() {
	ctx := s.context()
	if ctx == nil {
		return
	}
	runtime.WindowShow(ctx)
	runtime.WindowUnminimise(ctx)
}

// Open shows the window and reloads the frontend, starting a fresh session
// view. Wails v2 has a single native window.
func (s *WindowSurface) Open() {
	ctx := s.context()
	if ctx == nil {
		return
	}
	runtime.WindowShow(ctx)
	runtime.WindowUnminimise(ctx)
	runtime.WindowReloadApp(ctx)
}
