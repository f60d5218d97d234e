// Package desktop adapts the Wails window runtime, the system tray and the
// logind sleep notifications to the host interfaces the controller uses.
package desktop

import (
	"context"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/app"
	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/lifecycle"
	"github.com/awsl-project/hostlink/internal/remoteaccess"
)

// BootFunc boots the host once the window runtime is available.
type BootFunc func(ctx context.Context) (*app.Runtime, error)

// App is bound to the Wails frontend and owns the process-level wiring.
type App struct {
	bus    *host.Bus
	boot   BootFunc
	logger *zap.Logger

	mu      sync.RWMutex
	ctx     context.Context
	cancel  context.CancelFunc
	runtime *app.Runtime
}

// NewApp creates the Wails-bound application.
func NewApp(bus *host.Bus, boot BootFunc, logger *zap.Logger) *App {
	return &App{bus: bus, boot: boot, logger: logger}
}

// Startup is the Wails OnStartup hook: it starts the event consumer and
// boots the host.
func (a *App) Startup(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	a.ctx, a.cancel = runCtx, cancel
	a.mu.Unlock()

	rt, err := a.boot(ctx)
	if err != nil {
		// Initialize failures belong to the host's error surface.
		a.logger.Error("Boot completed with error", zap.Error(err))
	}

	a.mu.Lock()
	a.runtime = rt
	a.mu.Unlock()

	go func() {
		if err := a.bus.Run(runCtx); err != nil && runCtx.Err() == nil {
			a.logger.Error("Event loop stopped", zap.Error(err))
		}
	}()
}

// DomReady is the Wails OnDomReady hook.
func (a *App) DomReady(ctx context.Context) {
	a.logger.Debug("Window ready")
}

// Shutdown is the Wails OnShutdown hook.
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	rt, cancel := a.runtime, a.cancel
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if rt != nil {
		if err := rt.Shutdown(); err != nil {
			a.logger.Warn("Service dispose failed during shutdown", zap.Error(err))
		}
	}
	a.logger.Info("Shutdown complete")
}

// Post queues a host event from a producer goroutine.
func (a *App) Post(ev host.Event) {
	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := a.bus.Post(ctx, ev); err != nil {
		a.logger.Warn("Dropped host event", zap.String("kind", string(ev.Kind)), zap.Error(err))
	}
}

// Quit asks Wails to quit; OnShutdown then disposes the service.
func (a *App) Quit() {
	a.mu.RLock()
	ctx := a.ctx
	a.mu.RUnlock()
	if ctx != nil {
		runtime.Quit(ctx)
	}
}

// Status is what the frontend shows about the background service.
type Status struct {
	Mode       string `json:"mode"`
	State      string `json:"state"`
	Generation uint64 `json:"generation"`
	Address    string `json:"address"`
	Sessions   int    `json:"sessions"`
}

// GetStatus is bound to the frontend.
func (a *App) GetStatus() Status {
	a.mu.RLock()
	rt := a.runtime
	a.mu.RUnlock()

	if rt == nil {
		return Status{State: string(lifecycle.Uninitialized)}
	}
	st := Status{
		Mode:       string(rt.Mode),
		State:      string(rt.Controller.State()),
		Generation: rt.Controller.Generation(),
	}
	if svc, ok := rt.Controller.Current().(*remoteaccess.Service); ok {
		st.Address = svc.Addr()
		st.Sessions = svc.SessionCount()
	}
	return st
}
