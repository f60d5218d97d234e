package desktop

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/host"
)

const (
	logindDest      = "org.freedesktop.login1"
	logindPath      = dbus.ObjectPath("/org/freedesktop/login1")
	logindInterface = "org.freedesktop.login1.Manager"
	prepareForSleep = "PrepareForSleep"
)

// SleepEvent maps a logind PrepareForSleep signal to a host event: true is a
// pending suspend, false means the system woke up or the sleep was aborted.
func SleepEvent(sig *dbus.Signal) (host.Event, bool) {
	if sig == nil || sig.Name != logindInterface+"."+prepareForSleep || len(sig.Body) != 1 {
		return host.Event{}, false
	}
	start, ok := sig.Body[0].(bool)
	if !ok {
		return host.Event{}, false
	}
	if start {
		return host.Event{Kind: host.Suspend}, true
	}
	return host.Event{Kind: host.SuspendCanceled}, true
}

// Inhibitor takes a sleep delay lock. Closing the returned lock lets the
// system proceed.
type Inhibitor interface {
	Inhibit() (io.Closer, error)
}

type logindInhibitor struct {
	obj dbus.BusObject
}

func (l logindInhibitor) Inhibit() (io.Closer, error) {
	var fd dbus.UnixFD
	err := l.obj.Call(logindInterface+".Inhibit", 0,
		"sleep", "hostlink", "Stopping remote access", "delay").Store(&fd)
	if err != nil {
		return nil, fmt.Errorf("failed to take sleep delay lock: %w", err)
	}
	return os.NewFile(uintptr(fd), "logind-inhibit"), nil
}

// SleepWatcher forwards system sleep notifications from logind. It holds a
// delay lock while awake so that the service is disposed before the system
// sleeps.
type SleepWatcher struct {
	deliver   func(host.Event)
	inhibitor Inhibitor
	logger    *zap.Logger
	lock      io.Closer
}

// NewSleepWatcher creates a watcher. deliver must return only after the
// event's listeners have run, e.g. host.Bus.Dispatch.
func NewSleepWatcher(deliver func(host.Event), logger *zap.Logger) *SleepWatcher {
	return &SleepWatcher{deliver: deliver, logger: logger}
}

// Run listens until ctx is done. It fails fast when the system bus is not
// available, e.g. outside Linux.
func (w *SleepWatcher) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSystemBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to connect to system bus: %w", err)
	}
	defer conn.Close()

	if err := conn.AddMatchSignal(
		dbus.WithMatchObjectPath(logindPath),
		dbus.WithMatchInterface(logindInterface),
		dbus.WithMatchMember(prepareForSleep),
	); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", prepareForSleep, err)
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)
	defer conn.RemoveSignal(signals)

	if w.inhibitor == nil {
		w.inhibitor = logindInhibitor{obj: conn.Object(logindDest, logindPath)}
	}
	w.acquire()
	defer w.release()

	w.logger.Info("Watching system sleep notifications")
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-signals:
			if !ok {
				return nil
			}
			if ev, ok := SleepEvent(sig); ok {
				w.handle(ev)
			}
		}
	}
}

func (w *SleepWatcher) handle(ev host.Event) {
	w.logger.Info("System sleep notification", zap.String("event", string(ev.Kind)))
	switch ev.Kind {
	case host.Suspend:
		w.deliver(ev)
		w.release()
	case host.SuspendCanceled:
		w.acquire()
		w.deliver(ev)
	}
}

func (w *SleepWatcher) acquire() {
	if w.lock != nil {
		return
	}
	lock, err := w.inhibitor.Inhibit()
	if err != nil {
		w.logger.Warn("Sleep may interrupt service disposal", zap.Error(err))
		return
	}
	w.lock = lock
}

func (w *SleepWatcher) release() {
	if w.lock == nil {
		return
	}
	if err := w.lock.Close(); err != nil {
		w.logger.Warn("Failed to release sleep delay lock", zap.Error(err))
	}
	w.lock = nil
}
