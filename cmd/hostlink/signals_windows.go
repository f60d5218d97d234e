//go:build windows

package main

import (
	"os"

	"github.com/awsl-project/hostlink/internal/host"
)

// Windows has no user signals; the desktop build drives the lifecycle there.
var hostSignals []os.Signal

func signalEvent(os.Signal) (host.Event, bool) {
	return host.Event{}, false
}
