//go:build !windows

package main

import (
	"os"
	"syscall"

	"github.com/awsl-project/hostlink/internal/host"
)

var hostSignals = []os.Signal{syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGHUP}

func signalEvent(sig os.Signal) (host.Event, bool) {
	switch sig {
	case syscall.SIGUSR1:
		return host.Event{Kind: host.Suspend}, true
	case syscall.SIGUSR2:
		return host.Event{Kind: host.SuspendCanceled}, true
	case syscall.SIGHUP:
		return host.Event{Kind: host.Launched}, true
	}
	return host.Event{}, false
}
