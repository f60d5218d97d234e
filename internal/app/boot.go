// Package app composes the host at process start: capability detection,
// launcher selection and registration, then the lifecycle controller.
package app

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/launcher"
	"github.com/awsl-project/hostlink/internal/lifecycle"
	"github.com/awsl-project/hostlink/internal/manifest"
	"github.com/awsl-project/hostlink/internal/remoteaccess"
)

// Deps are the host collaborators Boot wires together.
type Deps struct {
	Manifest  *manifest.Manifest
	Surface   launcher.Surface
	Menus     host.MenuRegistrar
	Bus       *host.Bus
	Messages  launcher.Messages
	Remote    remoteaccess.Config
	Observers []lifecycle.Observer
	Logger    *zap.Logger

	// Factory overrides the remote-access service factory.
	Factory lifecycle.Factory
}

// Runtime is the booted host.
type Runtime struct {
	Mode          manifest.LaunchMode
	Launcher      launcher.Launcher
	Controller    *lifecycle.Controller
	Bus           *host.Bus
	Subscriptions []*host.Subscription
	logger        *zap.Logger
}

// RemoteAccessFactory builds remote-access services from cfg. Launches
// requested by remote clients run on bus, serialized with host events.
func RemoteAccessFactory(cfg remoteaccess.Config, bus *host.Bus, logger *zap.Logger) lifecycle.Factory {
	return func(l launcher.Launcher) lifecycle.Service {
		return remoteaccess.New(cfg, busLauncher{next: l, bus: bus}, logger)
	}
}

type busLauncher struct {
	next launcher.Launcher
	bus  *host.Bus
}

func (l busLauncher) Launch() {
	l.bus.Do(l.next.Launch)
}

// ReadManifest loads the manifest at path. An unreadable or malformed
// manifest is treated as empty, which selects the legacy launcher.
func ReadManifest(path string, logger *zap.Logger) *manifest.Manifest {
	if path == "" {
		return &manifest.Manifest{}
	}
	m, err := manifest.Load(path)
	if err != nil {
		logger.Warn("Manifest unavailable, assuming legacy host", zap.String("path", path), zap.Error(err))
		return &manifest.Manifest{}
	}
	return m
}

// Boot runs the start-up sequence:
//  1. detect the launch mode from the manifest
//  2. build the launcher; register menu and launch hooks for host-managed mode
//  3. start the lifecycle controller, which creates the first service
//
// A service that fails to initialize is returned as an error together with
// the runtime; the slot is occupied and the host events are wired.
func Boot(d Deps) (*Runtime, error) {
	if d.Surface == nil || d.Bus == nil {
		return nil, errors.New("app: surface and bus are required")
	}
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mode := manifest.DetectLaunchMode(d.Manifest)
	logger.Info("Launch mode detected", zap.String("mode", string(mode)))

	rt := &Runtime{
		Mode:     mode,
		Launcher: launcher.New(mode, d.Surface),
		Bus:      d.Bus,
		logger:   logger,
	}

	if hm, ok := rt.Launcher.(*launcher.HostManaged); ok {
		if d.Menus == nil || d.Messages == nil {
			return nil, errors.New("app: host-managed mode needs menus and messages")
		}
		subs, err := hm.Register(d.Menus, d.Bus, d.Messages)
		if err != nil {
			return nil, fmt.Errorf("failed to register launcher: %w", err)
		}
		rt.Subscriptions = append(rt.Subscriptions, subs...)
	}

	factory := d.Factory
	if factory == nil {
		factory = RemoteAccessFactory(d.Remote, d.Bus, logger.Named("remote"))
	}
	opts := []lifecycle.Option{lifecycle.WithLogger(logger.Named("lifecycle"))}
	for _, o := range d.Observers {
		opts = append(opts, lifecycle.WithObserver(o))
	}
	rt.Controller = lifecycle.New(rt.Launcher, factory, opts...)

	subs, err := rt.Controller.Start(d.Bus)
	rt.Subscriptions = append(rt.Subscriptions, subs...)
	return rt, err
}

// Shutdown detaches every host hook and disposes the live service, if any.
func (r *Runtime) Shutdown() error {
	for _, sub := range r.Subscriptions {
		sub.Remove()
	}
	r.Subscriptions = nil

	var err error
	r.Bus.Do(func() {
		if r.Controller.State() != lifecycle.Active {
			return
		}
		r.logger.Info("Disposing service for shutdown")
		err = r.Controller.Suspend()
	})
	return err
}

// DefaultInstanceID identifies this process run in the journal.
func DefaultInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}
