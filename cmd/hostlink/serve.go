package main

import (
	"context"
	"errors"
	"net/url"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/awsl-project/hostlink/internal/app"
	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/remoteaccess"
)

func newServeCommand() *cobra.Command {
	var (
		o         overrides
		noBrowser bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the host until interrupted",
		Long: `Run the host in the foreground. Signals drive the lifecycle:

  SIGUSR1  system is suspending; the background service is disposed
  SIGUSR2  suspend canceled or resumed; a fresh service is created
  SIGHUP   application launched; a session surface is presented`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), &o)
			if err != nil {
				return err
			}
			env, err := app.NewEnv(cfg, nil)
			if err != nil {
				return err
			}
			defer env.Close()

			d := newDaemon(env)
			if noBrowser {
				d.open = func(u string) error {
					env.Logger.Info("Session surface requested", zap.String("url", u))
					return nil
				}
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return d.run(ctx)
		},
	}
	o.register(cmd.Flags())
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "log surface requests instead of opening a browser")
	return cmd
}

// daemon is the headless host: signals in, browser out.
type daemon struct {
	env     *app.Env
	bus     *host.Bus
	open    func(string) error
	runtime atomic.Pointer[app.Runtime]
}

func newDaemon(env *app.Env) *daemon {
	return &daemon{env: env, bus: host.NewBus(0)}
}

func (d *daemon) run(ctx context.Context) error {
	logger := d.env.Logger
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Subscribe before the service exists so an early signal is queued
	// instead of killing the process.
	signals := make(chan os.Signal, 4)
	if len(hostSignals) > 0 {
		signal.Notify(signals, hostSignals...)
		defer signal.Stop(signals)
	}

	surface := newBrowserSurface(d.statusURL, logger.Named("surface"))
	if d.open != nil {
		surface.open = d.open
	}

	rt, err := app.Boot(app.Deps{
		Manifest:  d.env.Manifest,
		Surface:   d.env.Metrics.InstrumentSurface(surface),
		Menus:     host.NewRegistry(),
		Bus:       d.bus,
		Messages:  d.env.Catalog,
		Remote:    d.env.RemoteConfig(),
		Observers: d.env.Observers(),
		Logger:    logger,
	})
	if rt == nil {
		return err
	}
	if err != nil {
		logger.Error("Service failed to initialize", zap.Error(err))
	}
	d.runtime.Store(rt)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := d.bus.Run(gctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := d.env.ServeMetrics(gctx, d.env.Config.Metrics); err != nil {
			logger.Error("Metrics endpoint stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		d.forward(gctx, signals)
		return nil
	})

	logger.Info("Host running", zap.String("mode", string(rt.Mode)), zap.Int("pid", os.Getpid()))
	werr := g.Wait()

	logger.Info("Shutting down")
	if err := rt.Shutdown(); err != nil {
		logger.Warn("Service dispose failed during shutdown", zap.Error(err))
	}
	return werr
}

func (d *daemon) forward(ctx context.Context, signals <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-signals:
			ev, ok := signalEvent(sig)
			if !ok {
				continue
			}
			d.env.Logger.Info("Host signal", zap.String("signal", sig.String()), zap.String("event", string(ev.Kind)))
			if err := d.bus.Post(ctx, ev); err != nil {
				return
			}
		}
	}
}

// statusURL points at the live service's status page, or "" while
// suspended.
func (d *daemon) statusURL() string {
	rt := d.runtime.Load()
	if rt == nil {
		return ""
	}
	svc, ok := rt.Controller.Current().(*remoteaccess.Service)
	if !ok || !svc.Running() {
		return ""
	}
	u := url.URL{Scheme: "http", Host: svc.Addr(), Path: "/status"}
	return u.String()
}
