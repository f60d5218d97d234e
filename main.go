package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	goruntime "runtime"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"
	"github.com/wailsapp/wails/v2/pkg/options/windows"
	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/app"
	"github.com/awsl-project/hostlink/internal/config"
	"github.com/awsl-project/hostlink/internal/desktop"
	"github.com/awsl-project/hostlink/internal/host"
	"github.com/awsl-project/hostlink/internal/launcher"
	"github.com/awsl-project/hostlink/internal/version"
)

//go:embed all:frontend
var assets embed.FS

//go:embed frontend/manifest.json
var bundledManifest []byte

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	env, err := app.NewEnv(cfg, bundledManifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer env.Close()
	logger := env.Logger
	logger.Info("Starting", zap.String("version", version.Info()))

	bus := host.NewBus(0)
	surface := &desktop.WindowSurface{}

	var desktopApp *desktop.App
	post := func(ev host.Event) { desktopApp.Post(ev) }
	tray := desktop.NewTrayMenu(post, env.Catalog, func() { desktopApp.Quit() }, logger.Named("tray"))

	desktopApp = desktop.NewApp(bus, func(ctx context.Context) (*app.Runtime, error) {
		surface.Bind(ctx)

		go func() {
			if err := env.ServeMetrics(ctx, cfg.Metrics); err != nil {
				logger.Error("Metrics endpoint stopped", zap.Error(err))
			}
		}()
		go tray.Start()
		go refreshTray(ctx, tray, desktopApp)

		rt, err := app.Boot(app.Deps{
			Manifest:  env.Manifest,
			Surface:   env.Metrics.InstrumentSurface(surface),
			Menus:     tray,
			Bus:       bus,
			Messages:  env.Catalog,
			Remote:    env.RemoteConfig(),
			Observers: env.Observers(),
			Logger:    logger,
		})
		if rt != nil {
			// Sleep notifications are delivered synchronously so disposal
			// finishes while the delay lock is held.
			go func() {
				if err := desktop.NewSleepWatcher(bus.Dispatch, logger.Named("sleep")).Run(ctx); err != nil {
					logger.Warn("System sleep notifications unavailable", zap.Error(err))
				}
			}()
		}
		return rt, err
	}, logger)

	productName := env.Catalog.GetMessage("PRODUCT_NAME")
	err = wails.Run(&options.App{
		Title:     productName,
		Width:     960,
		Height:    640,
		MinWidth:  640,
		MinHeight: 480,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        desktopApp.Startup,
		OnDomReady:       desktopApp.DomReady,
		OnBeforeClose:    desktopApp.BeforeClose,
		OnShutdown:       desktopApp.Shutdown,
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId: "hostlink-" + version.Version,
			// Relaunching the app is the host's launch request.
			OnSecondInstanceLaunch: func(options.SecondInstanceData) {
				post(host.Event{Kind: host.Launched})
			},
		},
		Bind: []interface{}{
			desktopApp,
		},
		Menu: appMenu(env.Catalog, post, desktopApp),
		Windows: &windows.Options{
			WebviewIsTransparent: false,
			WindowIsTranslucent:  false,
		},
		Mac: &mac.Options{
			Appearance: mac.NSAppearanceNameDarkAqua,
			About: &mac.AboutInfo{
				Title:   productName,
				Message: version.Full(),
			},
		},
	})
	if err != nil {
		logger.Fatal("Wails exited with error", zap.Error(err))
	}
}

// appMenu builds the macOS application menu. Its "New Window" entry posts the
// same click the tray menu does.
func appMenu(messages launcher.Messages, post func(host.Event), a *desktop.App) *menu.Menu {
	if goruntime.GOOS != "darwin" {
		return nil
	}
	m := menu.NewMenu()
	m.Append(menu.AppMenu())

	fileMenu := m.AddSubmenu("File")
	fileMenu.AddText(messages.GetMessage(launcher.NewWindowMessageKey), keys.CmdOrCtrl("n"), func(*menu.CallbackData) {
		post(host.Event{Kind: host.MenuClicked, MenuItemID: launcher.NewWindowMenuID})
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Quit", keys.CmdOrCtrl("q"), func(*menu.CallbackData) {
		a.Quit()
	})
	m.Append(menu.EditMenu())
	return m
}

func refreshTray(ctx context.Context, tray *desktop.TrayMenu, a *desktop.App) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tray.UpdateStatus(a.GetStatus())
		}
	}
}
