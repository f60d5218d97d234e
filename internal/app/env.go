package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/awsl-project/hostlink/internal/config"
	"github.com/awsl-project/hostlink/internal/i18n"
	"github.com/awsl-project/hostlink/internal/journal"
	"github.com/awsl-project/hostlink/internal/lifecycle"
	"github.com/awsl-project/hostlink/internal/logging"
	"github.com/awsl-project/hostlink/internal/manifest"
	"github.com/awsl-project/hostlink/internal/metrics"
	"github.com/awsl-project/hostlink/internal/remoteaccess"
)

// Env is the process-wide infrastructure shared by the entry points.
type Env struct {
	Config     *config.Config
	Logger     *zap.Logger
	Catalog    *i18n.Catalog
	Manifest   *manifest.Manifest
	Metrics    *metrics.Collector
	Journal    *journal.Journal
	InstanceID string

	db *journal.DB
}

// NewEnv sets up logging, messages, metrics and the journal from cfg. The
// manifest comes from cfg.Manifest, else from bundled when given. A journal
// that cannot be opened is logged and skipped.
func NewEnv(cfg *config.Config, bundled []byte) (*Env, error) {
	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	locales := []string{}
	if cfg.Locale != "" {
		locales = append(locales, cfg.Locale)
	}
	if lang := os.Getenv("LANG"); lang != "" {
		locales = append(locales, strings.SplitN(lang, ".", 2)[0])
	}
	catalog, err := i18n.Embedded(locales...)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	env := &Env{
		Config:     cfg,
		Logger:     logger,
		Catalog:    catalog,
		Manifest:   ReadManifest(cfg.Manifest, logger),
		Metrics:    metrics.New(),
		InstanceID: DefaultInstanceID(),
	}

	if cfg.Manifest == "" && len(bundled) > 0 {
		m, err := manifest.Parse(bundled)
		if err != nil {
			return nil, fmt.Errorf("bundled manifest: %w", err)
		}
		env.Manifest = m
	}

	if err := os.MkdirAll(cfg.DataDirPath(), 0o755); err != nil {
		logger.Warn("Failed to create data directory", zap.String("path", cfg.DataDirPath()), zap.Error(err))
	}
	db, err := journal.Open(cfg.JournalDSN(), logger.Named("journal"))
	if err != nil {
		logger.Warn("Lifecycle journal disabled", zap.Error(err))
	} else {
		env.db = db
		env.Journal = journal.New(db, env.InstanceID, manifest.DetectLaunchMode(env.Manifest), logger.Named("journal"))
	}
	return env, nil
}

// Observers returns the transition observers backed by this Env.
func (e *Env) Observers() []lifecycle.Observer {
	obs := []lifecycle.Observer{e.Metrics}
	if e.Journal != nil {
		obs = append(obs, e.Journal)
	}
	return obs
}

// RemoteConfig converts the remote section for the service factory.
func (e *Env) RemoteConfig() remoteaccess.Config {
	return remoteaccess.Config{
		Addr:            e.Config.Remote.Addr,
		Secret:          e.Config.Remote.Secret,
		ShutdownTimeout: e.Config.Remote.ShutdownTimeout,
	}
}

// ServeMetrics exposes /metrics on addr until ctx is done. An empty addr
// disables the endpoint.
func (e *Env) ServeMetrics(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	e.Logger.Info("Metrics endpoint listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Close releases the journal and flushes the logger.
func (e *Env) Close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.Logger.Warn("Failed to close journal", zap.Error(err))
		}
	}
	_ = e.Logger.Sync()
}
