package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/yndnr/playgate/internal/core/service"
	"github.com/yndnr/playgate/internal/infra/buildinfo"
	"github.com/yndnr/playgate/internal/infra/confloader"
	"github.com/yndnr/playgate/internal/infra/shutdown"
	"github.com/yndnr/playgate/internal/server/config"
	"github.com/yndnr/playgate/internal/server/httpserver"
	"github.com/yndnr/playgate/internal/server/realtime"
	"github.com/yndnr/playgate/internal/storage"
	"github.com/yndnr/playgate/internal/telemetry/logger"
	"github.com/yndnr/playgate/internal/telemetry/metric"
	"github.com/yndnr/playgate/internal/telemetry/tracer"
)

// run starts the service and blocks until shutdown. Storage must connect
// before anything listens; a failed connection is returned as is.
func run(ctx context.Context, cfg *config.ServerConfig, configFile string) error {
	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	slog.SetDefault(log)

	log.Info("starting playgate-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	if (cfg.Storage.User == "") != (cfg.Storage.Password == "") {
		log.Warn("storage credentials half set, connecting without authentication",
			"user_set", cfg.Storage.User != "",
			"password_set", cfg.Storage.Password != "")
	}

	metrics := metric.NewRegistry()
	tr := tracer.New(tracer.DefaultName)

	connector, err := storage.NewConnector(storage.Config{
		URL:            cfg.Storage.URL,
		User:           cfg.Storage.User,
		Password:       cfg.Storage.Password,
		AuthSource:     cfg.Storage.AuthSource,
		ConnectTimeout: cfg.Storage.ConnectTimeout,
		Logger:         log,
		Registerer:     metrics.Registerer(),
	})
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	gate := storage.NewGate(connector,
		storage.WithLogger(log),
		storage.WithObserver(func(s storage.State) { metrics.SetStorageState(int(s)) }),
	)

	if err := gate.Connect(ctx); err != nil {
		log.Error("storage connection failed", "error", err)
		return err
	}
	handle, err := gate.Handle()
	if err != nil {
		return err
	}

	authSvc, err := service.NewAuthService(service.AuthConfig{
		Secret:     []byte(cfg.Auth.JWTSecret),
		CookieName: cfg.Auth.CookieName,
	})
	if err != nil {
		return fmt.Errorf("init auth: %w", err)
	}

	hub := realtime.NewHub(metrics)
	rt, err := realtime.New(realtime.Config{
		Origin:      cfg.HTTP.CORSOrigin,
		RequireAuth: cfg.Realtime.RequireAuth,
		Auth:        authSvc.Check(),
		Hub:         hub,
		Logger:      log,
	})
	if err != nil {
		return fmt.Errorf("init realtime: %w", err)
	}

	router, err := httpserver.NewRouter(&httpserver.RouterConfig{
		Logger:       log,
		Metrics:      metrics,
		Tracer:       tr,
		Storage:      handle,
		Readiness:    gate,
		Auth:         authSvc.Check(),
		CORSOrigin:   cfg.HTTP.CORSOrigin,
		BodyLimit:    cfg.HTTP.BodyLimit,
		RateLimit:    cfg.HTTP.RateLimit,
		StaticDir:    cfg.HTTP.StaticDir,
		Realtime:     rt,
		RealtimePath: cfg.Realtime.Path,
	})
	if err != nil {
		return fmt.Errorf("init router: %w", err)
	}

	srv := httpserver.New(httpserver.Config{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		Gate:              gate,
		Logger:            log,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	})
	srv.RegisterOnShutdown(hub.CloseAll)

	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout)

	// Hooks run in reverse order: listener first, storage last.
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("closing storage")
		return gate.Close(ctx)
	})
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return srv.Shutdown(ctx)
	})

	if configFile != "" {
		stop, err := watchLogLevel(configFile, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error { return stop() })
		}
	}

	go func() {
		if err := srv.ListenAndServe(ctx); err != nil {
			log.Error("HTTP server error", "error", err)
			shutdownHandler.Trigger(err)
		}
	}()

	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// watchLogLevel re-reads the config file on change and applies its log
// level. Other settings need a restart.
func watchLogLevel(path string, log *slog.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	var last time.Time
	w.OnChange(func(string) {
		// Editors often write twice in a row.
		if time.Since(last) < 100*time.Millisecond {
			return
		}
		last = time.Now()

		cfg, err := config.Load(confloader.WithConfigFile(path))
		if err != nil {
			log.Warn("config reload failed", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w.Stop, nil
}
