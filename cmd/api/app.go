package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cash4edu/internal/account"
	"cash4edu/internal/api"
	"cash4edu/internal/auth"
	"cash4edu/internal/config"
	"cash4edu/internal/logging"
	"cash4edu/internal/models"
	"cash4edu/internal/notify"
	"cash4edu/internal/onboarding"
	"cash4edu/internal/session"
	"cash4edu/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app is the wired client core shared by every command.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	hub      *notify.Hub
	store    *storage.Store
	client   *api.Client
	session  *session.Session
	accounts *account.Service
	flow     *onboarding.Flow
	guard    *auth.Guard

	closers []io.Closer
}

func newApp(ctx context.Context, configPath, logLevel string, extra notify.Notifier) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, hub: notify.NewHub(logger.Named("toast"))}
	kv, err := a.openKV(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	sealer, err := storage.NewSealer(cfg.Storage.SealKey)
	if err != nil {
		a.close()
		return nil, err
	}
	a.store = storage.NewStore(kv, sealer, logger.Named("storage"))

	var notifier notify.Notifier = a.hub
	if extra != nil {
		notifier = notify.Multi{a.hub, extra}
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.client = api.New(api.Config{
		BaseURL:  cfg.API.BaseURL,
		Timeout:  cfg.API.Timeout,
		Tokens:   a.store,
		Notifier: notifier,
		Metrics:  api.NewMetrics(a.registry),
		Logger:   logger.Named("api"),
	})
	a.session = session.New(a.store, a.client, session.Options{
		TTL:          cfg.Session.ProfileTTL,
		PollInterval: cfg.Session.PollInterval,
		Notifier:     notifier,
		Logger:       logger.Named("session"),
	})
	a.accounts = account.NewService(a.client, a.store, a.session, notifier, logger.Named("account"))
	a.flow = onboarding.NewFlow(a.client, a.store, a.session, notifier, logger.Named("onboarding"))
	a.guard = auth.NewGuard(a.store, a.logger.Named("auth"))
	return a, nil
}

func (a *app) openKV(ctx context.Context) (storage.KV, error) {
	switch strings.ToLower(a.cfg.Storage.Backend) {
	case "redis":
		rdb, err := storage.DialRedis(ctx, a.cfg.Storage.RedisAddr, a.cfg.Storage.RedisDB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rdb)
		return storage.NewRedisKV(rdb, "cash4edu"), nil
	default:
		db, err := storage.OpenSQLite(a.cfg.Storage.SQLitePath, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, closerFunc(db.Close))
		return storage.NewSQLiteKV(ctx, db)
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.logger.Warn("app.close(): failed to close resource", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// stderrToasts prints toasts for the one-shot commands.
type stderrToasts struct{ w io.Writer }

func (s stderrToasts) Notify(t models.Toast) {
	if t.Text2 != "" {
		fmt.Fprintf(s.w, "[%s] %s: %s\n", t.Type, t.Text1, t.Text2)
		return
	}
	fmt.Fprintf(s.w, "[%s] %s\n", t.Type, t.Text1)
}
