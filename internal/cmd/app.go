package cmd

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/pageza/snaptop/client/config"
	"github.com/pageza/snaptop/client/internal/database"
	"github.com/pageza/snaptop/client/internal/service"
	"github.com/pageza/snaptop/client/internal/session"
)

// app holds the long-lived pieces a command needs. It is built once per
// invocation and closed when the command returns.
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	storage  database.Store
	sessions *session.Store
	backend  *service.BackendClient
	login    *service.LoginService
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.backendURL != "" {
		cfg.BackendURL = opts.backendURL
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if opts.ephemeral {
		cfg.StorageDriver = database.DriverMemory
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "invalid flags")
	}

	log := logrus.New()
	log.SetOutput(opts.logOutput)
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(level)
	if cfg.Environment == config.Production {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	storage, err := database.Open(cfg, log)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open session storage")
	}
	sessions := session.New(storage, log)
	sessions.Restore(ctx)

	backend := service.NewBackendClient(cfg.BackendURL,
		&http.Client{Timeout: cfg.HTTPTimeout},
		service.WithAuthorizer(sessions),
		service.WithLogger(log),
	)

	return &app{
		cfg:      cfg,
		log:      log,
		storage:  storage,
		sessions: sessions,
		backend:  backend,
		login:    service.NewLoginService(backend, sessions, log),
	}, nil
}

func (a *app) Close() {
	if err := a.storage.Close(); err != nil {
		a.log.WithError(err).Warn("failed to close session storage")
	}
}
