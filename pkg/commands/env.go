package commands

import (
	"fmt"

	"go.uber.org/zap"

	"tableflip.dev/moodlog/pkg/api"
	"tableflip.dev/moodlog/pkg/app"
	"tableflip.dev/moodlog/pkg/logging"
	"tableflip.dev/moodlog/pkg/printers"
	"tableflip.dev/moodlog/pkg/store"
)

// env is what every flow command needs: config, logger, the persisted
// session and a Service restored from it.
type env struct {
	Config      store.Config
	Log         *zap.Logger
	Persistence store.Persistence
	Service     *app.Service
	Printer     *printers.PrettyPrint
}

func loadEnv() (*env, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logging.New(cfg.Logging())
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	p, err := store.Load(cfg)
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.BaseURL(),
		api.WithTimeout(cfg.Timeout()),
		api.WithRateLimit(cfg.RateLimit()),
		api.WithLogger(log),
	)
	svc := app.New(client, app.WithPersistence(p), app.WithLogger(log))
	if _, err := svc.Restore(); err != nil {
		log.Warn("restore session", zap.Error(err))
	}

	return &env{
		Config:      cfg,
		Log:         log,
		Persistence: p,
		Service:     svc,
		Printer:     printers.New(nil),
	}, nil
}

func (e *env) Close() {
	_ = e.Log.Sync()
}
