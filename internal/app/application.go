package app

import (
	"context"
	"log/slog"
	"sync"

	"mmt.ticketoffice.org/internal/appconf"
	"mmt.ticketoffice.org/internal/logging"
	"mmt.ticketoffice.org/internal/ticketoffice"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware. The office is not safe for concurrent use, so every
// access goes through WithOffice.
type Application struct {
	Config appconf.Config
	Logger *slog.Logger
	Store  ticketoffice.Store

	mu     sync.Mutex
	office *ticketoffice.Office
}

func New(cfg appconf.Config, logger *slog.Logger, office *ticketoffice.Office, store ticketoffice.Store) *Application {
	if logger == nil {
		logger = slog.Default()
	}
	return &Application{
		Config: cfg,
		Logger: logger,
		Store:  store,
		office: office,
	}
}

// WithOffice runs fn while holding the office lock. Values derived from the
// office must not escape fn unless they are never touched again by a later
// mutation.
func (app *Application) WithOffice(fn func(o *ticketoffice.Office) error) error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return fn(app.office)
}

// Save writes a snapshot when the office changed since the last save. It is
// a no-op without a store.
func (app *Application) Save(ctx context.Context) (bool, error) {
	if app.Store == nil {
		return false, nil
	}
	var saved bool
	err := app.WithOffice(func(o *ticketoffice.Office) error {
		var err error
		saved, err = o.Save(ctx, app.Store)
		return err
	})
	if err != nil {
		logging.LogError(app.Logger, "snapshot save failed", err)
		return false, err
	}
	if saved {
		logging.LogOperation(app.Logger, "snapshot_saved")
	}
	return saved, nil
}
