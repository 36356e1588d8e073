package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
	"mmt.ticketoffice.org/internal/app"
	"mmt.ticketoffice.org/internal/appconf"
	"mmt.ticketoffice.org/internal/importer"
	"mmt.ticketoffice.org/internal/logging"
	"mmt.ticketoffice.org/internal/restapi"
	"mmt.ticketoffice.org/internal/ticketoffice"
	"mmt.ticketoffice.org/internal/webui"
	"mmt.ticketoffice.org/mmtdb"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := loadConfig(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger := logging.NewStructuredLogger(os.Stdout, level)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logging.LogError(logger, "server stopped", err)
		os.Exit(1)
	}
}

// loadConfig layers defaults, the optional YAML file, the .env file with
// MMT_* variables and finally the flags that were given explicitly.
func loadConfig(args []string, output io.Writer) (appconf.Config, error) {
	fs := flag.NewFlagSet("mmt", flag.ContinueOnError)
	fs.SetOutput(output)

	defaults := appconf.Default()
	var (
		configPath  = fs.String("config", "", "Path to a YAML configuration file")
		envFile     = fs.String("env-file", ".env", "Path to a .env file with MMT_* variables")
		port        = fs.Int("port", defaults.Port, "API server port")
		env         = fs.String("env", defaults.Env.String(), "Environment (development|test|production)")
		apiKeys     = fs.String("api-keys", "test", "Comma Separated API Keys (test, etc)")
		rateLimit   = fs.Int("rate-limit", defaults.RateLimit, "Requests per second allowed per API key")
		dataPath    = fs.String("data-path", defaults.DataPath, "SQLite file holding the saved state")
		importFile  = fs.String("import-file", "", "Record file imported when no saved state exists")
		gtfsFile    = fs.String("gtfs-file", "", "GTFS static zip (path or URL) imported when no saved state exists")
		farePerHour = fs.Float64("fare-per-hour", defaults.FarePerHour, "Fare per hour of travel for GTFS services")
		logLevel    = fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
	)
	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	cfg := appconf.Default()
	if *configPath != "" {
		if err := appconf.LoadFile(*configPath, &cfg); err != nil {
			return appconf.Config{}, err
		}
	}
	if err := appconf.LoadEnv(&cfg, *envFile); err != nil {
		return appconf.Config{}, err
	}

	var flagErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "env":
			parsed, err := appconf.ParseEnvironment(*env)
			if err != nil {
				flagErr = err
				return
			}
			cfg.Env = parsed
		case "api-keys":
			cfg.ApiKeys = appconf.ParseAPIKeys(*apiKeys)
		case "rate-limit":
			cfg.RateLimit = *rateLimit
		case "data-path":
			cfg.DataPath = *dataPath
		case "import-file":
			cfg.ImportFile = *importFile
		case "gtfs-file":
			cfg.GtfsFile = *gtfsFile
		case "fare-per-hour":
			cfg.FarePerHour = *farePerHour
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if flagErr != nil {
		return appconf.Config{}, flagErr
	}

	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

// bootstrap restores the saved state. Without one, the configured record
// file and GTFS feed seed the office instead.
func bootstrap(ctx context.Context, cfg appconf.Config, office *ticketoffice.Office, store ticketoffice.Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	err := office.Load(ctx, store)
	if err == nil {
		if cfg.ImportFile != "" || cfg.GtfsFile != "" {
			logger.Info("saved state found, skipping initial import",
				slog.String("import_file", cfg.ImportFile),
				slog.String("gtfs_file", cfg.GtfsFile))
		}
		return nil
	}
	if !errors.Is(err, mmtdb.ErrNoSnapshot) {
		return err
	}

	if cfg.ImportFile != "" {
		f, err := os.Open(cfg.ImportFile)
		if err != nil {
			return fmt.Errorf("opening import file: %w", err)
		}
		defer logging.SafeCloseWithLogging(f, logger, "import_file")
		if _, err := office.Import(f); err != nil {
			return fmt.Errorf("importing %s: %w", cfg.ImportFile, err)
		}
	}

	if cfg.GtfsFile != "" {
		data, err := importer.ReadFeed(ctx, cfg.GtfsFile)
		if err != nil {
			return err
		}
		if _, err := office.ImportGTFS(data, importer.GTFSOptions{FarePerHour: cfg.FarePerHour}); err != nil {
			return fmt.Errorf("importing GTFS feed %s: %w", cfg.GtfsFile, err)
		}
	}
	return nil
}

// newHandler mounts the API and, outside production, the debug pages.
func newHandler(application *app.Application) (http.Handler, *restapi.RestAPI) {
	router := httprouter.New()

	api := restapi.NewRestAPI(application)
	api.SetRoutes(router)

	if application.Config.Env != appconf.Production {
		webUI := &webui.WebUI{Application: application}
		webUI.SetWebUIRoutes(router)
	}

	return api.Handler(router), api
}

func run(cfg appconf.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := mmtdb.NewClient(mmtdb.NewConfig(cfg.DataPath, cfg.Env, logger))
	if err != nil {
		return err
	}
	defer logging.SafeCloseWithLogging(store, logger, "snapshot_store")

	office := ticketoffice.New(logger)
	if err := bootstrap(ctx, cfg, office, store, logger); err != nil {
		return err
	}

	application := app.New(cfg, logger, office, store)
	handler, api := newHandler(application)
	defer api.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env.String())
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logging.LogError(logger, "graceful shutdown failed", err)
		}
	}

	_, err = application.Save(context.Background())
	return err
}
