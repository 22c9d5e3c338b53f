// Package server wires the MealTrack server: storage, services, the gRPC
// and HTTP transports, the Postgres change listener and background jobs.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mealtrack/internal/dbx"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
	"github.com/dmitrijs2005/mealtrack/internal/server/config"
	"github.com/dmitrijs2005/mealtrack/internal/server/httpapi"
	"github.com/dmitrijs2005/mealtrack/internal/server/notify"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mealtrack/internal/server/services"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/mealtrack/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = dbx.Open

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	hub           *notify.Hub
	userService   *services.UserService
	logService    *services.DailyLogService
	foodService   *services.FoodService
	exportService *services.ExportService
}

// NewApp connects to Postgres, applies migrations and builds the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	db, err := openDB(ctx, "pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return newApp(c, logger, db, rm), nil
}

func newApp(c *config.Config, logger logging.Logger, db *sql.DB, rm repomanager.RepositoryManager) *App {
	hub := notify.NewHub(logger)
	ls := services.NewDailyLogService(db, rm, hub, logger)
	nx := nutritionix.NewClient(c.NutritionixBaseURL, c.NutritionixAppID, c.NutritionixAppKey, nil)

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		hub:           hub,
		userService:   services.NewUserService(db, rm, c, logger),
		logService:    ls,
		foodService:   services.NewFoodService(nx, logger),
		exportService: services.NewExportService(ls, c, logger),
	}
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "Signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves until ctx is cancelled, a signal arrives or a component fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger,
		app.userService, app.logService, app.foodService, app.exportService)

	router := httpapi.NewRouter(httpapi.Services{
		Users:   app.userService,
		Logs:    app.logService,
		Foods:   app.foodService,
		Exports: app.exportService,
	}, app.config.CORSAllowedOrigins, app.logger)
	httpServer := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, router)

	listener := notify.NewPGListener(app.config.DatabaseDSN, app.hub, app.logService.Reload, app.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return grpcServer.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	g.Go(func() error { return listener.Run(ctx) })
	g.Go(func() error { return app.userService.RunTokenSweeper(ctx, app.config.TokenSweepInterval) })

	// live watches keep GracefulStop waiting until the hub lets them go
	g.Go(func() error {
		<-ctx.Done()
		app.hub.Close()
		return nil
	})

	err := g.Wait()
	if cerr := app.db.Close(); cerr != nil {
		app.logger.Warn(context.Background(), "closing database", "error", cerr)
	}
	app.logger.Info(context.Background(), "App stopped")
	return err
}
