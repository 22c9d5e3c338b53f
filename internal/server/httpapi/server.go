// Package httpapi serves the MealTrack API to browsers: JSON over HTTP for
// requests and a WebSocket feed for live daily log snapshots.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
	"github.com/dmitrijs2005/mealtrack/internal/server/models"
	"github.com/dmitrijs2005/mealtrack/internal/server/notify"
	"github.com/dmitrijs2005/mealtrack/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type userSvc interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	UserIDFromAccessToken(token string) (string, error)
}

type logSvc interface {
	Fetch(ctx context.Context, userID, date string) (meallog.DailyLog, error)
	Summary(ctx context.Context, userID, date string) (meallog.Summary, error)
	AppendEntry(ctx context.Context, userID, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error)
	DeleteEntry(ctx context.Context, userID, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error)
	Subscribe(ctx context.Context, userID, date string) (*notify.Subscription, error)
}

type foodSvc interface {
	Search(ctx context.Context, query string) nutritionix.SearchResult
	LookupNutrients(ctx context.Context, description string) (nutritionix.NutrientDetail, error)
}

type exportSvc interface {
	Export(ctx context.Context, userID, date string) (string, string, error)
}

// Services groups what the handlers call into.
type Services struct {
	Users   userSvc
	Logs    logSvc
	Foods   foodSvc
	Exports exportSvc
}

// HTTPServer runs the router on a TCP address.
type HTTPServer struct {
	address string
	handler http.Handler
	logger  logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, h http.Handler) *HTTPServer {
	return &HTTPServer{address: a, handler: h, logger: l.With("module", "http_server")}
}

// Run serves until ctx is done and then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())
		errCh <- srv.Serve(listen)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
