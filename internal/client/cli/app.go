package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/client/client"
	"github.com/dmitrijs2005/mealtrack/internal/client/config"
	"github.com/dmitrijs2005/mealtrack/internal/client/services"
	"github.com/dmitrijs2005/mealtrack/internal/filex"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/netx"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// syncWriter serialises output from the REPL, the watch goroutine and the
// search timer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type App struct {
	config      *config.Config
	authService services.AuthService
	logService  services.LogService
	search      *services.SearchSession
	logger      logging.Logger
	reader      *bufio.Reader
	out         io.Writer
	db          *sql.DB
	download    func(ctx context.Context, url string) ([]byte, error)

	mu       sync.Mutex
	userName string
	mode     Mode
	watch    *services.Watch
	current  meallog.DailyLog
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := filex.EnsureParentDir(c.DBPath); err != nil {
		return nil, err
	}

	db, err := client.InitDatabase(ctx, c.DBPath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	apiClient, err := client.NewMealTrackClientService(c.ServerEndpointAddr)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(c, services.NewAuthService(apiClient, db), services.NewLogService(apiClient, logger), apiClient, logger, os.Stdin, os.Stdout)
	a.db = db
	return a, nil
}

func newApp(c *config.Config, as services.AuthService, ls services.LogService, searcher services.Searcher, logger logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		config:      c,
		authService: as,
		logService:  ls,
		logger:      logger,
		reader:      bufio.NewReader(in),
		out:         &syncWriter{w: out},
	}
	a.download = func(ctx context.Context, url string) ([]byte, error) {
		return netx.DownloadPresignedURL(ctx, nil, url)
	}
	a.search = services.NewSearchSession(searcher, c.SearchDebounce, logger, a.printResults)
	return a
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.printf("Switched to %s mode\n", mode)
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	if name == "" {
		a.current = meallog.DailyLog{}
	}
	a.mu.Unlock()
}

func (a *App) setCurrent(l meallog.DailyLog) {
	a.mu.Lock()
	a.current = l
	a.mu.Unlock()
}

// versionFor is the version token to send for a write to date, or 0 when
// the log of that day has not been seen yet.
func (a *App) versionFor(date string) int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current.Date == date {
		return a.current.Version
	}
	return 0
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := ""
	if a.userName != "" {
		s = a.userName + " "
	}
	if a.mode != "" {
		s = s + string(a.mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := a.authService.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx ends.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Run resumes the saved session, starts the connectivity watcher and blocks
// in the REPL until the user exits, the input ends or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		a.shutdown(context.Background())
	}()

	a.printf("Welcome to MealTrack CLI (type 'help' for commands)\n")
	a.checkOnline(ctx)
	a.resume(ctx)

	wg.Add(1)
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		runREPL(ctx, a, a.getStatus, a.reader, a.out)
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (a *App) resume(ctx context.Context) {
	user, err := a.authService.Resume(ctx)
	if err != nil {
		if !errors.Is(err, client.ErrNoSession) {
			a.logger.Info(ctx, "session not resumed", "error", err)
		}
		return
	}
	a.setUser(user)
	a.printf("Resumed session of %s\n", user)
}

// shutdown releases the watch, the search session and the connection.
func (a *App) shutdown(ctx context.Context) {
	a.stopWatch()
	a.search.Close()
	a.saveSession(ctx)
	if err := a.authService.Close(ctx); err != nil {
		a.logger.Warn(ctx, "close client", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) printResults(query string, res nutritionix.SearchResult) {
	if len(res.Common)+len(res.Branded) == 0 {
		a.printf("\nNo foods found for %q\n", query)
		return
	}
	a.printf("\nResults for %q:\n", query)
	n := 1
	for _, group := range []struct {
		title string
		items []nutritionix.FoodCandidate
	}{{"Common", res.Common}, {"Branded", res.Branded}} {
		if len(group.items) == 0 {
			continue
		}
		a.printf("  %s\n", group.title)
		for _, c := range group.items {
			a.printf("    #%d %s\n", n, c.Label)
			n++
		}
	}
}
