package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/client/client"
	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
)

// LogService reads and edits the signed-in user's daily logs.
type LogService interface {
	Today() string
	Fetch(ctx context.Context, date string) (meallog.DailyLog, error)
	Add(ctx context.Context, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error)
	Delete(ctx context.Context, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error)
	Totals(ctx context.Context, date string) (meallog.Summary, error)
	Watch(ctx context.Context, date string, onUpdate func(meallog.Summary)) (*Watch, error)
	Export(ctx context.Context, date string) (key string, url string, err error)
}

type logService struct {
	client client.Client
	logger logging.Logger
	now    func() time.Time
}

func NewLogService(client client.Client, logger logging.Logger) LogService {
	return &logService{client: client, logger: logger.With("module", "logs"), now: time.Now}
}

// Today is the current UTC day key.
func (s *logService) Today() string {
	return common.Today(s.now())
}

func (s *logService) Fetch(ctx context.Context, date string) (meallog.DailyLog, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return meallog.DailyLog{}, err
	}
	return s.client.GetDailyLog(ctx, date)
}

// Add validates the entry locally before sending it.
func (s *logService) Add(ctx context.Context, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, err
	}
	if err := meallog.ValidateEntry(c, name, calories); err != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, err
	}
	return s.client.AppendEntry(ctx, date, c, name, calories)
}

// Delete removes entry id. A non-zero expectedVersion is sent as the
// version token, so a log changed elsewhere yields client.ErrConflict.
func (s *logService) Delete(ctx context.Context, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return meallog.DailyLog{}, err
	}
	if !c.Valid() {
		_, err := meallog.ParseCategory(string(c))
		return meallog.DailyLog{}, err
	}
	return s.client.DeleteEntry(ctx, date, c, id, expectedVersion)
}

func (s *logService) Totals(ctx context.Context, date string) (meallog.Summary, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return meallog.Summary{}, err
	}
	return s.client.GetTotals(ctx, date)
}

func (s *logService) Export(ctx context.Context, date string) (string, string, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return "", "", err
	}
	return s.client.ExportDailyLog(ctx, date)
}

// Watch is a live subscription to one daily log. Close releases it.
type Watch struct {
	Date string

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once

	mu  sync.Mutex
	err error
}

// Watch subscribes to date and calls onUpdate for the initial snapshot and
// every later change, from a single goroutine. The subscription ends on Close
// or when the stream does. onUpdate must not call Close.
func (s *logService) Watch(ctx context.Context, date string, onUpdate func(meallog.Summary)) (*Watch, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	stream, err := s.client.WatchDailyLog(ctx, date)
	if err != nil {
		cancel()
		return nil, err
	}

	w := &Watch{Date: date, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		defer cancel()
		for {
			sum, err := stream.Recv()
			if err != nil {
				if ctx.Err() == nil && !errors.Is(err, io.EOF) {
					s.logger.Warn(ctx, "watch ended", "date", date, "error", err)
					w.setErr(err)
				}
				return
			}
			onUpdate(sum)
		}
	}()
	return w, nil
}

func (w *Watch) setErr(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

// Err reports why the stream ended on its own, if it failed.
func (w *Watch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Done is closed once the delivery goroutine has exited.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// Close cancels the stream and waits for the delivery goroutine. Repeated
// calls are no-ops.
func (w *Watch) Close() {
	w.once.Do(w.cancel)
	<-w.done
}
