package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/dbx"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/server/notify"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/repomanager"
)

// maxWriteAttempts bounds the read-modify-write loop under contention.
const maxWriteAttempts = 5

// DailyLogService reads and mutates per-user daily logs. Every write is a
// compare-and-set on the document version and is announced to the hub and
// to other instances through NOTIFY.
type DailyLogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hub         *notify.Hub
	log         logging.Logger
	now         func() time.Time
}

func NewDailyLogService(db *sql.DB, m repomanager.RepositoryManager, hub *notify.Hub, log logging.Logger) *DailyLogService {
	return &DailyLogService{
		db:          db,
		repomanager: m,
		hub:         hub,
		log:         log.With("module", "services.dailylog"),
		now:         time.Now,
	}
}

// Fetch returns the log for (userID, date). A day that was never written is
// an empty log with version 0.
func (s *DailyLogService) Fetch(ctx context.Context, userID, date string) (meallog.DailyLog, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return meallog.DailyLog{}, err
	}
	return s.fetch(ctx, userID, date)
}

func (s *DailyLogService) fetch(ctx context.Context, userID, date string) (meallog.DailyLog, error) {
	l, err := s.repomanager.DailyLogs(s.db).Get(ctx, userID, date)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return meallog.Empty(date), nil
		}
		return meallog.DailyLog{}, fmt.Errorf("error reading daily log: %w", err)
	}
	return l, nil
}

// Summary is Fetch plus totals and chart series.
func (s *DailyLogService) Summary(ctx context.Context, userID, date string) (meallog.Summary, error) {
	l, err := s.Fetch(ctx, userID, date)
	if err != nil {
		return meallog.Summary{}, err
	}
	return meallog.Summarize(l), nil
}

// AppendEntry adds an entry to category c, creating the document if needed.
// Concurrent writers are retried so that no append is lost.
func (s *DailyLogService) AppendEntry(ctx context.Context, userID, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, err
	}
	if err := meallog.ValidateEntry(c, name, calories); err != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, err
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		cur, err := s.fetch(ctx, userID, date)
		if err != nil {
			return meallog.MealEntry{}, meallog.DailyLog{}, err
		}

		next, entry := cur.Append(c, name, calories, s.now())
		next, err = s.save(ctx, userID, next, cur.Version)
		if errors.Is(err, common.ErrVersionConflict) {
			s.log.Debug(ctx, "append lost a race, retrying", "user_id", userID, "date", date, "attempt", attempt)
			continue
		}
		if err != nil {
			return meallog.MealEntry{}, meallog.DailyLog{}, err
		}
		return entry, next, nil
	}
	return meallog.MealEntry{}, meallog.DailyLog{}, fmt.Errorf("append gave up after %d attempts: %w", maxWriteAttempts, common.ErrVersionConflict)
}

// DeleteEntry removes entry id from category c. With expectedVersion > 0 the
// write only happens if the stored version still matches, otherwise
// common.ErrVersionConflict is returned and nothing changes. With 0 the
// service retries its own read-modify-write. A missing id leaves the log as
// it is.
func (s *DailyLogService) DeleteEntry(ctx context.Context, userID, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return meallog.DailyLog{}, err
	}
	if !c.Valid() {
		return meallog.DailyLog{}, fmt.Errorf("%w: unknown category %q", common.ErrValidation, c)
	}

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		cur, err := s.fetch(ctx, userID, date)
		if err != nil {
			return meallog.DailyLog{}, err
		}
		if expectedVersion > 0 && cur.Version != expectedVersion {
			return meallog.DailyLog{}, common.ErrVersionConflict
		}

		next, found := cur.Remove(c, id)
		if !found {
			return cur, nil
		}

		next, err = s.save(ctx, userID, next, cur.Version)
		if errors.Is(err, common.ErrVersionConflict) {
			if expectedVersion > 0 {
				return meallog.DailyLog{}, err
			}
			continue
		}
		if err != nil {
			return meallog.DailyLog{}, err
		}
		return next, nil
	}
	return meallog.DailyLog{}, fmt.Errorf("delete gave up after %d attempts: %w", maxWriteAttempts, common.ErrVersionConflict)
}

// Subscribe starts a live feed for (userID, date). The current snapshot is
// delivered first. The caller must Close the subscription; it is also
// closed when ctx ends.
//
// The log is read again once the subscription is registered, so a write
// that landed between the first read and registration is not missed.
func (s *DailyLogService) Subscribe(ctx context.Context, userID, date string) (*notify.Subscription, error) {
	cur, err := s.Fetch(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	sub := s.hub.Subscribe(ctx, userID, cur.Date, cur)

	again, err := s.fetch(ctx, userID, cur.Date)
	if err != nil {
		sub.Close()
		return nil, err
	}
	s.hub.Publish(userID, again)
	return sub, nil
}

// Reload is the notify.Loader used by the Postgres listener.
func (s *DailyLogService) Reload(ctx context.Context, userID, date string) (meallog.DailyLog, error) {
	return s.fetch(ctx, userID, date)
}

func (s *DailyLogService) save(ctx context.Context, userID string, next meallog.DailyLog, expected int64) (meallog.DailyLog, error) {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.DailyLogs(tx)
		version, err := repo.Save(ctx, userID, next, expected)
		if err != nil {
			return err
		}
		next.Version = version
		return repo.Notify(ctx, userID, next.Date, version)
	})
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return meallog.DailyLog{}, err
		}
		return meallog.DailyLog{}, fmt.Errorf("error writing daily log: %w", err)
	}

	s.hub.Publish(userID, next)
	s.log.Info(ctx, "daily log updated", "user_id", userID, "date", next.Date, "version", next.Version)
	return next, nil
}
