package notify

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/dailylogs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Loader re-reads a document after a remote change.
type Loader func(ctx context.Context, userID, date string) (meallog.DailyLog, error)

type listenConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// connectListener is a seam for tests.
var connectListener = func(ctx context.Context, dsn string) (listenConn, error) {
	c, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// PGListener holds a dedicated connection on LISTEN daily_logs and
// republishes changed documents to the hub.
type PGListener struct {
	dsn          string
	hub          *Hub
	load         Loader
	log          logging.Logger
	retryBackoff time.Duration
}

func NewPGListener(dsn string, hub *Hub, load Loader, log logging.Logger) *PGListener {
	return &PGListener{
		dsn:          dsn,
		hub:          hub,
		load:         load,
		log:          log.With("module", "notify.listener"),
		retryBackoff: time.Second,
	}
}

// Run listens until ctx is done, reconnecting after connection failures.
func (l *PGListener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn(ctx, "listener connection lost", "error", err)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retryBackoff):
		}
	}
}

func (l *PGListener) listen(ctx context.Context) error {
	conn, err := connectListener(ctx, l.dsn)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+dailylogs.NotifyChannel); err != nil {
		return err
	}
	l.log.Info(ctx, "listening", "channel", dailylogs.NotifyChannel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		l.handle(ctx, n.Payload)
	}
}

func (l *PGListener) handle(ctx context.Context, payload string) {
	userID, date, version, err := dailylogs.ParsePayload(payload)
	if err != nil {
		l.log.Warn(ctx, "ignoring notification", "payload", payload, "error", err)
		return
	}
	if !l.hub.Wants(userID, date, version) {
		return
	}

	snap, err := l.load(ctx, userID, date)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.log.Error(ctx, "reload after notification failed", "user_id", userID, "date", date, "error", err)
		}
		return
	}
	l.hub.Publish(userID, snap)
}
