// Package dailylogs stores one JSON document per user and day with an
// optimistic version counter.
package dailylogs

import (
	"context"

	"github.com/dmitrijs2005/mealtrack/internal/meallog"
)

// NotifyChannel is the LISTEN/NOTIFY channel written on every save.
const NotifyChannel = "daily_logs"

type Repository interface {
	// Get returns common.ErrorNotFound when the day was never written.
	Get(ctx context.Context, userID, date string) (meallog.DailyLog, error)

	// Save writes log if the stored version still equals expected (0 for a
	// document that does not exist yet) and returns the new version. A lost
	// race yields common.ErrVersionConflict.
	Save(ctx context.Context, userID string, log meallog.DailyLog, expected int64) (int64, error)

	// Notify announces a new version to other server instances. Inside a
	// transaction the notification is delivered on commit.
	Notify(ctx context.Context, userID, date string, version int64) error
}
