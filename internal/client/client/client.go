package client

import (
	"context"

	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
)

// SummaryStream delivers successive snapshots of a watched daily log.
type SummaryStream interface {
	Recv() (meallog.Summary, error)
}

type Client interface {
	Close() error
	Register(ctx context.Context, username, password string) error
	Login(ctx context.Context, username, password string) error
	Resume(ctx context.Context, refreshToken string) error
	Logout(ctx context.Context) error
	RefreshToken() string
	Ping(ctx context.Context) error
	GetDailyLog(ctx context.Context, date string) (meallog.DailyLog, error)
	AppendEntry(ctx context.Context, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error)
	DeleteEntry(ctx context.Context, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error)
	GetTotals(ctx context.Context, date string) (meallog.Summary, error)
	SearchFoods(ctx context.Context, query string) (nutritionix.SearchResult, error)
	LookupNutrients(ctx context.Context, query string) (nutritionix.NutrientDetail, error)
	ExportDailyLog(ctx context.Context, date string) (key string, url string, err error)
	WatchDailyLog(ctx context.Context, date string) (SummaryStream, error)
}
