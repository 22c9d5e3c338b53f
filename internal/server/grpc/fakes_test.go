package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
	"github.com/dmitrijs2005/mealtrack/internal/server/auth"
	"github.com/dmitrijs2005/mealtrack/internal/server/models"
	"github.com/dmitrijs2005/mealtrack/internal/server/notify"
	"github.com/dmitrijs2005/mealtrack/internal/server/services"
)

var testSecret = []byte("k")

type fakeUser struct {
	regResp   *models.User
	regErr    error
	loginResp *services.TokenPair
	loginErr  error

	refreshResp *services.TokenPair
	refreshErr  error

	logoutErr error
}

func (f *fakeUser) Register(ctx context.Context, username, password string) (*models.User, error) {
	return f.regResp, f.regErr
}
func (f *fakeUser) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	return f.loginResp, f.loginErr
}
func (f *fakeUser) RefreshToken(ctx context.Context, refresh string) (*services.TokenPair, error) {
	return f.refreshResp, f.refreshErr
}
func (f *fakeUser) Logout(ctx context.Context, refresh string) error { return f.logoutErr }
func (f *fakeUser) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, testSecret)
}

// fakeLogs keeps documents in memory and publishes writes to a real hub.
type fakeLogs struct {
	mu      sync.Mutex
	hub     *notify.Hub
	docs    map[string]meallog.DailyLog
	lastUID string
	lastExp int64
	err     error
}

func newFakeLogs(hub *notify.Hub) *fakeLogs {
	return &fakeLogs{hub: hub, docs: map[string]meallog.DailyLog{}}
}

func (f *fakeLogs) getLocked(userID, date string) meallog.DailyLog {
	if l, ok := f.docs[userID+"|"+date]; ok {
		return l
	}
	return meallog.Empty(date)
}

func (f *fakeLogs) Fetch(ctx context.Context, userID, date string) (meallog.DailyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUID = userID
	if f.err != nil {
		return meallog.DailyLog{}, f.err
	}
	return f.getLocked(userID, date), nil
}

func (f *fakeLogs) Summary(ctx context.Context, userID, date string) (meallog.Summary, error) {
	l, err := f.Fetch(ctx, userID, date)
	if err != nil {
		return meallog.Summary{}, err
	}
	return meallog.Summarize(l), nil
}

func (f *fakeLogs) AppendEntry(ctx context.Context, userID, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUID = userID
	if f.err != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, f.err
	}
	next, e := f.getLocked(userID, date).Append(c, name, calories, time.UnixMilli(1000))
	next.Version++
	f.docs[userID+"|"+date] = next
	f.hub.Publish(userID, next)
	return e, next, nil
}

func (f *fakeLogs) DeleteEntry(ctx context.Context, userID, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUID = userID
	f.lastExp = expectedVersion
	if f.err != nil {
		return meallog.DailyLog{}, f.err
	}
	next, _ := f.getLocked(userID, date).Remove(c, id)
	return next, nil
}

func (f *fakeLogs) Subscribe(ctx context.Context, userID, date string) (*notify.Subscription, error) {
	l, err := f.Fetch(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return f.hub.Subscribe(ctx, userID, date, l), nil
}

type fakeFoods struct {
	res       nutritionix.SearchResult
	detail    nutritionix.NutrientDetail
	lookupErr error
}

func (f *fakeFoods) Search(ctx context.Context, q string) nutritionix.SearchResult { return f.res }
func (f *fakeFoods) LookupNutrients(ctx context.Context, d string) (nutritionix.NutrientDetail, error) {
	return f.detail, f.lookupErr
}

type fakeExports struct {
	key, url string
	err      error
}

func (f *fakeExports) Export(ctx context.Context, userID, date string) (string, string, error) {
	return f.key, f.url, f.err
}
