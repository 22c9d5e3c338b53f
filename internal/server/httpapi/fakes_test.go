package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
	"github.com/dmitrijs2005/mealtrack/internal/server/auth"
	"github.com/dmitrijs2005/mealtrack/internal/server/models"
	"github.com/dmitrijs2005/mealtrack/internal/server/notify"
	"github.com/dmitrijs2005/mealtrack/internal/server/services"
)

var testSecret = []byte("k")

type fakeUsers struct {
	mu      sync.Mutex
	names   map[string]bool
	refresh map[string]time.Time
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{names: map[string]bool{}, refresh: map[string]time.Time{}}
}

func (f *fakeUsers) Register(ctx context.Context, username, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if username == "" || password == "" {
		return nil, common.ErrValidation
	}
	if f.names[username] {
		return nil, common.ErrAlreadyExists
	}
	f.names[username] = true
	return &models.User{ID: "id-" + username, UserName: username}, nil
}

func (f *fakeUsers) Login(ctx context.Context, username, password string) (*services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.names[username] || password != "pw" {
		return nil, common.ErrorUnauthorized
	}
	tok, err := auth.GenerateToken("id-"+username, testSecret, time.Hour)
	if err != nil {
		return nil, err
	}
	f.refresh["r-"+username] = time.Now().Add(time.Hour)
	return &services.TokenPair{AccessToken: tok, RefreshToken: "r-" + username}, nil
}

func (f *fakeUsers) RefreshToken(ctx context.Context, token string) (*services.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	exp, ok := f.refresh[token]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	if exp.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: token + "2"}, nil
}

func (f *fakeUsers) Logout(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refresh, token)
	return nil
}

func (f *fakeUsers) UserIDFromAccessToken(token string) (string, error) {
	return auth.GetUserIDFromToken(token, testSecret)
}

type fakeLogs struct {
	mu   sync.Mutex
	hub  *notify.Hub
	docs map[string]meallog.DailyLog
	now  int64
}

func newFakeLogs(hub *notify.Hub) *fakeLogs {
	return &fakeLogs{hub: hub, docs: map[string]meallog.DailyLog{}}
}

func (f *fakeLogs) getLocked(userID, date string) (meallog.DailyLog, error) {
	date, err := common.ParseDate(date)
	if err != nil {
		return meallog.DailyLog{}, err
	}
	if l, ok := f.docs[userID+"|"+date]; ok {
		return l, nil
	}
	return meallog.Empty(date), nil
}

func (f *fakeLogs) putLocked(userID string, l meallog.DailyLog) meallog.DailyLog {
	l.Version++
	f.docs[userID+"|"+l.Date] = l
	f.hub.Publish(userID, l)
	return l
}

func (f *fakeLogs) Fetch(ctx context.Context, userID, date string) (meallog.DailyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getLocked(userID, date)
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
	cur, err := f.getLocked(userID, date)
	if err != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, err
	}
	if err := meallog.ValidateEntry(c, name, calories); err != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, err
	}
	f.now++
	next, e := cur.Append(c, name, calories, time.UnixMilli(f.now))
	return e, f.putLocked(userID, next), nil
}

func (f *fakeLogs) DeleteEntry(ctx context.Context, userID, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, err := f.getLocked(userID, date)
	if err != nil {
		return meallog.DailyLog{}, err
	}
	if expectedVersion > 0 && expectedVersion != cur.Version {
		return meallog.DailyLog{}, common.ErrVersionConflict
	}
	next, found := cur.Remove(c, id)
	if !found {
		return cur, nil
	}
	return f.putLocked(userID, next), nil
}

func (f *fakeLogs) Subscribe(ctx context.Context, userID, date string) (*notify.Subscription, error) {
	l, err := f.Fetch(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	return f.hub.Subscribe(ctx, userID, l.Date, l), nil
}

type fakeFoods struct {
	lookupErr error
}

func (f *fakeFoods) Search(ctx context.Context, q string) nutritionix.SearchResult {
	res := nutritionix.SearchResult{Common: []nutritionix.FoodCandidate{}, Branded: []nutritionix.FoodCandidate{}}
	if q == "apple" {
		res.Common = append(res.Common, nutritionix.FoodCandidate{ID: "t1", Label: "apple", Source: nutritionix.SourceCommon})
	}
	return res
}

func (f *fakeFoods) LookupNutrients(ctx context.Context, d string) (nutritionix.NutrientDetail, error) {
	if f.lookupErr != nil {
		return nutritionix.NutrientDetail{}, f.lookupErr
	}
	return nutritionix.NutrientDetail{FoodName: d, Calories: 95, ServingWeightGrams: 182}, nil
}

type fakeExports struct{}

func (fakeExports) Export(ctx context.Context, userID, date string) (string, string, error) {
	if _, err := common.ParseDate(date); err != nil {
		return "", "", err
	}
	return "users/" + userID + "/exports/" + date + "/x.json", "https://s3.local/x", nil
}
