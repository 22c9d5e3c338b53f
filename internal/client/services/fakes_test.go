package services

import (
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mealtrack/internal/client/client"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeClient implements client.Client for unit tests.
type fakeClient struct {
	mu sync.Mutex

	CloseErr    error
	RegisterErr error
	LoginErr    error
	ResumeErr   error
	LogoutErr   error
	PingErr     error

	// refresh token handed out by Login and Resume
	NextRefresh string
	refresh     string

	LastRegisterUser string
	LastRegisterPass string
	LastResumeToken  string
	LogoutCalls      int

	Log        meallog.DailyLog
	AppendErr  error
	DeleteErr  error
	LastDelete []any
	AppendCall int

	WatchErr error
	Updates  chan meallog.Summary

	ExportKey, ExportURL string
}

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) Register(ctx context.Context, username, password string) error {
	f.LastRegisterUser, f.LastRegisterPass = username, password
	return f.RegisterErr
}

func (f *fakeClient) Login(ctx context.Context, username, password string) error {
	if f.LoginErr != nil {
		return f.LoginErr
	}
	f.mu.Lock()
	f.refresh = f.NextRefresh
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) Resume(ctx context.Context, refreshToken string) error {
	f.LastResumeToken = refreshToken
	if f.ResumeErr != nil {
		return f.ResumeErr
	}
	f.mu.Lock()
	f.refresh = f.NextRefresh
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.LogoutCalls++
	f.mu.Lock()
	f.refresh = ""
	f.mu.Unlock()
	return f.LogoutErr
}

func (f *fakeClient) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeClient) setRefresh(r string) {
	f.mu.Lock()
	f.refresh = r
	f.mu.Unlock()
}

func (f *fakeClient) Ping(ctx context.Context) error { return f.PingErr }

func (f *fakeClient) GetDailyLog(ctx context.Context, date string) (meallog.DailyLog, error) {
	l := f.Log
	l.Date = date
	return l, nil
}

func (f *fakeClient) AppendEntry(ctx context.Context, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error) {
	f.AppendCall++
	if f.AppendErr != nil {
		return meallog.MealEntry{}, meallog.DailyLog{}, f.AppendErr
	}
	l, e := f.Log.Append(c, name, calories, fixedNow)
	l.Date = date
	l.Version++
	f.Log = l
	return e, l, nil
}

func (f *fakeClient) DeleteEntry(ctx context.Context, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error) {
	f.LastDelete = []any{date, c, id, expectedVersion}
	if f.DeleteErr != nil {
		return meallog.DailyLog{}, f.DeleteErr
	}
	l, _ := f.Log.Remove(c, id)
	return l, nil
}

func (f *fakeClient) GetTotals(ctx context.Context, date string) (meallog.Summary, error) {
	return meallog.Summarize(f.Log), nil
}

func (f *fakeClient) SearchFoods(ctx context.Context, query string) (nutritionix.SearchResult, error) {
	return nutritionix.SearchResult{}, nil
}

func (f *fakeClient) LookupNutrients(ctx context.Context, query string) (nutritionix.NutrientDetail, error) {
	return nutritionix.NutrientDetail{}, nil
}

func (f *fakeClient) ExportDailyLog(ctx context.Context, date string) (string, string, error) {
	return f.ExportKey, f.ExportURL, nil
}

func (f *fakeClient) WatchDailyLog(ctx context.Context, date string) (client.SummaryStream, error) {
	if f.WatchErr != nil {
		return nil, f.WatchErr
	}
	return &fakeStream{ctx: ctx, ch: f.Updates}, nil
}

// fakeStream ends with io.EOF once ch is closed.
type fakeStream struct {
	ctx context.Context
	ch  chan meallog.Summary
}

func (s *fakeStream) Recv() (meallog.Summary, error) {
	select {
	case <-s.ctx.Done():
		return meallog.Summary{}, s.ctx.Err()
	case sum, ok := <-s.ch:
		if !ok {
			return meallog.Summary{}, io.EOF
		}
		return sum, nil
	}
}
