package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/dbx"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/server/models"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/dailylogs"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/mealtrack/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	mu      sync.Mutex
	byName  map[string]*models.User
	nextID  int
	getErr  error
	create  error
	created []*models.User
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.create != nil {
		return nil, f.create
	}
	if _, ok := f.byName[u.UserName]; ok {
		return nil, common.ErrAlreadyExists
	}
	f.nextID++
	u.ID = fmt.Sprintf("user-%d", f.nextID)
	f.byName[u.UserName] = u
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byName[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type fakeRefreshRepo struct {
	mu        sync.Mutex
	tokens    map[string]*models.RefreshToken
	findErr   error
	delErr    error
	createErr error
	swept     int64
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: expiresAt}
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.tokens {
		if t.Expires.Before(now) {
			delete(f.tokens, k)
			n++
		}
	}
	f.swept += n
	return n, nil
}

// memLogs is an in-memory daily_logs table with the same version rules as
// the Postgres repository.
type memLogs struct {
	mu       sync.Mutex
	docs     map[string]meallog.DailyLog
	saves    int
	notified []string
	getErr   error
	saveErr  error
	// onGet runs once, outside the lock, before the first Get returns.
	onGet func()
}

func newMemLogs() *memLogs {
	return &memLogs{docs: map[string]meallog.DailyLog{}}
}

func (m *memLogs) Get(ctx context.Context, userID, date string) (meallog.DailyLog, error) {
	m.mu.Lock()
	hook := m.onGet
	m.onGet = nil
	err := m.getErr
	l, ok := m.docs[userID+"|"+date]
	m.mu.Unlock()

	if err != nil {
		return meallog.DailyLog{}, err
	}
	if hook != nil {
		hook()
	}
	if !ok {
		return meallog.DailyLog{}, common.ErrorNotFound
	}
	return l, nil
}

func (m *memLogs) Save(ctx context.Context, userID string, l meallog.DailyLog, expected int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	key := userID + "|" + l.Date
	if m.docs[key].Version != expected {
		return 0, common.ErrVersionConflict
	}
	l.Version = expected + 1
	m.docs[key] = l
	m.saves++
	return l.Version, nil
}

func (m *memLogs) Notify(ctx context.Context, userID, date string, version int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, dailylogs.FormatPayload(userID, date, version))
	return nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	l *memLogs
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{u: newFakeUsersRepo(), r: newFakeRefreshRepo(), l: newMemLogs()}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error         { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) DailyLogs(db dbx.DBTX) dailylogs.Repository         { return m.l }

// newTxDB returns a database that only serves BEGIN/COMMIT for dbx.WithTx.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
