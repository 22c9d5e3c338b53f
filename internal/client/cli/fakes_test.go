package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/client/client"
	"github.com/dmitrijs2005/mealtrack/internal/client/config"
	"github.com/dmitrijs2005/mealtrack/internal/client/services"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is safe to read while the app writes from other goroutines.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// fakeClient is an in-memory backend for one user.
type fakeClient struct {
	mu sync.Mutex

	password  string
	pingErr   error
	deleteErr error
	closed    bool
	logouts   int
	refresh   string

	logs         map[string]meallog.DailyLog
	lastVersion  int64
	foods        nutritionix.SearchResult
	detail       nutritionix.NutrientDetail
	lastLookup   string
	exportURL    string
	watchUpdates chan meallog.Summary
}

func newFakeClient() *fakeClient {
	return &fakeClient{password: "pw", logs: map[string]meallog.DailyLog{}, watchUpdates: make(chan meallog.Summary, 4)}
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeClient) Register(ctx context.Context, username, password string) error {
	if username == "taken" {
		return client.ErrUserExists
	}
	return nil
}

func (f *fakeClient) Login(ctx context.Context, username, password string) error {
	if password != f.password {
		return client.ErrUnauthorized
	}
	f.mu.Lock()
	f.refresh = "r-" + username
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) Resume(ctx context.Context, refreshToken string) error {
	if !strings.HasPrefix(refreshToken, "r-") {
		return client.ErrUnauthorized
	}
	f.mu.Lock()
	f.refresh = refreshToken
	f.mu.Unlock()
	return nil
}

func (f *fakeClient) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	f.refresh = ""
	return nil
}

func (f *fakeClient) RefreshToken() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refresh
}

func (f *fakeClient) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pingErr
}

func (f *fakeClient) setPingErr(err error) {
	f.mu.Lock()
	f.pingErr = err
	f.mu.Unlock()
}

func (f *fakeClient) GetDailyLog(ctx context.Context, date string) (meallog.DailyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l, ok := f.logs[date]; ok {
		return l, nil
	}
	return meallog.Empty(date), nil
}

func (f *fakeClient) AppendEntry(ctx context.Context, date string, c meallog.Category, name string, calories int) (meallog.MealEntry, meallog.DailyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.logs[date]
	if !ok {
		cur = meallog.Empty(date)
	}
	l, e := cur.Append(c, name, calories, time.UnixMilli(1000+cur.Version))
	l.Version++
	f.logs[date] = l
	return e, l, nil
}

func (f *fakeClient) DeleteEntry(ctx context.Context, date string, c meallog.Category, id int64, expectedVersion int64) (meallog.DailyLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastVersion = expectedVersion
	if f.deleteErr != nil {
		return meallog.DailyLog{}, f.deleteErr
	}
	cur := f.logs[date]
	l, found := cur.Remove(c, id)
	if found {
		l.Version++
		f.logs[date] = l
	}
	return l, nil
}

func (f *fakeClient) GetTotals(ctx context.Context, date string) (meallog.Summary, error) {
	l, _ := f.GetDailyLog(ctx, date)
	return meallog.Summarize(l), nil
}

func (f *fakeClient) SearchFoods(ctx context.Context, query string) (nutritionix.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.foods, nil
}

func (f *fakeClient) LookupNutrients(ctx context.Context, query string) (nutritionix.NutrientDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLookup = query
	return f.detail, nil
}

func (f *fakeClient) ExportDailyLog(ctx context.Context, date string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	url := f.exportURL
	if url == "" {
		url = "https://s3.local/x"
	}
	return "exports/u/" + date + ".json", url, nil
}

func (f *fakeClient) WatchDailyLog(ctx context.Context, date string) (client.SummaryStream, error) {
	return &fakeStream{ctx: ctx, ch: f.watchUpdates}, nil
}

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

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(_ io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}

// newTestApp wires real services over fc and a temporary session store.
func newTestApp(t *testing.T, fc *fakeClient, input string) (*App, *lockedBuffer) {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{OnlineCheckInterval: 10 * time.Millisecond, SearchDebounce: 10 * time.Millisecond}
	out := &lockedBuffer{}
	a := newApp(cfg, services.NewAuthService(fc, db), services.NewLogService(fc, logging.Nop{}), fc, logging.Nop{}, strings.NewReader(input), out)
	t.Cleanup(a.search.Close)
	return a, out
}

// login runs the login command for alice.
func login(t *testing.T, a *App) {
	t.Helper()
	stubPassword(t, "pw")
	orig := getSimpleText
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return "alice", nil }
	defer func() { getSimpleText = orig }()
	require.NoError(t, a.Login(context.Background()))
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
