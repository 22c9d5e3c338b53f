package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/common"
	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/server/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = "2024-03-01"

func newDailyLogService(t *testing.T) (*DailyLogService, *fakeRepoManager, *notify.Hub) {
	t.Helper()
	rm := newFakeRepoManager()
	hub := notify.NewHub(logging.Nop{})
	t.Cleanup(hub.Close)

	s := NewDailyLogService(newTxDB(t), rm, hub, logging.Nop{})
	now := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, rm, hub
}

func TestFetch_MissingDayIsEmpty(t *testing.T) {
	s, _, _ := newDailyLogService(t)

	l, err := s.Fetch(context.Background(), "u1", day)
	require.NoError(t, err)
	assert.Equal(t, day, l.Date)
	assert.Equal(t, int64(0), l.Version)
	assert.True(t, l.IsEmpty())
}

func TestFetch_Errors(t *testing.T) {
	s, rm, _ := newDailyLogService(t)
	ctx := context.Background()

	_, err := s.Fetch(ctx, "u1", "03/01/2024")
	assert.ErrorIs(t, err, common.ErrValidation)

	rm.l.getErr = errBoom{}
	_, err = s.Fetch(ctx, "u1", day)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading daily log")
}

func TestAppendEntry_ThenFetch(t *testing.T) {
	s, rm, _ := newDailyLogService(t)
	ctx := context.Background()

	e1, l, err := s.AppendEntry(ctx, "u1", day, meallog.Breakfast, "Oatmeal", 70)
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.Version)
	assert.Equal(t, s.now().UnixMilli(), e1.ID)

	e2, l, err := s.AppendEntry(ctx, "u1", day, meallog.Breakfast, "Oatmeal", 70)
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.Version)
	assert.Greater(t, e2.ID, e1.ID, "ids stay unique under a frozen clock")

	_, _, err = s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Rice", 200)
	require.NoError(t, err)

	got, err := s.Fetch(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, []meallog.MealEntry{e1, e2}, got.Meals.Breakfast)
	assert.Len(t, got.Meals.Lunch, 1)

	sum, err := s.Summary(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, meallog.Totals{Breakfast: 140, Lunch: 200, Total: 340}, sum.Totals)

	assert.Equal(t, []string{"u1|2024-03-01|1", "u1|2024-03-01|2", "u1|2024-03-01|3"}, rm.l.notified)

	other, err := s.Fetch(ctx, "u2", day)
	require.NoError(t, err)
	assert.True(t, other.IsEmpty(), "logs are per user")
}

func TestAppendEntry_Validation(t *testing.T) {
	s, rm, _ := newDailyLogService(t)
	ctx := context.Background()

	_, _, err := s.AppendEntry(ctx, "u1", "bad", meallog.Lunch, "Rice", 1)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, _, err = s.AppendEntry(ctx, "u1", day, meallog.Category("Brunch"), "Rice", 1)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, _, err = s.AppendEntry(ctx, "u1", day, meallog.Lunch, "", 1)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Equal(t, 0, rm.l.saves)
}

func TestAppendEntry_RetriesAfterLostRace(t *testing.T) {
	s, rm, _ := newDailyLogService(t)
	ctx := context.Background()

	// A second writer lands between this call's read and its write.
	rm.l.onGet = func() {
		_, _, err := s.AppendEntry(ctx, "u1", day, meallog.Dinner, "Soup", 150)
		require.NoError(t, err)
	}

	_, l, err := s.AppendEntry(ctx, "u1", day, meallog.Snack, "Apple", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(2), l.Version)
	assert.Len(t, l.Meals.Dinner, 1, "the concurrent append survives")
	assert.Len(t, l.Meals.Snack, 1)
}

func TestAppendEntry_ConcurrentWritersAllLand(t *testing.T) {
	s, _, _ := newDailyLogService(t)
	ctx := context.Background()

	const writers = 4
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Rice", 100)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	l, err := s.Fetch(ctx, "u1", day)
	require.NoError(t, err)
	assert.Len(t, l.Meals.Lunch, writers)
	assert.Equal(t, int64(writers), l.Version)
}

func TestAppendEntry_SaveError(t *testing.T) {
	s, rm, _ := newDailyLogService(t)
	rm.l.saveErr = errBoom{}

	_, _, err := s.AppendEntry(context.Background(), "u1", day, meallog.Lunch, "Rice", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error writing daily log")
	assert.Empty(t, rm.l.notified)
}

func TestDeleteEntry_ByIDKeepsSameNamedEntries(t *testing.T) {
	s, _, _ := newDailyLogService(t)
	ctx := context.Background()

	a, _, err := s.AppendEntry(ctx, "u1", day, meallog.Breakfast, "Egg", 80)
	require.NoError(t, err)
	b, _, err := s.AppendEntry(ctx, "u1", day, meallog.Breakfast, "Egg", 80)
	require.NoError(t, err)

	l, err := s.DeleteEntry(ctx, "u1", day, meallog.Breakfast, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, []meallog.MealEntry{b}, l.Meals.Breakfast)
	assert.Equal(t, int64(3), l.Version)

	l, err = s.DeleteEntry(ctx, "u1", day, meallog.Breakfast, b.ID, l.Version)
	require.NoError(t, err)
	assert.Nil(t, l.Meals.Breakfast)
	assert.True(t, l.IsEmpty())
}

func TestDeleteEntry_StaleVersion(t *testing.T) {
	s, rm, _ := newDailyLogService(t)
	ctx := context.Background()

	e, _, err := s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Rice", 200)
	require.NoError(t, err)
	_, _, err = s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Beans", 120)
	require.NoError(t, err)
	saves := rm.l.saves

	_, err = s.DeleteEntry(ctx, "u1", day, meallog.Lunch, e.ID, 1)
	assert.ErrorIs(t, err, common.ErrVersionConflict)
	assert.Equal(t, saves, rm.l.saves, "nothing written")

	l, err := s.Fetch(ctx, "u1", day)
	require.NoError(t, err)
	assert.Len(t, l.Meals.Lunch, 2)
}

func TestDeleteEntry_MissingIDIsNoop(t *testing.T) {
	s, rm, _ := newDailyLogService(t)
	ctx := context.Background()

	_, _, err := s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Rice", 200)
	require.NoError(t, err)

	l, err := s.DeleteEntry(ctx, "u1", day, meallog.Lunch, 42, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.Version)
	assert.Len(t, l.Meals.Lunch, 1)
	assert.Equal(t, 1, rm.l.saves)

	l, err = s.DeleteEntry(ctx, "u1", "2024-03-02", meallog.Lunch, 42, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), l.Version)
}

func TestDeleteEntry_Validation(t *testing.T) {
	s, _, _ := newDailyLogService(t)
	ctx := context.Background()

	_, err := s.DeleteEntry(ctx, "u1", "nope", meallog.Lunch, 1, 0)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = s.DeleteEntry(ctx, "u1", day, meallog.Category("Brunch"), 1, 0)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestDeleteEntry_RetriesWithoutExpectedVersion(t *testing.T) {
	s, rm, _ := newDailyLogService(t)
	ctx := context.Background()

	e, _, err := s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Rice", 200)
	require.NoError(t, err)

	rm.l.onGet = func() {
		_, _, err := s.AppendEntry(ctx, "u1", day, meallog.Dinner, "Soup", 150)
		require.NoError(t, err)
	}

	l, err := s.DeleteEntry(ctx, "u1", day, meallog.Lunch, e.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, l.Meals.Lunch)
	assert.Len(t, l.Meals.Dinner, 1)
	assert.Equal(t, int64(3), l.Version)
}

func TestSubscribe_InitialThenUpdates(t *testing.T) {
	s, _, hub := newDailyLogService(t)
	ctx := context.Background()

	_, _, err := s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Rice", 200)
	require.NoError(t, err)

	sub, err := s.Subscribe(ctx, "u1", day)
	require.NoError(t, err)

	select {
	case l := <-sub.C():
		assert.Equal(t, int64(1), l.Version)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	_, _, err = s.AppendEntry(ctx, "u1", day, meallog.Dinner, "Soup", 150)
	require.NoError(t, err)

	select {
	case l := <-sub.C():
		assert.Equal(t, int64(2), l.Version)
		assert.Len(t, l.Meals.Dinner, 1)
	case <-time.After(time.Second):
		t.Fatal("no update")
	}

	sub.Close()
	assert.Equal(t, 0, hub.Subscribers())
	_, open := <-sub.C()
	assert.False(t, open)
}

func TestSubscribe_WriteBeforeRegistrationIsDelivered(t *testing.T) {
	s, rm, hub := newDailyLogService(t)
	ctx := context.Background()

	// The write lands after the first read but before the hub knows about
	// the subscriber, so its own publish reaches nobody.
	rm.l.onGet = func() {
		_, _, err := s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Rice", 200)
		require.NoError(t, err)
	}

	sub, err := s.Subscribe(ctx, "u1", day)
	require.NoError(t, err)
	defer sub.Close()

	select {
	case l := <-sub.C():
		assert.Equal(t, int64(1), l.Version)
		assert.Len(t, l.Meals.Lunch, 1)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}
	assert.Equal(t, 1, hub.Subscribers())
}

func TestSubscribe_SecondReadErrorClosesSubscription(t *testing.T) {
	s, rm, hub := newDailyLogService(t)
	ctx := context.Background()

	rm.l.onGet = func() {
		rm.l.mu.Lock()
		rm.l.getErr = errBoom{}
		rm.l.mu.Unlock()
	}

	_, err := s.Subscribe(ctx, "u1", day)
	require.Error(t, err)
	assert.Equal(t, 0, hub.Subscribers())
}

func TestSubscribe_EndsWithContext(t *testing.T) {
	s, _, hub := newDailyLogService(t)
	ctx, cancel := context.WithCancel(context.Background())

	sub, err := s.Subscribe(ctx, "u1", day)
	require.NoError(t, err)
	<-sub.C()
	cancel()

	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, time.Second, 5*time.Millisecond)

	_, err = s.Subscribe(context.Background(), "u1", "x")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestReload(t *testing.T) {
	s, _, _ := newDailyLogService(t)
	ctx := context.Background()

	_, _, err := s.AppendEntry(ctx, "u1", day, meallog.Lunch, "Rice", 200)
	require.NoError(t, err)

	l, err := s.Reload(ctx, "u1", day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), l.Version)
}
