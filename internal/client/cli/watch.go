package cli

import (
	"context"

	"github.com/dmitrijs2005/mealtrack/internal/meallog"
)

// Watch subscribes to a daily log and prints every snapshot. Only one watch
// is active at a time; starting another closes the previous one.
func (a *App) Watch(ctx context.Context, args []string) error {
	a.stopWatch()

	w, err := a.logService.Watch(ctx, a.dateArg(args, 0), func(s meallog.Summary) {
		a.setCurrent(s.Log)
		a.printf("\n[update] ")
		a.printSummary(s)
	})
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.watch = w
	a.mu.Unlock()
	a.printf("Watching %s, type 'unwatch' to stop\n", w.Date)
	return nil
}

func (a *App) Unwatch(ctx context.Context) error {
	if !a.stopWatch() {
		a.printf("Not watching\n")
		return nil
	}
	a.printf("Stopped watching\n")
	return nil
}

// stopWatch closes the active watch and reports whether there was one.
func (a *App) stopWatch() bool {
	a.mu.Lock()
	w := a.watch
	a.watch = nil
	a.mu.Unlock()
	if w == nil {
		return false
	}
	w.Close()
	return true
}
