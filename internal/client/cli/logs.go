package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/mealtrack/internal/filex"
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
)

// dateArg returns args[i] or today's key.
func (a *App) dateArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return a.logService.Today()
}

// Search updates the query of the search session. Results are printed by
// the session once the input has been quiet for the debounce interval.
func (a *App) Search(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	a.search.Type(query)
	if strings.TrimSpace(query) == "" {
		a.printf("Search cleared\n")
	}
	return nil
}

// candidateQuery is the natural language query for a search hit. Branded
// labels carry a " - <kcal> kcal" suffix that is not part of the name.
func candidateQuery(c nutritionix.FoodCandidate) string {
	if c.Source == nutritionix.SourceBranded {
		if i := strings.LastIndex(c.Label, " - "); i > 0 {
			return c.Label[:i]
		}
	}
	return c.Label
}

// Add logs an entry for today, either from search hit #n or with explicit
// calories and name.
func (a *App) Add(ctx context.Context, args []string) error {
	const usage = errUsage("add <category> #<n> [quantity] [measure] | add <category> <calories> <name>")
	if len(args) < 2 {
		return usage
	}
	category, err := meallog.ParseCategory(args[0])
	if err != nil {
		return err
	}

	var name string
	var calories int

	if strings.HasPrefix(args[1], "#") {
		n, err := strconv.Atoi(strings.TrimPrefix(args[1], "#"))
		if err != nil {
			return usage
		}
		candidate, ok := a.search.Candidate(n)
		if !ok {
			return errUsage("search first, then pick a listed #<n>")
		}
		quantity := 1.0
		if len(args) > 2 {
			if quantity, err = strconv.ParseFloat(args[2], 64); err != nil || quantity <= 0 {
				return usage
			}
		}
		measure := ""
		if len(args) > 3 {
			measure = strings.Join(args[3:], " ")
		}
		detail, err := a.search.Select(ctx, candidateQuery(candidate))
		if err != nil {
			return err
		}
		if calories, err = a.search.Calories(measure, quantity); err != nil {
			return err
		}
		name = detail.FoodName
	} else {
		if len(args) < 3 {
			return usage
		}
		if calories, err = strconv.Atoi(args[1]); err != nil {
			return usage
		}
		name = strings.Join(args[2:], " ")
	}

	entry, l, err := a.logService.Add(ctx, a.logService.Today(), category, name, calories)
	if err != nil {
		return err
	}
	a.setCurrent(l)
	a.printf("Added #%d %s (%d kcal) to %s\n", entry.ID, entry.Name, entry.Calories, category)
	return nil
}

// Delete removes an entry by id. The version of the last shown log is sent
// along, so a log changed elsewhere in the meantime is not overwritten.
func (a *App) Delete(ctx context.Context, args []string) error {
	const usage = errUsage("delete <category> <id> [date]")
	if len(args) < 2 {
		return usage
	}
	category, err := meallog.ParseCategory(args[0])
	if err != nil {
		return err
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(args[1], "#"), 10, 64)
	if err != nil {
		return usage
	}
	date := a.dateArg(args, 2)

	l, err := a.logService.Delete(ctx, date, category, id, a.versionFor(date))
	if err != nil {
		return err
	}
	a.setCurrent(l)
	a.printf("Deleted #%d from %s\n", id, category)
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	l, err := a.logService.Fetch(ctx, a.dateArg(args, 0))
	if err != nil {
		return err
	}
	a.setCurrent(l)
	a.printLog(l)
	return nil
}

func (a *App) Totals(ctx context.Context, args []string) error {
	s, err := a.logService.Totals(ctx, a.dateArg(args, 0))
	if err != nil {
		return err
	}
	a.setCurrent(s.Log)
	a.printSummary(s)
	return nil
}

// Export snapshots a log to object storage and prints the download link.
// With a file argument the snapshot is also downloaded and saved there.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) > 2 {
		return errUsage("export [date] [file]")
	}
	key, url, err := a.logService.Export(ctx, a.dateArg(args, 0))
	if err != nil {
		return err
	}
	a.printf("Exported to %s\nDownload: %s\n", key, url)

	if len(args) < 2 {
		return nil
	}
	data, err := a.download(ctx, url)
	if err != nil {
		return err
	}
	if err := filex.WriteFile(args[1], data); err != nil {
		return err
	}
	a.printf("Saved %d bytes to %s\n", len(data), args[1])
	return nil
}

func (a *App) printLog(l meallog.DailyLog) {
	a.printf("%s (version %d)\n", l.Date, l.Version)
	if l.IsEmpty() {
		a.printf("  nothing logged\n")
		return
	}
	for _, c := range meallog.Categories {
		entries := l.Entries(c)
		if len(entries) == 0 {
			continue
		}
		a.printf("  %s\n", c)
		for _, e := range entries {
			a.printf("    #%d  %-30s %5d kcal\n", e.ID, e.Name, e.Calories)
		}
	}
}

func (a *App) printSummary(s meallog.Summary) {
	t := s.Totals
	a.printf("%s: Breakfast %d | Lunch %d | Snack %d | Dinner %d | Total %d kcal\n",
		s.Log.Date, t.Breakfast, t.Lunch, t.Snack, t.Dinner, t.Total)
	for _, series := range []meallog.Series{s.Meals, s.Consumption} {
		parts := make([]string, 0, len(series.Labels))
		for i, label := range series.Labels {
			parts = append(parts, label+" "+strconv.Itoa(series.Values[i]))
		}
		a.printf("  %s\n", strings.Join(parts, ", "))
	}
}
