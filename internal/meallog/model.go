package meallog

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/common"
)

// MealEntry is one logged food item. Entries are immutable once created and
// are removed only by ID.
type MealEntry struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

// Meals is the persisted document body. Empty categories are omitted.
type Meals struct {
	Breakfast []MealEntry `json:"Breakfast,omitempty"`
	Lunch     []MealEntry `json:"Lunch,omitempty"`
	Snack     []MealEntry `json:"Snack,omitempty"`
	Dinner    []MealEntry `json:"Dinner,omitempty"`
}

// DailyLog is the log of one user for one day.
// Version 0 means the document has never been written.
type DailyLog struct {
	Date    string `json:"date"`
	Version int64  `json:"version"`
	Meals   Meals  `json:"meals"`
}

// Empty returns a log for date that has not been written yet.
func Empty(date string) DailyLog {
	return DailyLog{Date: date}
}

// Entries returns the sequence for c. The result must not be modified.
func (l DailyLog) Entries(c Category) []MealEntry {
	switch c {
	case Breakfast:
		return l.Meals.Breakfast
	case Lunch:
		return l.Meals.Lunch
	case Snack:
		return l.Meals.Snack
	case Dinner:
		return l.Meals.Dinner
	}
	return nil
}

func (m *Meals) set(c Category, entries []MealEntry) {
	switch c {
	case Breakfast:
		m.Breakfast = entries
	case Lunch:
		m.Lunch = entries
	case Snack:
		m.Snack = entries
	case Dinner:
		m.Dinner = entries
	}
}

// IsEmpty reports whether no category holds an entry.
func (l DailyLog) IsEmpty() bool {
	for _, c := range Categories {
		if len(l.Entries(c)) > 0 {
			return false
		}
	}
	return true
}

// NextEntryID derives an ID from now in Unix milliseconds. If that value is
// not greater than every ID already in the log, max+1 is used instead.
func (l DailyLog) NextEntryID(now time.Time) int64 {
	id := now.UnixMilli()
	var max int64
	for _, c := range Categories {
		for _, e := range l.Entries(c) {
			if e.ID > max {
				max = e.ID
			}
		}
	}
	if id <= max {
		id = max + 1
	}
	return id
}

// Append returns a copy of l with a new entry at the end of category c.
// l itself is left untouched.
func (l DailyLog) Append(c Category, name string, calories int, now time.Time) (DailyLog, MealEntry) {
	entry := MealEntry{ID: l.NextEntryID(now), Name: name, Calories: calories}

	cur := l.Entries(c)
	next := make([]MealEntry, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, entry)

	out := l
	out.Meals.set(c, next)
	return out, entry
}

// Remove returns a copy of l without the entry id in category c. The second
// result is false when no such entry exists; other entries, including those
// with the same name, are kept in order.
func (l DailyLog) Remove(c Category, id int64) (DailyLog, bool) {
	cur := l.Entries(c)
	next := make([]MealEntry, 0, len(cur))
	found := false
	for _, e := range cur {
		if e.ID == id {
			found = true
			continue
		}
		next = append(next, e)
	}
	if !found {
		return l, false
	}
	if len(next) == 0 {
		next = nil
	}
	out := l
	out.Meals.set(c, next)
	return out, true
}

// ValidateEntry checks user supplied entry fields.
func ValidateEntry(c Category, name string, calories int) error {
	if !c.Valid() {
		return fmt.Errorf("%w: unknown category %q", common.ErrValidation, c)
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: entry name is empty", common.ErrValidation)
	}
	if calories < 0 {
		return fmt.Errorf("%w: calories must not be negative", common.ErrValidation)
	}
	return nil
}
