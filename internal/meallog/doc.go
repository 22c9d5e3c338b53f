// Package meallog holds the daily meal log model and the pure functions that
// reduce a log to calorie totals and chart series.
//
// A DailyLog is keyed by user and calendar day and keeps four ordered entry
// sequences, one per Category. Totals are never stored; they are recomputed
// from the entries every time.
package meallog
