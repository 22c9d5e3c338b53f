package models

import "time"

// DailyLogRow is a stored daily_logs row. Body is the JSON encoded
// meallog.Meals document.
type DailyLogRow struct {
	UserID    string
	LogDate   string
	Body      []byte
	Version   int64
	UpdatedAt time.Time
}
