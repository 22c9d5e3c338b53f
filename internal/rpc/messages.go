package rpc

import (
	"github.com/dmitrijs2005/mealtrack/internal/meallog"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
)

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse answers Login and RefreshToken.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// DateRequest addresses one daily log. It is used by GetDailyLog,
// GetTotals, ExportDailyLog and WatchDailyLog.
type DateRequest struct {
	Date string `json:"date"`
}

type DailyLogResponse struct {
	Log meallog.DailyLog `json:"log"`
}

type AppendEntryRequest struct {
	Date     string `json:"date"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Calories int    `json:"calories"`
}

type AppendEntryResponse struct {
	Entry meallog.MealEntry `json:"entry"`
	Log   meallog.DailyLog  `json:"log"`
}

// DeleteEntryRequest removes entry ID. A non-zero ExpectedVersion makes the
// delete conditional.
type DeleteEntryRequest struct {
	Date            string `json:"date"`
	Category        string `json:"category"`
	ID              int64  `json:"id"`
	ExpectedVersion int64  `json:"expected_version,omitempty"`
}

type SearchFoodsRequest struct {
	Query string `json:"query"`
}

type LookupNutrientsRequest struct {
	Query string `json:"query"`
}

type ExportResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// Summary is the GetTotals answer and the WatchDailyLog message.
type Summary = meallog.Summary

type SearchResult = nutritionix.SearchResult

type NutrientDetail = nutritionix.NutrientDetail
