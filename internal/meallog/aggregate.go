package meallog

// DefaultCalorieTarget is the daily goal used by the consumption chart.
const DefaultCalorieTarget = 2000

// Totals are the per-category and overall calorie sums of a log.
type Totals struct {
	Breakfast int `json:"breakfast"`
	Lunch     int `json:"lunch"`
	Snack     int `json:"snack"`
	Dinner    int `json:"dinner"`
	Total     int `json:"total"`
}

// Series is a labelled numeric series ready for a pie or doughnut chart.
type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// CalorieSum adds up the calories of entries. Nil or empty yields 0.
func CalorieSum(entries []MealEntry) int {
	sum := 0
	for _, e := range entries {
		sum += e.Calories
	}
	return sum
}

// ComputeTotals reduces a log to its calorie sums.
func ComputeTotals(l DailyLog) Totals {
	t := Totals{
		Breakfast: CalorieSum(l.Meals.Breakfast),
		Lunch:     CalorieSum(l.Meals.Lunch),
		Snack:     CalorieSum(l.Meals.Snack),
		Dinner:    CalorieSum(l.Meals.Dinner),
	}
	t.Total = t.Breakfast + t.Lunch + t.Snack + t.Dinner
	return t
}

// MealSeries is the per-meal pie chart.
func MealSeries(t Totals) Series {
	return Series{
		Labels: []string{"BreakFast", "Lunch", "Snack", "Dinner"},
		Values: []int{t.Breakfast, t.Lunch, t.Snack, t.Dinner},
	}
}

// ConsumptionSeries is the consumed vs remaining doughnut against
// DefaultCalorieTarget. The remaining value goes negative past the target.
func ConsumptionSeries(t Totals) Series {
	return Series{
		Labels: []string{"Consumed Calorie", "Required Calorie"},
		Values: []int{t.Total, DefaultCalorieTarget - t.Total},
	}
}

// Summary bundles a log with everything derived from it.
type Summary struct {
	Log         DailyLog `json:"log"`
	Totals      Totals   `json:"totals"`
	Meals       Series   `json:"meals_chart"`
	Consumption Series   `json:"consumption_chart"`
}

// Summarize computes totals and both chart series for l.
func Summarize(l DailyLog) Summary {
	t := ComputeTotals(l)
	return Summary{Log: l, Totals: t, Meals: MealSeries(t), Consumption: ConsumptionSeries(t)}
}
