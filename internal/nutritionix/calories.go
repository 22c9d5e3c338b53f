package nutritionix

import "math"

// Calories scales the per-serving calories of d to quantity units of a
// measure weighing measureWeight grams, rounded to the nearest integer.
// measureWeight <= 0 means one standard serving. It reports false when the
// detail has no serving weight to scale by.
func Calories(d NutrientDetail, measureWeight, quantity float64) (int, bool) {
	if d.ServingWeightGrams <= 0 {
		return 0, false
	}
	if measureWeight <= 0 {
		measureWeight = d.ServingWeightGrams
	}
	return int(math.Round(d.Calories / d.ServingWeightGrams * measureWeight * quantity)), true
}

// FindMeasure returns the alternate measure with the given name.
func FindMeasure(d NutrientDetail, name string) (Measure, bool) {
	for _, m := range d.AltMeasures {
		if m.Measure == name {
			return m, true
		}
	}
	return Measure{}, false
}
