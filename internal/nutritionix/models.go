package nutritionix

// Source tells which list of the instant search a candidate came from.
type Source string

const (
	SourceCommon  Source = "common"
	SourceBranded Source = "branded"
)

// FoodCandidate is one instant search hit. It is never persisted.
type FoodCandidate struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Source Source `json:"source"`
}

// SearchResult groups candidates by source.
type SearchResult struct {
	Common  []FoodCandidate `json:"common"`
	Branded []FoodCandidate `json:"branded"`
}

// Measure is an alternate serving size of a food.
type Measure struct {
	Measure       string  `json:"measure"`
	ServingWeight float64 `json:"serving_weight"`
	Qty           float64 `json:"qty"`
}

// NutrientDetail is the first food of a natural nutrients lookup.
type NutrientDetail struct {
	FoodName           string    `json:"food_name"`
	Calories           float64   `json:"nf_calories"`
	ServingWeightGrams float64   `json:"serving_weight_grams"`
	ServingQty         float64   `json:"serving_qty"`
	ServingUnit        string    `json:"serving_unit"`
	AltMeasures        []Measure `json:"alt_measures"`
}

type instantResponse struct {
	Common []struct {
		FoodName string `json:"food_name"`
		TagID    string `json:"tag_id"`
	} `json:"common"`
	Branded []struct {
		BrandNameItemName string  `json:"brand_name_item_name"`
		NixItemID         string  `json:"nix_item_id"`
		Calories          float64 `json:"nf_calories"`
	} `json:"branded"`
}

type nutrientsRequest struct {
	Query string `json:"query"`
}

type nutrientsResponse struct {
	Foods []NutrientDetail `json:"foods"`
}
