package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mealtrack/internal/logging"
	"github.com/dmitrijs2005/mealtrack/internal/nutritionix"
)

// FoodSearcher is the part of the Nutritionix client the server uses.
type FoodSearcher interface {
	Search(ctx context.Context, query string) (nutritionix.SearchResult, error)
	LookupNutrients(ctx context.Context, description string) (nutritionix.NutrientDetail, error)
}

// FoodService applies the product's failure policy to food lookups.
type FoodService struct {
	client FoodSearcher
	log    logging.Logger
}

func NewFoodService(client FoodSearcher, log logging.Logger) *FoodService {
	return &FoodService{client: client, log: log.With("module", "services.food")}
}

// Search never fails: provider errors are logged and yield empty results.
func (s *FoodService) Search(ctx context.Context, query string) nutritionix.SearchResult {
	res, err := s.client.Search(ctx, query)
	if err != nil {
		s.log.Warn(ctx, "food search failed", "query", query, "error", err)
		return nutritionix.SearchResult{Common: []nutritionix.FoodCandidate{}, Branded: []nutritionix.FoodCandidate{}}
	}
	if res.Common == nil {
		res.Common = []nutritionix.FoodCandidate{}
	}
	if res.Branded == nil {
		res.Branded = []nutritionix.FoodCandidate{}
	}
	return res
}

// LookupNutrients logs and returns provider errors so the caller can keep
// whatever detail it had before.
func (s *FoodService) LookupNutrients(ctx context.Context, description string) (nutritionix.NutrientDetail, error) {
	d, err := s.client.LookupNutrients(ctx, description)
	if err != nil {
		s.log.Warn(ctx, "nutrient lookup failed", "query", description, "error", err)
		return nutritionix.NutrientDetail{}, fmt.Errorf("nutrient lookup: %w", err)
	}
	return d, nil
}
