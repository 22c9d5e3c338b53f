package meallog

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mealtrack/internal/common"
)

// Category is a meal slot of the day. The string value is the wire and
// storage key.
type Category string

const (
	Breakfast Category = "Breakfast"
	Lunch     Category = "Lunch"
	Snack     Category = "Snack"
	Dinner    Category = "Dinner"
)

// Categories lists every category in display order.
var Categories = []Category{Breakfast, Lunch, Snack, Dinner}

// ParseCategory accepts a category name in any letter case.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", common.ErrValidation, s)
}

func (c Category) Valid() bool {
	switch c {
	case Breakfast, Lunch, Snack, Dinner:
		return true
	}
	return false
}
