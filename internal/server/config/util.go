package config

import (
	"time"

	"github.com/dmitrijs2005/mealtrack/internal/timex"
)

func setStr(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDur(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
