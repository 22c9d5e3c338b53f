package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays MEALTRACK_* variables that are set and not empty.
func parseEnv(c *Config) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if v := os.Getenv("MEALTRACK_SERVER_ADDR"); v != "" {
		c.ServerEndpointAddr = v
	}
	if v := os.Getenv("MEALTRACK_CLIENT_DB"); v != "" {
		c.DBPath = v
	}
	for name, dst := range map[string]*time.Duration{
		"MEALTRACK_ONLINE_CHECK_INTERVAL": &c.OnlineCheckInterval,
		"MEALTRACK_SEARCH_DEBOUNCE":       &c.SearchDebounce,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		*dst = d
	}
}
