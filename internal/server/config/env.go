package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// loadDotEnv is a seam for tests. Variables already set in the process
// environment win over the file.
var loadDotEnv = func() error { return godotenv.Load() }

// parseEnv overlays MEALTRACK_* and provider variables that are set.
// An unparsable duration panics, like a broken JSON file does.
func parseEnv(c *Config) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	str("MEALTRACK_GRPC_ADDR", &c.EndpointAddrGRPC)
	str("MEALTRACK_HTTP_ADDR", &c.EndpointAddrHTTP)
	str("MEALTRACK_DATABASE_DSN", &c.DatabaseDSN)
	str("MEALTRACK_SECRET_KEY", &c.SecretKey)
	dur("MEALTRACK_ACCESS_TOKEN_TTL", &c.AccessTokenValidityDuration)
	dur("MEALTRACK_REFRESH_TOKEN_TTL", &c.RefreshTokenValidityDuration)
	dur("MEALTRACK_TOKEN_SWEEP_INTERVAL", &c.TokenSweepInterval)
	str("MEALTRACK_S3_ROOT_USER", &c.S3RootUser)
	str("MEALTRACK_S3_ROOT_PASSWORD", &c.S3RootPassword)
	str("MEALTRACK_S3_BUCKET", &c.S3Bucket)
	str("MEALTRACK_S3_REGION", &c.S3Region)
	str("MEALTRACK_S3_BASE_ENDPOINT", &c.S3BaseEndpoint)
	dur("MEALTRACK_EXPORT_URL_TTL", &c.ExportURLTTL)
	str("NUTRITIONIX_BASE_URL", &c.NutritionixBaseURL)
	str("NUTRITIONIX_APP_ID", &c.NutritionixAppID)
	str("NUTRITIONIX_APP_KEY", &c.NutritionixAppKey)
	str("MEALTRACK_LOG_LEVEL", &c.LogLevel)

	if v, ok := os.LookupEnv("MEALTRACK_CORS_ORIGINS"); ok {
		c.CORSAllowedOrigins = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
