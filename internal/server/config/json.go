package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/mealtrack/internal/flagx"
	"github.com/dmitrijs2005/mealtrack/internal/timex"
)

// JsonConfig is the on-disk shape of the -c/-config file. Durations accept
// "15m" style strings as well as integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC             string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	TokenSweepInterval           timex.Duration `json:"token_sweep_interval"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	ExportURLTTL                 timex.Duration `json:"export_url_ttl"`
	NutritionixBaseURL           string         `json:"nutritionix_base_url"`
	NutritionixAppID             string         `json:"nutritionix_app_id"`
	NutritionixAppKey            string         `json:"nutritionix_app_key"`
	CORSAllowedOrigins           []string       `json:"cors_allowed_origins"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson overlays the fields present in the JSON file named by -c or
// -config. Missing fields keep their current value. A file that cannot be
// read or decoded panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setStr(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setStr(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.SecretKey, c.SecretKey)
	setDur(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDur(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDur(&config.TokenSweepInterval, c.TokenSweepInterval)
	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDur(&config.ExportURLTTL, c.ExportURLTTL)
	setStr(&config.NutritionixBaseURL, c.NutritionixBaseURL)
	setStr(&config.NutritionixAppID, c.NutritionixAppID)
	setStr(&config.NutritionixAppKey, c.NutritionixAppKey)
	setStr(&config.LogLevel, c.LogLevel)
	if c.CORSAllowedOrigins != nil {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
}
