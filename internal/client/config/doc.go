// Package config loads runtime configuration for the MealTrack terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment, optionally seeded from a .env file:
//     MEALTRACK_SERVER_ADDR, MEALTRACK_CLIENT_DB,
//     MEALTRACK_ONLINE_CHECK_INTERVAL, MEALTRACK_SEARCH_DEBOUNCE.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      online status check interval (seconds)
//	-d string   local session database file
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "db_path": "mealtrack.db",
//	  "search_debounce": "300ms"
//	}
package config
