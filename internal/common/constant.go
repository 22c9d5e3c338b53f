// Package common contains shared constants and sentinel errors used across
// MealTrack components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// DateLayout is the calendar-day key format of a daily log (YYYY-MM-DD).
const DateLayout = "2006-01-02"
