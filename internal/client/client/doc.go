// Package client talks to the MealTrack backend over gRPC.
//
// GRPCClient manages one connection, injects the access token into every
// call, refreshes an expired access token once and retries, and maps gRPC
// status codes to the sentinel errors of this package (ErrUnauthorized,
// ErrUnavailable, ErrConflict, ErrNotFound, ErrInvalidInput, ErrUserExists).
//
// InitDatabase opens the local SQLite session store and applies the embedded
// goose migrations.
package client
