// Package metadata stores the client's local session as key/value rows.
package metadata

import (
	"context"
)

// Key names one stored value.
type Key string

const (
	KeyUsername     Key = "username"
	KeyRefreshToken Key = "refresh_token"
)

// Repository reads and writes session values. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key Key) ([]byte, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
	Clear(ctx context.Context) error
}
