// Package metadata is a small key/value side table kept next to the record
// log. The report generator uses it to remember the last run.
package metadata

import (
	"context"
)

// Repository stores opaque values by key. Get returns common.ErrNotFound for
// a key that was never set.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
