// Package settings is the plain key-value store behind payment-provider
// configuration. Values are opaque strings; absent keys return
// domain.ErrNotFound.
package settings

import "context"

type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
