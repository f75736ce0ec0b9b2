// Package storage keeps employee files in S3-compatible object storage.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/BruksfildServices01/cleaning-scheduler/internal/httperr"
)

type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Disabled rejects uploads when no bucket is configured.
type Disabled struct{}

func (Disabled) Put(context.Context, string, string, io.Reader, int64) error {
	return httperr.ErrBusiness("storage_disabled")
}

func (Disabled) PresignGet(context.Context, string, time.Duration) (string, error) {
	return "", httperr.ErrBusiness("storage_disabled")
}

func (Disabled) Delete(context.Context, string) error {
	return nil
}
