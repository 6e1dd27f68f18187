package googlecloud

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/datastore"
)

// Common Datastore errors for easier handling in repositories.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")
	ErrInvalidKey    = errors.New("invalid key")
)

// WrapDatastoreError converts Datastore-specific errors to package errors.
func WrapDatastoreError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return ErrNotFound
	}
	if errors.Is(err, datastore.ErrInvalidKey) {
		return ErrInvalidKey
	}
	return err
}

// IsNotFoundError checks if an error is a not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, datastore.ErrNoSuchEntity)
}

// --- Retry Logic ---

// RetryConfig holds configuration for retry operations.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// DefaultRetryConfig returns sensible defaults for retries.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     2 * time.Second,
	}
}

// WithRetry executes fn with exponential backoff. Not-found errors are final.
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error
	wait := cfg.InitialWait

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if IsNotFoundError(err) {
			return err
		}
		lastErr = err

		// Don't wait after the last attempt
		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
			if wait > cfg.MaxWait {
				wait = cfg.MaxWait
			}
		}
	}
	return lastErr
}

// --- Upsert Pattern ---

// UpsertFileReference creates or updates a reference, preserving its creation time.
func (c *Client) UpsertFileReference(ctx context.Context, ref *FileReferenceEntity) error {
	if ref.UID == 0 {
		return c.CreateFileReference(ctx, ref)
	}
	if ref.UID < 0 {
		return ErrInvalidKey
	}

	key := datastore.IDKey(KindFileReference, ref.UID, nil)
	_, err := c.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var existing FileReferenceEntity
		err := tx.Get(key, &existing)

		switch {
		case errors.Is(err, datastore.ErrNoSuchEntity):
			if ref.CreatedAt.IsZero() {
				ref.CreatedAt = time.Now()
			}
		case err != nil:
			return err
		default:
			ref.CreatedAt = existing.CreatedAt
		}

		_, err = tx.Put(key, ref)
		return err
	})
	return WrapDatastoreError(err)
}

// --- Soft Delete Pattern ---

// SoftDeleteFileReference marks a reference as deleted without removing it.
func (c *Client) SoftDeleteFileReference(ctx context.Context, uid int64) error {
	key := datastore.IDKey(KindFileReference, uid, nil)

	_, err := c.ds.RunInTransaction(ctx, func(tx *datastore.Transaction) error {
		var ref FileReferenceEntity
		if err := tx.Get(key, &ref); err != nil {
			return WrapDatastoreError(err)
		}
		ref.Deleted = true

		_, err := tx.Put(key, &ref)
		return err
	})
	return err
}
