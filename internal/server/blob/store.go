// Package blob abstracts binary object storage for receipt and profile
// images. Rows in the database hold only the opaque key returned by Put;
// the blob's lifetime follows the owning record's lifetime.
package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Store interface {
	// Put stores the payload and returns an opaque key.
	Put(ctx context.Context, data []byte, contentType string) (string, error)

	// Get returns the payload and its content type.
	Get(ctx context.Context, key string) ([]byte, string, error)

	// Delete removes the payload. Deleting an unknown key is not an error.
	Delete(ctx context.Context, key string) error
}

// newStorageKey produces a date-prefixed random object key, which keeps
// bucket listings browsable by upload day.
func newStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("uploads/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
