// Package media wraps the external media store used for product assets.
package media

import (
	"context"
	"errors"
)

// Kind is the content-type hint passed to the media store.
type Kind string

const (
	// KindAuto lets the store detect the content type of arbitrary files.
	KindAuto Kind = "auto"
	// KindImage restricts the upload to image content.
	KindImage Kind = "image"
)

// Logical buckets product assets are stored under.
const (
	FolderProductFiles  = "products/files"
	FolderProductImages = "products/images"
)

var (
	// ErrUploadFailed means the store rejected or failed an upload. Callers
	// must not persist a product record referencing the failed asset.
	ErrUploadFailed = errors.New("media store upload failed")

	// ErrRemoveFailed means the store failed to delete previously stored
	// content. Callers treat this as non-fatal cleanup failure.
	ErrRemoveFailed = errors.New("media store remove failed")
)

// Store is the port to the external media store. Upload returns a durable
// reference (URL) that can be persisted and later passed back to Remove.
// The store gives no ordering or transactional guarantees; callers serialize
// upload-before-persist themselves.
type Store interface {
	Upload(ctx context.Context, content []byte, folder string, kind Kind) (string, error)
	Remove(ctx context.Context, reference string, kind Kind) error
}
