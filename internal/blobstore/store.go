// Package blobstore stores uploaded photo files and hands back references
// that the service persists in place of the bytes.
package blobstore

import (
	"context"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/petmily/service-reservation/internal/platform/domain"
)

// ErrEmptyUpload is returned when an upload carries no bytes.
var ErrEmptyUpload = errors.New("blobstore: empty upload")

// Upload is one file received from a client.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Store persists and removes blobs by reference.
type Store interface {
	// Put stores the upload and returns its reference.
	Put(ctx context.Context, upload Upload) (string, error)

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, ref string) error

	// URL returns the public address of a stored blob.
	URL(ref string) string
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ValidateImage sniffs the content type of an upload and rejects anything
// that is not a supported image or exceeds maxBytes. It returns the upload
// with ContentType set from the sniffed value.
func ValidateImage(u Upload, maxBytes int64) (Upload, error) {
	if len(u.Data) == 0 {
		return Upload{}, domain.NewValidationError("photo file is empty")
	}
	if maxBytes > 0 && int64(len(u.Data)) > maxBytes {
		return Upload{}, domain.NewValidationError("photo file is too large")
	}
	sniffed := http.DetectContentType(u.Data)
	if _, ok := allowedImageTypes[sniffed]; !ok {
		return Upload{}, domain.NewValidationError("unsupported photo type: " + sniffed)
	}
	u.ContentType = sniffed
	return u, nil
}

// objectKey builds a collision-free key under prefix. The client filename
// only contributes its extension.
func objectKey(prefix string, u Upload) string {
	ext := strings.ToLower(path.Ext(u.Filename))
	if known, ok := allowedImageTypes[u.ContentType]; ok {
		ext = known
	}
	return path.Join(prefix, uuid.NewString()+ext)
}
