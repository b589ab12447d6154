package application

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

// uploadImage validates an image upload and stores it under prefix/ownerID.
func uploadImage(ctx context.Context, storage ObjectStorage, prefix, ownerID string, r io.Reader, filename, contentType string, size, maxBytes int64) (string, error) {
	if storage == nil {
		return "", ErrStorageUnavailable
	}
	if size <= 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}
	if maxBytes > 0 && size > maxBytes {
		return "", fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, maxBytes)
	}
	if !helpers.IsImageContentType(contentType) {
		return "", fmt.Errorf("%w: only image files are allowed", ErrInvalidUpload)
	}
	objectPath := helpers.ObjectPath(prefix, ownerID, uuid.NewString(), filename)
	return storage.Upload(ctx, objectPath, contentType, r)
}
