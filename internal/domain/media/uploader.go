package media

import (
	"context"
	"errors"
	"fmt"
)

// Uploader pushes raw image bytes to a hosted object store and returns a
// publicly resolvable URL. folder is a hint for grouping assets server-side.
type Uploader interface {
	Upload(ctx context.Context, data []byte, filename, folder string) (string, error)
}

// Disabled serves deployments without a media backend. Every upload fails,
// which routes callers down their fallback chain.
type Disabled struct{}

func (Disabled) Upload(_ context.Context, _ []byte, filename, _ string) (string, error) {
	return "", &UploadError{Filename: filename, Err: errors.New("media uploads are not configured")}
}

// UploadError wraps network, size-limit, or service-side upload rejections.
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Filename, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
