// Package assets talks to the external binary-asset host that keeps listing
// images. The shop only ever holds the opaque reference the host returns.
package assets

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable reports that the asset host rejected or failed the upload.
// Nothing has been persisted when it is returned.
var ErrUnavailable = errors.New("assets: asset store unavailable")

// Store uploads binary assets and returns a stable opaque reference.
type Store interface {
	Upload(ctx context.Context, filename, contentType string, body io.Reader) (string, error)
}
