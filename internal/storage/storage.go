// Package storage is the file storage boundary. Handlers hand uploaded
// binary content to a Store and persist only the returned durable URL;
// provider details stay behind the interface.
package storage

import (
	"context"
	"io"
)

// Store accepts uploaded content and returns a durable public URL for it.
type Store interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// Discard accepts every upload and returns a placeholder URL. Used in dev
// and tests when no bucket is configured.
type Discard struct{}

func (Discard) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := io.Copy(io.Discard, body)
	if err != nil {
		return "", err
	}
	return "file://" + key, nil
}
