package service

import (
	"context"
	"io"
)

// ImageStore uploads user-submitted images and returns a public URL. The
// production deployment plugs in an external media CDN; NoopImageStore keeps
// the rest of the pipeline working when none is configured.
type ImageStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Remove(ctx context.Context, url string) error
}

type NoopImageStore struct{}

func (NoopImageStore) Upload(_ context.Context, _ string, r io.Reader) (string, error) {
	// Drain so multipart readers are left in a clean state.
	_, err := io.Copy(io.Discard, r)
	return "", err
}

func (NoopImageStore) Remove(context.Context, string) error { return nil }
