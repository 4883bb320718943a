package repository

import (
	"context"
	"io"
)

// MediaStore persists binary objects and hands back a retrievable URL.
type MediaStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, objectPath string) error
}
