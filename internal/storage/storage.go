// Package storage publishes finished videos. LocalStorage leaves the file
// where the encoder wrote it; S3Storage additionally uploads it to a bucket.
package storage

import "context"

// Storage defines where a compressed video ends up once encoding succeeded.
type Storage interface {
	// Publish delivers the file at path and returns its final location:
	// an absolute local path, or a URL for remote backends.
	Publish(ctx context.Context, path string) (location string, err error)
}
