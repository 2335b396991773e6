// Package storage stores question/option/explanation images. The record
// store only ever sees the opaque URL a driver hands back.
package storage

import "io"

type BlobStore interface {
	// Put stores the blob and returns the canonical key.
	Put(key string, r io.Reader, contentType string) (string, error)
	Get(key string) (io.ReadCloser, error)
	// PublicURL is what gets written verbatim onto the question record.
	PublicURL(key string) string
}
