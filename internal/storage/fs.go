package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSStore keeps blobs on local disk for dev and offline use. Served
// back through the /assets route, so PublicURL points there.
type FSStore struct {
	base      string
	publicURL string // e.g. http://localhost:8080, may be empty
}

func NewFSStore(base, publicURL string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (s *FSStore) Put(key string, r io.Reader, _ string) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	dst := filepath.Join(s.base, filepath.Clean(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return key, nil
}

func (s *FSStore) Get(key string) (io.ReadCloser, error) {
	return os.Open(filepath.Join(s.base, filepath.Clean(key)))
}

func (s *FSStore) PublicURL(key string) string {
	return s.publicURL + "/assets/" + key
}
