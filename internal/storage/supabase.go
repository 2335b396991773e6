package storage

import (
	"bytes"
	"io"

	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseStore puts blobs in a Supabase storage bucket for hosted
// deployments where the service itself has no durable disk.
type SupabaseStore struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseStore(projectURL, apiKey, bucket string) *SupabaseStore {
	client := storage_go.NewClient(projectURL+"/storage/v1", apiKey, nil)
	return &SupabaseStore{client: client, bucket: bucket}
}

func (s *SupabaseStore) Put(key string, r io.Reader, contentType string) (string, error) {
	_, err := s.client.UploadFile(s.bucket, key, r, storage_go.FileOptions{ContentType: &contentType})
	if err != nil {
		return "", err
	}
	return key, nil
}

func (s *SupabaseStore) Get(key string) (io.ReadCloser, error) {
	b, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s *SupabaseStore) PublicURL(key string) string {
	return s.client.GetPublicUrl(s.bucket, key).SignedURL
}
