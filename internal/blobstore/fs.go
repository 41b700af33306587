package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// FSStore keeps blobs on an afero filesystem. It backs local development
// (OS filesystem) and tests (memory filesystem).
type FSStore struct {
	fs      afero.Fs
	root    string
	prefix  string
	baseURL string
}

// NewFSStore creates an FSStore writing under root. baseURL is where the
// files are served from.
func NewFSStore(fs afero.Fs, root, prefix, baseURL string) *FSStore {
	return &FSStore{
		fs:      fs,
		root:    root,
		prefix:  prefix,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Put writes the upload under a fresh key.
func (s *FSStore) Put(ctx context.Context, upload Upload) (string, error) {
	if len(upload.Data) == 0 {
		return "", ErrEmptyUpload
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key := objectKey(s.prefix, upload)
	full := path.Join(s.root, key)
	if err := s.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, full, upload.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write blob %s: %w", key, err)
	}
	return key, nil
}

// Delete removes the blob at ref.
func (s *FSStore) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.fs.Remove(path.Join(s.root, path.Clean("/"+ref))); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s: %w", ref, err)
	}
	return nil
}

// URL returns baseURL/ref.
func (s *FSStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + "/" + ref
}

// HTTPFileSystem exposes the stored blobs for static serving.
func (s *FSStore) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.root)
}
