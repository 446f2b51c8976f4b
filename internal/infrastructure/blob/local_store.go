package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStore keeps uploaded profile pictures on local disk and serves them
// under baseURL/media/. It stands in for the external blob collaborator and
// satisfies the application.BlobStore port.
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore creates the storage directory if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("blob storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob storage directory: %w", err)
	}
	return &LocalStore{
		dir:     dir,
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
	}, nil
}

// Save writes the object under a unique name derived from the original
// filename's extension and returns its public URL.
func (s *LocalStore) Save(_ context.Context, filename, _ string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	name := fmt.Sprintf("profile-pictures-%s%s", uuid.NewString(), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write blob file: %w", err)
	}

	return s.baseURL + "/media/" + name, nil
}

// Delete removes the object a public URL points at. URLs outside the media
// namespace are rejected rather than resolved.
func (s *LocalStore) Delete(_ context.Context, rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("parse blob url: %w", err)
	}

	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" || strings.Contains(name, "..") {
		return fmt.Errorf("refusing to delete blob url %q", rawURL)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove blob file: %w", err)
	}
	return nil
}

// Dir exposes the storage directory for static file serving.
func (s *LocalStore) Dir() string {
	return s.dir
}
