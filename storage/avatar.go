package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExts lists the avatar file extensions the store accepts.
var allowedExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// ErrUnsupportedType is returned for uploads with an extension outside
// allowedExts.
var ErrUnsupportedType = fmt.Errorf("storage: unsupported avatar file type")

// AvatarStore writes avatar blobs under a directory and hands back the
// public reference path. Callers only store and echo the reference.
type AvatarStore struct {
	dir     string
	baseURL string
}

// NewAvatarStore creates the directory if needed.
func NewAvatarStore(dir, baseURL string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create avatar dir: %w", err)
	}
	return &AvatarStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Save writes the blob under a fresh "<username>_<uuid><ext>" key so a
// re-upload never clobbers or collides, and returns the public reference.
func (s *AvatarStore) Save(username, filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExts[ext] {
		return "", ErrUnsupportedType
	}

	key := fmt.Sprintf("%s_%s%s", sanitize(username), uuid.New().String(), ext)
	dst, err := os.Create(filepath.Join(s.dir, key))
	if err != nil {
		return "", fmt.Errorf("storage: create avatar file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		return "", fmt.Errorf("storage: write avatar file: %w", err)
	}
	return s.baseURL + "/" + key, nil
}

// Remove deletes the blob behind a previously issued reference, so replaced
// avatars do not pile up on disk. References outside this store, and keys
// that would escape the directory, are ignored; a missing file is not an
// error.
func (s *AvatarStore) Remove(ref string) error {
	key, ok := strings.CutPrefix(ref, s.baseURL+"/")
	if !ok || key == "" || strings.ContainsAny(key, `/\`) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove avatar file: %w", err)
	}
	return nil
}

// sanitize keeps the username fragment of the key filesystem-safe.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
