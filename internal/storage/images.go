// Package storage keeps uploaded hero pictures on an afero filesystem and
// serves them back over HTTP.
package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// PublicPrefix is the URL path under which stored images are served.
const PublicPrefix = "/uploads/"

var ErrInvalidImageType = errors.New("invalid file type. Only images are allowed")

var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// AllowedContentType reports whether contentType is an accepted image type.
func AllowedContentType(contentType string) bool {
	_, ok := allowedTypes[strings.ToLower(strings.TrimSpace(contentType))]
	return ok
}

type ImageStore struct {
	fs  afero.Fs
	dir string
}

// NewImageStore stores images in dir on fs, creating it if needed.
func NewImageStore(fs afero.Fs, dir string) (*ImageStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ImageStore{fs: fs, dir: dir}, nil
}

// Save writes the image for heroID and returns its public path. Earlier
// pictures of the hero are removed first, whatever their extension.
func (s *ImageStore) Save(heroID, filename, contentType string, r io.Reader) (string, error) {
	if !AllowedContentType(contentType) {
		return "", ErrInvalidImageType
	}
	if err := s.Remove(heroID); err != nil {
		return "", fmt.Errorf("remove previous image: %w", err)
	}
	name := heroID + "." + extension(filename, contentType)

	f, err := s.fs.OpenFile(path.Join(s.dir, name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("open image file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}
	return PublicPrefix + name, nil
}

// Remove deletes every stored picture of heroID. Missing files are ignored.
func (s *ImageStore) Remove(heroID string) error {
	matches, err := afero.Glob(s.fs, path.Join(s.dir, heroID+".*"))
	if err != nil {
		return err
	}
	for _, m := range matches {
		if err := s.fs.Remove(m); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

// HTTPFileSystem exposes the upload directory for http.FileServer.
func (s *ImageStore) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(s.dir)
}

func extension(filename, contentType string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		ext := strings.ToLower(filename[i+1:])
		if isAlnum(ext) {
			return ext
		}
	}
	return allowedTypes[strings.ToLower(contentType)]
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
