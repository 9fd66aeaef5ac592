// Package media stores uploaded images and ticket QR codes on disk and
// serves them under the /media URL prefix.
package media

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const MaxUploadSize = 1 << 20 // 1 MiB

var (
	ErrTooLarge = errors.New("file too large")
	ErrBadType  = errors.New("unsupported file type")
)

// Defaults returned when an entity has no uploaded image.
const (
	DefaultProfilePicture = "default_profile_picture.jpg"
	DefaultClubLogo       = "default_club_logo.jpg"
	DefaultClubCover      = "default_club_cover.jpg"
	DefaultEventCover     = "default_event_cover.jpg"
)

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Store writes files under root/<kind>/ with random names.
type Store struct {
	root    string
	baseURL string
}

func NewStore(root, baseURL string) (*Store, error) {
	for _, kind := range []string{"profiles", "clubs", "events", "qr"} {
		if err := os.MkdirAll(filepath.Join(root, kind), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create media dir: %w", err)
		}
	}
	return &Store{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Root is the directory the HTTP layer serves as /media.
func (s *Store) Root() string { return s.root }

// SaveUpload stores a multipart image upload under the given kind and
// returns the media-relative path.
func (s *Store) SaveUpload(kind string, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxUploadSize {
		return "", ErrTooLarge
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", ErrBadType
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	rel := filepath.Join(kind, uuid.NewString()+ext)
	dst, err := os.Create(filepath.Join(s.root, rel))
	if err != nil {
		return "", fmt.Errorf("failed to create media file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, MaxUploadSize+1)); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return rel, nil
}

// SaveBytes stores raw bytes (QR images) and returns the media-relative path.
func (s *Store) SaveBytes(kind, name string, data []byte) (string, error) {
	rel := filepath.Join(kind, name)
	if err := os.WriteFile(filepath.Join(s.root, rel), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	return rel, nil
}

// Remove deletes a stored file, ignoring default assets and missing files.
func (s *Store) Remove(rel string) {
	if rel == "" || strings.HasPrefix(rel, "default_") {
		return
	}
	os.Remove(filepath.Join(s.root, rel))
}

// URL turns a stored path into an absolute media URL, substituting the
// default asset when nothing was uploaded.
func (s *Store) URL(rel *string, fallback string) string {
	if rel == nil || *rel == "" {
		return s.baseURL + "/media/" + fallback
	}
	return s.baseURL + "/media/" + filepath.ToSlash(*rel)
}
