// Package assets stores uploaded catalog images and hands back stable
// URLs for them.
package assets

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
)

// Kinds of assets, each stored in its own directory.
const (
	KindMenu       = "menu"
	KindPatisserie = "patisserie"
	KindEvents     = "events"
)

// ValidKind reports whether k names a known asset kind.
func ValidKind(k string) bool {
	return k == KindMenu || k == KindPatisserie || k == KindEvents
}

// Store accepts binary image data and returns a stable reference usable
// in subsequent reads.
type Store interface {
	Save(ctx context.Context, kind, filename string, r io.Reader) (string, error)
}

// DiskStore keeps assets on the local filesystem, served under
// baseURL/images/.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	for _, kind := range []string{KindMenu, KindPatisserie, KindEvents} {
		if err := os.MkdirAll(filepath.Join(dir, kind), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create asset directory: %w", err)
		}
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the root directory, for static file serving.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save writes the image under a unique name and returns its URL. Only
// common image extensions are accepted.
func (s *DiskStore) Save(ctx context.Context, kind, filename string, r io.Reader) (string, error) {
	if !ValidKind(kind) {
		return "", fmt.Errorf("unknown asset kind %q", kind)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif":
	default:
		return "", apperr.New(apperr.KindValidation, "only image files are allowed")
	}

	var suffix [8]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		return "", fmt.Errorf("failed to generate asset name: %w", err)
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), hex.EncodeToString(suffix[:]), ext)

	f, err := os.Create(filepath.Join(s.dir, kind, name))
	if err != nil {
		return "", fmt.Errorf("failed to create asset file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write asset: %w", err)
	}

	return s.baseURL + path.Join("/images", kind, name), nil
}
