package file

import (
	"context"
	"fmt"
	"path"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Object describes a stored file.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	Size        int64  `json:"size"`
	ContentType string `json:"contentType"`
}

// Storage is implemented by LocalStorage and S3Storage.
type Storage interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (Object, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ImageTypes are the MIME types accepted for avatars and cover images.
var ImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Validate checks size and content type. An empty allowed list accepts any type.
func Validate(body []byte, contentType string, maxBytes int64, allowed ...string) error {
	if len(body) == 0 {
		return ErrEmptyFile
	}
	if maxBytes > 0 && int64(len(body)) > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(body), maxBytes)
	}
	if len(allowed) > 0 && !slices.Contains(allowed, contentType) {
		return fmt.Errorf("%w: %s", ErrMIMETypeNotAllowed, contentType)
	}
	return nil
}

// NewKey returns "<prefix>/<uuid><ext>" with the extension derived from the content type.
func NewKey(prefix, contentType string) string {
	return path.Join(strings.Trim(prefix, "/"), uuid.NewString()+extensions[contentType])
}

// cleanKey rejects absolute and parent-relative keys.
func cleanKey(key string) (string, error) {
	key = strings.TrimPrefix(key, "/")
	if key == "" || strings.Contains(key, "..") || strings.ContainsRune(key, '\\') {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return path.Clean(key), nil
}

func joinURL(base, key string) string {
	if base == "" {
		return key
	}
	return strings.TrimSuffix(base, "/") + "/" + key
}
