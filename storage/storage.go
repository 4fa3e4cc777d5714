package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Prefix is the logical namespace for post images.
const Prefix = "posts"

// Store is the asset backend behind post images. Keys are opaque slash
// paths like "posts/<uuid>.png"; PublicURL turns a key into something a
// browser can load.
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Store(ctx context.Context, key string, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// NewKey mints a fresh object key for an uploaded file, keeping its
// extension.
func NewKey(filename string) string {
	return path.Join(Prefix, uuid.New().String()+strings.ToLower(path.Ext(filename)))
}
