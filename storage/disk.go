package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Disk stores assets under a public-servable root directory. The server
// mounts the root behind urlBase so stored keys resolve in the browser.
type Disk struct {
	root    string
	urlBase string
}

func NewDisk(root, urlBase string) *Disk {
	return &Disk{root: root, urlBase: strings.TrimRight(urlBase, "/")}
}

// Root is the directory the HTTP file server should expose.
func (d *Disk) Root() string {
	return d.root
}

func (d *Disk) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(d.diskPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *Disk) Store(_ context.Context, key, _ string, body io.Reader) error {
	target := d.diskPath(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, body)
	return err
}

// Delete removes the object. A missing file is not an error; the caller
// only cares that the key no longer resolves.
func (d *Disk) Delete(_ context.Context, key string) error {
	err := os.Remove(d.diskPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (d *Disk) PublicURL(key string) string {
	return d.urlBase + "/" + key
}

// diskPath maps a key onto the root. Cleaning with a leading slash strips
// any traversal segments from the key.
func (d *Disk) diskPath(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(path.Clean("/"+key)))
}
