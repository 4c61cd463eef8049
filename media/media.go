// Package media stores uploaded images and hands back stable URLs for them.
package media

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

var ErrNotFound = errors.New("media: asset not found")

// Asset is a stored upload.
type Asset struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (Asset, error)
	Delete(ctx context.Context, id string) error
}

// Object is an asset opened for reading.
type Object struct {
	io.ReadCloser
	Name        string
	ContentType string
	Size        int64
}

type Opener interface {
	Open(ctx context.Context, id string) (*Object, error)
}

// Store is an Uploader that can also serve what it stored.
type Store interface {
	Uploader
	Opener
}

// AssetID recovers the asset id from a hosted URL. It returns "" for URLs
// that do not end in an id.
func AssetID(url string) string {
	url = strings.TrimSuffix(url, "/")
	if url == "" {
		return ""
	}
	id := path.Base(url)
	if id == "." || id == "/" {
		return ""
	}
	return id
}
