package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const bucketName = "media"

// GridFS keeps assets in a MongoDB GridFS bucket and serves them under
// baseURL + "/" + id.
type GridFS struct {
	bucket  *gridfs.Bucket
	baseURL string
}

func NewGridFS(db *mongo.Database, baseURL string) (*GridFS, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("opening gridfs bucket: %w", err)
	}
	return &GridFS{bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (g *GridFS) Upload(ctx context.Context, filename, contentType string, r io.Reader) (Asset, error) {
	if err := ctx.Err(); err != nil {
		return Asset{}, err
	}
	name := uuid.NewString() + path.Ext(filename)
	opts := options.GridFSUpload().SetMetadata(bson.D{
		{Key: "contentType", Value: contentType},
		{Key: "originalName", Value: filename},
	})
	id, err := g.bucket.UploadFromStream(name, r, opts)
	if err != nil {
		return Asset{}, fmt.Errorf("uploading %s: %w", filename, err)
	}
	return Asset{ID: id.Hex(), URL: g.baseURL + "/" + id.Hex()}, nil
}

func (g *GridFS) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	if err := g.bucket.Delete(oid); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("deleting asset %s: %w", id, err)
	}
	return nil
}

func (g *GridFS) Open(ctx context.Context, id string) (*Object, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	stream, err := g.bucket.OpenDownloadStream(oid)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("opening asset %s: %w", id, err)
	}

	file := stream.GetFile()
	obj := &Object{ReadCloser: stream, Name: file.Name, Size: file.Length, ContentType: "application/octet-stream"}
	if file.Metadata != nil {
		if ct, ok := file.Metadata.Lookup("contentType").StringValueOK(); ok && ct != "" {
			obj.ContentType = ct
		}
	}
	return obj, nil
}
