package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dcode-github/rental_listing_platform/observability"
)

// maxParallelUploads bounds the fan-out of a single UploadAll call.
const maxParallelUploads = 4

var ErrUploadFailed = errors.New("media: upload failed")

// File is one input to UploadAll.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// UploadAll uploads files concurrently and returns the assets in input order.
// If any upload fails, every asset that did succeed is deleted before the
// error is returned, so callers never see a partial batch.
func UploadAll(ctx context.Context, up Uploader, files []File) ([]Asset, error) {
	assets := make([]Asset, len(files))
	done := make([]bool, len(files))
	failures := make([]error, len(files))

	// Every upload runs to completion so the rollback below sees the full
	// set of stored assets; errors are collected per slot.
	var g errgroup.Group
	g.SetLimit(maxParallelUploads)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			rc, err := f.Open()
			if err != nil {
				failures[i] = fmt.Errorf("opening %s: %w", f.Name, err)
				return nil
			}
			defer rc.Close()

			asset, err := up.Upload(ctx, f.Name, f.ContentType, rc)
			if err != nil {
				failures[i] = err
				observability.ObserveUpload("failed")
				return nil
			}
			assets[i] = asset
			done[i] = true
			observability.ObserveUpload("ok")
			return nil
		})
	}
	_ = g.Wait()

	failed := errors.Join(failures...)
	if failed == nil {
		return assets, nil
	}

	cleanup := context.WithoutCancel(ctx)
	for i, ok := range done {
		if !ok {
			continue
		}
		if err := up.Delete(cleanup, assets[i].ID); err != nil {
			log.Error().Err(err).Str("asset", assets[i].ID).Msg("failed to roll back uploaded asset")
			continue
		}
		observability.ObserveUpload("rolled_back")
	}
	return nil, fmt.Errorf("%w: %v", ErrUploadFailed, failed)
}
