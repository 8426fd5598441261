package mock

import (
	"context"

	"github.com/fwojciec/mangaingest"
)

var _ mangaingest.AssetUploader = (*AssetUploader)(nil)

// AssetUploader is a mock implementation of mangaingest.AssetUploader.
type AssetUploader struct {
	UploadFromURLFn    func(ctx context.Context, url, folder string) (string, error)
	UploadFromBufferFn func(ctx context.Context, data []byte, folder string) (string, error)
}

func (u *AssetUploader) UploadFromURL(ctx context.Context, url, folder string) (string, error) {
	return u.UploadFromURLFn(ctx, url, folder)
}

func (u *AssetUploader) UploadFromBuffer(ctx context.Context, data []byte, folder string) (string, error) {
	return u.UploadFromBufferFn(ctx, data, folder)
}

var _ mangaingest.Thumbnailer = (*Thumbnailer)(nil)

// Thumbnailer is a mock implementation of mangaingest.Thumbnailer.
type Thumbnailer struct {
	ThumbnailFn func(ctx context.Context, url string) ([]byte, error)
}

func (t *Thumbnailer) Thumbnail(ctx context.Context, url string) ([]byte, error) {
	return t.ThumbnailFn(ctx, url)
}
