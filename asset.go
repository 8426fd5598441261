package mangaingest

import "context"

// Asset folders.
const (
	FolderCovers     = "manga-covers"
	FolderThumbnails = "manga-thumbnails"
	FolderPages      = "manga-pages"
)

// Thumbnail dimensions.
const (
	ThumbnailWidth  = 200
	ThumbnailHeight = 300
)

// AssetUploader stores images durably and returns their canonical URLs.
type AssetUploader interface {
	// UploadFromURL downloads the image at url and stores it under folder.
	UploadFromURL(ctx context.Context, url, folder string) (string, error)

	// UploadFromBuffer stores data under folder.
	UploadFromBuffer(ctx context.Context, data []byte, folder string) (string, error)
}

// Thumbnailer derives a fixed-size cover thumbnail.
type Thumbnailer interface {
	// Thumbnail downloads the image at url and returns a ThumbnailWidth x
	// ThumbnailHeight JPEG cropped around its center.
	Thumbnail(ctx context.Context, url string) ([]byte, error)
}
