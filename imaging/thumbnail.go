// Package imaging derives cover thumbnails using the imaging library.
package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fwojciec/mangaingest"
	_ "golang.org/x/image/webp"
)

// Ensure Thumbnailer implements mangaingest.Thumbnailer at compile time.
var _ mangaingest.Thumbnailer = (*Thumbnailer)(nil)

const (
	// DefaultQuality is the JPEG quality of generated thumbnails.
	DefaultQuality = 85

	maxSourceBytes = 32 << 20
)

// Thumbnailer downloads a cover and crops it to a fixed size around its
// center.
type Thumbnailer struct {
	client  *http.Client
	width   int
	height  int
	quality int
}

// Option configures a Thumbnailer.
type Option func(*Thumbnailer)

// WithSize overrides the thumbnail dimensions.
func WithSize(width, height int) Option {
	return func(t *Thumbnailer) {
		t.width = width
		t.height = height
	}
}

// WithHTTPClient sets the client used to download covers.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Thumbnailer) {
		t.client = c
	}
}

// NewThumbnailer creates a Thumbnailer producing ThumbnailWidth x
// ThumbnailHeight JPEGs.
func NewThumbnailer(opts ...Option) *Thumbnailer {
	t := &Thumbnailer{
		client:  &http.Client{Timeout: 30 * time.Second},
		width:   mangaingest.ThumbnailWidth,
		height:  mangaingest.ThumbnailHeight,
		quality: DefaultQuality,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Thumbnail downloads url and returns the encoded thumbnail.
func (t *Thumbnailer) Thumbnail(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, mangaingest.Errorf(mangaingest.EINVALID, "invalid image URL %q", url)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	src, err := imaging.Decode(io.LimitReader(resp.Body, maxSourceBytes), imaging.AutoOrientation(true))
	if err != nil {
		return nil, mangaingest.Errorf(mangaingest.EUPLOAD, "decoding %s: %v", url, err)
	}
	return t.Render(src)
}

// Render crops src to the thumbnail size and encodes it as JPEG.
func (t *Thumbnailer) Render(src image.Image) ([]byte, error) {
	thumb := imaging.Fill(src, t.width, t.height, imaging.Center, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(t.quality)); err != nil {
		return nil, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
