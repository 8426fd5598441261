// Package s3 stores scraped images in an S3-compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/mangaingest"
)

// Ensure Uploader implements mangaingest.AssetUploader at compile time.
var _ mangaingest.AssetUploader = (*Uploader)(nil)

const (
	// DefaultDownloadTimeout bounds a single source image download.
	DefaultDownloadTimeout = 30 * time.Second

	// MaxImageBytes caps the size of a downloaded image.
	MaxImageBytes = 32 << 20

	cacheControl = "public, max-age=31536000, immutable"
)

var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/avif": ".avif",
	"image/bmp":  ".bmp",
}

// Config selects the bucket and how it is reached. Empty values fall back
// to the standard AWS configuration chain.
type Config struct {
	Bucket        string
	Region        string
	Profile       string
	Endpoint      string
	UsePathStyle  bool
	PublicBaseURL string
}

// PutObjectAPI is the subset of the S3 client used by Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewClient creates an S3 client from cfg.
func NewClient(ctx context.Context, cfg Config) (*s3.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Uploader stores images under content-addressed keys, so uploading the
// same bytes twice yields the same URL.
type Uploader struct {
	client        PutObjectAPI
	bucket        string
	publicBaseURL string
	httpClient    *http.Client
	userAgent     string
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithHTTPClient sets the client used to download source images.
func WithHTTPClient(c *http.Client) Option {
	return func(u *Uploader) {
		u.httpClient = c
	}
}

// WithUserAgent sets the User-Agent sent when downloading source images.
func WithUserAgent(ua string) Option {
	return func(u *Uploader) {
		u.userAgent = ua
	}
}

// NewUploader creates an Uploader writing to bucket. Stored objects are
// addressed as publicBaseURL/<key>.
func NewUploader(client PutObjectAPI, bucket, publicBaseURL string, opts ...Option) *Uploader {
	u := &Uploader{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		httpClient:    &http.Client{Timeout: DefaultDownloadTimeout},
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadFromURL downloads the image at rawURL and stores it under folder.
func (u *Uploader) UploadFromURL(ctx context.Context, rawURL, folder string) (string, error) {
	data, err := u.download(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return u.UploadFromBuffer(ctx, data, folder)
}

// UploadFromBuffer stores data under folder and returns its public URL.
func (u *Uploader) UploadFromBuffer(ctx context.Context, data []byte, folder string) (string, error) {
	if len(data) == 0 {
		return "", mangaingest.Errorf(mangaingest.EINVALID, "empty image")
	}
	contentType := http.DetectContentType(data)
	ext, ok := extensions[contentType]
	if !ok {
		return "", mangaingest.Errorf(mangaingest.EUPLOAD, "unsupported content type %q", contentType)
	}

	key := Key(folder, data, ext)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return "", mangaingest.Wrapf(err, mangaingest.EUPLOAD, "storing %s", key)
	}
	return u.publicBaseURL + "/" + key, nil
}

// Key returns the object key for data: folder/<xxhash64>.ext.
func Key(folder string, data []byte, ext string) string {
	return fmt.Sprintf("%s/%016x%s", folder, xxhash.Sum64(data), ext)
}

func (u *Uploader) download(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, mangaingest.Errorf(mangaingest.EINVALID, "invalid image URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if u.userAgent != "" {
		req.Header.Set("User-Agent", u.userAgent)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/*,*/*;q=0.8")
	// Image CDNs behind the scraped sites reject hotlinks without a referer.
	req.Header.Set("Referer", parsed.Scheme+"://"+parsed.Host+"/")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, mangaingest.Errorf(mangaingest.ENOTFOUND, "image not found: %s", rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, rawURL)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if len(data) > MaxImageBytes {
		return nil, mangaingest.Errorf(mangaingest.EUPLOAD, "image %s exceeds %d bytes", rawURL, MaxImageBytes)
	}
	return data, nil
}
