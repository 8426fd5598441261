package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/mangaingest"
	"github.com/fwojciec/mangaingest/goquery"
	"github.com/fwojciec/mangaingest/ingest"
	"github.com/fwojciec/mangaingest/mock"
	"github.com/fwojciec/mangaingest/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onePieceHTML = `<html><head><title>One Piece</title></head><body>
<div class="post-title"><h1>One Piece</h1></div>
<div class="summary_image"><img src="https://3asq.org/wp-content/uploads/one-piece.jpg"></div>
<div class="author-content"><a>Eiichiro Oda</a></div>
<div class="genres-content"><a>Action</a>, <a>Adventure</a></div>
</body></html>`

func readerHTML(n int) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="reading-content">`)
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<img class="wp-manga-chapter-img" data-src="https://cdn.3asq.org/one-piece/5/%02d.jpg">`, i)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

// store is an in-memory repository behind the service mocks.
type store struct {
	mu       sync.Mutex
	series   map[string]*mangaingest.Series
	chapters map[string]*mangaingest.Chapter

	seriesCreates  int
	chapterCreates int
	uploads        []string
	buffers        []string
}

func newStore() *store {
	return &store{
		series:   make(map[string]*mangaingest.Series),
		chapters: make(map[string]*mangaingest.Chapter),
	}
}

func chapterKey(seriesID string, n float64) string {
	return seriesID + "/" + mangaingest.FormatChapterNumber(n)
}

func (s *store) seriesService() *mock.SeriesService {
	return &mock.SeriesService{
		CreateSeriesFn: func(_ context.Context, series *mangaingest.Series) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.series[series.Slug]; ok {
				return mangaingest.Errorf(mangaingest.ECONFLICT, "UNIQUE constraint failed: series.slug")
			}
			s.seriesCreates++
			series.ID = fmt.Sprintf("series-%d", s.seriesCreates)
			s.series[series.Slug] = series
			return nil
		},
		FindSeriesBySlugFn: func(_ context.Context, slug string) (*mangaingest.Series, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if series, ok := s.series[slug]; ok {
				return series, nil
			}
			return nil, mangaingest.Errorf(mangaingest.ENOTFOUND, "series not found")
		},
		FindSeriesByIDFn: func(_ context.Context, id string) (*mangaingest.Series, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, series := range s.series {
				if series.ID == id {
					return series, nil
				}
			}
			return nil, mangaingest.Errorf(mangaingest.ENOTFOUND, "series not found")
		},
	}
}

func (s *store) chapterService() *mock.ChapterService {
	return &mock.ChapterService{
		CreateChapterFn: func(_ context.Context, chapter *mangaingest.Chapter) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.chapterCreates++
			chapter.ID = fmt.Sprintf("chapter-%d", s.chapterCreates)
			s.chapters[chapterKey(chapter.SeriesID, chapter.Number)] = chapter
			return nil
		},
		FindChapterFn: func(_ context.Context, seriesID string, n float64) (*mangaingest.Chapter, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.chapters[chapterKey(seriesID, n)]; ok {
				return c, nil
			}
			return nil, mangaingest.Errorf(mangaingest.ENOTFOUND, "chapter not found")
		},
	}
}

func (s *store) assets() *mock.AssetUploader {
	return &mock.AssetUploader{
		UploadFromURLFn: func(_ context.Context, url, folder string) (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.uploads = append(s.uploads, url)
			return "https://assets.example.com/" + folder + "/" + path.Base(url), nil
		},
		UploadFromBufferFn: func(_ context.Context, data []byte, folder string) (string, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.buffers = append(s.buffers, string(data))
			return "https://assets.example.com/" + folder + "/thumb.jpg", nil
		},
	}
}

func (s *store) addSeries(series *mangaingest.Series) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series[series.Slug] = series
}

func asheqRegistry(pages map[string]string) *source.Registry {
	return source.NewRegistry(&source.Adapter{
		Site: source.Asheq(),
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				html, ok := pages[url]
				if !ok {
					return "", mangaingest.Errorf(mangaingest.ENOTFOUND, "not found: %s", url)
				}
				return html, nil
			},
		},
		Extractor: goquery.NewExtractor(),
		Detector:  goquery.NewChallengeDetector(),
	})
}

func newPipeline(s *store, adapters mangaingest.AdapterRegistry) *ingest.Pipeline {
	return &ingest.Pipeline{
		Series:   s.seriesService(),
		Chapters: s.chapterService(),
		Adapters: adapters,
		Assets:   s.assets(),
		Thumbnails: &mock.Thumbnailer{
			ThumbnailFn: func(context.Context, string) ([]byte, error) {
				return []byte("jpeg"), nil
			},
		},
		Locker:      &ingest.KeyedMutex{},
		RetryDelays: []time.Duration{0, 0},
	}
}

func TestPipeline_IngestSeries(t *testing.T) {
	t.Parallel()

	t.Run("ingests once and rejects the duplicate", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/": onePieceHTML,
		}))
		var refreshed []string
		var notified []mangaingest.SeriesEvent
		p.Similarity = &mock.SimilarityRefresher{
			RefreshFn: func(_ context.Context, id string) error {
				refreshed = append(refreshed, id)
				return nil
			},
		}
		p.Notifier = &mock.Notifier{
			NotifyNewSeriesFn: func(_ context.Context, e mangaingest.SeriesEvent) error {
				notified = append(notified, e)
				return nil
			},
		}

		series, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{
			Title:    "One Piece",
			Platform: mangaingest.PlatformAsheq,
		})

		require.NoError(t, err)
		assert.Equal(t, "One Piece", series.Title)
		assert.Equal(t, "one-piece", series.Slug)
		assert.Equal(t, "https://assets.example.com/manga-covers/one-piece.jpg", series.CoverURL)
		assert.Equal(t, "https://assets.example.com/manga-thumbnails/thumb.jpg", series.ThumbnailURL)
		assert.Equal(t, mangaingest.PlatformAsheq, series.Platform)
		assert.Equal(t, []string{series.ID}, refreshed)
		require.Len(t, notified, 1)
		assert.Equal(t, "one-piece", notified[0].Slug)

		_, err = p.IngestSeries(context.Background(), mangaingest.SeriesRequest{
			Title:    "One Piece",
			Platform: mangaingest.PlatformAsheq,
		})

		assert.Equal(t, mangaingest.ECONFLICT, mangaingest.ErrorCode(err))
		assert.Equal(t, 1, s.seriesCreates)
		assert.Len(t, s.uploads, 1)
		assert.Len(t, s.buffers, 1)
		assert.Len(t, refreshed, 1)
	})

	t.Run("duplicate slug performs no writes", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		s.addSeries(&mangaingest.Series{ID: "existing", Slug: "one-piece"})
		adapters := &mock.AdapterRegistry{
			ResolveFn: func(mangaingest.Platform) (mangaingest.SourceAdapter, error) {
				t.Fatal("adapter should not be resolved")
				return nil, nil
			},
		}
		p := newPipeline(s, adapters)

		_, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "ONE PIECE!"})

		assert.Equal(t, mangaingest.ECONFLICT, mangaingest.ErrorCode(err))
		assert.Zero(t, s.seriesCreates)
		assert.Empty(t, s.uploads)
	})

	t.Run("unique violation at persist is a conflict", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/": onePieceHTML,
		}))
		p.Series.(*mock.SeriesService).CreateSeriesFn = func(context.Context, *mangaingest.Series) error {
			return mangaingest.Errorf(mangaingest.ECONFLICT, "series %q already exists", "one-piece")
		}
		p.Notifier = &mock.Notifier{
			NotifyNewSeriesFn: func(context.Context, mangaingest.SeriesEvent) error {
				t.Fatal("hooks must not run after a failed persist")
				return nil
			},
		}

		_, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "One Piece"})

		assert.Equal(t, mangaingest.ECONFLICT, mangaingest.ErrorCode(err))
	})

	t.Run("empty platform uses the default", func(t *testing.T) {
		t.Parallel()

		var resolved mangaingest.Platform
		adapters := &mock.AdapterRegistry{
			ResolveFn: func(p mangaingest.Platform) (mangaingest.SourceAdapter, error) {
				resolved = p
				return nil, mangaingest.Errorf(mangaingest.EUNSUPPORTED, "stop")
			},
		}
		p := newPipeline(newStore(), adapters)

		_, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "One Piece"})

		require.Error(t, err)
		assert.Equal(t, mangaingest.DefaultPlatform, resolved)
	})

	t.Run("rejects invalid requests", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(newStore(), &mock.AdapterRegistry{})

		_, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "ab"})
		assert.Equal(t, mangaingest.EINVALID, mangaingest.ErrorCode(err))

		_, err = p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "!!!"})
		assert.Equal(t, mangaingest.EINVALID, mangaingest.ErrorCode(err))

		_, err = p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "One Piece", Platform: "KAKAO"})
		assert.Equal(t, mangaingest.EUNSUPPORTED, mangaingest.ErrorCode(err))
	})

	t.Run("retries cover upload", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/": onePieceHTML,
		}))
		var attempts int
		p.Assets.(*mock.AssetUploader).UploadFromURLFn = func(_ context.Context, _, folder string) (string, error) {
			attempts++
			if attempts < 3 {
				return "", errors.New("connection reset")
			}
			return "https://assets.example.com/" + folder + "/cover.jpg", nil
		}

		series, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "One Piece"})

		require.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, "https://assets.example.com/manga-covers/cover.jpg", series.CoverURL)
	})

	t.Run("cover failure aborts before persist", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/": onePieceHTML,
		}))
		var attempts int
		p.Assets.(*mock.AssetUploader).UploadFromURLFn = func(context.Context, string, string) (string, error) {
			attempts++
			return "", errors.New("bucket unavailable")
		}

		_, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "One Piece"})

		assert.Equal(t, mangaingest.EUPLOAD, mangaingest.ErrorCode(err))
		assert.Equal(t, 3, attempts)
		assert.Zero(t, s.seriesCreates)
	})

	t.Run("thumbnail failure aborts before persist", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/": onePieceHTML,
		}))
		p.Thumbnails = &mock.Thumbnailer{
			ThumbnailFn: func(context.Context, string) ([]byte, error) {
				return nil, errors.New("unsupported image format")
			},
		}

		_, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "One Piece"})

		assert.Equal(t, mangaingest.EUPLOAD, mangaingest.ErrorCode(err))
		assert.Zero(t, s.seriesCreates)
	})

	t.Run("hook failures do not fail ingestion", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/": onePieceHTML,
		}))
		p.Similarity = &mock.SimilarityRefresher{
			RefreshFn: func(context.Context, string) error { return errors.New("similarity down") },
		}
		var notifyCalls int
		p.Notifier = &mock.Notifier{
			NotifyNewSeriesFn: func(context.Context, mangaingest.SeriesEvent) error {
				notifyCalls++
				return errors.New("redis down")
			},
		}

		series, err := p.IngestSeries(context.Background(), mangaingest.SeriesRequest{Title: "One Piece"})

		require.NoError(t, err)
		assert.NotEmpty(t, series.ID)
		assert.Equal(t, 1, notifyCalls)
		assert.Equal(t, 1, s.seriesCreates)
	})

	t.Run("hooks run detached from caller cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		s := newStore()
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/": onePieceHTML,
		}))
		create := p.Series.(*mock.SeriesService).CreateSeriesFn
		p.Series.(*mock.SeriesService).CreateSeriesFn = func(ctx context.Context, series *mangaingest.Series) error {
			err := create(ctx, series)
			cancel()
			return err
		}
		var hookErr error
		p.Similarity = &mock.SimilarityRefresher{
			RefreshFn: func(ctx context.Context, _ string) error {
				hookErr = ctx.Err()
				return nil
			},
		}

		_, err := p.IngestSeries(ctx, mangaingest.SeriesRequest{Title: "One Piece"})

		require.NoError(t, err)
		assert.NoError(t, hookErr)
	})
}

func TestPipeline_IngestChapter(t *testing.T) {
	t.Parallel()

	onePiece := func() *mangaingest.Series {
		return &mangaingest.Series{ID: "series-one-piece", Slug: "one-piece", Title: "One Piece", Platform: mangaingest.PlatformAsheq}
	}

	t.Run("falls back to alternate format and keeps page order", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		s.addSeries(onePiece())
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/05/": readerHTML(0),
			"https://3asq.org/manga/one-piece/5/":  readerHTML(20),
		}))
		p.PageConcurrency = 5
		var events []mangaingest.ChapterEvent
		p.Notifier = &mock.Notifier{
			NotifyNewChapterFn: func(_ context.Context, e mangaingest.ChapterEvent) error {
				events = append(events, e)
				return nil
			},
		}

		chapter, err := p.IngestChapter(context.Background(), mangaingest.ChapterRequest{SeriesID: "series-one-piece", Number: 5})

		require.NoError(t, err)
		require.Len(t, chapter.Pages, 20)
		for i, page := range chapter.Pages {
			assert.Equal(t, i+1, page.Number)
			assert.Equal(t, fmt.Sprintf("https://assets.example.com/manga-pages/%02d.jpg", i+1), page.ImageURL)
		}
		assert.Equal(t, "series-one-piece", chapter.SeriesID)
		assert.Len(t, s.uploads, 20)
		assert.Equal(t, 1, s.chapterCreates)
		require.Len(t, events, 1)
		assert.Equal(t, "One Piece", events[0].SeriesTitle)
		assert.Equal(t, float64(5), events[0].ChapterNumber)
	})

	t.Run("existing chapter is a conflict", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		s.addSeries(onePiece())
		s.chapters[chapterKey("series-one-piece", 5)] = &mangaingest.Chapter{ID: "c5", SeriesID: "series-one-piece", Number: 5}
		adapters := &mock.AdapterRegistry{
			ResolveFn: func(mangaingest.Platform) (mangaingest.SourceAdapter, error) {
				t.Fatal("adapter should not be resolved")
				return nil, nil
			},
		}
		p := newPipeline(s, adapters)

		_, err := p.IngestChapter(context.Background(), mangaingest.ChapterRequest{SeriesID: "series-one-piece", Number: 5})

		assert.Equal(t, mangaingest.ECONFLICT, mangaingest.ErrorCode(err))
		assert.Zero(t, s.chapterCreates)
	})

	t.Run("uses the stored platform of the series", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		s.addSeries(&mangaingest.Series{ID: "series-solo-leveling", Slug: "solo-leveling", Platform: mangaingest.PlatformAres})
		var resolved mangaingest.Platform
		var fetchedSlug string
		adapters := &mock.AdapterRegistry{
			ResolveFn: func(p mangaingest.Platform) (mangaingest.SourceAdapter, error) {
				resolved = p
				return &mock.SourceAdapter{
					FetchChapterFn: func(_ context.Context, slug string, n float64) (*mangaingest.Chapter, error) {
						fetchedSlug = slug
						return &mangaingest.Chapter{Title: "Chapter 1", Pages: mangaingest.NewPages([]string{"https://fl-ares.com/1.webp"})}, nil
					},
				}, nil
			},
		}
		p := newPipeline(s, adapters)

		_, err := p.IngestChapter(context.Background(), mangaingest.ChapterRequest{SeriesID: "series-solo-leveling", Number: 1})

		require.NoError(t, err)
		assert.Equal(t, mangaingest.PlatformAres, resolved)
		assert.Equal(t, "solo-leveling", fetchedSlug)
	})

	t.Run("page upload failure aborts the chapter", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		s.addSeries(onePiece())
		p := newPipeline(s, asheqRegistry(map[string]string{
			"https://3asq.org/manga/one-piece/05/": readerHTML(10),
		}))
		p.Assets.(*mock.AssetUploader).UploadFromURLFn = func(_ context.Context, url, folder string) (string, error) {
			if strings.HasSuffix(url, "/07.jpg") {
				return "", errors.New("timeout")
			}
			return "https://assets.example.com/" + folder + "/" + path.Base(url), nil
		}

		_, err := p.IngestChapter(context.Background(), mangaingest.ChapterRequest{SeriesID: "series-one-piece", Number: 5})

		assert.Equal(t, mangaingest.EUPLOAD, mangaingest.ErrorCode(err))
		assert.Zero(t, s.chapterCreates)
	})

	t.Run("unknown series is not found", func(t *testing.T) {
		t.Parallel()

		p := newPipeline(newStore(), &mock.AdapterRegistry{})

		_, err := p.IngestChapter(context.Background(), mangaingest.ChapterRequest{SeriesID: "missing", Number: 1})

		assert.Equal(t, mangaingest.ENOTFOUND, mangaingest.ErrorCode(err))
	})

	t.Run("rejects short series IDs before any lookup", func(t *testing.T) {
		t.Parallel()

		s := newStore()
		s.addSeries(&mangaingest.Series{ID: "op", Slug: "one-piece", Platform: mangaingest.PlatformAsheq})
		p := newPipeline(s, &mock.AdapterRegistry{})

		_, err := p.IngestChapter(context.Background(), mangaingest.ChapterRequest{SeriesID: "op", Number: 5})

		assert.Equal(t, mangaingest.EINVALID, mangaingest.ErrorCode(err))
		assert.Zero(t, s.chapterCreates)
	})
}

func TestPipeline_IngestChapters(t *testing.T) {
	t.Parallel()

	s := newStore()
	s.addSeries(&mangaingest.Series{ID: "series-one-piece", Slug: "one-piece", Platform: mangaingest.PlatformAsheq})
	p := newPipeline(s, asheqRegistry(map[string]string{
		"https://3asq.org/manga/one-piece/01/": readerHTML(3),
		"https://3asq.org/manga/one-piece/03/": readerHTML(4),
	}))

	results, err := p.IngestChapters(context.Background(), mangaingest.ChaptersRequest{
		SeriesID:       "series-one-piece",
		ChapterNumbers: []float64{1, 2, 3},
	})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, float64(1), results[0].Number)
	require.NoError(t, results[0].Err)
	assert.Len(t, results[0].Chapter.Pages, 3)
	assert.Equal(t, mangaingest.EEXTRACTION, mangaingest.ErrorCode(results[1].Err))
	assert.Nil(t, results[1].Chapter)
	require.NoError(t, results[2].Err)
	assert.Len(t, results[2].Chapter.Pages, 4)
	assert.Equal(t, 2, s.chapterCreates)
}
