package kafka_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/mangaingest"
	"github.com/fwojciec/mangaingest/kafka"
	"github.com/fwojciec/mangaingest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_HandleMessage(t *testing.T) {
	t.Parallel()

	t.Run("series message runs IngestSeries", func(t *testing.T) {
		t.Parallel()

		var got mangaingest.SeriesRequest
		d := &kafka.Dispatcher{
			Ingester: &mock.Ingester{
				IngestSeriesFn: func(_ context.Context, req mangaingest.SeriesRequest) (*mangaingest.Series, error) {
					got = req
					return &mangaingest.Series{ID: "s1", Slug: "one-piece", Platform: req.Platform}, nil
				},
			},
			Logger: discardLogger(),
		}

		err := d.HandleMessage(context.Background(), kafka.TopicSeriesCreate,
			[]byte(`{"title":"One Piece","platform":"ASHEQ"}`))

		require.NoError(t, err)
		assert.Equal(t, mangaingest.SeriesRequest{Title: "One Piece", Platform: mangaingest.PlatformAsheq}, got)
	})

	t.Run("chapter message runs IngestChapters", func(t *testing.T) {
		t.Parallel()

		var got mangaingest.ChaptersRequest
		d := &kafka.Dispatcher{
			Ingester: &mock.Ingester{
				IngestChaptersFn: func(_ context.Context, req mangaingest.ChaptersRequest) ([]mangaingest.ChapterResult, error) {
					got = req
					return []mangaingest.ChapterResult{
						{Number: 1, Chapter: &mangaingest.Chapter{Number: 1, Pages: mangaingest.NewPages([]string{"a"})}},
						{Number: 2, Err: mangaingest.Errorf(mangaingest.ECONFLICT, "exists")},
					}, nil
				},
			},
			Logger: discardLogger(),
		}

		err := d.HandleMessage(context.Background(), kafka.TopicChapterCreate,
			[]byte(`{"seriesId":"series-1","chapterNumbers":[1,2]}`))

		require.NoError(t, err)
		assert.Equal(t, "series-1", got.SeriesID)
		assert.Equal(t, []float64{1, 2}, got.ChapterNumbers)
	})

	t.Run("platform name is case insensitive", func(t *testing.T) {
		t.Parallel()

		var got mangaingest.Platform
		d := &kafka.Dispatcher{
			Ingester: &mock.Ingester{
				IngestSeriesFn: func(_ context.Context, req mangaingest.SeriesRequest) (*mangaingest.Series, error) {
					got = req.Platform
					return &mangaingest.Series{ID: "s1"}, nil
				},
			},
			Logger: discardLogger(),
		}

		err := d.HandleMessage(context.Background(), kafka.TopicSeriesCreate,
			[]byte(`{"title":"Solo Leveling","platform":" ares "}`))

		require.NoError(t, err)
		assert.Equal(t, mangaingest.PlatformAres, got)
	})

	t.Run("malformed payload is EINVALID", func(t *testing.T) {
		t.Parallel()

		d := &kafka.Dispatcher{Ingester: &mock.Ingester{}, Logger: discardLogger()}

		err := d.HandleMessage(context.Background(), kafka.TopicSeriesCreate, []byte(`{"title":`))

		assert.Equal(t, mangaingest.EINVALID, mangaingest.ErrorCode(err))
	})

	t.Run("unknown topic is EINVALID", func(t *testing.T) {
		t.Parallel()

		d := &kafka.Dispatcher{Ingester: &mock.Ingester{}, Logger: discardLogger()}

		err := d.HandleMessage(context.Background(), "scraper.other", []byte(`{}`))

		assert.Equal(t, mangaingest.EINVALID, mangaingest.ErrorCode(err))
	})

	t.Run("pipeline rejection is returned", func(t *testing.T) {
		t.Parallel()

		d := &kafka.Dispatcher{
			Ingester: &mock.Ingester{
				IngestSeriesFn: func(context.Context, mangaingest.SeriesRequest) (*mangaingest.Series, error) {
					return nil, mangaingest.Errorf(mangaingest.ECONFLICT, "series %q already exists", "one-piece")
				},
			},
		}

		err := d.HandleMessage(context.Background(), kafka.TopicSeriesCreate, []byte(`{"title":"One Piece"}`))

		assert.Equal(t, mangaingest.ECONFLICT, mangaingest.ErrorCode(err))
	})

	t.Run("batch error is returned", func(t *testing.T) {
		t.Parallel()

		d := &kafka.Dispatcher{
			Ingester: &mock.Ingester{
				IngestChaptersFn: func(context.Context, mangaingest.ChaptersRequest) ([]mangaingest.ChapterResult, error) {
					return nil, errors.New("boom")
				},
			},
			Logger: discardLogger(),
		}

		err := d.HandleMessage(context.Background(), kafka.TopicChapterCreate, []byte(`{"seriesId":"series-1","chapterNumbers":[1]}`))

		assert.EqualError(t, err, "boom")
	})
}
