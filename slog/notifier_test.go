package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/mangaingest"
	"github.com/fwojciec/mangaingest/mock"
	mislog "github.com/fwojciec/mangaingest/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingNotifier(t *testing.T) {
	t.Parallel()

	t.Run("logs series notification", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		var got mangaingest.SeriesEvent
		inner := &mock.Notifier{
			NotifyNewSeriesFn: func(ctx context.Context, event mangaingest.SeriesEvent) error {
				got = event
				return nil
			},
		}

		event := mangaingest.SeriesEvent{SeriesID: "s1", Title: "One Piece", Slug: "one-piece"}
		err := mislog.NewLoggingNotifier(inner, logger).NotifyNewSeries(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, event, got)
		output := buf.String()
		assert.Contains(t, output, "notify new series")
		assert.Contains(t, output, "slug=one-piece")
	})

	t.Run("logs chapter notification failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Notifier{
			NotifyNewChapterFn: func(ctx context.Context, event mangaingest.ChapterEvent) error {
				return errors.New("redis down")
			},
		}

		err := mislog.NewLoggingNotifier(inner, logger).NotifyNewChapter(context.Background(), mangaingest.ChapterEvent{
			SeriesID:      "s1",
			ChapterNumber: 5,
		})

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "notify new chapter")
		assert.Contains(t, output, "chapter=5")
		assert.Contains(t, output, "err=\"redis down\"")
	})
}
