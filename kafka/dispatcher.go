package kafka

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/fwojciec/mangaingest"
)

// Ensure Dispatcher implements MessageHandler at compile time.
var _ MessageHandler = (*Dispatcher)(nil)

// Dispatcher decodes ingestion requests by topic and runs them.
type Dispatcher struct {
	Ingester mangaingest.Ingester
	Logger   *slog.Logger
}

// HandleMessage runs the request carried by value. Malformed payloads and
// unknown topics yield EINVALID.
func (d *Dispatcher) HandleMessage(ctx context.Context, topic string, value []byte) error {
	switch topic {
	case TopicSeriesCreate:
		var req mangaingest.SeriesRequest
		if err := json.Unmarshal(value, &req); err != nil {
			return mangaingest.Errorf(mangaingest.EINVALID, "malformed %s message: %v", topic, err)
		}
		series, err := d.Ingester.IngestSeries(ctx, req)
		if err != nil {
			return err
		}
		d.logger().Info("series ingested", "id", series.ID, "slug", series.Slug, "platform", series.Platform)
		return nil

	case TopicChapterCreate:
		var req mangaingest.ChaptersRequest
		if err := json.Unmarshal(value, &req); err != nil {
			return mangaingest.Errorf(mangaingest.EINVALID, "malformed %s message: %v", topic, err)
		}
		results, err := d.Ingester.IngestChapters(ctx, req)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				d.logger().Warn("chapter rejected", "series", req.SeriesID, "chapter", r.Number, "err", r.Err)
				continue
			}
			d.logger().Info("chapter ingested", "series", req.SeriesID, "chapter", r.Number, "pages", len(r.Chapter.Pages))
		}
		return nil
	}
	return mangaingest.Errorf(mangaingest.EINVALID, "unknown topic %q", topic)
}

func (d *Dispatcher) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}
