package mangaingest

import "context"

// Notification audiences and priorities.
const (
	AudienceAdmins       = "admins"
	AudienceMangaUpdates = "manga-updates"

	PriorityHigh   = "high"
	PriorityMedium = "medium"
)

// SeriesEvent announces a newly ingested series.
type SeriesEvent struct {
	SeriesID string `json:"seriesId"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	CoverURL string `json:"coverUrl"`
}

// ChapterEvent announces a newly ingested chapter.
type ChapterEvent struct {
	SeriesID      string  `json:"seriesId"`
	SeriesTitle   string  `json:"seriesTitle"`
	ChapterID     string  `json:"chapterId"`
	ChapterNumber float64 `json:"chapterNumber"`
	ChapterTitle  string  `json:"chapterTitle"`
}

// Notifier delivers ingestion events to interested recipients.
type Notifier interface {
	NotifyNewSeries(ctx context.Context, event SeriesEvent) error
	NotifyNewChapter(ctx context.Context, event ChapterEvent) error
}
