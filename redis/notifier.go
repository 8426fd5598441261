package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fwojciec/mangaingest"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Ensure Notifier implements mangaingest.Notifier at compile time.
var _ mangaingest.Notifier = (*Notifier)(nil)

// DefaultChannelPrefix prefixes every notification channel.
const DefaultChannelPrefix = "notifications:"

// Notification types.
const (
	TypeNewSeries  = "NEW_MANGA"
	TypeNewChapter = "NEW_CHAPTER"
)

// Notification is the message published for every event.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Audience  string    `json:"audience"`
	Priority  string    `json:"priority"`
	Message   string    `json:"message"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier publishes ingestion events on Redis channels named after their
// audience. Chapter events are also published on the series' own channel.
type Notifier struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NotifierOption configures a Notifier.
type NotifierOption func(*Notifier)

// WithChannelPrefix overrides DefaultChannelPrefix.
func WithChannelPrefix(prefix string) NotifierOption {
	return func(n *Notifier) {
		n.prefix = prefix
	}
}

// NewNotifier creates a Notifier.
func NewNotifier(client redis.Cmdable, opts ...NotifierOption) *Notifier {
	n := &Notifier{client: client, prefix: DefaultChannelPrefix, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Channel returns the channel name for audience.
func (n *Notifier) Channel(audience string) string {
	return n.prefix + audience
}

// SeriesChannel returns the channel carrying chapter events of one series.
func (n *Notifier) SeriesChannel(seriesID string) string {
	return n.prefix + "manga:" + seriesID
}

// NotifyNewSeries tells admins about a new series.
func (n *Notifier) NotifyNewSeries(ctx context.Context, event mangaingest.SeriesEvent) error {
	msg := n.notification(TypeNewSeries, mangaingest.AudienceAdmins, mangaingest.PriorityHigh,
		fmt.Sprintf("New manga %q has been added!", event.Title), event)
	return n.publish(ctx, msg, n.Channel(mangaingest.AudienceAdmins))
}

// NotifyNewChapter tells manga-updates subscribers and followers of the
// series about a new chapter.
func (n *Notifier) NotifyNewChapter(ctx context.Context, event mangaingest.ChapterEvent) error {
	text := "New chapter " + mangaingest.FormatChapterNumber(event.ChapterNumber)
	if event.ChapterTitle != "" {
		text += ": " + event.ChapterTitle
	}
	text += fmt.Sprintf(" for %q is available!", event.SeriesTitle)

	msg := n.notification(TypeNewChapter, mangaingest.AudienceMangaUpdates, mangaingest.PriorityMedium, text, event)
	return n.publish(ctx, msg, n.SeriesChannel(event.SeriesID), n.Channel(mangaingest.AudienceMangaUpdates))
}

func (n *Notifier) notification(typ, audience, priority, message string, data any) Notification {
	return Notification{
		ID:        uuid.New().String(),
		Type:      typ,
		Audience:  audience,
		Priority:  priority,
		Message:   message,
		Data:      data,
		Timestamp: n.now().UTC(),
	}
}

func (n *Notifier) publish(ctx context.Context, msg Notification, channels ...string) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	for _, ch := range channels {
		if err := n.client.Publish(ctx, ch, payload).Err(); err != nil {
			return fmt.Errorf("publishing to %s: %w", ch, err)
		}
	}
	return nil
}
