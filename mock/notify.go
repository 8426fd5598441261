package mock

import (
	"context"

	"github.com/fwojciec/mangaingest"
)

var _ mangaingest.Notifier = (*Notifier)(nil)

// Notifier is a mock implementation of mangaingest.Notifier.
type Notifier struct {
	NotifyNewSeriesFn  func(ctx context.Context, event mangaingest.SeriesEvent) error
	NotifyNewChapterFn func(ctx context.Context, event mangaingest.ChapterEvent) error
}

func (n *Notifier) NotifyNewSeries(ctx context.Context, event mangaingest.SeriesEvent) error {
	return n.NotifyNewSeriesFn(ctx, event)
}

func (n *Notifier) NotifyNewChapter(ctx context.Context, event mangaingest.ChapterEvent) error {
	return n.NotifyNewChapterFn(ctx, event)
}

var _ mangaingest.Locker = (*Locker)(nil)

// Locker is a mock implementation of mangaingest.Locker.
type Locker struct {
	LockFn func(ctx context.Context, key string) (func(), error)
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	return l.LockFn(ctx, key)
}
