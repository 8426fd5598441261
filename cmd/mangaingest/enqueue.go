package main

import (
	"fmt"

	"github.com/fwojciec/mangaingest"
)

// Run executes the enqueue series command.
func (c *EnqueueSeriesCmd) Run(deps *Dependencies) error {
	platform, err := mangaingest.ParsePlatform(c.Platform)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangaingest.ErrorMessage(err))
		return err
	}

	if err := deps.Publisher.PublishSeries(mangaingest.SeriesRequest{Title: c.Title, Platform: platform}); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangaingest.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Enqueued series %q on %s\n", c.Title, platform)
	return nil
}

// Run executes the enqueue chapters command.
func (c *EnqueueChaptersCmd) Run(deps *Dependencies) error {
	req := mangaingest.ChaptersRequest{SeriesID: c.SeriesID, ChapterNumbers: c.Numbers}
	if err := deps.Publisher.PublishChapters(req); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangaingest.ErrorMessage(err))
		return err
	}
	fmt.Fprintf(deps.Stdout, "Enqueued %d chapters of %s\n", len(c.Numbers), c.SeriesID)
	return nil
}
