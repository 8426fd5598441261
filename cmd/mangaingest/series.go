package main

import (
	"fmt"

	"github.com/fwojciec/mangaingest"
)

// Run executes the series command.
func (c *SeriesCmd) Run(deps *Dependencies) error {
	platform, err := mangaingest.ParsePlatform(c.Platform)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangaingest.ErrorMessage(err))
		return err
	}

	series, err := deps.Ingester.IngestSeries(deps.Ctx, mangaingest.SeriesRequest{Title: c.Title, Platform: platform})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", mangaingest.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Added series %q (%s)\n", series.Title, series.ID)
	fmt.Fprintf(deps.Stdout, "  slug:     %s\n", series.Slug)
	fmt.Fprintf(deps.Stdout, "  platform: %s\n", series.Platform)
	fmt.Fprintf(deps.Stdout, "  cover:    %s\n", series.CoverURL)
	return nil
}
