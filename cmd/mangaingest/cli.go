package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/mangaingest"
	"github.com/fwojciec/mangaingest/similarity"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx          context.Context
	Stdout       io.Writer
	Stderr       io.Writer
	Logger       *slog.Logger
	Config       *Config
	Adapters     mangaingest.AdapterRegistry
	Ingester     mangaingest.Ingester
	Similarities mangaingest.SimilarityService
	Similarity   *similarity.Engine
	Publisher    Publisher
	Server       Server
	Consumer     Consumer
}

// Publisher enqueues ingestion requests.
type Publisher interface {
	PublishSeries(req mangaingest.SeriesRequest) error
	PublishChapters(req mangaingest.ChaptersRequest) error
}

// Server serves the HTTP API until ctx is done.
type Server interface {
	ListenAndServe(ctx context.Context, addr string) error
}

// Consumer consumes ingestion requests until ctx is done.
type Consumer interface {
	Run(ctx context.Context) error
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose bool   `short:"v" help:"Enable debug logging"`
	Config  string `help:"Path to the YAML config file (env MANGAINGEST_CONFIG)"`
	DB      string `help:"Path to the SQLite database (env MANGAINGEST_DB)"`

	Serve             ServeCmd             `cmd:"" help:"Serve the HTTP API and consume the ingestion topics"`
	Series            SeriesCmd            `cmd:"" help:"Ingest a series"`
	Chapters          ChaptersCmd          `cmd:"" help:"Ingest chapters of a stored series"`
	Enqueue           EnqueueCmd           `cmd:"" help:"Publish an ingestion request to Kafka"`
	Similar           SimilarCmd           `cmd:"" help:"List series similar to a series"`
	RefreshSimilarity RefreshSimilarityCmd `cmd:"" name:"refresh-similarity" help:"Recompute every similarity score"`
	Platforms         PlatformsCmd         `cmd:"" help:"List supported platforms"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr    string `help:"Listen address (overrides config)"`
	NoKafka bool   `help:"Do not consume Kafka topics"`
}

// SeriesCmd is the "series" subcommand.
type SeriesCmd struct {
	Title    string `arg:"" help:"Series title"`
	Platform string `short:"p" help:"Source platform (default ASHEQ)"`
}

// ChaptersCmd is the "chapters" subcommand.
type ChaptersCmd struct {
	SeriesID string    `arg:"" help:"Series ID"`
	Numbers  []float64 `arg:"" help:"Chapter numbers"`
}

// EnqueueCmd is the "enqueue" subcommand.
type EnqueueCmd struct {
	Series   EnqueueSeriesCmd   `cmd:"" help:"Publish a series request"`
	Chapters EnqueueChaptersCmd `cmd:"" help:"Publish a chapters request"`
}

// EnqueueSeriesCmd is the "enqueue series" subcommand.
type EnqueueSeriesCmd struct {
	Title    string `arg:"" help:"Series title"`
	Platform string `short:"p" help:"Source platform (default ASHEQ)"`
}

// EnqueueChaptersCmd is the "enqueue chapters" subcommand.
type EnqueueChaptersCmd struct {
	SeriesID string    `arg:"" help:"Series ID"`
	Numbers  []float64 `arg:"" help:"Chapter numbers"`
}

// SimilarCmd is the "similar" subcommand.
type SimilarCmd struct {
	SeriesID string `arg:"" help:"Series ID"`
	Limit    int    `short:"n" default:"6" help:"Maximum number of results"`
}

// RefreshSimilarityCmd is the "refresh-similarity" subcommand.
type RefreshSimilarityCmd struct{}

// PlatformsCmd is the "platforms" subcommand.
type PlatformsCmd struct{}
