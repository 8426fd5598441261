package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/mangaingest"
	"github.com/fwojciec/mangaingest/gin"
	"github.com/fwojciec/mangaingest/goquery"
	mihttp "github.com/fwojciec/mangaingest/http"
	"github.com/fwojciec/mangaingest/imaging"
	"github.com/fwojciec/mangaingest/ingest"
	"github.com/fwojciec/mangaingest/kafka"
	"github.com/fwojciec/mangaingest/redis"
	"github.com/fwojciec/mangaingest/rod"
	"github.com/fwojciec/mangaingest/s3"
	"github.com/fwojciec/mangaingest/similarity"
	mislog "github.com/fwojciec/mangaingest/slog"
	"github.com/fwojciec/mangaingest/source"
	"github.com/fwojciec/mangaingest/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database and config paths. Set before calling Run().
	DBPath     string
	ConfigPath string

	// Config overrides the file at ConfigPath when set.
	Config *Config

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:     defaultDBPath(),
		ConfigPath: defaultConfigPath(),
	}
}

// Close gracefully stops the program, releasing resources in reverse order
// of acquisition.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("mangaingest"),
		kong.Description("Scrape manga series and chapters into durable storage."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'mangaingest --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	if cli.Config != "" {
		m.ConfigPath = cli.Config
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	deps.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if m.Config == nil {
		cfg, err := LoadConfig(m.ConfigPath)
		if err != nil {
			return err
		}
		m.Config = cfg
	}
	deps.Config = m.Config

	defer m.Close()

	switch cmd := strings.Fields(kongCtx.Command())[0]; cmd {
	case "platforms":
		deps.Adapters = m.registry(nil, deps.Logger)

	case "enqueue":
		if len(m.Config.Kafka.Brokers) == 0 {
			fmt.Fprintln(stderr, "Hint: Set kafka.brokers in the config file")
			return fmt.Errorf("no Kafka brokers configured")
		}
		producer, err := kafka.NewProducer(m.Config.Kafka.Brokers)
		if err != nil {
			return fmt.Errorf("failed to connect to Kafka: %w", err)
		}
		publisher := kafka.NewPublisher(producer)
		m.closers = append(m.closers, publisher.Close)
		deps.Publisher = publisher

	default:
		m.DB = sqlite.NewDB(m.DBPath)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(stderr, "Hint: Set MANGAINGEST_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
		}

		series := sqlite.NewSeriesService(m.DB)
		similarities := sqlite.NewSimilarityService(m.DB)
		deps.Similarities = similarities
		deps.Similarity = &similarity.Engine{Series: series, Similarities: similarities}

		if cmd == "serve" || cmd == "series" || cmd == "chapters" {
			if err := m.wireIngest(ctx, deps, series); err != nil {
				return err
			}
		}
		if cmd == "serve" {
			if err := m.wireServe(deps); err != nil {
				return err
			}
		}
	}

	return kongCtx.Run(deps)
}

// wireIngest builds the ingestion pipeline and its collaborators.
func (m *Main) wireIngest(ctx context.Context, deps *Dependencies, series *sqlite.SeriesService) error {
	cfg := m.Config
	logger := deps.Logger

	var evasion mangaingest.EvasionRunner
	if cfg.Browser.Enabled {
		manager, err := rod.NewBrowserManager(rod.WithMaxPages(cfg.Browser.MaxPages))
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed, or set browser.enabled: false")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		m.closers = append(m.closers, manager.Close)

		opener := rod.NewBrowserOpener(manager, rod.NewPool(cfg.Browser.PoolSize))
		runner := rod.NewRunner(opener,
			rod.WithAttempts(cfg.Browser.Attempts),
			rod.WithInterval(cfg.Browser.Interval),
		)
		evasion = mislog.NewLoggingEvasionRunner(runner, logger)
	}
	deps.Adapters = m.registry(evasion, logger)

	if cfg.S3.Bucket == "" {
		fmt.Fprintln(deps.Stderr, "Hint: Set s3.bucket in the config file")
		return fmt.Errorf("no S3 bucket configured")
	}
	client, err := s3.NewClient(ctx, cfg.S3.Config())
	if err != nil {
		return fmt.Errorf("failed to create S3 client: %w", err)
	}
	assets := mislog.NewLoggingUploader(s3.NewUploader(client, cfg.S3.Bucket, cfg.S3.PublicBaseURL), logger)

	var notifier mangaingest.Notifier
	var locker mangaingest.Locker = &ingest.KeyedMutex{}
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Open(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Check redis.addr in the config file")
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		m.closers = append(m.closers, rdb.Close)
		notifier = mislog.NewLoggingNotifier(redis.NewNotifier(rdb), logger)
		locker = redis.NewLocker(rdb, redis.WithLogger(logger))
	}

	deps.Ingester = &ingest.Pipeline{
		Series:          series,
		Chapters:        sqlite.NewChapterService(m.DB),
		Adapters:        deps.Adapters,
		Assets:          assets,
		Thumbnails:      imaging.NewThumbnailer(),
		Similarity:      deps.Similarity,
		Notifier:        notifier,
		Locker:          locker,
		Logger:          logger,
		PageConcurrency: cfg.Ingest.PageConcurrency,
	}
	return nil
}

// wireServe builds the HTTP server and, when brokers are configured, the
// Kafka consumer.
func (m *Main) wireServe(deps *Dependencies) error {
	deps.Server = gin.NewServer(deps.Ingester, deps.Similarities, deps.Logger)

	if len(m.Config.Kafka.Brokers) == 0 {
		return nil
	}
	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: m.Config.Kafka.Brokers,
		Topics:  kafka.Topics(),
		GroupID: m.Config.Kafka.GroupID,
		Handler: &kafka.Dispatcher{Ingester: deps.Ingester, Logger: deps.Logger},
		Logger:  deps.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create Kafka consumer: %w", err)
	}
	m.closers = append(m.closers, consumer.Close)
	deps.Consumer = consumer
	return nil
}

// registry builds the adapter for every built-in site, applying base-URL
// overrides from the config.
func (m *Main) registry(evasion mangaingest.EvasionRunner, logger *slog.Logger) mangaingest.AdapterRegistry {
	cfg := m.Config

	limiter := mihttp.NewDomainLimiter(cfg.Fetch.RateLimit, cfg.Fetch.Burst)
	for host, rps := range cfg.Fetch.HostRates {
		limiter.SetRate(host, rps)
	}
	opts := []mihttp.Option{
		mihttp.WithTimeout(cfg.Fetch.Timeout),
		mihttp.WithLimiter(limiter),
	}
	if cfg.Fetch.UserAgent != "" {
		opts = append(opts, mihttp.WithUserAgent(cfg.Fetch.UserAgent))
	}
	fetcher := mislog.NewLoggingFetcher(mihttp.NewFetcher(opts...), logger)
	m.closers = append(m.closers, fetcher.Close)

	extractor := goquery.NewExtractor()
	detector := goquery.NewChallengeDetector()
	overrides := cfg.SiteOverrides()

	var adapters []mangaingest.SourceAdapter
	for _, site := range source.Sites() {
		if baseURL, ok := overrides[site.Platform]; ok {
			site = site.WithBaseURL(baseURL)
		}
		adapters = append(adapters, &source.Adapter{
			Site:      site,
			Fetcher:   fetcher,
			Evasion:   evasion,
			Extractor: extractor,
			Detector:  detector,
		})
	}
	return mislog.NewLoggingRegistry(source.NewRegistry(adapters...), logger)
}

func defaultDBPath() string {
	if path := os.Getenv("MANGAINGEST_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mangaingest.db"
	}
	dir := filepath.Join(home, ".mangaingest")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "mangaingest.db")
}

func defaultConfigPath() string {
	if path := os.Getenv("MANGAINGEST_CONFIG"); path != "" {
		return path
	}
	return "mangaingest.yaml"
}
