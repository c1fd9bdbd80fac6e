package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/basekick-labs/gridtab/internal/api"
	"github.com/basekick-labs/gridtab/internal/archive"
	"github.com/basekick-labs/gridtab/internal/catalog"
	"github.com/basekick-labs/gridtab/internal/config"
	"github.com/basekick-labs/gridtab/internal/ingest"
	"github.com/basekick-labs/gridtab/internal/logger"
	"github.com/basekick-labs/gridtab/internal/metrics"
	"github.com/basekick-labs/gridtab/internal/scheduler"
	"github.com/basekick-labs/gridtab/internal/shutdown"
	"github.com/basekick-labs/gridtab/internal/storage"
	"github.com/basekick-labs/gridtab/pkg/models"
)

// Version is set at build time
var Version = "dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "transform" {
		runTransformSubcommand(os.Args[2:])
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Println(Version)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Log.Level, cfg.Log.Format)
	log.Info().Str("version", Version).Msg("Starting gridtab...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if err := cfg.Server.ValidateTLS(); err != nil {
		log.Fatal().Err(err).Msg("Invalid TLS configuration")
	}

	m := metrics.Init(logger.Get("metrics"))

	shutdownCoordinator := shutdown.New(30*time.Second, logger.Get("shutdown"))

	storageBackend, err := storage.New(&cfg.Storage, logger.Get("storage"))
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("Failed to initialize storage backend")
	}
	shutdownCoordinator.Register("storage", storageBackend, shutdown.PriorityStorage)

	transformer := ingest.NewTransformer(logger.Get("transform"))
	arrowWriter := ingest.NewArrowWriter(&cfg.Output, logger.Get("arrow"))
	processor := archive.NewProcessor(
		transformer,
		cfg.Transform.Workers,
		cfg.Server.MaxPayloadSize,
		archive.Options{SortBundles: cfg.Transform.SortBundles},
		m,
		logger.Get("processor"),
	)

	log.Info().
		Int("workers", cfg.Transform.Workers).
		Str("format", cfg.Output.Format).
		Str("storage", storageBackend.Type()).
		Msg("Transform pipeline initialized")

	serverConfig := &api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    cfg.Server.MaxPayloadSize,
		TLSEnabled:   cfg.Server.TLSEnabled,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}
	server := api.NewServer(serverConfig, m, logger.Get("api"))

	timeseries := metrics.NewTimeSeriesCollector(m, 720, 10*time.Second)
	timeseries.Start()
	server.SetTimeSeries(timeseries)
	shutdownCoordinator.RegisterHook("timeseries", func(ctx context.Context) error {
		timeseries.Stop()
		return nil
	}, shutdown.PriorityScheduler)

	server.RegisterRoutes()

	transformHandler := api.NewTransformHandler(processor, arrowWriter, storageBackend, m, api.TransformDefaults{
		Format:   cfg.Output.Format,
		Describe: cfg.Transform.DescribeCodes,
	}, logger.Get("transform-api"))
	transformHandler.RegisterRoutes(server.App())

	// The inbox always writes Parquet regardless of the response default.
	var inbox *scheduler.InboxScheduler
	if cfg.Inbox.Enabled {
		encoder, err := ingest.NewEncoder(ingest.FormatParquet, arrowWriter)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create inbox encoder")
		}
		inbox, err = scheduler.NewInboxScheduler(&scheduler.InboxSchedulerConfig{
			Processor:       processor,
			Encoder:         encoder,
			Storage:         storageBackend,
			Observer:        m,
			Prefix:          cfg.Inbox.Prefix,
			OutputPrefix:    cfg.Inbox.OutputPrefix,
			DeleteProcessed: cfg.Inbox.DeleteProcessed,
			DescribeCodes:   cfg.Transform.DescribeCodes,
			Schedule:        cfg.Inbox.Schedule,
			Logger:          logger.Get("inbox"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create inbox scheduler")
		}
		if err := inbox.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start inbox scheduler")
		}
		shutdownCoordinator.RegisterHook("inbox-scheduler", inbox.Shutdown, shutdown.PriorityScheduler)
	}

	// A nil *InboxScheduler must not become a non-nil interface.
	var inboxStatus api.InboxSchedulerInterface
	if inbox != nil {
		inboxStatus = inbox
	}
	api.NewSchedulerHandler(inboxStatus, logger.Get("inbox-api")).RegisterRoutes(server.App())

	// Register HTTP server shutdown hook (first to stop accepting new requests)
	shutdownCoordinator.RegisterHook("http-server", server.Shutdown, shutdown.PriorityHTTPServer)

	listenErr := server.Start()
	go func() {
		if err, ok := <-listenErr; ok && err != nil {
			log.Error().Err(err).Msg("HTTP server stopped unexpectedly")
			shutdownCoordinator.TriggerShutdown()
		}
	}()

	protocol := "HTTP"
	if cfg.Server.TLSEnabled {
		protocol = "HTTPS"
	}
	log.Info().
		Int("port", cfg.Server.Port).
		Str("protocol", protocol).
		Bool("inbox", cfg.Inbox.Enabled).
		Str("version", Version).
		Msg("gridtab is ready!")

	sig := shutdownCoordinator.WaitForSignal()
	log.Info().Str("signal", sig.String()).Msg("Initiating graceful shutdown...")

	if err := shutdownCoordinator.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Shutdown completed with errors")
		os.Exit(1)
	}

	log.Info().Msg("gridtab shutdown complete")
}

// runTransformSubcommand converts documents or archives from the command line
// without starting the server. Multiple inputs are concatenated in argument
// order, or read from stdin when no file is given.
func runTransformSubcommand(args []string) {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	format := fs.String("format", ingest.FormatJSON, "Output format: json, msgpack, csv, parquet, arrow")
	output := fs.String("o", "", "Output file (default: stdout)")
	contentType := fs.String("content-type", "", "Input media type (default: sniffed)")
	sortByTime := fs.Bool("sort", false, "Stable-sort rows by time")
	describe := fs.Bool("describe", false, "Add .meaning columns for known codes")
	workers := fs.Int("workers", 4, "Concurrent archive members")
	logLevel := fs.String("log-level", "warn", "Log level written to stderr")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: gridtab transform [flags] [FILE...]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to parse flags: %v\n", err)
		os.Exit(1)
	}

	// stdout may carry the encoded table.
	logger.SetupConsole(*logLevel, os.Stderr)

	aw := ingest.NewArrowWriter(&config.OutputConfig{
		Compression:     "snappy",
		UseDictionary:   true,
		WriteStatistics: true,
		DataPageVersion: "2.0",
	}, logger.Get("arrow"))
	encoder, err := ingest.NewEncoder(*format, aw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	processor := archive.NewProcessor(
		ingest.NewTransformer(logger.Get("transform")),
		*workers,
		archive.DefaultMaxSize,
		archive.Options{SortByTime: *sortByTime},
		nil,
		logger.Get("processor"),
	)

	inputs := fs.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	ctx := context.Background()
	var batches []*archive.Batch
	for _, name := range inputs {
		data, err := readInput(name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		batch, err := processor.Process(ctx, data, *contentType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v (%s)\n", name, err, ingest.Outcome(err))
			os.Exit(1)
		}
		batches = append(batches, batch)
	}

	tbl := batches[0].Table
	if len(batches) > 1 {
		tables := make([]*models.Table, 0, len(batches))
		for _, b := range batches {
			tables = append(tables, b.Table)
		}
		tbl = models.Concat(tables...)
		if *sortByTime {
			tbl.SortByTime()
		}
	}
	if *describe {
		catalog.Describe(tbl)
	}

	var out io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(filepath.Clean(*output))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	bw := bufio.NewWriter(out)
	if err := encoder.Encode(bw, tbl); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to encode table: %v\n", err)
		os.Exit(1)
	}
	if err := bw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to write output: %v\n", err)
		os.Exit(1)
	}
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(filepath.Clean(name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}
