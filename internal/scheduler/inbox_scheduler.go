package scheduler

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/basekick-labs/gridtab/internal/archive"
	"github.com/basekick-labs/gridtab/internal/catalog"
	"github.com/basekick-labs/gridtab/internal/ingest"
	"github.com/basekick-labs/gridtab/internal/storage"
)

const defaultInboxSchedule = "*/5 * * * *"

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Observer receives per-object inbox results. *metrics.Metrics implements it.
type Observer interface {
	ObserveInboxObject(err error)
	ObserveStorageWrite(err error)
}

// InboxScheduler periodically converts documents dropped under a storage
// prefix into tables written under an output prefix.
type InboxScheduler struct {
	processor       *archive.Processor
	encoder         ingest.Encoder
	storage         storage.Backend
	observer        Observer
	prefix          string
	outputPrefix    string
	deleteProcessed bool
	describe        bool
	schedule        string

	cron    *cron.Cron
	running bool
	mu      sync.Mutex

	// passMu serializes passes so a slow pass never overlaps the next tick
	passMu sync.Mutex
	// failed remembers sources that could not be converted; they are not
	// retried until the process restarts or the object changes name
	failed   map[string]string
	lastPass *PassResult

	logger zerolog.Logger
}

// InboxSchedulerConfig holds configuration for the inbox scheduler
type InboxSchedulerConfig struct {
	Processor       *archive.Processor
	Encoder         ingest.Encoder
	Storage         storage.Backend
	Observer        Observer
	Prefix          string
	OutputPrefix    string
	DeleteProcessed bool
	DescribeCodes   bool
	Schedule        string // Cron schedule string (e.g., "*/5 * * * *")
	Logger          zerolog.Logger
}

// PassResult summarizes one inbox pass.
type PassResult struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Converted int           `json:"converted"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Rows      int           `json:"rows"`
}

// NewInboxScheduler creates a new inbox scheduler
func NewInboxScheduler(cfg *InboxSchedulerConfig) (*InboxScheduler, error) {
	schedule := cfg.Schedule
	if schedule == "" {
		schedule = defaultInboxSchedule
	}
	if _, err := cronParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid inbox schedule %q: %w", schedule, err)
	}
	if cfg.Processor == nil || cfg.Encoder == nil || cfg.Storage == nil {
		return nil, fmt.Errorf("inbox scheduler requires a processor, an encoder and a storage backend")
	}
	if cfg.Prefix == cfg.OutputPrefix {
		return nil, fmt.Errorf("inbox prefix and output prefix must differ")
	}

	s := &InboxScheduler{
		processor:       cfg.Processor,
		encoder:         cfg.Encoder,
		storage:         cfg.Storage,
		observer:        cfg.Observer,
		prefix:          cfg.Prefix,
		outputPrefix:    cfg.OutputPrefix,
		deleteProcessed: cfg.DeleteProcessed,
		describe:        cfg.DescribeCodes,
		schedule:        schedule,
		failed:          make(map[string]string),
		logger:          cfg.Logger.With().Str("component", "inbox-scheduler").Logger(),
	}

	s.logger.Info().
		Str("schedule", schedule).
		Str("prefix", cfg.Prefix).
		Str("output_prefix", cfg.OutputPrefix).
		Msg("Inbox scheduler initialized")

	return s, nil
}

// Start starts the inbox scheduler
func (s *InboxScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Warn().Msg("Inbox scheduler already running")
		return nil
	}

	s.cron = cron.New(cron.WithParser(cronParser))
	if _, err := s.cron.AddFunc(s.schedule, s.runScheduled); err != nil {
		return err
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", s.schedule).
		Time("next_run", s.nextRun()).
		Msg("Inbox scheduler started")

	return nil
}

// Stop stops the scheduler and waits for a running pass to finish
func (s *InboxScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}

	s.running = false
	s.logger.Info().Msg("Inbox scheduler stopped")
}

// Shutdown adapts Stop to the shutdown coordinator, giving up when ctx ends.
func (s *InboxScheduler) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *InboxScheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled inbox pass failed")
	}
}

// RunOnce converts every pending object under the inbox prefix. Objects
// whose output already exists, or that failed before, are skipped. A failing
// object never stops the pass; the error return is reserved for listing
// failures.
func (s *InboxScheduler) RunOnce(ctx context.Context) (*PassResult, error) {
	s.passMu.Lock()
	defer s.passMu.Unlock()

	result := &PassResult{StartedAt: time.Now()}
	defer func() {
		result.Duration = time.Since(result.StartedAt)
		s.mu.Lock()
		s.lastPass = result
		s.mu.Unlock()
	}()

	keys, err := s.storage.List(ctx, s.prefix)
	if err != nil {
		return result, fmt.Errorf("list inbox: %w", err)
	}

	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, failed := s.failed[key]; failed {
			result.Skipped++
			continue
		}

		outKey := storage.OutputKey(key, s.prefix, s.outputPrefix, s.encoder.Extension())
		if !s.deleteProcessed {
			exists, err := s.storage.Exists(ctx, outKey)
			if err != nil {
				s.logger.Warn().Err(err).Str("key", outKey).Msg("Could not check inbox output")
			} else if exists {
				result.Skipped++
				continue
			}
		}

		rows, err := s.convert(ctx, key, outKey)
		if s.observer != nil {
			s.observer.ObserveInboxObject(err)
		}
		if err != nil {
			result.Failed++
			s.failed[key] = err.Error()
			s.logger.Error().
				Err(err).
				Str("key", key).
				Str("outcome", ingest.Outcome(err)).
				Msg("Inbox object conversion failed")
			continue
		}
		result.Converted++
		result.Rows += rows
	}

	s.logger.Info().
		Int("converted", result.Converted).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int("rows", result.Rows).
		Dur("duration", time.Since(result.StartedAt)).
		Msg("Inbox pass completed")

	return result, nil
}

func (s *InboxScheduler) convert(ctx context.Context, key, outKey string) (int, error) {
	data, err := s.storage.Read(ctx, key)
	if err != nil {
		return 0, err
	}

	batch, err := s.processor.Process(ctx, data, "")
	if err != nil {
		return 0, err
	}
	if s.describe {
		catalog.Describe(batch.Table)
	}

	var buf bytes.Buffer
	if err := s.encoder.Encode(&buf, batch.Table); err != nil {
		return 0, fmt.Errorf("encode: %w", err)
	}

	err = s.storage.Write(ctx, outKey, buf.Bytes())
	if s.observer != nil {
		s.observer.ObserveStorageWrite(err)
	}
	if err != nil {
		return 0, err
	}

	if s.deleteProcessed {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("Failed to delete processed inbox object")
		}
	}

	s.logger.Debug().
		Str("key", key).
		Str("output", outKey).
		Int("documents", len(batch.Documents)).
		Int("rows", batch.Table.Len()).
		Msg("Inbox object converted")

	return batch.Table.Len(), nil
}

func (s *InboxScheduler) nextRun() time.Time {
	schedule, err := cronParser.Parse(s.schedule)
	if err != nil {
		return time.Time{}
	}
	return schedule.Next(time.Now())
}

// Status returns scheduler status
func (s *InboxScheduler) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := map[string]interface{}{
		"running":       s.running,
		"schedule":      s.schedule,
		"prefix":        s.prefix,
		"output_prefix": s.outputPrefix,
	}
	if s.running {
		status["next_run"] = s.nextRun().Format(time.RFC3339)
	}
	if s.lastPass != nil {
		status["last_pass"] = *s.lastPass
	}
	return status
}

// IsRunning returns whether the scheduler is running
func (s *InboxScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
