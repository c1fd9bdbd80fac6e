package archive

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/basekick-labs/gridtab/internal/ingest"
	"github.com/basekick-labs/gridtab/pkg/models"
)

// Recorder observes every transformed document. outcome is "ok" or an error
// class.
type Recorder interface {
	ObserveDocument(rootTag, typeCode, outcome string, rows int, elapsed time.Duration)
}

// Options control one Process call. Single documents keep traversal order
// unless SortByTime is set.
type Options struct {
	// SortBundles stable-sorts the concatenated table of an archive by time.
	SortBundles bool
	// SortByTime stable-sorts any payload by time.
	SortByTime bool
}

func (o Options) sorts(kind Kind) bool {
	return o.SortByTime || (o.SortBundles && kind == KindArchive)
}

// DocumentSummary describes one transformed document of a batch.
type DocumentSummary struct {
	Name     string `json:"name"`
	RootTag  string `json:"root_tag"`
	TypeCode string `json:"type"`
	Strategy string `json:"strategy"`
	Rows     int    `json:"rows"`
}

// Batch is the result of processing one payload.
type Batch struct {
	Kind      Kind
	Table     *models.Table
	Documents []DocumentSummary
}

// Processor transforms single documents and bundles. Bundle members are
// transformed concurrently, bounded by workers, and concatenated in member
// order.
type Processor struct {
	transformer *ingest.Transformer
	workers     int
	maxSize     int64
	defaults    Options
	recorder    Recorder
	logger      zerolog.Logger
}

// NewProcessor creates a processor. recorder may be nil.
func NewProcessor(t *ingest.Transformer, workers int, maxSize int64, defaults Options, recorder Recorder, logger zerolog.Logger) *Processor {
	if workers < 1 {
		workers = 1
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Processor{
		transformer: t,
		workers:     workers,
		maxSize:     maxSize,
		defaults:    defaults,
		recorder:    recorder,
		logger:      logger.With().Str("component", "archive-processor").Logger(),
	}
}

// Process transforms data using the processor's default options. An empty
// contentType falls back to sniffing the payload.
func (p *Processor) Process(ctx context.Context, data []byte, contentType string) (*Batch, error) {
	return p.ProcessWithOptions(ctx, data, contentType, p.defaults)
}

// ProcessWithOptions is Process with explicit options.
func (p *Processor) ProcessWithOptions(ctx context.Context, data []byte, contentType string, opts Options) (*Batch, error) {
	data, err := Decompress(data, p.maxSize)
	if err != nil {
		return nil, err
	}

	kind := Sniff(data)
	if contentType != "" {
		if kind, err = KindOf(contentType); err != nil {
			return nil, err
		}
	}

	var members []Member
	if kind == KindArchive {
		if members, err = Unwrap(data, p.maxSize); err != nil {
			return nil, err
		}
	} else {
		members = []Member{{Name: "document", Data: data}}
	}

	batch, err := p.transformMembers(ctx, members)
	if err != nil {
		return nil, err
	}
	batch.Kind = kind
	if opts.sorts(kind) {
		batch.Table.SortByTime()
	}

	p.logger.Debug().
		Str("kind", kind.String()).
		Int("documents", len(batch.Documents)).
		Int("rows", batch.Table.Len()).
		Msg("Payload processed")
	return batch, nil
}

func (p *Processor) transformMembers(ctx context.Context, members []Member) (*Batch, error) {
	tables := make([]*models.Table, len(members))
	summaries := make([]DocumentSummary, len(members))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, m := range members {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, err := p.transformer.TransformDocument(m.Data)
			p.observe(res, err, time.Since(start))
			if err != nil {
				if len(members) == 1 {
					return err
				}
				return fmt.Errorf("member %s: %w", m.Name, err)
			}
			tables[i] = res.Table
			summaries[i] = DocumentSummary{
				Name:     m.Name,
				RootTag:  res.RootTag,
				TypeCode: res.TypeCode,
				Strategy: res.Strategy,
				Rows:     res.Table.Len(),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Batch{Table: models.Concat(tables...), Documents: summaries}, nil
}

func (p *Processor) observe(res *ingest.Result, err error, elapsed time.Duration) {
	if p.recorder == nil {
		return
	}
	var root, code string
	rows := 0
	if res != nil {
		root, code = res.RootTag, res.TypeCode
		rows = res.Table.Len()
	}
	p.recorder.ObserveDocument(root, code, ingest.Outcome(err), rows, elapsed)
}
