package ingest

import (
	"bytes"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/rs/zerolog"

	"github.com/basekick-labs/gridtab/internal/config"
	"github.com/basekick-labs/gridtab/pkg/models"
)

// sharedArrowAllocator is a package-level shared allocator for Arrow operations.
// memory.GoAllocator is documented as thread-safe for concurrent use.
var sharedArrowAllocator = memory.NewGoAllocator()

// ArrowWriter converts tables to Arrow records and writes them as Parquet
// files or Arrow IPC streams. The time column is timestamp[us, UTC]; every
// other column is a nullable string since document values are untyped text.
type ArrowWriter struct {
	compression     compress.Compression
	useDictionary   bool
	writeStatistics bool
	dataPageVersion string

	logger zerolog.Logger
}

// NewArrowWriter creates a writer from the output configuration.
func NewArrowWriter(cfg *config.OutputConfig, logger zerolog.Logger) *ArrowWriter {
	var comp compress.Compression
	switch cfg.Compression {
	case "gzip":
		comp = compress.Codecs.Gzip
	case "zstd":
		comp = compress.Codecs.Zstd
	default:
		comp = compress.Codecs.Snappy
	}

	return &ArrowWriter{
		compression:     comp,
		useDictionary:   cfg.UseDictionary,
		writeStatistics: cfg.WriteStatistics,
		dataPageVersion: cfg.DataPageVersion,
		logger:          logger.With().Str("component", "arrow-writer").Logger(),
	}
}

// Schema returns the Arrow schema of a table.
func Schema(tbl *models.Table) *arrow.Schema {
	fields := make([]arrow.Field, len(tbl.Columns))
	for i, name := range tbl.Columns {
		if name == models.TimeColumn {
			fields[i] = arrow.Field{Name: name, Type: arrow.FixedWidthTypes.Timestamp_us, Nullable: true}
			continue
		}
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// buildRecord fills one record batch with every row of the table. Missing
// values become nulls.
func buildRecord(tbl *models.Table) arrow.Record {
	schema := Schema(tbl)
	b := array.NewRecordBuilder(sharedArrowAllocator, schema)
	defer b.Release()

	n := len(tbl.Rows)
	for i, name := range tbl.Columns {
		if name == models.TimeColumn {
			tb := b.Field(i).(*array.TimestampBuilder)
			tb.Reserve(n)
			for _, r := range tbl.Rows {
				if !r.HasTime {
					tb.AppendNull()
					continue
				}
				tb.Append(arrow.Timestamp(r.Time.UnixMicro()))
			}
			continue
		}

		vals := make([]string, n)
		valid := make([]bool, n)
		for j, r := range tbl.Rows {
			vals[j], valid[j] = r.Fields[name]
		}
		b.Field(i).(*array.StringBuilder).AppendValues(vals, valid)
	}
	return b.NewRecord()
}

// WriteParquet encodes a table as a Parquet file.
func (w *ArrowWriter) WriteParquet(tbl *models.Table) ([]byte, error) {
	record := buildRecord(tbl)
	defer record.Release()

	var buf bytes.Buffer

	writerOpts := []parquet.WriterProperty{
		parquet.WithCompression(w.compression),
		parquet.WithDictionaryDefault(w.useDictionary),
		parquet.WithStats(w.writeStatistics),
	}
	if w.dataPageVersion == "2.0" {
		writerOpts = append(writerOpts, parquet.WithDataPageVersion(parquet.DataPageV2))
	}
	writerProps := parquet.NewWriterProperties(writerOpts...)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(record.Schema(), &buf, writerProps, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("failed to create Parquet writer: %w", err)
	}
	if err := writer.Write(record); err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write record batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close Parquet writer: %w", err)
	}

	w.logger.Debug().
		Int("columns", len(tbl.Columns)).
		Int64("rows", record.NumRows()).
		Int("size", buf.Len()).
		Msg("Wrote Parquet file")

	return buf.Bytes(), nil
}

// WriteIPC encodes a table as an Arrow IPC stream.
func (w *ArrowWriter) WriteIPC(out io.Writer, tbl *models.Table) error {
	record := buildRecord(tbl)
	defer record.Release()

	ipcWriter := ipc.NewWriter(out, ipc.WithSchema(record.Schema()), ipc.WithAllocator(sharedArrowAllocator))
	if err := ipcWriter.Write(record); err != nil {
		ipcWriter.Close()
		return fmt.Errorf("failed to write Arrow batch: %w", err)
	}
	if err := ipcWriter.Close(); err != nil {
		return fmt.Errorf("failed to close Arrow stream: %w", err)
	}
	return nil
}
