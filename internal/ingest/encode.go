package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/basekick-labs/gridtab/pkg/models"
)

// Output formats.
const (
	FormatJSON    = "json"
	FormatMsgPack = "msgpack"
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatArrow   = "arrow"
)

// Encoder serializes a table.
type Encoder interface {
	Encode(w io.Writer, tbl *models.Table) error
	ContentType() string
	Extension() string
}

// NewEncoder returns the encoder for format. Parquet and Arrow go through aw.
func NewEncoder(format string, aw *ArrowWriter) (Encoder, error) {
	switch format {
	case FormatJSON, "":
		return jsonEncoder{}, nil
	case FormatMsgPack:
		return msgpackEncoder{}, nil
	case FormatCSV:
		return csvEncoder{}, nil
	case FormatParquet:
		return parquetEncoder{aw: aw}, nil
	case FormatArrow:
		return arrowEncoder{aw: aw}, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// tablePayload is the row-oriented shape shared by the JSON and MessagePack
// encoders: the declared columns plus one object per row holding only the
// values that are present.
type tablePayload struct {
	Columns []string            `json:"columns" msgpack:"columns"`
	Rows    []map[string]string `json:"rows" msgpack:"rows"`
}

func toPayload(tbl *models.Table) tablePayload {
	rows := make([]map[string]string, len(tbl.Rows))
	for i, r := range tbl.Rows {
		m := make(map[string]string, len(r.Fields)+1)
		maps.Copy(m, r.Fields)
		if r.HasTime {
			m[models.TimeColumn] = r.Time.UTC().Format(time.RFC3339)
		}
		rows[i] = m
	}
	return tablePayload{Columns: tbl.Columns, Rows: rows}
}

type jsonEncoder struct{}

func (jsonEncoder) Encode(w io.Writer, tbl *models.Table) error {
	return json.NewEncoder(w).Encode(toPayload(tbl))
}
func (jsonEncoder) ContentType() string { return "application/json" }
func (jsonEncoder) Extension() string   { return ".json" }

type msgpackEncoder struct{}

func (msgpackEncoder) Encode(w io.Writer, tbl *models.Table) error {
	return msgpack.NewEncoder(w).Encode(toPayload(tbl))
}
func (msgpackEncoder) ContentType() string { return "application/msgpack" }
func (msgpackEncoder) Extension() string   { return ".msgpack" }

// csvEncoder writes a header row followed by one record per row. Absent values
// are empty cells.
type csvEncoder struct{}

func (csvEncoder) Encode(w io.Writer, tbl *models.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tbl.Columns); err != nil {
		return err
	}
	record := make([]string, len(tbl.Columns))
	for i := range tbl.Rows {
		for j, col := range tbl.Columns {
			record[j], _ = tbl.Value(i, col)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
func (csvEncoder) ContentType() string { return "text/csv" }
func (csvEncoder) Extension() string   { return ".csv" }

type parquetEncoder struct{ aw *ArrowWriter }

func (e parquetEncoder) Encode(w io.Writer, tbl *models.Table) error {
	data, err := e.aw.WriteParquet(tbl)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
func (parquetEncoder) ContentType() string { return "application/vnd.apache.parquet" }
func (parquetEncoder) Extension() string   { return ".parquet" }

type arrowEncoder struct{ aw *ArrowWriter }

func (e arrowEncoder) Encode(w io.Writer, tbl *models.Table) error {
	return e.aw.WriteIPC(w, tbl)
}
func (arrowEncoder) ContentType() string { return "application/vnd.apache.arrow.stream" }
func (arrowEncoder) Extension() string   { return ".arrows" }
