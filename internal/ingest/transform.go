package ingest

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/basekick-labs/gridtab/pkg/models"
)

// AcknowledgementTag is the root tag of the documents the publishing API returns
// instead of data.
const AcknowledgementTag = "Acknowledgement_MarketDocument"

// Result is the outcome of transforming one document. RootTag and TypeCode are
// set whenever the document parsed, even if the transform failed.
type Result struct {
	RootTag  string
	TypeCode string
	Strategy string
	Table    *models.Table
}

// Transformer converts documents into tables. It holds no per-document state and
// is safe for concurrent use.
type Transformer struct {
	logger zerolog.Logger
}

// NewTransformer creates a transformer that logs through logger.
func NewTransformer(logger zerolog.Logger) *Transformer {
	return &Transformer{logger: logger.With().Str("component", "transformer").Logger()}
}

// Transform parses data, dispatches on its root tag and "type" child, and
// flattens it into a table.
func (t *Transformer) Transform(data []byte) (*models.Table, error) {
	res, err := t.TransformDocument(data)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// TransformAs transforms data with a caller-declared (root tag, type code) pair.
// A document whose root tag differs from rootTag is malformed.
func (t *Transformer) TransformAs(data []byte, rootTag, typeCode string) (*models.Table, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	if doc.Tag != rootTag {
		return nil, malformed("root tag %s does not match declared %s", doc.Tag, rootTag)
	}
	s, err := Dispatch(rootTag, typeCode)
	if err != nil {
		return nil, err
	}
	res, err := t.run(doc, typeCode, s)
	if err != nil {
		return nil, err
	}
	return res.Table, nil
}

// TransformDocument is Transform with the dispatch details attached.
func (t *Transformer) TransformDocument(data []byte) (*Result, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	res := &Result{RootTag: doc.Tag, TypeCode: doc.TextAt("type")}

	if doc.Tag == AcknowledgementTag {
		return res, &AcknowledgementError{
			Code: doc.TextAt("Reason", "code"),
			Text: doc.TextAt("Reason", "text"),
		}
	}

	s, err := Dispatch(res.RootTag, res.TypeCode)
	if err != nil {
		return res, err
	}
	out, err := t.run(doc, res.TypeCode, s)
	if err != nil {
		return res, err
	}
	return out, nil
}

func (t *Transformer) run(doc *Node, typeCode string, s Strategy) (*Result, error) {
	res := &Result{RootTag: doc.Tag, TypeCode: typeCode, Strategy: s.Name}
	rows, err := s.apply(doc)
	if err != nil {
		return res, err
	}
	res.Table = models.NewTable(rows)

	if steps := distinctSteps(res.Table); len(steps) > 1 {
		t.logger.Warn().
			Str("root_tag", res.RootTag).
			Str("type", typeCode).
			Interface("steps", steps).
			Msg("Table mixes several time steps")
	}
	t.logger.Debug().
		Str("root_tag", res.RootTag).
		Str("type", typeCode).
		Str("strategy", s.Name).
		Int("rows", res.Table.Len()).
		Msg("Document transformed")
	return res, nil
}

// Month and year steps vary in length and are counted as one kind.
const calendarStep = 28 * 24 * time.Hour

// distinctSteps counts the positive deltas between consecutive timed rows.
// Zero deltas (sub-rows sharing a timestamp) and negative deltas (a new series
// restarting its index) are ignored.
func distinctSteps(t *models.Table) map[string]int {
	steps := make(map[string]int)
	var prev time.Time
	havePrev := false
	for _, r := range t.Rows {
		if !r.HasTime {
			continue
		}
		if havePrev {
			switch d := r.Time.Sub(prev); {
			case d >= calendarStep:
				steps["calendar"]++
			case d > 0:
				steps[d.String()]++
			}
		}
		prev, havePrev = r.Time, true
	}
	return steps
}
