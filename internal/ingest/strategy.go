package ingest

import (
	"errors"
	"fmt"

	"github.com/basekick-labs/gridtab/pkg/models"
)

// apply flattens a parsed document according to the strategy kind.
func (s Strategy) apply(doc *Node) ([]models.Row, error) {
	switch s.Kind {
	case KindMasterRecord:
		return s.masterRecords(doc)
	case KindStandard, KindFinancialPrice, KindOutage, KindFlowBased:
		return s.timeSeries(doc)
	default:
		return nil, fmt.Errorf("strategy %s: unknown kind %d", s.Name, s.Kind)
	}
}

// timeSeries walks document -> series -> period -> point. Periods are flattened
// independently; every period error is collected and the document fails as a
// whole.
func (s Strategy) timeSeries(doc *Node) ([]models.Row, error) {
	docMeta, err := s.documentMetadata(doc)
	if err != nil {
		return nil, err
	}

	var (
		rows []models.Row
		errs []error
	)
	for i, series := range doc.ChildrenByTag(s.SeriesTag) {
		meta, err := s.seriesMetadata(series)
		if err == nil {
			err = meta.Merge(docMeta)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s %d: %w", s.SeriesTag, i+1, err))
			continue
		}

		periods := series.ChildrenByTag(s.PeriodTag)
		if len(periods) == 0 && s.Kind == KindOutage {
			errs = append(errs, fmt.Errorf("%s %d: %w", s.SeriesTag, i+1, malformed("missing %s", s.PeriodTag)))
			continue
		}
		for j, period := range periods {
			pr, err := s.periodRows(period, meta)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s %d %s %d: %w", s.SeriesTag, i+1, s.PeriodTag, j+1, err))
				continue
			}
			rows = append(rows, pr...)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return rows, nil
}

func (s Strategy) documentMetadata(doc *Node) (MetadataMap, error) {
	if s.Kind != KindOutage {
		meta, _, err := Decompose(doc, s.SeriesTag)
		return meta, err
	}
	meta, err := FoldMetadata(doc, s.SeriesTag, "Reason")
	if err != nil {
		return nil, err
	}
	if err := meta.Merge(reasonColumns(doc.Tag+".Reason", doc.ChildrenByTag("Reason"))); err != nil {
		return nil, err
	}
	return meta, nil
}

func (s Strategy) seriesMetadata(series *Node) (MetadataMap, error) {
	exclude := append([]string{s.PeriodTag}, s.SeriesExclude...)
	meta, err := FoldMetadata(series, exclude...)
	if err != nil {
		return nil, err
	}
	if s.Kind == KindOutage {
		resources, err := resourceColumns(series.Tag+".Asset_RegisteredResource", series.ChildrenByTag("Asset_RegisteredResource"))
		if err != nil {
			return nil, err
		}
		if err := meta.Merge(resources); err != nil {
			return nil, err
		}
		if err := meta.Merge(reasonColumns(series.Tag+".Reason", series.ChildrenByTag("Reason"))); err != nil {
			return nil, err
		}
	}
	return meta, nil
}

// periodRows builds the index of one period, repairs its points to the index
// length and assembles rows carrying meta plus the period's own metadata.
func (s Strategy) periodRows(period *Node, meta MetadataMap) ([]models.Row, error) {
	periodMeta, pointNodes, err := Decompose(period, s.PointTag)
	if err != nil {
		return nil, err
	}
	p, err := ParsePeriod(period.Child(s.IntervalTag), period.TextAt(s.ResolutionTag))
	if err != nil {
		return nil, err
	}
	index, err := BuildIndex(p)
	if err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(pointNodes))
	for _, n := range pointNodes {
		pt, err := s.parsePoint(n)
		if err != nil {
			return nil, err
		}
		points = append(points, pt)
	}

	all := meta.Clone()
	if err := all.Merge(periodMeta); err != nil {
		return nil, err
	}
	return AssembleRows(index, RepairPoints(points, len(index)), all)
}

// parsePoint reads the position and the un-prefixed fields of a point node.
func (s Strategy) parsePoint(n *Node) (Point, error) {
	pos, err := parsePosition(n.TextAt("position"))
	if err != nil {
		return Point{}, err
	}
	exclude := []string{"position"}
	if s.ExpandTag != "" {
		exclude = append(exclude, s.ExpandTag)
	}
	fields, err := FoldUnder("", n, exclude...)
	if err != nil {
		return Point{}, err
	}
	pt := Point{Position: pos, Fields: fields}

	switch s.Kind {
	case KindFinancialPrice:
		if err := expandFinancialPrices(pt.Fields, s.ExpandTag, n.ChildrenByTag(s.ExpandTag)); err != nil {
			return Point{}, err
		}
	case KindFlowBased:
		for _, cts := range n.ChildrenByTag(s.ExpandTag) {
			sub, err := constraintColumns(cts)
			if err != nil {
				return Point{}, err
			}
			pt.Expanded = append(pt.Expanded, sub)
		}
	}
	return pt, nil
}

// masterRecords emits one untimed row per series.
func (s Strategy) masterRecords(doc *Node) ([]models.Row, error) {
	docMeta, series, err := Decompose(doc, s.SeriesTag)
	if err != nil {
		return nil, err
	}
	rows := make([]models.Row, 0, len(series))
	for i, ts := range series {
		fields, err := FoldNode(ts)
		if err == nil {
			err = fields.Merge(docMeta)
		}
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", s.SeriesTag, i+1, err)
		}
		rows = append(rows, models.Row{Fields: fields})
	}
	return rows, nil
}
