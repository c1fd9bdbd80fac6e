package ingest

import (
	"maps"
	"strconv"
	"time"

	"github.com/basekick-labs/gridtab/pkg/models"
)

// PositionColumn carries the 1-based point position of every row.
const PositionColumn = "position"

// AssembleRows pairs index[i] with points[i] and merges meta onto every row as
// constant columns. Points and index must have equal length. A point with
// Expanded sub-rows yields one row per sub-row at the same timestamp.
func AssembleRows(index []time.Time, points []Point, meta MetadataMap) ([]models.Row, error) {
	if len(index) != len(points) {
		return nil, &LengthMismatchError{Index: len(index), Points: len(points)}
	}

	rows := make([]models.Row, 0, len(points))
	for i, p := range points {
		base := make(map[string]string, len(meta)+len(p.Fields)+1)
		maps.Copy(base, meta)
		if err := mergeFields(base, p.Fields); err != nil {
			return nil, err
		}
		if err := mergeFields(base, map[string]string{PositionColumn: strconv.Itoa(p.Position)}); err != nil {
			return nil, err
		}

		if len(p.Expanded) == 0 {
			rows = append(rows, models.Row{Time: index[i], HasTime: true, Fields: base})
			continue
		}
		for _, sub := range p.Expanded {
			fields := make(map[string]string, len(base)+len(sub))
			maps.Copy(fields, base)
			if err := mergeFields(fields, sub); err != nil {
				return nil, err
			}
			rows = append(rows, models.Row{Time: index[i], HasTime: true, Fields: fields})
		}
	}
	return rows, nil
}

func mergeFields(dst, src map[string]string) error {
	for k, v := range src {
		if _, ok := dst[k]; ok {
			return &MetadataCollisionError{Path: k}
		}
		dst[k] = v
	}
	return nil
}
