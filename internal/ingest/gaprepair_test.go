package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pt(pos int, kv ...string) Point {
	f := make(map[string]string)
	for i := 0; i+1 < len(kv); i += 2 {
		f[kv[i]] = kv[i+1]
	}
	return Point{Position: pos, Fields: f}
}

func positions(points []Point) []int {
	out := make([]int, len(points))
	for i, p := range points {
		out[i] = p.Position
	}
	return out
}

func TestRepairPointsIdempotent(t *testing.T) {
	in := []Point{pt(1, "quantity", "1"), pt(2, "quantity", "2"), pt(3, "quantity", "3")}
	out := RepairPoints(in, 3)
	assert.Equal(t, in, out)

	out[0].Fields["quantity"] = "changed"
	assert.Equal(t, "1", in[0].Fields["quantity"], "output must not share maps with input")
}

func TestRepairPointsCarriesForward(t *testing.T) {
	in := []Point{pt(4, "quantity", "40"), pt(1, "quantity", "10")}
	out := RepairPoints(in, 4)

	require.Equal(t, []int{1, 2, 3, 4}, positions(out))
	assert.Equal(t, "10", out[1].Fields["quantity"])
	assert.Equal(t, "10", out[2].Fields["quantity"])
	assert.Equal(t, "40", out[3].Fields["quantity"])
	assert.Equal(t, 4, in[0].Position, "input order is untouched")
}

func TestRepairPointsPadsToExpected(t *testing.T) {
	out := RepairPoints([]Point{pt(1, "quantity", "11")}, 5)

	require.Equal(t, []int{1, 2, 3, 4, 5}, positions(out))
	for _, p := range out {
		assert.Equal(t, map[string]string{"quantity": "11"}, p.Fields)
	}
}

func TestRepairPointsMissingFirstPositionIsAbsent(t *testing.T) {
	out := RepairPoints([]Point{pt(3, "quantity", "30")}, 4)

	require.Equal(t, []int{1, 2, 3, 4}, positions(out))
	assert.Nil(t, out[0].Fields)
	assert.Nil(t, out[1].Fields)
	assert.Equal(t, "30", out[2].Fields["quantity"])
	assert.Equal(t, "30", out[3].Fields["quantity"])
}

func TestRepairPointsLongerInputUntouched(t *testing.T) {
	in := []Point{pt(2), pt(1), pt(3)}
	out := RepairPoints(in, 2)
	assert.Equal(t, []int{1, 2, 3}, positions(out))
}

func TestRepairPointsEmpty(t *testing.T) {
	out := RepairPoints(nil, 2)
	require.Equal(t, []int{1, 2}, positions(out))
	assert.Nil(t, out[0].Fields)
}

func TestRepairPointsClonesExpanded(t *testing.T) {
	in := []Point{{Position: 1, Fields: map[string]string{}, Expanded: []map[string]string{{"x": "1"}}}}
	out := RepairPoints(in, 2)
	require.Len(t, out, 2)
	out[1].Expanded[0]["x"] = "2"
	assert.Equal(t, "1", out[0].Expanded[0]["x"])
	assert.Equal(t, "1", in[0].Expanded[0]["x"])
}
