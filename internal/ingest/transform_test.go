package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basekick-labs/gridtab/pkg/models"
)

const loadDocument = `<?xml version="1.0" encoding="UTF-8"?>
<GL_MarketDocument xmlns="urn:iec62325.351:tc57wg16:451-6:generationloaddocument:3:0">
	<mRID>doc-1</mRID>
	<type>A65</type>
	<process.processType>A16</process.processType>
	<TimeSeries>
		<mRID>1</mRID>
		<businessType>A04</businessType>
		<outBiddingZone_Domain.mRID>10YCZ-CEPS-----N</outBiddingZone_Domain.mRID>
		<Period>
			<timeInterval>
				<start>2018-02-28T23:45Z</start>
				<end>2018-03-01T01:00Z</end>
			</timeInterval>
			<resolution>PT15M</resolution>
			<Point>
				<position>1</position>
				<quantity>11</quantity>
			</Point>
		</Period>
	</TimeSeries>
</GL_MarketDocument>`

func newTestTransformer() *Transformer {
	return NewTransformer(zerolog.Nop())
}

func column(t *testing.T, tbl *models.Table, name string) []string {
	t.Helper()
	out := make([]string, tbl.Len())
	for i := range tbl.Rows {
		v, _ := tbl.Value(i, name)
		out[i] = v
	}
	return out
}

func TestTransformQuarterHourCarryForward(t *testing.T) {
	tbl, err := newTestTransformer().Transform([]byte(loadDocument))
	require.NoError(t, err)
	require.Equal(t, 5, tbl.Len())

	assert.Equal(t, []string{
		"2018-02-28T23:45:00Z",
		"2018-03-01T00:00:00Z",
		"2018-03-01T00:15:00Z",
		"2018-03-01T00:30:00Z",
		"2018-03-01T00:45:00Z",
	}, column(t, tbl, "time"))
	assert.Equal(t, []string{"11", "11", "11", "11", "11"}, column(t, tbl, "quantity"))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, column(t, tbl, "position"))

	assert.Equal(t, "time", tbl.Columns[0])
	assert.Contains(t, tbl.Columns, "GL_MarketDocument.mRID")
	assert.Contains(t, tbl.Columns, "GL_MarketDocument.process.processType")
	assert.Contains(t, tbl.Columns, "TimeSeries.businessType")
	assert.Contains(t, tbl.Columns, "TimeSeries.outBiddingZone_Domain.mRID")
	assert.Contains(t, tbl.Columns, "Period.resolution")
	assert.Contains(t, tbl.Columns, "Period.timeInterval.start")
	assert.Equal(t, []string{"A04", "A04", "A04", "A04", "A04"}, column(t, tbl, "TimeSeries.businessType"))
}

func TestTransformPriceWithoutQuantity(t *testing.T) {
	doc := `<Publication_MarketDocument>
	<type>A44</type>
	<TimeSeries>
		<currency_Unit.name>EUR</currency_Unit.name>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T03:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point><position>1</position><price.amount>11</price.amount></Point>
		</Period>
	</TimeSeries>
</Publication_MarketDocument>`

	tbl, err := newTestTransformer().Transform([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 3, tbl.Len())
	assert.Equal(t, []string{"11", "11", "11"}, column(t, tbl, "price.amount"))
	assert.NotContains(t, tbl.Columns, "quantity")
	for _, r := range tbl.Rows {
		_, ok := r.Fields["quantity"]
		assert.False(t, ok)
	}
}

func TestTransformNestedPointField(t *testing.T) {
	doc := `<Publication_MarketDocument>
	<type>A44</type>
	<TimeSeries>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T02:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point><position>1</position><price><amount>3.5</amount></price></Point>
			<Point><position>2</position><price><amount>4.5</amount></price></Point>
		</Period>
	</TimeSeries>
</Publication_MarketDocument>`

	tbl, err := newTestTransformer().Transform([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"3.5", "4.5"}, column(t, tbl, "price.amount"))
}

func TestTransformMultipleSeriesKeepTraversalOrder(t *testing.T) {
	doc := `<GL_MarketDocument>
	<type>A75</type>
	<TimeSeries>
		<MktPSRType><psrType>B16</psrType></MktPSRType>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T02:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point><position>1</position><quantity>1</quantity></Point>
			<Point><position>2</position><quantity>2</quantity></Point>
		</Period>
	</TimeSeries>
	<TimeSeries>
		<MktPSRType><psrType>B19</psrType></MktPSRType>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T02:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point><position>1</position><quantity>3</quantity></Point>
			<Point><position>2</position><quantity>4</quantity></Point>
		</Period>
	</TimeSeries>
</GL_MarketDocument>`

	tbl, err := newTestTransformer().Transform([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, column(t, tbl, "quantity"))
	assert.Equal(t, []string{"B16", "B16", "B19", "B19"}, column(t, tbl, "TimeSeries.MktPSRType.psrType"))
}

func TestTransformFinancialPrice(t *testing.T) {
	doc := `<Balancing_MarketDocument>
	<type>A87</type>
	<TimeSeries>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T02:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point>
				<position>1</position>
				<Financial_Price><amount>1.5</amount><direction>A01</direction></Financial_Price>
				<Financial_Price><amount>2.5</amount><direction>A02</direction></Financial_Price>
			</Point>
			<Point>
				<position>2</position>
				<Financial_Price><amount>3.5</amount><direction>A03</direction></Financial_Price>
				<Financial_Price><amount>4.5</amount><direction>Z99</direction></Financial_Price>
			</Point>
		</Period>
	</TimeSeries>
</Balancing_MarketDocument>`

	tbl, err := newTestTransformer().Transform([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, "1.5", tbl.Rows[0].Fields["Financial_Price.up.amount"])
	assert.Equal(t, "2.5", tbl.Rows[0].Fields["Financial_Price.down.amount"])
	assert.Equal(t, "3.5", tbl.Rows[1].Fields["Financial_Price.up_and_down.amount"])
	assert.Equal(t, "4.5", tbl.Rows[1].Fields["Financial_Price.Z99.amount"])
	assert.NotContains(t, tbl.Columns, "Financial_Price.direction")
}

func TestTransformFinancialPriceDuplicateDirection(t *testing.T) {
	doc := `<Balancing_MarketDocument>
	<type>A87</type>
	<TimeSeries>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T01:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point>
				<position>1</position>
				<Financial_Price><amount>1</amount><direction>A01</direction></Financial_Price>
				<Financial_Price><amount>2</amount><direction>A01</direction></Financial_Price>
			</Point>
		</Period>
	</TimeSeries>
</Balancing_MarketDocument>`

	_, err := newTestTransformer().Transform([]byte(doc))
	assert.ErrorIs(t, err, ErrMetadataCollision)
}

func TestTransformMasterRecord(t *testing.T) {
	doc := `<Configuration_MarketDocument>
	<mRID>cfg</mRID>
	<type>A95</type>
	<TimeSeries>
		<mRID>1</mRID>
		<businessType>B11</businessType>
		<RegisteredResource><mRID>res-1</mRID><name>Unit 1</name></RegisteredResource>
	</TimeSeries>
	<TimeSeries>
		<mRID>2</mRID>
		<businessType>B11</businessType>
		<RegisteredResource><mRID>res-2</mRID><name>Unit 2</name></RegisteredResource>
	</TimeSeries>
</Configuration_MarketDocument>`

	tbl, err := newTestTransformer().Transform([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	assert.NotContains(t, tbl.Columns, "time")
	assert.False(t, tbl.Rows[0].HasTime)
	assert.Equal(t, "res-2", tbl.Rows[1].Fields["TimeSeries.RegisteredResource.mRID"])
	assert.Equal(t, "cfg", tbl.Rows[1].Fields["Configuration_MarketDocument.mRID"])
}

const outageDocument = `<Unavailability_MarketDocument>
	<mRID>out-1</mRID>
	<type>A80</type>
	<TimeSeries>
		<mRID>1</mRID>
		<businessType>A53</businessType>
		<Asset_RegisteredResource>
			<mRID>A</mRID>
			<name>Line A</name>
		</Asset_RegisteredResource>
		<Asset_RegisteredResource>
			<mRID>B</mRID>
		</Asset_RegisteredResource>
		<Available_Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-03T00:00Z</end></timeInterval>
			<resolution>P1D</resolution>
			<Point><position>1</position><quantity>0</quantity></Point>
		</Available_Period>
		<Reason><code>B18</code></Reason>
	</TimeSeries>
	<Reason><code>A95</code><text>  </text></Reason>
</Unavailability_MarketDocument>`

func TestTransformOutage(t *testing.T) {
	tbl, err := newTestTransformer().Transform([]byte(outageDocument))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	r := tbl.Rows[1].Fields
	assert.Equal(t, "0", r["quantity"])
	assert.Equal(t, "A,B", r["TimeSeries.Asset_RegisteredResource.mRID"])
	assert.Equal(t, "Line A,", r["TimeSeries.Asset_RegisteredResource.name"])
	assert.Equal(t, "B18", r["TimeSeries.Reason.code"])
	assert.Equal(t, "", r["TimeSeries.Reason.text"])
	assert.Equal(t, "A95", r["Unavailability_MarketDocument.Reason.code"])
	assert.Equal(t, "", r["Unavailability_MarketDocument.Reason.text"])
	assert.Equal(t, "2024-01-01T00:00Z", r["Available_Period.timeInterval.start"])
	assert.Equal(t, "A53", r["TimeSeries.businessType"])
}

func TestTransformOutageWithoutResources(t *testing.T) {
	doc := `<Unavailability_MarketDocument>
	<type>A77</type>
	<TimeSeries>
		<Available_Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T00:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point><position>1</position><quantity>5</quantity></Point>
		</Available_Period>
	</TimeSeries>
</Unavailability_MarketDocument>`

	tbl, err := newTestTransformer().Transform([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	for _, c := range tbl.Columns {
		assert.NotContains(t, c, "Asset_RegisteredResource")
		assert.NotContains(t, c, "Reason")
	}
}

func TestTransformOutageMissingAvailablePeriod(t *testing.T) {
	doc := `<Unavailability_MarketDocument><type>A77</type><TimeSeries><mRID>1</mRID></TimeSeries></Unavailability_MarketDocument>`
	_, err := newTestTransformer().Transform([]byte(doc))
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestTransformFlowBased(t *testing.T) {
	doc := `<CriticalNetworkElement_MarketDocument>
	<type>B11</type>
	<TimeSeries>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T02:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point>
				<position>1</position>
				<Constraint_TimeSeries>
					<mRID>c1</mRID>
					<Monitored_RegisteredResource>
						<mRID>line-1</mRID>
						<flowBasedStudy_Domain.flowBasedMargin_Quantity.quantity>100</flowBasedStudy_Domain.flowBasedMargin_Quantity.quantity>
						<PTDF_Domain><mRID>10YBE----------2</mRID><pTDF_Quantity.quantity>0.1</pTDF_Quantity.quantity></PTDF_Domain>
						<PTDF_Domain><mRID>10YFR-RTE------C</mRID><pTDF_Quantity.quantity>0.2</pTDF_Quantity.quantity></PTDF_Domain>
					</Monitored_RegisteredResource>
				</Constraint_TimeSeries>
				<Constraint_TimeSeries>
					<mRID>c2</mRID>
					<Monitored_RegisteredResource>
						<mRID>line-2</mRID>
						<PTDF_Domain><mRID>10YBE----------2</mRID><pTDF_Quantity.quantity>0.3</pTDF_Quantity.quantity></PTDF_Domain>
					</Monitored_RegisteredResource>
				</Constraint_TimeSeries>
			</Point>
		</Period>
	</TimeSeries>
</CriticalNetworkElement_MarketDocument>`

	tbl, err := newTestTransformer().Transform([]byte(doc))
	require.NoError(t, err)

	// Point 2 is carried forward from point 1, two constraint rows each.
	require.Equal(t, 4, tbl.Len())
	assert.Equal(t, tbl.Rows[0].Time, tbl.Rows[1].Time)
	assert.Equal(t, tbl.Rows[0].Time.Add(time.Hour), tbl.Rows[2].Time)

	first := tbl.Rows[0].Fields
	assert.Equal(t, "0.1", first["10YBE----------2"])
	assert.Equal(t, "0.2", first["10YFR-RTE------C"])
	assert.Equal(t, "c1", first["Constraint_TimeSeries.mRID"])
	assert.Equal(t, "line-1", first["Monitored_RegisteredResource.mRID"])
	assert.Equal(t, "100", first["Monitored_RegisteredResource.flowBasedStudy_Domain.flowBasedMargin_Quantity.quantity"])

	second := tbl.Rows[1].Fields
	assert.Equal(t, "0.3", second["10YBE----------2"])
	_, ok := second["10YFR-RTE------C"]
	assert.False(t, ok)
	assert.Equal(t, "2", tbl.Rows[3].Fields["position"])
}

func TestTransformAcknowledgement(t *testing.T) {
	doc := `<Acknowledgement_MarketDocument>
	<mRID>ack</mRID>
	<Reason><code>999</code><text>No matching data found</text></Reason>
</Acknowledgement_MarketDocument>`

	_, err := newTestTransformer().Transform([]byte(doc))
	var ack *AcknowledgementError
	require.ErrorAs(t, err, &ack)
	assert.Equal(t, "999", ack.Code)
	assert.Equal(t, "No matching data found", ack.Text)
}

func TestTransformUnsupported(t *testing.T) {
	_, err := newTestTransformer().Transform([]byte(`<GL_MarketDocument><type>Z01</type></GL_MarketDocument>`))
	assert.ErrorIs(t, err, ErrUnsupportedDocumentType)

	res, err := newTestTransformer().TransformDocument([]byte(`<Foo_MarketDocument><type>A01</type></Foo_MarketDocument>`))
	assert.ErrorIs(t, err, ErrUnsupportedDocumentType)
	require.NotNil(t, res)
	assert.Equal(t, "Foo_MarketDocument", res.RootTag)
	assert.Equal(t, "A01", res.TypeCode)
}

func TestTransformJoinsPeriodErrors(t *testing.T) {
	doc := `<GL_MarketDocument>
	<type>A65</type>
	<TimeSeries>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T01:00Z</end></timeInterval>
			<resolution>PT5M</resolution>
			<Point><position>1</position><quantity>1</quantity></Point>
		</Period>
		<Period>
			<timeInterval><start>2024-01-01T00:00Z</start><end>2024-01-01T02:00Z</end></timeInterval>
			<resolution>PT60M</resolution>
			<Point><position>1</position><quantity>1</quantity></Point>
			<Point><position>2</position><quantity>2</quantity></Point>
			<Point><position>3</position><quantity>3</quantity></Point>
		</Period>
	</TimeSeries>
</GL_MarketDocument>`

	tbl, err := newTestTransformer().Transform([]byte(doc))
	require.Error(t, err)
	assert.Nil(t, tbl, "no partial tables")
	assert.ErrorIs(t, err, ErrInvalidResolution)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestTransformAs(t *testing.T) {
	tr := newTestTransformer()

	tbl, err := tr.TransformAs([]byte(loadDocument), "GL_MarketDocument", "A65")
	require.NoError(t, err)
	assert.Equal(t, 5, tbl.Len())

	_, err = tr.TransformAs([]byte(loadDocument), "Publication_MarketDocument", "A44")
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = tr.TransformAs([]byte(loadDocument), "GL_MarketDocument", "B11")
	assert.ErrorIs(t, err, ErrUnsupportedDocumentType)
}

func TestTransformMalformedIsNotOtherKinds(t *testing.T) {
	_, err := newTestTransformer().Transform([]byte("<a>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedDocument))
	assert.False(t, errors.Is(err, ErrUnsupportedDocumentType))
}

func TestDistinctSteps(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tbl := models.NewTable([]models.Row{
		{Time: base, HasTime: true},
		{Time: base, HasTime: true},
		{Time: base.Add(15 * time.Minute), HasTime: true},
		{Time: base.Add(75 * time.Minute), HasTime: true},
		{Time: base, HasTime: true},
	})
	steps := distinctSteps(tbl)
	assert.Equal(t, map[string]int{"15m0s": 1, "1h0m0s": 1}, steps)
}
