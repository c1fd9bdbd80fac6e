package ingest

import (
	"slices"
	"sort"
)

// Kind selects the flattening algorithm of a Strategy.
type Kind int

const (
	// KindStandard walks series -> period -> point.
	KindStandard Kind = iota
	// KindFinancialPrice is standard, with direction-tagged price entries under
	// each point expanded into one column per direction and field.
	KindFinancialPrice
	// KindMasterRecord folds each series into a single untimed row.
	KindMasterRecord
	// KindOutage reads the interval and points from Available_Period and folds
	// affected resources and reasons separately.
	KindOutage
	// KindFlowBased pivots the PTDF domain list of every constraint series into
	// columns, one sub-row per constraint series.
	KindFlowBased
)

func (k Kind) String() string {
	switch k {
	case KindStandard:
		return "standard"
	case KindFinancialPrice:
		return "financial_price"
	case KindMasterRecord:
		return "master_record"
	case KindOutage:
		return "outage"
	case KindFlowBased:
		return "flow_based"
	default:
		return "unknown"
	}
}

// Strategy is the shape description of one document family. Strategies are
// values; the Kind switch in apply is the only dispatch.
type Strategy struct {
	Name          string
	Kind          Kind
	SeriesTag     string
	PeriodTag     string
	PointTag      string
	IntervalTag   string
	ResolutionTag string
	// ExpandTag names the repeated child of a point that becomes sub-columns
	// (financial price) or sub-rows (flow-based constraint series).
	ExpandTag string
	// SeriesExclude lists series children folded separately or not at all.
	SeriesExclude []string
}

func standardShape(name string, kind Kind) Strategy {
	return Strategy{
		Name:          name,
		Kind:          kind,
		SeriesTag:     "TimeSeries",
		PeriodTag:     "Period",
		PointTag:      "Point",
		IntervalTag:   "timeInterval",
		ResolutionTag: "resolution",
	}
}

var (
	strategyStandard       = standardShape("standard", KindStandard)
	strategyFinancialPrice = func() Strategy {
		s := standardShape("financial_price", KindFinancialPrice)
		s.ExpandTag = "Financial_Price"
		return s
	}()
	strategyMasterRecord = Strategy{Name: "master_record", Kind: KindMasterRecord, SeriesTag: "TimeSeries"}
	strategyOutage       = func() Strategy {
		s := standardShape("outage", KindOutage)
		s.PeriodTag = "Available_Period"
		s.SeriesExclude = []string{"Available_Period", "Asset_RegisteredResource", "Reason"}
		return s
	}()
	strategyFlowBased = func() Strategy {
		s := standardShape("flow_based", KindFlowBased)
		s.ExpandTag = "Constraint_TimeSeries"
		return s
	}()
)

// DispatchEntry is one row of the dispatch table.
type DispatchEntry struct {
	RootTag   string   `json:"root_tag"`
	TypeCodes []string `json:"type_codes"`
	Strategy  string   `json:"strategy"`
	strategy  Strategy
}

var dispatchTable = []DispatchEntry{
	{RootTag: "GL_MarketDocument", TypeCodes: []string{"A65", "A70", "A71", "A72", "A73", "A68", "A69", "A74", "A75"}, strategy: strategyStandard},
	{RootTag: "TransmissionNetwork_MarketDocument", TypeCodes: []string{"A90", "A63", "A91", "A92"}, strategy: strategyStandard},
	{RootTag: "Publication_MarketDocument", TypeCodes: []string{"A61", "A31", "A93", "A25", "A26", "A44", "A09", "A11", "A94"}, strategy: strategyStandard},
	{RootTag: "Balancing_MarketDocument", TypeCodes: []string{"A81", "A82", "A83", "A84", "A85", "A86", "A88", "A89"}, strategy: strategyStandard},
	{RootTag: "Balancing_MarketDocument", TypeCodes: []string{"A87"}, strategy: strategyFinancialPrice},
	{RootTag: "Configuration_MarketDocument", TypeCodes: []string{"A95"}, strategy: strategyMasterRecord},
	{RootTag: "Unavailability_MarketDocument", TypeCodes: []string{"A76", "A77", "A78", "A79", "A80"}, strategy: strategyOutage},
	{RootTag: "CriticalNetworkElement_MarketDocument", TypeCodes: []string{"B11"}, strategy: strategyFlowBased},
}

type dispatchKey struct {
	root, code string
}

var dispatchIndex = func() map[dispatchKey]Strategy {
	m := make(map[dispatchKey]Strategy)
	for _, e := range dispatchTable {
		for _, code := range e.TypeCodes {
			m[dispatchKey{e.RootTag, code}] = e.strategy
		}
	}
	return m
}()

// Dispatch selects the strategy for a (root tag, document type code) pair.
func Dispatch(rootTag, typeCode string) (Strategy, error) {
	s, ok := dispatchIndex[dispatchKey{rootTag, typeCode}]
	if !ok {
		return Strategy{}, &UnsupportedDocumentTypeError{RootTag: rootTag, TypeCode: typeCode}
	}
	return s, nil
}

// DispatchTable returns a copy of the dispatch table, sorted by root tag.
func DispatchTable() []DispatchEntry {
	out := make([]DispatchEntry, len(dispatchTable))
	for i, e := range dispatchTable {
		e.TypeCodes = slices.Clone(e.TypeCodes)
		e.Strategy = e.strategy.Name
		out[i] = e
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].RootTag < out[j].RootTag })
	return out
}
