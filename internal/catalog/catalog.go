// Package catalog maps ENTSO-E code values to their human readable meaning.
// Lookups never fail on unknown codes; the catalog is purely descriptive and
// the transformation engine does not depend on it.
package catalog

import (
	"sort"
	"strings"

	"github.com/basekick-labs/gridtab/pkg/models"
)

// Category names a code list.
type Category string

const (
	DocumentType        Category = "document_type"
	BusinessType        Category = "business_type"
	ProcessType         Category = "process_type"
	DocStatus           Category = "doc_status"
	PsrType             Category = "psr_type"
	MarketAgreementType Category = "market_agreement_type"
	AuctionCategory     Category = "auction_category"
	Direction           Category = "direction"
	CurveType           Category = "curve_type"
	Area                Category = "area"
)

// MeaningSuffix is appended to a column name to form its description column.
const MeaningSuffix = ".meaning"

var tables = map[Category]map[string]string{
	DocumentType:        documentTypes,
	BusinessType:        businessTypes,
	ProcessType:         processTypes,
	DocStatus:           docStatuses,
	PsrType:             psrTypes,
	MarketAgreementType: marketAgreementTypes,
	AuctionCategory:     auctionCategories,
	Direction:           directions,
	CurveType:           curveTypes,
	Area:                areaMeanings,
}

// columnRule binds a dotted column suffix to a category. Rules are checked in
// order, so more specific suffixes come first.
type columnRule struct {
	suffix   []string
	category Category
}

var columnRules = []columnRule{
	{[]string{"contract_MarketAgreement", "type"}, MarketAgreementType},
	{[]string{"type_MarketAgreement", "type"}, MarketAgreementType},
	{[]string{"auction", "category"}, AuctionCategory},
	{[]string{"flowDirection", "direction"}, Direction},
	{[]string{"docStatus", "value"}, DocStatus},
	{[]string{"psrType"}, PsrType},
	{[]string{"businessType"}, BusinessType},
	{[]string{"processType"}, ProcessType},
	{[]string{"curveType"}, CurveType},
	{[]string{"direction"}, Direction},
	{[]string{"type"}, DocumentType},
}

// Categories returns all category names in sorted order.
func Categories() []Category {
	out := make([]Category, 0, len(tables))
	for c := range tables {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Known reports whether category names a code list.
func Known(category Category) bool {
	_, ok := tables[category]
	return ok
}

// Lookup returns the meaning of code in category.
func Lookup(category Category, code string) (string, bool) {
	meaning, ok := tables[category][strings.TrimSpace(code)]
	return meaning, ok
}

// LookupArea returns the full description of an EIC area code, including its
// timezone.
func LookupArea(code string) (AreaInfo, bool) {
	code = strings.TrimSpace(code)
	a, ok := areas[code]
	if ok {
		a.Code = code
	}
	return a, ok
}

// CategoryOf returns the category a column holds codes of, if any. Repeat
// indices such as "Reason[1]" are ignored when matching.
func CategoryOf(column string) (Category, bool) {
	if strings.HasSuffix(column, MeaningSuffix) {
		return "", false
	}
	segments := strings.Split(column, ".")
	for i, s := range segments {
		if j := strings.IndexByte(s, '['); j >= 0 {
			segments[i] = s[:j]
		}
	}
	// Any "<x>_Domain.mRID" column, e.g. "TimeSeries.in_Domain.mRID".
	if n := len(segments); n >= 2 && segments[n-1] == "mRID" && strings.HasSuffix(segments[n-2], "_Domain") {
		return Area, true
	}
	for _, rule := range columnRules {
		if hasSuffix(segments, rule.suffix) {
			return rule.category, true
		}
	}
	return "", false
}

func hasSuffix(segments, suffix []string) bool {
	if len(suffix) > len(segments) {
		return false
	}
	offset := len(segments) - len(suffix)
	for i, s := range suffix {
		if segments[offset+i] != s {
			return false
		}
	}
	return true
}

// Describe adds a "<column>.meaning" column next to every code column that
// has at least one known value. Rows with unknown codes get no meaning. The
// table is modified in place and returned.
func Describe(tbl *models.Table) *models.Table {
	if tbl == nil {
		return nil
	}
	for _, col := range append([]string(nil), tbl.Columns...) {
		category, ok := CategoryOf(col)
		if !ok {
			continue
		}
		target := col + MeaningSuffix
		found := false
		for i := range tbl.Rows {
			code, present := tbl.Rows[i].Fields[col]
			if !present {
				continue
			}
			if meaning, known := Lookup(category, code); known {
				tbl.Rows[i].Fields[target] = meaning
				found = true
			}
		}
		if found {
			tbl.AddColumn(target)
		}
	}
	return tbl
}
