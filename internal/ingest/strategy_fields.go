package ingest

import "strings"

var priceDirections = map[string]string{
	"A01": "up",
	"A02": "down",
	"A03": "up_and_down",
}

// expandFinancialPrices writes each price entry as <tag>.<direction>.<field>.
// Unknown direction codes are kept verbatim.
func expandFinancialPrices(fields map[string]string, tag string, prices []*Node) error {
	for _, fp := range prices {
		code := fp.TextAt("direction")
		dir, ok := priceDirections[code]
		if !ok {
			dir = code
		}
		sub, err := FoldUnder(tag+"."+dir, fp, "direction")
		if err != nil {
			return err
		}
		if err := mergeFields(fields, sub); err != nil {
			return err
		}
	}
	return nil
}

// constraintColumns flattens one constraint series: its own metadata, the
// metadata of each monitored resource, and every PTDF domain pivoted so that the
// domain mRID is the column and its quantity the value.
func constraintColumns(cts *Node) (map[string]string, error) {
	out, err := FoldUnder(cts.Tag, cts, "Monitored_RegisteredResource")
	if err != nil {
		return nil, err
	}
	for k, res := range cts.ChildrenByTag("Monitored_RegisteredResource") {
		prefix := res.Tag
		if k > 0 {
			prefix = indexedSegment(res.Tag, k)
		}
		meta, err := FoldUnder(prefix, res, "PTDF_Domain")
		if err != nil {
			return nil, err
		}
		if err := mergeFields(out, meta); err != nil {
			return nil, err
		}
		for _, d := range res.ChildrenByTag("PTDF_Domain") {
			id := d.TextAt("mRID")
			if id == "" {
				return nil, malformed("PTDF_Domain without mRID")
			}
			q := d.TextAt("pTDF_Quantity", "quantity")
			if err := mergeFields(out, map[string]string{id: q}); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// resourceColumns folds a 0..n resource list and joins the values per key with
// commas. A resource lacking a key contributes "" so positions stay aligned.
func resourceColumns(prefix string, resources []*Node) (MetadataMap, error) {
	out := make(MetadataMap)
	if len(resources) == 0 {
		return out, nil
	}
	folded := make([]MetadataMap, len(resources))
	keys := make(map[string]struct{})
	for i, r := range resources {
		m, err := FoldUnder(prefix, r)
		if err != nil {
			return nil, err
		}
		folded[i] = m
		for k := range m {
			keys[k] = struct{}{}
		}
	}
	for k := range keys {
		vals := make([]string, len(folded))
		for i, m := range folded {
			vals[i] = m[k]
		}
		out[k] = strings.Join(vals, ",")
	}
	return out, nil
}

// reasonColumns folds reason nodes into <prefix>.code and <prefix>.text. A
// missing or blank text becomes "". Multiple reasons are joined with commas.
func reasonColumns(prefix string, reasons []*Node) MetadataMap {
	out := make(MetadataMap)
	if len(reasons) == 0 {
		return out
	}
	codes := make([]string, 0, len(reasons))
	texts := make([]string, 0, len(reasons))
	for _, r := range reasons {
		codes = append(codes, strings.TrimSpace(r.TextAt("code")))
		texts = append(texts, strings.TrimSpace(r.TextAt("text")))
	}
	out[prefix+".code"] = strings.Join(codes, ",")
	out[prefix+".text"] = strings.Join(texts, ",")
	return out
}
