package ingest

import (
	"maps"
	"slices"
	"strconv"
)

// MetadataMap maps a dotted tag path to the text of the leaf at that path.
type MetadataMap map[string]string

// Merge copies src into m. A key present in both fails with
// ErrMetadataCollision instead of overwriting.
func (m MetadataMap) Merge(src MetadataMap) error {
	for k, v := range src {
		if _, ok := m[k]; ok {
			return &MetadataCollisionError{Path: k}
		}
		m[k] = v
	}
	return nil
}

// Clone returns an independent copy.
func (m MetadataMap) Clone() MetadataMap {
	return maps.Clone(m)
}

// Decompose splits node's children into data children (tag == dataTag, in
// document order) and metadata folded under node.Tag.
//
// With an empty dataTag there are no data children: the whole node is folded
// under its own tag and returned as the single placeholder data element.
func Decompose(node *Node, dataTag string) (MetadataMap, []*Node, error) {
	if dataTag == "" {
		meta, err := FoldNode(node)
		if err != nil {
			return nil, nil, err
		}
		return meta, []*Node{node}, nil
	}

	meta, err := FoldMetadata(node, dataTag)
	if err != nil {
		return nil, nil, err
	}
	return meta, node.ChildrenByTag(dataTag), nil
}

// FoldMetadata folds every child of node whose tag is not excluded into one map
// keyed by node.Tag + "." + child path.
func FoldMetadata(node *Node, exclude ...string) (MetadataMap, error) {
	out := make(MetadataMap)
	if err := foldChildren(node.Tag, node.Children, exclude, out); err != nil {
		return nil, err
	}
	return out, nil
}

// FoldNode folds node itself. A leaf yields {node.Tag: text}.
func FoldNode(node *Node) (MetadataMap, error) {
	if node.IsLeaf() {
		return MetadataMap{node.Tag: node.Text}, nil
	}
	return FoldMetadata(node)
}

// FoldUnder folds the children of node under an explicit prefix instead of the
// node's own tag. An empty prefix yields bare child paths ("quantity",
// "price.amount").
func FoldUnder(prefix string, node *Node, exclude ...string) (MetadataMap, error) {
	out := make(MetadataMap)
	if node.IsLeaf() {
		out[prefix] = node.Text
		return out, nil
	}
	if err := foldChildren(prefix, node.Children, exclude, out); err != nil {
		return nil, err
	}
	return out, nil
}

// foldChildren writes children into out. The k-th repeat (k >= 1) of a tag under
// the same parent is written as tag[k]; any path that is still produced twice
// is a collision.
func foldChildren(prefix string, children []*Node, exclude []string, out MetadataMap) error {
	seen := make(map[string]int, len(children))
	for _, c := range children {
		if slices.Contains(exclude, c.Tag) {
			continue
		}
		seg := c.Tag
		if k := seen[c.Tag]; k > 0 {
			seg = indexedSegment(c.Tag, k)
		}
		seen[c.Tag]++

		path := seg
		if prefix != "" {
			path = prefix + "." + seg
		}
		if c.IsLeaf() {
			if _, dup := out[path]; dup {
				return &MetadataCollisionError{Path: path}
			}
			out[path] = c.Text
			continue
		}
		if err := foldChildren(path, c.Children, nil, out); err != nil {
			return err
		}
	}
	return nil
}

func indexedSegment(tag string, k int) string {
	return tag + "[" + strconv.Itoa(k) + "]"
}
