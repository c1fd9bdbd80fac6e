// Package ingest turns grid transparency documents into flat tables.
//
// A document is a tree: document -> series -> period -> point. The engine parses
// it into Nodes, picks a Strategy from the root tag and the document type code,
// and flattens every period into rows carrying the point fields plus the folded
// metadata of each ancestor.
package ingest

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
)

// Node is one element of a parsed document. Tag is the local name; the namespace
// URI is kept in Space but never used for matching. Leaf nodes carry their
// trimmed character data in Text.
type Node struct {
	Tag      string
	Space    string
	Text     string
	Children []*Node
}

// IsLeaf reports whether the node has no element children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Child returns the first child with the given tag, or nil.
func (n *Node) Child(tag string) *Node {
	for _, c := range n.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns every child with the given tag in document order.
func (n *Node) ChildrenByTag(tag string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Find walks a path of tags, taking the first match at each step.
func (n *Node) Find(path ...string) *Node {
	cur := n
	for _, tag := range path {
		if cur = cur.Child(tag); cur == nil {
			return nil
		}
	}
	return cur
}

// TextAt returns the text of the node at path, or "" when it does not exist.
func (n *Node) TextAt(path ...string) string {
	if c := n.Find(path...); c != nil {
		return c.Text
	}
	return ""
}

// ParseDocument parses a well-formed XML document into a Node tree.
// Attributes, comments and processing instructions are ignored.
func ParseDocument(data []byte) (*Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &MalformedDocumentError{Offset: 0, Reason: "empty document"}
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var (
		root  *Node
		stack []*Node
		text  [][]byte
	)

	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &MalformedDocumentError{Offset: dec.InputOffset(), Err: err}
		}

		switch tok := tok.(type) {
		case xml.StartElement:
			node := &Node{Tag: tok.Name.Local, Space: tok.Name.Space}
			if len(stack) == 0 {
				if root != nil {
					return nil, &MalformedDocumentError{Offset: offset, Reason: "multiple root elements"}
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
			text = append(text, nil)

		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(tok)) != 0 {
					return nil, &MalformedDocumentError{Offset: offset, Reason: "character data outside root element"}
				}
				continue
			}
			text[len(text)-1] = append(text[len(text)-1], tok...)

		case xml.EndElement:
			// Strict mode guarantees the end tag matches the open element.
			node := stack[len(stack)-1]
			if node.IsLeaf() {
				node.Text = string(bytes.TrimSpace(text[len(text)-1]))
			}
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}

	if root == nil {
		return nil, &MalformedDocumentError{Offset: dec.InputOffset(), Reason: "no root element"}
	}
	if len(stack) != 0 {
		return nil, &MalformedDocumentError{Offset: dec.InputOffset(), Reason: "unclosed element " + stack[len(stack)-1].Tag}
	}
	return root, nil
}
