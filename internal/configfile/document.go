package configfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Node is one element of a config document. Text content, comments and
// processing instructions are not kept; the game's config files carry all
// their data in attributes. Names keep the prefix they were written with.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
}

// Attr is a single attribute, kept in document order
type Attr struct {
	Name  string
	Value string
}

// NewNode creates an element with the given attributes as alternating
// name/value pairs
func NewNode(name string, attrs ...string) *Node {
	n := &Node{Name: name}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Set(attrs[i], attrs[i+1])
	}
	return n
}

// Get returns the value of the named attribute
func (n *Node) Get(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Set replaces the named attribute or appends it
func (n *Node) Set(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// Child returns the first direct child with the given name
func (n *Node) Child(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Find walks a slash-separated path of element names from n
func (n *Node) Find(path string) *Node {
	cur := n
	for _, part := range strings.Split(path, "/") {
		if cur == nil {
			return nil
		}
		cur = cur.Child(part)
	}
	return cur
}

// ParseDocument reads an XML document into a node tree and returns its root
func ParseDocument(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Node
	var stack []*Node
	var scopes []namespaces
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			var parent namespaces
			if len(scopes) > 0 {
				parent = scopes[len(scopes)-1]
			}
			scope := parent.with(t.Attr)
			scopes = append(scopes, scope)

			node := &Node{Name: scope.qualified(t.Name, true)}
			for _, a := range t.Attr {
				node.Attrs = append(node.Attrs, Attr{Name: scope.qualified(a.Name, false), Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("multiple root elements")
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
			scopes = scopes[:len(scopes)-1]
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	return root, nil
}

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// namespaces maps namespace URIs in scope back to the prefix that declared
// them. encoding/xml reports names by URI, not prefix.
type namespaces map[string]string

func (ns namespaces) with(attrs []xml.Attr) namespaces {
	out := ns
	copied := false
	for _, a := range attrs {
		var prefix string
		switch {
		case a.Name.Space == "xmlns":
			prefix = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			prefix = ""
		default:
			continue
		}
		if !copied {
			out = make(namespaces, len(ns)+1)
			for k, v := range ns {
				out[k] = v
			}
			copied = true
		}
		out[a.Value] = prefix
	}
	return out
}

// qualified renders name as written. Unprefixed attributes never take the
// default namespace, so only elements resolve to an empty prefix.
func (ns namespaces) qualified(name xml.Name, element bool) string {
	switch name.Space {
	case "":
		return name.Local
	case "xmlns":
		return "xmlns:" + name.Local
	case xmlNamespace:
		return "xml:" + name.Local
	}
	if prefix, ok := ns[name.Space]; ok {
		if prefix == "" {
			if element {
				return name.Local
			}
		} else {
			return prefix + ":" + name.Local
		}
	}
	// unbound prefixes are reported verbatim
	return name.Space + ":" + name.Local
}

var attrEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"\n", "&#xA;",
	"\r", "&#xD;",
	"\t", "&#x9;",
)

// MarshalDocument renders a node tree the way the official client writes its
// config files: tab indentation, LF line endings, a UTF-8 declaration, empty
// elements self-closed without a space and a trailing newline.
func MarshalDocument(root *Node) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="utf-8"?>`)
	writeNode(&buf, root, 0)
	return applyFixups(buf.Bytes())
}

// writeNode emits the same text as an indenting .NET XmlWriter, which puts a
// space before "/>" and lower-cases the declaration encoding. Those are
// corrected afterwards by applyFixups.
func writeNode(buf *bytes.Buffer, n *Node, depth int) {
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("\t", depth))
	buf.WriteByte('<')
	buf.WriteString(n.Name)
	for _, a := range n.Attrs {
		fmt.Fprintf(buf, ` %s="%s"`, a.Name, attrEscaper.Replace(a.Value))
	}

	if len(n.Children) == 0 {
		buf.WriteString(" />")
		return
	}

	buf.WriteByte('>')
	for _, c := range n.Children {
		writeNode(buf, c, depth+1)
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat("\t", depth))
	fmt.Fprintf(buf, "</%s>", n.Name)
}

func applyFixups(data []byte) []byte {
	out := bytes.ReplaceAll(data, []byte(" />"), []byte("/>"))
	out = bytes.ReplaceAll(out, []byte(`"utf-8"`), []byte(`"UTF-8"`))
	return append(out, '\n')
}
