package nfse

import (
	"encoding/xml"
	"io"
	"strings"
)

// element is a generic decoded XML element.
type element struct {
	XMLName  xml.Name
	Content  string    `xml:",chardata"`
	Children []element `xml:",any"`
}

// parseTree decodes the single top-level element of text. Encoding labels in
// XML declarations are ignored since text is already UTF-8.
func parseTree(text string) (*element, error) {
	dec := xml.NewDecoder(strings.NewReader(text))
	dec.CharsetReader = func(_ string, in io.Reader) (io.Reader, error) {
		return in, nil
	}
	var root element
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}
	return &root, nil
}

type step struct {
	name string
	deep bool
}

// parsePath splits a path such as "//Servico/Valores" into steps. An empty
// segment marks the next step as a descendant search.
func parsePath(path string) []step {
	var (
		steps []step
		deep  bool
	)
	for _, part := range strings.Split(path, "/") {
		if part == "" {
			deep = true
			continue
		}
		steps = append(steps, step{name: part, deep: deep})
		deep = false
	}
	return steps
}

// Node is an optional element bound to a namespace. The zero Node is
// missing; every lookup on a missing Node yields a missing Node or "".
type Node struct {
	el *element
	ns string
}

func newNode(el *element, ns string) Node {
	return Node{el: el, ns: ns}
}

// Exists reports whether the node is present.
func (n Node) Exists() bool {
	return n.el != nil
}

// Find returns the first element reached by path in document order.
func (n Node) Find(path string) Node {
	if n.el == nil {
		return Node{}
	}
	var found *element
	n.walk(n.el, parsePath(path), func(e *element) bool {
		found = e
		return false
	})
	if found == nil {
		return Node{}
	}
	return newNode(found, n.ns)
}

// FindAll returns every element reached by path in document order.
func (n Node) FindAll(path string) []Node {
	if n.el == nil {
		return nil
	}
	var out []Node
	n.walk(n.el, parsePath(path), func(e *element) bool {
		out = append(out, newNode(e, n.ns))
		return true
	})
	return out
}

// Text returns the trimmed character data of the element at path.
func (n Node) Text(path string) string {
	return strings.TrimSpace(n.Find(path).Raw())
}

// Raw returns the node's character data verbatim.
func (n Node) Raw() string {
	if n.el == nil {
		return ""
	}
	return n.el.Content
}

// walk feeds fn every element matching steps below e. It returns false once
// fn asked to stop.
func (n Node) walk(e *element, steps []step, fn func(*element) bool) bool {
	if len(steps) == 0 {
		return fn(e)
	}
	s, rest := steps[0], steps[1:]
	visit := func(c *element) bool {
		if c.XMLName.Local == s.name && c.XMLName.Space == n.ns {
			return n.walk(c, rest, fn)
		}
		return true
	}
	if s.deep {
		return eachDescendant(e, visit)
	}
	for i := range e.Children {
		if !visit(&e.Children[i]) {
			return false
		}
	}
	return true
}

func eachDescendant(e *element, fn func(*element) bool) bool {
	for i := range e.Children {
		c := &e.Children[i]
		if !fn(c) || !eachDescendant(c, fn) {
			return false
		}
	}
	return true
}
