package descriptor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	"github.com/ralt/pirum/internal/models"
)

// element is a parsed markup element, kept in document order
type element struct {
	name     string
	attrs    []xml.Attr
	children []*element
	text     strings.Builder
}

// parseElements decodes a markup fragment into its top-level elements
func parseElements(fragment []byte) ([]*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(fragment))
	root := &element{}
	stack := []*element{root}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{name: t.Name.Local, attrs: t.Attr}
			top.children = append(top.children, el)
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.text.Write(t)
		}
	}

	return root.children, nil
}

// value converts an element to a scalar when it has no child elements,
// otherwise to a mapping of its children.
func (e *element) value() *models.Node {
	if len(e.children) == 0 {
		return models.Scalar(e.text.String())
	}
	return toMapping(e.children)
}

// toMapping converts sibling elements to an ordered mapping. Repeated names
// collapse into a sequence stored under the first occurrence's key.
func toMapping(children []*element) *models.Node {
	m := models.Mapping()
	for _, child := range children {
		v := child.value()
		existing := m.Get(child.name)
		switch {
		case existing == nil:
			m.Set(child.name, v)
		case existing.Kind == models.SequenceNode:
			existing.Items = append(existing.Items, v)
		default:
			m.Set(child.name, models.Sequence(existing, v))
		}
	}
	return m
}

// dependencyTree converts the children of <dependencies> into the generic
// tree. Each <group> child becomes one entry of the "group" sequence that
// carries the group's attributes.
func dependencyTree(children []*element) *models.Node {
	tree := toMapping(children)

	var groups []*models.Node
	for _, child := range children {
		if child.name != "group" {
			continue
		}
		attribs := models.Mapping()
		for _, a := range child.attrs {
			attribs.Set(a.Name.Local, models.Scalar(a.Value))
		}
		for _, dep := range child.children {
			g := models.Mapping()
			g.Set("attribs", attribs)
			g.Set(dep.name, toMapping(dep.children))
			groups = append(groups, g)
		}
	}
	if tree.Get("group") != nil {
		tree.Set("group", models.Sequence(groups...))
	}

	return tree
}
