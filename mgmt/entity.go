package mgmt

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	"github.com/masterzen/simplexml/dom"
)

// Entity is an editable management entity element such as l7:Folder or
// l7:Policy. Whitespace between child elements is not kept.
type Entity struct {
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Entity
	Text     string
}

// ParseEntities returns every gateway management element named local found in
// content, in document order. Nested matches are not searched.
func ParseEntities(content []byte, local string) ([]*Entity, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))

	var entities []*Entity
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return entities, nil
		}
		if err != nil {
			return nil, bosherr.WrapErrorf(err, "Reading %s entities", local)
		}

		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Space != NSGatewayManagement || start.Name.Local != local {
			continue
		}

		entity, err := decodeEntity(decoder, start)
		if err != nil {
			return nil, bosherr.WrapErrorf(err, "Decoding %s entity", local)
		}
		entities = append(entities, entity)
	}
}

func NewEntity(local string) *Entity {
	return &Entity{Name: xml.Name{Space: NSGatewayManagement, Local: local}}
}

func decodeEntity(decoder *xml.Decoder, start xml.StartElement) (*Entity, error) {
	entity := &Entity{Name: start.Name}
	for _, attr := range start.Attr {
		if attr.Name.Space == "xmlns" || (attr.Name.Space == "" && attr.Name.Local == "xmlns") {
			continue
		}
		entity.Attrs = append(entity.Attrs, attr)
	}

	var text strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			child, err := decodeEntity(decoder, t)
			if err != nil {
				return nil, err
			}
			entity.Children = append(entity.Children, child)
		case xml.CharData:
			text.Write(t)
		case xml.EndElement:
			if len(entity.Children) == 0 {
				entity.Text = text.String()
			}
			return entity, nil
		}
	}
}

func (e *Entity) Attr(local string) string {
	for _, attr := range e.Attrs {
		if attr.Name.Space == "" && attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

func (e *Entity) SetAttr(local, value string) *Entity {
	for i, attr := range e.Attrs {
		if attr.Name.Space == "" && attr.Name.Local == local {
			e.Attrs[i].Value = value
			return e
		}
	}
	e.Attrs = append(e.Attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
	return e
}

// Child returns the first child with the given local name.
func (e *Entity) Child(local string) *Entity {
	for _, child := range e.Children {
		if child.Name.Local == local {
			return child
		}
	}
	return nil
}

// Find follows a path of local names, returning every element at its end.
func (e *Entity) Find(path ...string) []*Entity {
	current := []*Entity{e}
	for _, local := range path {
		var next []*Entity
		for _, entity := range current {
			for _, child := range entity.Children {
				if child.Name.Local == local {
					next = append(next, child)
				}
			}
		}
		current = next
	}
	return current
}

// FindFirst is Find returning only the first match.
func (e *Entity) FindFirst(path ...string) *Entity {
	found := e.Find(path...)
	if len(found) == 0 {
		return nil
	}
	return found[0]
}

func (e *Entity) AddChild(child *Entity) *Entity {
	e.Children = append(e.Children, child)
	return e
}

func (e *Entity) SetText(text string) *Entity {
	e.Text = text
	return e
}

// String serializes the entity as a standalone fragment declaring every
// namespace it uses on the root element.
func (e *Entity) String() string {
	prefixes := map[string]string{NSGatewayManagement: nsL7.Prefix}
	var declared []dom.Namespace
	e.collectNamespaces(prefixes, &declared)

	root := e.element(prefixes)
	root.DeclareNamespace(nsL7)
	for _, ns := range declared {
		root.DeclareNamespace(ns)
	}

	return root.String()
}

func (e *Entity) collectNamespaces(prefixes map[string]string, declared *[]dom.Namespace) {
	names := []string{e.Name.Space}
	for _, attr := range e.Attrs {
		names = append(names, attr.Name.Space)
	}

	for _, uri := range names {
		if uri == "" || uri == xmlNamespace {
			continue
		}
		if _, found := prefixes[uri]; !found {
			prefix := "ns" + strconv.Itoa(len(*declared)+1)
			prefixes[uri] = prefix
			*declared = append(*declared, dom.Namespace{Prefix: prefix, Uri: uri})
		}
	}

	for _, child := range e.Children {
		child.collectNamespaces(prefixes, declared)
	}
}

func (e *Entity) element(prefixes map[string]string) *dom.Element {
	name := e.Name.Local
	if prefix := prefixes[e.Name.Space]; prefix != "" {
		name = prefix + ":" + name
	}
	element := dom.CreateElement(name)

	for _, attr := range e.Attrs {
		attrName := attr.Name.Local
		switch {
		case attr.Name.Space == xmlNamespace:
			attrName = "xml:" + attrName
		case attr.Name.Space != "":
			attrName = prefixes[attr.Name.Space] + ":" + attrName
		}
		element.SetAttr(attrName, escapeAttr(attr.Value))
	}

	for _, child := range e.Children {
		element.AddChild(child.element(prefixes))
	}
	if len(e.Children) == 0 {
		element.SetContent(escapeText(e.Text))
	}

	return element
}

const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

var attrEscaper = strings.NewReplacer("\n", "&#xA;", "\t", "&#x9;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(escapeText(s))
}
