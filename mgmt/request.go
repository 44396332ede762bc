package mgmt

import (
	"strconv"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshuuid "github.com/cloudfoundry/bosh-utils/uuid"
	"github.com/masterzen/simplexml/dom"
)

const (
	DefaultOperationTimeout = "PT5M0.000S"
	DefaultMaxElements      = 10

	enumerationMode = "EnumerateObjectAndEPR"
)

// Request is one serialized management protocol exchange.
type Request struct {
	Action    Action
	Resource  Resource
	MessageID string
	Text      string
}

func (r Request) String() string {
	return r.Text
}

type Selector struct {
	Name  string
	Value string
}

func SelectorByID(id string) Selector {
	return Selector{Name: "id", Value: id}
}

func SelectorByName(name string) Selector {
	return Selector{Name: "name", Value: name}
}

type RequestBuilder struct {
	to               string
	operationTimeout string
	uuidGen          boshuuid.Generator
}

func NewRequestBuilder(to, operationTimeout string, uuidGen boshuuid.Generator) RequestBuilder {
	if operationTimeout == "" {
		operationTimeout = DefaultOperationTimeout
	}

	return RequestBuilder{
		to:               to,
		operationTimeout: operationTimeout,
		uuidGen:          uuidGen,
	}
}

// Enumerate builds a filtered enumeration returning both objects and endpoint references.
func (b RequestBuilder) Enumerate(resource Resource, filter string, maxElements int) (Request, error) {
	if maxElements <= 0 {
		maxElements = DefaultMaxElements
	}

	return b.build(ActionEnumerate, resource, nil, func(body *dom.Element) {
		enumerate := addChild(body, nsWSEN, "Enumerate")
		addChild(enumerate, nsWSMan, "OptimizeEnumeration")
		addChild(enumerate, nsWSMan, "MaxElements").SetContent(strconv.Itoa(maxElements))
		if filter != "" {
			addChild(enumerate, nsWSMan, "Filter").SetContent(escapeText(filter))
		}
		addChild(enumerate, nsWSMan, "EnumerationMode").SetContent(enumerationMode)
	})
}

// Pull continues an enumeration from the context the previous page returned.
func (b RequestBuilder) Pull(resource Resource, context string, maxElements int) (Request, error) {
	if context == "" {
		return Request{}, bosherr.Error("Pull requires an enumeration context")
	}
	if maxElements <= 0 {
		maxElements = DefaultMaxElements
	}

	return b.build(ActionPull, resource, nil, func(body *dom.Element) {
		pull := addChild(body, nsWSEN, "Pull")
		addChild(pull, nsWSEN, "EnumerationContext").SetContent(escapeText(context))
		addChild(pull, nsWSEN, "MaxElements").SetContent(strconv.Itoa(maxElements))
	})
}

// Create builds a create request whose body is the given entity fragment.
func (b RequestBuilder) Create(resource Resource, entity string) (Request, error) {
	if entity == "" {
		return Request{}, bosherr.Error("Creating an entity requires an entity body")
	}

	return b.build(ActionCreate, resource, nil, func(body *dom.Element) {
		body.SetContent(entity)
	})
}

func (b RequestBuilder) Get(resource Resource, selector Selector) (Request, error) {
	return b.build(ActionGet, resource, &selector, nil)
}

func (b RequestBuilder) build(action Action, resource Resource, selector *Selector, fillBody func(*dom.Element)) (Request, error) {
	id, err := b.uuidGen.Generate()
	if err != nil {
		return Request{}, bosherr.WrapError(err, "Generating message id")
	}
	messageID := "uuid:" + id

	envelope := dom.CreateElement("Envelope")
	for _, ns := range envelopeNamespaces {
		envelope.DeclareNamespace(ns)
	}
	envelope.SetNamespace(nsEnv.Prefix, nsEnv.Uri)

	header := addChild(envelope, nsEnv, "Header")
	mustUnderstand(addChild(header, nsWSA, "Action")).SetContent(escapeText(string(action)))
	replyTo := addChild(header, nsWSA, "ReplyTo")
	mustUnderstand(addChild(replyTo, nsWSA, "Address")).SetContent(anonymousAddress)
	mustUnderstand(addChild(header, nsWSA, "MessageID")).SetContent(escapeText(messageID))
	mustUnderstand(addChild(header, nsWSA, "To")).SetContent(escapeText(b.to))
	addChild(header, nsWSMan, "ResourceURI").SetContent(escapeText(resource.URI()))
	addChild(header, nsWSMan, "OperationTimeout").SetContent(escapeText(b.operationTimeout))

	if selector != nil {
		selectorSet := addChild(header, nsWSMan, "SelectorSet")
		addChild(selectorSet, nsWSMan, "Selector").
			SetAttr("Name", escapeText(selector.Name)).
			SetContent(escapeText(selector.Value))
	}

	body := addChild(envelope, nsEnv, "Body")
	if fillBody != nil {
		fillBody(body)
	}

	doc := dom.CreateDocument()
	doc.SetRoot(envelope)

	return Request{
		Action:    action,
		Resource:  resource,
		MessageID: messageID,
		Text:      doc.String(),
	}, nil
}

func addChild(parent *dom.Element, ns dom.Namespace, name string) *dom.Element {
	child := dom.CreateElement(name)
	parent.AddChild(child)
	ns.SetTo(child)
	return child
}

func mustUnderstand(e *dom.Element) *dom.Element {
	return e.SetAttr(nsEnv.Prefix+":mustUnderstand", "true")
}

var textEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\r", "&#xD;",
)

// escapeText escapes character data and attribute values; dom writes both verbatim.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}
