package fakes

import (
	"strconv"
	"strings"
	"sync"

	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

const (
	actionXPath        = "/env:Envelope/env:Header/wsa:Action"
	resourceURIXPath   = "/env:Envelope/env:Header/wsman:ResourceURI"
	filterXPath        = "/env:Envelope/env:Body/wsen:Enumerate/wsman:Filter"
	maxElementsXPath   = "/env:Envelope/env:Body/wsen:Enumerate/wsman:MaxElements"
	pullMaxXPath       = "/env:Envelope/env:Body/wsen:Pull/wsen:MaxElements"
	contextXPath       = "/env:Envelope/env:Body/wsen:Pull/wsen:EnumerationContext"
	selectorNameXPath  = "/env:Envelope/env:Header/wsman:SelectorSet/wsman:Selector/@Name"
	selectorValueXPath = "/env:Envelope/env:Header/wsman:SelectorSet/wsman:Selector"
)

// Record is one entity held by a FakeGateway.
type Record struct {
	ID     string
	Entity string
	doc    mgmt.Document
}

// ParsedRequest is the protocol view of a request the gateway received.
type ParsedRequest struct {
	Action             mgmt.Action
	Resource           mgmt.Resource
	Filter             string
	MaxElements        int
	EnumerationContext string
	SelectorName       string
	SelectorValue      string
	Entity             string
}

// FakeGateway is an in-memory management endpoint. It evaluates enumeration
// filters against stored entities and enforces the same uniqueness rules as a
// gateway: folders per parent and name, policies and certificates per name.
// Enumerations return at most MaxElements items per page; the rest is kept
// under an enumeration context until pulled.
type FakeGateway struct {
	Requests []mgmt.Request

	// DenyStub makes the gateway answer AccessDenied for matching requests.
	DenyStub func(request ParsedRequest) bool

	// BeforeInvoke runs before each request is handled.
	BeforeInvoke func(request ParsedRequest)

	Assertions []string

	entities    map[mgmt.Resource][]Record
	nextID      int
	contexts    map[string][]Item
	nextContext int
	lock        sync.Mutex
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{
		entities: map[mgmt.Resource][]Record{},
		nextID:   1000,
		contexts: map[string][]Item{},
	}
}

// AddEntity stores an entity as if it had been created earlier and returns its id.
func (g *FakeGateway) AddEntity(resource mgmt.Resource, entity string) string {
	g.lock.Lock()
	defer g.lock.Unlock()

	record := g.store(resource, entity)
	return record.ID
}

func (g *FakeGateway) Entities(resource mgmt.Resource) []Record {
	g.lock.Lock()
	defer g.lock.Unlock()

	return append([]Record{}, g.entities[resource]...)
}

func (g *FakeGateway) RequestsWithAction(action mgmt.Action) []mgmt.Request {
	g.lock.Lock()
	defer g.lock.Unlock()

	var requests []mgmt.Request
	for _, r := range g.Requests {
		if r.Action == action {
			requests = append(requests, r)
		}
	}
	return requests
}

func (g *FakeGateway) Invoke(request mgmt.Request) (mgmt.Response, error) {
	parsed, err := ParseRequest(request)
	if err != nil {
		return mgmt.Response{}, err
	}

	g.lock.Lock()
	g.Requests = append(g.Requests, request)
	before, deny := g.BeforeInvoke, g.DenyStub
	g.lock.Unlock()

	if before != nil {
		before(parsed)
	}

	if deny != nil && deny(parsed) {
		return respond(500, FaultResponseXML(mgmt.SubcodeAccessDenied, "Access Denied"))
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	switch parsed.Action {
	case mgmt.ActionEnumerate:
		return g.enumerate(parsed)
	case mgmt.ActionPull:
		return g.pull(parsed)
	case mgmt.ActionGet:
		return g.get(parsed)
	case mgmt.ActionCreate:
		return g.create(parsed)
	default:
		return respond(500, FaultResponseXML("ActionNotSupported", "unsupported action "+string(parsed.Action)))
	}
}

func (g *FakeGateway) enumerate(req ParsedRequest) (mgmt.Response, error) {
	var items []Item

	if req.Resource == mgmt.ResourceAssertions {
		for i, name := range g.Assertions {
			items = append(items, Item{ID: strconv.Itoa(i + 1), Entity: NamedEntityXML("Assertion", name)})
		}
	} else {
		for _, record := range g.entities[req.Resource] {
			if req.Filter == "" || matches(record.doc, req.Filter) {
				items = append(items, Item{ID: record.ID, Entity: record.Entity})
			}
		}
	}

	page, context := g.page(items, req.MaxElements)
	return respond(200, EnumeratePageXML(req.Resource, context, context == "", page...))
}

func (g *FakeGateway) pull(req ParsedRequest) (mgmt.Response, error) {
	items, found := g.contexts[req.EnumerationContext]
	if !found {
		return respond(500, FaultResponseXML("InvalidEnumerationContext", "unknown enumeration context"))
	}
	delete(g.contexts, req.EnumerationContext)

	page, context := g.page(items, req.MaxElements)
	return respond(200, PullResponseXML(req.Resource, context, context == "", page...))
}

// page splits off the items returned now. The context is empty when nothing remains.
func (g *FakeGateway) page(items []Item, maxElements int) ([]Item, string) {
	if maxElements <= 0 || len(items) <= maxElements {
		return items, ""
	}

	g.nextContext++
	context := "uuid:context-" + strconv.Itoa(g.nextContext)
	g.contexts[context] = items[maxElements:]

	return items[:maxElements], context
}

func (g *FakeGateway) get(req ParsedRequest) (mgmt.Response, error) {
	for _, record := range g.entities[req.Resource] {
		switch req.SelectorName {
		case "id":
			if record.ID == req.SelectorValue {
				return respond(200, GetResponseXML(record.Entity))
			}
		case "name":
			if entityName(record.doc) == req.SelectorValue {
				return respond(200, GetResponseXML(record.Entity))
			}
		}
	}

	return respond(500, FaultResponseXML(mgmt.SubcodeInvalidSelectors, "The selectors for the resource were not valid"))
}

func (g *FakeGateway) create(req ParsedRequest) (mgmt.Response, error) {
	doc, err := mgmt.ParseDocument([]byte(req.Entity))
	if err != nil {
		return respond(500, FaultResponseXML(mgmt.SubcodeInvalidRepresentation, err.Error()))
	}

	if uniqueFilter := uniquenessFilter(req.Resource, doc); uniqueFilter != "" {
		for _, record := range g.entities[req.Resource] {
			if matches(record.doc, uniqueFilter) {
				return respond(500, FaultResponseXML(mgmt.SubcodeAlreadyExists, "(name) must be unique"))
			}
		}
	}

	record := g.store(req.Resource, req.Entity)

	return respond(200, CreatedResponseXML(req.Resource, record.ID))
}

func (g *FakeGateway) store(resource mgmt.Resource, entity string) Record {
	id := strconv.Itoa(g.nextID)
	g.nextID++

	if resource == mgmt.ResourcePolicies {
		doc, err := mgmt.ParseDocument([]byte(entity))
		if err == nil {
			if oldGUID, found := doc.Value("/l7:Policy/@guid"); found {
				entity = strings.ReplaceAll(entity, `"`+oldGUID+`"`, `"gw-guid-`+id+`"`)
			}
		}
	}

	doc, err := mgmt.ParseDocument([]byte(entity))
	if err != nil {
		panic("FakeGateway: unparseable entity: " + err.Error())
	}

	record := Record{ID: id, Entity: entity, doc: doc}
	g.entities[resource] = append(g.entities[resource], record)

	return record
}

func entityName(doc mgmt.Document) string {
	if name, found := doc.Value("/*/l7:Name"); found {
		return name
	}
	name, _ := doc.Value("/*/*/l7:Name")
	return name
}

func uniquenessFilter(resource mgmt.Resource, doc mgmt.Document) string {
	switch resource {
	case mgmt.ResourceFolders:
		parent, _ := doc.Value("/l7:Folder/@folderId")
		name, _ := doc.Value("/l7:Folder/l7:Name")
		return mgmt.FolderByParentAndName(parent, name)
	case mgmt.ResourcePolicies:
		name, _ := doc.Value("/l7:Policy/l7:PolicyDetail/l7:Name")
		return mgmt.PolicyByName(name)
	case mgmt.ResourceTrustedCertificates:
		name, _ := doc.Value("/l7:TrustedCertificate/l7:Name")
		return mgmt.TrustedCertificateByName(name)
	default:
		return ""
	}
}

func matches(doc mgmt.Document, filter string) bool {
	values, err := doc.Values(filter)
	return err == nil && len(values) > 0
}

func respond(status int, content string) (mgmt.Response, error) {
	return mgmt.Response{StatusCode: status, Document: Document(content)}, nil
}

// ParseRequest reads back the protocol fields of a built request.
func ParseRequest(request mgmt.Request) (ParsedRequest, error) {
	doc, err := mgmt.ParseDocument([]byte(request.Text))
	if err != nil {
		return ParsedRequest{}, err
	}

	action, _ := doc.Value(actionXPath)
	resourceURI, _ := doc.Value(resourceURIXPath)
	filter, _ := doc.Value(filterXPath)
	maxElements, found := doc.Value(maxElementsXPath)
	if !found {
		maxElements, _ = doc.Value(pullMaxXPath)
	}
	context, _ := doc.Value(contextXPath)
	selectorName, _ := doc.Value(selectorNameXPath)
	selectorValue, _ := doc.Value(selectorValueXPath)

	return ParsedRequest{
		Action:             mgmt.Action(action),
		Resource:           mgmt.Resource(strings.TrimPrefix(resourceURI, mgmt.NSGatewayManagement+"/")),
		Filter:             filter,
		MaxElements:        atoi(maxElements),
		EnumerationContext: context,
		SelectorName:       selectorName,
		SelectorValue:      selectorValue,
		Entity:             bodyContent(request.Text),
	}, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func bodyContent(text string) string {
	start := strings.Index(text, "<env:Body>")
	end := strings.LastIndex(text, "</env:Body>")
	if start < 0 || end < start {
		return ""
	}
	return strings.TrimSpace(text[start+len("<env:Body>") : end])
}
