package mgmt

import (
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
)

const (
	clientLogTag = "ManagementClient"

	enumeratedPolicyGUIDXPath = "//wsman:Item/l7:Policy/@guid"
	policyGUIDXPath           = "/env:Envelope/env:Body/l7:Policy/@guid"
	assertionNameXPath        = "//wsman:Item/l7:Assertion/l7:Name"
)

// Client runs the lookup, get and create operations installers need over an Invoker.
type Client struct {
	invoker     Invoker
	builder     RequestBuilder
	maxElements int
	logger      boshlog.Logger
}

func NewClient(invoker Invoker, builder RequestBuilder, maxElements int, logger boshlog.Logger) Client {
	if maxElements <= 0 {
		maxElements = DefaultMaxElements
	}

	return Client{
		invoker:     invoker,
		builder:     builder,
		maxElements: maxElements,
		logger:      logger,
	}
}

// Find runs a filtered enumeration and pulls until the target reports the end
// of the sequence, returning one document per page. InvalidSelectors is
// reported as an empty result; any other fault is an error.
func (c Client) Find(resource Resource, filter string) ([]Document, error) {
	request, err := c.builder.Enumerate(resource, filter, c.maxElements)
	if err != nil {
		return nil, bosherr.WrapError(err, "Building enumerate request")
	}

	c.logger.Debug(clientLogTag, "Enumerating %s with filter %s", resource, filter)

	var pages []Document
	for {
		response, err := c.invoke(request)
		if err != nil {
			return nil, err
		}

		if fault, found := response.Document.Fault(); found {
			if fault.InvalidSelectors() && len(pages) == 0 {
				return nil, nil
			}
			return nil, faultError(request, fault)
		}

		page := response.Document
		pages = append(pages, page)

		context, more := page.EnumerationContext()
		if page.EndOfSequence() || !more {
			return pages, nil
		}
		if page.ItemCount() == 0 {
			return nil, UnexpectedResponseError{
				Request:    request.Text,
				StatusCode: response.StatusCode,
				Reason:     "enumeration page without items or end of sequence",
			}
		}

		c.logger.Debug(clientLogTag, "Pulling %s page %d", resource, len(pages)+1)

		request, err = c.builder.Pull(resource, context, c.maxElements)
		if err != nil {
			return nil, bosherr.WrapError(err, "Building pull request")
		}
	}
}

// FindIDs returns the ids of every entity matching filter.
func (c Client) FindIDs(resource Resource, filter string) ([]string, error) {
	pages, err := c.Find(resource, filter)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, page := range pages {
		ids = append(ids, page.ItemIDs()...)
	}

	return ids, nil
}

// FindPolicyGUIDs returns the guids of every policy matching filter.
func (c Client) FindPolicyGUIDs(filter string) ([]string, error) {
	return c.findValues(ResourcePolicies, filter, enumeratedPolicyGUIDXPath)
}

// Get fetches one entity. The boolean is false when the selector matched nothing.
func (c Client) Get(resource Resource, selector Selector) (Document, bool, error) {
	request, err := c.builder.Get(resource, selector)
	if err != nil {
		return Document{}, false, bosherr.WrapError(err, "Building get request")
	}

	c.logger.Debug(clientLogTag, "Getting %s by %s '%s'", resource, selector.Name, selector.Value)

	response, err := c.invoke(request)
	if err != nil {
		return Document{}, false, err
	}

	if fault, found := response.Document.Fault(); found {
		if fault.InvalidSelectors() {
			return Document{}, false, nil
		}
		return Document{}, false, faultError(request, fault)
	}

	return response.Document, true, nil
}

// PolicyGUID resolves a policy guid by selector.
func (c Client) PolicyGUID(selector Selector) (string, bool, error) {
	doc, found, err := c.Get(ResourcePolicies, selector)
	if err != nil || !found {
		return "", false, err
	}

	guid, found := doc.Value(policyGUIDXPath)
	return guid, found, nil
}

// Create attempts to create entity and classifies the outcome.
func (c Client) Create(resource Resource, entity string) (CreateResult, error) {
	request, err := c.builder.Create(resource, entity)
	if err != nil {
		return CreateResult{}, bosherr.WrapError(err, "Building create request")
	}

	c.logger.Debug(clientLogTag, "Creating %s entity", resource)

	response, err := c.invoke(request)
	if err != nil {
		return CreateResult{}, err
	}

	result := ClassifyCreate(request, response)

	c.logger.Debug(clientLogTag, "Create %s finished with %s", resource, result.Outcome)

	return result, nil
}

// InstalledAssertions lists the assertion type names the target reports as installed.
func (c Client) InstalledAssertions() ([]string, error) {
	return c.findValues(ResourceAssertions, "", assertionNameXPath)
}

func (c Client) findValues(resource Resource, filter, xpath string) ([]string, error) {
	pages, err := c.Find(resource, filter)
	if err != nil {
		return nil, err
	}

	var result []string
	for _, page := range pages {
		values, err := page.Values(xpath)
		if err != nil {
			return nil, err
		}
		result = append(result, nonEmpty(values)...)
	}

	return result, nil
}

func (c Client) invoke(request Request) (Response, error) {
	response, err := c.invoker.Invoke(request)
	if err != nil {
		return Response{}, RequestError{
			Action:   request.Action,
			Resource: request.Resource,
			Request:  request.Text,
			Err:      err,
		}
	}

	return response, nil
}

func faultError(request Request, fault Fault) error {
	if fault.AccessDenied() {
		return AccessDeniedError{Request: request.Text, Reason: fault.Reason}
	}
	return FaultError{Fault: fault, Request: request.Text}
}

func actionName(action Action) string {
	uri := string(action)
	return uri[strings.LastIndex(uri, "/")+1:]
}
