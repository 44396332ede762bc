package mgmt

import (
	"bytes"
	"strings"

	"github.com/ChrisTrenkamp/goxpath"
	"github.com/ChrisTrenkamp/goxpath/tree"
	"github.com/ChrisTrenkamp/goxpath/tree/xmltree"
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
)

const (
	createdIDXPath          = "/env:Envelope/env:Body/wxf:ResourceCreated/wsa:ReferenceParameters/wsman:SelectorSet/wsman:Selector[@Name='id']"
	itemIDXPath             = "//wsman:Item/wsa:EndpointReference/wsa:ReferenceParameters/wsman:SelectorSet/wsman:Selector[@Name='id']"
	enumeratedItemXPath     = "//wsman:Item"
	enumerationContextXPath = "/env:Envelope/env:Body/*/wsen:EnumerationContext"
	endOfPullXPath          = "/env:Envelope/env:Body/*/wsen:EndOfSequence"
	endOfEnumerationXPath   = "/env:Envelope/env:Body/*/wsman:EndOfSequence"
	faultSubcodeXPath       = "/env:Envelope/env:Body/env:Fault/env:Code/env:Subcode/env:Value"
	faultCodeXPath          = "/env:Envelope/env:Body/env:Fault/env:Code/env:Value"
	faultReasonXPath        = "/env:Envelope/env:Body/env:Fault/env:Reason/env:Text"
	faultDetailXPath        = "/env:Envelope/env:Body/env:Fault/env:Detail"
)

// Document is a parsed management response that can be queried with XPath.
type Document struct {
	root tree.Node
	raw  []byte
}

func ParseDocument(content []byte) (Document, error) {
	root, err := xmltree.ParseXML(bytes.NewReader(content))
	if err != nil {
		return Document{}, bosherr.WrapError(err, "Parsing management response")
	}

	return Document{root: root, raw: content}, nil
}

func (d Document) String() string {
	return string(d.raw)
}

// Values returns the string value of every node selected by xpath.
func (d Document) Values(xpath string) ([]string, error) {
	if d.root == nil {
		return nil, nil
	}

	exec, err := goxpath.Parse(xpath)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Parsing xpath '%s'", xpath)
	}

	nodes, err := exec.ExecNode(d.root, WithNamespaces)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Evaluating xpath '%s'", xpath)
	}

	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		values = append(values, strings.TrimSpace(node.ResValue()))
	}

	return values, nil
}

// Value returns the first non-empty value selected by xpath.
func (d Document) Value(xpath string) (string, bool) {
	values, err := d.Values(xpath)
	if err != nil {
		return "", false
	}

	for _, value := range values {
		if value != "" {
			return value, true
		}
	}

	return "", false
}

// CreatedID is the id selector of a ResourceCreated response.
func (d Document) CreatedID() (string, bool) {
	return d.Value(createdIDXPath)
}

// ItemIDs are the id selectors of every enumerated item.
func (d Document) ItemIDs() []string {
	values, _ := d.Values(itemIDXPath)
	return nonEmpty(values)
}

// ItemCount is the number of enumerated items in an enumeration page.
func (d Document) ItemCount() int {
	values, _ := d.Values(enumeratedItemXPath)
	return len(values)
}

// EnumerationContext is the context to pull the next page with.
func (d Document) EnumerationContext() (string, bool) {
	return d.Value(enumerationContextXPath)
}

// EndOfSequence reports whether an enumeration page is the last one. Optimized
// enumerations mark it in the wsman namespace, pulls in the enumeration one.
func (d Document) EndOfSequence() bool {
	for _, xpath := range []string{endOfEnumerationXPath, endOfPullXPath} {
		values, _ := d.Values(xpath)
		if len(values) > 0 {
			return true
		}
	}
	return false
}

func (d Document) Fault() (Fault, bool) {
	code, hasCode := d.Value(faultCodeXPath)
	subcode, hasSubcode := d.Value(faultSubcodeXPath)
	if !hasCode && !hasSubcode {
		return Fault{}, false
	}

	reason, _ := d.Value(faultReasonXPath)
	detail, _ := d.Value(faultDetailXPath)

	return Fault{
		Code:    localName(code),
		Subcode: localName(subcode),
		Reason:  reason,
		Detail:  detail,
	}, true
}

func localName(qname string) string {
	if i := strings.LastIndex(qname, ":"); i >= 0 {
		return qname[i+1:]
	}
	return qname
}

func nonEmpty(values []string) []string {
	var result []string
	for _, v := range values {
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
