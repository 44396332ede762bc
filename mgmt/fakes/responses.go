package fakes

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

const envelopeOpen = `<env:Envelope xmlns:env="` + mgmt.NSEnvelope +
	`" xmlns:wsa="` + mgmt.NSAddressing +
	`" xmlns:wsen="` + mgmt.NSEnumeration +
	`" xmlns:wsman="` + mgmt.NSWSMan +
	`" xmlns:wxf="` + mgmt.NSTransfer +
	`" xmlns:l7="` + mgmt.NSGatewayManagement + `"><env:Header/><env:Body>`

const envelopeClose = `</env:Body></env:Envelope>`

type Item struct {
	ID     string
	Entity string
}

func CreatedResponseXML(resource mgmt.Resource, id string) string {
	return envelopeOpen +
		`<wxf:ResourceCreated><wsa:Address env:mustUnderstand="true">https://localhost:8443/wsman</wsa:Address>` +
		`<wsa:ReferenceParameters><wsman:ResourceURI>` + resource.URI() + `</wsman:ResourceURI>` +
		`<wsman:SelectorSet><wsman:Selector Name="id">` + escape(id) + `</wsman:Selector></wsman:SelectorSet>` +
		`</wsa:ReferenceParameters></wxf:ResourceCreated>` +
		envelopeClose
}

func FaultResponseXML(subcode, reason string) string {
	prefix := "wsman:"
	if subcode == mgmt.SubcodeInvalidRepresentation {
		prefix = "wxf:"
	}

	return envelopeOpen +
		`<env:Fault><env:Code><env:Value>env:Sender</env:Value>` +
		`<env:Subcode><env:Value>` + prefix + subcode + `</env:Value></env:Subcode></env:Code>` +
		`<env:Reason><env:Text xml:lang="en-US">` + escape(reason) + `</env:Text></env:Reason>` +
		`<env:Detail><env:Text xml:lang="en-US">` + escape(reason) + `</env:Text></env:Detail>` +
		`</env:Fault>` +
		envelopeClose
}

// EnumerateResponseXML is a complete optimized enumeration holding every item.
func EnumerateResponseXML(resource mgmt.Resource, items ...Item) string {
	return EnumeratePageXML(resource, "", true, items...)
}

// EnumeratePageXML is the first page of an optimized enumeration. A non-empty
// context is returned for the client to pull the rest with.
func EnumeratePageXML(resource mgmt.Resource, context string, end bool, items ...Item) string {
	return pageXML("EnumerateResponse", "wsman", resource, context, end, items)
}

// PullResponseXML is a page answering a pull.
func PullResponseXML(resource mgmt.Resource, context string, end bool, items ...Item) string {
	return pageXML("PullResponse", "wsen", resource, context, end, items)
}

func pageXML(element, itemsPrefix string, resource mgmt.Resource, context string, end bool, items []Item) string {
	var b strings.Builder

	b.WriteString(envelopeOpen)
	b.WriteString(`<wsen:` + element + `>`)
	if context == "" {
		b.WriteString(`<wsen:EnumerationContext/>`)
	} else {
		b.WriteString(`<wsen:EnumerationContext>` + escape(context) + `</wsen:EnumerationContext>`)
	}
	b.WriteString(`<` + itemsPrefix + `:Items>`)
	for _, item := range items {
		b.WriteString(`<wsman:Item>`)
		b.WriteString(item.Entity)
		b.WriteString(`<wsa:EndpointReference><wsa:Address env:mustUnderstand="true">https://localhost:8443/wsman</wsa:Address>`)
		b.WriteString(`<wsa:ReferenceParameters><wsman:ResourceURI>` + resource.URI() + `</wsman:ResourceURI>`)
		b.WriteString(`<wsman:SelectorSet><wsman:Selector Name="id">` + escape(item.ID) + `</wsman:Selector></wsman:SelectorSet>`)
		b.WriteString(`</wsa:ReferenceParameters></wsa:EndpointReference></wsman:Item>`)
	}
	b.WriteString(`</` + itemsPrefix + `:Items>`)
	if end {
		b.WriteString(`<` + itemsPrefix + `:EndOfSequence/>`)
	}
	b.WriteString(`</wsen:` + element + `>`)
	b.WriteString(envelopeClose)

	return b.String()
}

func GetResponseXML(entity string) string {
	return envelopeOpen + entity + envelopeClose
}

func PolicyEntityXML(guid, folderID, name string) string {
	return `<l7:Policy xmlns:l7="` + mgmt.NSGatewayManagement + `" guid="` + escape(guid) + `">` +
		`<l7:PolicyDetail folderId="` + escape(folderID) + `" guid="` + escape(guid) + `">` +
		`<l7:Name>` + escape(name) + `</l7:Name><l7:PolicyType>Include</l7:PolicyType></l7:PolicyDetail></l7:Policy>`
}

func NamedEntityXML(element, name string) string {
	return `<l7:` + element + ` xmlns:l7="` + mgmt.NSGatewayManagement + `"><l7:Name>` + escape(name) + `</l7:Name></l7:` + element + `>`
}

// Document parses one of the response builders' outputs.
func Document(content string) mgmt.Document {
	doc, err := mgmt.ParseDocument([]byte(content))
	if err != nil {
		panic(err)
	}
	return doc
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
