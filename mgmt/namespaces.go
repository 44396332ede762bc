package mgmt

import (
	"github.com/ChrisTrenkamp/goxpath"
	"github.com/masterzen/simplexml/dom"
)

const (
	NSEnvelope          = "http://www.w3.org/2003/05/soap-envelope"
	NSAddressing        = "http://schemas.xmlsoap.org/ws/2004/08/addressing"
	NSEnumeration       = "http://schemas.xmlsoap.org/ws/2004/09/enumeration"
	NSWSMan             = "http://schemas.dmtf.org/wbem/wsman/1/wsman.xsd"
	NSTransfer          = "http://schemas.xmlsoap.org/ws/2004/09/transfer"
	NSGatewayManagement = "http://ns.l7tech.com/2010/04/gateway-management"
	NSPolicy            = "http://www.layer7tech.com/ws/policy"
	NSWSPolicy          = "http://schemas.xmlsoap.org/ws/2002/12/policy"

	anonymousAddress = "http://schemas.xmlsoap.org/ws/2004/08/addressing/role/anonymous"
)

var (
	nsEnv   = dom.Namespace{Prefix: "env", Uri: NSEnvelope}
	nsWSA   = dom.Namespace{Prefix: "wsa", Uri: NSAddressing}
	nsWSEN  = dom.Namespace{Prefix: "wsen", Uri: NSEnumeration}
	nsWSMan = dom.Namespace{Prefix: "wsman", Uri: NSWSMan}
	nsWXF   = dom.Namespace{Prefix: "wxf", Uri: NSTransfer}
	nsL7    = dom.Namespace{Prefix: "l7", Uri: NSGatewayManagement}

	envelopeNamespaces = []dom.Namespace{nsEnv, nsWSA, nsWSEN, nsWSMan, nsWXF, nsL7}
)

// Namespaces maps the prefixes used in queries against management documents.
var Namespaces = map[string]string{
	"env":   NSEnvelope,
	"wsa":   NSAddressing,
	"wsen":  NSEnumeration,
	"wsman": NSWSMan,
	"wxf":   NSTransfer,
	"l7":    NSGatewayManagement,
	"L7p":   NSPolicy,
	"wsp":   NSWSPolicy,
}

// WithNamespaces binds the management prefixes for a goxpath query.
func WithNamespaces(o *goxpath.Opts) {
	for prefix, uri := range Namespaces {
		o.NS[prefix] = uri
	}
}

type Resource string

const (
	ResourceFolders             Resource = "folders"
	ResourcePolicies            Resource = "policies"
	ResourceServices            Resource = "services"
	ResourceTrustedCertificates Resource = "trustedCertificates"
	ResourceJdbcConnections     Resource = "jdbcConnections"
	ResourceAssertions          Resource = "assertions"
)

func (r Resource) URI() string {
	return NSGatewayManagement + "/" + string(r)
}

type Action string

const (
	ActionCreate    Action = "http://schemas.xmlsoap.org/ws/2004/09/transfer/Create"
	ActionGet       Action = "http://schemas.xmlsoap.org/ws/2004/09/transfer/Get"
	ActionEnumerate Action = "http://schemas.xmlsoap.org/ws/2004/09/enumeration/Enumerate"
	ActionPull      Action = "http://schemas.xmlsoap.org/ws/2004/09/enumeration/Pull"
)

// Mutating reports whether requests with this action change the target.
func (a Action) Mutating() bool {
	return a == ActionCreate
}
