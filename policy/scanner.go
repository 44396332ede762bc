package policy

import (
	"strings"
	"unicode"

	"github.com/ChrisTrenkamp/goxpath"
	"github.com/ChrisTrenkamp/goxpath/tree"
	"github.com/ChrisTrenkamp/goxpath/tree/xmltree"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

const (
	NSPolicy   = "http://www.layer7tech.com/ws/policy"
	NSWSPolicy = "http://schemas.xmlsoap.org/ws/2002/12/policy"
)

var (
	rootXPath           = goxpath.MustParse("/wsp:Policy")
	includeGUIDXPath    = goxpath.MustParse("//L7p:Include/L7p:PolicyGuid/@stringValue")
	jdbcConnectionXPath = goxpath.MustParse("//L7p:JdbcQuery/L7p:ConnectionName/@stringValue")
	assertionXPath      = goxpath.MustParse("//wsp:*/L7p:*")
)

func withPolicyNamespaces(o *goxpath.Opts) {
	o.NS["L7p"] = NSPolicy
	o.NS["wsp"] = NSWSPolicy
}

// References are the distinct external names a policy body depends on, in
// order of first appearance.
type References struct {
	IncludeGUIDs    []string
	JdbcConnections []string
	AssertionTypes  []string
}

// Scan extracts include guids, JDBC connection names and assertion type names
// from a policy body. kind and entityID identify the owning entity in errors.
func Scan(kind bundle.ItemKind, entityID string, body string) (References, error) {
	root, err := xmltree.ParseXML(strings.NewReader(strings.TrimSpace(body)))
	if err != nil {
		return References{}, bundle.InvalidBundleError{
			Kind:     kind,
			EntityID: entityID,
			Reason:   "policy body is not well formed",
			Err:      err,
		}
	}

	policies, err := rootXPath.ExecNode(root, withPolicyNamespaces)
	if err != nil || len(policies) == 0 {
		return References{}, bundle.NewInvalidBundleError(kind, entityID, "policy body has no wsp:Policy root")
	}

	var refs References

	if refs.IncludeGUIDs, err = distinctValues(root, includeGUIDXPath); err != nil {
		return References{}, bundle.InvalidBundleError{Kind: kind, EntityID: entityID, Reason: "reading includes", Err: err}
	}

	if refs.JdbcConnections, err = distinctValues(root, jdbcConnectionXPath); err != nil {
		return References{}, bundle.InvalidBundleError{Kind: kind, EntityID: entityID, Reason: "reading JDBC references", Err: err}
	}

	if refs.AssertionTypes, err = assertionTypes(root); err != nil {
		return References{}, bundle.InvalidBundleError{Kind: kind, EntityID: entityID, Reason: "reading assertions", Err: err}
	}

	return refs, nil
}

func distinctValues(root tree.Node, exec goxpath.XPathExec) ([]string, error) {
	nodes, err := exec.ExecNode(root, withPolicyNamespaces)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, len(nodes))
	for _, node := range nodes {
		values = append(values, strings.TrimSpace(node.ResValue()))
	}

	return distinct(values), nil
}

// assertionTypes names the L7p elements placed directly inside a wsp
// composite. Lower case names are assertion properties, not assertions.
func assertionTypes(root tree.Node) ([]string, error) {
	nodes, err := assertionXPath.ExecNode(root, withPolicyNamespaces)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, node := range nodes {
		name, ok := elementName(node)
		if !ok || name.Local == "" {
			continue
		}
		if unicode.IsLower(rune(name.Local[0])) {
			continue
		}
		names = append(names, name.Local)
	}

	return distinct(names), nil
}

func distinct(values []string) []string {
	seen := map[string]bool{}
	var result []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		result = append(result, v)
	}
	return result
}
