package policy

import (
	"encoding/base64"
	"encoding/xml"
	"io"
	"strings"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
)

// Rewrite describes the reference substitutions applied to a policy body
// before it is sent to the target.
type Rewrite struct {
	// IncludeGUIDs maps bundle policy guids to the guids installed on the target.
	IncludeGUIDs map[string]string

	// JdbcConnections renames JDBC connection references.
	JdbcConnections map[string]string

	// HostVersion is inserted after ${host_*} variables in routing URLs and
	// base64 context variable expressions.
	HostVersion string
}

type rewriteRule struct {
	parent  string
	element string
	apply   func(r Rewrite, value string) (string, bool)
}

var rewriteRules = []rewriteRule{
	{parent: "Include", element: "PolicyGuid", apply: Rewrite.includeGUID},
	{parent: "JdbcQuery", element: "ConnectionName", apply: Rewrite.jdbcConnection},
	{parent: "HttpRoutingAssertion", element: "ProtectedServiceUrl", apply: Rewrite.protectedServiceURL},
	{parent: "SetVariable", element: "Base64Expression", apply: Rewrite.base64Expression},
}

func (r Rewrite) Empty() bool {
	return len(r.IncludeGUIDs) == 0 && len(r.JdbcConnections) == 0 && r.HostVersion == ""
}

// Apply returns body with every applicable stringValue rewritten. Prefixes,
// attribute order and comments are kept; CDATA sections are written as
// escaped character data.
func (r Rewrite) Apply(body string) (string, error) {
	if r.Empty() {
		return body, nil
	}

	w := &bodyWriter{rewrite: r}

	decoder := xml.NewDecoder(strings.NewReader(body))
	for {
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", bosherr.WrapError(err, "Reading policy body")
		}

		if err := w.write(token); err != nil {
			return "", err
		}
	}

	if len(w.open) > 0 {
		return "", bosherr.Errorf("Reading policy body: element '%s' is not closed", w.open[len(w.open)-1].raw.Local)
	}

	w.flush(false)

	return w.out.String(), nil
}

func (r Rewrite) includeGUID(value string) (string, bool) {
	newGUID, found := r.IncludeGUIDs[strings.TrimSpace(value)]
	return newGUID, found && newGUID != ""
}

func (r Rewrite) jdbcConnection(value string) (string, bool) {
	renamed, found := r.JdbcConnections[strings.TrimSpace(value)]
	return renamed, found && renamed != ""
}

func (r Rewrite) protectedServiceURL(value string) (string, bool) {
	if r.HostVersion == "" {
		return "", false
	}
	return UpdatedHostValue(r.HostVersion, value)
}

func (r Rewrite) base64Expression(value string) (string, bool) {
	if r.HostVersion == "" {
		return "", false
	}

	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", false
	}

	updated, changed := UpdatedHostValue(r.HostVersion, string(decoded))
	if !changed {
		return "", false
	}

	return base64.StdEncoding.EncodeToString([]byte(updated)), true
}

type openElement struct {
	raw   xml.Name
	name  xml.Name
	scope map[string]string
}

type bodyWriter struct {
	rewrite Rewrite
	out     strings.Builder
	open    []openElement
	pending *xml.StartElement
}

func (w *bodyWriter) write(token xml.Token) error {
	switch t := token.(type) {
	case xml.StartElement:
		w.flush(false)
		w.start(t.Copy())
	case xml.EndElement:
		if len(w.open) == 0 || w.open[len(w.open)-1].raw != t.Name {
			return bosherr.Errorf("Reading policy body: unexpected end element '%s'", qualified(t.Name))
		}
		w.open = w.open[:len(w.open)-1]
		if w.pending != nil {
			w.flush(true)
			return nil
		}
		w.out.WriteString("</" + qualified(t.Name) + ">")
	case xml.CharData:
		w.flush(false)
		w.out.WriteString(textReplacer.Replace(string(t)))
	case xml.Comment:
		w.flush(false)
		w.out.WriteString("<!--" + string(t) + "-->")
	case xml.ProcInst:
		w.flush(false)
		w.out.WriteString("<?" + t.Target)
		if len(t.Inst) > 0 {
			w.out.WriteString(" " + string(t.Inst))
		}
		w.out.WriteString("?>")
	case xml.Directive:
		w.flush(false)
		w.out.WriteString("<!" + string(t) + ">")
	}
	return nil
}

func (w *bodyWriter) start(start xml.StartElement) {
	scope := map[string]string{}
	var parent *openElement
	if len(w.open) > 0 {
		parent = &w.open[len(w.open)-1]
		for prefix, uri := range parent.scope {
			scope[prefix] = uri
		}
	}
	for _, attr := range start.Attr {
		switch {
		case attr.Name.Space == "xmlns":
			scope[attr.Name.Local] = attr.Value
		case attr.Name.Space == "" && attr.Name.Local == "xmlns":
			scope[""] = attr.Value
		}
	}

	element := openElement{
		raw:   start.Name,
		name:  xml.Name{Space: scope[start.Name.Space], Local: start.Name.Local},
		scope: scope,
	}

	if parent != nil && parent.name.Space == NSPolicy && element.name.Space == NSPolicy {
		w.rewriteAttrs(parent.name.Local, element.name.Local, start.Attr)
	}

	w.open = append(w.open, element)
	w.pending = &start
}

func (w *bodyWriter) rewriteAttrs(parent, element string, attrs []xml.Attr) {
	for _, rule := range rewriteRules {
		if rule.parent != parent || rule.element != element {
			continue
		}
		for i := range attrs {
			if attrs[i].Name.Space != "" || attrs[i].Name.Local != "stringValue" {
				continue
			}
			if value, changed := rule.apply(w.rewrite, attrs[i].Value); changed {
				attrs[i].Value = value
			}
		}
	}
}

// flush writes a buffered start tag, self-closing it when the element was empty.
func (w *bodyWriter) flush(selfClosing bool) {
	if w.pending == nil {
		return
	}

	start := w.pending
	w.pending = nil

	w.out.WriteString("<" + qualified(start.Name))
	for _, attr := range start.Attr {
		w.out.WriteString(" " + qualified(attr.Name) + `="` + attrReplacer.Replace(attr.Value) + `"`)
	}

	if selfClosing {
		w.out.WriteString("/>")
	} else {
		w.out.WriteString(">")
	}
}

func qualified(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

var (
	textReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\r", "&#xD;")
	attrReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "\r", "&#xD;", "\n", "&#xA;", "\t", "&#x9;")
)
