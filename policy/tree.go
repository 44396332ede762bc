package policy

import (
	"encoding/xml"

	"github.com/ChrisTrenkamp/goxpath/tree"
)

func elementName(node tree.Node) (xml.Name, bool) {
	if node.GetNodeType() != tree.NtElem {
		return xml.Name{}, false
	}

	start, ok := node.GetToken().(xml.StartElement)
	if !ok {
		return xml.Name{}, false
	}

	return start.Name, true
}
