package matchers

import (
	"fmt"

	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"

	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

type XPathValueMatcher struct {
	XPath   string
	Matcher types.GomegaMatcher

	value string
	found bool
}

func (matcher *XPathValueMatcher) Match(actual interface{}) (success bool, err error) {
	doc, err := toDocument(actual)
	if err != nil {
		return false, err
	}

	values, err := doc.Values(matcher.XPath)
	if err != nil {
		return false, err
	}

	matcher.found = len(values) > 0
	if !matcher.found {
		return false, nil
	}

	matcher.value = values[0]

	return matcher.Matcher.Match(matcher.value)
}

func (matcher *XPathValueMatcher) FailureMessage(actual interface{}) (message string) {
	if !matcher.found {
		return format.Message(actual, "to contain a node at", matcher.XPath)
	}
	return fmt.Sprintf("at %s: %s", matcher.XPath, matcher.Matcher.FailureMessage(matcher.value))
}

func (matcher *XPathValueMatcher) NegatedFailureMessage(actual interface{}) (message string) {
	return fmt.Sprintf("at %s: %s", matcher.XPath, matcher.Matcher.NegatedFailureMessage(matcher.value))
}

func toDocument(actual interface{}) (mgmt.Document, error) {
	switch typed := actual.(type) {
	case mgmt.Document:
		return typed, nil
	case mgmt.Request:
		return mgmt.ParseDocument([]byte(typed.Text))
	case string:
		return mgmt.ParseDocument([]byte(typed))
	case []byte:
		return mgmt.ParseDocument(typed)
	default:
		return mgmt.Document{}, fmt.Errorf("HaveXPathValue expects a document, request, string or []byte. Got:\n%s", format.Object(actual, 1))
	}
}
