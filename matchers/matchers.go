package matchers

import (
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
)

// HaveXPathValue succeeds when the first node selected by xpath in a
// management document has a value matching expected. expected may be a
// matcher; anything else is compared with Equal.
func HaveXPathValue(xpath string, expected interface{}) *XPathValueMatcher {
	matcher, ok := expected.(types.GomegaMatcher)
	if !ok {
		matcher = gomega.Equal(expected)
	}

	return &XPathValueMatcher{
		XPath:   xpath,
		Matcher: matcher,
	}
}
