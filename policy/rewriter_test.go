package policy_test

import (
	"encoding/base64"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	. "github.com/cloudfoundry/policy-bundle-installer/policy"
)

var _ = Describe("Rewrite", func() {
	It("returns the body untouched when there is nothing to rewrite", func() {
		body, err := Rewrite{}.Apply(routingAndJdbcPolicy)
		Expect(err).ToNot(HaveOccurred())
		Expect(body).To(Equal(routingAndJdbcPolicy))
	})

	It("points includes at the installed guids", func() {
		rewrite := Rewrite{IncludeGUIDs: map[string]string{
			"f0eb1f7b-392b-40a4-9f4f-46d00ffad3d3": "new-guid-1",
			"60cec430-0767-429c-8eff-62891c2eb343": "new-guid-2",
		}}

		body, err := rewrite.Apply(routingAndJdbcPolicy)
		Expect(err).ToNot(HaveOccurred())

		refs, err := Scan(bundle.KindPolicy, "p", body)
		Expect(err).ToNot(HaveOccurred())
		Expect(refs.IncludeGUIDs).To(Equal([]string{"new-guid-1", "new-guid-2"}))
	})

	It("renames mapped JDBC connections only", func() {
		rewrite := Rewrite{JdbcConnections: map[string]string{"OAuth": "OAuthProd"}}

		body, err := rewrite.Apply(routingAndJdbcPolicy)
		Expect(err).ToNot(HaveOccurred())

		refs, err := Scan(bundle.KindPolicy, "p", body)
		Expect(err).ToNot(HaveOccurred())
		Expect(refs.JdbcConnections).To(Equal([]string{"OAuthProd", "Audit"}))
	})

	It("versions host variables in routing urls", func() {
		body, err := Rewrite{HostVersion: "v1"}.Apply(routingAndJdbcPolicy)
		Expect(err).ToNot(HaveOccurred())

		Expect(body).To(ContainSubstring(`stringValue="${host_oauth_ovp_server}/v1/oauth/validation/validate/v1/signature"`))
		Expect(body).To(ContainSubstring(`stringValue="https://${host_oauth_tokenstore_server}/v1"`))
		Expect(body).To(ContainSubstring(`stringValue="${host_target}"`))
	})

	It("versions host variables inside base64 context variables", func() {
		expression := base64.StdEncoding.EncodeToString([]byte("${host_oauth_endpoint}/auth/oauth/v1/token"))
		policy := `<wsp:Policy xmlns:L7p="http://www.layer7tech.com/ws/policy" xmlns:wsp="http://schemas.xmlsoap.org/ws/2002/12/policy"><wsp:All>` +
			`<L7p:SetVariable><L7p:Base64Expression stringValue="` + expression + `"/><L7p:VariableToSet stringValue="oauth.endpoint"/></L7p:SetVariable>` +
			`</wsp:All></wsp:Policy>`

		body, err := Rewrite{HostVersion: "v1"}.Apply(policy)
		Expect(err).ToNot(HaveOccurred())

		expected := base64.StdEncoding.EncodeToString([]byte("${host_oauth_endpoint}/v1/auth/oauth/v1/token"))
		Expect(body).To(ContainSubstring(`stringValue="` + expected + `"`))
	})

	It("keeps prefixes, comments and the remaining content", func() {
		body, err := Rewrite{JdbcConnections: map[string]string{"Audit": "AuditProd"}}.Apply(routingAndJdbcPolicy)
		Expect(err).ToNot(HaveOccurred())

		Expect(body).To(HavePrefix(`<?xml version="1.0" encoding="UTF-8"?>`))
		Expect(body).To(ContainSubstring(`<wsp:All wsp:Usage="Required">`))
		Expect(body).To(ContainSubstring(`<L7p:SslAssertion/>`))
		Expect(body).To(ContainSubstring(`<!-- routed as is -->`))
		Expect(body).To(ContainSubstring(`${request.http.parameter.client_key} and 1 &lt; 2`))

		refs, err := Scan(bundle.KindPolicy, "p", body)
		Expect(err).ToNot(HaveOccurred())
		Expect(refs.AssertionTypes).To(HaveLen(6))
	})

	It("ignores look-alike elements outside the policy namespace", func() {
		policy := `<wsp:Policy xmlns:wsp="http://schemas.xmlsoap.org/ws/2002/12/policy" xmlns:x="urn:other">` +
			`<x:JdbcQuery><x:ConnectionName stringValue="OAuth"/></x:JdbcQuery></wsp:Policy>`

		body, err := Rewrite{JdbcConnections: map[string]string{"OAuth": "OAuthProd"}}.Apply(policy)
		Expect(err).ToNot(HaveOccurred())
		Expect(body).To(ContainSubstring(`stringValue="OAuth"`))
	})

	It("rejects unbalanced bodies", func() {
		_, err := Rewrite{HostVersion: "v1"}.Apply(`<wsp:Policy xmlns:wsp="http://schemas.xmlsoap.org/ws/2002/12/policy"><wsp:All>`)
		Expect(err).To(HaveOccurred())

		_, err = Rewrite{HostVersion: "v1"}.Apply(`<a><b></a></b>`)
		Expect(err).To(HaveOccurred())
	})
})
