package policy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/cloudfoundry/policy-bundle-installer/policy"
)

var _ = Describe("UpdatedHostValue", func() {
	DescribeTable("inserts the version after the host variable",
		func(value, expected string, changed bool) {
			updated, wasChanged := UpdatedHostValue("version1", value)
			Expect(updated).To(Equal(expected))
			Expect(wasChanged).To(Equal(changed))
		},
		Entry("before a path variable", "https://${host_target}${request.url.path}", "https://${host_target}/version1${request.url.path}", true),
		Entry("before a literal path", "https://${host_target}/auth/oauth/v1/token", "https://${host_target}/version1/auth/oauth/v1/token", true),
		Entry("at the end of the value", "https://${host_target}", "https://${host_target}/version1", true),
		Entry("not for a bare variable", "${host_target}", "${host_target}", false),
		Entry("not without a host variable", "https://gateway/token", "https://gateway/token", false),
		Entry("not when already versioned", "https://${host_target}/version1/token", "https://${host_target}/version1/token", false),
		Entry("for every variable", "${host_a}/x ${host_b}/y", "${host_a}/version1/x ${host_b}/version1/y", true),
	)

	It("leaves values alone without a version", func() {
		updated, changed := UpdatedHostValue("", "https://${host_target}")
		Expect(changed).To(BeFalse())
		Expect(updated).To(Equal("https://${host_target}"))
	})
})
