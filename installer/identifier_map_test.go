package installer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	. "github.com/cloudfoundry/policy-bundle-installer/installer"
)

var _ = Describe("IdentifierMap", func() {
	var identifiers *IdentifierMap

	BeforeEach(func() {
		identifiers = NewIdentifierMap(bundle.KindFolder)
	})

	It("records each old id once", func() {
		Expect(identifiers.Put("123", "1000")).To(Succeed())
		Expect(identifiers.Put("123", "1000")).To(Succeed())

		err := identifiers.Put("123", "1001")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Folder '123' is already mapped to '1000'"))

		newID, found := identifiers.Get("123")
		Expect(found).To(BeTrue())
		Expect(newID).To(Equal("1000"))
		Expect(identifiers.Len()).To(Equal(1))
	})

	It("returns copies and sorted old ids", func() {
		Expect(identifiers.Put("b", "2")).To(Succeed())
		Expect(identifiers.Put("a", "1")).To(Succeed())

		copied := identifiers.ToMap()
		copied["c"] = "3"

		Expect(identifiers.ToMap()).ToNot(HaveKey("c"))
		Expect(identifiers.OldIDs()).To(Equal([]string{"a", "b"}))
	})
})

var _ = Describe("IdentifierMaps", func() {
	It("falls back to earlier runs for policies and services", func() {
		previous := NewRunState()
		previous.Policies["old-guid"] = "earlier-guid"
		previous.Services["5001"] = "1005"

		maps := NewIdentifierMaps(previous)
		Expect(maps.Policies.Put("new-guid", "gw-guid")).To(Succeed())

		guid, found := maps.PolicyGUID("old-guid")
		Expect(found).To(BeTrue())
		Expect(guid).To(Equal("earlier-guid"))

		guid, found = maps.PolicyGUID("new-guid")
		Expect(found).To(BeTrue())
		Expect(guid).To(Equal("gw-guid"))

		_, found = maps.ServiceID("5001")
		Expect(found).To(BeTrue())

		_, found = maps.ServiceID("5002")
		Expect(found).To(BeFalse())
	})

	It("merges into the run state, later runs overwriting folders", func() {
		state := NewRunState()
		state.Folders["123"] = "1000"

		maps := NewIdentifierMaps(state)
		Expect(maps.Folders.Put("123", "2000")).To(Succeed())
		Expect(maps.Certificates.Put("7001", "1007")).To(Succeed())

		state.Merge(maps)

		Expect(state.Folders).To(Equal(map[string]string{"123": "2000"}))
		Expect(state.Certificates).To(Equal(map[string]string{"7001": "1007"}))
	})
})

var _ = Describe("State", func() {
	It("names the phases", func() {
		Expect(InstallingPolicies.String()).To(Equal("Policies"))
		Expect(State(42).String()).To(Equal("Unknown"))
	})

	It("knows the terminal states", func() {
		Expect(Complete.Terminal()).To(BeTrue())
		Expect(Cancelled.Terminal()).To(BeTrue())
		Expect(Failed.Terminal()).To(BeTrue())
		Expect(InstallingServices.Terminal()).To(BeFalse())
	})
})
