package bundle_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	fakefileutil "github.com/cloudfoundry/bosh-utils/fileutil/fakes"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"
	. "github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/bundle/fakes"
)

var _ = Describe("SourceOptionsSlice", func() {
	It("unmarshals every source type", func() {
		var sources SourceOptionsSlice

		err := json.Unmarshal([]byte(`[
			{"Type": "Directory", "Path": "/var/bundles"},
			{"Type": "Archive", "Path": "/tmp/b.tgz", "PathInArchive": "bundles", "StripComponents": 1}
		]`), &sources)
		Expect(err).ToNot(HaveOccurred())

		Expect(sources).To(Equal(SourceOptionsSlice{
			DirectorySourceOptions{Path: "/var/bundles"},
			ArchiveSourceOptions{Path: "/tmp/b.tgz", PathInArchive: "bundles", StripComponents: 1},
		}))
	})

	It("rejects sources without a type", func() {
		var sources SourceOptionsSlice
		err := json.Unmarshal([]byte(`[{"Path": "/var/bundles"}]`), &sources)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Missing source type"))
	})

	It("rejects unknown types", func() {
		var sources SourceOptionsSlice
		err := json.Unmarshal([]byte(`[{"Type": "S3"}]`), &sources)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Unknown source type 'S3'"))
	})
})

var _ = Describe("SourceFactory", func() {
	var (
		fs      *fakesys.FakeFileSystem
		factory SourceFactory
	)

	BeforeEach(func() {
		fs = fakesys.NewFakeFileSystem()
		factory = NewSourceFactory(fs, fakefileutil.NewFakeCompressor(), boshlog.NewLogger(boshlog.LevelNone))
	})

	It("requires at least one source", func() {
		_, err := factory.New(nil)
		Expect(err).To(HaveOccurred())
	})

	It("requires source paths", func() {
		_, err := factory.New(SourceOptionsSlice{DirectorySourceOptions{}})
		Expect(err).To(HaveOccurred())

		_, err = factory.New(SourceOptionsSlice{ArchiveSourceOptions{}})
		Expect(err).To(HaveOccurred())
	})

	It("resolves from the first source that knows the bundle", func() {
		Expect(fs.WriteFileString("/one/a/BundleInfo.xml", bundleInfoXML("a-id", "A"))).To(Succeed())
		Expect(fs.WriteFileString("/two/b/BundleInfo.xml", bundleInfoXML("b-id", "B"))).To(Succeed())
		Expect(fs.WriteFileString("/two/b/Service.xml", "<services/>")).To(Succeed())
		fs.SetGlob("/one/*/BundleInfo.xml", []string{"/one/a/BundleInfo.xml"})
		fs.SetGlob("/two/*/BundleInfo.xml", []string{"/two/b/BundleInfo.xml"})

		resolver, err := factory.New(SourceOptionsSlice{
			DirectorySourceOptions{Path: "/one"},
			DirectorySourceOptions{Path: "/two"},
		})
		Expect(err).ToNot(HaveOccurred())

		content, err := resolver.GetBundleItem("b-id", KindService, false)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("<services/>"))

		info, err := resolver.Info("a-id")
		Expect(err).ToNot(HaveOccurred())
		Expect(info.Name).To(Equal("A"))

		_, err = resolver.GetBundleItem("c-id", KindService, false)
		Expect(err).To(Equal(UnknownBundleError{BundleID: "c-id"}))
	})
})

var _ = Describe("MultiResolver", func() {
	It("drops shadowed bundle ids from the catalog", func() {
		first := fakes.NewFakeResolver()
		first.AddBundle(Info{ID: "x", Name: "first"})
		second := fakes.NewFakeResolver()
		second.AddBundle(Info{ID: "x", Name: "second"})
		second.AddBundle(Info{ID: "y", Name: "other"})

		resolver := NewMultiResolver([]Resolver{first, second}, boshlog.NewLogger(boshlog.LevelNone))

		infos, err := resolver.List()
		Expect(err).ToNot(HaveOccurred())
		Expect(infos).To(Equal([]Info{{ID: "x", Name: "first"}, {ID: "y", Name: "other"}}))
	})
})
