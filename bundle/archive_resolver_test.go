package bundle_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cloudfoundry/bosh-utils/fileutil"
	fakefileutil "github.com/cloudfoundry/bosh-utils/fileutil/fakes"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"
	. "github.com/cloudfoundry/policy-bundle-installer/bundle"
)

var _ = Describe("ArchiveResolver", func() {
	var (
		fs             *fakesys.FakeFileSystem
		fakeCompressor *fakefileutil.FakeCompressor
		resolver       *ArchiveResolver
	)

	BeforeEach(func() {
		fs = fakesys.NewFakeFileSystem()
		fs.TempDirDir = "/tmp/unpacked"
		fakeCompressor = fakefileutil.NewFakeCompressor()

		fakeCompressor.DecompressFileToDirCallBack = func() {
			dir := fakeCompressor.DecompressFileToDirDirs[len(fakeCompressor.DecompressFileToDirDirs)-1]
			Expect(fs.WriteFileString(dir+"/oauth/BundleInfo.xml", bundleInfoXML("oauth-id", "OAuth"))).To(Succeed())
			Expect(fs.WriteFileString(dir+"/oauth/Policy.xml", "<policies/>")).To(Succeed())
			fs.SetGlob(dir+"/*/BundleInfo.xml", []string{dir + "/oauth/BundleInfo.xml"})
		}

		resolver = NewArchiveResolver(
			"/archives/bundles.tgz",
			fileutil.CompressorOptions{PathInArchive: "bundles", StripComponents: 1},
			fs,
			fakeCompressor,
			boshlog.NewLogger(boshlog.LevelNone),
		)
	})

	It("unpacks the archive once and serves its bundles", func() {
		infos, err := resolver.List()
		Expect(err).ToNot(HaveOccurred())
		Expect(infos).To(HaveLen(1))

		content, err := resolver.GetBundleItem("oauth-id", KindPolicy, false)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(content)).To(Equal("<policies/>"))

		Expect(fakeCompressor.DecompressFileToDirTarballPaths).To(Equal([]string{"/archives/bundles.tgz"}))
		Expect(fakeCompressor.DecompressFileToDirDirs).To(Equal([]string{"/tmp/unpacked"}))
		Expect(fakeCompressor.DecompressFileToDirOptions[0]).To(Equal(
			fileutil.CompressorOptions{PathInArchive: "bundles", StripComponents: 1}))
	})

	It("removes the unpacked contents on clean up", func() {
		_, err := resolver.List()
		Expect(err).ToNot(HaveOccurred())
		Expect(fs.FileExists("/tmp/unpacked/oauth/BundleInfo.xml")).To(BeTrue())

		Expect(resolver.CleanUp()).To(Succeed())
		Expect(fs.FileExists("/tmp/unpacked/oauth/BundleInfo.xml")).To(BeFalse())
	})

	It("reports decompression failures as resolver errors", func() {
		fakeCompressor.DecompressFileToDirErr = errors.New("fake-decompress-error")

		_, err := resolver.GetBundleItem("oauth-id", KindPolicy, false)
		Expect(err).To(HaveOccurred())

		var resolverErr ResolverError
		Expect(errors.As(err, &resolverErr)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("fake-decompress-error"))
	})
})
