package app_test

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	fakesys "github.com/cloudfoundry/bosh-utils/system/fakes"

	. "github.com/cloudfoundry/policy-bundle-installer/app"
	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

var _ = Describe("LoadConfigFromPath", func() {
	var fs *fakesys.FakeFileSystem

	BeforeEach(func() {
		fs = fakesys.NewFakeFileSystem()
	})

	It("loads every section", func() {
		err := fs.WriteFileString("/fake-config.json", `{
			"Endpoint": {
				"URL": "https://gw:8443/wsman",
				"CACertPath": "/fake-ca.pem",
				"MaxAttempts": 5,
				"RetryDelay": "250ms",
				"OperationTimeout": "PT1M0.000S",
				"MaxElements": 50
			},
			"Sources": [
				{"Type": "Directory", "Path": "/bundles"},
				{"Type": "Archive", "Path": "/oauth.tgz", "PathInArchive": "bundles", "StripComponents": 1}
			],
			"RootFolderID": "-5002",
			"InstallFolder": "OTK",
			"Prefix": "staging",
			"CheckAssertionExistence": true,
			"Mapping": {
				"Folders": {"123": "777"},
				"JdbcConnections": {"OAuth": "OAuthProd"},
				"HostVersion": "v1"
			}
		}`)
		Expect(err).ToNot(HaveOccurred())

		config, err := LoadConfigFromPath(fs, "/fake-config.json")
		Expect(err).ToNot(HaveOccurred())

		Expect(config.Endpoint.URL).To(Equal("https://gw:8443/wsman"))
		Expect(config.Endpoint.CACertPath).To(Equal("/fake-ca.pem"))
		Expect(config.Endpoint.MaxAttempts).To(Equal(5))
		Expect(config.Endpoint.OperationTimeout).To(Equal("PT1M0.000S"))
		Expect(config.Endpoint.MaxElements).To(Equal(50))
		Expect(config.Endpoint.RetryDelayDuration()).To(Equal(250 * time.Millisecond))

		Expect(config.Sources).To(Equal(bundle.SourceOptionsSlice{
			bundle.DirectorySourceOptions{Path: "/bundles"},
			bundle.ArchiveSourceOptions{Path: "/oauth.tgz", PathInArchive: "bundles", StripComponents: 1},
		}))

		Expect(config.RootFolderID).To(Equal("-5002"))
		Expect(config.InstallFolder).To(Equal("OTK"))
		Expect(config.Prefix).To(Equal("staging"))
		Expect(config.CheckAssertionExistence).To(BeTrue())
		Expect(config.Mapping).To(Equal(bundle.Mapping{
			Folders:         map[string]string{"123": "777"},
			JdbcConnections: map[string]string{"OAuth": "OAuthProd"},
			HostVersion:     "v1",
		}))

		Expect(config.Validate(true)).To(Succeed())
	})

	It("defaults retries", func() {
		err := fs.WriteFileString("/fake-config.json", `{"Endpoint": {"URL": "https://gw"}}`)
		Expect(err).ToNot(HaveOccurred())

		config, err := LoadConfigFromPath(fs, "/fake-config.json")
		Expect(err).ToNot(HaveOccurred())
		Expect(config.Endpoint.MaxAttempts).To(Equal(DefaultMaxAttempts))
		Expect(config.Endpoint.RetryDelayDuration()).To(Equal(DefaultRetryDelay))
	})

	It("returns an error when the path is empty", func() {
		_, err := LoadConfigFromPath(fs, "")
		Expect(err).To(HaveOccurred())
	})

	It("returns an error when the file cannot be read", func() {
		fs.ReadFileError = errors.New("fake-read-error")

		_, err := LoadConfigFromPath(fs, "/fake-config.json")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Reading file"))
	})

	It("returns an error for malformed json", func() {
		Expect(fs.WriteFileString("/fake-config.json", `{"Endpoint":`)).To(Succeed())

		_, err := LoadConfigFromPath(fs, "/fake-config.json")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Loading file"))
	})

	It("returns an error for an unknown source type", func() {
		Expect(fs.WriteFileString("/fake-config.json", `{"Sources": [{"Type": "Ftp"}]}`)).To(Succeed())

		_, err := LoadConfigFromPath(fs, "/fake-config.json")
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Unknown source type 'Ftp'"))
	})
})

var _ = Describe("Config", func() {
	var config Config

	BeforeEach(func() {
		config = Config{
			Endpoint: EndpointConfig{URL: "https://gw", MaxAttempts: 1},
			Sources:  bundle.SourceOptionsSlice{bundle.DirectorySourceOptions{Path: "/bundles"}},
		}
	})

	It("requires a source", func() {
		config.Sources = nil
		Expect(config.Validate(false)).ToNot(Succeed())
	})

	It("requires the endpoint only when talking to the target", func() {
		config.Endpoint.URL = ""
		Expect(config.Validate(false)).To(Succeed())
		Expect(config.Validate(true)).ToNot(Succeed())
	})

	It("rejects an unparseable retry delay", func() {
		config.Endpoint.RetryDelay = "soon"
		err := config.Validate(true)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Parsing retry delay 'soon'"))
	})
})
