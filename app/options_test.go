package app_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	. "github.com/cloudfoundry/policy-bundle-installer/app"
)

var _ = Describe("ParseOptions", func() {
	It("parses config path", func() {
		opts, err := ParseOptions([]string{"policy-bundle-installer", "-c", "/fake-path"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.ConfigPath).To(Equal("/fake-path"))

		opts, err = ParseOptions([]string{"policy-bundle-installer", "--config=/other-path"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.ConfigPath).To(Equal("/other-path"))
	})

	It("collects bundles from repeated flags and positional arguments in order", func() {
		opts, err := ParseOptions([]string{"policy-bundle-installer", "-b", "first", "--bundle", "second", "third"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.BundleIDs).To(Equal([]string{"first", "second", "third"}))
	})

	It("tracks whether the prefix was given", func() {
		opts, err := ParseOptions([]string{"policy-bundle-installer"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.PrefixSet).To(BeFalse())

		opts, err = ParseOptions([]string{"policy-bundle-installer", "--prefix="})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.PrefixSet).To(BeTrue())
		Expect(opts.Prefix).To(Equal(""))

		opts, err = ParseOptions([]string{"policy-bundle-installer", "--prefix", "staging"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.Prefix).To(Equal("staging"))
	})

	It("parses the mode flags", func() {
		opts, err := ParseOptions([]string{"policy-bundle-installer", "--dry-run", "--log-level", "DEBUG"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.DryRun).To(BeTrue())
		Expect(opts.List).To(BeFalse())
		Expect(opts.LogLevel).To(Equal("DEBUG"))

		opts, err = ParseOptions([]string{"policy-bundle-installer", "--list"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts.List).To(BeTrue())
		Expect(opts.LogLevel).To(Equal("INFO"))
	})

	It("rejects listing combined with a dry run", func() {
		_, err := ParseOptions([]string{"policy-bundle-installer", "--list", "--dry-run"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown flags", func() {
		_, err := ParseOptions([]string{"policy-bundle-installer", "--force"})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("Parsing command line"))
	})
})
