package app

import (
	"io"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	"github.com/spf13/pflag"
)

type Options struct {
	ConfigPath string
	BundleIDs  []string
	DryRun     bool
	List       bool
	LogLevel   string

	// Prefix replaces the configured prefix only when PrefixSet is true, so
	// an explicit empty prefix can clear it.
	Prefix    string
	PrefixSet bool
}

func ParseOptions(args []string) (Options, error) {
	var opts Options

	if len(args) == 0 {
		return opts, bosherr.Error("Missing program name")
	}

	flags := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "path to the JSON config file")
	flags.StringArrayVarP(&opts.BundleIDs, "bundle", "b", nil, "id of a bundle to install (repeatable, installed in order)")
	flags.BoolVar(&opts.DryRun, "dry-run", false, "report conflicts instead of installing")
	flags.BoolVar(&opts.List, "list", false, "list the bundles found in the configured sources")
	flags.StringVar(&opts.Prefix, "prefix", "", "prefix for policy names and service URL patterns (overrides config)")
	flags.StringVar(&opts.LogLevel, "log-level", "INFO", "DEBUG, INFO, WARN, ERROR or NONE")

	err := flags.Parse(args[1:])
	if err != nil {
		return opts, bosherr.WrapError(err, "Parsing command line")
	}

	opts.PrefixSet = flags.Changed("prefix")

	if flags.NArg() > 0 {
		opts.BundleIDs = append(opts.BundleIDs, flags.Args()...)
	}

	if opts.List && opts.DryRun {
		return opts, bosherr.Error("--list and --dry-run cannot be combined")
	}

	return opts, nil
}
