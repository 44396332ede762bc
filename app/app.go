package app

import (
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"

	"code.cloudfoundry.org/clock"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	boshuuid "github.com/cloudfoundry/bosh-utils/uuid"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/installer"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

const appLogTag = "App"

type App interface {
	Run(opts Options) error
	// Cancel asks the current run to stop at its next checkpoint. Safe to
	// call from a signal handler goroutine.
	Cancel()
}

type app struct {
	logger  boshlog.Logger
	fs      boshsys.FileSystem
	clock   clock.Clock
	uuidGen boshuuid.Generator
	out     io.Writer

	// invoker replaces the HTTP transport when set.
	invoker mgmt.Invoker

	cancelled int32
}

func New(logger boshlog.Logger, fs boshsys.FileSystem, clock clock.Clock, out io.Writer) App {
	return &app{
		logger:  logger,
		fs:      fs,
		clock:   clock,
		uuidGen: boshuuid.NewGenerator(),
		out:     out,
	}
}

// NewWithInvoker builds an App that talks to the target through invoker
// instead of the configured HTTP endpoint.
func NewWithInvoker(
	logger boshlog.Logger,
	fs boshsys.FileSystem,
	clock clock.Clock,
	out io.Writer,
	invoker mgmt.Invoker,
) App {
	a := New(logger, fs, clock, out).(*app)
	a.invoker = invoker
	return a
}

func (a *app) Cancel() {
	atomic.StoreInt32(&a.cancelled, 1)
}

func (a *app) isCancelled() bool {
	return atomic.LoadInt32(&a.cancelled) == 1
}

func (a *app) Run(opts Options) error {
	config, err := LoadConfigFromPath(a.fs, opts.ConfigPath)
	if err != nil {
		return bosherr.WrapError(err, "Loading config")
	}

	err = config.Validate(!opts.List)
	if err != nil {
		return bosherr.WrapError(err, "Validating config")
	}

	if opts.PrefixSet {
		config.Prefix = opts.Prefix
	}

	resolver, err := NewResolver(config.Sources, a.fs, a.logger)
	if err != nil {
		return err
	}

	defer func() {
		if err := resolver.CleanUp(); err != nil {
			a.logger.Warn(appLogTag, "Cleaning up bundle sources: %s", err.Error())
		}
	}()

	if opts.List {
		return a.list(resolver)
	}

	if len(opts.BundleIDs) == 0 {
		return bosherr.Error("No bundles requested")
	}

	client, err := a.newClient(config.Endpoint)
	if err != nil {
		return bosherr.WrapError(err, "Building management client")
	}

	runState := installer.NewRunState()

	for _, bundleID := range opts.BundleIDs {
		info, err := resolver.Info(bundleID)
		if err != nil {
			return bosherr.WrapErrorf(err, "Resolving bundle '%s'", bundleID)
		}

		ctx := installer.NewContext(info, config.Mapping, config.Prefix, resolver, config.CheckAssertionExistence)
		if config.RootFolderID != "" {
			ctx.RootFolderID = config.RootFolderID
		}
		ctx.InstallFolder = config.InstallFolder
		ctx.Cancelled = a.isCancelled

		coordinator := installer.NewCoordinator(ctx, client, runState, a.clock, a.logger)

		if opts.DryRun {
			err = a.dryRun(coordinator)
		} else {
			err = coordinator.InstallBundle()
		}

		if err != nil {
			return bosherr.WrapErrorf(err, "Bundle '%s'", bundleID)
		}
	}

	return nil
}

func (a *app) newClient(config EndpointConfig) (mgmt.Client, error) {
	invoker := a.invoker

	if invoker == nil {
		var err error

		invoker, err = NewHTTPInvoker(config, a.fs, a.logger)
		if err != nil {
			return mgmt.Client{}, err
		}
	}

	return NewManagementClient(config, invoker, a.uuidGen, a.logger), nil
}

func (a *app) list(resolver bundle.Resolver) error {
	infos, err := resolver.List()
	if err != nil {
		return bosherr.WrapError(err, "Listing bundles")
	}

	for _, info := range infos {
		fmt.Fprintf(a.out, "%s\t%s\t%s\n", info.ID, info.Version, info.Name)
	}

	return nil
}

func (a *app) dryRun(coordinator *installer.Coordinator) error {
	var report installer.ConflictReport

	err := coordinator.DryRunInstallBundle(&report)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")

	err = encoder.Encode(report)
	if err != nil {
		return bosherr.WrapError(err, "Writing conflict report")
	}

	return nil
}
