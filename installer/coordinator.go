package installer

import (
	"errors"

	"code.cloudfoundry.org/clock"
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

const coordinatorLogTag = "Coordinator"

type entityInstaller interface {
	Install(ctx *Context, maps IdentifierMaps) error
}

type phase struct {
	state State
	kind  bundle.ItemKind
}

// phases run strictly in this order; each consumes the maps of the earlier ones.
var phases = []phase{
	{state: InstallingFolders, kind: bundle.KindFolder},
	{state: InstallingPolicies, kind: bundle.KindPolicy},
	{state: InstallingServices, kind: bundle.KindService},
	{state: InstallingCertificates, kind: bundle.KindTrustedCertificate},
}

// Coordinator runs one installation or dry run of one bundle. It is not safe
// for concurrent use and cannot be reused once a run has finished.
type Coordinator struct {
	ctx        Context
	installers map[bundle.ItemKind]entityInstaller
	analyzer   ConflictAnalyzer
	runState   *RunState
	maps       IdentifierMaps
	state      State
	clock      clock.Clock
	logger     boshlog.Logger
}

// NewCoordinator builds a coordinator for ctx. runState carries identifier
// maps between the bundles of one invocation and may be nil.
func NewCoordinator(
	ctx Context,
	client ManagementClient,
	runState *RunState,
	clock clock.Clock,
	logger boshlog.Logger,
) *Coordinator {
	if runState == nil {
		runState = NewRunState()
	}

	includes := NewIncludeResolver(client, logger)

	return &Coordinator{
		ctx: ctx,
		installers: map[bundle.ItemKind]entityInstaller{
			bundle.KindFolder:             NewFolderInstaller(client, logger),
			bundle.KindPolicy:             NewPolicyInstaller(client, includes, logger),
			bundle.KindService:            NewServiceInstaller(client, includes, logger),
			bundle.KindTrustedCertificate: NewCertificateInstaller(client, logger),
		},
		analyzer: NewConflictAnalyzer(client, clock, logger),
		runState: runState,
		maps:     NewIdentifierMaps(runState),
		state:    NotStarted,
		clock:    clock,
		logger:   logger,
	}
}

func (c *Coordinator) State() State {
	return c.state
}

// IdentifierMaps returns the maps built so far, including after a failure.
func (c *Coordinator) IdentifierMaps() IdentifierMaps {
	return c.maps
}

// InstallBundle installs the bundle phase by phase. It returns nil once the
// run is Complete, CancelledError when the run was cancelled and
// InstallationError on any other failure. Nothing already created is undone.
func (c *Coordinator) InstallBundle() error {
	if c.state != NotStarted {
		return bosherr.Errorf("Bundle %s was already installed by this coordinator (%s)", c.ctx.BundleInfo.ID, c.state)
	}

	startedAt := c.clock.Now()
	c.logger.Info(coordinatorLogTag, "Installing bundle %s", c.ctx.BundleInfo)

	defer c.runState.Merge(c.maps)

	for _, p := range phases {
		if c.ctx.IsCancelled() {
			return c.cancel()
		}

		c.transition(p.state)

		err := c.installers[p.kind].Install(&c.ctx, c.maps)
		if err != nil {
			return c.fail(p.kind, err)
		}
	}

	if c.ctx.IsCancelled() {
		return c.cancel()
	}

	c.transition(Complete)

	c.logger.Info(coordinatorLogTag, "Installed bundle %s in %s: %d folders, %d policies, %d services, %d certificates",
		c.ctx.BundleInfo.ID, c.clock.Since(startedAt),
		c.maps.Folders.Len(), c.maps.Policies.Len(), c.maps.Services.Len(), c.maps.Certificates.Len())

	return nil
}

// DryRunInstallBundle fills report with the bundle's conflicts against the
// target. Conflicts are data; only failures to read the bundle or to talk to
// the target are errors.
func (c *Coordinator) DryRunInstallBundle(report *ConflictReport) error {
	if report == nil {
		return bosherr.Error("Dry run requires a report")
	}

	c.logger.Info(coordinatorLogTag, "Dry run of bundle %s", c.ctx.BundleInfo)

	result, err := c.analyzer.Analyze(&c.ctx)
	if err != nil {
		return err
	}

	*report = result

	return nil
}

func (c *Coordinator) transition(state State) {
	c.logger.Info(coordinatorLogTag, "Bundle %s: %s -> %s", c.ctx.BundleInfo.ID, c.state, state)
	c.state = state
}

func (c *Coordinator) cancel() error {
	err := CancelledError{State: c.state}
	c.transition(Cancelled)
	return err
}

func (c *Coordinator) fail(kind bundle.ItemKind, err error) error {
	if errors.Is(err, errCancelled) {
		return c.cancel()
	}

	var installErr InstallationError
	if !errors.As(entityError(kind, "", err), &installErr) {
		installErr = InstallationError{Err: err}
	}
	installErr.State = c.state

	c.logger.Error(coordinatorLogTag, "Installing bundle %s failed: %s", c.ctx.BundleInfo.ID, installErr)
	c.transition(Failed)

	return installErr
}
