package installer

import (
	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
	"github.com/cloudfoundry/policy-bundle-installer/policy"
)

const policyInstallerLogTag = "PolicyInstaller"

type PolicyInstaller struct {
	client   ManagementClient
	includes *IncludeResolver
	logger   boshlog.Logger
}

func NewPolicyInstaller(client ManagementClient, includes *IncludeResolver, logger boshlog.Logger) PolicyInstaller {
	return PolicyInstaller{
		client:   client,
		includes: includes,
		logger:   logger,
	}
}

type policyRun struct {
	ctx      *Context
	maps     IdentifierMaps
	byGUID   map[string]policyEntity
	names    map[string]string
	visiting map[string]bool
}

// Install creates the bundle's policies, included policies first, and records
// each bundle guid against the guid the target uses.
func (i PolicyInstaller) Install(ctx *Context, maps IdentifierMaps) error {
	policies, err := loadPolicies(ctx)
	if err != nil {
		return err
	}
	if len(policies) == 0 {
		i.logger.Info(policyInstallerLogTag, "No policies to install for bundle %s", ctx.BundleInfo.ID)
		return nil
	}

	run := policyRun{
		ctx:      ctx,
		maps:     maps,
		byGUID:   map[string]policyEntity{},
		names:    map[string]string{},
		visiting: map[string]bool{},
	}
	for _, p := range policies {
		run.byGUID[p.guid] = p
		run.names[p.guid] = p.name
	}

	for _, p := range policies {
		err = i.install(run, p)
		if err != nil {
			return err
		}
	}

	return nil
}

func (i PolicyInstaller) install(run policyRun, p policyEntity) error {
	if _, done := run.maps.Policies.Get(p.guid); done {
		return nil
	}
	if run.visiting[p.guid] {
		return bundle.NewInvalidBundleError(bundle.KindPolicy, p.guid, "circular policy include")
	}
	run.visiting[p.guid] = true
	defer delete(run.visiting, p.guid)

	refs, err := policy.Scan(bundle.KindPolicy, p.guid, p.resource.Text)
	if err != nil {
		return err
	}

	for _, includeGUID := range refs.IncludeGUIDs {
		if included, found := run.byGUID[includeGUID]; found {
			err = i.install(run, included)
			if err != nil {
				return err
			}
		}
	}

	rewrites, err := i.includes.Rewrites(run.ctx, bundle.KindPolicy, p.guid, refs.IncludeGUIDs, run.names, run.maps)
	if err != nil {
		return err
	}

	err = prepareBody(run.ctx, bundle.KindPolicy, p.guid, p.resource, rewrites)
	if err != nil {
		return err
	}

	oldFolderID := p.detail.Attr("folderId")
	folderID, found := run.maps.Folders.Get(oldFolderID)
	if !found {
		return bundle.NewInvalidBundleError(bundle.KindPolicy, p.guid, "policy is contained within unknown folder '"+oldFolderID+"'")
	}
	p.detail.SetAttr("folderId", folderID)

	name := run.ctx.PrefixedName(p.name)
	if nameElement := p.detail.Child("Name"); nameElement != nil {
		nameElement.SetText(name)
	}

	if run.ctx.IsCancelled() {
		return errCancelled
	}

	i.logger.Debug(policyInstallerLogTag, "Creating policy '%s' in folder %s", name, folderID)

	result, err := i.client.Create(mgmt.ResourcePolicies, p.entity.String())
	if err != nil {
		return entityError(bundle.KindPolicy, p.guid, err)
	}

	newGUID, err := i.installedGUID(result, folderID, name)
	if err != nil {
		return entityError(bundle.KindPolicy, p.guid, err)
	}

	return entityError(bundle.KindPolicy, p.guid, run.maps.Policies.Put(p.guid, newGUID))
}

func (i PolicyInstaller) installedGUID(result mgmt.CreateResult, folderID, name string) (string, error) {
	switch result.Outcome {
	case mgmt.Created:
		guid, found, err := i.client.PolicyGUID(mgmt.SelectorByID(result.ID))
		if err != nil {
			return "", err
		}
		if !found {
			return "", mgmt.UnexpectedResponseError{Request: result.Request.Text, Reason: "created policy '" + name + "' has no guid"}
		}
		return guid, nil

	case mgmt.AlreadyExisted:
		i.logger.Info(policyInstallerLogTag, "Policy '%s' already exists, reusing it", name)

		guids, err := i.client.FindPolicyGUIDs(mgmt.PolicyByFolderAndName(folderID, name))
		if err != nil {
			return "", err
		}
		if len(guids) == 0 {
			return "", mgmt.UnexpectedResponseError{
				Request: result.Request.Text,
				Reason:  "policy '" + name + "' already exists outside folder " + folderID,
			}
		}
		return guids[0], nil

	default:
		return "", result.Err()
	}
}
