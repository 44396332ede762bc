package installer

import (
	"strings"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
	"github.com/cloudfoundry/policy-bundle-installer/policy"
)

const serviceInstallerLogTag = "ServiceInstaller"

type ServiceInstaller struct {
	client   ManagementClient
	includes *IncludeResolver
	logger   boshlog.Logger
}

func NewServiceInstaller(client ManagementClient, includes *IncludeResolver, logger boshlog.Logger) ServiceInstaller {
	return ServiceInstaller{
		client:   client,
		includes: includes,
		logger:   logger,
	}
}

// Install publishes the bundle's services. Services already installed by an
// earlier bundle of the run are skipped.
func (i ServiceInstaller) Install(ctx *Context, maps IdentifierMaps) error {
	services, err := loadServices(ctx)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return nil
	}

	policies, err := loadPolicies(ctx)
	if err != nil {
		return err
	}
	names := map[string]string{}
	for _, p := range policies {
		names[p.guid] = p.name
	}

	for _, service := range services {
		if _, done := maps.ServiceID(service.id); done {
			i.logger.Info(serviceInstallerLogTag, "Service %s was already installed in this run", service.id)
			continue
		}

		err = i.install(ctx, maps, names, service)
		if err != nil {
			return err
		}
	}

	return nil
}

func (i ServiceInstaller) install(ctx *Context, maps IdentifierMaps, names map[string]string, service serviceEntity) error {
	oldFolderID := service.detail.Attr("folderId")
	folderID, found := maps.Folders.Get(oldFolderID)
	if !found {
		return bundle.NewInvalidBundleError(bundle.KindService, service.id, "service is contained within unknown folder '"+oldFolderID+"'")
	}
	service.detail.SetAttr("folderId", folderID)

	for _, pattern := range service.patterns {
		pattern.SetText(ctx.PrefixedPath(strings.TrimSpace(pattern.Text)))
	}

	refs, err := policy.Scan(bundle.KindService, service.id, service.resource.Text)
	if err != nil {
		return err
	}

	rewrites, err := i.includes.Rewrites(ctx, bundle.KindService, service.id, refs.IncludeGUIDs, names, maps)
	if err != nil {
		return err
	}

	err = prepareBody(ctx, bundle.KindService, service.id, service.resource, rewrites)
	if err != nil {
		return err
	}

	if ctx.IsCancelled() {
		return errCancelled
	}

	i.logger.Debug(serviceInstallerLogTag, "Creating service '%s' in folder %s", service.name, folderID)

	result, err := i.client.Create(mgmt.ResourceServices, service.entity.String())
	if err != nil {
		return entityError(bundle.KindService, service.id, err)
	}

	newID, err := i.installedID(result, service)
	if err != nil {
		return entityError(bundle.KindService, service.id, err)
	}

	return entityError(bundle.KindService, service.id, maps.Services.Put(service.id, newID))
}

// installedID recovers the id of an existing service by its first URL
// pattern, or by name when the service has none.
func (i ServiceInstaller) installedID(result mgmt.CreateResult, service serviceEntity) (string, error) {
	switch result.Outcome {
	case mgmt.Created:
		return result.ID, nil

	case mgmt.AlreadyExisted:
		i.logger.Info(serviceInstallerLogTag, "Service '%s' already exists, reusing it", service.name)

		filter := mgmt.ServiceByName(service.name)
		if patterns := service.patternValues(); len(patterns) > 0 {
			filter = mgmt.ServiceByURLPattern(patterns[0])
		}

		ids, err := i.client.FindIDs(mgmt.ResourceServices, filter)
		if err != nil {
			return "", err
		}
		if len(ids) == 0 {
			return "", mgmt.UnexpectedResponseError{
				Request: result.Request.Text,
				Reason:  "service '" + service.name + "' already exists but could not be found",
			}
		}
		return ids[0], nil

	default:
		return "", result.Err()
	}
}
