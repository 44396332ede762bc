package installer

import (
	"strings"

	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

const folderInstallerLogTag = "FolderInstaller"

type FolderInstaller struct {
	client ManagementClient
	logger boshlog.Logger
}

func NewFolderInstaller(client ManagementClient, logger boshlog.Logger) FolderInstaller {
	return FolderInstaller{client: client, logger: logger}
}

// Install maps every bundle folder to a folder on the target, creating the
// ones that are missing. Folders must appear parent before child.
func (i FolderInstaller) Install(ctx *Context, maps IdentifierMaps) error {
	rootID := ctx.rootFolderID()

	folders, err := loadEntities(ctx, bundle.KindFolder, false)
	if err != nil {
		return err
	}

	targetRootID, err := i.targetRoot(ctx)
	if err != nil {
		return err
	}

	err = maps.Folders.Put(rootID, targetRootID)
	if err != nil {
		return entityError(bundle.KindFolder, rootID, err)
	}

	for _, folder := range folders {
		err = i.installFolder(ctx, maps.Folders, folder)
		if err != nil {
			return err
		}
	}

	return nil
}

func (i FolderInstaller) installFolder(ctx *Context, folderMap *IdentifierMap, folder *mgmt.Entity) error {
	oldID := strings.TrimSpace(folder.Attr("id"))
	name := childText(folder, "Name")

	if oldID == "" {
		return bundle.NewInvalidBundleError(bundle.KindFolder, name, "folder without id")
	}

	if oldID == ctx.rootFolderID() {
		return nil
	}

	if newID, found := ctx.Mapping.FolderOverride(oldID); found {
		i.logger.Debug(folderInstallerLogTag, "Folder %s mapped to %s", oldID, newID)
		return entityError(bundle.KindFolder, oldID, folderMap.Put(oldID, newID))
	}

	if name == "" {
		return bundle.NewInvalidBundleError(bundle.KindFolder, oldID, "folder without name")
	}

	oldParentID := strings.TrimSpace(folder.Attr("folderId"))
	parentID, found := folderMap.Get(oldParentID)
	if !found {
		return bundle.NewInvalidBundleError(bundle.KindFolder, oldID, "parent folder '"+oldParentID+"' is not declared before it")
	}

	newID, err := i.getOrCreate(ctx, oldID, parentID, name)
	if err != nil {
		return entityError(bundle.KindFolder, oldID, err)
	}

	return entityError(bundle.KindFolder, oldID, folderMap.Put(oldID, newID))
}

// targetRoot is the folder the bundle root maps to: the root override or the
// configured root, or the install folder inside it.
func (i FolderInstaller) targetRoot(ctx *Context) (string, error) {
	rootID := ctx.rootFolderID()

	targetRootID := rootID
	if overrideID, found := ctx.Mapping.FolderOverride(rootID); found {
		targetRootID = overrideID
	}

	if ctx.InstallFolder == "" {
		return targetRootID, nil
	}

	i.logger.Info(folderInstallerLogTag, "Installing into folder '%s'", ctx.InstallFolder)

	installFolderID, err := i.getOrCreate(ctx, "", targetRootID, ctx.InstallFolder)
	if err != nil {
		return "", entityError(bundle.KindFolder, ctx.InstallFolder, err)
	}

	return installFolderID, nil
}

func (i FolderInstaller) getOrCreate(ctx *Context, oldID, parentID, name string) (string, error) {
	existingID, found, err := i.find(parentID, name)
	if err != nil {
		return "", err
	}
	if found {
		i.logger.Debug(folderInstallerLogTag, "Folder '%s' already exists in %s as %s", name, parentID, existingID)
		return existingID, nil
	}

	if ctx.IsCancelled() {
		return "", errCancelled
	}

	folder := mgmt.NewEntity("Folder").SetAttr("folderId", parentID)
	if oldID != "" {
		folder.SetAttr("id", oldID)
	}
	folder.AddChild(mgmt.NewEntity("Name").SetText(name))

	i.logger.Debug(folderInstallerLogTag, "Creating folder '%s' in %s", name, parentID)

	result, err := i.client.Create(mgmt.ResourceFolders, folder.String())
	if err != nil {
		return "", err
	}

	switch result.Outcome {
	case mgmt.Created:
		return result.ID, nil
	case mgmt.AlreadyExisted:
		i.logger.Warn(folderInstallerLogTag, "Folder '%s' appeared in %s while installing, looking it up again", name, parentID)

		existingID, found, err = i.find(parentID, name)
		if err != nil {
			return "", err
		}
		if !found {
			return "", mgmt.UnexpectedResponseError{
				Request: result.Request.Text,
				Reason:  "folder '" + name + "' already exists but could not be found",
			}
		}
		return existingID, nil
	default:
		return "", result.Err()
	}
}

func (i FolderInstaller) find(parentID, name string) (string, bool, error) {
	ids, err := i.client.FindIDs(mgmt.ResourceFolders, mgmt.FolderByParentAndName(parentID, name))
	if err != nil {
		return "", false, err
	}
	if len(ids) == 0 {
		return "", false, nil
	}
	return ids[0], true, nil
}
