package bundle

import (
	"path"
	"path/filepath"
	"sort"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

const (
	directoryResolverLogTag = "DirectoryResolver"
	infoFileName            = "BundleInfo.xml"
)

// DirectoryResolver serves bundles laid out as <root>/<bundle dir>/BundleInfo.xml
// with one <Kind>.xml document per item kind next to it.
type DirectoryResolver struct {
	rootPath string
	fs       boshsys.FileSystem
	logger   boshlog.Logger

	dirsByID map[string]string
}

func NewDirectoryResolver(rootPath string, fs boshsys.FileSystem, logger boshlog.Logger) *DirectoryResolver {
	return &DirectoryResolver{
		rootPath: path.Clean(filepath.ToSlash(rootPath)),
		fs:       fs,
		logger:   logger,
	}
}

func (r *DirectoryResolver) List() ([]Info, error) {
	infoPaths, err := r.fs.Glob(path.Join(r.rootPath, "*", infoFileName))
	if err != nil {
		return nil, bosherr.WrapError(err, "Globbing bundle infos")
	}

	sort.Strings(infoPaths)

	var infos []Info
	dirsByID := map[string]string{}

	for _, infoPath := range infoPaths {
		content, err := r.fs.ReadFile(infoPath)
		if err != nil {
			return nil, bosherr.WrapErrorf(err, "Reading bundle info '%s'", infoPath)
		}

		info, err := ParseInfo(content)
		if err != nil {
			r.logger.Warn(directoryResolverLogTag, "Skipping unparseable bundle info '%s': %s", infoPath, err.Error())
			continue
		}

		if _, found := dirsByID[info.ID]; found {
			r.logger.Warn(directoryResolverLogTag, "Skipping duplicate bundle id '%s' in '%s'", info.ID, infoPath)
			continue
		}

		dirsByID[info.ID] = path.Dir(infoPath)
		infos = append(infos, info)
	}

	r.dirsByID = dirsByID

	r.logger.Debug(directoryResolverLogTag, "Catalogued %d bundles under '%s'", len(infos), r.rootPath)

	return infos, nil
}

func (r *DirectoryResolver) GetBundleItem(bundleID string, kind ItemKind, allowMissing bool) ([]byte, error) {
	dir, err := r.bundleDir(bundleID, kind)
	if err != nil {
		return nil, err
	}

	itemPath := path.Join(dir, kind.FileName())

	if !r.fs.FileExists(itemPath) {
		if allowMissing {
			r.logger.Debug(directoryResolverLogTag, "Bundle '%s' has no %s document", bundleID, kind)
			return nil, nil
		}
		return nil, ResolverError{BundleID: bundleID, Kind: kind, Err: bosherr.Errorf("Missing '%s'", itemPath)}
	}

	content, err := r.fs.ReadFile(itemPath)
	if err != nil {
		return nil, ResolverError{BundleID: bundleID, Kind: kind, Err: err}
	}

	return content, nil
}

func (r *DirectoryResolver) bundleDir(bundleID string, kind ItemKind) (string, error) {
	if r.dirsByID == nil {
		if _, err := r.List(); err != nil {
			return "", ResolverError{BundleID: bundleID, Kind: kind, Err: err}
		}
	}

	dir, found := r.dirsByID[bundleID]
	if !found {
		return "", UnknownBundleError{BundleID: bundleID}
	}

	return dir, nil
}
