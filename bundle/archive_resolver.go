package bundle

import (
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	"github.com/cloudfoundry/bosh-utils/fileutil"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
)

const archiveResolverLogTag = "ArchiveResolver"

// ArchiveResolver serves bundles packaged in a tarball. The archive is unpacked
// into a temporary directory on first use and then read like a bundle directory.
type ArchiveResolver struct {
	archivePath string
	options     fileutil.CompressorOptions
	fs          boshsys.FileSystem
	compressor  fileutil.Compressor
	logger      boshlog.Logger

	unpackedPath string
	delegate     *DirectoryResolver
}

func NewArchiveResolver(
	archivePath string,
	options fileutil.CompressorOptions,
	fs boshsys.FileSystem,
	compressor fileutil.Compressor,
	logger boshlog.Logger,
) *ArchiveResolver {
	return &ArchiveResolver{
		archivePath: archivePath,
		options:     options,
		fs:          fs,
		compressor:  compressor,
		logger:      logger,
	}
}

func (r *ArchiveResolver) List() ([]Info, error) {
	delegate, err := r.unpack()
	if err != nil {
		return nil, err
	}

	return delegate.List()
}

func (r *ArchiveResolver) GetBundleItem(bundleID string, kind ItemKind, allowMissing bool) ([]byte, error) {
	delegate, err := r.unpack()
	if err != nil {
		return nil, ResolverError{BundleID: bundleID, Kind: kind, Err: err}
	}

	return delegate.GetBundleItem(bundleID, kind, allowMissing)
}

// CleanUp removes the unpacked archive contents.
func (r *ArchiveResolver) CleanUp() error {
	if r.unpackedPath == "" {
		return nil
	}

	err := r.fs.RemoveAll(r.unpackedPath)
	if err != nil {
		return bosherr.WrapErrorf(err, "Removing unpacked bundles '%s'", r.unpackedPath)
	}

	r.unpackedPath = ""
	r.delegate = nil

	return nil
}

func (r *ArchiveResolver) unpack() (*DirectoryResolver, error) {
	if r.delegate != nil {
		return r.delegate, nil
	}

	tmpDir, err := r.fs.TempDir("policy-bundles")
	if err != nil {
		return nil, bosherr.WrapError(err, "Creating bundle unpack directory")
	}

	r.logger.Debug(archiveResolverLogTag, "Unpacking '%s' into '%s'", r.archivePath, tmpDir)

	err = r.compressor.DecompressFileToDir(r.archivePath, tmpDir, r.options)
	if err != nil {
		_ = r.fs.RemoveAll(tmpDir)
		return nil, bosherr.WrapErrorf(err, "Decompressing bundle archive '%s'", r.archivePath)
	}

	r.unpackedPath = tmpDir
	r.delegate = NewDirectoryResolver(tmpDir, r.fs, r.logger)

	return r.delegate, nil
}
