package app

import (
	"net/http"

	boshcrypto "github.com/cloudfoundry/bosh-utils/crypto"
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshcmd "github.com/cloudfoundry/bosh-utils/fileutil"
	boshhttp "github.com/cloudfoundry/bosh-utils/httpclient"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
	boshsys "github.com/cloudfoundry/bosh-utils/system"
	boshuuid "github.com/cloudfoundry/bosh-utils/uuid"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

func NewResolver(
	sources bundle.SourceOptionsSlice,
	fs boshsys.FileSystem,
	logger boshlog.Logger,
) (*bundle.MultiResolver, error) {
	compressor := boshcmd.NewTarballCompressor(boshsys.NewExecCmdRunner(logger), fs)

	resolver, err := bundle.NewSourceFactory(fs, compressor, logger).New(sources)
	if err != nil {
		return nil, bosherr.WrapError(err, "Building bundle sources")
	}

	return resolver, nil
}

func NewHTTPClient(config EndpointConfig, fs boshsys.FileSystem) (*http.Client, error) {
	if config.InsecureSkipVerify {
		return boshhttp.CreateDefaultClientInsecureSkipVerify(), nil
	}

	if config.CACertPath == "" {
		return boshhttp.CreateDefaultClient(nil), nil
	}

	caCert, err := fs.ReadFile(config.CACertPath)
	if err != nil {
		return nil, bosherr.WrapErrorf(err, "Reading CA certificate '%s'", config.CACertPath)
	}

	certPool, err := boshcrypto.CertPoolFromPEM(caCert)
	if err != nil {
		return nil, bosherr.WrapError(err, "Parsing CA certificate")
	}

	return boshhttp.CreateDefaultClient(certPool), nil
}

func NewHTTPInvoker(config EndpointConfig, fs boshsys.FileSystem, logger boshlog.Logger) (mgmt.Invoker, error) {
	httpClient, err := NewHTTPClient(config, fs)
	if err != nil {
		return nil, err
	}

	retryDelay, err := config.RetryDelayDuration()
	if err != nil {
		return nil, err
	}

	return mgmt.NewHTTPInvoker(config.URL, httpClient, config.MaxAttempts, retryDelay, logger), nil
}

func NewManagementClient(
	config EndpointConfig,
	invoker mgmt.Invoker,
	uuidGen boshuuid.Generator,
	logger boshlog.Logger,
) mgmt.Client {
	builder := mgmt.NewRequestBuilder(config.URL, config.OperationTimeout, uuidGen)
	return mgmt.NewClient(invoker, builder, config.MaxElements, logger)
}
