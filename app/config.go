package app

import (
	"encoding/json"
	"time"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

const (
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = time.Second
)

type EndpointConfig struct {
	URL                string
	CACertPath         string
	InsecureSkipVerify bool

	MaxAttempts int
	// RetryDelay is a Go duration string, e.g. "1s".
	RetryDelay string
	// OperationTimeout is sent verbatim as the wsman OperationTimeout.
	OperationTimeout string
	MaxElements      int
}

func (c EndpointConfig) RetryDelayDuration() (time.Duration, error) {
	if c.RetryDelay == "" {
		return DefaultRetryDelay, nil
	}

	delay, err := time.ParseDuration(c.RetryDelay)
	if err != nil {
		return 0, bosherr.WrapErrorf(err, "Parsing retry delay '%s'", c.RetryDelay)
	}

	return delay, nil
}

type Config struct {
	Endpoint EndpointConfig
	Sources  bundle.SourceOptionsSlice

	RootFolderID  string
	InstallFolder string
	Prefix        string

	CheckAssertionExistence bool

	Mapping bundle.Mapping
}

func LoadConfigFromPath(fs boshsys.FileSystem, path string) (Config, error) {
	config := Config{
		Endpoint: EndpointConfig{MaxAttempts: DefaultMaxAttempts},
	}

	if path == "" {
		return config, bosherr.Error("Config path is required")
	}

	bytes, err := fs.ReadFile(path)
	if err != nil {
		return config, bosherr.WrapError(err, "Reading file")
	}

	err = json.Unmarshal(bytes, &config)
	if err != nil {
		return config, bosherr.WrapError(err, "Loading file")
	}

	return config, nil
}

// Validate checks what cannot be defaulted. Listing bundles only needs sources.
func (c Config) Validate(needsEndpoint bool) error {
	if len(c.Sources) == 0 {
		return bosherr.Error("Config must declare at least one bundle source")
	}

	if !needsEndpoint {
		return nil
	}

	if c.Endpoint.URL == "" {
		return bosherr.Error("Config must declare the management endpoint URL")
	}

	if c.Endpoint.MaxAttempts < 0 {
		return bosherr.Errorf("Endpoint max attempts must not be negative, got %d", c.Endpoint.MaxAttempts)
	}

	if _, err := c.Endpoint.RetryDelayDuration(); err != nil {
		return err
	}

	return nil
}
