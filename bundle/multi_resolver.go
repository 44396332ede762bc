package bundle

import (
	"errors"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"
)

const multiResolverLogTag = "MultiResolver"

type cleanable interface {
	CleanUp() error
}

// MultiResolver serves the first resolver that knows a bundle id.
type MultiResolver struct {
	resolvers []Resolver
	logger    boshlog.Logger
}

func NewMultiResolver(resolvers []Resolver, logger boshlog.Logger) *MultiResolver {
	return &MultiResolver{resolvers: resolvers, logger: logger}
}

func (r *MultiResolver) List() ([]Info, error) {
	var infos []Info
	seen := map[string]bool{}

	for _, resolver := range r.resolvers {
		resolverInfos, err := resolver.List()
		if err != nil {
			return nil, err
		}

		for _, info := range resolverInfos {
			if seen[info.ID] {
				r.logger.Warn(multiResolverLogTag, "Bundle '%s' is shadowed by an earlier source", info.ID)
				continue
			}
			seen[info.ID] = true
			infos = append(infos, info)
		}
	}

	return infos, nil
}

func (r *MultiResolver) GetBundleItem(bundleID string, kind ItemKind, allowMissing bool) ([]byte, error) {
	for _, resolver := range r.resolvers {
		content, err := resolver.GetBundleItem(bundleID, kind, allowMissing)

		var unknownErr UnknownBundleError
		if errors.As(err, &unknownErr) {
			continue
		}

		return content, err
	}

	return nil, UnknownBundleError{BundleID: bundleID}
}

func (r *MultiResolver) Info(bundleID string) (Info, error) {
	infos, err := r.List()
	if err != nil {
		return Info{}, err
	}

	for _, info := range infos {
		if info.ID == bundleID {
			return info, nil
		}
	}

	return Info{}, UnknownBundleError{BundleID: bundleID}
}

func (r *MultiResolver) CleanUp() error {
	var lastErr error

	for _, resolver := range r.resolvers {
		if c, ok := resolver.(cleanable); ok {
			if err := c.CleanUp(); err != nil {
				r.logger.Warn(multiResolverLogTag, "Cleaning up bundle source: %s", err.Error())
				lastErr = err
			}
		}
	}

	if lastErr != nil {
		return bosherr.WrapError(lastErr, "Cleaning up bundle sources")
	}

	return nil
}
