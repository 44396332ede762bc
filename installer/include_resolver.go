package installer

import (
	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

const includeResolverLogTag = "IncludeResolver"

// IncludeResolver resolves included policies to their guid on the target by
// name. Each distinct name is looked up remotely at most once per run, even
// when the policy was created earlier in the same run.
type IncludeResolver struct {
	client ManagementClient
	cache  map[string]string
	logger boshlog.Logger
}

func NewIncludeResolver(client ManagementClient, logger boshlog.Logger) *IncludeResolver {
	return &IncludeResolver{
		client: client,
		cache:  map[string]string{},
		logger: logger,
	}
}

// Resolve returns the target guid of the policy named name in the bundle.
// The policy is looked up under its prefixed name first; with a prefix
// configured, a shared policy installed without the prefix is found by its
// bundle name. kind and entityID identify the entity holding the include.
func (r *IncludeResolver) Resolve(ctx *Context, kind bundle.ItemKind, entityID, name string) (string, error) {
	if guid, found := r.cache[name]; found {
		return guid, nil
	}

	// Prefixed name first, then the bundle name. With a prefix a name costs
	// up to two lookups; the cache keeps it to one resolution per run.
	candidates := []string{ctx.PrefixedName(name)}
	if candidates[0] != name {
		candidates = append(candidates, name)
	}

	for _, candidate := range candidates {
		r.logger.Debug(includeResolverLogTag, "Resolving included policy '%s'", candidate)

		guid, found, err := r.client.PolicyGUID(mgmt.SelectorByName(candidate))
		if err != nil {
			return "", entityError(kind, entityID, err)
		}
		if found {
			r.cache[name] = guid
			return guid, nil
		}
	}

	return "", bundle.NewInvalidBundleError(kind, entityID, "included policy '"+name+"' does not exist on the target")
}

// Rewrites maps every include guid found in an entity body to the guid it
// must reference on the target. Guids of bundle policies are resolved by
// name; guids of policies installed by an earlier bundle of the run come from
// the identifier maps.
func (r *IncludeResolver) Rewrites(
	ctx *Context,
	kind bundle.ItemKind,
	entityID string,
	includeGUIDs []string,
	bundleNames map[string]string,
	maps IdentifierMaps,
) (map[string]string, error) {
	rewrites := map[string]string{}

	for _, guid := range includeGUIDs {
		if _, done := rewrites[guid]; done {
			continue
		}

		if name, found := bundleNames[guid]; found {
			newGUID, err := r.Resolve(ctx, kind, entityID, name)
			if err != nil {
				return nil, err
			}
			rewrites[guid] = newGUID
			continue
		}

		if newGUID, found := maps.PolicyGUID(guid); found {
			rewrites[guid] = newGUID
			continue
		}

		return nil, bundle.NewInvalidBundleError(kind, entityID, "included policy '"+guid+"' is not part of the bundle")
	}

	return rewrites, nil
}
