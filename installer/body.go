package installer

import (
	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
	"github.com/cloudfoundry/policy-bundle-installer/policy"
)

// prepareBody applies the include, JDBC and host rewrites to a policy
// resource, then hands the result to the pre-save callback.
func prepareBody(ctx *Context, kind bundle.ItemKind, entityID string, resource *mgmt.Entity, includes map[string]string) error {
	rewrite := policy.Rewrite{
		IncludeGUIDs:    includes,
		JdbcConnections: ctx.Mapping.JdbcConnections,
		HostVersion:     ctx.Mapping.HostVersion,
	}

	body, err := rewrite.Apply(resource.Text)
	if err != nil {
		invalid := bundle.NewInvalidBundleError(kind, entityID, "policy body cannot be rewritten")
		invalid.Err = err
		return invalid
	}

	if ctx.PreSave != nil {
		body, err = ctx.PreSave.PreSave(ctx.BundleInfo, kind, entityID, body)
		if err != nil {
			return entityError(kind, entityID, err)
		}
	}

	resource.SetText(body)

	return nil
}
