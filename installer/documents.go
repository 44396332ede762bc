package installer

import (
	"strings"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

var entityElements = map[bundle.ItemKind]string{
	bundle.KindFolder:             "Folder",
	bundle.KindPolicy:             "Policy",
	bundle.KindService:            "Service",
	bundle.KindTrustedCertificate: "TrustedCertificate",
}

// loadEntities reads the bundle document for kind and returns its entity
// elements. A missing optional document yields no entities.
func loadEntities(ctx *Context, kind bundle.ItemKind, allowMissing bool) ([]*mgmt.Entity, error) {
	content, err := ctx.Resolver.GetBundleItem(ctx.BundleInfo.ID, kind, allowMissing)
	if err != nil {
		return nil, err
	}
	if len(content) == 0 {
		return nil, nil
	}

	entities, err := mgmt.ParseEntities(content, entityElements[kind])
	if err != nil {
		invalid := bundle.NewInvalidBundleError(kind, ctx.BundleInfo.ID, "unreadable bundle document")
		invalid.Err = err
		return nil, invalid
	}

	return entities, nil
}

// policyResource is the l7:Resource element holding the policy body of a policy or service.
func policyResource(entity *mgmt.Entity) *mgmt.Entity {
	for _, set := range entity.Find("Resources", "ResourceSet") {
		if set.Attr("tag") != "policy" {
			continue
		}
		for _, resource := range set.Find("Resource") {
			if resource.Attr("type") == "policy" {
				return resource
			}
		}
	}
	return nil
}

func childText(entity *mgmt.Entity, path ...string) string {
	found := entity.FindFirst(path...)
	if found == nil {
		return ""
	}
	return strings.TrimSpace(found.Text)
}

type policyEntity struct {
	entity   *mgmt.Entity
	detail   *mgmt.Entity
	resource *mgmt.Entity
	guid     string
	name     string
}

func newPolicyEntity(entity *mgmt.Entity) (policyEntity, error) {
	guid := strings.TrimSpace(entity.Attr("guid"))
	if guid == "" {
		return policyEntity{}, bundle.NewInvalidBundleError(bundle.KindPolicy, entity.Attr("id"), "policy without guid")
	}

	detail := entity.Child("PolicyDetail")
	if detail == nil {
		return policyEntity{}, bundle.NewInvalidBundleError(bundle.KindPolicy, guid, "expected a PolicyDetail element")
	}

	resource := policyResource(entity)
	if resource == nil {
		return policyEntity{}, bundle.NewInvalidBundleError(bundle.KindPolicy, guid, "no policy resource")
	}

	return policyEntity{
		entity:   entity,
		detail:   detail,
		resource: resource,
		guid:     guid,
		name:     childText(detail, "Name"),
	}, nil
}

func loadPolicies(ctx *Context) ([]policyEntity, error) {
	entities, err := loadEntities(ctx, bundle.KindPolicy, true)
	if err != nil {
		return nil, err
	}

	policies := make([]policyEntity, 0, len(entities))
	for _, entity := range entities {
		policy, err := newPolicyEntity(entity)
		if err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}

	return policies, nil
}

type serviceEntity struct {
	entity   *mgmt.Entity
	detail   *mgmt.Entity
	resource *mgmt.Entity
	id       string
	name     string
	patterns []*mgmt.Entity
}

func newServiceEntity(entity *mgmt.Entity) (serviceEntity, error) {
	id := strings.TrimSpace(entity.Attr("id"))

	details := entity.Find("ServiceDetail")
	switch {
	case len(details) == 0:
		return serviceEntity{}, bundle.NewInvalidBundleError(bundle.KindService, id, "no ServiceDetail element")
	case len(details) > 1:
		return serviceEntity{}, bundle.NewInvalidBundleError(bundle.KindService, id, "expected a single ServiceDetail element")
	}
	detail := details[0]

	resource := policyResource(entity)
	if resource == nil {
		return serviceEntity{}, bundle.NewInvalidBundleError(bundle.KindService, id, "no policy resource")
	}

	return serviceEntity{
		entity:   entity,
		detail:   detail,
		resource: resource,
		id:       id,
		name:     childText(detail, "Name"),
		patterns: detail.Find("ServiceMappings", "HttpMapping", "UrlPattern"),
	}, nil
}

func loadServices(ctx *Context) ([]serviceEntity, error) {
	entities, err := loadEntities(ctx, bundle.KindService, true)
	if err != nil {
		return nil, err
	}

	services := make([]serviceEntity, 0, len(entities))
	for _, entity := range entities {
		service, err := newServiceEntity(entity)
		if err != nil {
			return nil, err
		}
		services = append(services, service)
	}

	return services, nil
}

func (s serviceEntity) patternValues() []string {
	values := make([]string, 0, len(s.patterns))
	for _, pattern := range s.patterns {
		if value := strings.TrimSpace(pattern.Text); value != "" {
			values = append(values, value)
		}
	}
	return values
}

// urlPatterns returns the service's URL patterns as they will be installed.
func (s serviceEntity) urlPatterns(ctx *Context) []string {
	values := s.patternValues()
	for i, value := range values {
		values[i] = ctx.PrefixedPath(value)
	}
	return values
}
