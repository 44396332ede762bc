package installer

import (
	"code.cloudfoundry.org/clock"
	boshlog "github.com/cloudfoundry/bosh-utils/logger"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
	"github.com/cloudfoundry/policy-bundle-installer/policy"
)

const conflictAnalyzerLogTag = "ConflictAnalyzer"

// ConflictAnalyzer compares a bundle against the target using enumerations
// only. It never creates anything. Failures are InstallationErrors naming the
// entity being checked; the management error stays reachable through errors.As.
type ConflictAnalyzer struct {
	client ManagementClient
	clock  clock.Clock
	logger boshlog.Logger
}

func NewConflictAnalyzer(client ManagementClient, clock clock.Clock, logger boshlog.Logger) ConflictAnalyzer {
	return ConflictAnalyzer{
		client: client,
		clock:  clock,
		logger: logger,
	}
}

func (a ConflictAnalyzer) Analyze(ctx *Context) (ConflictReport, error) {
	report := ConflictReport{BundleID: ctx.BundleInfo.ID}

	policies, err := loadPolicies(ctx)
	if err != nil {
		return report, entityError(bundle.KindPolicy, "", err)
	}

	services, err := loadServices(ctx)
	if err != nil {
		return report, entityError(bundle.KindService, "", err)
	}

	certificates, err := loadEntities(ctx, bundle.KindTrustedCertificate, true)
	if err != nil {
		return report, entityError(bundle.KindTrustedCertificate, "", err)
	}

	var refs []policy.References
	for _, p := range policies {
		found, err := policy.Scan(bundle.KindPolicy, p.guid, p.resource.Text)
		if err != nil {
			return report, entityError(bundle.KindPolicy, p.guid, err)
		}
		refs = append(refs, found)
	}
	for _, s := range services {
		found, err := policy.Scan(bundle.KindService, s.id, s.resource.Text)
		if err != nil {
			return report, entityError(bundle.KindService, s.id, err)
		}
		refs = append(refs, found)
	}

	report.ServiceConflicts, err = a.serviceConflicts(ctx, services)
	if err != nil {
		return report, err
	}

	for _, p := range policies {
		name := ctx.PrefixedName(p.name)
		exists, err := a.exists(mgmt.ResourcePolicies, mgmt.PolicyByName(name))
		if err != nil {
			return report, entityError(bundle.KindPolicy, p.guid, err)
		}
		if exists {
			report.PolicyConflicts = append(report.PolicyConflicts, name)
		}
	}

	for _, certificate := range certificates {
		name := childText(certificate, "Name")
		exists, err := a.exists(mgmt.ResourceTrustedCertificates, mgmt.TrustedCertificateByName(name))
		if err != nil {
			return report, entityError(bundle.KindTrustedCertificate, name, err)
		}
		if exists {
			report.CertificateConflicts = append(report.CertificateConflicts, name)
		}
	}

	if ctx.CheckAssertionExistence {
		report.MissingAssertions, err = a.missingAssertions(refs)
		if err != nil {
			return report, err
		}
	}

	report.MissingJdbcConnections, err = a.missingJdbcConnections(ctx, refs)
	if err != nil {
		return report, err
	}

	report.GeneratedAt = a.clock.Now()

	a.logger.Info(conflictAnalyzerLogTag, "Dry run of bundle %s found %d service, %d policy and %d certificate conflicts",
		ctx.BundleInfo.ID, len(report.ServiceConflicts), len(report.PolicyConflicts), len(report.CertificateConflicts))

	return report, nil
}

// serviceConflicts checks every installed URL pattern. Services without one
// are checked by name.
func (a ConflictAnalyzer) serviceConflicts(ctx *Context, services []serviceEntity) ([]string, error) {
	var conflicts []string

	for _, service := range services {
		patterns := service.urlPatterns(ctx)

		if len(patterns) == 0 {
			exists, err := a.exists(mgmt.ResourceServices, mgmt.ServiceByName(service.name))
			if err != nil {
				return nil, entityError(bundle.KindService, service.id, err)
			}
			if exists {
				conflicts = append(conflicts, service.name)
			}
			continue
		}

		for _, pattern := range patterns {
			exists, err := a.exists(mgmt.ResourceServices, mgmt.ServiceByURLPattern(pattern))
			if err != nil {
				return nil, entityError(bundle.KindService, service.id, err)
			}
			if exists {
				conflicts = append(conflicts, pattern)
			}
		}
	}

	return conflicts, nil
}

func (a ConflictAnalyzer) missingAssertions(refs []policy.References) ([]string, error) {
	installed, err := a.client.InstalledAssertions()
	if err != nil {
		return nil, entityError(bundle.KindAssertion, "", err)
	}

	known := map[string]bool{}
	for _, name := range installed {
		known[name] = true
	}

	var missing []string
	for _, name := range distinct(refs, func(r policy.References) []string { return r.AssertionTypes }) {
		if !known[name] {
			missing = append(missing, name)
		}
	}

	return missing, nil
}

// missingJdbcConnections checks the connections the bundle declares and those
// its bodies reference, under their mapped names.
func (a ConflictAnalyzer) missingJdbcConnections(ctx *Context, refs []policy.References) ([]string, error) {
	declared := policy.References{JdbcConnections: ctx.BundleInfo.JdbcConnections}
	names := distinct(append([]policy.References{declared}, refs...), func(r policy.References) []string {
		mapped := make([]string, 0, len(r.JdbcConnections))
		for _, name := range r.JdbcConnections {
			mapped = append(mapped, ctx.Mapping.JdbcConnection(name))
		}
		return mapped
	})

	var missing []string
	for _, name := range names {
		exists, err := a.exists(mgmt.ResourceJdbcConnections, mgmt.JdbcConnectionByName(name))
		if err != nil {
			return nil, entityError(bundle.KindJdbcConnection, name, err)
		}
		if !exists {
			missing = append(missing, name)
		}
	}

	return missing, nil
}

func (a ConflictAnalyzer) exists(resource mgmt.Resource, filter string) (bool, error) {
	ids, err := a.client.FindIDs(resource, filter)
	if err != nil {
		return false, err
	}
	return len(ids) > 0, nil
}

func distinct(refs []policy.References, values func(policy.References) []string) []string {
	seen := map[string]bool{}

	var result []string
	for _, r := range refs {
		for _, value := range values(r) {
			if value == "" || seen[value] {
				continue
			}
			seen[value] = true
			result = append(result, value)
		}
	}

	return result
}
