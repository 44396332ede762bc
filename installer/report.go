package installer

import (
	"time"
)

// ConflictReport is the result of a dry run. Conflicts are entities of the
// bundle that already exist on the target; missing entries are dependencies
// the target lacks.
type ConflictReport struct {
	BundleID    string    `json:"bundle_id"`
	GeneratedAt time.Time `json:"generated_at"`

	ServiceConflicts       []string `json:"service_conflicts"`
	PolicyConflicts        []string `json:"policy_conflicts"`
	CertificateConflicts   []string `json:"certificate_conflicts"`
	MissingAssertions      []string `json:"missing_assertions"`
	MissingJdbcConnections []string `json:"missing_jdbc_connections"`
}

// IsClean reports whether installing the bundle would neither collide with
// nor depend on anything missing from the target.
func (r ConflictReport) IsClean() bool {
	return len(r.ServiceConflicts) == 0 &&
		len(r.PolicyConflicts) == 0 &&
		len(r.CertificateConflicts) == 0 &&
		len(r.MissingAssertions) == 0 &&
		len(r.MissingJdbcConnections) == 0
}
