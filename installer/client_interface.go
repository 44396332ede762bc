package installer

import (
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

// ManagementClient is the part of mgmt.Client the installers use.
type ManagementClient interface {
	FindIDs(resource mgmt.Resource, filter string) ([]string, error)
	FindPolicyGUIDs(filter string) ([]string, error)
	PolicyGUID(selector mgmt.Selector) (string, bool, error)
	Create(resource mgmt.Resource, entity string) (mgmt.CreateResult, error)
	InstalledAssertions() ([]string, error)
}

var _ ManagementClient = mgmt.Client{}
