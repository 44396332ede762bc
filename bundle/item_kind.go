package bundle

import (
	bosherr "github.com/cloudfoundry/bosh-utils/errors"
)

// ItemKind selects which document of a bundle is requested and which
// installer handles it.
type ItemKind int

const (
	KindFolder ItemKind = iota
	KindPolicy
	KindService
	KindTrustedCertificate
	KindAssertion
	KindEncapsulatedAssertion
	KindJdbcConnection
)

var itemKindNames = map[ItemKind]string{
	KindFolder:                "Folder",
	KindPolicy:                "Policy",
	KindService:               "Service",
	KindTrustedCertificate:    "TrustedCertificate",
	KindAssertion:             "Assertion",
	KindEncapsulatedAssertion: "EncapsulatedAssertion",
	KindJdbcConnection:        "JdbcConnection",
}

func AllItemKinds() []ItemKind {
	return []ItemKind{
		KindFolder,
		KindPolicy,
		KindService,
		KindTrustedCertificate,
		KindAssertion,
		KindEncapsulatedAssertion,
		KindJdbcConnection,
	}
}

func (k ItemKind) String() string {
	if name, found := itemKindNames[k]; found {
		return name
	}
	return "Unknown"
}

// FileName is the name of the document holding items of this kind inside a bundle directory.
func (k ItemKind) FileName() string {
	return k.String() + ".xml"
}

func ParseItemKind(name string) (ItemKind, error) {
	for kind, kindName := range itemKindNames {
		if kindName == name {
			return kind, nil
		}
	}
	return 0, bosherr.Errorf("Unknown bundle item kind '%s'", name)
}
