package installer

import (
	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

// PreSaveCallback sees every policy and service body after the built-in
// rewrites and before it is sent. It returns the body to send.
type PreSaveCallback interface {
	PreSave(info bundle.Info, kind bundle.ItemKind, entityID string, body string) (string, error)
}
