package fakes

import (
	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

type PreSaveArgs struct {
	Info     bundle.Info
	Kind     bundle.ItemKind
	EntityID string
	Body     string
}

type FakePreSaveCallback struct {
	PreSaveArgs []PreSaveArgs

	// PreSaveStub, when set, computes the returned body.
	PreSaveStub func(body string) string
	PreSaveErr  error
}

func (c *FakePreSaveCallback) PreSave(info bundle.Info, kind bundle.ItemKind, entityID string, body string) (string, error) {
	c.PreSaveArgs = append(c.PreSaveArgs, PreSaveArgs{
		Info:     info,
		Kind:     kind,
		EntityID: entityID,
		Body:     body,
	})

	if c.PreSaveErr != nil {
		return "", c.PreSaveErr
	}
	if c.PreSaveStub != nil {
		return c.PreSaveStub(body), nil
	}
	return body, nil
}
