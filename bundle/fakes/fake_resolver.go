package fakes

import (
	"sync"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

type GetBundleItemArgs struct {
	BundleID     string
	Kind         bundle.ItemKind
	AllowMissing bool
}

type FakeResolver struct {
	Items map[string]map[bundle.ItemKind][]byte

	GetBundleItemArgs []GetBundleItemArgs
	GetBundleItemErr  error

	ListInfos []bundle.Info
	ListErr   error

	lock sync.Mutex
}

func NewFakeResolver() *FakeResolver {
	return &FakeResolver{Items: map[string]map[bundle.ItemKind][]byte{}}
}

// AddItem registers content for a bundle id, also making the id known.
func (r *FakeResolver) AddItem(bundleID string, kind bundle.ItemKind, content string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.Items[bundleID] == nil {
		r.Items[bundleID] = map[bundle.ItemKind][]byte{}
	}
	r.Items[bundleID][kind] = []byte(content)
}

func (r *FakeResolver) AddBundle(info bundle.Info) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.ListInfos = append(r.ListInfos, info)
	if r.Items[info.ID] == nil {
		r.Items[info.ID] = map[bundle.ItemKind][]byte{}
	}
}

func (r *FakeResolver) GetBundleItem(bundleID string, kind bundle.ItemKind, allowMissing bool) ([]byte, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.GetBundleItemArgs = append(r.GetBundleItemArgs, GetBundleItemArgs{
		BundleID:     bundleID,
		Kind:         kind,
		AllowMissing: allowMissing,
	})

	if r.GetBundleItemErr != nil {
		return nil, r.GetBundleItemErr
	}

	items, found := r.Items[bundleID]
	if !found {
		return nil, bundle.UnknownBundleError{BundleID: bundleID}
	}

	content, found := items[kind]
	if !found {
		if allowMissing {
			return nil, nil
		}
		return nil, bundle.ResolverError{BundleID: bundleID, Kind: kind, Err: bundle.NewInvalidBundleError(kind, bundleID, "missing document")}
	}

	return content, nil
}

func (r *FakeResolver) List() ([]bundle.Info, error) {
	return r.ListInfos, r.ListErr
}
