package installer

import (
	"sort"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

// IdentifierMap maps bundle identifiers of one kind to the identifiers used on
// the target. Entries are write-once for the life of a run.
type IdentifierMap struct {
	kind    bundle.ItemKind
	entries map[string]string
}

func NewIdentifierMap(kind bundle.ItemKind) *IdentifierMap {
	return &IdentifierMap{kind: kind, entries: map[string]string{}}
}

// Put records oldID -> newID. Recording the same pair again is a no-op; mapping
// an id to a second, different target id is an error.
func (m *IdentifierMap) Put(oldID, newID string) error {
	if existing, found := m.entries[oldID]; found {
		if existing == newID {
			return nil
		}
		return bosherr.Errorf("%s '%s' is already mapped to '%s', refusing to remap it to '%s'", m.kind, oldID, existing, newID)
	}

	m.entries[oldID] = newID
	return nil
}

func (m *IdentifierMap) Get(oldID string) (string, bool) {
	newID, found := m.entries[oldID]
	return newID, found
}

func (m *IdentifierMap) Len() int {
	return len(m.entries)
}

// ToMap returns a copy of the entries.
func (m *IdentifierMap) ToMap() map[string]string {
	copied := make(map[string]string, len(m.entries))
	for oldID, newID := range m.entries {
		copied[oldID] = newID
	}
	return copied
}

func (m *IdentifierMap) OldIDs() []string {
	ids := make([]string, 0, len(m.entries))
	for oldID := range m.entries {
		ids = append(ids, oldID)
	}
	sort.Strings(ids)
	return ids
}

// IdentifierMaps are the maps one run produces, one per entity kind.
type IdentifierMaps struct {
	Folders      *IdentifierMap
	Policies     *IdentifierMap
	Services     *IdentifierMap
	Certificates *IdentifierMap

	previous *RunState
}

func NewIdentifierMaps(previous *RunState) IdentifierMaps {
	return IdentifierMaps{
		Folders:      NewIdentifierMap(bundle.KindFolder),
		Policies:     NewIdentifierMap(bundle.KindPolicy),
		Services:     NewIdentifierMap(bundle.KindService),
		Certificates: NewIdentifierMap(bundle.KindTrustedCertificate),
		previous:     previous,
	}
}

// PolicyGUID looks a bundle policy guid up in this run, then in earlier runs.
func (m IdentifierMaps) PolicyGUID(oldGUID string) (string, bool) {
	if newGUID, found := m.Policies.Get(oldGUID); found {
		return newGUID, true
	}
	if m.previous != nil {
		newGUID, found := m.previous.Policies[oldGUID]
		return newGUID, found
	}
	return "", false
}

// ServiceID looks a bundle service id up in this run, then in earlier runs.
func (m IdentifierMaps) ServiceID(oldID string) (string, bool) {
	if newID, found := m.Services.Get(oldID); found {
		return newID, true
	}
	if m.previous != nil {
		newID, found := m.previous.Services[oldID]
		return newID, found
	}
	return "", false
}

// RunState carries identifier maps across the bundles installed by one
// invocation. Later bundles overwrite folder entries of earlier ones.
type RunState struct {
	Folders      map[string]string
	Policies     map[string]string
	Services     map[string]string
	Certificates map[string]string
}

func NewRunState() *RunState {
	return &RunState{
		Folders:      map[string]string{},
		Policies:     map[string]string{},
		Services:     map[string]string{},
		Certificates: map[string]string{},
	}
}

func (s *RunState) Merge(maps IdentifierMaps) {
	merge(s.Folders, maps.Folders)
	merge(s.Policies, maps.Policies)
	merge(s.Services, maps.Services)
	merge(s.Certificates, maps.Certificates)
}

func merge(into map[string]string, from *IdentifierMap) {
	if from == nil {
		return
	}
	for oldID, newID := range from.entries {
		into[oldID] = newID
	}
}
