package bundle

// Mapping holds caller supplied overrides consulted before any remote lookup.
type Mapping struct {
	// Folders maps a bundle folder id to an id that already exists on the target.
	Folders map[string]string

	// JdbcConnections renames JDBC connection references inside policy bodies.
	JdbcConnections map[string]string

	// HostVersion, when set, inserts a version segment after ${host_*} variables in routing URLs.
	HostVersion string
}

func (m Mapping) FolderOverride(oldID string) (string, bool) {
	newID, found := m.Folders[oldID]
	return newID, found && newID != ""
}

func (m Mapping) JdbcConnection(name string) string {
	if mapped, found := m.JdbcConnections[name]; found && mapped != "" {
		return mapped
	}
	return name
}
