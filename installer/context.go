package installer

import (
	"strings"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
)

const DefaultRootFolderID = "-5002"

// CancelledFunc reports whether the caller asked the run to stop. It is only
// ever read.
type CancelledFunc func() bool

// Context is the configuration of one installation or dry run. It is built
// once per attempt and must not be shared between runs.
type Context struct {
	BundleInfo bundle.Info
	Mapping    bundle.Mapping
	Resolver   bundle.Resolver

	// Prefix, when set, is prepended to policy names and service URL patterns.
	Prefix string

	CheckAssertionExistence bool

	// RootFolderID is the bundle's logical root folder. Defaults to DefaultRootFolderID.
	RootFolderID string

	// InstallFolder, when set, is get-or-created under the root and receives the bundle's folders.
	InstallFolder string

	Cancelled CancelledFunc
	PreSave   PreSaveCallback
}

func NewContext(
	info bundle.Info,
	mapping bundle.Mapping,
	prefix string,
	resolver bundle.Resolver,
	checkAssertionExistence bool,
) Context {
	return Context{
		BundleInfo:              info,
		Mapping:                 mapping,
		Resolver:                resolver,
		Prefix:                  strings.TrimSpace(prefix),
		CheckAssertionExistence: checkAssertionExistence,
		RootFolderID:            DefaultRootFolderID,
	}
}

func (c Context) rootFolderID() string {
	if c.RootFolderID == "" {
		return DefaultRootFolderID
	}
	return c.RootFolderID
}

// PrefixedName is the display name sent to the target for a bundle entity named name.
func (c Context) PrefixedName(name string) string {
	if c.Prefix == "" {
		return name
	}
	return c.Prefix + " " + name
}

// PrefixedPath rewrites a service URL pattern to "/" + prefix + path. A
// pattern without a leading slash is treated as rooted.
func (c Context) PrefixedPath(path string) string {
	prefix := strings.Trim(c.Prefix, "/")
	if prefix == "" {
		return path
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return "/" + prefix + path
}

func (c Context) IsCancelled() bool {
	return c.Cancelled != nil && c.Cancelled()
}
