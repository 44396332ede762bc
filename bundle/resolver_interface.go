package bundle

type Resolver interface {
	// GetBundleItem returns the raw document for kind. With allowMissing a bundle
	// without such a document yields nil content and no error.
	GetBundleItem(bundleID string, kind ItemKind, allowMissing bool) ([]byte, error)

	// List returns the catalog of installable bundles.
	List() ([]Info, error)
}
