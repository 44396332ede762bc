package bundle

import (
	"fmt"
)

type UnknownBundleError struct {
	BundleID string
}

func (e UnknownBundleError) Error() string {
	return fmt.Sprintf("Unknown bundle '%s'", e.BundleID)
}

// ResolverError reports any failure to retrieve bundle content other than an unknown bundle id.
type ResolverError struct {
	BundleID string
	Kind     ItemKind
	Err      error
}

func (e ResolverError) Error() string {
	return fmt.Sprintf("Resolving %s item of bundle '%s': %s", e.Kind, e.BundleID, e.Err.Error())
}

func (e ResolverError) Unwrap() error {
	return e.Err
}

// InvalidBundleError reports bundle content that cannot be installed, naming the owning entity.
type InvalidBundleError struct {
	Kind     ItemKind
	EntityID string
	Reason   string
	Err      error
}

func NewInvalidBundleError(kind ItemKind, entityID, reason string) InvalidBundleError {
	return InvalidBundleError{Kind: kind, EntityID: entityID, Reason: reason}
}

func (e InvalidBundleError) Error() string {
	msg := fmt.Sprintf("Invalid %s '%s' in bundle: %s", e.Kind, e.EntityID, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e InvalidBundleError) Unwrap() error {
	return e.Err
}
