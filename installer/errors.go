package installer

import (
	"errors"
	"fmt"

	"github.com/cloudfoundry/policy-bundle-installer/bundle"
	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

// errCancelled is returned by installers at a checkpoint once the run was cancelled.
var errCancelled = errors.New("installation cancelled")

type CancelledError struct {
	// State is the phase the run was in when the cancellation was observed.
	State State
}

func (e CancelledError) Error() string {
	return fmt.Sprintf("Installation cancelled during %s", e.State)
}

// InstallationError is a fatal failure of one run. Request is the text of the
// failing management request when there was one; for AccessDenied it is the
// denied request exactly as sent.
type InstallationError struct {
	State    State
	Kind     bundle.ItemKind
	EntityID string
	Request  string
	Err      error
}

func (e InstallationError) Error() string {
	if e.EntityID == "" {
		return fmt.Sprintf("Installation failed during %s: %s", e.State, e.Err)
	}
	return fmt.Sprintf("Installation failed during %s on %s '%s': %s", e.State, e.Kind, e.EntityID, e.Err)
}

func (e InstallationError) Unwrap() error {
	return e.Err
}

// AccessDenied reports whether the run failed because the target refused a request.
func (e InstallationError) AccessDenied() bool {
	var denied mgmt.AccessDeniedError
	return errors.As(e.Err, &denied)
}

func entityError(kind bundle.ItemKind, entityID string, err error) error {
	if err == nil || errors.Is(err, errCancelled) {
		return err
	}

	var installErr InstallationError
	if errors.As(err, &installErr) {
		return err
	}

	var invalid bundle.InvalidBundleError
	if errors.As(err, &invalid) {
		kind, entityID = invalid.Kind, invalid.EntityID
	}

	return InstallationError{
		Kind:     kind,
		EntityID: entityID,
		Request:  requestText(err),
		Err:      err,
	}
}

func requestText(err error) string {
	var requestErr mgmt.RequestError
	if errors.As(err, &requestErr) {
		return requestErr.Request
	}

	var denied mgmt.AccessDeniedError
	if errors.As(err, &denied) {
		return denied.Request
	}

	var fault mgmt.FaultError
	if errors.As(err, &fault) {
		return fault.Request
	}

	var unexpected mgmt.UnexpectedResponseError
	if errors.As(err, &unexpected) {
		return unexpected.Request
	}

	return ""
}
