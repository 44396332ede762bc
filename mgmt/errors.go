package mgmt

import (
	"fmt"
)

// AccessDeniedError is raised when the target refuses a request. Request holds
// the denied request text exactly as it was sent.
type AccessDeniedError struct {
	Request string
	Reason  string
}

func (e AccessDeniedError) Error() string {
	if e.Reason == "" {
		return "Access denied by management endpoint"
	}
	return fmt.Sprintf("Access denied by management endpoint: %s", e.Reason)
}

// FaultError is any fault the installer cannot resolve on its own.
type FaultError struct {
	Fault   Fault
	Request string
}

func (e FaultError) Error() string {
	return fmt.Sprintf("Management fault: %s", e.Fault)
}

type UnexpectedResponseError struct {
	Request    string
	StatusCode int
	Reason     string
}

func (e UnexpectedResponseError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("Unexpected management response (status %d): %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("Unexpected management response: %s", e.Reason)
}

// RequestError is a request that could not be exchanged with the target.
// Request holds the request text as it was sent.
type RequestError struct {
	Action   Action
	Resource Resource
	Request  string
	Err      error
}

func (e RequestError) Error() string {
	return fmt.Sprintf("Invoking %s on %s: %s", actionName(e.Action), e.Resource, e.Err)
}

func (e RequestError) Unwrap() error {
	return e.Err
}
