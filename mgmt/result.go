package mgmt

type Outcome int

const (
	Created Outcome = iota
	AlreadyExisted
	AccessDenied
	OtherFault
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "Created"
	case AlreadyExisted:
		return "AlreadyExisted"
	case AccessDenied:
		return "AccessDenied"
	default:
		return "OtherFault"
	}
}

// CreateResult is the outcome of one create attempt. AlreadyExists is data here, not an error.
type CreateResult struct {
	Outcome Outcome
	// ID is the new id for Created, or the recovered id once an AlreadyExisted result is resolved.
	ID      string
	Request Request
	Fault   Fault
}

// Err converts the fatal outcomes into their typed errors.
func (r CreateResult) Err() error {
	switch r.Outcome {
	case AccessDenied:
		return AccessDeniedError{Request: r.Request.Text, Reason: r.Fault.Reason}
	case OtherFault:
		if r.Fault.Subcode == "" && r.Fault.Code == "" {
			return UnexpectedResponseError{Request: r.Request.Text, Reason: "no created id and no fault in response"}
		}
		return FaultError{Fault: r.Fault, Request: r.Request.Text}
	default:
		return nil
	}
}

func ClassifyCreate(request Request, response Response) CreateResult {
	result := CreateResult{Request: request}

	if fault, found := response.Document.Fault(); found {
		result.Fault = fault
		switch {
		case fault.AlreadyExists():
			result.Outcome = AlreadyExisted
		case fault.AccessDenied():
			result.Outcome = AccessDenied
		default:
			result.Outcome = OtherFault
		}
		return result
	}

	if id, found := response.Document.CreatedID(); found {
		result.Outcome = Created
		result.ID = id
		return result
	}

	result.Outcome = OtherFault
	return result
}
