package mgmt

const (
	SubcodeAlreadyExists         = "AlreadyExists"
	SubcodeAccessDenied          = "AccessDenied"
	SubcodeInvalidSelectors      = "InvalidSelectors"
	SubcodeInternalError         = "InternalError"
	SubcodeInvalidRepresentation = "InvalidRepresentation"
)

type Fault struct {
	Code    string
	Subcode string
	Reason  string
	Detail  string
}

func (f Fault) AlreadyExists() bool    { return f.Subcode == SubcodeAlreadyExists }
func (f Fault) AccessDenied() bool     { return f.Subcode == SubcodeAccessDenied }
func (f Fault) InvalidSelectors() bool { return f.Subcode == SubcodeInvalidSelectors }

func (f Fault) String() string {
	s := f.Subcode
	if s == "" {
		s = f.Code
	}
	if f.Reason != "" {
		s += ": " + f.Reason
	}
	if f.Detail != "" && f.Detail != f.Reason {
		s += " (" + f.Detail + ")"
	}
	return s
}
