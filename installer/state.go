package installer

type State int

const (
	NotStarted State = iota
	InstallingFolders
	InstallingPolicies
	InstallingServices
	InstallingCertificates
	Complete
	Cancelled
	Failed
)

var stateNames = map[State]string{
	NotStarted:             "NotStarted",
	InstallingFolders:      "Folders",
	InstallingPolicies:     "Policies",
	InstallingServices:     "Services",
	InstallingCertificates: "Certificates",
	Complete:               "Complete",
	Cancelled:              "Cancelled",
	Failed:                 "Failed",
}

func (s State) String() string {
	if name, found := stateNames[s]; found {
		return name
	}
	return "Unknown"
}

func (s State) Terminal() bool {
	return s == Complete || s == Cancelled || s == Failed
}
