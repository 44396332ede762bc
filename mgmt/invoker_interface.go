package mgmt

// Response pairs the transport status with the parsed response document.
type Response struct {
	StatusCode int
	Document   Document
}

type Invoker interface {
	// Invoke executes one exchange and blocks for its response. Protocol faults
	// come back as documents; only transport failures are errors.
	Invoke(request Request) (Response, error)
}
