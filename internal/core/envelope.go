package core

// Envelope is the uniform return shape for every backend and for the facade.
// A backend never surfaces a Go error to its caller: all transport and
// decode failures fold into Error/Message, and a response that simply
// contains no usable inventory yields an empty Rows slice with Error false.
type Envelope struct {
	Rows    []Row  `json:"rows"`
	Error   bool   `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorEnvelope builds the failure shape used across all backends.
func ErrorEnvelope(message string) Envelope {
	return Envelope{Rows: []Row{}, Error: true, Message: message}
}
