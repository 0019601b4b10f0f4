package client

import "fmt"

// ErrorKind classifies a failed transport operation.
type ErrorKind int

const (
	// ErrNetwork means the request could not complete (connection refused,
	// DNS failure, timeout).
	ErrNetwork ErrorKind = iota
	// ErrProtocol means the response arrived but was not well-formed for the
	// endpoint (bad JSON, unexpected status with no error body).
	ErrProtocol
	// ErrApplication means the server reported a logical error via the
	// "error" field of its JSON body.
	ErrApplication
)

// String returns the human-readable kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrNetwork:
		return "network"
	case ErrProtocol:
		return "protocol"
	case ErrApplication:
		return "application"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// TransportError is returned by Client for any failed request/response
// cycle. Callers inspect Kind to decide how to surface the failure; the
// poll loop treats every kind as transient.
type TransportError struct {
	Kind ErrorKind
	Op   string // endpoint shorthand, e.g. "fetch snapshot"
	Msg  string // server-reported message for ErrApplication
	Err  error  // underlying cause, if any
}

func (e *TransportError) Error() string {
	switch {
	case e.Msg != "":
		return fmt.Sprintf("client: %s: %s error: %s", e.Op, e.Kind, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("client: %s: %s error: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("client: %s: %s error", e.Op, e.Kind)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// CommandError is returned when a recording command completed its
// request/response cycle but the server did not accept the command. The
// session controller leaves its state unchanged and surfaces the message
// to the user.
type CommandError struct {
	Op     string // "stop recording", "generate report"
	Status string // the non-success status the server returned
	Msg    string // optional server-provided detail
}

func (e *CommandError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("client: %s rejected (status %q): %s", e.Op, e.Status, e.Msg)
	}
	return fmt.Sprintf("client: %s rejected (status %q)", e.Op, e.Status)
}
