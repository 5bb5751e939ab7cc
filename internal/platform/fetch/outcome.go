package fetch

import "fmt"

// Status is the tri-state result of an upstream lookup, with Empty split out
// for 2xx responses whose envelope carried no data.
type Status int

const (
	StatusFound Status = iota + 1
	StatusEmpty
	StatusNotFound
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusEmpty:
		return "empty"
	case StatusNotFound:
		return "not_found"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ErrorKind classifies a StatusError outcome.
type ErrorKind string

const (
	// ErrorRetryable covers 5xx, 429, timeouts and an open circuit once the
	// attempt budget is spent.
	ErrorRetryable       ErrorKind = "retryable"
	ErrorFatal           ErrorKind = "fatal"
	ErrorDeserialization ErrorKind = "deserialization"
	ErrorRequestFailed   ErrorKind = "request_failed"
)

// Outcome is what every upstream client returns instead of (T, error).
type Outcome[T any] struct {
	Status Status
	Value  T
	Kind   ErrorKind
	Err    error
}

func Found[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusFound, Value: v}
}

func Empty[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusEmpty}
}

func NotFound[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusNotFound}
}

func Failed[T any](kind ErrorKind, err error) Outcome[T] {
	if err == nil {
		err = fmt.Errorf("upstream request failed (%s)", kind)
	}
	return Outcome[T]{Status: StatusError, Kind: kind, Err: err}
}

func (o Outcome[T]) IsFound() bool {
	return o.Status == StatusFound
}

// Retryable reports whether a later attempt at the same resource could succeed.
func (o Outcome[T]) Retryable() bool {
	return o.Status == StatusError && o.Kind == ErrorRetryable
}

func (o Outcome[T]) String() string {
	if o.Status == StatusError {
		return fmt.Sprintf("error(%s): %v", o.Kind, o.Err)
	}
	return o.Status.String()
}

// Map converts the found value and carries every other status through unchanged.
func Map[T, U any](o Outcome[T], fn func(T) U) Outcome[U] {
	switch o.Status {
	case StatusFound:
		return Found(fn(o.Value))
	case StatusEmpty:
		return Empty[U]()
	case StatusNotFound:
		return NotFound[U]()
	default:
		return Outcome[U]{Status: StatusError, Kind: o.Kind, Err: o.Err}
	}
}
