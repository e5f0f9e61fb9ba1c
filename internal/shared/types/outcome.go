package types

// OutcomeKind tags how a provider call ended
type OutcomeKind int

const (
	// OutcomeOK carries a usable value
	OutcomeOK OutcomeKind = iota
	// OutcomeDegraded carries a partial or empty value plus a reason to surface
	OutcomeDegraded
	// OutcomeFatal carries an error that must abort the caller's operation
	OutcomeFatal
)

// String returns the label used in logs and metrics
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of an external call. Callers switch on Kind.
type Outcome[T any] struct {
	Kind   OutcomeKind
	Value  T
	Reason string
	Err    error
}

// Ok wraps a successful value
func Ok[T any](value T) Outcome[T] {
	return Outcome[T]{Kind: OutcomeOK, Value: value}
}

// Degraded wraps a usable-but-partial value with the reason it is partial
func Degraded[T any](value T, reason string) Outcome[T] {
	return Outcome[T]{Kind: OutcomeDegraded, Value: value, Reason: reason}
}

// Fatal wraps an error that must propagate
func Fatal[T any](err error) Outcome[T] {
	var zero T
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return Outcome[T]{Kind: OutcomeFatal, Value: zero, Reason: reason, Err: err}
}

// IsOK reports whether the call fully succeeded
func (o Outcome[T]) IsOK() bool { return o.Kind == OutcomeOK }

// IsDegraded reports whether the call degraded gracefully
func (o Outcome[T]) IsDegraded() bool { return o.Kind == OutcomeDegraded }

// IsFatal reports whether the call failed hard
func (o Outcome[T]) IsFatal() bool { return o.Kind == OutcomeFatal }
