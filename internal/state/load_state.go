package state

import "fmt"

// LoadStatus is the phase of a LoadState.
type LoadStatus int

const (
	StatusIdle LoadStatus = iota
	StatusLoading
	StatusLoaded
	StatusFailed
)

func (s LoadStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusLoaded:
		return "loaded"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadState tracks one fetched collection: Idle, Loading, Loaded(Value) or
// Failed(Message). Value is only meaningful when Loaded and Message only
// when Failed.
type LoadState[T any] struct {
	Status  LoadStatus
	Value   T
	Message string
}

// Idle returns an idle LoadState.
func Idle[T any]() LoadState[T] {
	return LoadState[T]{Status: StatusIdle}
}

// Loading returns a loading LoadState.
func Loading[T any]() LoadState[T] {
	return LoadState[T]{Status: StatusLoading}
}

// Loaded returns a LoadState holding v.
func Loaded[T any](v T) LoadState[T] {
	return LoadState[T]{Status: StatusLoaded, Value: v}
}

// Failed returns a failed LoadState with a displayable message.
func Failed[T any](message string) LoadState[T] {
	return LoadState[T]{Status: StatusFailed, Message: message}
}

func (l LoadState[T]) IsIdle() bool    { return l.Status == StatusIdle }
func (l LoadState[T]) IsLoading() bool { return l.Status == StatusLoading }
func (l LoadState[T]) IsLoaded() bool  { return l.Status == StatusLoaded }
func (l LoadState[T]) IsFailed() bool  { return l.Status == StatusFailed }

// Settled reports whether the load has finished, successfully or not.
func (l LoadState[T]) Settled() bool {
	return l.Status == StatusLoaded || l.Status == StatusFailed
}

// Get returns the loaded value, or the zero value when not Loaded.
func (l LoadState[T]) Get() T {
	if l.Status == StatusLoaded {
		return l.Value
	}
	var zero T
	return zero
}

func (l LoadState[T]) String() string {
	if l.Status == StatusFailed {
		return fmt.Sprintf("failed: %s", l.Message)
	}
	return l.Status.String()
}
