package availability

import "time"

// StatusKind tells apart "no occupied days" from "occupancy unknown".
type StatusKind string

const (
	StatusLoaded      StatusKind = "loaded"
	StatusLoading     StatusKind = "loading"
	StatusUnavailable StatusKind = "unavailable"
)

// Status is what the date picker receives about a property's occupancy.
type Status struct {
	kind  StatusKind
	dates []time.Time
	err   error
}

func Loaded(dates []time.Time) Status {
	return Status{kind: StatusLoaded, dates: append([]time.Time(nil), dates...)}
}

func Loading() Status {
	return Status{kind: StatusLoading}
}

func Unavailable(err error) Status {
	return Status{kind: StatusUnavailable, err: err}
}

func (s Status) Kind() StatusKind {
	if s.kind == "" {
		return StatusLoading
	}
	return s.kind
}

// Dates is empty unless the status is loaded, so a picker fed from an unknown state
// blocks nothing and booking stays possible.
func (s Status) Dates() []time.Time {
	if s.kind != StatusLoaded {
		return nil
	}
	return append([]time.Time(nil), s.dates...)
}

func (s Status) Err() error {
	return s.err
}

func (s Status) Known() bool {
	return s.kind == StatusLoaded
}
