package topology

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedTimestamp means a device's last-seen value could not be parsed
	ErrMalformedTimestamp = errors.New("malformed last-seen timestamp")
	// ErrUpstreamQueryFailed means the hub did not report success for a query
	ErrUpstreamQueryFailed = errors.New("upstream query failed")
)

// TimestampError is reported per device; the device is skipped for the pass
type TimestampError struct {
	Address string
	Value   string
	Err     error
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("device %s: %v %q: %v", e.Address, ErrMalformedTimestamp, e.Value, e.Err)
}

func (e *TimestampError) Unwrap() []error {
	return []error{ErrMalformedTimestamp, e.Err}
}

// QueryFailedError is returned for a snapshot without a success indicator
type QueryFailedError struct {
	RequestID int
	Code      string
	Message   string
}

func (e *QueryFailedError) Error() string {
	if e.Code == "" && e.Message == "" {
		return fmt.Sprintf("request %d: %v", e.RequestID, ErrUpstreamQueryFailed)
	}
	return fmt.Sprintf("request %d: %v: %s %s", e.RequestID, ErrUpstreamQueryFailed, e.Code, e.Message)
}

func (e *QueryFailedError) Unwrap() error {
	return ErrUpstreamQueryFailed
}
