package relay

import (
	"errors"
	"fmt"
	"net/url"
)

// csvLabel is the one endpoint whose unexpected-error text carries no label
const csvLabel = "CSV"

// Kind classifies why a tool call produced an error string
type Kind int

const (
	KindConfigMissing Kind = iota + 1
	KindInputNotFound
	KindInputNotAFile
	KindInputUnreadable
	KindTransportFailure
	KindRemoteStatus
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindConfigMissing:
		return "config_missing"
	case KindInputNotFound:
		return "input_not_found"
	case KindInputNotAFile:
		return "input_not_a_file"
	case KindInputUnreadable:
		return "input_unreadable"
	case KindTransportFailure:
		return "transport_failure"
	case KindRemoteStatus:
		return "remote_status_error"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// Error is the structured failure kept until the result is flattened to text
type Error struct {
	Kind   Kind
	Label  string // endpoint label, e.g. "GPT-4.1"
	Status int    // HTTP status for KindRemoteStatus
	Detail string // user-facing detail, when the kind alone is not enough
	Err    error  // underlying cause
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindConfigMissing:
		return fmt.Sprintf("Error: Datasaur %s API configuration missing on server.", e.Label)
	case KindInputNotFound, KindInputNotAFile, KindInputUnreadable:
		return "Error processing CSV: " + e.Detail
	case KindTransportFailure:
		return fmt.Sprintf("Error: API request failed: %v", transportCause(e.Err))
	case KindRemoteStatus:
		return fmt.Sprintf("Error: API request failed with status %d. Check server logs.", e.Status)
	case KindMalformedResponse:
		if e.Detail == "" {
			if e.Label == "" || e.Label == csvLabel {
				return "Error: An unexpected error occurred during API request. Check server logs."
			}
			return fmt.Sprintf("Error: An unexpected error occurred during %s API request. Check server logs.", e.Label)
		}
		return fmt.Sprintf("Error: Received unexpected response format from %s API (%s).", e.Label, e.Detail)
	default:
		return fmt.Sprintf("Error: %v", e.Err)
	}
}

// transportCause drops the *url.Error wrapper so the endpoint URL stays out of tool output
func transportCause(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is either Text or Err, never both
type Result struct {
	Text string
	Err  *Error
}

// OK wraps a successful text result
func OK(text string) Result {
	return Result{Text: text}
}

// Fail wraps an error result
func Fail(err *Error) Result {
	return Result{Err: err}
}

// String flattens the result to the plain-string tool contract
func (r Result) String() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	return r.Text
}
