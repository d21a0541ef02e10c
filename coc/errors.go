package coc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid clash of clans client configuration")
	// ErrInvariantViolated indicates the API returned data that breaks an
	// assumption the client relies on
	ErrInvariantViolated = errors.New("api invariant violated")
)

// statusMessages are the fixed messages for statuses whose API-provided
// text is not useful to callers.
var statusMessages = map[int]string{
	http.StatusForbidden:           "Access denied, either because of missing/incorrect credentials or used API token does not grant access to the requested resource.",
	http.StatusNotFound:            "Resource was not found.",
	http.StatusTooManyRequests:     "Request was throttled, because amount of requests was above the threshold defined for the used API token.",
	http.StatusInternalServerError: "Unknown error happened when handling the request.",
	http.StatusServiceUnavailable:  "Service is temporarily unavailable because of maintenance.",
}

// ErrorKind identifies which part of the pipeline produced an error.
type ErrorKind int

const (
	// KindNone is returned for nil and for errors this package did not produce.
	KindNone ErrorKind = iota
	KindQuery
	KindAPI
	KindUnknownAPI
	KindDecode
	KindInvariant
	KindTransport
)

func (k ErrorKind) String() string {
	switch k {
	case KindQuery:
		return "query"
	case KindAPI:
		return "api"
	case KindUnknownAPI:
		return "unknown_api"
	case KindDecode:
		return "decode"
	case KindInvariant:
		return "invariant"
	case KindTransport:
		return "transport"
	default:
		return "none"
	}
}

// KindOf reports the kind of err, looking through wrapping.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		queryErr     *QueryError
		apiErr       *APIError
		unknownErr   *UnknownAPIError
		decodeErr    *DecodeError
		invariantErr *InvariantError
		transportErr *TransportError
	)
	switch {
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.As(err, &unknownErr):
		return KindUnknownAPI
	case errors.As(err, &queryErr):
		return KindQuery
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &invariantErr):
		return KindInvariant
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindNone
	}
}

// APIError is a non-200 response whose body parsed as an API error document.
type APIError struct {
	StatusCode int
	// Message is the caller-facing explanation of the failure.
	Message string
	Detail  ClientError
	Body    string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("clash of clans API error: status %d: %s", e.StatusCode, e.Message)
}

// Reason returns the machine-readable reason the API gave, if any.
func (e *APIError) Reason() string {
	return e.Detail.Reason
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if the error indicates an authentication failure
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsThrottled checks if the request was rejected by the token's rate limit
func (e *APIError) IsThrottled() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// UnknownAPIError is a non-200 response whose body was not an API error
// document. Err holds the reason the body could not be read as one.
type UnknownAPIError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UnknownAPIError) Error() string {
	return fmt.Sprintf("unknown clash of clans API error (status code = %d): %s", e.StatusCode, e.Body)
}

func (e *UnknownAPIError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if the error indicates a not found response
func (e *UnknownAPIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// DecodeError reports the first property of a document that did not fit the
// expected model.
type DecodeError struct {
	// Model is the innermost model being bound when the failure happened.
	Model string
	// Property is the full path from the document root, e.g. items[1].location.name.
	Property string
	// Value is the offending value for scalars, nil otherwise.
	Value any
	// Type is the JSON type found, or "missing".
	Type   string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	msg := fmt.Sprintf("could not deserialize property %q on model %s (value type = %q)", e.Property, e.Model, e.Type)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// QueryError reports query options rejected before any request was made.
type QueryError struct {
	Query string
	// Options lists every offending option name, sorted.
	Options []string
	Reason  string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid %s options: %s: %s", e.Query, e.Reason, strings.Join(e.Options, ", "))
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// InvariantError reports a response that decoded fine but contradicts an
// assumption of the calling operation.
type InvariantError struct {
	Operation string
	Reason    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolated
}

// TransportError wraps a failure to complete a round trip.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ClassifyResponse maps a non-200 status and its body to exactly one error:
// an *APIError when the body is an API error document, an *UnknownAPIError
// otherwise.
func ClassifyResponse(statusCode int, body []byte) error {
	detail, err := DecodeClientError(body)
	if err != nil {
		return &UnknownAPIError{
			StatusCode: statusCode,
			Body:       string(body),
			Err:        err,
		}
	}

	return &APIError{
		StatusCode: statusCode,
		Message:    resolveMessage(statusCode, detail),
		Detail:     *detail,
		Body:       string(body),
	}
}

// resolveMessage picks the message for an API error: the API's own text for
// 400, a fixed sentence for well-known statuses, then reason, then message.
func resolveMessage(statusCode int, detail *ClientError) string {
	message := ""
	if detail.Message != nil {
		message = *detail.Message
	}

	if statusCode == http.StatusBadRequest && message != "" {
		return message
	}
	if fixed, ok := statusMessages[statusCode]; ok {
		return fixed
	}
	if detail.Reason != "" {
		return detail.Reason
	}
	if message != "" {
		return message
	}
	return fmt.Sprintf("No error message for status code = %d", statusCode)
}
