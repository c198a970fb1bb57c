/*
Copyright The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

// ErrorType represents the type of PAI error
type ErrorType int

const (
	// ErrorTypeUnknown represents an unknown error type
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNotFound represents a resource not found error
	ErrorTypeNotFound
	// ErrorTypeUnauthorized represents an authentication error
	ErrorTypeUnauthorized
	// ErrorTypeForbidden represents an authorization error
	ErrorTypeForbidden
	// ErrorTypeThrottled represents a flow control error
	ErrorTypeThrottled
	// ErrorTypeServerError represents a server error
	ErrorTypeServerError
	// ErrorTypeClientError represents a client error
	ErrorTypeClientError
	// ErrorTypeTimeout represents a timeout error
	ErrorTypeTimeout
	// ErrorTypeConflict represents a resource conflict error
	ErrorTypeConflict
	// ErrorTypeValidation represents a validation error
	ErrorTypeValidation
)

var errorTypeNames = map[ErrorType]string{
	ErrorTypeUnknown:      "Unknown",
	ErrorTypeNotFound:     "NotFound",
	ErrorTypeUnauthorized: "Unauthorized",
	ErrorTypeForbidden:    "Forbidden",
	ErrorTypeThrottled:    "Throttled",
	ErrorTypeServerError:  "ServerError",
	ErrorTypeClientError:  "ClientError",
	ErrorTypeTimeout:      "Timeout",
	ErrorTypeConflict:     "Conflict",
	ErrorTypeValidation:   "Validation",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ErrorType(%d)", int(t))
}

// Client-side precondition failures.
var (
	ErrMissingWorkspace   = errors.New("workspace id is required")
	ErrNotSubmitted       = errors.New("resource has not been submitted")
	ErrConflictingOptions = errors.New("conflicting options")
	ErrMissingArgument    = errors.New("missing required argument")
)

// PAIError is a classified PAI API error.
type PAIError struct {
	Type       ErrorType
	StatusCode int
	Code       string
	Message    string
	RequestID  string
	// Retryable is informational only; nothing in this module retries.
	Retryable bool
	wrapped   error
}

// Error implements the error interface
func (e *PAIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("PAI error (code: %s, status: %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("PAI error (status: %d): %s", e.StatusCode, e.Message)
}

// Unwrap returns the wrapped error
func (e *PAIError) Unwrap() error {
	return e.wrapped
}

func (e *PAIError) IsNotFound() bool {
	return e.Type == ErrorTypeNotFound
}

func (e *PAIError) IsThrottled() bool {
	return e.Type == ErrorTypeThrottled
}

func (e *PAIError) IsServerError() bool {
	return e.Type == ErrorTypeServerError || (e.StatusCode >= 500 && e.StatusCode < 600)
}

func (e *PAIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// ParseError classifies err. Gateway errors are classified by code first and by HTTP
// status second; transport errors by their Go type.
func ParseError(err error) *PAIError {
	if err == nil {
		return nil
	}

	var paiErr *PAIError
	if errors.As(err, &paiErr) {
		return paiErr
	}

	var apiErr *httpclient.APIError
	if errors.As(err, &apiErr) {
		return parseAPIError(apiErr, err)
	}

	result := &PAIError{Message: err.Error(), wrapped: err}
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		result.Type = ErrorTypeTimeout
		result.Retryable = true
	case errors.Is(err, ErrMissingWorkspace), errors.Is(err, ErrConflictingOptions), errors.Is(err, ErrMissingArgument):
		result.Type = ErrorTypeValidation
	default:
		result.Type = ErrorTypeUnknown
	}
	return result
}

func parseAPIError(apiErr *httpclient.APIError, wrapped error) *PAIError {
	result := &PAIError{
		StatusCode: apiErr.StatusCode,
		Code:       apiErr.Code,
		Message:    apiErr.Message,
		RequestID:  apiErr.RequestID,
		wrapped:    wrapped,
	}
	result.Type = typeFromCode(apiErr.Code)
	if result.Type == ErrorTypeUnknown {
		result.Type = typeFromStatus(apiErr.StatusCode)
	}
	result.Retryable = result.Type == ErrorTypeThrottled || result.Type == ErrorTypeServerError ||
		result.Type == ErrorTypeTimeout
	return result
}

func typeFromCode(code string) ErrorType {
	lower := strings.ToLower(code)
	switch {
	case lower == "":
		return ErrorTypeUnknown
	case strings.HasPrefix(lower, "throttling"), strings.Contains(lower, "flowcontrol"):
		return ErrorTypeThrottled
	case strings.HasSuffix(lower, "notfound"), strings.Contains(lower, "notexist"):
		return ErrorTypeNotFound
	case strings.HasPrefix(lower, "invalidaccesskeyid"), strings.HasPrefix(lower, "signaturedoesnotmatch"),
		strings.HasPrefix(lower, "invalidsecuritytoken"):
		return ErrorTypeUnauthorized
	case strings.HasPrefix(lower, "forbidden"), strings.HasPrefix(lower, "nopermission"):
		return ErrorTypeForbidden
	case strings.HasPrefix(lower, "invalid"), strings.HasPrefix(lower, "missing"):
		return ErrorTypeValidation
	case strings.Contains(lower, "alreadyexist"), strings.Contains(lower, "conflict"):
		return ErrorTypeConflict
	case strings.HasPrefix(lower, "internalerror"), strings.HasPrefix(lower, "serviceunavailable"):
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

func typeFromStatus(status int) ErrorType {
	switch status {
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusUnauthorized:
		return ErrorTypeUnauthorized
	case http.StatusForbidden:
		return ErrorTypeForbidden
	case http.StatusTooManyRequests:
		return ErrorTypeThrottled
	case http.StatusConflict:
		return ErrorTypeConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return ErrorTypeValidation
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrorTypeTimeout
	}
	switch {
	case status >= 500:
		return ErrorTypeServerError
	case status >= 400:
		return ErrorTypeClientError
	default:
		return ErrorTypeUnknown
	}
}

// IsNotFound checks if any error indicates a resource was not found
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return ParseError(err).IsNotFound()
}

// IsThrottled reports whether the gateway rejected the call with flow control.
func IsThrottled(err error) bool {
	if err == nil {
		return false
	}
	return ParseError(err).IsThrottled()
}

// IsRetryable checks if an error indicates the operation could be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return ParseError(err).Retryable
}
