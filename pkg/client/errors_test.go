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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

func TestParseError_APIError(t *testing.T) {
	tests := []struct {
		name      string
		err       *httpclient.APIError
		expected  ErrorType
		retryable bool
	}{
		{name: "throttling code", err: &httpclient.APIError{StatusCode: 400, Code: "Throttling.User"}, expected: ErrorTypeThrottled, retryable: true},
		{name: "not found code", err: &httpclient.APIError{StatusCode: 400, Code: "Job.NotFound"}, expected: ErrorTypeNotFound},
		{name: "not exist code", err: &httpclient.APIError{StatusCode: 400, Code: "DatasetNotExist"}, expected: ErrorTypeNotFound},
		{name: "bad signature", err: &httpclient.APIError{StatusCode: 400, Code: "SignatureDoesNotMatch"}, expected: ErrorTypeUnauthorized},
		{name: "forbidden code", err: &httpclient.APIError{StatusCode: 403, Code: "Forbidden.RAM"}, expected: ErrorTypeForbidden},
		{name: "invalid parameter", err: &httpclient.APIError{StatusCode: 400, Code: "InvalidParameter.PageSize"}, expected: ErrorTypeValidation},
		{name: "already exists", err: &httpclient.APIError{StatusCode: 400, Code: "ServiceAlreadyExists"}, expected: ErrorTypeConflict},
		{name: "internal error", err: &httpclient.APIError{StatusCode: 500, Code: "InternalError"}, expected: ErrorTypeServerError, retryable: true},
		{name: "status 404", err: &httpclient.APIError{StatusCode: http.StatusNotFound}, expected: ErrorTypeNotFound},
		{name: "status 429", err: &httpclient.APIError{StatusCode: http.StatusTooManyRequests}, expected: ErrorTypeThrottled, retryable: true},
		{name: "status 409", err: &httpclient.APIError{StatusCode: http.StatusConflict}, expected: ErrorTypeConflict},
		{name: "status 418", err: &httpclient.APIError{StatusCode: http.StatusTeapot}, expected: ErrorTypeClientError},
		{name: "status 503", err: &httpclient.APIError{StatusCode: http.StatusServiceUnavailable}, expected: ErrorTypeServerError, retryable: true},
		{name: "status 504", err: &httpclient.APIError{StatusCode: http.StatusGatewayTimeout}, expected: ErrorTypeTimeout, retryable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("getting job: %w", tt.err)
			perr := ParseError(wrapped)
			assert.Equal(t, tt.expected, perr.Type, "got %s", perr.Type)
			assert.Equal(t, tt.retryable, perr.Retryable)
			assert.Equal(t, tt.err.StatusCode, perr.StatusCode)
			assert.ErrorIs(t, perr, tt.err)
		})
	}
}

func TestParseError_NonAPIErrors(t *testing.T) {
	assert.Nil(t, ParseError(nil))

	timeout := ParseError(fmt.Errorf("making request: %w", context.DeadlineExceeded))
	assert.Equal(t, ErrorTypeTimeout, timeout.Type)
	assert.True(t, timeout.Retryable)

	validation := ParseError(fmt.Errorf("%w: region", ErrMissingArgument))
	assert.Equal(t, ErrorTypeValidation, validation.Type)

	unknown := ParseError(errors.New("something odd"))
	assert.Equal(t, ErrorTypeUnknown, unknown.Type)

	already := &PAIError{Type: ErrorTypeConflict}
	assert.Same(t, already, ParseError(fmt.Errorf("wrapped: %w", already)))
}

func TestErrorHelpers(t *testing.T) {
	notFound := &httpclient.APIError{StatusCode: 404, Code: "ServiceNotFound"}
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsNotFound(nil))
	assert.False(t, IsNotFound(errors.New("x")))

	throttled := &httpclient.APIError{StatusCode: 400, Code: "Throttling"}
	assert.True(t, IsThrottled(throttled))
	assert.True(t, IsRetryable(throttled))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsThrottled(nil))
}

func TestPAIError(t *testing.T) {
	withCode := &PAIError{StatusCode: 404, Code: "JobNotFound", Message: "no such job"}
	assert.Equal(t, "PAI error (code: JobNotFound, status: 404): no such job", withCode.Error())
	assert.True(t, withCode.IsClientError())
	assert.False(t, withCode.IsServerError())

	plain := &PAIError{StatusCode: 502, Message: "bad gateway"}
	assert.Equal(t, "PAI error (status: 502): bad gateway", plain.Error())
	assert.True(t, plain.IsServerError())

	assert.Equal(t, "Throttled", ErrorTypeThrottled.String())
	assert.Equal(t, "ErrorType(99)", ErrorType(99).String())
}
