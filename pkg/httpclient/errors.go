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

package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError is the error envelope returned by the PAI OpenAPI gateway.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"Code"`
	Message    string `json:"Message"`
	RequestID  string `json:"RequestId"`
	HostID     string `json:"HostId"`
	Recommend  string `json:"Recommend"`
	Endpoint   string `json:"-"`
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Code != "" {
		fmt.Fprintf(&b, "PAI API error (code: %s): %s", e.Code, e.Message)
	} else {
		fmt.Fprintf(&b, "HTTP %d: %s", e.StatusCode, e.Message)
	}
	if e.RequestID != "" {
		fmt.Fprintf(&b, " (request id: %s)", e.RequestID)
	}
	fmt.Fprintf(&b, " (endpoint: %s)", e.Endpoint)
	return b.String()
}

// IsNotFound returns true if the error is a 404 Not Found error
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsForbidden returns true if the error is a 403 Forbidden error
func (e *APIError) IsForbidden() bool {
	return e.StatusCode == http.StatusForbidden
}

// IsUnauthorized returns true if the error is a 401 Unauthorized error
func (e *APIError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// parseAPIError decodes the gateway envelope. encoding/json matches keys case
// insensitively, so the lower-camel variants some services emit decode too.
func parseAPIError(statusCode int, body []byte, endpoint, requestID string) error {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Code == "" && apiErr.Message == "") {
		*apiErr = APIError{Message: strings.TrimSpace(string(body))}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(statusCode)
		}
	}
	apiErr.StatusCode = statusCode
	apiErr.Endpoint = endpoint
	if apiErr.RequestID == "" {
		apiErr.RequestID = requestID
	}
	return apiErr
}
