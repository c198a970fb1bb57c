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
	"fmt"
	"net/http"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

var _ DSWAPI = (*DSWClient)(nil)

// DSWClient calls the pai-dsw service.
type DSWClient struct {
	client *httpclient.PAIHTTPClient
}

func NewDSWClient(client *httpclient.PAIHTTPClient) *DSWClient {
	return &DSWClient{client: client}
}

func (c *DSWClient) GetInstance(ctx context.Context, instanceID string) (*dsw.Instance, error) {
	var resp dsw.GetInstanceResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v2/instances/{InstanceId}",
		PathParams: map[string]string{"InstanceId": instanceID},
		Action:     "GetInstance",
	}, &resp); err != nil {
		return nil, fmt.Errorf("getting instance %s: %w", instanceID, err)
	}
	return &resp.Instance, nil
}

func (c *DSWClient) ListInstances(ctx context.Context, req *dsw.ListInstancesRequest) (*dsw.ListInstancesResponse, error) {
	var resp dsw.ListInstancesResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method: http.MethodGet,
		Path:   "/api/v2/instances",
		Query:  req.Query(),
		Action: "ListInstances",
	}, &resp); err != nil {
		return nil, fmt.Errorf("listing instances: %w", err)
	}
	return &resp, nil
}

func (c *DSWClient) StartInstance(ctx context.Context, instanceID string) error {
	return c.instanceAction(ctx, http.MethodPut, "/api/v2/instances/{InstanceId}/start", "StartInstance", instanceID)
}

func (c *DSWClient) StopInstance(ctx context.Context, instanceID string) error {
	return c.instanceAction(ctx, http.MethodPut, "/api/v2/instances/{InstanceId}/stop", "StopInstance", instanceID)
}

func (c *DSWClient) DeleteInstance(ctx context.Context, instanceID string) error {
	return c.instanceAction(ctx, http.MethodDelete, "/api/v2/instances/{InstanceId}", "DeleteInstance", instanceID)
}

// instanceAction also fails when the body reports Success=false with a 2xx status.
func (c *DSWClient) instanceAction(ctx context.Context, method, path, action, instanceID string) error {
	var resp dsw.ActionResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     method,
		Path:       path,
		PathParams: map[string]string{"InstanceId": instanceID},
		Action:     action,
	}, &resp); err != nil {
		return fmt.Errorf("%s %s: %w", action, instanceID, err)
	}
	if resp.Code != "" && !resp.Success {
		return fmt.Errorf("%s %s: %w", action, instanceID, &httpclient.APIError{
			StatusCode: http.StatusOK,
			Code:       resp.Code,
			Message:    resp.Message,
			RequestID:  resp.RequestID,
		})
	}
	return nil
}
