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

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

var _ EASAPI = (*EASClient)(nil)

// EASClient calls the pai-eas service.
type EASClient struct {
	client *httpclient.PAIHTTPClient
}

func NewEASClient(client *httpclient.PAIHTTPClient) *EASClient {
	return &EASClient{client: client}
}

const easServicePath = "/api/v2/services/{ClusterId}/{ServiceName}"

func servicePathParams(region, name string) map[string]string {
	return map[string]string{"ClusterId": region, "ServiceName": name}
}

func (c *EASClient) CreateService(ctx context.Context, cfg *eas.ServiceConfig) (*eas.CreateServiceResponse, error) {
	var resp eas.CreateServiceResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method: http.MethodPost,
		Path:   "/api/v2/services",
		Body:   cfg,
		Action: "CreateService",
	}, &resp); err != nil {
		return nil, fmt.Errorf("creating service %s: %w", cfg.Name, err)
	}
	return &resp, nil
}

func (c *EASClient) DescribeService(ctx context.Context, region, name string) (*eas.Service, error) {
	var resp eas.DescribeServiceResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       easServicePath,
		PathParams: servicePathParams(region, name),
		Action:     "DescribeService",
	}, &resp); err != nil {
		return nil, fmt.Errorf("describing service %s: %w", name, err)
	}
	return &resp.Service, nil
}

func (c *EASClient) ListServices(ctx context.Context, req *eas.ListServicesRequest) (*eas.ListServicesResponse, error) {
	var resp eas.ListServicesResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method: http.MethodGet,
		Path:   "/api/v2/services",
		Query:  req.Query(),
		Action: "ListServices",
	}, &resp); err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	return &resp, nil
}

func (c *EASClient) UpdateService(ctx context.Context, region, name string, cfg *eas.ServiceConfig) error {
	return c.serviceAction(ctx, httpclient.RequestConfig{
		Method:     http.MethodPut,
		Path:       easServicePath,
		PathParams: servicePathParams(region, name),
		Body:       cfg,
		Action:     "UpdateService",
	}, name)
}

func (c *EASClient) StartService(ctx context.Context, region, name string) error {
	return c.serviceAction(ctx, httpclient.RequestConfig{
		Method:     http.MethodPut,
		Path:       easServicePath + "/start",
		PathParams: servicePathParams(region, name),
		Action:     "StartService",
	}, name)
}

func (c *EASClient) StopService(ctx context.Context, region, name string) error {
	return c.serviceAction(ctx, httpclient.RequestConfig{
		Method:     http.MethodPut,
		Path:       easServicePath + "/stop",
		PathParams: servicePathParams(region, name),
		Action:     "StopService",
	}, name)
}

func (c *EASClient) DeleteService(ctx context.Context, region, name string) error {
	return c.serviceAction(ctx, httpclient.RequestConfig{
		Method:     http.MethodDelete,
		Path:       easServicePath,
		PathParams: servicePathParams(region, name),
		Action:     "DeleteService",
	}, name)
}

func (c *EASClient) serviceAction(ctx context.Context, cfg httpclient.RequestConfig, name string) error {
	var resp eas.ActionResponse
	if err := c.client.DoJSON(ctx, cfg, &resp); err != nil {
		return fmt.Errorf("%s %s: %w", cfg.Action, name, err)
	}
	return nil
}
