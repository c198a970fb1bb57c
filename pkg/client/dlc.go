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

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

var _ DLCAPI = (*DLCClient)(nil)

// DLCClient calls the pai-dlc service.
type DLCClient struct {
	client *httpclient.PAIHTTPClient
}

func NewDLCClient(client *httpclient.PAIHTTPClient) *DLCClient {
	return &DLCClient{client: client}
}

func (c *DLCClient) CreateJob(ctx context.Context, req *dlc.CreateJobRequest) (string, error) {
	var resp dlc.CreateJobResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method: http.MethodPost,
		Path:   "/api/v1/jobs",
		Body:   req,
		Action: "CreateJob",
	}, &resp); err != nil {
		return "", fmt.Errorf("creating job %s: %w", req.DisplayName, err)
	}
	return resp.JobID, nil
}

func (c *DLCClient) GetJob(ctx context.Context, jobID string) (*dlc.Job, error) {
	var resp dlc.GetJobResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/jobs/{JobId}",
		PathParams: map[string]string{"JobId": jobID},
		Action:     "GetJob",
	}, &resp); err != nil {
		return nil, fmt.Errorf("getting job %s: %w", jobID, err)
	}
	return &resp.Job, nil
}

func (c *DLCClient) ListJobs(ctx context.Context, req *dlc.ListJobsRequest) (*dlc.ListJobsResponse, error) {
	var resp dlc.ListJobsResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method: http.MethodGet,
		Path:   "/api/v1/jobs",
		Query:  req.Query(),
		Action: "ListJobs",
	}, &resp); err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return &resp, nil
}

func (c *DLCClient) StopJob(ctx context.Context, jobID string) error {
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodPost,
		Path:       "/api/v1/jobs/{JobId}/stop",
		PathParams: map[string]string{"JobId": jobID},
		Action:     "StopJob",
	}, nil); err != nil {
		return fmt.Errorf("stopping job %s: %w", jobID, err)
	}
	return nil
}

func (c *DLCClient) DeleteJob(ctx context.Context, jobID string) error {
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodDelete,
		Path:       "/api/v1/jobs/{JobId}",
		PathParams: map[string]string{"JobId": jobID},
		Action:     "DeleteJob",
	}, nil); err != nil {
		return fmt.Errorf("deleting job %s: %w", jobID, err)
	}
	return nil
}

func (c *DLCClient) GetPodLogs(ctx context.Context, req *dlc.GetPodLogsRequest) ([]string, error) {
	var resp dlc.GetPodLogsResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/jobs/{JobId}/pods/{PodId}/logs",
		PathParams: map[string]string{"JobId": req.JobID, "PodId": req.PodID},
		Query:      req.Query(),
		Action:     "GetPodLogs",
	}, &resp); err != nil {
		return nil, fmt.Errorf("getting logs of pod %s in job %s: %w", req.PodID, req.JobID, err)
	}
	return resp.Logs, nil
}
