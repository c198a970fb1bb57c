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

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/paiflow"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

var _ PAIFlowAPI = (*PAIFlowClient)(nil)

// PAIFlowClient calls the paiflow service.
type PAIFlowClient struct {
	client *httpclient.PAIHTTPClient
}

func NewPAIFlowClient(client *httpclient.PAIHTTPClient) *PAIFlowClient {
	return &PAIFlowClient{client: client}
}

func (c *PAIFlowClient) GetPipeline(ctx context.Context, pipelineID string) (*paiflow.Pipeline, error) {
	var resp paiflow.GetPipelineResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/pipelines/{PipelineId}",
		PathParams: map[string]string{"PipelineId": pipelineID},
		Action:     "GetPipeline",
	}, &resp); err != nil {
		return nil, fmt.Errorf("getting pipeline %s: %w", pipelineID, err)
	}
	return &resp.Pipeline, nil
}

func (c *PAIFlowClient) ListPipelines(ctx context.Context, req *paiflow.ListPipelinesRequest) (*paiflow.ListPipelinesResponse, error) {
	var resp paiflow.ListPipelinesResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method: http.MethodGet,
		Path:   "/api/v1/pipelines",
		Query:  req.Query(),
		Action: "ListPipelines",
	}, &resp); err != nil {
		return nil, fmt.Errorf("listing pipelines: %w", err)
	}
	return &resp, nil
}

func (c *PAIFlowClient) CreatePipelineRun(ctx context.Context, req *paiflow.CreatePipelineRunRequest) (string, error) {
	var resp paiflow.CreatePipelineRunResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method: http.MethodPost,
		Path:   "/api/v1/pipelineruns",
		Body:   req,
		Action: "CreatePipelineRun",
	}, &resp); err != nil {
		return "", fmt.Errorf("creating pipeline run %s: %w", req.Name, err)
	}
	return resp.PipelineRunID, nil
}

func (c *PAIFlowClient) GetPipelineRun(ctx context.Context, runID string) (*paiflow.PipelineRun, error) {
	var resp paiflow.GetPipelineRunResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/pipelineruns/{PipelineRunId}",
		PathParams: map[string]string{"PipelineRunId": runID},
		Action:     "GetPipelineRun",
	}, &resp); err != nil {
		return nil, fmt.Errorf("getting pipeline run %s: %w", runID, err)
	}
	return &resp.PipelineRun, nil
}

func (c *PAIFlowClient) ListPipelineRuns(ctx context.Context, req *paiflow.ListPipelineRunsRequest) (*paiflow.ListPipelineRunsResponse, error) {
	var resp paiflow.ListPipelineRunsResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method: http.MethodGet,
		Path:   "/api/v1/pipelineruns",
		Query:  req.Query(),
		Action: "ListPipelineRuns",
	}, &resp); err != nil {
		return nil, fmt.Errorf("listing pipeline runs: %w", err)
	}
	return &resp, nil
}

func (c *PAIFlowClient) StartPipelineRun(ctx context.Context, runID string) error {
	return c.runAction(ctx, runID, "/api/v1/pipelineruns/{PipelineRunId}/start", "StartPipelineRun", http.MethodPut)
}

func (c *PAIFlowClient) TerminatePipelineRun(ctx context.Context, runID string) error {
	return c.runAction(ctx, runID, "/api/v1/pipelineruns/{PipelineRunId}/termination", "TerminatePipelineRun", http.MethodPut)
}

func (c *PAIFlowClient) DeletePipelineRun(ctx context.Context, runID string) error {
	return c.runAction(ctx, runID, "/api/v1/pipelineruns/{PipelineRunId}", "DeletePipelineRun", http.MethodDelete)
}

func (c *PAIFlowClient) runAction(ctx context.Context, runID, path, action, method string) error {
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     method,
		Path:       path,
		PathParams: map[string]string{"PipelineRunId": runID},
		Action:     action,
	}, nil); err != nil {
		return fmt.Errorf("%s %s: %w", action, runID, err)
	}
	return nil
}

func (c *PAIFlowClient) ListPipelineRunNodeLogs(ctx context.Context, req *paiflow.ListNodeLogsRequest) (*paiflow.ListNodeLogsResponse, error) {
	var resp paiflow.ListNodeLogsResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/pipelineruns/{PipelineRunId}/nodes/{NodeId}/logs",
		PathParams: map[string]string{"PipelineRunId": req.PipelineRunID, "NodeId": req.NodeID},
		Query:      req.Query(),
		Action:     "ListPipelineRunNodeLogs",
	}, &resp); err != nil {
		return nil, fmt.Errorf("listing logs of node %s: %w", req.NodeID, err)
	}
	return &resp, nil
}
