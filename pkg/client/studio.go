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

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/studio"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

var _ StudioAPI = (*StudioClient)(nil)

// StudioClient calls the PAI Studio service.
type StudioClient struct {
	client *httpclient.PAIHTTPClient
}

func NewStudioClient(client *httpclient.PAIHTTPClient) *StudioClient {
	return &StudioClient{client: client}
}

func (c *StudioClient) CreateTrainingJob(ctx context.Context, req *studio.CreateTrainingJobRequest) (string, error) {
	var resp studio.CreateTrainingJobResponse
	if err := c.client.Post(ctx, "CreateTrainingJob", "/api/v1/trainingjobs", req, &resp); err != nil {
		return "", fmt.Errorf("creating training job %s: %w", req.TrainingJobName, err)
	}
	return resp.TrainingJobID, nil
}

func (c *StudioClient) GetTrainingJob(ctx context.Context, trainingJobID string) (*studio.TrainingJob, error) {
	var resp studio.GetTrainingJobResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/trainingjobs/{TrainingJobId}",
		PathParams: map[string]string{"TrainingJobId": trainingJobID},
		Action:     "GetTrainingJob",
	}, &resp); err != nil {
		return nil, fmt.Errorf("getting training job %s: %w", trainingJobID, err)
	}
	return &resp.TrainingJob, nil
}

func (c *StudioClient) ListTrainingJobs(ctx context.Context, req *studio.ListTrainingJobsRequest) (*studio.ListTrainingJobsResponse, error) {
	var resp studio.ListTrainingJobsResponse
	if err := c.client.Get(ctx, "ListTrainingJobs", "/api/v1/trainingjobs", req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("listing training jobs: %w", err)
	}
	return &resp, nil
}

func (c *StudioClient) StopTrainingJob(ctx context.Context, trainingJobID string) error {
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodPut,
		Path:       "/api/v1/trainingjobs/{TrainingJobId}/stop",
		PathParams: map[string]string{"TrainingJobId": trainingJobID},
		Action:     "StopTrainingJob",
	}, nil); err != nil {
		return fmt.Errorf("stopping training job %s: %w", trainingJobID, err)
	}
	return nil
}

func (c *StudioClient) GetAlgorithm(ctx context.Context, algorithmID string) (*studio.Algorithm, error) {
	var resp studio.GetAlgorithmResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/algorithms/{AlgorithmId}",
		PathParams: map[string]string{"AlgorithmId": algorithmID},
		Action:     "GetAlgorithm",
	}, &resp); err != nil {
		return nil, fmt.Errorf("getting algorithm %s: %w", algorithmID, err)
	}
	return &resp.Algorithm, nil
}

func (c *StudioClient) ListAlgorithms(ctx context.Context, req *studio.ListAlgorithmsRequest) (*studio.ListAlgorithmsResponse, error) {
	var resp studio.ListAlgorithmsResponse
	if err := c.client.Get(ctx, "ListAlgorithms", "/api/v1/algorithms", req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("listing algorithms: %w", err)
	}
	return &resp, nil
}

func (c *StudioClient) GetAlgorithmVersion(ctx context.Context, algorithmID, version string) (*studio.AlgorithmVersion, error) {
	var resp studio.GetAlgorithmVersionResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/algorithms/{AlgorithmId}/versions/{AlgorithmVersion}",
		PathParams: map[string]string{"AlgorithmId": algorithmID, "AlgorithmVersion": version},
		Action:     "GetAlgorithmVersion",
	}, &resp); err != nil {
		return nil, fmt.Errorf("getting algorithm %s version %s: %w", algorithmID, version, err)
	}
	return &resp.AlgorithmVersion, nil
}

func (c *StudioClient) ListAlgorithmVersions(ctx context.Context, req *studio.ListAlgorithmVersionsRequest) (*studio.ListAlgorithmVersionsResponse, error) {
	var resp studio.ListAlgorithmVersionsResponse
	if err := c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       "/api/v1/algorithms/{AlgorithmId}/versions",
		PathParams: map[string]string{"AlgorithmId": req.AlgorithmID},
		Query:      req.Query(),
		Action:     "ListAlgorithmVersions",
	}, &resp); err != nil {
		return nil, fmt.Errorf("listing versions of algorithm %s: %w", req.AlgorithmID, err)
	}
	return &resp, nil
}
