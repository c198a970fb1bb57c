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

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

var _ WorkspaceAPI = (*WorkspaceClient)(nil)

// WorkspaceClient calls the aiworkspace service.
type WorkspaceClient struct {
	client *httpclient.PAIHTTPClient
}

func NewWorkspaceClient(client *httpclient.PAIHTTPClient) *WorkspaceClient {
	return &WorkspaceClient{client: client}
}

func (c *WorkspaceClient) get(ctx context.Context, action, path string, params map[string]string, out interface{}) error {
	return c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       path,
		PathParams: params,
		Action:     action,
	}, out)
}

func (c *WorkspaceClient) list(ctx context.Context, action, path string, params, query map[string]string, out interface{}) error {
	return c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodGet,
		Path:       path,
		PathParams: params,
		Query:      query,
		Action:     action,
	}, out)
}

func (c *WorkspaceClient) create(ctx context.Context, action, path string, params map[string]string, body, out interface{}) error {
	return c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodPost,
		Path:       path,
		PathParams: params,
		Body:       body,
		Action:     action,
	}, out)
}

func (c *WorkspaceClient) delete(ctx context.Context, action, path string, params map[string]string) error {
	return c.client.DoJSON(ctx, httpclient.RequestConfig{
		Method:     http.MethodDelete,
		Path:       path,
		PathParams: params,
		Action:     action,
	}, nil)
}

func (c *WorkspaceClient) GetWorkspace(ctx context.Context, workspaceID string) (*workspace.Workspace, error) {
	var resp workspace.GetWorkspaceResponse
	if err := c.get(ctx, "GetWorkspace", "/api/v1/workspaces/{WorkspaceId}",
		map[string]string{"WorkspaceId": workspaceID}, &resp); err != nil {
		return nil, fmt.Errorf("getting workspace %s: %w", workspaceID, err)
	}
	return &resp.Workspace, nil
}

func (c *WorkspaceClient) ListWorkspaces(ctx context.Context, req *workspace.ListWorkspacesRequest) (*workspace.ListWorkspacesResponse, error) {
	var resp workspace.ListWorkspacesResponse
	if err := c.list(ctx, "ListWorkspaces", "/api/v1/workspaces", nil, req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	return &resp, nil
}

func (c *WorkspaceClient) GetDefaultWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	var resp workspace.GetDefaultWorkspaceResponse
	if err := c.get(ctx, "GetDefaultWorkspace", "/api/v1/defaultWorkspaces", nil, &resp); err != nil {
		return nil, fmt.Errorf("getting default workspace: %w", err)
	}
	return &resp.Workspace, nil
}

func (c *WorkspaceClient) CreateDataset(ctx context.Context, req *workspace.CreateDatasetRequest) (string, error) {
	var resp workspace.CreateDatasetResponse
	if err := c.create(ctx, "CreateDataset", "/api/v1/datasets", nil, req, &resp); err != nil {
		return "", fmt.Errorf("creating dataset %s: %w", req.Name, err)
	}
	return resp.DatasetID, nil
}

func (c *WorkspaceClient) GetDataset(ctx context.Context, datasetID string) (*workspace.Dataset, error) {
	var resp workspace.GetDatasetResponse
	if err := c.get(ctx, "GetDataset", "/api/v1/datasets/{DatasetId}",
		map[string]string{"DatasetId": datasetID}, &resp); err != nil {
		return nil, fmt.Errorf("getting dataset %s: %w", datasetID, err)
	}
	return &resp.Dataset, nil
}

func (c *WorkspaceClient) ListDatasets(ctx context.Context, req *workspace.ListDatasetsRequest) (*workspace.ListDatasetsResponse, error) {
	var resp workspace.ListDatasetsResponse
	if err := c.list(ctx, "ListDatasets", "/api/v1/datasets", nil, req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("listing datasets: %w", err)
	}
	return &resp, nil
}

func (c *WorkspaceClient) DeleteDataset(ctx context.Context, datasetID string) error {
	if err := c.delete(ctx, "DeleteDataset", "/api/v1/datasets/{DatasetId}",
		map[string]string{"DatasetId": datasetID}); err != nil {
		return fmt.Errorf("deleting dataset %s: %w", datasetID, err)
	}
	return nil
}

func (c *WorkspaceClient) CreateModel(ctx context.Context, req *workspace.CreateModelRequest) (string, error) {
	var resp workspace.CreateModelResponse
	if err := c.create(ctx, "CreateModel", "/api/v1/models", nil, req, &resp); err != nil {
		return "", fmt.Errorf("creating model %s: %w", req.ModelName, err)
	}
	return resp.ModelID, nil
}

func (c *WorkspaceClient) GetModel(ctx context.Context, modelID string) (*workspace.Model, error) {
	var resp workspace.GetModelResponse
	if err := c.get(ctx, "GetModel", "/api/v1/models/{ModelId}",
		map[string]string{"ModelId": modelID}, &resp); err != nil {
		return nil, fmt.Errorf("getting model %s: %w", modelID, err)
	}
	return &resp.Model, nil
}

func (c *WorkspaceClient) ListModels(ctx context.Context, req *workspace.ListModelsRequest) (*workspace.ListModelsResponse, error) {
	var resp workspace.ListModelsResponse
	if err := c.list(ctx, "ListModels", "/api/v1/models", nil, req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	return &resp, nil
}

func (c *WorkspaceClient) DeleteModel(ctx context.Context, modelID string) error {
	if err := c.delete(ctx, "DeleteModel", "/api/v1/models/{ModelId}",
		map[string]string{"ModelId": modelID}); err != nil {
		return fmt.Errorf("deleting model %s: %w", modelID, err)
	}
	return nil
}

func (c *WorkspaceClient) CreateModelVersion(ctx context.Context, modelID string, req *workspace.CreateModelVersionRequest) (string, error) {
	var resp workspace.CreateModelVersionResponse
	if err := c.create(ctx, "CreateModelVersion", "/api/v1/models/{ModelId}/versions",
		map[string]string{"ModelId": modelID}, req, &resp); err != nil {
		return "", fmt.Errorf("creating version of model %s: %w", modelID, err)
	}
	return resp.VersionName, nil
}

func (c *WorkspaceClient) ListModelVersions(ctx context.Context, req *workspace.ListModelVersionsRequest) (*workspace.ListModelVersionsResponse, error) {
	var resp workspace.ListModelVersionsResponse
	if err := c.list(ctx, "ListModelVersions", "/api/v1/models/{ModelId}/versions",
		map[string]string{"ModelId": req.ModelID}, req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("listing versions of model %s: %w", req.ModelID, err)
	}
	return &resp, nil
}

func (c *WorkspaceClient) CreateCodeSource(ctx context.Context, req *workspace.CreateCodeSourceRequest) (string, error) {
	var resp workspace.CreateCodeSourceResponse
	if err := c.create(ctx, "CreateCodeSource", "/api/v1/codesources", nil, req, &resp); err != nil {
		return "", fmt.Errorf("creating code source %s: %w", req.DisplayName, err)
	}
	return resp.CodeSourceID, nil
}

func (c *WorkspaceClient) GetCodeSource(ctx context.Context, codeSourceID string) (*workspace.CodeSource, error) {
	var resp workspace.GetCodeSourceResponse
	if err := c.get(ctx, "GetCodeSource", "/api/v1/codesources/{CodeSourceId}",
		map[string]string{"CodeSourceId": codeSourceID}, &resp); err != nil {
		return nil, fmt.Errorf("getting code source %s: %w", codeSourceID, err)
	}
	return &resp.CodeSource, nil
}

func (c *WorkspaceClient) ListCodeSources(ctx context.Context, req *workspace.ListCodeSourcesRequest) (*workspace.ListCodeSourcesResponse, error) {
	var resp workspace.ListCodeSourcesResponse
	if err := c.list(ctx, "ListCodeSources", "/api/v1/codesources", nil, req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("listing code sources: %w", err)
	}
	return &resp, nil
}

func (c *WorkspaceClient) DeleteCodeSource(ctx context.Context, codeSourceID string) error {
	if err := c.delete(ctx, "DeleteCodeSource", "/api/v1/codesources/{CodeSourceId}",
		map[string]string{"CodeSourceId": codeSourceID}); err != nil {
		return fmt.Errorf("deleting code source %s: %w", codeSourceID, err)
	}
	return nil
}

func (c *WorkspaceClient) ListImages(ctx context.Context, req *workspace.ListImagesRequest) (*workspace.ListImagesResponse, error) {
	var resp workspace.ListImagesResponse
	if err := c.list(ctx, "ListImages", "/api/v1/images", nil, req.Query(), &resp); err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	return &resp, nil
}
