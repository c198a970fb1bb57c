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

package fake

import (
	"context"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/samber/lo"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
)

var _ client.WorkspaceAPI = (*WorkspaceAPI)(nil)

// WorkspaceBehavior controls the fake AIWorkspace API behavior for testing
type WorkspaceBehavior struct {
	CreateDatasetBehavior      MockedFunction[workspace.CreateDatasetRequest, string]
	CreateModelBehavior        MockedFunction[workspace.CreateModelRequest, string]
	CreateModelVersionBehavior MockedFunction[workspace.CreateModelVersionRequest, string]
	CreateCodeSourceBehavior   MockedFunction[workspace.CreateCodeSourceRequest, string]
	ListImagesBehavior         MockedFunction[workspace.ListImagesRequest, workspace.ListImagesResponse]

	Workspaces Store[workspace.Workspace]
	// DefaultWorkspaceID names the workspace GetDefaultWorkspace returns.
	DefaultWorkspaceID AtomicPtr[string]
	Datasets           Store[workspace.Dataset]
	Models             Store[workspace.Model]
	// ModelVersions is keyed by "<modelID>/<versionName>".
	ModelVersions Store[workspace.ModelVersion]
	CodeSources   Store[workspace.CodeSource]
	Images        Store[workspace.Image]
	NextError     AtomicError
}

// WorkspaceAPI implements a fake AIWorkspace API for testing
type WorkspaceAPI struct {
	*WorkspaceBehavior
}

func NewWorkspaceAPI() *WorkspaceAPI {
	return &WorkspaceAPI{WorkspaceBehavior: &WorkspaceBehavior{}}
}

func now() *strfmt.DateTime {
	return lo.ToPtr(strfmt.DateTime(time.Now()))
}

func (f *WorkspaceAPI) GetWorkspace(_ context.Context, workspaceID string) (*workspace.Workspace, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	ws, ok := f.Workspaces.Get(workspaceID)
	if !ok {
		return nil, notFound("Workspace", workspaceID)
	}
	return ws, nil
}

func (f *WorkspaceAPI) ListWorkspaces(_ context.Context, req *workspace.ListWorkspacesRequest) (*workspace.ListWorkspacesResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	items := f.Workspaces.List(func(_ string, w *workspace.Workspace) bool {
		return matches(req.WorkspaceName, w.WorkspaceName) && matches(req.Status, w.Status)
	})
	return &workspace.ListWorkspacesResponse{
		Workspaces: paginate(items, req.Pagination),
		TotalCount: int64(len(items)),
	}, nil
}

func (f *WorkspaceAPI) GetDefaultWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	id := f.DefaultWorkspaceID.Get()
	if id == nil {
		if err := f.NextError.Get(); err != nil {
			return nil, err
		}
		return nil, notFound("DefaultWorkspace", "")
	}
	ws, err := f.GetWorkspace(ctx, *id)
	if err != nil {
		return nil, err
	}
	ws.IsDefault = true
	return ws, nil
}

func (f *WorkspaceAPI) CreateDataset(_ context.Context, req *workspace.CreateDatasetRequest) (string, error) {
	if err := f.NextError.Get(); err != nil {
		return "", err
	}
	out, err := f.CreateDatasetBehavior.invoke(*req)
	if err != nil {
		return "", err
	}
	if req.Name == "" || req.URI == "" {
		return "", badRequest("Name and Uri are required")
	}
	id := f.Datasets.NextID("d")
	if out != nil {
		id = *out
	}
	f.Datasets.Put(id, workspace.Dataset{
		DatasetID:      id,
		Name:           req.Name,
		WorkspaceID:    req.WorkspaceID,
		Description:    req.Description,
		DataSourceType: req.DataSourceType,
		DataType:       req.DataType,
		Property:       req.Property,
		URI:            req.URI,
		Accessibility:  req.Accessibility,
		Options:        req.Options,
		Labels:         req.Labels,
		GmtCreateTime:  now(),
	})
	return id, nil
}

func (f *WorkspaceAPI) GetDataset(_ context.Context, datasetID string) (*workspace.Dataset, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	ds, ok := f.Datasets.Get(datasetID)
	if !ok {
		return nil, notFound("Dataset", datasetID)
	}
	return ds, nil
}

func (f *WorkspaceAPI) ListDatasets(_ context.Context, req *workspace.ListDatasetsRequest) (*workspace.ListDatasetsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	items := f.Datasets.List(func(_ string, d *workspace.Dataset) bool {
		return matches(req.WorkspaceID, d.WorkspaceID) &&
			matches(req.Name, d.Name) &&
			matches(req.DataSourceType, d.DataSourceType) &&
			(len(req.Properties) == 0 || lo.Contains(req.Properties, d.Property))
	})
	return &workspace.ListDatasetsResponse{
		Datasets:   paginate(items, req.Pagination),
		TotalCount: int64(len(items)),
	}, nil
}

func (f *WorkspaceAPI) DeleteDataset(_ context.Context, datasetID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if !f.Datasets.Delete(datasetID) {
		return notFound("Dataset", datasetID)
	}
	return nil
}

func (f *WorkspaceAPI) CreateModel(_ context.Context, req *workspace.CreateModelRequest) (string, error) {
	if err := f.NextError.Get(); err != nil {
		return "", err
	}
	out, err := f.CreateModelBehavior.invoke(*req)
	if err != nil {
		return "", err
	}
	if req.ModelName == "" {
		return "", badRequest("ModelName is required")
	}
	id := f.Models.NextID("model")
	if out != nil {
		id = *out
	}
	f.Models.Put(id, workspace.Model{
		ModelID:          id,
		ModelName:        req.ModelName,
		ModelDescription: req.ModelDescription,
		ModelDoc:         req.ModelDoc,
		WorkspaceID:      req.WorkspaceID,
		Accessibility:    req.Accessibility,
		Domain:           req.Domain,
		Origin:           req.Origin,
		Task:             req.Task,
		Labels:           req.Labels,
		GmtCreateTime:    now(),
	})
	return id, nil
}

func (f *WorkspaceAPI) GetModel(_ context.Context, modelID string) (*workspace.Model, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	m, ok := f.Models.Get(modelID)
	if !ok {
		return nil, notFound("Model", modelID)
	}
	return m, nil
}

func (f *WorkspaceAPI) ListModels(_ context.Context, req *workspace.ListModelsRequest) (*workspace.ListModelsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	items := f.Models.List(func(_ string, m *workspace.Model) bool {
		return matches(req.WorkspaceID, m.WorkspaceID) &&
			matches(req.ModelName, m.ModelName) &&
			matches(req.Provider, m.Provider) &&
			matches(req.Domain, m.Domain) &&
			matches(req.Task, m.Task)
	})
	return &workspace.ListModelsResponse{
		Models:     paginate(items, req.Pagination),
		TotalCount: int64(len(items)),
	}, nil
}

// DeleteModel removes the model together with its versions.
func (f *WorkspaceAPI) DeleteModel(_ context.Context, modelID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if !f.Models.Delete(modelID) {
		return notFound("Model", modelID)
	}
	for _, key := range f.ModelVersions.IDs() {
		if strings.HasPrefix(key, modelID+"/") {
			f.ModelVersions.Delete(key)
		}
	}
	return nil
}

func (f *WorkspaceAPI) CreateModelVersion(_ context.Context, modelID string, req *workspace.CreateModelVersionRequest) (string, error) {
	if err := f.NextError.Get(); err != nil {
		return "", err
	}
	out, err := f.CreateModelVersionBehavior.invoke(*req)
	if err != nil {
		return "", err
	}
	if _, ok := f.Models.Get(modelID); !ok {
		return "", notFound("Model", modelID)
	}
	if req.URI == "" {
		return "", badRequest("Uri is required")
	}
	name := req.VersionName
	if out != nil {
		name = *out
	}
	if name == "" {
		name = "1.0." + strings.TrimPrefix(f.ModelVersions.NextID("v"), "v-")
	}
	version := workspace.ModelVersion{
		VersionName:        name,
		VersionDescription: req.VersionDescription,
		URI:                req.URI,
		SourceType:         req.SourceType,
		SourceID:           req.SourceID,
		FormatType:         req.FormatType,
		FrameworkType:      req.FrameworkType,
		InferenceSpec:      req.InferenceSpec,
		Labels:             req.Labels,
		GmtCreateTime:      now(),
	}
	f.ModelVersions.Put(modelID+"/"+name, version)
	f.Models.Update(modelID, func(m *workspace.Model) { m.LatestVersion = &version })
	return name, nil
}

func (f *WorkspaceAPI) ListModelVersions(_ context.Context, req *workspace.ListModelVersionsRequest) (*workspace.ListModelVersionsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	if _, ok := f.Models.Get(req.ModelID); !ok {
		return nil, notFound("Model", req.ModelID)
	}
	items := f.ModelVersions.List(func(key string, v *workspace.ModelVersion) bool {
		return strings.HasPrefix(key, req.ModelID+"/") && matches(req.VersionName, v.VersionName)
	})
	return &workspace.ListModelVersionsResponse{
		Versions:   paginate(items, req.Pagination),
		TotalCount: int64(len(items)),
	}, nil
}

func (f *WorkspaceAPI) CreateCodeSource(_ context.Context, req *workspace.CreateCodeSourceRequest) (string, error) {
	if err := f.NextError.Get(); err != nil {
		return "", err
	}
	out, err := f.CreateCodeSourceBehavior.invoke(*req)
	if err != nil {
		return "", err
	}
	if req.DisplayName == "" {
		return "", badRequest("DisplayName is required")
	}
	id := f.CodeSources.NextID("code")
	if out != nil {
		id = *out
	}
	f.CodeSources.Put(id, workspace.CodeSource{
		CodeSourceID:     id,
		DisplayName:      req.DisplayName,
		Description:      req.Description,
		WorkspaceID:      req.WorkspaceID,
		CodeRepo:         req.CodeRepo,
		CodeBranch:       req.CodeBranch,
		CodeCommit:       req.CodeCommit,
		CodeRepoUserName: req.CodeRepoUserName,
		MountPath:        req.MountPath,
		Accessibility:    req.Accessibility,
		GmtCreateTime:    now(),
	})
	return id, nil
}

func (f *WorkspaceAPI) GetCodeSource(_ context.Context, codeSourceID string) (*workspace.CodeSource, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	cs, ok := f.CodeSources.Get(codeSourceID)
	if !ok {
		return nil, notFound("CodeSource", codeSourceID)
	}
	return cs, nil
}

func (f *WorkspaceAPI) ListCodeSources(_ context.Context, req *workspace.ListCodeSourcesRequest) (*workspace.ListCodeSourcesResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	items := f.CodeSources.List(func(_ string, c *workspace.CodeSource) bool {
		return matches(req.WorkspaceID, c.WorkspaceID) && matches(req.DisplayName, c.DisplayName)
	})
	return &workspace.ListCodeSourcesResponse{
		CodeSources: paginate(items, req.Pagination),
		TotalCount:  int64(len(items)),
	}, nil
}

func (f *WorkspaceAPI) DeleteCodeSource(_ context.Context, codeSourceID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if !f.CodeSources.Delete(codeSourceID) {
		return notFound("CodeSource", codeSourceID)
	}
	return nil
}

// ListImages returns public images plus those of the requested workspace,
// filtered by name and requiring every requested label to match.
func (f *WorkspaceAPI) ListImages(_ context.Context, req *workspace.ListImagesRequest) (*workspace.ListImagesResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.ListImagesBehavior.invoke(*req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	items := f.Images.List(func(_ string, img *workspace.Image) bool {
		if img.WorkspaceID != "" && !matches(req.WorkspaceID, img.WorkspaceID) {
			return false
		}
		if !matches(req.Name, img.Name) {
			return false
		}
		for k, v := range req.Labels {
			if img.Label(k) != v {
				return false
			}
		}
		return true
	})
	return &workspace.ListImagesResponse{
		Images:     paginate(items, req.Pagination),
		TotalCount: int64(len(items)),
	}, nil
}
