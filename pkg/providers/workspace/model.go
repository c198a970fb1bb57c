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

package workspace

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/oss"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
)

// ModelOptions describe a new registered model.
type ModelOptions struct {
	Name          string
	Description   string
	Doc           string
	WorkspaceID   string
	Accessibility string
	Domain        string
	Origin        string
	Task          string
	Labels        map[string]string
}

// ModelVersionOptions describe a new version of a registered model.
type ModelVersionOptions struct {
	// Name is assigned by the service when empty.
	Name          string
	Description   string
	URI           string
	SourceType    string
	SourceID      string
	FormatType    string
	FrameworkType string
	InferenceSpec map[string]interface{}
	Labels        map[string]string
}

// CreateModel registers a model and returns it.
func (p *Provider) CreateModel(ctx context.Context, opts ModelOptions) (*workspace.Model, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: model name", client.ErrMissingArgument)
	}
	workspaceID, err := p.opts.Workspace(opts.WorkspaceID)
	if err != nil {
		return nil, err
	}
	id, err := p.api.CreateModel(ctx, &workspace.CreateModelRequest{
		ModelName:        opts.Name,
		WorkspaceID:      workspaceID,
		ModelDescription: opts.Description,
		ModelDoc:         opts.Doc,
		Accessibility:    opts.Accessibility,
		Domain:           opts.Domain,
		Origin:           opts.Origin,
		Task:             opts.Task,
		Labels:           common.LabelsFromMap(opts.Labels),
	})
	if err != nil {
		return nil, fmt.Errorf("creating model %s: %w", opts.Name, err)
	}
	p.logger.Info("created model", "modelID", id, "name", opts.Name)
	return p.GetModel(ctx, id)
}

// GetModel fetches a model by id.
func (p *Provider) GetModel(ctx context.Context, modelID string) (*workspace.Model, error) {
	m, err := p.api.GetModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("getting model %s: %w", modelID, err)
	}
	return m, nil
}

// ListModels iterates models matching filter; its page fields are ignored.
func (p *Provider) ListModels(ctx context.Context, filter workspace.ListModelsRequest, opts ...pager.Option) iter.Seq2[*workspace.Model, error] {
	if filter.WorkspaceID == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*workspace.Model], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListModels(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing models: %w", err)
		}
		return toPage(resp.Models, resp.TotalCount), nil
	}
	return pager.All(ctx, list, opts...)
}

// DeleteModel removes a model and its versions.
func (p *Provider) DeleteModel(ctx context.Context, modelID string) error {
	if err := p.api.DeleteModel(ctx, modelID); err != nil {
		return fmt.Errorf("deleting model %s: %w", modelID, err)
	}
	return nil
}

// DeleteModels removes every model, ignoring ones that are already gone.
func (p *Provider) DeleteModels(ctx context.Context, modelIDs ...string) error {
	return lifecycle.DeleteAll(ctx, modelIDs, func(ctx context.Context, id string) error {
		return lifecycle.IgnoreNotFound(p.DeleteModel(ctx, id))
	})
}

// CreateModelVersion registers a new version of modelID and returns its name.
// An oss:// URI is validated before the request is sent.
func (p *Provider) CreateModelVersion(ctx context.Context, modelID string, opts ModelVersionOptions) (string, error) {
	if opts.URI == "" {
		return "", fmt.Errorf("%w: model version URI", client.ErrMissingArgument)
	}
	if strings.HasPrefix(opts.URI, oss.Scheme) {
		if _, err := oss.ParseURI(opts.URI); err != nil {
			return "", err
		}
	}
	name, err := p.api.CreateModelVersion(ctx, modelID, &workspace.CreateModelVersionRequest{
		VersionName:        opts.Name,
		VersionDescription: opts.Description,
		URI:                opts.URI,
		SourceType:         opts.SourceType,
		SourceID:           opts.SourceID,
		FormatType:         opts.FormatType,
		FrameworkType:      opts.FrameworkType,
		InferenceSpec:      opts.InferenceSpec,
		Labels:             common.LabelsFromMap(opts.Labels),
	})
	if err != nil {
		return "", fmt.Errorf("creating version of model %s: %w", modelID, err)
	}
	p.logger.Info("created model version", "modelID", modelID, "version", name)
	return name, nil
}

// ListModelVersions iterates the versions of a model.
func (p *Provider) ListModelVersions(ctx context.Context, modelID string, opts ...pager.Option) iter.Seq2[*workspace.ModelVersion, error] {
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*workspace.ModelVersion], error) {
		req := workspace.ListModelVersionsRequest{ModelID: modelID}
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListModelVersions(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing versions of model %s: %w", modelID, err)
		}
		return toPage(resp.Versions, resp.TotalCount), nil
	}
	return pager.All(ctx, list, opts...)
}
