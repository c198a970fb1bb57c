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

// DatasetOptions describe a dataset registered over an OSS location.
type DatasetOptions struct {
	Name        string
	Description string
	WorkspaceID string
	// URI is an oss:// file or directory; a trailing slash registers a directory.
	URI           string
	DataType      string
	Accessibility string
	Labels        map[string]string
}

// CreateDataset registers a dataset and returns it.
func (p *Provider) CreateDataset(ctx context.Context, opts DatasetOptions) (*workspace.Dataset, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("%w: dataset name", client.ErrMissingArgument)
	}
	uri, err := oss.ParseURI(opts.URI)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", opts.Name, err)
	}
	workspaceID, err := p.opts.Workspace(opts.WorkspaceID)
	if err != nil {
		return nil, err
	}
	property := workspace.PropertyFile
	if uri.IsDir() {
		property = workspace.PropertyDirectory
	}
	id, err := p.api.CreateDataset(ctx, &workspace.CreateDatasetRequest{
		Name:           opts.Name,
		WorkspaceID:    workspaceID,
		Description:    opts.Description,
		DataSourceType: workspace.DataSourceTypeOSS,
		DataType:       opts.DataType,
		Property:       property,
		URI:            uri.String(),
		Accessibility:  opts.Accessibility,
		Labels:         common.LabelsFromMap(opts.Labels),
	})
	if err != nil {
		return nil, fmt.Errorf("creating dataset %s: %w", opts.Name, err)
	}
	p.logger.Info("created dataset", "datasetID", id, "uri", uri.String())
	return p.GetDataset(ctx, id)
}

// GetDataset fetches a dataset by id.
func (p *Provider) GetDataset(ctx context.Context, datasetID string) (*workspace.Dataset, error) {
	ds, err := p.api.GetDataset(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("getting dataset %s: %w", datasetID, err)
	}
	return ds, nil
}

// ListDatasets iterates datasets matching filter; its page fields are ignored.
func (p *Provider) ListDatasets(ctx context.Context, filter workspace.ListDatasetsRequest, opts ...pager.Option) iter.Seq2[*workspace.Dataset, error] {
	if filter.WorkspaceID == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*workspace.Dataset], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListDatasets(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing datasets: %w", err)
		}
		return toPage(resp.Datasets, resp.TotalCount), nil
	}
	return pager.All(ctx, list, opts...)
}

// DeleteDataset removes a dataset registration. The OSS data is untouched.
func (p *Provider) DeleteDataset(ctx context.Context, datasetID string) error {
	if err := p.api.DeleteDataset(ctx, datasetID); err != nil {
		return fmt.Errorf("deleting dataset %s: %w", datasetID, err)
	}
	return nil
}

// DeleteDatasets removes every dataset, ignoring ones that are already gone.
func (p *Provider) DeleteDatasets(ctx context.Context, datasetIDs ...string) error {
	return lifecycle.DeleteAll(ctx, datasetIDs, func(ctx context.Context, id string) error {
		return lifecycle.IgnoreNotFound(p.DeleteDataset(ctx, id))
	})
}

// DatasetURI returns the OSS location of ds.
func DatasetURI(ds *workspace.Dataset) (oss.URI, error) {
	if !strings.EqualFold(ds.DataSourceType, workspace.DataSourceTypeOSS) {
		return oss.URI{}, fmt.Errorf("dataset %s is stored on %s, not OSS", ds.DatasetID, ds.DataSourceType)
	}
	return oss.ParseURI(ds.URI)
}
