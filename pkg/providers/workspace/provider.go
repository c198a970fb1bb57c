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

// Package workspace manages AIWorkspace resources: workspaces, datasets,
// models, code sources and the official image catalogue.
package workspace

import (
	"context"
	"fmt"
	"iter"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
)

// Provider manages the resources of one workspace
type Provider struct {
	api    client.WorkspaceAPI
	opts   lifecycle.Options
	logger *logging.Logger
}

// NewProvider creates a workspace provider.
func NewProvider(api client.WorkspaceAPI, opts ...lifecycle.Option) (*Provider, error) {
	if api == nil {
		return nil, fmt.Errorf("AIWorkspace client cannot be nil")
	}
	o, err := lifecycle.NewOptions(0, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{api: api, opts: o, logger: logging.WorkspaceLogger()}, nil
}

// Get fetches a workspace by id.
func (p *Provider) Get(ctx context.Context, workspaceID string) (*workspace.Workspace, error) {
	ws, err := p.api.GetWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("getting workspace %s: %w", workspaceID, err)
	}
	return ws, nil
}

// Current returns the provider workspace, or the account default when the
// provider has none.
func (p *Provider) Current(ctx context.Context) (*workspace.Workspace, error) {
	if p.opts.WorkspaceID != "" {
		return p.Get(ctx, p.opts.WorkspaceID)
	}
	return p.Default(ctx)
}

// Default returns the account's default workspace.
func (p *Provider) Default(ctx context.Context) (*workspace.Workspace, error) {
	ws, err := p.api.GetDefaultWorkspace(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting default workspace: %w", err)
	}
	return ws, nil
}

// List iterates workspaces matching filter; its page fields are ignored.
func (p *Provider) List(ctx context.Context, filter workspace.ListWorkspacesRequest, opts ...pager.Option) iter.Seq2[*workspace.Workspace, error] {
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*workspace.Workspace], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListWorkspaces(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing workspaces: %w", err)
		}
		return toPage(resp.Workspaces, resp.TotalCount), nil
	}
	return pager.All(ctx, list, opts...)
}

func toPage[T any](items []T, total int64) *pager.Page[*T] {
	page := &pager.Page[*T]{TotalCount: total, Items: make([]*T, 0, len(items))}
	for i := range items {
		page.Items = append(page.Items, &items[i])
	}
	return page
}
