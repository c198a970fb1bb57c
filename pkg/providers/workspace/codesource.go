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
	"net/url"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
)

// DefaultCodeMountPath is where jobs see a code source unless told otherwise.
const DefaultCodeMountPath = "/root/code/"

// CodeSourceOptions describe a git repository registered as a code source.
type CodeSourceOptions struct {
	DisplayName string
	Description string
	WorkspaceID string
	Repo        string
	Branch      string
	Commit      string
	UserName    string
	AccessToken string
	MountPath   string
}

// CreateCodeSource registers a code source and returns it.
func (p *Provider) CreateCodeSource(ctx context.Context, opts CodeSourceOptions) (*workspace.CodeSource, error) {
	if opts.DisplayName == "" || opts.Repo == "" {
		return nil, fmt.Errorf("%w: code source name and repository", client.ErrMissingArgument)
	}
	if u, err := url.Parse(opts.Repo); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid code repository URL %q", opts.Repo)
	}
	workspaceID, err := p.opts.Workspace(opts.WorkspaceID)
	if err != nil {
		return nil, err
	}
	mount := opts.MountPath
	if mount == "" {
		mount = DefaultCodeMountPath
	}
	id, err := p.api.CreateCodeSource(ctx, &workspace.CreateCodeSourceRequest{
		DisplayName:         opts.DisplayName,
		Description:         opts.Description,
		WorkspaceID:         workspaceID,
		CodeRepo:            opts.Repo,
		CodeBranch:          opts.Branch,
		CodeCommit:          opts.Commit,
		CodeRepoUserName:    opts.UserName,
		CodeRepoAccessToken: opts.AccessToken,
		MountPath:           mount,
	})
	if err != nil {
		return nil, fmt.Errorf("creating code source %s: %w", opts.DisplayName, err)
	}
	p.logger.Info("created code source", "codeSourceID", id, "repo", opts.Repo)
	return p.GetCodeSource(ctx, id)
}

// GetCodeSource fetches a code source by id.
func (p *Provider) GetCodeSource(ctx context.Context, codeSourceID string) (*workspace.CodeSource, error) {
	cs, err := p.api.GetCodeSource(ctx, codeSourceID)
	if err != nil {
		return nil, fmt.Errorf("getting code source %s: %w", codeSourceID, err)
	}
	return cs, nil
}

// ListCodeSources iterates code sources matching filter; its page fields are ignored.
func (p *Provider) ListCodeSources(ctx context.Context, filter workspace.ListCodeSourcesRequest, opts ...pager.Option) iter.Seq2[*workspace.CodeSource, error] {
	if filter.WorkspaceID == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*workspace.CodeSource], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListCodeSources(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing code sources: %w", err)
		}
		return toPage(resp.CodeSources, resp.TotalCount), nil
	}
	return pager.All(ctx, list, opts...)
}

// DeleteCodeSource removes a code source.
func (p *Provider) DeleteCodeSource(ctx context.Context, codeSourceID string) error {
	if err := p.api.DeleteCodeSource(ctx, codeSourceID); err != nil {
		return fmt.Errorf("deleting code source %s: %w", codeSourceID, err)
	}
	return nil
}

// DeleteCodeSources removes every code source, ignoring ones that are already gone.
func (p *Provider) DeleteCodeSources(ctx context.Context, codeSourceIDs ...string) error {
	return lifecycle.DeleteAll(ctx, codeSourceIDs, func(ctx context.Context, id string) error {
		return lifecycle.IgnoreNotFound(p.DeleteCodeSource(ctx, id))
	})
}
