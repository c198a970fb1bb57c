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

// Package algorithm looks up PAI Studio algorithms and their versions.
package algorithm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/studio"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
)

var (
	// ErrAlgorithmNotFound is returned when no algorithm matches a name lookup.
	ErrAlgorithmNotFound = errors.New("algorithm not found")
	// ErrNoVersions is returned when an algorithm has no published version.
	ErrNoVersions = errors.New("algorithm has no versions")
)

// Provider reads algorithms
type Provider struct {
	api    client.StudioAPI
	opts   lifecycle.Options
	logger *logging.Logger
}

// NewProvider creates an algorithm provider
func NewProvider(api client.StudioAPI, opts ...lifecycle.Option) (*Provider, error) {
	if api == nil {
		return nil, fmt.Errorf("PAI Studio client cannot be nil")
	}
	o, err := lifecycle.NewOptions(0, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{api: api, opts: o, logger: logging.ProviderLogger().WithName("algorithm")}, nil
}

// Get fetches an algorithm by id.
func (p *Provider) Get(ctx context.Context, algorithmID string) (*studio.Algorithm, error) {
	algo, err := p.api.GetAlgorithm(ctx, algorithmID)
	if err != nil {
		return nil, fmt.Errorf("getting algorithm %s: %w", algorithmID, err)
	}
	return algo, nil
}

// List iterates algorithms matching filter; its page fields are ignored. Public
// algorithms are listed when filter names the "pai" provider.
func (p *Provider) List(ctx context.Context, filter studio.ListAlgorithmsRequest, opts ...pager.Option) iter.Seq2[*studio.Algorithm, error] {
	if filter.WorkspaceID == "" && filter.AlgorithmProvider == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	return pager.All(ctx, p.listFunc(filter), opts...)
}

func (p *Provider) listFunc(filter studio.ListAlgorithmsRequest) pager.ListFunc[*studio.Algorithm] {
	return func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*studio.Algorithm], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListAlgorithms(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing algorithms: %w", err)
		}
		page := &pager.Page[*studio.Algorithm]{TotalCount: resp.TotalCount}
		for i := range resp.Algorithms {
			page.Items = append(page.Items, &resp.Algorithms[i])
		}
		return page, nil
	}
}

// FindByName returns the algorithm with exactly this name from provider. An empty
// provider searches the provider workspace.
func (p *Provider) FindByName(ctx context.Context, name, provider string) (*studio.Algorithm, error) {
	filter := studio.ListAlgorithmsRequest{AlgorithmName: name, AlgorithmProvider: provider}
	if provider == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	algo, ok, err := pager.First(ctx, p.listFunc(filter), func(a *studio.Algorithm) bool {
		return a.AlgorithmName == name
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlgorithmNotFound, name)
	}
	return algo, nil
}

// GetVersion fetches one version of an algorithm, including its spec.
func (p *Provider) GetVersion(ctx context.Context, algorithmID, version string) (*studio.AlgorithmVersion, error) {
	v, err := p.api.GetAlgorithmVersion(ctx, algorithmID, version)
	if err != nil {
		return nil, fmt.Errorf("getting algorithm %s version %s: %w", algorithmID, version, err)
	}
	return v, nil
}

// ListVersions iterates the versions of an algorithm.
func (p *Provider) ListVersions(ctx context.Context, algorithmID string, opts ...pager.Option) iter.Seq2[*studio.AlgorithmVersion, error] {
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*studio.AlgorithmVersion], error) {
		req := &studio.ListAlgorithmVersionsRequest{AlgorithmID: algorithmID}
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListAlgorithmVersions(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("listing versions of algorithm %s: %w", algorithmID, err)
		}
		page := &pager.Page[*studio.AlgorithmVersion]{TotalCount: resp.TotalCount}
		for i := range resp.AlgorithmVersions {
			page.Items = append(page.Items, &resp.AlgorithmVersions[i])
		}
		return page, nil
	}
	return pager.All(ctx, list, opts...)
}

// LatestVersion resolves an algorithm by name and returns its newest version with
// the full spec. Versions are ordered as semantic versions; versions that do not
// parse rank below those that do and are ordered by creation time.
func (p *Provider) LatestVersion(ctx context.Context, name, provider string) (*studio.AlgorithmVersion, error) {
	algo, err := p.FindByName(ctx, name, provider)
	if err != nil {
		return nil, err
	}

	var latest *studio.AlgorithmVersion
	for v, err := range p.ListVersions(ctx, algo.AlgorithmID) {
		if err != nil {
			return nil, err
		}
		if latest == nil || newer(v, latest) {
			latest = v
		}
	}
	if latest == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoVersions, name)
	}
	p.logger.Debug("resolved latest algorithm version", "algorithm", name, "version", latest.AlgorithmVersion)
	return p.GetVersion(ctx, algo.AlgorithmID, latest.AlgorithmVersion)
}

// Version resolves an algorithm by name and returns one of its versions with
// the full spec.
func (p *Provider) Version(ctx context.Context, name, provider, version string) (*studio.AlgorithmVersion, error) {
	algo, err := p.FindByName(ctx, name, provider)
	if err != nil {
		return nil, err
	}
	return p.GetVersion(ctx, algo.AlgorithmID, version)
}

func newer(a, b *studio.AlgorithmVersion) bool {
	av, aErr := semver.NewVersion(a.AlgorithmVersion)
	bv, bErr := semver.NewVersion(b.AlgorithmVersion)
	switch {
	case aErr == nil && bErr == nil:
		return av.GreaterThan(bv)
	case aErr == nil:
		return true
	case bErr == nil:
		return false
	default:
		return created(a).After(created(b))
	}
}

func created(v *studio.AlgorithmVersion) time.Time {
	if v.GmtCreateTime == nil {
		return time.Time{}
	}
	return time.Time(*v.GmtCreateTime)
}
