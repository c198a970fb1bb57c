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
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/samber/lo"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/cache"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
)

// DefaultImageCacheTTL bounds how long resolved images are reused.
const DefaultImageCacheTTL = 30 * time.Minute

// Accelerator types of official images.
const (
	AcceleratorCPU = "CPU"
	AcceleratorGPU = "GPU"
)

// ErrImageNotFound is returned when no official image matches a query.
var ErrImageNotFound = errors.New("no matching image")

// ImageQuery selects an official image. Version is a semantic version
// constraint such as "1.12", "~2.1" or ">=2.0, <3"; empty or "latest" picks the
// newest release.
type ImageQuery struct {
	Framework   string
	Version     string
	Accelerator string
	WorkspaceID string
}

// ImageResolver finds official framework images, caching answers per query.
type ImageResolver struct {
	api    client.WorkspaceAPI
	cache  *cache.Cache[*workspace.Image]
	logger *logging.Logger
}

// NewImageResolver creates a resolver whose answers live for ttl.
func NewImageResolver(api client.WorkspaceAPI, ttl time.Duration) (*ImageResolver, error) {
	if api == nil {
		return nil, fmt.Errorf("AIWorkspace client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultImageCacheTTL
	}
	return newImageResolver(api, cache.New[*workspace.Image](ttl)), nil
}

func newImageResolver(api client.WorkspaceAPI, c *cache.Cache[*workspace.Image]) *ImageResolver {
	return &ImageResolver{api: api, cache: c, logger: logging.WorkspaceLogger().WithName("images")}
}

// Close stops the cache cleanup goroutine.
func (r *ImageResolver) Close() {
	r.cache.Stop()
}

// Retrieve returns the newest official image of framework whose version
// satisfies the query.
func (r *ImageResolver) Retrieve(ctx context.Context, q ImageQuery) (*workspace.Image, error) {
	if q.Framework == "" {
		return nil, fmt.Errorf("%w: framework", client.ErrMissingArgument)
	}
	q.Accelerator = strings.ToUpper(lo.Ternary(q.Accelerator == "", AcceleratorCPU, q.Accelerator))
	if q.Accelerator != AcceleratorCPU && q.Accelerator != AcceleratorGPU {
		return nil, fmt.Errorf("unsupported accelerator %q", q.Accelerator)
	}
	var constraint *semver.Constraints
	if q.Version != "" && q.Version != "latest" {
		c, err := semver.NewConstraint(q.Version)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", q.Version, err)
		}
		constraint = c
	}

	key, err := cache.Key(q)
	if err != nil {
		return nil, err
	}
	return r.cache.GetOrSet(key, func() (*workspace.Image, error) {
		return r.resolve(ctx, q, constraint)
	})
}

func (r *ImageResolver) resolve(ctx context.Context, q ImageQuery, constraint *semver.Constraints) (*workspace.Image, error) {
	req := workspace.ListImagesRequest{
		WorkspaceID: q.WorkspaceID,
		Labels: map[string]string{
			workspace.ImageLabelOfficial: "true",
			workspace.ImageLabelChipType: q.Accelerator,
		},
		Verbose: lo.ToPtr(true),
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*workspace.Image], error) {
		page := req
		page.PageNumber, page.PageSize = pageNumber, pageSize
		resp, err := r.api.ListImages(ctx, &page)
		if err != nil {
			return nil, fmt.Errorf("listing images: %w", err)
		}
		return toPage(resp.Images, resp.TotalCount), nil
	}

	var best *workspace.Image
	var bestVersion *semver.Version
	for img, err := range pager.All(ctx, list, pager.WithPageSize(50)) {
		if err != nil {
			return nil, err
		}
		framework, version, ok := FrameworkVersion(img)
		if !ok || !strings.EqualFold(framework, q.Framework) {
			continue
		}
		if constraint != nil && !constraint.Check(version) {
			continue
		}
		if _, err := name.ParseReference(img.ImageURI); err != nil {
			r.logger.Debug("skipping image with invalid URI", "imageID", img.ImageID, "uri", img.ImageURI)
			continue
		}
		if best == nil || version.GreaterThan(bestVersion) {
			best, bestVersion = img, version
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w: %s %s (%s)", ErrImageNotFound, q.Framework, lo.Ternary(q.Version == "", "latest", q.Version), q.Accelerator)
	}
	r.logger.Debug("resolved image", "framework", q.Framework, "version", bestVersion.String(), "uri", best.ImageURI)
	return best, nil
}

// FrameworkVersion splits the framework label of an official image, which
// reads "<Framework> <version>", e.g. "PyTorch 2.1".
func FrameworkVersion(img *workspace.Image) (string, *semver.Version, bool) {
	framework, raw, ok := strings.Cut(strings.TrimSpace(img.Label(workspace.ImageLabelFramework)), " ")
	if !ok {
		return "", nil, false
	}
	v, err := semver.NewVersion(strings.TrimSpace(raw))
	if err != nil {
		return "", nil, false
	}
	return framework, v, true
}
