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

// Package providers builds every resource provider over one set of service APIs.
package providers

import (
	"fmt"
	"sync"
	"time"

	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/algorithm"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/pipelinerun"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/trainingjob"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/workspace"
)

// APIs bundles the service interfaces the providers are built on. A nil field
// makes the matching accessor fail.
type APIs struct {
	PAIFlow   client.PAIFlowAPI
	DLC       client.DLCAPI
	EAS       client.EASAPI
	Workspace client.WorkspaceAPI
	DSW       client.DSWAPI
	Studio    client.StudioAPI
}

// APIsFromClient builds every service client of c.
func APIsFromClient(c *client.Client) (APIs, error) {
	if c == nil {
		return APIs{}, fmt.Errorf("PAI client cannot be nil")
	}
	var apis APIs
	var err error
	if apis.PAIFlow, err = c.PAIFlow(); err != nil {
		return APIs{}, err
	}
	if apis.DLC, err = c.DLC(); err != nil {
		return APIs{}, err
	}
	if apis.EAS, err = c.EAS(); err != nil {
		return APIs{}, err
	}
	if apis.Workspace, err = c.Workspace(); err != nil {
		return APIs{}, err
	}
	if apis.DSW, err = c.DSW(); err != nil {
		return APIs{}, err
	}
	if apis.Studio, err = c.Studio(); err != nil {
		return APIs{}, err
	}
	return apis, nil
}

// ProviderFactory creates the providers of one region and workspace. Providers
// are built once and shared.
type ProviderFactory struct {
	apis     APIs
	region   string
	opts     []lifecycle.Option
	imageTTL time.Duration

	mu           sync.Mutex
	pipelineRuns *pipelinerun.Provider
	dlcJobs      *dlc.Provider
	trainingJobs *trainingjob.Provider
	algorithms   *algorithm.Provider
	services     *eas.Provider
	instances    *dsw.Provider
	workspace    *workspace.Provider
	images       *workspace.ImageResolver
}

// NewProviderFactory creates a new provider factory. opts are applied to every
// provider.
func NewProviderFactory(apis APIs, region string, opts ...lifecycle.Option) (*ProviderFactory, error) {
	if region == "" {
		return nil, fmt.Errorf("%w: region", client.ErrMissingArgument)
	}
	if _, err := lifecycle.NewOptions(0, opts...); err != nil {
		return nil, err
	}
	return &ProviderFactory{apis: apis, region: region, opts: opts, imageTTL: workspace.DefaultImageCacheTTL}, nil
}

// Region returns the region the providers operate in.
func (f *ProviderFactory) Region() string {
	return f.region
}

// get returns *slot, building it under the factory lock on first use.
func get[T any](f *ProviderFactory, slot **T, build func() (*T, error)) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if *slot != nil {
		return *slot, nil
	}
	v, err := build()
	if err != nil {
		return nil, err
	}
	*slot = v
	return v, nil
}

// PipelineRuns returns the PAIFlow pipeline run provider.
func (f *ProviderFactory) PipelineRuns() (*pipelinerun.Provider, error) {
	return get(f, &f.pipelineRuns, func() (*pipelinerun.Provider, error) {
		if f.apis.PAIFlow == nil {
			return nil, fmt.Errorf("PAIFlow client cannot be nil")
		}
		return pipelinerun.NewProvider(f.apis.PAIFlow, f.opts...)
	})
}

// DLC returns the DLC job provider.
func (f *ProviderFactory) DLC() (*dlc.Provider, error) {
	return get(f, &f.dlcJobs, func() (*dlc.Provider, error) {
		if f.apis.DLC == nil {
			return nil, fmt.Errorf("DLC client cannot be nil")
		}
		return dlc.NewProvider(f.apis.DLC, f.opts...)
	})
}

// Algorithms returns the PAI Studio algorithm provider.
func (f *ProviderFactory) Algorithms() (*algorithm.Provider, error) {
	return get(f, &f.algorithms, func() (*algorithm.Provider, error) {
		if f.apis.Studio == nil {
			return nil, fmt.Errorf("PAI Studio client cannot be nil")
		}
		return algorithm.NewProvider(f.apis.Studio, f.opts...)
	})
}

// TrainingJobs returns the training job provider. Unpinned algorithms resolve
// their latest version through the algorithm provider.
func (f *ProviderFactory) TrainingJobs() (*trainingjob.Provider, error) {
	algorithms, err := f.Algorithms()
	if err != nil {
		return nil, err
	}
	return get(f, &f.trainingJobs, func() (*trainingjob.Provider, error) {
		return trainingjob.NewProvider(f.apis.Studio, algorithms, f.opts...)
	})
}

// Services returns the EAS service provider.
func (f *ProviderFactory) Services() (*eas.Provider, error) {
	return get(f, &f.services, func() (*eas.Provider, error) {
		if f.apis.EAS == nil {
			return nil, fmt.Errorf("EAS client cannot be nil")
		}
		return eas.NewProvider(f.apis.EAS, f.region, f.opts...)
	})
}

// Instances returns the DSW notebook instance provider.
func (f *ProviderFactory) Instances() (*dsw.Provider, error) {
	return get(f, &f.instances, func() (*dsw.Provider, error) {
		if f.apis.DSW == nil {
			return nil, fmt.Errorf("DSW client cannot be nil")
		}
		return dsw.NewProvider(f.apis.DSW, f.opts...)
	})
}

// Workspace returns the AIWorkspace provider.
func (f *ProviderFactory) Workspace() (*workspace.Provider, error) {
	return get(f, &f.workspace, func() (*workspace.Provider, error) {
		if f.apis.Workspace == nil {
			return nil, fmt.Errorf("AIWorkspace client cannot be nil")
		}
		return workspace.NewProvider(f.apis.Workspace, f.opts...)
	})
}

// Images returns the shared official image resolver.
func (f *ProviderFactory) Images() (*workspace.ImageResolver, error) {
	return get(f, &f.images, func() (*workspace.ImageResolver, error) {
		return workspace.NewImageResolver(f.apis.Workspace, f.imageTTL)
	})
}

// Close releases background resources held by the providers.
func (f *ProviderFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.images != nil {
		f.images.Close()
		f.images = nil
	}
}
