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

// Package client provides typed clients for the PAI OpenAPI services.
package client

import (
	"fmt"
	"sync"

	"github.com/IBM/go-sdk-core/v5/core"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/paiflow"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/studio"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/httpclient"
)

// Client represents the PAI API client for one region. Per-service clients are
// built on first use.
type Client struct {
	region   string
	auth     core.Authenticator
	httpOpts []httpclient.Option

	paiflowClient   *PAIFlowClient
	paiflowClientMu sync.RWMutex

	dlcClient   *DLCClient
	dlcClientMu sync.RWMutex

	easClient   *EASClient
	easClientMu sync.RWMutex

	workspaceClient   *WorkspaceClient
	workspaceClientMu sync.RWMutex

	dswClient   *DSWClient
	dswClientMu sync.RWMutex

	studioClient   *StudioClient
	studioClientMu sync.RWMutex
}

// NewClient creates a client for region that signs every request with auth.
func NewClient(region string, auth core.Authenticator, opts ...httpclient.Option) (*Client, error) {
	if region == "" {
		return nil, fmt.Errorf("%w: region", ErrMissingArgument)
	}
	if auth == nil {
		return nil, fmt.Errorf("%w: authenticator", ErrMissingArgument)
	}
	if err := auth.Validate(); err != nil {
		return nil, fmt.Errorf("validating authenticator: %w", err)
	}
	return &Client{region: region, auth: auth, httpOpts: opts}, nil
}

// GetRegion returns the configured region
func (c *Client) GetRegion() string {
	return c.region
}

func (c *Client) newHTTPClient(service, version string) (*httpclient.PAIHTTPClient, error) {
	endpoint, err := ResolveEndpoint(service, c.region)
	if err != nil {
		return nil, err
	}
	opts := append([]httpclient.Option{httpclient.WithAPIVersion(version)}, c.httpOpts...)
	return httpclient.NewPAIHTTPClient(service, endpoint, c.auth, opts...), nil
}

// lazyGet implements the read-lock fast path and write-lock double check shared by
// the service accessors.
func lazyGet[T any](mu *sync.RWMutex, slot **T, build func() (*T, error)) (*T, error) {
	mu.RLock()
	v := *slot
	mu.RUnlock()
	if v != nil {
		return v, nil
	}

	mu.Lock()
	defer mu.Unlock()
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

// PAIFlow returns the pipeline service client.
func (c *Client) PAIFlow() (*PAIFlowClient, error) {
	return lazyGet(&c.paiflowClientMu, &c.paiflowClient, func() (*PAIFlowClient, error) {
		h, err := c.newHTTPClient(ServicePAIFlow, paiflow.APIVersion)
		if err != nil {
			return nil, err
		}
		return NewPAIFlowClient(h), nil
	})
}

// DLC returns the training job service client.
func (c *Client) DLC() (*DLCClient, error) {
	return lazyGet(&c.dlcClientMu, &c.dlcClient, func() (*DLCClient, error) {
		h, err := c.newHTTPClient(ServiceDLC, dlc.APIVersion)
		if err != nil {
			return nil, err
		}
		return NewDLCClient(h), nil
	})
}

// EAS returns the model serving client.
func (c *Client) EAS() (*EASClient, error) {
	return lazyGet(&c.easClientMu, &c.easClient, func() (*EASClient, error) {
		h, err := c.newHTTPClient(ServiceEAS, eas.APIVersion)
		if err != nil {
			return nil, err
		}
		return NewEASClient(h), nil
	})
}

// Workspace returns the AIWorkspace client.
func (c *Client) Workspace() (*WorkspaceClient, error) {
	return lazyGet(&c.workspaceClientMu, &c.workspaceClient, func() (*WorkspaceClient, error) {
		h, err := c.newHTTPClient(ServiceWorkspace, workspace.APIVersion)
		if err != nil {
			return nil, err
		}
		return NewWorkspaceClient(h), nil
	})
}

// DSW returns the notebook instance client.
func (c *Client) DSW() (*DSWClient, error) {
	return lazyGet(&c.dswClientMu, &c.dswClient, func() (*DSWClient, error) {
		h, err := c.newHTTPClient(ServiceDSW, dsw.APIVersion)
		if err != nil {
			return nil, err
		}
		return NewDSWClient(h), nil
	})
}

// Studio returns the PAI Studio client.
func (c *Client) Studio() (*StudioClient, error) {
	return lazyGet(&c.studioClientMu, &c.studioClient, func() (*StudioClient, error) {
		h, err := c.newHTTPClient(ServiceStudio, studio.APIVersion)
		if err != nil {
			return nil, err
		}
		return NewStudioClient(h), nil
	})
}
