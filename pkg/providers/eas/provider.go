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

// Package eas deploys and tracks Elastic Algorithm Service model services.
package eas

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"os"
	"time"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/waiter"
)

const (
	// DefaultPollInterval is the refresh interval used by the Wait methods.
	DefaultPollInterval = 5 * time.Second
	// Kind names services in wait errors and metrics.
	Kind = "eas-service"
)

// LoadServiceConfig reads a JSON service config from path.
func LoadServiceConfig(path string) (*eas.ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading service config: %w", err)
	}
	cfg := &eas.ServiceConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing service config %s: %w", path, err)
	}
	return cfg, nil
}

func validate(cfg *eas.ServiceConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: service config", client.ErrMissingArgument)
	}
	if cfg.Name == "" {
		return fmt.Errorf("%w: service name", client.ErrMissingArgument)
	}
	if cfg.Processor == "" && len(cfg.Container) == 0 {
		return fmt.Errorf("%w: processor or containers", client.ErrMissingArgument)
	}
	if cfg.Metadata.Instance < 0 {
		return fmt.Errorf("instance count must not be negative, got %d", cfg.Metadata.Instance)
	}
	for _, c := range cfg.Container {
		if _, err := name.ParseReference(c.Image); err != nil {
			return fmt.Errorf("invalid container image %q: %w", c.Image, err)
		}
	}
	return nil
}

// Provider manages EAS services in one region
type Provider struct {
	api    client.EASAPI
	region string
	opts   lifecycle.Options
	logger *logging.Logger
}

// NewProvider creates a service provider for region.
func NewProvider(api client.EASAPI, region string, opts ...lifecycle.Option) (*Provider, error) {
	if api == nil {
		return nil, fmt.Errorf("EAS client cannot be nil")
	}
	if region == "" {
		return nil, fmt.Errorf("%w: region", client.ErrMissingArgument)
	}
	o, err := lifecycle.NewOptions(DefaultPollInterval, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{api: api, region: region, opts: o, logger: logging.EASLogger()}, nil
}

// Create deploys a service. The provider workspace is used when the config
// does not name one.
func (p *Provider) Create(ctx context.Context, cfg *eas.ServiceConfig) (*eas.Service, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	req := *cfg
	if req.Metadata.Workspace == "" {
		req.Metadata.Workspace = p.opts.WorkspaceID
	}
	resp, err := p.api.CreateService(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("creating service %s: %w", cfg.Name, err)
	}
	p.logger.Info("created service", "service", resp.ServiceName, "serviceID", resp.ServiceID, "region", resp.Region)
	return p.Describe(ctx, resp.ServiceName)
}

// CreateFromFile deploys the service described by a JSON config file.
func (p *Provider) CreateFromFile(ctx context.Context, path string) (*eas.Service, error) {
	cfg, err := LoadServiceConfig(path)
	if err != nil {
		return nil, err
	}
	return p.Create(ctx, cfg)
}

// Describe fetches a service by name.
func (p *Provider) Describe(ctx context.Context, serviceName string) (*eas.Service, error) {
	if serviceName == "" {
		return nil, client.ErrNotSubmitted
	}
	svc, err := p.api.DescribeService(ctx, p.region, serviceName)
	if err != nil {
		return nil, fmt.Errorf("describing service %s: %w", serviceName, err)
	}
	return svc, nil
}

// Refresh replaces svc with its current server state.
func (p *Provider) Refresh(ctx context.Context, svc *eas.Service) error {
	fresh, err := p.Describe(ctx, svc.ServiceName)
	if err != nil {
		return err
	}
	*svc = *fresh
	return nil
}

// List iterates services matching filter; its page fields are ignored.
func (p *Provider) List(ctx context.Context, filter eas.ListServicesRequest, opts ...pager.Option) iter.Seq2[*eas.Service, error] {
	if filter.WorkspaceID == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*eas.Service], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListServices(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing services: %w", err)
		}
		page := &pager.Page[*eas.Service]{TotalCount: resp.TotalCount}
		for i := range resp.Services {
			page.Items = append(page.Items, &resp.Services[i])
		}
		return page, nil
	}
	return pager.All(ctx, list, opts...)
}

// Update replaces the config of a running service.
func (p *Provider) Update(ctx context.Context, serviceName string, cfg *eas.ServiceConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: service config", client.ErrMissingArgument)
	}
	if err := p.api.UpdateService(ctx, p.region, serviceName, cfg); err != nil {
		return fmt.Errorf("updating service %s: %w", serviceName, err)
	}
	p.logger.Info("updated service", "service", serviceName)
	return nil
}

// Start starts a stopped service.
func (p *Provider) Start(ctx context.Context, serviceName string) error {
	if err := p.api.StartService(ctx, p.region, serviceName); err != nil {
		return fmt.Errorf("starting service %s: %w", serviceName, err)
	}
	p.logger.Info("started service", "service", serviceName)
	return nil
}

// Stop stops a service without deleting it.
func (p *Provider) Stop(ctx context.Context, serviceName string) error {
	if err := p.api.StopService(ctx, p.region, serviceName); err != nil {
		return fmt.Errorf("stopping service %s: %w", serviceName, err)
	}
	p.logger.Info("stopped service", "service", serviceName)
	return nil
}

// Delete removes a service.
func (p *Provider) Delete(ctx context.Context, serviceName string) error {
	if err := p.api.DeleteService(ctx, p.region, serviceName); err != nil {
		return fmt.Errorf("deleting service %s: %w", serviceName, err)
	}
	p.logger.Info("deleted service", "service", serviceName)
	return nil
}

// DeleteAll removes every service, ignoring services that are already gone.
func (p *Provider) DeleteAll(ctx context.Context, serviceNames ...string) error {
	return lifecycle.DeleteAll(ctx, serviceNames, func(ctx context.Context, n string) error {
		return lifecycle.IgnoreNotFound(p.Delete(ctx, n))
	})
}

// WaitForReady blocks until svc is Running. A Failed service ends the wait with
// a *waiter.TerminalError.
func (p *Provider) WaitForReady(ctx context.Context, svc *eas.Service) error {
	return p.wait(ctx, svc, eas.StatusRunning)
}

// WaitForStopped blocks until svc is Stopped.
func (p *Provider) WaitForStopped(ctx context.Context, svc *eas.Service) error {
	return p.wait(ctx, svc, eas.StatusStopped)
}

func (p *Provider) wait(ctx context.Context, svc *eas.Service, target string) error {
	if svc.ServiceName == "" {
		return client.ErrNotSubmitted
	}
	opts := p.opts.WaitOptions(Kind, svc.ServiceName, []string{target}, []string{eas.StatusFailed})
	_, err := waiter.Wait(ctx, opts, func(ctx context.Context) (waiter.Status, error) {
		if err := p.Refresh(ctx, svc); err != nil {
			return waiter.Status{}, err
		}
		return waiter.Status{Value: svc.Status, ReasonCode: svc.Reason, ReasonMessage: svc.Message}, nil
	})
	return err
}
