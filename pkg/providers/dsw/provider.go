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

// Package dsw manages Data Science Workshop notebook instances.
package dsw

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/waiter"
)

const (
	// DefaultPollInterval is the refresh interval used by the Wait methods.
	DefaultPollInterval = 5 * time.Second
	// Kind names instances in wait errors and metrics.
	Kind = "dsw-instance"
)

// Provider manages notebook instances
type Provider struct {
	api    client.DSWAPI
	opts   lifecycle.Options
	logger *logging.Logger
}

// NewProvider creates an instance provider.
func NewProvider(api client.DSWAPI, opts ...lifecycle.Option) (*Provider, error) {
	if api == nil {
		return nil, fmt.Errorf("DSW client cannot be nil")
	}
	o, err := lifecycle.NewOptions(DefaultPollInterval, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{api: api, opts: o, logger: logging.DSWLogger()}, nil
}

// Get fetches an instance by id.
func (p *Provider) Get(ctx context.Context, instanceID string) (*dsw.Instance, error) {
	if instanceID == "" {
		return nil, client.ErrNotSubmitted
	}
	inst, err := p.api.GetInstance(ctx, instanceID)
	if err != nil {
		return nil, fmt.Errorf("getting instance %s: %w", instanceID, err)
	}
	return inst, nil
}

// Refresh replaces inst with its current server state.
func (p *Provider) Refresh(ctx context.Context, inst *dsw.Instance) error {
	fresh, err := p.Get(ctx, inst.InstanceID)
	if err != nil {
		return err
	}
	*inst = *fresh
	return nil
}

// List iterates instances matching filter; its page fields are ignored.
func (p *Provider) List(ctx context.Context, filter dsw.ListInstancesRequest, opts ...pager.Option) iter.Seq2[*dsw.Instance, error] {
	if filter.WorkspaceID == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*dsw.Instance], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListInstances(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing instances: %w", err)
		}
		page := &pager.Page[*dsw.Instance]{TotalCount: resp.TotalCount}
		for i := range resp.Instances {
			page.Items = append(page.Items, &resp.Instances[i])
		}
		return page, nil
	}
	return pager.All(ctx, list, opts...)
}

// Start starts a stopped instance.
func (p *Provider) Start(ctx context.Context, instanceID string) error {
	if err := p.api.StartInstance(ctx, instanceID); err != nil {
		return fmt.Errorf("starting instance %s: %w", instanceID, err)
	}
	p.logger.Info("started instance", "instanceID", instanceID)
	return nil
}

// Stop stops a running instance.
func (p *Provider) Stop(ctx context.Context, instanceID string) error {
	if err := p.api.StopInstance(ctx, instanceID); err != nil {
		return fmt.Errorf("stopping instance %s: %w", instanceID, err)
	}
	p.logger.Info("stopped instance", "instanceID", instanceID)
	return nil
}

// Delete removes an instance.
func (p *Provider) Delete(ctx context.Context, instanceID string) error {
	if err := p.api.DeleteInstance(ctx, instanceID); err != nil {
		return fmt.Errorf("deleting instance %s: %w", instanceID, err)
	}
	p.logger.Info("deleted instance", "instanceID", instanceID)
	return nil
}

// DeleteAll removes every instance, ignoring instances that are already gone.
func (p *Provider) DeleteAll(ctx context.Context, instanceIDs ...string) error {
	return lifecycle.DeleteAll(ctx, instanceIDs, func(ctx context.Context, id string) error {
		return lifecycle.IgnoreNotFound(p.Delete(ctx, id))
	})
}

// WaitForRunning blocks until inst is Running. Only Failed ends the wait early:
// an instance read as Stopped right after Start is still on its way up.
func (p *Provider) WaitForRunning(ctx context.Context, inst *dsw.Instance) error {
	return p.wait(ctx, inst, dsw.StatusRunning)
}

// WaitForStopped blocks until inst is Stopped.
func (p *Provider) WaitForStopped(ctx context.Context, inst *dsw.Instance) error {
	return p.wait(ctx, inst, dsw.StatusStopped)
}

func (p *Provider) wait(ctx context.Context, inst *dsw.Instance, target string) error {
	if inst.InstanceID == "" {
		return client.ErrNotSubmitted
	}
	opts := p.opts.WaitOptions(Kind, inst.InstanceID, []string{target}, []string{dsw.StatusFailed})
	_, err := waiter.Wait(ctx, opts, func(ctx context.Context) (waiter.Status, error) {
		if err := p.Refresh(ctx, inst); err != nil {
			return waiter.Status{}, err
		}
		return waiter.Status{Value: inst.Status, ReasonCode: inst.ReasonCode, ReasonMessage: inst.ReasonMessage}, nil
	})
	return err
}
