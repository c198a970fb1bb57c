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

// Package pipelinerun submits and tracks PAIFlow pipeline runs.
package pipelinerun

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/multierr"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/paiflow"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/waiter"
)

// DefaultPollInterval is the refresh interval used by Wait.
const DefaultPollInterval = 10 * time.Second

// Kind names pipeline runs in wait errors and metrics.
const Kind = "pipeline-run"

// ErrPipelineNotFound is returned by FindPipeline when nothing matches.
var ErrPipelineNotFound = errors.New("pipeline not found")

var (
	succeededStatuses = []string{paiflow.StatusSucceeded}
	failedStatuses    = []string{paiflow.StatusFailed, paiflow.StatusTerminated}
)

// SubmitOptions describe a new run. Exactly one of PipelineID and Manifest is set.
type SubmitOptions struct {
	Name          string
	PipelineID    string
	Manifest      *Manifest
	Arguments     map[string]interface{}
	WorkspaceID   string
	Accessibility string
	Source        string
}

// Provider manages pipeline runs
type Provider struct {
	api    client.PAIFlowAPI
	opts   lifecycle.Options
	logger *logging.Logger
}

// NewProvider creates a pipeline run provider
func NewProvider(api client.PAIFlowAPI, opts ...lifecycle.Option) (*Provider, error) {
	if api == nil {
		return nil, fmt.Errorf("PAIFlow client cannot be nil")
	}
	o, err := lifecycle.NewOptions(DefaultPollInterval, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{api: api, opts: o, logger: logging.PipelineRunLogger()}, nil
}

func (o *SubmitOptions) validate() error {
	switch {
	case o.PipelineID != "" && o.Manifest != nil:
		return fmt.Errorf("%w: pipeline id and manifest are mutually exclusive", client.ErrConflictingOptions)
	case o.PipelineID == "" && o.Manifest == nil:
		return fmt.Errorf("%w: pipeline id or manifest", client.ErrMissingArgument)
	case o.Manifest != nil:
		if err := o.Manifest.Validate(); err != nil {
			return err
		}
		return o.Manifest.CheckArguments(o.Arguments)
	}
	return nil
}

func (o *SubmitOptions) runName() string {
	switch {
	case o.Name != "":
		return o.Name
	case o.Manifest != nil && o.Manifest.Metadata.Name != "":
		return o.Manifest.Metadata.Name
	case o.Manifest != nil:
		return o.Manifest.Metadata.Identifier
	default:
		return o.PipelineID
	}
}

// Submit creates a run and starts it.
func (p *Provider) Submit(ctx context.Context, opts SubmitOptions) (*paiflow.PipelineRun, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	workspaceID, err := p.opts.Workspace(opts.WorkspaceID)
	if err != nil {
		return nil, err
	}
	args, err := EncodeArguments(opts.Arguments)
	if err != nil {
		return nil, err
	}

	req := &paiflow.CreatePipelineRunRequest{
		Name:          opts.runName(),
		PipelineID:    opts.PipelineID,
		Arguments:     args,
		WorkspaceID:   workspaceID,
		Accessibility: opts.Accessibility,
		Source:        opts.Source,
	}
	if opts.Manifest != nil {
		if req.PipelineManifest, err = opts.Manifest.Marshal(); err != nil {
			return nil, err
		}
	}

	runID, err := p.api.CreatePipelineRun(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating pipeline run: %w", err)
	}
	if err := p.api.StartPipelineRun(ctx, runID); err != nil {
		err = fmt.Errorf("starting pipeline run %s: %w", runID, err)
		// The run was created but never started; remove it so it is not left behind.
		if derr := p.api.DeletePipelineRun(context.WithoutCancel(ctx), runID); derr != nil {
			err = multierr.Append(err, fmt.Errorf("deleting unstarted pipeline run %s: %w", runID, derr))
		}
		return nil, err
	}
	p.logger.Info("submitted pipeline run", "runID", runID, "name", req.Name, "workspaceID", workspaceID)
	return p.Get(ctx, runID)
}

// Get fetches a run by id.
func (p *Provider) Get(ctx context.Context, runID string) (*paiflow.PipelineRun, error) {
	if runID == "" {
		return nil, client.ErrNotSubmitted
	}
	run, err := p.api.GetPipelineRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("getting pipeline run %s: %w", runID, err)
	}
	return run, nil
}

// Refresh replaces run with its current server state.
func (p *Provider) Refresh(ctx context.Context, run *paiflow.PipelineRun) error {
	fresh, err := p.Get(ctx, run.PipelineRunID)
	if err != nil {
		return err
	}
	*run = *fresh
	return nil
}

// List iterates runs matching filter. The filter's page fields are ignored; use
// pager options instead. The provider workspace applies when filter has none.
func (p *Provider) List(ctx context.Context, filter paiflow.ListPipelineRunsRequest, opts ...pager.Option) iter.Seq2[*paiflow.PipelineRun, error] {
	if filter.WorkspaceID == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*paiflow.PipelineRun], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListPipelineRuns(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing pipeline runs: %w", err)
		}
		page := &pager.Page[*paiflow.PipelineRun]{TotalCount: resp.TotalCount}
		for i := range resp.PipelineRuns {
			page.Items = append(page.Items, &resp.PipelineRuns[i])
		}
		return page, nil
	}
	return pager.All(ctx, list, opts...)
}

// Wait blocks until run succeeds, fails or is terminated, keeping run current.
func (p *Provider) Wait(ctx context.Context, run *paiflow.PipelineRun) error {
	if run.PipelineRunID == "" {
		return client.ErrNotSubmitted
	}
	opts := p.opts.WaitOptions(Kind, run.PipelineRunID, succeededStatuses, failedStatuses)
	_, err := waiter.Wait(ctx, opts, func(ctx context.Context) (waiter.Status, error) {
		if err := p.Refresh(ctx, run); err != nil {
			return waiter.Status{}, err
		}
		return waiter.Status{Value: run.Status, ReasonMessage: run.Message}, nil
	})
	return err
}

// Terminate stops a running pipeline run.
func (p *Provider) Terminate(ctx context.Context, runID string) error {
	if err := p.api.TerminatePipelineRun(ctx, runID); err != nil {
		return fmt.Errorf("terminating pipeline run %s: %w", runID, err)
	}
	p.logger.Info("terminated pipeline run", "runID", runID)
	return nil
}

// Delete removes a pipeline run.
func (p *Provider) Delete(ctx context.Context, runID string) error {
	if err := p.api.DeletePipelineRun(ctx, runID); err != nil {
		return fmt.Errorf("deleting pipeline run %s: %w", runID, err)
	}
	return nil
}

// DeleteAll removes every run, ignoring runs that are already gone.
func (p *Provider) DeleteAll(ctx context.Context, runIDs ...string) error {
	return lifecycle.DeleteAll(ctx, runIDs, func(ctx context.Context, id string) error {
		return lifecycle.IgnoreNotFound(p.Delete(ctx, id))
	})
}

// NodeLogs iterates the log lines of one node of a run.
func (p *Provider) NodeLogs(ctx context.Context, runID, nodeID string, opts ...pager.Option) iter.Seq2[string, error] {
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[string], error) {
		req := &paiflow.ListNodeLogsRequest{PipelineRunID: runID, NodeID: nodeID}
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListPipelineRunNodeLogs(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("listing logs of node %s: %w", nodeID, err)
		}
		return &pager.Page[string]{Items: resp.Logs, TotalCount: resp.TotalCount}, nil
	}
	return pager.All(ctx, list, opts...)
}

// GetPipeline fetches a registered pipeline.
func (p *Provider) GetPipeline(ctx context.Context, pipelineID string) (*paiflow.Pipeline, error) {
	pipeline, err := p.api.GetPipeline(ctx, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("getting pipeline %s: %w", pipelineID, err)
	}
	return pipeline, nil
}

// ListPipelines iterates registered pipelines matching filter.
func (p *Provider) ListPipelines(ctx context.Context, filter paiflow.ListPipelinesRequest, opts ...pager.Option) iter.Seq2[*paiflow.Pipeline, error] {
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*paiflow.Pipeline], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListPipelines(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing pipelines: %w", err)
		}
		page := &pager.Page[*paiflow.Pipeline]{TotalCount: resp.TotalCount}
		for i := range resp.Pipelines {
			page.Items = append(page.Items, &resp.Pipelines[i])
		}
		return page, nil
	}
	return pager.All(ctx, list, opts...)
}

// FindPipeline looks a pipeline up by identifier, provider and version.
func (p *Provider) FindPipeline(ctx context.Context, identifier, provider, version string) (*paiflow.Pipeline, error) {
	filter := paiflow.ListPipelinesRequest{
		WorkspaceID:        p.opts.WorkspaceID,
		PipelineIdentifier: identifier,
		PipelineProvider:   provider,
		PipelineVersion:    version,
	}
	for pipeline, err := range p.ListPipelines(ctx, filter) {
		if err != nil {
			return nil, err
		}
		if pipeline.Identifier == identifier && pipeline.Provider == provider && pipeline.Version == version {
			return pipeline, nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s@%s", ErrPipelineNotFound, provider, identifier, version)
}
