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

// Package dlc creates and tracks Deep Learning Containers jobs.
package dlc

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/waiter"
)

const (
	// DefaultPollInterval is the refresh interval used by WaitForCompletion.
	DefaultPollInterval = 10 * time.Second
	// Kind names DLC jobs in wait errors and metrics.
	Kind = "dlc-job"
)

var (
	succeededStatuses = []string{dlc.StatusSucceeded}
	failedStatuses    = []string{dlc.StatusFailed, dlc.StatusStopped}
)

// CreateOptions describe a new job. Either set Image (and optionally WorkerCount
// and EcsSpec) for a single worker group, or list JobSpecs explicitly.
type CreateOptions struct {
	DisplayName string
	// JobType defaults to PyTorchJob.
	JobType     string
	Command     string
	Image       string
	WorkerCount int64
	EcsSpec     string
	JobSpecs    []dlc.JobSpec

	WorkspaceID    string
	ResourceID     string
	DataSources    []dlc.DataSource
	CodeSource     *dlc.CodeSource
	Envs           map[string]string
	ThirdpartyLibs []string
	Settings       *dlc.JobSettings
	Priority       int
}

// ValidateImage checks that ref is a well-formed container image reference.
func ValidateImage(ref string) error {
	if _, err := name.ParseReference(ref); err != nil {
		return fmt.Errorf("invalid image %q: %w", ref, err)
	}
	return nil
}

func (o *CreateOptions) jobSpecs() ([]dlc.JobSpec, error) {
	switch {
	case len(o.JobSpecs) > 0 && o.Image != "":
		return nil, fmt.Errorf("%w: image and job specs are mutually exclusive", client.ErrConflictingOptions)
	case len(o.JobSpecs) > 0:
		return o.JobSpecs, nil
	case o.Image != "":
		count := o.WorkerCount
		if count == 0 {
			count = 1
		}
		return []dlc.JobSpec{{Type: dlc.RoleWorker, Image: o.Image, PodCount: count, EcsSpec: o.EcsSpec}}, nil
	default:
		return nil, fmt.Errorf("%w: image or job specs", client.ErrMissingArgument)
	}
}

func (o *CreateOptions) validate() ([]dlc.JobSpec, error) {
	if o.DisplayName == "" {
		return nil, fmt.Errorf("%w: display name", client.ErrMissingArgument)
	}
	if o.Command == "" {
		return nil, fmt.Errorf("%w: command", client.ErrMissingArgument)
	}
	specs, err := o.jobSpecs()
	if err != nil {
		return nil, err
	}
	for _, spec := range specs {
		if spec.Type == "" {
			return nil, fmt.Errorf("%w: job spec type", client.ErrMissingArgument)
		}
		if spec.PodCount < 1 {
			return nil, fmt.Errorf("job spec %s: pod count must be at least 1, got %d", spec.Type, spec.PodCount)
		}
		if err := ValidateImage(spec.Image); err != nil {
			return nil, fmt.Errorf("job spec %s: %w", spec.Type, err)
		}
	}
	return specs, nil
}

// Provider manages DLC jobs
type Provider struct {
	api    client.DLCAPI
	opts   lifecycle.Options
	logger *logging.Logger
}

// NewProvider creates a DLC job provider
func NewProvider(api client.DLCAPI, opts ...lifecycle.Option) (*Provider, error) {
	if api == nil {
		return nil, fmt.Errorf("DLC client cannot be nil")
	}
	o, err := lifecycle.NewOptions(DefaultPollInterval, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{api: api, opts: o, logger: logging.DLCLogger()}, nil
}

// Create submits a job and returns its initial state.
func (p *Provider) Create(ctx context.Context, opts CreateOptions) (*dlc.Job, error) {
	specs, err := opts.validate()
	if err != nil {
		return nil, err
	}
	workspaceID, err := p.opts.Workspace(opts.WorkspaceID)
	if err != nil {
		return nil, err
	}
	jobType := opts.JobType
	if jobType == "" {
		jobType = dlc.JobTypePyTorchJob
	}

	jobID, err := p.api.CreateJob(ctx, &dlc.CreateJobRequest{
		DisplayName:    opts.DisplayName,
		JobType:        jobType,
		WorkspaceID:    workspaceID,
		ResourceID:     opts.ResourceID,
		UserCommand:    opts.Command,
		JobSpecs:       specs,
		DataSources:    opts.DataSources,
		CodeSource:     opts.CodeSource,
		Envs:           opts.Envs,
		ThirdpartyLibs: opts.ThirdpartyLibs,
		Settings:       opts.Settings,
		Priority:       opts.Priority,
	})
	if err != nil {
		return nil, fmt.Errorf("creating DLC job: %w", err)
	}
	p.logger.Info("created DLC job", "jobID", jobID, "displayName", opts.DisplayName, "jobType", jobType)
	return p.Get(ctx, jobID)
}

// Get fetches a job by id.
func (p *Provider) Get(ctx context.Context, jobID string) (*dlc.Job, error) {
	if jobID == "" {
		return nil, client.ErrNotSubmitted
	}
	job, err := p.api.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("getting DLC job %s: %w", jobID, err)
	}
	return job, nil
}

// Refresh replaces job with its current server state.
func (p *Provider) Refresh(ctx context.Context, job *dlc.Job) error {
	fresh, err := p.Get(ctx, job.JobID)
	if err != nil {
		return err
	}
	*job = *fresh
	return nil
}

// List iterates jobs matching filter; its page fields are ignored.
func (p *Provider) List(ctx context.Context, filter dlc.ListJobsRequest, opts ...pager.Option) iter.Seq2[*dlc.Job, error] {
	if filter.WorkspaceID == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*dlc.Job], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListJobs(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing DLC jobs: %w", err)
		}
		page := &pager.Page[*dlc.Job]{TotalCount: resp.TotalCount}
		for i := range resp.Jobs {
			page.Items = append(page.Items, &resp.Jobs[i])
		}
		return page, nil
	}
	return pager.All(ctx, list, opts...)
}

// WaitForCompletion blocks until job succeeds, fails or is stopped, keeping job current.
func (p *Provider) WaitForCompletion(ctx context.Context, job *dlc.Job) error {
	if job.JobID == "" {
		return client.ErrNotSubmitted
	}
	opts := p.opts.WaitOptions(Kind, job.JobID, succeededStatuses, failedStatuses)
	_, err := waiter.Wait(ctx, opts, func(ctx context.Context) (waiter.Status, error) {
		if err := p.Refresh(ctx, job); err != nil {
			return waiter.Status{}, err
		}
		return waiter.Status{Value: job.Status, ReasonCode: job.ReasonCode, ReasonMessage: job.ReasonMessage}, nil
	})
	return err
}

// Stop asks the service to stop a job.
func (p *Provider) Stop(ctx context.Context, jobID string) error {
	if err := p.api.StopJob(ctx, jobID); err != nil {
		return fmt.Errorf("stopping DLC job %s: %w", jobID, err)
	}
	p.logger.Info("stopped DLC job", "jobID", jobID)
	return nil
}

// Delete removes a job.
func (p *Provider) Delete(ctx context.Context, jobID string) error {
	if err := p.api.DeleteJob(ctx, jobID); err != nil {
		return fmt.Errorf("deleting DLC job %s: %w", jobID, err)
	}
	return nil
}

// DeleteAll removes every job, ignoring jobs that are already gone.
func (p *Provider) DeleteAll(ctx context.Context, jobIDs ...string) error {
	return lifecycle.DeleteAll(ctx, jobIDs, func(ctx context.Context, id string) error {
		return lifecycle.IgnoreNotFound(p.Delete(ctx, id))
	})
}

// PodLogs returns up to maxLines trailing log lines of one pod; zero means the
// service default.
func (p *Provider) PodLogs(ctx context.Context, jobID, podID string, maxLines int) ([]string, error) {
	lines, err := p.api.GetPodLogs(ctx, &dlc.GetPodLogsRequest{JobID: jobID, PodID: podID, MaxLines: maxLines})
	if err != nil {
		return nil, fmt.Errorf("getting logs of pod %s: %w", podID, err)
	}
	return lines, nil
}

// Logs collects the logs of every pod of job, keyed by pod id.
func (p *Provider) Logs(ctx context.Context, job *dlc.Job, maxLines int) (map[string][]string, error) {
	logs := make(map[string][]string, len(job.Pods))
	for _, pod := range job.Pods {
		lines, err := p.PodLogs(ctx, job.JobID, pod.PodID, maxLines)
		if err != nil {
			return nil, err
		}
		logs[pod.PodID] = lines
	}
	return logs, nil
}
