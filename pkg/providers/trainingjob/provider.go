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

// Package trainingjob submits and tracks PAI Studio training jobs.
package trainingjob

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"strings"
	"time"

	"github.com/google/go-containerregistry/pkg/name"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/studio"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/logging"
	"github.com/pfeifferj/pai-go-sdk/pkg/oss"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/waiter"
)

const (
	// DefaultPollInterval is the refresh interval used by WaitForCompletion.
	DefaultPollInterval = 10 * time.Second
	// Kind names training jobs in wait errors and metrics.
	Kind = "training-job"
)

// ErrTrainingJobFailed wraps the *waiter.TerminalError of a job that failed or
// was stopped.
var ErrTrainingJobFailed = errors.New("training job failed")

var (
	succeededStatuses = []string{studio.StatusSucceeded}
	failedStatuses    = []string{studio.StatusFailed, studio.StatusStopped}
)

// VersionResolver looks up versions of a registered algorithm, including their spec.
type VersionResolver interface {
	LatestVersion(ctx context.Context, name, provider string) (*studio.AlgorithmVersion, error)
	Version(ctx context.Context, name, provider, version string) (*studio.AlgorithmVersion, error)
}

// CreateOptions describe a new training job. The algorithm is either a
// registered one (AlgorithmName, optionally pinned by AlgorithmVersion) or a
// custom container (Image and Command, or a full AlgorithmSpec).
type CreateOptions struct {
	Name        string
	Description string
	WorkspaceID string

	AlgorithmName     string
	AlgorithmVersion  string
	AlgorithmProvider string

	Image         string
	Command       []string
	AlgorithmSpec *studio.AlgorithmSpec

	HyperParameters map[string]string
	// Inputs and Outputs map channel names to OSS URIs or dataset ids.
	Inputs  map[string]string
	Outputs map[string]string

	InstanceType   string
	InstanceCount  int64
	ResourceID     string
	MaxRunningTime time.Duration
	Environments   map[string]string
	Labels         map[string]string
	RoleArn        string
	UserVpc        *studio.UserVpc
}

func (o *CreateOptions) validate() error {
	custom := o.Image != "" || o.AlgorithmSpec != nil
	switch {
	case o.Name == "":
		return fmt.Errorf("%w: training job name", client.ErrMissingArgument)
	case o.AlgorithmName != "" && custom:
		return fmt.Errorf("%w: algorithm name and custom image", client.ErrConflictingOptions)
	case o.Image != "" && o.AlgorithmSpec != nil:
		return fmt.Errorf("%w: image and algorithm spec", client.ErrConflictingOptions)
	case o.AlgorithmName == "" && !custom:
		return fmt.Errorf("%w: algorithm name or image", client.ErrMissingArgument)
	}
	if o.Image != "" {
		if _, err := name.ParseReference(o.Image); err != nil {
			return fmt.Errorf("invalid image %q: %w", o.Image, err)
		}
		if len(o.Command) == 0 {
			return fmt.Errorf("%w: command for custom image", client.ErrMissingArgument)
		}
	}
	for _, uris := range []map[string]string{o.Inputs, o.Outputs} {
		for channel, uri := range uris {
			if strings.HasPrefix(uri, oss.Scheme) {
				if _, err := oss.ParseURI(uri); err != nil {
					return fmt.Errorf("channel %s: %w", channel, err)
				}
			}
		}
	}
	return nil
}

func (o *CreateOptions) spec() *studio.AlgorithmSpec {
	if o.AlgorithmSpec != nil {
		return o.AlgorithmSpec
	}
	if o.Image != "" {
		return &studio.AlgorithmSpec{Image: o.Image, Command: o.Command}
	}
	return nil
}

// checkSpec reports required hyperparameters and input channels the options do
// not supply.
func checkSpec(spec *studio.AlgorithmSpec, o *CreateOptions) error {
	if spec == nil {
		return nil
	}
	var missing []string
	for _, hp := range spec.HyperParameters {
		if _, ok := o.HyperParameters[hp.Name]; hp.Required && hp.DefaultValue == "" && !ok {
			missing = append(missing, "hyperparameter "+hp.Name)
		}
	}
	for _, ch := range spec.InputChannels {
		if _, ok := o.Inputs[ch.Name]; ch.Required && !ok {
			missing = append(missing, "input channel "+ch.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", client.ErrMissingArgument, strings.Join(missing, ", "))
	}
	return nil
}

func hyperParameters(m map[string]string) []studio.HyperParameter {
	out := make([]studio.HyperParameter, 0, len(m))
	for k, v := range m {
		out = append(out, studio.HyperParameter{Name: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// channels turns name → location into channels. Values that are not URIs are
// taken as dataset ids.
func channels(m map[string]string, output bool) []studio.Channel {
	out := make([]studio.Channel, 0, len(m))
	for k, v := range m {
		ch := studio.Channel{Name: k}
		switch {
		case !strings.Contains(v, "://"):
			ch.DatasetID = v
		case output:
			ch.OutputURI = v
		default:
			ch.InputURI = v
		}
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Provider manages training jobs
type Provider struct {
	api      client.StudioAPI
	resolver VersionResolver
	opts     lifecycle.Options
	logger   *logging.Logger
}

// NewProvider creates a training job provider. resolver may be nil, in which case
// registered algorithms must be pinned to a version.
func NewProvider(api client.StudioAPI, resolver VersionResolver, opts ...lifecycle.Option) (*Provider, error) {
	if api == nil {
		return nil, fmt.Errorf("PAI Studio client cannot be nil")
	}
	o, err := lifecycle.NewOptions(DefaultPollInterval, opts...)
	if err != nil {
		return nil, err
	}
	return &Provider{api: api, resolver: resolver, opts: o, logger: logging.TrainingJobLogger()}, nil
}

// Create submits a training job and returns its initial state.
func (p *Provider) Create(ctx context.Context, opts CreateOptions) (*studio.TrainingJob, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	workspaceID, err := p.opts.Workspace(opts.WorkspaceID)
	if err != nil {
		return nil, err
	}

	spec := opts.spec()
	version := opts.AlgorithmVersion
	if opts.AlgorithmName != "" {
		resolved, err := p.resolveVersion(ctx, &opts)
		if err != nil {
			return nil, err
		}
		if resolved != nil {
			version = resolved.AlgorithmVersion
			if err := checkSpec(resolved.AlgorithmSpec, &opts); err != nil {
				return nil, err
			}
		}
	}
	if err := checkSpec(spec, &opts); err != nil {
		return nil, err
	}

	count := opts.InstanceCount
	if count == 0 {
		count = 1
	}
	req := &studio.CreateTrainingJobRequest{
		TrainingJobName:        opts.Name,
		TrainingJobDescription: opts.Description,
		WorkspaceID:            workspaceID,
		AlgorithmName:          opts.AlgorithmName,
		AlgorithmProvider:      opts.AlgorithmProvider,
		AlgorithmVersion:       version,
		AlgorithmSpec:          spec,
		HyperParameters:        hyperParameters(opts.HyperParameters),
		InputChannels:          channels(opts.Inputs, false),
		OutputChannels:         channels(opts.Outputs, true),
		ComputeResource: &studio.ComputeResource{
			EcsSpec:    opts.InstanceType,
			EcsCount:   count,
			ResourceID: opts.ResourceID,
		},
		UserVpc:      opts.UserVpc,
		Environments: opts.Environments,
		Labels:       common.LabelsFromMap(opts.Labels),
		RoleArn:      opts.RoleArn,
	}
	if opts.MaxRunningTime > 0 {
		req.Scheduler = &studio.Scheduler{MaxRunningTimeInSeconds: int64(opts.MaxRunningTime / time.Second)}
	}

	id, err := p.api.CreateTrainingJob(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating training job: %w", err)
	}
	p.logger.Info("created training job", "trainingJobID", id, "name", opts.Name, "algorithm", opts.AlgorithmName, "version", version)
	return p.Get(ctx, id)
}

// resolveVersion fetches the pinned or newest version of the algorithm. It
// returns nil for a pinned version when there is no resolver to check it with.
func (p *Provider) resolveVersion(ctx context.Context, opts *CreateOptions) (*studio.AlgorithmVersion, error) {
	if p.resolver == nil {
		if opts.AlgorithmVersion == "" {
			return nil, fmt.Errorf("%w: algorithm version", client.ErrMissingArgument)
		}
		return nil, nil
	}
	var (
		v   *studio.AlgorithmVersion
		err error
	)
	if opts.AlgorithmVersion == "" {
		v, err = p.resolver.LatestVersion(ctx, opts.AlgorithmName, opts.AlgorithmProvider)
	} else {
		v, err = p.resolver.Version(ctx, opts.AlgorithmName, opts.AlgorithmProvider, opts.AlgorithmVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving algorithm %s: %w", opts.AlgorithmName, err)
	}
	return v, nil
}

// Get fetches a training job by id.
func (p *Provider) Get(ctx context.Context, id string) (*studio.TrainingJob, error) {
	if id == "" {
		return nil, client.ErrNotSubmitted
	}
	job, err := p.api.GetTrainingJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("getting training job %s: %w", id, err)
	}
	return job, nil
}

// Refresh replaces job with its current server state.
func (p *Provider) Refresh(ctx context.Context, job *studio.TrainingJob) error {
	fresh, err := p.Get(ctx, job.TrainingJobID)
	if err != nil {
		return err
	}
	*job = *fresh
	return nil
}

// List iterates training jobs matching filter; its page fields are ignored.
func (p *Provider) List(ctx context.Context, filter studio.ListTrainingJobsRequest, opts ...pager.Option) iter.Seq2[*studio.TrainingJob, error] {
	if filter.WorkspaceID == "" {
		filter.WorkspaceID = p.opts.WorkspaceID
	}
	list := func(ctx context.Context, pageNumber, pageSize int) (*pager.Page[*studio.TrainingJob], error) {
		req := filter
		req.PageNumber, req.PageSize = pageNumber, pageSize
		resp, err := p.api.ListTrainingJobs(ctx, &req)
		if err != nil {
			return nil, fmt.Errorf("listing training jobs: %w", err)
		}
		page := &pager.Page[*studio.TrainingJob]{TotalCount: resp.TotalCount}
		for i := range resp.TrainingJobs {
			page.Items = append(page.Items, &resp.TrainingJobs[i])
		}
		return page, nil
	}
	return pager.All(ctx, list, opts...)
}

// WaitForCompletion blocks until job succeeds, fails or is stopped, keeping job
// current. Failures wrap both ErrTrainingJobFailed and *waiter.TerminalError.
func (p *Provider) WaitForCompletion(ctx context.Context, job *studio.TrainingJob) error {
	if job.TrainingJobID == "" {
		return client.ErrNotSubmitted
	}
	opts := p.opts.WaitOptions(Kind, job.TrainingJobID, succeededStatuses, failedStatuses)
	_, err := waiter.Wait(ctx, opts, func(ctx context.Context) (waiter.Status, error) {
		if err := p.Refresh(ctx, job); err != nil {
			return waiter.Status{}, err
		}
		return waiter.Status{Value: job.Status, ReasonCode: job.ReasonCode, ReasonMessage: job.ReasonMessage}, nil
	})
	if waiter.IsTerminalFailure(err) {
		return fmt.Errorf("%w: %w", ErrTrainingJobFailed, err)
	}
	return err
}

// Stop asks the service to stop a training job.
func (p *Provider) Stop(ctx context.Context, id string) error {
	if err := p.api.StopTrainingJob(ctx, id); err != nil {
		return fmt.Errorf("stopping training job %s: %w", id, err)
	}
	p.logger.Info("stopped training job", "trainingJobID", id)
	return nil
}

// OutputURI returns the location of the named output channel.
func OutputURI(job *studio.TrainingJob, channel string) (string, bool) {
	for _, ch := range job.OutputChannels {
		if ch.Name == channel {
			if ch.OutputURI != "" {
				return ch.OutputURI, true
			}
			return ch.DatasetID, ch.DatasetID != ""
		}
	}
	return "", false
}

// LatestMetrics returns the most recent value of each reported metric.
func LatestMetrics(job *studio.TrainingJob) map[string]float64 {
	out := make(map[string]float64, len(job.LatestMetrics))
	for _, m := range job.LatestMetrics {
		out[m.Name] = m.Value
	}
	return out
}
