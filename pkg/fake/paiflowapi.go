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

package fake

import (
	"context"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/samber/lo"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/paiflow"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
)

var _ client.PAIFlowAPI = (*PAIFlowAPI)(nil)

// PAIFlowBehavior controls the fake PAIFlow API behavior for testing
type PAIFlowBehavior struct {
	CreatePipelineRunBehavior    MockedFunction[paiflow.CreatePipelineRunRequest, string]
	GetPipelineRunBehavior       MockedFunction[string, paiflow.PipelineRun]
	ListPipelineRunsBehavior     MockedFunction[paiflow.ListPipelineRunsRequest, paiflow.ListPipelineRunsResponse]
	StartPipelineRunBehavior     MockedFunction[string, struct{}]
	TerminatePipelineRunBehavior MockedFunction[string, struct{}]
	DeletePipelineRunBehavior    MockedFunction[string, struct{}]
	ListNodeLogsBehavior         MockedFunction[paiflow.ListNodeLogsRequest, paiflow.ListNodeLogsResponse]

	Pipelines Store[paiflow.Pipeline]
	Runs      Store[paiflow.PipelineRun]
	// NodeLogs is keyed by "<runID>/<nodeID>".
	NodeLogs  Store[[]string]
	NextError AtomicError
}

// PAIFlowAPI implements a fake PAIFlow API for testing
type PAIFlowAPI struct {
	*PAIFlowBehavior
}

func NewPAIFlowAPI() *PAIFlowAPI {
	return &PAIFlowAPI{PAIFlowBehavior: &PAIFlowBehavior{}}
}

func setRunStatus(r *paiflow.PipelineRun, status string) { r.Status = status }

func (f *PAIFlowAPI) GetPipeline(_ context.Context, pipelineID string) (*paiflow.Pipeline, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	p, ok := f.Pipelines.Get(pipelineID)
	if !ok {
		return nil, notFound("Pipeline", pipelineID)
	}
	return p, nil
}

func (f *PAIFlowAPI) ListPipelines(_ context.Context, req *paiflow.ListPipelinesRequest) (*paiflow.ListPipelinesResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	pipelines := f.Pipelines.List(func(_ string, p *paiflow.Pipeline) bool {
		return matches(req.WorkspaceID, p.WorkspaceID) &&
			matches(req.PipelineIdentifier, p.Identifier) &&
			matches(req.PipelineProvider, p.Provider) &&
			matches(req.PipelineVersion, p.Version)
	})
	return &paiflow.ListPipelinesResponse{
		Pipelines:  paginate(pipelines, req.Pagination),
		TotalCount: int64(len(pipelines)),
	}, nil
}

func (f *PAIFlowAPI) CreatePipelineRun(_ context.Context, req *paiflow.CreatePipelineRunRequest) (string, error) {
	if err := f.NextError.Get(); err != nil {
		return "", err
	}
	out, err := f.CreatePipelineRunBehavior.invoke(*req)
	if err != nil {
		return "", err
	}
	if req.PipelineID == "" && req.PipelineManifest == "" {
		return "", badRequest("one of PipelineId and PipelineManifest is required")
	}
	if req.PipelineID != "" {
		if _, ok := f.Pipelines.Get(req.PipelineID); !ok {
			return "", notFound("Pipeline", req.PipelineID)
		}
	}

	id := f.Runs.NextID("flow")
	if out != nil {
		id = *out
	}
	f.Runs.Put(id, paiflow.PipelineRun{
		PipelineRunID: id,
		Name:          req.Name,
		PipelineID:    req.PipelineID,
		WorkspaceID:   req.WorkspaceID,
		NodeID:        "node-" + id,
		Status:        paiflow.StatusInitialized,
		Arguments:     req.Arguments,
		Accessibility: req.Accessibility,
		Source:        req.Source,
		GmtCreateTime: lo.ToPtr(strfmt.DateTime(time.Now())),
	})
	return id, nil
}

func (f *PAIFlowAPI) GetPipelineRun(_ context.Context, runID string) (*paiflow.PipelineRun, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.GetPipelineRunBehavior.invoke(runID)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	run, ok := f.Runs.advance(runID, setRunStatus)
	if !ok {
		return nil, notFound("PipelineRun", runID)
	}
	return run, nil
}

func (f *PAIFlowAPI) ListPipelineRuns(_ context.Context, req *paiflow.ListPipelineRunsRequest) (*paiflow.ListPipelineRunsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.ListPipelineRunsBehavior.invoke(*req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	runs := f.Runs.List(func(id string, r *paiflow.PipelineRun) bool {
		return matches(req.WorkspaceID, r.WorkspaceID) &&
			matches(req.PipelineRunID, id) &&
			matches(req.Name, r.Name) &&
			matches(req.Status, r.Status) &&
			matches(req.Source, r.Source)
	})
	return &paiflow.ListPipelineRunsResponse{
		PipelineRuns: paginate(runs, req.Pagination),
		TotalCount:   int64(len(runs)),
	}, nil
}

func (f *PAIFlowAPI) StartPipelineRun(_ context.Context, runID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.StartPipelineRunBehavior.invoke(runID); err != nil {
		return err
	}
	if !f.Runs.Update(runID, func(r *paiflow.PipelineRun) {
		r.Status = paiflow.StatusRunning
		r.StartedTime = lo.ToPtr(strfmt.DateTime(time.Now()))
	}) {
		return notFound("PipelineRun", runID)
	}
	return nil
}

func (f *PAIFlowAPI) TerminatePipelineRun(_ context.Context, runID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.TerminatePipelineRunBehavior.invoke(runID); err != nil {
		return err
	}
	if !f.Runs.Update(runID, func(r *paiflow.PipelineRun) { r.Status = paiflow.StatusTerminated }) {
		return notFound("PipelineRun", runID)
	}
	return nil
}

func (f *PAIFlowAPI) DeletePipelineRun(_ context.Context, runID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.DeletePipelineRunBehavior.invoke(runID); err != nil {
		return err
	}
	if !f.Runs.Delete(runID) {
		return notFound("PipelineRun", runID)
	}
	return nil
}

// ListPipelineRunNodeLogs pages by offset like the real service.
func (f *PAIFlowAPI) ListPipelineRunNodeLogs(_ context.Context, req *paiflow.ListNodeLogsRequest) (*paiflow.ListNodeLogsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.ListNodeLogsBehavior.invoke(*req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	if _, ok := f.Runs.Get(req.PipelineRunID); !ok {
		return nil, notFound("PipelineRun", req.PipelineRunID)
	}
	var lines []string
	if logs, ok := f.NodeLogs.Get(req.PipelineRunID + "/" + req.NodeID); ok {
		lines = *logs
	}
	size := req.PageSize
	if size < 1 {
		size = DefaultPageSize
	}
	return &paiflow.ListNodeLogsResponse{
		Logs:       window(lines, req.Offset(), size),
		TotalCount: int64(len(lines)),
	}, nil
}
