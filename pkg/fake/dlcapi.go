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

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
)

var _ client.DLCAPI = (*DLCAPI)(nil)

// DLCBehavior controls the fake DLC API behavior for testing
type DLCBehavior struct {
	CreateJobBehavior  MockedFunction[dlc.CreateJobRequest, string]
	GetJobBehavior     MockedFunction[string, dlc.Job]
	ListJobsBehavior   MockedFunction[dlc.ListJobsRequest, dlc.ListJobsResponse]
	StopJobBehavior    MockedFunction[string, struct{}]
	DeleteJobBehavior  MockedFunction[string, struct{}]
	GetPodLogsBehavior MockedFunction[dlc.GetPodLogsRequest, []string]

	Jobs Store[dlc.Job]
	// PodLogs is keyed by "<jobID>/<podID>".
	PodLogs   Store[[]string]
	NextError AtomicError
}

// DLCAPI implements a fake DLC API for testing
type DLCAPI struct {
	*DLCBehavior
}

func NewDLCAPI() *DLCAPI {
	return &DLCAPI{DLCBehavior: &DLCBehavior{}}
}

func setJobStatus(j *dlc.Job, status string) { j.Status = status }

// Reset clears recorded calls, stored jobs and scripted statuses.
func (f *DLCAPI) Reset() {
	f.CreateJobBehavior.Reset()
	f.GetJobBehavior.Reset()
	f.ListJobsBehavior.Reset()
	f.StopJobBehavior.Reset()
	f.DeleteJobBehavior.Reset()
	f.GetPodLogsBehavior.Reset()
	f.Jobs.Reset()
	f.PodLogs.Reset()
	f.NextError.Store(nil)
}

func (f *DLCAPI) CreateJob(_ context.Context, req *dlc.CreateJobRequest) (string, error) {
	if err := f.NextError.Get(); err != nil {
		return "", err
	}
	out, err := f.CreateJobBehavior.invoke(*req)
	if err != nil {
		return "", err
	}
	if req.DisplayName == "" || len(req.JobSpecs) == 0 {
		return "", badRequest("DisplayName and JobSpecs are required")
	}

	id := f.Jobs.NextID("dlc")
	if out != nil {
		id = *out
	}
	f.Jobs.Put(id, dlc.Job{
		JobID:          id,
		DisplayName:    req.DisplayName,
		JobType:        req.JobType,
		WorkspaceID:    req.WorkspaceID,
		ResourceID:     req.ResourceID,
		Status:         dlc.StatusCreating,
		UserCommand:    req.UserCommand,
		JobSpecs:       req.JobSpecs,
		DataSources:    req.DataSources,
		CodeSource:     req.CodeSource,
		Envs:           req.Envs,
		ThirdpartyLibs: req.ThirdpartyLibs,
		Settings:       req.Settings,
		GmtCreateTime:  lo.ToPtr(strfmt.DateTime(time.Now())),
	})
	return id, nil
}

func (f *DLCAPI) GetJob(_ context.Context, jobID string) (*dlc.Job, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.GetJobBehavior.invoke(jobID)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	job, ok := f.Jobs.advance(jobID, setJobStatus)
	if !ok {
		return nil, notFound("Job", jobID)
	}
	return job, nil
}

func (f *DLCAPI) ListJobs(_ context.Context, req *dlc.ListJobsRequest) (*dlc.ListJobsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.ListJobsBehavior.invoke(*req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	jobs := f.Jobs.List(func(_ string, j *dlc.Job) bool {
		return matches(req.WorkspaceID, j.WorkspaceID) &&
			matches(req.DisplayName, j.DisplayName) &&
			matches(req.Status, j.Status) &&
			matches(req.JobType, j.JobType)
	})
	return &dlc.ListJobsResponse{
		Jobs:       paginate(jobs, req.Pagination),
		TotalCount: int64(len(jobs)),
	}, nil
}

func (f *DLCAPI) StopJob(_ context.Context, jobID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.StopJobBehavior.invoke(jobID); err != nil {
		return err
	}
	if !f.Jobs.Update(jobID, func(j *dlc.Job) { j.Status = dlc.StatusStopped }) {
		return notFound("Job", jobID)
	}
	return nil
}

func (f *DLCAPI) DeleteJob(_ context.Context, jobID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.DeleteJobBehavior.invoke(jobID); err != nil {
		return err
	}
	if !f.Jobs.Delete(jobID) {
		return notFound("Job", jobID)
	}
	return nil
}

func (f *DLCAPI) GetPodLogs(_ context.Context, req *dlc.GetPodLogsRequest) ([]string, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.GetPodLogsBehavior.invoke(*req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return *out, nil
	}
	if _, ok := f.Jobs.Get(req.JobID); !ok {
		return nil, notFound("Job", req.JobID)
	}
	logs, ok := f.PodLogs.Get(req.JobID + "/" + req.PodID)
	if !ok {
		return nil, nil
	}
	lines := *logs
	if req.MaxLines > 0 && len(lines) > req.MaxLines {
		lines = lines[len(lines)-req.MaxLines:]
	}
	return lines, nil
}
