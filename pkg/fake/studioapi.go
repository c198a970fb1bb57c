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
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/samber/lo"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/studio"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
)

var _ client.StudioAPI = (*StudioAPI)(nil)

// StudioBehavior controls the fake PAI Studio API behavior for testing
type StudioBehavior struct {
	CreateTrainingJobBehavior MockedFunction[studio.CreateTrainingJobRequest, string]
	GetTrainingJobBehavior    MockedFunction[string, studio.TrainingJob]
	ListTrainingJobsBehavior  MockedFunction[studio.ListTrainingJobsRequest, studio.ListTrainingJobsResponse]
	StopTrainingJobBehavior   MockedFunction[string, struct{}]

	TrainingJobs Store[studio.TrainingJob]
	Algorithms   Store[studio.Algorithm]
	// AlgorithmVersions is keyed by "<algorithmID>/<version>"; see AlgorithmVersionKey.
	AlgorithmVersions Store[studio.AlgorithmVersion]
	NextError         AtomicError
}

// StudioAPI implements a fake PAI Studio API for testing
type StudioAPI struct {
	*StudioBehavior
}

func NewStudioAPI() *StudioAPI {
	return &StudioAPI{StudioBehavior: &StudioBehavior{}}
}

// AlgorithmVersionKey is the AlgorithmVersions store key.
func AlgorithmVersionKey(algorithmID, version string) string {
	return algorithmID + "/" + version
}

func setTrainingJobStatus(j *studio.TrainingJob, status string) {
	j.Status = status
	j.StatusTransitions = append(j.StatusTransitions, studio.StatusTransition{Status: status})
}

func (f *StudioAPI) CreateTrainingJob(_ context.Context, req *studio.CreateTrainingJobRequest) (string, error) {
	if err := f.NextError.Get(); err != nil {
		return "", err
	}
	out, err := f.CreateTrainingJobBehavior.invoke(*req)
	if err != nil {
		return "", err
	}
	if req.TrainingJobName == "" {
		return "", badRequest("TrainingJobName is required")
	}
	if req.AlgorithmName == "" && req.AlgorithmSpec == nil {
		return "", badRequest("one of AlgorithmName and AlgorithmSpec is required")
	}

	id := f.TrainingJobs.NextID("train")
	if out != nil {
		id = *out
	}
	f.TrainingJobs.Put(id, studio.TrainingJob{
		TrainingJobID:          id,
		TrainingJobName:        req.TrainingJobName,
		TrainingJobDescription: req.TrainingJobDescription,
		WorkspaceID:            req.WorkspaceID,
		AlgorithmName:          req.AlgorithmName,
		AlgorithmProvider:      req.AlgorithmProvider,
		AlgorithmVersion:       req.AlgorithmVersion,
		AlgorithmSpec:          req.AlgorithmSpec,
		HyperParameters:        req.HyperParameters,
		InputChannels:          req.InputChannels,
		OutputChannels:         req.OutputChannels,
		ComputeResource:        req.ComputeResource,
		Scheduler:              req.Scheduler,
		UserVpc:                req.UserVpc,
		Environments:           req.Environments,
		Labels:                 req.Labels,
		RoleArn:                req.RoleArn,
		Status:                 studio.StatusCreating,
		GmtCreateTime:          lo.ToPtr(strfmt.DateTime(time.Now())),
	})
	return id, nil
}

func (f *StudioAPI) GetTrainingJob(_ context.Context, trainingJobID string) (*studio.TrainingJob, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.GetTrainingJobBehavior.invoke(trainingJobID)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	job, ok := f.TrainingJobs.advance(trainingJobID, setTrainingJobStatus)
	if !ok {
		return nil, notFound("TrainingJob", trainingJobID)
	}
	return job, nil
}

func (f *StudioAPI) ListTrainingJobs(_ context.Context, req *studio.ListTrainingJobsRequest) (*studio.ListTrainingJobsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	out, err := f.ListTrainingJobsBehavior.invoke(*req)
	if err != nil {
		return nil, err
	}
	if out != nil {
		return out, nil
	}
	jobs := f.TrainingJobs.List(func(id string, j *studio.TrainingJob) bool {
		return matches(req.WorkspaceID, j.WorkspaceID) &&
			matches(req.TrainingJobName, j.TrainingJobName) &&
			matches(req.TrainingJobID, id) &&
			matches(req.AlgorithmName, j.AlgorithmName) &&
			matches(req.Status, j.Status)
	})
	return &studio.ListTrainingJobsResponse{
		TrainingJobs: paginate(jobs, req.Pagination),
		TotalCount:   int64(len(jobs)),
	}, nil
}

func (f *StudioAPI) StopTrainingJob(_ context.Context, trainingJobID string) error {
	if err := f.NextError.Get(); err != nil {
		return err
	}
	if _, err := f.StopTrainingJobBehavior.invoke(trainingJobID); err != nil {
		return err
	}
	if !f.TrainingJobs.Update(trainingJobID, func(j *studio.TrainingJob) {
		setTrainingJobStatus(j, studio.StatusStopped)
	}) {
		return notFound("TrainingJob", trainingJobID)
	}
	return nil
}

func (f *StudioAPI) GetAlgorithm(_ context.Context, algorithmID string) (*studio.Algorithm, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	algo, ok := f.Algorithms.Get(algorithmID)
	if !ok {
		return nil, notFound("Algorithm", algorithmID)
	}
	return algo, nil
}

func (f *StudioAPI) ListAlgorithms(_ context.Context, req *studio.ListAlgorithmsRequest) (*studio.ListAlgorithmsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	algos := f.Algorithms.List(func(id string, a *studio.Algorithm) bool {
		return matches(req.WorkspaceID, a.WorkspaceID) &&
			matches(req.AlgorithmName, a.AlgorithmName) &&
			matches(req.AlgorithmProvider, a.AlgorithmProvider) &&
			matches(req.AlgorithmID, id)
	})
	return &studio.ListAlgorithmsResponse{
		Algorithms: paginate(algos, req.Pagination),
		TotalCount: int64(len(algos)),
	}, nil
}

func (f *StudioAPI) GetAlgorithmVersion(_ context.Context, algorithmID, version string) (*studio.AlgorithmVersion, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	v, ok := f.AlgorithmVersions.Get(AlgorithmVersionKey(algorithmID, version))
	if !ok {
		return nil, notFound("AlgorithmVersion", AlgorithmVersionKey(algorithmID, version))
	}
	return v, nil
}

func (f *StudioAPI) ListAlgorithmVersions(_ context.Context, req *studio.ListAlgorithmVersionsRequest) (*studio.ListAlgorithmVersionsResponse, error) {
	if err := f.NextError.Get(); err != nil {
		return nil, err
	}
	if _, ok := f.Algorithms.Get(req.AlgorithmID); !ok {
		return nil, notFound("Algorithm", req.AlgorithmID)
	}
	versions := f.AlgorithmVersions.List(func(key string, _ *studio.AlgorithmVersion) bool {
		return strings.HasPrefix(key, req.AlgorithmID+"/")
	})
	return &studio.ListAlgorithmVersionsResponse{
		AlgorithmVersions: paginate(versions, req.Pagination),
		TotalCount:        int64(len(versions)),
	}, nil
}
