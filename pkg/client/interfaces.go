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

package client

import (
	"context"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/paiflow"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/studio"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
)

// PAIFlowAPI defines the PAIFlow pipeline operations used by providers.
type PAIFlowAPI interface {
	GetPipeline(ctx context.Context, pipelineID string) (*paiflow.Pipeline, error)
	ListPipelines(ctx context.Context, req *paiflow.ListPipelinesRequest) (*paiflow.ListPipelinesResponse, error)

	CreatePipelineRun(ctx context.Context, req *paiflow.CreatePipelineRunRequest) (string, error)
	GetPipelineRun(ctx context.Context, runID string) (*paiflow.PipelineRun, error)
	ListPipelineRuns(ctx context.Context, req *paiflow.ListPipelineRunsRequest) (*paiflow.ListPipelineRunsResponse, error)
	StartPipelineRun(ctx context.Context, runID string) error
	TerminatePipelineRun(ctx context.Context, runID string) error
	DeletePipelineRun(ctx context.Context, runID string) error
	ListPipelineRunNodeLogs(ctx context.Context, req *paiflow.ListNodeLogsRequest) (*paiflow.ListNodeLogsResponse, error)
}

// DLCAPI defines the Deep Learning Containers job operations.
type DLCAPI interface {
	CreateJob(ctx context.Context, req *dlc.CreateJobRequest) (string, error)
	GetJob(ctx context.Context, jobID string) (*dlc.Job, error)
	ListJobs(ctx context.Context, req *dlc.ListJobsRequest) (*dlc.ListJobsResponse, error)
	StopJob(ctx context.Context, jobID string) error
	DeleteJob(ctx context.Context, jobID string) error
	GetPodLogs(ctx context.Context, req *dlc.GetPodLogsRequest) ([]string, error)
}

// EASAPI defines the model service operations. Services are addressed by region
// and name.
type EASAPI interface {
	CreateService(ctx context.Context, cfg *eas.ServiceConfig) (*eas.CreateServiceResponse, error)
	DescribeService(ctx context.Context, region, name string) (*eas.Service, error)
	ListServices(ctx context.Context, req *eas.ListServicesRequest) (*eas.ListServicesResponse, error)
	UpdateService(ctx context.Context, region, name string, cfg *eas.ServiceConfig) error
	StartService(ctx context.Context, region, name string) error
	StopService(ctx context.Context, region, name string) error
	DeleteService(ctx context.Context, region, name string) error
}

// WorkspaceAPI defines the AIWorkspace operations.
type WorkspaceAPI interface {
	GetWorkspace(ctx context.Context, workspaceID string) (*workspace.Workspace, error)
	ListWorkspaces(ctx context.Context, req *workspace.ListWorkspacesRequest) (*workspace.ListWorkspacesResponse, error)
	GetDefaultWorkspace(ctx context.Context) (*workspace.Workspace, error)

	CreateDataset(ctx context.Context, req *workspace.CreateDatasetRequest) (string, error)
	GetDataset(ctx context.Context, datasetID string) (*workspace.Dataset, error)
	ListDatasets(ctx context.Context, req *workspace.ListDatasetsRequest) (*workspace.ListDatasetsResponse, error)
	DeleteDataset(ctx context.Context, datasetID string) error

	CreateModel(ctx context.Context, req *workspace.CreateModelRequest) (string, error)
	GetModel(ctx context.Context, modelID string) (*workspace.Model, error)
	ListModels(ctx context.Context, req *workspace.ListModelsRequest) (*workspace.ListModelsResponse, error)
	DeleteModel(ctx context.Context, modelID string) error
	CreateModelVersion(ctx context.Context, modelID string, req *workspace.CreateModelVersionRequest) (string, error)
	ListModelVersions(ctx context.Context, req *workspace.ListModelVersionsRequest) (*workspace.ListModelVersionsResponse, error)

	CreateCodeSource(ctx context.Context, req *workspace.CreateCodeSourceRequest) (string, error)
	GetCodeSource(ctx context.Context, codeSourceID string) (*workspace.CodeSource, error)
	ListCodeSources(ctx context.Context, req *workspace.ListCodeSourcesRequest) (*workspace.ListCodeSourcesResponse, error)
	DeleteCodeSource(ctx context.Context, codeSourceID string) error

	ListImages(ctx context.Context, req *workspace.ListImagesRequest) (*workspace.ListImagesResponse, error)
}

// DSWAPI defines the notebook instance operations.
type DSWAPI interface {
	GetInstance(ctx context.Context, instanceID string) (*dsw.Instance, error)
	ListInstances(ctx context.Context, req *dsw.ListInstancesRequest) (*dsw.ListInstancesResponse, error)
	StartInstance(ctx context.Context, instanceID string) error
	StopInstance(ctx context.Context, instanceID string) error
	DeleteInstance(ctx context.Context, instanceID string) error
}

// StudioAPI defines the PAI Studio training job and algorithm operations.
type StudioAPI interface {
	CreateTrainingJob(ctx context.Context, req *studio.CreateTrainingJobRequest) (string, error)
	GetTrainingJob(ctx context.Context, trainingJobID string) (*studio.TrainingJob, error)
	ListTrainingJobs(ctx context.Context, req *studio.ListTrainingJobsRequest) (*studio.ListTrainingJobsResponse, error)
	StopTrainingJob(ctx context.Context, trainingJobID string) error

	GetAlgorithm(ctx context.Context, algorithmID string) (*studio.Algorithm, error)
	ListAlgorithms(ctx context.Context, req *studio.ListAlgorithmsRequest) (*studio.ListAlgorithmsResponse, error)
	GetAlgorithmVersion(ctx context.Context, algorithmID, version string) (*studio.AlgorithmVersion, error)
	ListAlgorithmVersions(ctx context.Context, req *studio.ListAlgorithmVersionsRequest) (*studio.ListAlgorithmVersionsResponse, error)
}
