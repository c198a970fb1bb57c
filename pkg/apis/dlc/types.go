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

// Package dlc contains wire types for the Deep Learning Containers service.
package dlc

import (
	"github.com/go-openapi/strfmt"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
)

// APIVersion is sent as x-acs-version.
const APIVersion = "2020-12-03"

// Job statuses reported by DLC.
const (
	StatusCreating     = "Creating"
	StatusQueuing      = "Queuing"
	StatusDequeued     = "Dequeued"
	StatusEnvPreparing = "EnvPreparing"
	StatusRunning      = "Running"
	StatusRestarting   = "Restarting"
	StatusStopping     = "Stopping"
	StatusSucceeded    = "Succeeded"
	StatusFailed       = "Failed"
	StatusStopped      = "Stopped"
)

// Job types.
const (
	JobTypeTFJob      = "TFJob"
	JobTypePyTorchJob = "PyTorchJob"
	JobTypeXGBoostJob = "XGBoostJob"
	JobTypeMPIJob     = "MPIJob"
)

// Worker roles inside a JobSpec.
const (
	RoleWorker = "Worker"
	RoleMaster = "Master"
	RolePS     = "PS"
	RoleChief  = "Chief"
)

type JobSpec struct {
	Type            string `json:"Type"`
	Image           string `json:"Image"`
	PodCount        int64  `json:"PodCount"`
	EcsSpec         string `json:"EcsSpec,omitempty"`
	UseSpotInstance bool   `json:"UseSpotInstance,omitempty"`
}

type DataSource struct {
	DataSourceID string `json:"DataSourceId,omitempty"`
	MountPath    string `json:"MountPath,omitempty"`
	URI          string `json:"Uri,omitempty"`
}

type CodeSource struct {
	CodeSourceID string `json:"CodeSourceId"`
	Branch       string `json:"Branch,omitempty"`
	Commit       string `json:"Commit,omitempty"`
	MountPath    string `json:"MountPath,omitempty"`
}

type JobSettings struct {
	BusinessUserID        string            `json:"BusinessUserId,omitempty"`
	Caller                string            `json:"Caller,omitempty"`
	EnableErrorMonitoring bool              `json:"EnableErrorMonitoringInAIMaster,omitempty"`
	EnableTideResource    bool              `json:"EnableTideResource,omitempty"`
	EnableRDMA            bool              `json:"EnableRDMA,omitempty"`
	OversoldType          string            `json:"OversoldType,omitempty"`
	Tags                  map[string]string `json:"Tags,omitempty"`
	PipelineID            string            `json:"PipelineId,omitempty"`
	ErrorMonitoringArgs   string            `json:"ErrorMonitoringArgs,omitempty"`
	DisableEcsStockCheck  bool              `json:"DisableEcsStockCheck,omitempty"`
	EnableOssAppend       bool              `json:"EnableOssAppend,omitempty"`
}

type Pod struct {
	PodID         string           `json:"PodId"`
	PodUID        string           `json:"PodUid,omitempty"`
	Type          string           `json:"Type,omitempty"`
	Status        string           `json:"Status,omitempty"`
	IP            string           `json:"Ip,omitempty"`
	GmtCreateTime *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtStartTime  *strfmt.DateTime `json:"GmtStartTime,omitempty"`
	GmtFinishTime *strfmt.DateTime `json:"GmtFinishTime,omitempty"`
}

// Job is the DLC job resource as returned by GetJob and ListJobs.
type Job struct {
	JobID          string            `json:"JobId"`
	DisplayName    string            `json:"DisplayName,omitempty"`
	JobType        string            `json:"JobType,omitempty"`
	WorkspaceID    string            `json:"WorkspaceId,omitempty"`
	ResourceID     string            `json:"ResourceId,omitempty"`
	Status         string            `json:"Status,omitempty"`
	SubStatus      string            `json:"SubStatus,omitempty"`
	ReasonCode     string            `json:"ReasonCode,omitempty"`
	ReasonMessage  string            `json:"ReasonMessage,omitempty"`
	UserCommand    string            `json:"UserCommand,omitempty"`
	UserID         string            `json:"UserId,omitempty"`
	JobSpecs       []JobSpec         `json:"JobSpecs,omitempty"`
	DataSources    []DataSource      `json:"DataSources,omitempty"`
	CodeSource     *CodeSource       `json:"CodeSource,omitempty"`
	Envs           map[string]string `json:"Envs,omitempty"`
	ThirdpartyLibs []string          `json:"ThirdpartyLibs,omitempty"`
	Settings       *JobSettings      `json:"Settings,omitempty"`
	Pods           []Pod             `json:"Pods,omitempty"`
	Duration       int64             `json:"Duration,omitempty"`
	GmtCreateTime  *strfmt.DateTime  `json:"GmtCreateTime,omitempty"`
	GmtRunningTime *strfmt.DateTime  `json:"GmtRunningTime,omitempty"`
	GmtFinishTime  *strfmt.DateTime  `json:"GmtFinishTime,omitempty"`
}

type GetJobResponse struct {
	common.Response
	Job
}

type CreateJobRequest struct {
	DisplayName    string            `json:"DisplayName"`
	JobType        string            `json:"JobType"`
	WorkspaceID    string            `json:"WorkspaceId,omitempty"`
	ResourceID     string            `json:"ResourceId,omitempty"`
	UserCommand    string            `json:"UserCommand"`
	JobSpecs       []JobSpec         `json:"JobSpecs"`
	DataSources    []DataSource      `json:"DataSources,omitempty"`
	CodeSource     *CodeSource       `json:"CodeSource,omitempty"`
	Envs           map[string]string `json:"Envs,omitempty"`
	ThirdpartyLibs []string          `json:"ThirdpartyLibs,omitempty"`
	Settings       *JobSettings      `json:"Settings,omitempty"`
	Priority       int               `json:"Priority,omitempty"`
}

type CreateJobResponse struct {
	common.Response
	JobID string `json:"JobId"`
}

type ListJobsRequest struct {
	common.Pagination
	WorkspaceID string
	DisplayName string
	Status      string
	JobType     string
	SortBy      string
	Order       string
}

func (r *ListJobsRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("DisplayName", r.DisplayName).
		Set("Status", r.Status).
		Set("JobType", r.JobType).
		Set("SortBy", r.SortBy).
		Set("Order", r.Order)
}

type ListJobsResponse struct {
	common.Response
	Jobs       []Job `json:"Jobs"`
	TotalCount int64 `json:"TotalCount"`
}

type GetPodLogsRequest struct {
	JobID    string
	PodID    string
	PodUID   string
	MaxLines int
}

func (r *GetPodLogsRequest) Query() common.Query {
	return common.Query{}.
		Set("PodUid", r.PodUID).
		SetInt("MaxLines", r.MaxLines)
}

type GetPodLogsResponse struct {
	common.Response
	JobID string   `json:"JobId"`
	PodID string   `json:"PodId"`
	Logs  []string `json:"Logs"`
}
