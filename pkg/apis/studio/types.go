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

// Package studio contains wire types for PAI Studio training jobs and algorithms.
package studio

import (
	"github.com/go-openapi/strfmt"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
)

const APIVersion = "2022-01-12"

// Training job statuses.
const (
	StatusCreating     = "Creating"
	StatusSubmitted    = "Submitted"
	StatusInitializing = "Initializing"
	StatusPending      = "Pending"
	StatusRunning      = "Running"
	StatusStopping     = "Stopping"
	StatusSucceeded    = "Succeeded"
	StatusFailed       = "Failed"
	StatusStopped      = "Stopped"
)

type HyperParameter struct {
	Name  string `json:"Name"`
	Value string `json:"Value"`
}

type Channel struct {
	Name      string `json:"Name"`
	InputURI  string `json:"InputUri,omitempty"`
	OutputURI string `json:"OutputUri,omitempty"`
	DatasetID string `json:"DatasetId,omitempty"`
}

type ComputeResource struct {
	EcsCount      int64             `json:"EcsCount,omitempty"`
	EcsSpec       string            `json:"EcsSpec,omitempty"`
	InstanceCount int64             `json:"InstanceCount,omitempty"`
	InstanceSpec  map[string]string `json:"InstanceSpec,omitempty"`
	ResourceID    string            `json:"ResourceId,omitempty"`
}

type Scheduler struct {
	MaxRunningTimeInSeconds int64 `json:"MaxRunningTimeInSeconds,omitempty"`
}

type UserVpc struct {
	VpcID           string   `json:"VpcId,omitempty"`
	SwitchID        string   `json:"SwitchId,omitempty"`
	SecurityGroupID string   `json:"SecurityGroupId,omitempty"`
	ExtendedCIDRs   []string `json:"ExtendedCIDRs,omitempty"`
}

type StatusTransition struct {
	Status        string           `json:"Status"`
	ReasonCode    string           `json:"ReasonCode,omitempty"`
	ReasonMessage string           `json:"ReasonMessage,omitempty"`
	StartTime     *strfmt.DateTime `json:"StartTime,omitempty"`
	EndTime       *strfmt.DateTime `json:"EndTime,omitempty"`
}

type Metric struct {
	Name      string           `json:"Name"`
	Value     float64          `json:"Value"`
	Timestamp *strfmt.DateTime `json:"Timestamp,omitempty"`
}

// AlgorithmSpec describes how a custom training container is launched.
type AlgorithmSpec struct {
	Command                []string               `json:"Command"`
	Image                  string                 `json:"Image"`
	JobType                string                 `json:"JobType,omitempty"`
	CodeDir                *Location              `json:"CodeDir,omitempty"`
	SupportedInstanceTypes []string               `json:"SupportedInstanceTypes,omitempty"`
	SupportsDistributed    bool                   `json:"SupportsDistributedTraining,omitempty"`
	HyperParameters        []HyperParameterDef    `json:"HyperParameters,omitempty"`
	InputChannels          []ChannelDef           `json:"InputChannels,omitempty"`
	OutputChannels         []ChannelDef           `json:"OutputChannels,omitempty"`
	MetricDefinitions      []MetricDefinition     `json:"MetricDefinitions,omitempty"`
	ResourceRequirements   []ConditionExpression  `json:"ResourceRequirements,omitempty"`
	CustomizeConfig        map[string]interface{} `json:"Customization,omitempty"`
}

type Location struct {
	LocationType  string            `json:"LocationType"`
	LocationValue map[string]string `json:"LocationValue,omitempty"`
}

type HyperParameterDef struct {
	Name         string `json:"Name"`
	Type         string `json:"Type,omitempty"`
	DefaultValue string `json:"DefaultValue,omitempty"`
	Required     bool   `json:"Required,omitempty"`
	Description  string `json:"Description,omitempty"`
}

type ChannelDef struct {
	Name                  string   `json:"Name"`
	Required              bool     `json:"Required,omitempty"`
	Description           string   `json:"Description,omitempty"`
	SupportedChannelTypes []string `json:"SupportedChannelTypes,omitempty"`
}

type MetricDefinition struct {
	Name  string `json:"Name"`
	Regex string `json:"Regex"`
}

type ConditionExpression struct {
	Key      string   `json:"Key"`
	Operator string   `json:"Operator"`
	Values   []string `json:"Values"`
}

type TrainingJob struct {
	TrainingJobID          string             `json:"TrainingJobId"`
	TrainingJobName        string             `json:"TrainingJobName"`
	TrainingJobDescription string             `json:"TrainingJobDescription,omitempty"`
	WorkspaceID            string             `json:"WorkspaceId,omitempty"`
	AlgorithmID            string             `json:"AlgorithmId,omitempty"`
	AlgorithmName          string             `json:"AlgorithmName,omitempty"`
	AlgorithmProvider      string             `json:"AlgorithmProvider,omitempty"`
	AlgorithmVersion       string             `json:"AlgorithmVersion,omitempty"`
	AlgorithmSpec          *AlgorithmSpec     `json:"AlgorithmSpec,omitempty"`
	HyperParameters        []HyperParameter   `json:"HyperParameters,omitempty"`
	InputChannels          []Channel          `json:"InputChannels,omitempty"`
	OutputChannels         []Channel          `json:"OutputChannels,omitempty"`
	ComputeResource        *ComputeResource   `json:"ComputeResource,omitempty"`
	Scheduler              *Scheduler         `json:"Scheduler,omitempty"`
	UserVpc                *UserVpc           `json:"UserVpc,omitempty"`
	Environments           map[string]string  `json:"Environments,omitempty"`
	Labels                 []common.Label     `json:"Labels,omitempty"`
	RoleArn                string             `json:"RoleArn,omitempty"`
	Status                 string             `json:"Status,omitempty"`
	ReasonCode             string             `json:"ReasonCode,omitempty"`
	ReasonMessage          string             `json:"ReasonMessage,omitempty"`
	StatusTransitions      []StatusTransition `json:"StatusTransitions,omitempty"`
	LatestMetrics          []Metric           `json:"LatestMetrics,omitempty"`
	UserID                 string             `json:"UserId,omitempty"`
	GmtCreateTime          *strfmt.DateTime   `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime        *strfmt.DateTime   `json:"GmtModifiedTime,omitempty"`
}

type GetTrainingJobResponse struct {
	common.Response
	TrainingJob
}

type CreateTrainingJobRequest struct {
	TrainingJobName        string            `json:"TrainingJobName"`
	TrainingJobDescription string            `json:"TrainingJobDescription,omitempty"`
	WorkspaceID            string            `json:"WorkspaceId,omitempty"`
	AlgorithmName          string            `json:"AlgorithmName,omitempty"`
	AlgorithmProvider      string            `json:"AlgorithmProvider,omitempty"`
	AlgorithmVersion       string            `json:"AlgorithmVersion,omitempty"`
	AlgorithmSpec          *AlgorithmSpec    `json:"AlgorithmSpec,omitempty"`
	HyperParameters        []HyperParameter  `json:"HyperParameters,omitempty"`
	InputChannels          []Channel         `json:"InputChannels,omitempty"`
	OutputChannels         []Channel         `json:"OutputChannels,omitempty"`
	ComputeResource        *ComputeResource  `json:"ComputeResource,omitempty"`
	Scheduler              *Scheduler        `json:"Scheduler,omitempty"`
	UserVpc                *UserVpc          `json:"UserVpc,omitempty"`
	Environments           map[string]string `json:"Environments,omitempty"`
	Labels                 []common.Label    `json:"Labels,omitempty"`
	RoleArn                string            `json:"RoleArn,omitempty"`
}

type CreateTrainingJobResponse struct {
	common.Response
	TrainingJobID string `json:"TrainingJobId"`
}

type ListTrainingJobsRequest struct {
	common.Pagination
	WorkspaceID     string
	TrainingJobName string
	TrainingJobID   string
	AlgorithmName   string
	Status          string
	SortBy          string
	Order           string
}

func (r *ListTrainingJobsRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("TrainingJobName", r.TrainingJobName).
		Set("TrainingJobId", r.TrainingJobID).
		Set("AlgorithmName", r.AlgorithmName).
		Set("Status", r.Status).
		Set("SortBy", r.SortBy).
		Set("Order", r.Order)
}

type ListTrainingJobsResponse struct {
	common.Response
	TrainingJobs []TrainingJob `json:"TrainingJobs"`
	TotalCount   int64         `json:"TotalCount"`
}

type Algorithm struct {
	AlgorithmID          string           `json:"AlgorithmId"`
	AlgorithmName        string           `json:"AlgorithmName"`
	AlgorithmProvider    string           `json:"AlgorithmProvider,omitempty"`
	AlgorithmDescription string           `json:"AlgorithmDescription,omitempty"`
	DisplayName          string           `json:"DisplayName,omitempty"`
	WorkspaceID          string           `json:"WorkspaceId,omitempty"`
	UserID               string           `json:"UserId,omitempty"`
	GmtCreateTime        *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime      *strfmt.DateTime `json:"GmtModifiedTime,omitempty"`
}

type GetAlgorithmResponse struct {
	common.Response
	Algorithm
}

type ListAlgorithmsRequest struct {
	common.Pagination
	WorkspaceID       string
	AlgorithmName     string
	AlgorithmProvider string
	AlgorithmID       string
}

func (r *ListAlgorithmsRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("AlgorithmName", r.AlgorithmName).
		Set("AlgorithmProvider", r.AlgorithmProvider).
		Set("AlgorithmId", r.AlgorithmID)
}

type ListAlgorithmsResponse struct {
	common.Response
	Algorithms []Algorithm `json:"Algorithms"`
	TotalCount int64       `json:"TotalCount"`
}

type AlgorithmVersion struct {
	AlgorithmID       string           `json:"AlgorithmId"`
	AlgorithmName     string           `json:"AlgorithmName,omitempty"`
	AlgorithmProvider string           `json:"AlgorithmProvider,omitempty"`
	AlgorithmVersion  string           `json:"AlgorithmVersion"`
	AlgorithmSpec     *AlgorithmSpec   `json:"AlgorithmSpec,omitempty"`
	GmtCreateTime     *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime   *strfmt.DateTime `json:"GmtModifiedTime,omitempty"`
}

type GetAlgorithmVersionResponse struct {
	common.Response
	AlgorithmVersion
}

type ListAlgorithmVersionsRequest struct {
	common.Pagination
	AlgorithmID string
}

func (r *ListAlgorithmVersionsRequest) Query() common.Query {
	return common.NewQuery(r.Pagination)
}

type ListAlgorithmVersionsResponse struct {
	common.Response
	AlgorithmVersions []AlgorithmVersion `json:"AlgorithmVersions"`
	TotalCount        int64              `json:"TotalCount"`
}
