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

// Package paiflow contains wire types for the PAIFlow pipeline service.
package paiflow

import (
	"github.com/go-openapi/strfmt"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
)

const APIVersion = "2021-02-02"

// Pipeline run statuses.
const (
	StatusInitialized = "Initialized"
	StatusReady       = "Ready"
	StatusRunning     = "Running"
	StatusSucceeded   = "Succeeded"
	StatusFailed      = "Failed"
	StatusTerminating = "Terminating"
	StatusTerminated  = "Terminated"
	StatusSkipped     = "Skipped"
	StatusUnknown     = "Unknown"
)

type Pipeline struct {
	PipelineID      string           `json:"PipelineId"`
	Identifier      string           `json:"Identifier,omitempty"`
	Provider        string           `json:"Provider,omitempty"`
	Version         string           `json:"Version,omitempty"`
	UUID            string           `json:"Uuid,omitempty"`
	WorkspaceID     string           `json:"WorkspaceId,omitempty"`
	Manifest        string           `json:"Manifest,omitempty"`
	GmtCreateTime   *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime *strfmt.DateTime `json:"GmtModifiedTime,omitempty"`
}

type GetPipelineResponse struct {
	common.Response
	Pipeline
}

type ListPipelinesRequest struct {
	common.Pagination
	WorkspaceID        string
	PipelineIdentifier string
	PipelineProvider   string
	PipelineVersion    string
}

func (r *ListPipelinesRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("PipelineIdentifier", r.PipelineIdentifier).
		Set("PipelineProvider", r.PipelineProvider).
		Set("PipelineVersion", r.PipelineVersion)
}

type ListPipelinesResponse struct {
	common.Response
	Pipelines  []Pipeline `json:"Pipelines"`
	TotalCount int64      `json:"TotalCount"`
}

// PipelineRun is one execution of a pipeline.
type PipelineRun struct {
	PipelineRunID   string           `json:"PipelineRunId"`
	Name            string           `json:"Name,omitempty"`
	PipelineID      string           `json:"PipelineId,omitempty"`
	WorkspaceID     string           `json:"WorkspaceId,omitempty"`
	NodeID          string           `json:"NodeId,omitempty"`
	Status          string           `json:"Status,omitempty"`
	Message         string           `json:"Message,omitempty"`
	Arguments       string           `json:"Arguments,omitempty"`
	Accessibility   string           `json:"Accessibility,omitempty"`
	Source          string           `json:"Source,omitempty"`
	UserID          string           `json:"UserId,omitempty"`
	GmtCreateTime   *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime *strfmt.DateTime `json:"GmtModifiedTime,omitempty"`
	StartedTime     *strfmt.DateTime `json:"StartedTime,omitempty"`
	FinishedTime    *strfmt.DateTime `json:"FinishedTime,omitempty"`
}

type GetPipelineRunResponse struct {
	common.Response
	PipelineRun
}

// CreatePipelineRunRequest names either PipelineID or an inline PipelineManifest.
type CreatePipelineRunRequest struct {
	Name              string `json:"Name,omitempty"`
	PipelineID        string `json:"PipelineId,omitempty"`
	PipelineManifest  string `json:"PipelineManifest,omitempty"`
	Arguments         string `json:"Arguments,omitempty"`
	WorkspaceID       string `json:"WorkspaceId,omitempty"`
	Accessibility     string `json:"Accessibility,omitempty"`
	NoConfirmRequired bool   `json:"NoConfirmRequired,omitempty"`
	Options           string `json:"Options,omitempty"`
	Source            string `json:"Source,omitempty"`
}

type CreatePipelineRunResponse struct {
	common.Response
	PipelineRunID string `json:"PipelineRunId"`
}

type ListPipelineRunsRequest struct {
	common.Pagination
	WorkspaceID   string
	PipelineRunID string
	Name          string
	Status        string
	Source        string
	SortBy        string
	Order         string
}

func (r *ListPipelineRunsRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("PipelineRunId", r.PipelineRunID).
		Set("Name", r.Name).
		Set("Status", r.Status).
		Set("Source", r.Source).
		Set("SortBy", r.SortBy).
		Set("Order", r.Order)
}

type ListPipelineRunsResponse struct {
	common.Response
	PipelineRuns []PipelineRun `json:"PipelineRuns"`
	TotalCount   int64         `json:"TotalCount"`
}

// ListNodeLogsRequest pages by offset; PageNumber is converted by the client.
type ListNodeLogsRequest struct {
	common.Pagination
	PipelineRunID     string
	NodeID            string
	FromTimeInSeconds int64
}

func (r *ListNodeLogsRequest) Offset() int {
	if r.PageNumber <= 1 {
		return 0
	}
	return (r.PageNumber - 1) * r.PageSize
}

func (r *ListNodeLogsRequest) Query() common.Query {
	return common.Query{}.
		SetInt("Offset", r.Offset()).
		SetInt("PageSize", r.PageSize).
		SetInt("FromTimeInSeconds", int(r.FromTimeInSeconds))
}

type ListNodeLogsResponse struct {
	common.Response
	Logs       []string `json:"Logs"`
	TotalCount int64    `json:"TotalCount"`
}
