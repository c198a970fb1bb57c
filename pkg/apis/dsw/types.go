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

// Package dsw contains wire types for Data Science Workshop notebook instances.
package dsw

import (
	"github.com/go-openapi/strfmt"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
)

const APIVersion = "2022-01-01"

// Instance statuses.
const (
	StatusCreating           = "Creating"
	StatusResourceAllocating = "ResourceAllocating"
	StatusEnvPreparing       = "EnvPreparing"
	StatusStarting           = "Starting"
	StatusRunning            = "Running"
	StatusSaving             = "Saving"
	StatusStopping           = "Stopping"
	StatusStopped            = "Stopped"
	StatusRecovering         = "Recovering"
	StatusUpdating           = "Updating"
	StatusDeleting           = "Deleting"
	StatusFailed             = "Failed"
)

type Instance struct {
	InstanceID               string            `json:"InstanceId"`
	InstanceName             string            `json:"InstanceName"`
	WorkspaceID              string            `json:"WorkspaceId,omitempty"`
	Status                   string            `json:"Status,omitempty"`
	ReasonCode               string            `json:"ReasonCode,omitempty"`
	ReasonMessage            string            `json:"ReasonMessage,omitempty"`
	EcsSpec                  string            `json:"EcsSpec,omitempty"`
	ImageID                  string            `json:"ImageId,omitempty"`
	ImageName                string            `json:"ImageName,omitempty"`
	ImageURL                 string            `json:"ImageUrl,omitempty"`
	InstanceURL              string            `json:"InstanceUrl,omitempty"`
	JupyterlabURL            string            `json:"JupyterlabUrl,omitempty"`
	TerminalURL              string            `json:"TerminalUrl,omitempty"`
	Accessibility            string            `json:"Accessibility,omitempty"`
	AccumulatedRunningTimeMs int64             `json:"AccumulatedRunningTimeInMs,omitempty"`
	Labels                   []common.Label    `json:"Labels,omitempty"`
	UserID                   string            `json:"UserId,omitempty"`
	GmtCreateTime            *strfmt.DateTime  `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime          *strfmt.DateTime  `json:"GmtModifiedTime,omitempty"`
	Environment              map[string]string `json:"EnvironmentVariables,omitempty"`
}

type GetInstanceResponse struct {
	common.Response
	Instance
	Success bool   `json:"Success,omitempty"`
	Code    string `json:"Code,omitempty"`
	Message string `json:"Message,omitempty"`
}

type ListInstancesRequest struct {
	common.Pagination
	WorkspaceID  string
	InstanceName string
	Status       string
	SortBy       string
	Order        string
}

func (r *ListInstancesRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("InstanceName", r.InstanceName).
		Set("Status", r.Status).
		Set("SortBy", r.SortBy).
		Set("Order", r.Order)
}

type ListInstancesResponse struct {
	common.Response
	Instances  []Instance `json:"Instances"`
	TotalCount int64      `json:"TotalCount"`
}

// ActionResponse is returned by start, stop and delete.
type ActionResponse struct {
	common.Response
	InstanceID string `json:"InstanceId"`
	Success    bool   `json:"Success"`
	Code       string `json:"Code,omitempty"`
	Message    string `json:"Message,omitempty"`
}
