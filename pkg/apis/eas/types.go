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

// Package eas contains wire types for the Elastic Algorithm Service.
package eas

import (
	"encoding/json"

	"github.com/go-openapi/strfmt"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
)

const APIVersion = "2021-07-01"

// Service statuses.
const (
	StatusCreating  = "Creating"
	StatusWaiting   = "Waiting"
	StatusUpdating  = "Updating"
	StatusRunning   = "Running"
	StatusStopping  = "Stopping"
	StatusStopped   = "Stopped"
	StatusFailed    = "Failed"
	StatusDeleting  = "Deleting"
	StatusHotUpdate = "HotUpdate"
	StatusCompleted = "Completed"
)

// Service is an EAS model service.
type Service struct {
	ServiceName      string           `json:"ServiceName"`
	ServiceID        string           `json:"ServiceId,omitempty"`
	Region           string           `json:"Region,omitempty"`
	Status           string           `json:"Status,omitempty"`
	Reason           string           `json:"Reason,omitempty"`
	Message          string           `json:"Message,omitempty"`
	Image            string           `json:"Image,omitempty"`
	CPU              int64            `json:"Cpu,omitempty"`
	Memory           int64            `json:"Memory,omitempty"`
	GPU              int64            `json:"Gpu,omitempty"`
	TotalInstance    int64            `json:"TotalInstance,omitempty"`
	RunningInstance  int64            `json:"RunningInstance,omitempty"`
	PendingInstance  int64            `json:"PendingInstance,omitempty"`
	InternetEndpoint string           `json:"InternetEndpoint,omitempty"`
	IntranetEndpoint string           `json:"IntranetEndpoint,omitempty"`
	AccessToken      string           `json:"AccessToken,omitempty"`
	ServiceConfig    string           `json:"ServiceConfig,omitempty"`
	WorkspaceID      string           `json:"WorkspaceId,omitempty"`
	ResourceType     string           `json:"ResourceType,omitempty"`
	CallerUID        string           `json:"CallerUid,omitempty"`
	CreateTime       *strfmt.DateTime `json:"CreateTime,omitempty"`
	UpdateTime       *strfmt.DateTime `json:"UpdateTime,omitempty"`
}

type DescribeServiceResponse struct {
	common.Response
	Service
}

// ServiceConfig is the deployment document accepted by CreateService and
// UpdateService. Keys the struct does not model are carried in Extra.
type ServiceConfig struct {
	Name      string                 `json:"name"`
	Processor string                 `json:"processor,omitempty"`
	ModelPath string                 `json:"model_path,omitempty"`
	Metadata  ServiceMetadata        `json:"metadata"`
	Storage   []ServiceStorage       `json:"storage,omitempty"`
	Container []ServiceContainer     `json:"containers,omitempty"`
	Extra     map[string]interface{} `json:"-"`
}

type ServiceMetadata struct {
	Instance     int64  `json:"instance"`
	CPU          int64  `json:"cpu,omitempty"`
	Memory       int64  `json:"memory,omitempty"`
	GPU          int64  `json:"gpu,omitempty"`
	Workspace    string `json:"workspace_id,omitempty"`
	ResourceType string `json:"resource,omitempty"`
}

type ServiceStorage struct {
	MountPath string           `json:"mount_path"`
	OSS       *ServiceOSSMount `json:"oss,omitempty"`
}

type ServiceOSSMount struct {
	Path     string `json:"path"`
	ReadOnly bool   `json:"readOnly,omitempty"`
}

type ServiceContainer struct {
	Image   string   `json:"image"`
	Command string   `json:"command,omitempty"`
	Port    int64    `json:"port,omitempty"`
	Env     []EnvVar `json:"env,omitempty"`
}

type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type serviceConfigAlias ServiceConfig

// MarshalJSON merges Extra into the modelled fields; modelled fields win.
func (c ServiceConfig) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(serviceConfigAlias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return known, nil
	}
	merged := map[string]interface{}{}
	for k, v := range c.Extra {
		merged[k] = v
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// UnmarshalJSON keeps unknown keys in Extra.
func (c *ServiceConfig) UnmarshalJSON(data []byte) error {
	var alias serviceConfigAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"name", "processor", "model_path", "metadata", "storage", "containers"} {
		delete(all, k)
	}
	if len(all) > 0 {
		alias.Extra = all
	}
	*c = ServiceConfig(alias)
	return nil
}

type CreateServiceResponse struct {
	common.Response
	ServiceName      string `json:"ServiceName"`
	ServiceID        string `json:"ServiceId"`
	Region           string `json:"Region"`
	Status           string `json:"Status"`
	InternetEndpoint string `json:"InternetEndpoint,omitempty"`
	IntranetEndpoint string `json:"IntranetEndpoint,omitempty"`
}

type ListServicesRequest struct {
	common.Pagination
	WorkspaceID  string
	Filter       string
	Sort         string
	Order        string
	ResourceName string
}

func (r *ListServicesRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("Filter", r.Filter).
		Set("Sort", r.Sort).
		Set("Order", r.Order).
		Set("ResourceName", r.ResourceName)
}

type ListServicesResponse struct {
	common.Response
	Services   []Service `json:"Services"`
	TotalCount int64     `json:"TotalCount"`
	PageNumber int64     `json:"PageNumber,omitempty"`
	PageSize   int64     `json:"PageSize,omitempty"`
}

// ActionResponse is returned by start, stop, update and delete.
type ActionResponse struct {
	common.Response
	Message string `json:"Message,omitempty"`
}
