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

// Package workspace contains wire types for the AIWorkspace service: workspaces,
// datasets, models, code sources and images.
package workspace

import (
	"github.com/go-openapi/strfmt"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
)

const APIVersion = "2021-02-04"

type Workspace struct {
	WorkspaceID     string           `json:"WorkspaceId"`
	WorkspaceName   string           `json:"WorkspaceName"`
	DisplayName     string           `json:"DisplayName,omitempty"`
	Description     string           `json:"Description,omitempty"`
	Status          string           `json:"Status,omitempty"`
	Creator         string           `json:"Creator,omitempty"`
	IsDefault       bool             `json:"IsDefault,omitempty"`
	EnvTypes        []string         `json:"EnvTypes,omitempty"`
	GmtCreateTime   *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime *strfmt.DateTime `json:"GmtModifiedTime,omitempty"`
}

type GetWorkspaceResponse struct {
	common.Response
	Workspace
}

type ListWorkspacesRequest struct {
	common.Pagination
	WorkspaceName string
	Status        string
	Verbose       *bool
}

func (r *ListWorkspacesRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceName", r.WorkspaceName).
		Set("Status", r.Status).
		SetBool("Verbose", r.Verbose)
}

type ListWorkspacesResponse struct {
	common.Response
	Workspaces []Workspace `json:"Workspaces"`
	TotalCount int64       `json:"TotalCount"`
}

// Dataset source and property values.
const (
	DataSourceTypeOSS = "OSS"
	DataSourceTypeNAS = "NAS"

	PropertyFile      = "FILE"
	PropertyDirectory = "DIRECTORY"
)

type Dataset struct {
	DatasetID       string            `json:"DatasetId"`
	Name            string            `json:"Name"`
	WorkspaceID     string            `json:"WorkspaceId,omitempty"`
	Description     string            `json:"Description,omitempty"`
	DataSourceType  string            `json:"DataSourceType,omitempty"`
	DataType        string            `json:"DataType,omitempty"`
	Property        string            `json:"Property,omitempty"`
	URI             string            `json:"Uri,omitempty"`
	Accessibility   string            `json:"Accessibility,omitempty"`
	Options         string            `json:"Options,omitempty"`
	Labels          []common.Label    `json:"Labels,omitempty"`
	Tags            map[string]string `json:"Tags,omitempty"`
	OwnerID         string            `json:"OwnerId,omitempty"`
	GmtCreateTime   *strfmt.DateTime  `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime *strfmt.DateTime  `json:"GmtModifiedTime,omitempty"`
}

type GetDatasetResponse struct {
	common.Response
	Dataset
}

type CreateDatasetRequest struct {
	Name           string         `json:"Name"`
	WorkspaceID    string         `json:"WorkspaceId,omitempty"`
	Description    string         `json:"Description,omitempty"`
	DataSourceType string         `json:"DataSourceType"`
	DataType       string         `json:"DataType,omitempty"`
	Property       string         `json:"Property"`
	URI            string         `json:"Uri"`
	Accessibility  string         `json:"Accessibility,omitempty"`
	Options        string         `json:"Options,omitempty"`
	Labels         []common.Label `json:"Labels,omitempty"`
}

type CreateDatasetResponse struct {
	common.Response
	DatasetID string `json:"DatasetId"`
}

type ListDatasetsRequest struct {
	common.Pagination
	WorkspaceID    string
	Name           string
	DataSourceType string
	Properties     []string
}

func (r *ListDatasetsRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("Name", r.Name).
		Set("DataSourceTypes", r.DataSourceType).
		SetList("Properties", r.Properties)
}

type ListDatasetsResponse struct {
	common.Response
	Datasets   []Dataset `json:"Datasets"`
	TotalCount int64     `json:"TotalCount"`
}

type ModelVersion struct {
	VersionName        string                 `json:"VersionName"`
	VersionDescription string                 `json:"VersionDescription,omitempty"`
	URI                string                 `json:"Uri,omitempty"`
	SourceType         string                 `json:"SourceType,omitempty"`
	SourceID           string                 `json:"SourceId,omitempty"`
	FormatType         string                 `json:"FormatType,omitempty"`
	FrameworkType      string                 `json:"FrameworkType,omitempty"`
	ApprovalStatus     string                 `json:"ApprovalStatus,omitempty"`
	InferenceSpec      map[string]interface{} `json:"InferenceSpec,omitempty"`
	TrainingSpec       map[string]interface{} `json:"TrainingSpec,omitempty"`
	Labels             []common.Label         `json:"Labels,omitempty"`
	GmtCreateTime      *strfmt.DateTime       `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime    *strfmt.DateTime       `json:"GmtModifiedTime,omitempty"`
}

type Model struct {
	ModelID          string           `json:"ModelId"`
	ModelName        string           `json:"ModelName"`
	ModelDescription string           `json:"ModelDescription,omitempty"`
	ModelDoc         string           `json:"ModelDoc,omitempty"`
	WorkspaceID      string           `json:"WorkspaceId,omitempty"`
	Accessibility    string           `json:"Accessibility,omitempty"`
	Domain           string           `json:"Domain,omitempty"`
	Origin           string           `json:"Origin,omitempty"`
	Task             string           `json:"Task,omitempty"`
	Provider         string           `json:"Provider,omitempty"`
	Labels           []common.Label   `json:"Labels,omitempty"`
	LatestVersion    *ModelVersion    `json:"LatestVersion,omitempty"`
	OwnerID          string           `json:"OwnerId,omitempty"`
	GmtCreateTime    *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime  *strfmt.DateTime `json:"GmtModifiedTime,omitempty"`
}

type GetModelResponse struct {
	common.Response
	Model
}

type CreateModelRequest struct {
	ModelName        string         `json:"ModelName"`
	WorkspaceID      string         `json:"WorkspaceId,omitempty"`
	ModelDescription string         `json:"ModelDescription,omitempty"`
	ModelDoc         string         `json:"ModelDoc,omitempty"`
	Accessibility    string         `json:"Accessibility,omitempty"`
	Domain           string         `json:"Domain,omitempty"`
	Origin           string         `json:"Origin,omitempty"`
	Task             string         `json:"Task,omitempty"`
	Labels           []common.Label `json:"Labels,omitempty"`
}

type CreateModelResponse struct {
	common.Response
	ModelID string `json:"ModelId"`
}

type ListModelsRequest struct {
	common.Pagination
	WorkspaceID string
	ModelName   string
	Provider    string
	Domain      string
	Task        string
	Label       string
}

func (r *ListModelsRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("ModelName", r.ModelName).
		Set("Provider", r.Provider).
		Set("Domain", r.Domain).
		Set("Task", r.Task).
		Set("Label", r.Label)
}

type ListModelsResponse struct {
	common.Response
	Models     []Model `json:"Models"`
	TotalCount int64   `json:"TotalCount"`
}

type CreateModelVersionRequest struct {
	VersionName        string                 `json:"VersionName,omitempty"`
	VersionDescription string                 `json:"VersionDescription,omitempty"`
	URI                string                 `json:"Uri"`
	SourceType         string                 `json:"SourceType,omitempty"`
	SourceID           string                 `json:"SourceId,omitempty"`
	FormatType         string                 `json:"FormatType,omitempty"`
	FrameworkType      string                 `json:"FrameworkType,omitempty"`
	InferenceSpec      map[string]interface{} `json:"InferenceSpec,omitempty"`
	Labels             []common.Label         `json:"Labels,omitempty"`
}

type CreateModelVersionResponse struct {
	common.Response
	VersionName string `json:"VersionName"`
}

type ListModelVersionsRequest struct {
	common.Pagination
	ModelID     string
	VersionName string
	SortBy      string
	Order       string
}

func (r *ListModelVersionsRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("VersionName", r.VersionName).
		Set("SortBy", r.SortBy).
		Set("Order", r.Order)
}

type ListModelVersionsResponse struct {
	common.Response
	Versions   []ModelVersion `json:"Versions"`
	TotalCount int64          `json:"TotalCount"`
}

type CodeSource struct {
	CodeSourceID     string           `json:"CodeSourceId"`
	DisplayName      string           `json:"DisplayName"`
	Description      string           `json:"Description,omitempty"`
	WorkspaceID      string           `json:"WorkspaceId,omitempty"`
	CodeRepo         string           `json:"CodeRepo,omitempty"`
	CodeBranch       string           `json:"CodeBranch,omitempty"`
	CodeCommit       string           `json:"CodeCommit,omitempty"`
	CodeRepoUserName string           `json:"CodeRepoUserName,omitempty"`
	MountPath        string           `json:"MountPath,omitempty"`
	Accessibility    string           `json:"Accessibility,omitempty"`
	UserID           string           `json:"UserId,omitempty"`
	GmtCreateTime    *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtModifyTime    *strfmt.DateTime `json:"GmtModifyTime,omitempty"`
}

type GetCodeSourceResponse struct {
	common.Response
	CodeSource
}

type CreateCodeSourceRequest struct {
	DisplayName         string `json:"DisplayName"`
	Description         string `json:"Description,omitempty"`
	WorkspaceID         string `json:"WorkspaceId,omitempty"`
	CodeRepo            string `json:"CodeRepo,omitempty"`
	CodeBranch          string `json:"CodeBranch,omitempty"`
	CodeCommit          string `json:"CodeCommit,omitempty"`
	CodeRepoUserName    string `json:"CodeRepoUserName,omitempty"`
	CodeRepoAccessToken string `json:"CodeRepoAccessToken,omitempty"`
	MountPath           string `json:"MountPath,omitempty"`
	Accessibility       string `json:"Accessibility,omitempty"`
}

type CreateCodeSourceResponse struct {
	common.Response
	CodeSourceID string `json:"CodeSourceId"`
}

type ListCodeSourcesRequest struct {
	common.Pagination
	WorkspaceID string
	DisplayName string
	SortBy      string
	Order       string
}

func (r *ListCodeSourcesRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("DisplayName", r.DisplayName).
		Set("SortBy", r.SortBy).
		Set("Order", r.Order)
}

type ListCodeSourcesResponse struct {
	common.Response
	CodeSources []CodeSource `json:"CodeSources"`
	TotalCount  int64        `json:"TotalCount"`
}

// Image label keys used to describe official PAI images.
const (
	ImageLabelOfficial       = "system.official"
	ImageLabelFramework      = "system.framework"
	ImageLabelChipType       = "system.chipType"
	ImageLabelSupportedTasks = "system.supported.dlc"
	ImageLabelPythonVersion  = "system.pythonVersion"
)

type Image struct {
	ImageID         string           `json:"ImageId"`
	Name            string           `json:"Name"`
	Description     string           `json:"Description,omitempty"`
	ImageURI        string           `json:"ImageUri"`
	WorkspaceID     string           `json:"WorkspaceId,omitempty"`
	Accessibility   string           `json:"Accessibility,omitempty"`
	Labels          []common.Label   `json:"Labels,omitempty"`
	GmtCreateTime   *strfmt.DateTime `json:"GmtCreateTime,omitempty"`
	GmtModifiedTime *strfmt.DateTime `json:"GmtModifiedTime,omitempty"`
}

// Label returns the value of key, or "" if absent.
func (i *Image) Label(key string) string {
	for _, l := range i.Labels {
		if l.Key == key {
			return l.Value
		}
	}
	return ""
}

type ListImagesRequest struct {
	common.Pagination
	WorkspaceID string
	Name        string
	Labels      map[string]string
	Verbose     *bool
}

func (r *ListImagesRequest) Query() common.Query {
	return common.NewQuery(r.Pagination).
		Set("WorkspaceId", r.WorkspaceID).
		Set("Name", r.Name).
		SetLabels("Labels", r.Labels).
		SetBool("Verbose", r.Verbose)
}

type ListImagesResponse struct {
	common.Response
	Images     []Image `json:"Images"`
	TotalCount int64   `json:"TotalCount"`
}

type GetDefaultWorkspaceResponse struct {
	common.Response
	Workspace
}
