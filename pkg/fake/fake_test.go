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
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dsw"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/paiflow"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/studio"
	"github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
)

func TestStoreScriptedStatuses(t *testing.T) {
	var s Store[dlc.Job]
	s.Put("j1", dlc.Job{JobID: "j1", Status: dlc.StatusCreating})
	s.SetStatuses("j1", dlc.StatusQueuing, dlc.StatusRunning, dlc.StatusSucceeded)

	var seen []string
	for i := 0; i < 5; i++ {
		job, ok := s.advance("j1", setJobStatus)
		require.True(t, ok)
		seen = append(seen, job.Status)
	}
	assert.Equal(t, []string{
		dlc.StatusQueuing, dlc.StatusRunning, dlc.StatusSucceeded,
		dlc.StatusSucceeded, dlc.StatusSucceeded,
	}, seen)
}

func TestStoreOrderAndDelete(t *testing.T) {
	var s Store[string]
	s.Put("b", "B")
	s.Put("a", "A")
	s.Put("b", "B2")
	assert.Equal(t, []string{"B2", "A"}, s.List(nil))
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	assert.True(t, s.Delete("b"))
	assert.False(t, s.Delete("b"))
	assert.Equal(t, 1, s.Len())

	got, ok := s.Get("a")
	require.True(t, ok)
	*got = "mutated"
	again, _ := s.Get("a")
	assert.Equal(t, "A", *again)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	tests := []struct {
		name string
		page common.Pagination
		want []int
	}{
		{name: "defaults", page: common.Pagination{}, want: items},
		{name: "first page", page: common.Pagination{PageNumber: 1, PageSize: 2}, want: []int{1, 2}},
		{name: "last partial page", page: common.Pagination{PageNumber: 3, PageSize: 2}, want: []int{5}},
		{name: "past the end", page: common.Pagination{PageNumber: 4, PageSize: 2}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paginate(items, tt.page))
		})
	}
}

func TestDLCAPILifecycle(t *testing.T) {
	ctx := context.Background()
	api := NewDLCAPI()

	id, err := api.CreateJob(ctx, &dlc.CreateJobRequest{
		DisplayName: "train",
		JobType:     dlc.JobTypePyTorchJob,
		WorkspaceID: "ws-1",
		JobSpecs:    []dlc.JobSpec{{Type: dlc.RoleWorker, Image: "pytorch:2.1", PodCount: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "dlc-1", id)

	job, err := api.GetJob(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dlc.StatusCreating, job.Status)

	resp, err := api.ListJobs(ctx, &dlc.ListJobsRequest{WorkspaceID: "ws-1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, resp.TotalCount)

	resp, err = api.ListJobs(ctx, &dlc.ListJobsRequest{WorkspaceID: "other"})
	require.NoError(t, err)
	assert.Empty(t, resp.Jobs)

	require.NoError(t, api.StopJob(ctx, id))
	job, _ = api.GetJob(ctx, id)
	assert.Equal(t, dlc.StatusStopped, job.Status)

	require.NoError(t, api.DeleteJob(ctx, id))
	_, err = api.GetJob(ctx, id)
	assert.True(t, client.IsNotFound(err))
	assert.Equal(t, 3, api.GetJobBehavior.Calls())
}

func TestDLCAPIPodLogs(t *testing.T) {
	ctx := context.Background()
	api := NewDLCAPI()
	api.Jobs.Put("j1", dlc.Job{JobID: "j1"})
	api.PodLogs.Put("j1/p1", []string{"a", "b", "c"})

	logs, err := api.GetPodLogs(ctx, &dlc.GetPodLogsRequest{JobID: "j1", PodID: "p1", MaxLines: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, logs)

	_, err = api.GetPodLogs(ctx, &dlc.GetPodLogsRequest{JobID: "missing", PodID: "p1"})
	assert.True(t, client.IsNotFound(err))
}

func TestNextErrorIsConsumedOnce(t *testing.T) {
	ctx := context.Background()
	api := NewDSWAPI()
	api.Instances.Put("dsw-1", dsw.Instance{InstanceID: "dsw-1", Status: dsw.StatusRunning})
	api.NextError.Store(errors.New("boom"))

	_, err := api.GetInstance(ctx, "dsw-1")
	assert.EqualError(t, err, "boom")
	inst, err := api.GetInstance(ctx, "dsw-1")
	require.NoError(t, err)
	assert.Equal(t, dsw.StatusRunning, inst.Status)
}

func TestBehaviorOutputOverridesStore(t *testing.T) {
	ctx := context.Background()
	api := NewStudioAPI()
	api.GetTrainingJobBehavior.Output.Store(&studio.TrainingJob{TrainingJobID: "canned", Status: studio.StatusFailed})

	job, err := api.GetTrainingJob(ctx, "anything")
	require.NoError(t, err)
	assert.Equal(t, "canned", job.TrainingJobID)
	assert.Equal(t, []string{"anything"}, api.GetTrainingJobBehavior.CalledWithInput.Clone())
}

func TestPAIFlowAPIRunLifecycle(t *testing.T) {
	ctx := context.Background()
	api := NewPAIFlowAPI()

	_, err := api.CreatePipelineRun(ctx, &paiflow.CreatePipelineRunRequest{Name: "empty"})
	assert.Equal(t, client.ErrorTypeValidation, client.ParseError(err).Type)

	id, err := api.CreatePipelineRun(ctx, &paiflow.CreatePipelineRunRequest{Name: "run", PipelineManifest: "apiVersion: core/v1"})
	require.NoError(t, err)
	require.NoError(t, api.StartPipelineRun(ctx, id))

	run, err := api.GetPipelineRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, paiflow.StatusRunning, run.Status)
	assert.NotNil(t, run.StartedTime)

	api.NodeLogs.Put(id+"/"+run.NodeID, []string{"l1", "l2", "l3"})
	page, err := api.ListPipelineRunNodeLogs(ctx, &paiflow.ListNodeLogsRequest{
		Pagination:    common.Pagination{PageNumber: 2, PageSize: 2},
		PipelineRunID: id,
		NodeID:        run.NodeID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"l3"}, page.Logs)

	require.NoError(t, api.TerminatePipelineRun(ctx, id))
	run, _ = api.GetPipelineRun(ctx, id)
	assert.Equal(t, paiflow.StatusTerminated, run.Status)
}

func TestEASAPIServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	api := NewEASAPI()
	cfg := &eas.ServiceConfig{
		Name:     "demo",
		Metadata: eas.ServiceMetadata{Instance: 2, CPU: 4},
		Container: []eas.ServiceContainer{
			{Image: "registry.cn-hangzhou.aliyuncs.com/pai/demo:1.0", Port: 8000},
		},
	}

	created, err := api.CreateService(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, created.Region)

	_, err = api.CreateService(ctx, cfg)
	assert.Equal(t, client.ErrorTypeConflict, client.ParseError(err).Type)

	api.Services.SetStatuses(ServiceKey(DefaultRegion, "demo"), eas.StatusCreating, eas.StatusRunning)
	svc, err := api.DescribeService(ctx, DefaultRegion, "demo")
	require.NoError(t, err)
	assert.Equal(t, eas.StatusCreating, svc.Status)
	assert.Equal(t, "registry.cn-hangzhou.aliyuncs.com/pai/demo:1.0", svc.Image)
	svc, _ = api.DescribeService(ctx, DefaultRegion, "demo")
	assert.Equal(t, eas.StatusRunning, svc.Status)

	require.NoError(t, api.StopService(ctx, DefaultRegion, "demo"))
	assert.Equal(t, 1, api.StopServiceBehavior.Calls())
	require.NoError(t, api.DeleteService(ctx, DefaultRegion, "demo"))
	assert.True(t, client.IsNotFound(api.StartService(ctx, DefaultRegion, "demo")))
}

func TestWorkspaceAPIImagesAndModels(t *testing.T) {
	ctx := context.Background()
	api := NewWorkspaceAPI()
	api.Images.Put("img-1", workspace.Image{
		ImageID: "img-1", Name: "pytorch-2.1",
		Labels: common.LabelsFromMap(map[string]string{workspace.ImageLabelFramework: "PyTorch", workspace.ImageLabelChipType: "GPU"}),
	})
	api.Images.Put("img-2", workspace.Image{
		ImageID: "img-2", Name: "pytorch-2.1-cpu",
		Labels: common.LabelsFromMap(map[string]string{workspace.ImageLabelFramework: "PyTorch", workspace.ImageLabelChipType: "CPU"}),
	})

	images, err := api.ListImages(ctx, &workspace.ListImagesRequest{
		Labels: map[string]string{workspace.ImageLabelChipType: "GPU"},
	})
	require.NoError(t, err)
	require.Len(t, images.Images, 1)
	assert.Equal(t, "img-1", images.Images[0].ImageID)

	modelID, err := api.CreateModel(ctx, &workspace.CreateModelRequest{ModelName: "m", WorkspaceID: "ws-1"})
	require.NoError(t, err)
	version, err := api.CreateModelVersion(ctx, modelID, &workspace.CreateModelVersionRequest{URI: "oss://bucket/model/"})
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", version)

	model, err := api.GetModel(ctx, modelID)
	require.NoError(t, err)
	require.NotNil(t, model.LatestVersion)
	assert.Equal(t, version, model.LatestVersion.VersionName)

	require.NoError(t, api.DeleteModel(ctx, modelID))
	assert.Zero(t, api.ModelVersions.Len())

	_, err = api.GetDefaultWorkspace(ctx)
	assert.True(t, client.IsNotFound(err))
	api.Workspaces.Put("ws-1", workspace.Workspace{WorkspaceID: "ws-1", WorkspaceName: "default"})
	api.DefaultWorkspaceID.Store(lo.ToPtr("ws-1"))
	ws, err := api.GetDefaultWorkspace(ctx)
	require.NoError(t, err)
	assert.True(t, ws.IsDefault)
}
