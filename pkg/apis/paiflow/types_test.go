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

package paiflow

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
)

func TestPipelineRunRoundTrip(t *testing.T) {
	created := strfmt.DateTime(time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC))
	finished := strfmt.DateTime(time.Date(2024, 4, 2, 9, 45, 0, 0, time.UTC))
	run := PipelineRun{
		PipelineRunID: "flow-abc",
		Name:          "split",
		PipelineID:    "p-1",
		WorkspaceID:   "ws-1",
		NodeID:        "node-abc",
		Status:        StatusSucceeded,
		Arguments:     "parameters:\n- name: table\n  value: odps://proj/tables/t\n",
		Accessibility: "PRIVATE",
		Source:        "SDK",
		UserID:        "u-1",
		GmtCreateTime: &created,
		StartedTime:   &created,
		FinishedTime:  &finished,
	}

	data, err := json.Marshal(run)
	require.NoError(t, err)

	var decoded PipelineRun
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(run, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreatePipelineRunRequestOmitsUnset(t *testing.T) {
	data, err := json.Marshal(CreatePipelineRunRequest{PipelineID: "p-1", WorkspaceID: "ws-1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"PipelineId":"p-1","WorkspaceId":"ws-1"}`, string(data))
}

func TestListPipelineRunsResponseDecodesWireNames(t *testing.T) {
	body := `{
		"RequestId": "req-1",
		"PipelineRuns": [{"PipelineRunId": "flow-1", "NodeId": "node-1", "Status": "Running"}],
		"TotalCount": 1
	}`

	var resp ListPipelineRunsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.EqualValues(t, 1, resp.TotalCount)
	assert.Equal(t, []PipelineRun{{PipelineRunID: "flow-1", NodeID: "node-1", Status: StatusRunning}}, resp.PipelineRuns)
}

func TestListRequestQuery(t *testing.T) {
	tests := []struct {
		name string
		req  interface{ Query() common.Query }
		want map[string]string
	}{
		{
			name: "pipeline runs",
			req: &ListPipelineRunsRequest{
				Pagination:  common.Pagination{PageNumber: 1, PageSize: 50},
				WorkspaceID: "ws-1",
				Status:      StatusRunning,
				SortBy:      "GmtCreateTime",
				Order:       "DESC",
			},
			want: map[string]string{
				"PageNumber":  "1",
				"PageSize":    "50",
				"WorkspaceId": "ws-1",
				"Status":      "Running",
				"SortBy":      "GmtCreateTime",
				"Order":       "DESC",
			},
		},
		{
			name: "pipelines",
			req:  &ListPipelinesRequest{PipelineIdentifier: "split", PipelineProvider: "pai", PipelineVersion: "v1"},
			want: map[string]string{"PipelineIdentifier": "split", "PipelineProvider": "pai", "PipelineVersion": "v1"},
		},
		{
			name: "node logs first page",
			req:  &ListNodeLogsRequest{Pagination: common.Pagination{PageNumber: 1, PageSize: 100}, PipelineRunID: "flow-1", NodeID: "node-1"},
			want: map[string]string{"PageSize": "100"},
		},
		{
			name: "node logs third page",
			req: &ListNodeLogsRequest{
				Pagination:        common.Pagination{PageNumber: 3, PageSize: 100},
				FromTimeInSeconds: 1712048400,
			},
			want: map[string]string{"Offset": "200", "PageSize": "100", "FromTimeInSeconds": "1712048400"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, map[string]string(tt.req.Query())); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
