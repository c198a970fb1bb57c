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

package dsw

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

func TestInstanceRoundTrip(t *testing.T) {
	created := strfmt.DateTime(time.Date(2024, 3, 11, 7, 15, 0, 0, time.UTC))
	instance := Instance{
		InstanceID:               "dsw-abc",
		InstanceName:             "notebook",
		WorkspaceID:              "ws-1",
		Status:                   StatusRunning,
		EcsSpec:                  "ecs.g6.xlarge",
		ImageID:                  "img-1",
		ImageURL:                 "registry.cn-hangzhou.aliyuncs.com/pai/notebook:1.0",
		JupyterlabURL:            "https://dsw-abc.example.com/lab",
		AccumulatedRunningTimeMs: 3600000,
		Labels:                   []common.Label{{Key: "team", Value: "nlp"}},
		Environment:              map[string]string{"HF_HOME": "/mnt/cache"},
		GmtCreateTime:            &created,
	}

	data, err := json.Marshal(instance)
	require.NoError(t, err)

	var decoded Instance
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(instance, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestInstanceDecodesWireNames(t *testing.T) {
	body := `{
		"RequestId": "req-1",
		"InstanceId": "dsw-1",
		"Status": "Stopped",
		"AccumulatedRunningTimeInMs": 42,
		"EnvironmentVariables": {"A": "1"},
		"Success": true
	}`

	var resp GetInstanceResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "req-1", resp.RequestID)
	assert.Equal(t, "dsw-1", resp.InstanceID)
	assert.Equal(t, StatusStopped, resp.Status)
	assert.EqualValues(t, 42, resp.AccumulatedRunningTimeMs)
	assert.Equal(t, map[string]string{"A": "1"}, resp.Environment)
	assert.True(t, resp.Success)
}

func TestActionResponseReportsFailure(t *testing.T) {
	var resp ActionResponse
	require.NoError(t, json.Unmarshal([]byte(`{"InstanceId":"dsw-1","Success":false,"Code":"InstanceStatusNotAllowed","Message":"already stopped"}`), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "InstanceStatusNotAllowed", resp.Code)
}

func TestListInstancesRequestQuery(t *testing.T) {
	tests := []struct {
		name string
		req  ListInstancesRequest
		want map[string]string
	}{
		{
			name: "all fields",
			req: ListInstancesRequest{
				Pagination:   common.Pagination{PageNumber: 2, PageSize: 25},
				WorkspaceID:  "ws-1",
				InstanceName: "notebook",
				Status:       StatusRunning,
				SortBy:       "GmtCreateTime",
				Order:        "DESC",
			},
			want: map[string]string{
				"PageNumber":   "2",
				"PageSize":     "25",
				"WorkspaceId":  "ws-1",
				"InstanceName": "notebook",
				"Status":       "Running",
				"SortBy":       "GmtCreateTime",
				"Order":        "DESC",
			},
		},
		{
			name: "zero values skipped",
			req:  ListInstancesRequest{WorkspaceID: "ws-1"},
			want: map[string]string{"WorkspaceId": "ws-1"},
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
