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

package eas

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceConfigKeepsUnknownKeys(t *testing.T) {
	raw := `{
		"name": "demo",
		"processor": "pmml",
		"model_path": "oss://bucket/model.pmml",
		"metadata": {"instance": 2, "cpu": 4, "memory": 8000},
		"cloud": {"computing": {"instance_type": "ecs.c6.large"}},
		"rpc": {"keepalive": 5000}
	}`

	var cfg ServiceConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, int64(2), cfg.Metadata.Instance)
	assert.Contains(t, cfg.Extra, "cloud")
	assert.Contains(t, cfg.Extra, "rpc")
	assert.NotContains(t, cfg.Extra, "name")

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestServiceConfigModelledFieldsWin(t *testing.T) {
	cfg := ServiceConfig{
		Name:     "svc",
		Metadata: ServiceMetadata{Instance: 1},
		Extra:    map[string]interface{}{"name": "shadowed", "token": "x"},
	}
	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"svc","metadata":{"instance":1},"token":"x"}`, string(out))
}

func TestServiceRoundTrip(t *testing.T) {
	svc := Service{
		ServiceName:      "demo",
		ServiceID:        "eas-m-123",
		Region:           "cn-shanghai",
		Status:           StatusRunning,
		RunningInstance:  2,
		TotalInstance:    2,
		InternetEndpoint: "http://123.cn-shanghai.pai-eas.aliyuncs.com/api/predict/demo",
		ServiceConfig:    `{"name":"demo"}`,
	}
	data, err := json.Marshal(svc)
	require.NoError(t, err)

	var decoded Service
	require.NoError(t, json.Unmarshal(data, &decoded))
	if diff := cmp.Diff(svc, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
