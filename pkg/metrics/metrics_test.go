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

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	APIRequestsTotal.Reset()
	APIRequestDuration.Reset()

	RecordAPIRequest("pai-dlc", "GetJob", "200", 20*time.Millisecond)
	RecordAPIRequest("pai-dlc", "GetJob", "429", 5*time.Millisecond)
	RecordAPIRequest("pai-eas", "DescribeService", "200", time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("pai-dlc", "GetJob", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("pai-dlc", "GetJob", "429")))
	assert.Equal(t, 1.0, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("pai-eas", "DescribeService", "200")))

	expected := `
		# HELP pai_api_request_duration_seconds Duration of PAI API requests in seconds
		# TYPE pai_api_request_duration_seconds histogram
		pai_api_request_duration_seconds_count{action="DescribeService",service="pai-eas"} 1
		pai_api_request_duration_seconds_count{action="GetJob",service="pai-dlc"} 2
	`
	err := testutil.CollectAndCompare(APIRequestDuration, strings.NewReader(expected), "pai_api_request_duration_seconds_count")
	assert.NoError(t, err)
}

func TestRecordWait(t *testing.T) {
	WaitPollsTotal.Reset()
	WaitTerminalTotal.Reset()

	RecordWaitPoll("dlc-job")
	RecordWaitPoll("dlc-job")
	RecordWaitOutcome("dlc-job", "succeeded")

	assert.Equal(t, 2.0, testutil.ToFloat64(WaitPollsTotal.WithLabelValues("dlc-job")))
	assert.Equal(t, 1.0, testutil.ToFloat64(WaitTerminalTotal.WithLabelValues("dlc-job", "succeeded")))
}

func TestRegistryGathers(t *testing.T) {
	RecordWaitPoll("eas-service")

	families, err := Registry.Gather()
	assert.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "pai_wait_polls_total")
}

func TestMetricsNamespace(t *testing.T) {
	assert.Equal(t, "pai", Namespace)
	assert.Equal(t, "api", APISubsystem)
}
