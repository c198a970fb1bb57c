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

package waiter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	status Status
	err    error
}

// trace replays a scripted sequence of refresh results and counts calls.
type trace struct {
	steps []step
	calls int
}

func (tr *trace) refresh(_ context.Context) (Status, error) {
	s := tr.steps[min(tr.calls, len(tr.steps)-1)]
	tr.calls++
	return s.status, s.err
}

func statuses(values ...string) []step {
	steps := make([]step, 0, len(values))
	for _, v := range values {
		steps = append(steps, step{status: Status{Value: v}})
	}
	return steps
}

func jobOptions() Options {
	return Options{
		Kind:      "dlc-job",
		ID:        "dlc-123",
		Interval:  time.Millisecond,
		Succeeded: StatusSet("Succeeded"),
		Failed:    StatusSet("Failed", "Stopped"),
	}
}

func TestWait_Succeeds(t *testing.T) {
	tests := []struct {
		name  string
		trace []step
	}{
		{name: "already succeeded", trace: statuses("Succeeded")},
		{name: "after running", trace: statuses("Creating", "Queuing", "Running", "Succeeded")},
		{name: "unknown statuses are not terminal", trace: statuses("Restarting", "SomethingNew", "Succeeded")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{steps: tt.trace}

			status, err := Wait(context.Background(), jobOptions(), tr.refresh)
			require.NoError(t, err)
			assert.Equal(t, "Succeeded", status.Value)
			assert.Equal(t, len(tt.trace), tr.calls)
		})
	}
}

func TestWait_FailsAtFirstFailedStatus(t *testing.T) {
	for k := 1; k <= 4; k++ {
		steps := statuses("Creating", "Running", "Running", "Running")[:k-1]
		steps = append(steps, step{status: Status{Value: "Failed", ReasonCode: "JobFailed", ReasonMessage: "exit code 1"}})
		// anything after the failure must never be observed
		steps = append(steps, statuses("Succeeded")...)
		tr := &trace{steps: steps}

		_, err := Wait(context.Background(), jobOptions(), tr.refresh)
		require.Error(t, err)
		assert.Equal(t, k, tr.calls)

		var te *TerminalError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, "dlc-job", te.Kind)
		assert.Equal(t, "dlc-123", te.ID)
		assert.Equal(t, "Failed", te.Status)
		assert.Equal(t, "JobFailed", te.ReasonCode)
		assert.Equal(t, "exit code 1", te.ReasonMessage)
		assert.True(t, IsTerminalFailure(err))
		assert.Contains(t, err.Error(), "exit code 1")
	}
}

func TestWait_StoppedIsFailure(t *testing.T) {
	tr := &trace{steps: statuses("Running", "Stopped")}

	status, err := Wait(context.Background(), jobOptions(), tr.refresh)
	assert.True(t, IsTerminalFailure(err))
	assert.Equal(t, "Stopped", status.Value)
}

func TestWait_RefreshErrorPropagates(t *testing.T) {
	boom := errors.New("network down")
	tr := &trace{steps: []step{{status: Status{Value: "Running"}}, {err: boom}}}

	_, err := Wait(context.Background(), jobOptions(), tr.refresh)
	assert.ErrorIs(t, err, boom)
	assert.False(t, IsTerminalFailure(err))
	assert.Equal(t, 2, tr.calls)
}

func TestWait_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	tr := &trace{steps: statuses("Running")}

	status, err := Wait(ctx, jobOptions(), tr.refresh)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "Running", status.Value)
	assert.GreaterOrEqual(t, tr.calls, 1)
}

func TestWait_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "empty succeeded", opts: Options{Failed: StatusSet("Failed")}},
		{name: "empty failed", opts: Options{Succeeded: StatusSet("Succeeded")}},
		{name: "overlap", opts: Options{Succeeded: StatusSet("Done"), Failed: StatusSet("Done", "Failed")}},
		{name: "negative interval", opts: Options{Interval: -time.Second, Succeeded: StatusSet("A"), Failed: StatusSet("B")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{steps: statuses("Succeeded")}
			_, err := Wait(context.Background(), tt.opts, tr.refresh)
			assert.ErrorIs(t, err, ErrInvalidOptions)
			assert.Zero(t, tr.calls)
		})
	}
}

func TestTerminalErrorMessage(t *testing.T) {
	err := &TerminalError{Kind: "eas-service", ID: "svc", Status: "Failed"}
	assert.Equal(t, "eas-service svc ended with status Failed", err.Error())
}
