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

package pipelinerun_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"go.uber.org/multierr"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/paiflow"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/fake"
	"github.com/pfeifferj/pai-go-sdk/pkg/pager"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/pipelinerun"
	"github.com/pfeifferj/pai-go-sdk/pkg/waiter"
)

func TestPipelineRunProvider(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Pipeline Run Provider")
}

const manifestYAML = `
apiVersion: core/v1
metadata:
  identifier: split
  provider: pai
  version: v1
spec:
  inputs:
    parameters:
      - name: ratio
        type: Double
        value: 0.8
      - name: table
        type: String
`

var _ = Describe("Pipeline Run Provider", func() {
	var (
		ctx      context.Context
		api      *fake.PAIFlowAPI
		provider *pipelinerun.Provider
		manifest *pipelinerun.Manifest
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		api = fake.NewPAIFlowAPI()
		provider, err = pipelinerun.NewProvider(api,
			lifecycle.WithWorkspaceID("ws-1"),
			lifecycle.WithPollInterval(time.Millisecond),
		)
		Expect(err).ToNot(HaveOccurred())
		manifest, err = pipelinerun.ParseManifest([]byte(manifestYAML))
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Constructor", func() {
		It("should reject a nil client", func() {
			p, err := pipelinerun.NewProvider(nil)
			Expect(err).To(HaveOccurred())
			Expect(p).To(BeNil())
		})
	})

	Describe("Submit", func() {
		It("should create and start a run from a manifest", func() {
			run, err := provider.Submit(ctx, pipelinerun.SubmitOptions{
				Manifest:  manifest,
				Arguments: map[string]interface{}{"table": "odps://proj/tables/t"},
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(run.Status).To(Equal(paiflow.StatusRunning))
			Expect(run.Name).To(Equal("split"))
			Expect(run.WorkspaceID).To(Equal("ws-1"))

			req, ok := api.CreatePipelineRunBehavior.CalledWithInput.Last()
			Expect(ok).To(BeTrue())
			Expect(req.PipelineManifest).To(ContainSubstring("identifier: split"))
			Expect(req.Arguments).To(ContainSubstring("name: table"))
			Expect(api.StartPipelineRunBehavior.Calls()).To(Equal(1))
		})

		It("should reject a parameter without a value", func() {
			_, err := provider.Submit(ctx, pipelinerun.SubmitOptions{Manifest: manifest})
			Expect(err).To(MatchError(pipelinerun.ErrInvalidManifest))
			Expect(api.CreatePipelineRunBehavior.Calls()).To(BeZero())
		})

		It("should reject both a pipeline id and a manifest", func() {
			_, err := provider.Submit(ctx, pipelinerun.SubmitOptions{PipelineID: "p-1", Manifest: manifest})
			Expect(errors.Is(err, client.ErrConflictingOptions)).To(BeTrue())
		})

		It("should reject neither a pipeline id nor a manifest", func() {
			_, err := provider.Submit(ctx, pipelinerun.SubmitOptions{})
			Expect(errors.Is(err, client.ErrMissingArgument)).To(BeTrue())
		})

		It("should require a workspace", func() {
			p, err := pipelinerun.NewProvider(api)
			Expect(err).ToNot(HaveOccurred())
			api.Pipelines.Put("p-1", paiflow.Pipeline{PipelineID: "p-1"})
			_, err = p.Submit(ctx, pipelinerun.SubmitOptions{PipelineID: "p-1"})
			Expect(errors.Is(err, client.ErrMissingWorkspace)).To(BeTrue())
		})

		It("should wrap create failures", func() {
			api.CreatePipelineRunBehavior.Error.Store(errors.New("quota exceeded"))
			api.Pipelines.Put("p-1", paiflow.Pipeline{PipelineID: "p-1"})
			_, err := provider.Submit(ctx, pipelinerun.SubmitOptions{PipelineID: "p-1"})
			Expect(err).To(MatchError(ContainSubstring("creating pipeline run: quota exceeded")))
		})

		It("should delete a run that fails to start", func() {
			api.StartPipelineRunBehavior.Error.Store(errors.New("insufficient quota"))
			api.Pipelines.Put("p-1", paiflow.Pipeline{PipelineID: "p-1"})
			_, err := provider.Submit(ctx, pipelinerun.SubmitOptions{PipelineID: "p-1"})
			Expect(err).To(MatchError(ContainSubstring("insufficient quota")))
			Expect(api.DeletePipelineRunBehavior.Calls()).To(Equal(1))
			Expect(api.Runs.Len()).To(BeZero())
		})

		It("should report both errors when cleanup fails", func() {
			api.StartPipelineRunBehavior.Error.Store(errors.New("insufficient quota"))
			api.DeletePipelineRunBehavior.Error.Store(errors.New("throttled"))
			api.Pipelines.Put("p-1", paiflow.Pipeline{PipelineID: "p-1"})
			_, err := provider.Submit(ctx, pipelinerun.SubmitOptions{PipelineID: "p-1"})
			Expect(err).To(MatchError(ContainSubstring("insufficient quota")))
			Expect(err).To(MatchError(ContainSubstring("throttled")))
			Expect(multierr.Errors(err)).To(HaveLen(2))
			Expect(api.Runs.Len()).To(Equal(1))
		})
	})

	Describe("Wait", func() {
		var run *paiflow.PipelineRun

		BeforeEach(func() {
			api.Pipelines.Put("p-1", paiflow.Pipeline{PipelineID: "p-1"})
			var err error
			run, err = provider.Submit(ctx, pipelinerun.SubmitOptions{PipelineID: "p-1"})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should return once the run succeeds", func() {
			api.Runs.SetStatuses(run.PipelineRunID, paiflow.StatusRunning, paiflow.StatusRunning, paiflow.StatusSucceeded)
			Expect(provider.Wait(ctx, run)).To(Succeed())
			Expect(run.Status).To(Equal(paiflow.StatusSucceeded))
		})

		It("should report a terminated run as a terminal failure", func() {
			api.Runs.SetStatuses(run.PipelineRunID, paiflow.StatusRunning, paiflow.StatusTerminated)
			err := provider.Wait(ctx, run)
			var terminal *waiter.TerminalError
			Expect(errors.As(err, &terminal)).To(BeTrue())
			Expect(terminal.Status).To(Equal(paiflow.StatusTerminated))
			Expect(terminal.Kind).To(Equal(pipelinerun.Kind))
		})

		It("should stop when the context is cancelled", func() {
			api.Runs.SetStatuses(run.PipelineRunID, paiflow.StatusRunning)
			ctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			Expect(provider.Wait(ctx, run)).To(MatchError(context.DeadlineExceeded))
		})

		It("should refuse a run that was never submitted", func() {
			Expect(provider.Wait(ctx, &paiflow.PipelineRun{})).To(MatchError(client.ErrNotSubmitted))
		})
	})

	Describe("List", func() {
		It("should walk every page of runs in the workspace", func() {
			for i := 0; i < 5; i++ {
				api.Runs.Put(api.Runs.NextID("r"), paiflow.PipelineRun{WorkspaceID: "ws-1", Status: paiflow.StatusSucceeded})
			}
			api.Runs.Put("other", paiflow.PipelineRun{WorkspaceID: "ws-2"})

			var count int
			for _, err := range provider.List(ctx, paiflow.ListPipelineRunsRequest{}, pager.WithPageSize(2)) {
				Expect(err).ToNot(HaveOccurred())
				count++
			}
			Expect(count).To(Equal(5))
			Expect(api.ListPipelineRunsBehavior.Calls()).To(Equal(3))
		})
	})

	Describe("NodeLogs", func() {
		It("should page through logs by offset", func() {
			api.Runs.Put("r-1", paiflow.PipelineRun{PipelineRunID: "r-1"})
			api.NodeLogs.Put("r-1/n-1", []string{"a", "b", "c", "d"})

			var lines []string
			for line, err := range provider.NodeLogs(ctx, "r-1", "n-1", pager.WithPageSize(2)) {
				Expect(err).ToNot(HaveOccurred())
				lines = append(lines, line)
			}
			Expect(lines).To(Equal([]string{"a", "b", "c", "d"}))
		})
	})

	Describe("DeleteAll", func() {
		It("should ignore missing runs and report other failures", func() {
			api.Runs.Put("r-1", paiflow.PipelineRun{PipelineRunID: "r-1"})
			Expect(provider.DeleteAll(ctx, "r-1", "missing")).To(Succeed())
			Expect(api.Runs.Len()).To(BeZero())

			api.Runs.Put("r-2", paiflow.PipelineRun{PipelineRunID: "r-2"})
			api.DeletePipelineRunBehavior.Error.Store(errors.New("boom"))
			Expect(provider.DeleteAll(ctx, "r-2")).To(MatchError(ContainSubstring("deleting r-2")))
		})
	})

	Describe("FindPipeline", func() {
		It("should match identifier, provider and version", func() {
			api.Pipelines.Put("p-1", paiflow.Pipeline{PipelineID: "p-1", Identifier: "split", Provider: "pai", Version: "v1", WorkspaceID: "ws-1"})
			api.Pipelines.Put("p-2", paiflow.Pipeline{PipelineID: "p-2", Identifier: "split", Provider: "pai", Version: "v2", WorkspaceID: "ws-1"})

			p, err := provider.FindPipeline(ctx, "split", "pai", "v2")
			Expect(err).ToNot(HaveOccurred())
			Expect(p.PipelineID).To(Equal("p-2"))

			_, err = provider.FindPipeline(ctx, "split", "pai", "v3")
			Expect(err).To(MatchError(pipelinerun.ErrPipelineNotFound))
		})
	})
})
