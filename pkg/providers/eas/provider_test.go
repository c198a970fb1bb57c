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

package eas_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	apieas "github.com/pfeifferj/pai-go-sdk/pkg/apis/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/fake"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/eas"
	"github.com/pfeifferj/pai-go-sdk/pkg/waiter"
)

func TestEASProvider(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "EAS Service Provider")
}

const serviceJSON = `{
  "name": "bert_qa",
  "containers": [{"image": "registry.cn-hangzhou.aliyuncs.com/pai/bert:1.0", "port": 8000}],
  "metadata": {"instance": 2, "cpu": 4, "memory": 8000},
  "cloud": {"computing": {"instance_type": "ecs.gn6i-c4g1.xlarge"}}
}`

var _ = Describe("EAS Service Provider", func() {
	var (
		ctx      context.Context
		api      *fake.EASAPI
		provider *eas.Provider
	)

	newConfig := func(name string) *apieas.ServiceConfig {
		return &apieas.ServiceConfig{
			Name:      name,
			Container: []apieas.ServiceContainer{{Image: "python:3.10", Port: 8000}},
			Metadata:  apieas.ServiceMetadata{Instance: 1},
		}
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		api = fake.NewEASAPI()
		provider, err = eas.NewProvider(api, fake.DefaultRegion,
			lifecycle.WithWorkspaceID("ws-1"),
			lifecycle.WithPollInterval(time.Millisecond),
		)
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Constructor", func() {
		It("should reject a nil client or empty region", func() {
			_, err := eas.NewProvider(nil, fake.DefaultRegion)
			Expect(err).To(HaveOccurred())
			_, err = eas.NewProvider(api, "")
			Expect(err).To(MatchError(client.ErrMissingArgument))
		})
	})

	Describe("Create", func() {
		It("should deploy a service into the provider workspace", func() {
			svc, err := provider.Create(ctx, newConfig("echo"))
			Expect(err).ToNot(HaveOccurred())
			Expect(svc.ServiceName).To(Equal("echo"))
			Expect(svc.Status).To(Equal(apieas.StatusCreating))
			Expect(svc.WorkspaceID).To(Equal("ws-1"))
			Expect(api.CreateServiceBehavior.Calls()).To(Equal(1))
		})

		It("should load a config file and keep unknown keys", func() {
			path := filepath.Join(GinkgoT().TempDir(), "service.json")
			Expect(os.WriteFile(path, []byte(serviceJSON), 0o600)).To(Succeed())

			svc, err := provider.CreateFromFile(ctx, path)
			Expect(err).ToNot(HaveOccurred())
			Expect(svc.TotalInstance).To(Equal(int64(2)))
			Expect(svc.ServiceConfig).To(ContainSubstring("ecs.gn6i-c4g1.xlarge"))
		})

		It("should reject invalid configs", func() {
			_, err := provider.Create(ctx, &apieas.ServiceConfig{})
			Expect(err).To(MatchError(client.ErrMissingArgument))

			_, err = provider.Create(ctx, &apieas.ServiceConfig{Name: "x"})
			Expect(err).To(MatchError(client.ErrMissingArgument))

			bad := newConfig("x")
			bad.Container[0].Image = "Not A Valid:Image"
			_, err = provider.Create(ctx, bad)
			Expect(err).To(HaveOccurred())
			Expect(api.Services.Len()).To(BeZero())
		})

		It("should surface conflicts", func() {
			_, err := provider.Create(ctx, newConfig("echo"))
			Expect(err).ToNot(HaveOccurred())
			_, err = provider.Create(ctx, newConfig("echo"))
			Expect(client.ParseError(err).Type).To(Equal(client.ErrorTypeConflict))
		})

		It("should fail on a missing config file", func() {
			_, err := provider.CreateFromFile(ctx, filepath.Join(GinkgoT().TempDir(), "missing.json"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Wait", func() {
		It("should wait until the service is running", func() {
			svc, err := provider.Create(ctx, newConfig("echo"))
			Expect(err).ToNot(HaveOccurred())
			api.Services.SetStatuses(fake.ServiceKey(fake.DefaultRegion, "echo"),
				apieas.StatusCreating, apieas.StatusWaiting, apieas.StatusRunning)

			Expect(provider.WaitForReady(ctx, svc)).To(Succeed())
			Expect(svc.Status).To(Equal(apieas.StatusRunning))
		})

		It("should report a failed deployment", func() {
			svc, err := provider.Create(ctx, newConfig("echo"))
			Expect(err).ToNot(HaveOccurred())
			api.Services.SetStatuses(fake.ServiceKey(fake.DefaultRegion, "echo"), apieas.StatusFailed)
			api.Services.Update(fake.ServiceKey(fake.DefaultRegion, "echo"), func(s *apieas.Service) {
				s.Reason = "ImagePullFailed"
				s.Message = "pull access denied"
			})

			err = provider.WaitForReady(ctx, svc)
			Expect(waiter.IsTerminalFailure(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("ImagePullFailed"))
		})

		It("should wait for a stop", func() {
			svc, err := provider.Create(ctx, newConfig("echo"))
			Expect(err).ToNot(HaveOccurred())
			Expect(provider.Stop(ctx, "echo")).To(Succeed())
			Expect(provider.WaitForStopped(ctx, svc)).To(Succeed())

			Expect(provider.Start(ctx, "echo")).To(Succeed())
			Expect(provider.WaitForReady(ctx, svc)).To(Succeed())
		})

		It("should require a named service", func() {
			Expect(provider.WaitForReady(ctx, &apieas.Service{})).To(MatchError(client.ErrNotSubmitted))
		})

		It("should stop when the context is cancelled", func() {
			svc, err := provider.Create(ctx, newConfig("echo"))
			Expect(err).ToNot(HaveOccurred())
			cctx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
			defer cancel()
			Expect(provider.WaitForReady(cctx, svc)).To(MatchError(context.DeadlineExceeded))
		})
	})

	Describe("List, Update and Delete", func() {
		BeforeEach(func() {
			for _, n := range []string{"a", "b", "c"} {
				_, err := provider.Create(ctx, newConfig(n))
				Expect(err).ToNot(HaveOccurred())
			}
		})

		It("should list every service in the workspace", func() {
			var names []string
			for svc, err := range provider.List(ctx, apieas.ListServicesRequest{}) {
				Expect(err).ToNot(HaveOccurred())
				names = append(names, svc.ServiceName)
			}
			Expect(names).To(Equal([]string{"a", "b", "c"}))
		})

		It("should update a service config", func() {
			cfg := newConfig("a")
			cfg.Metadata.Instance = 5
			Expect(provider.Update(ctx, "a", cfg)).To(Succeed())
			svc, err := provider.Describe(ctx, "a")
			Expect(err).ToNot(HaveOccurred())
			Expect(svc.Status).To(Equal(apieas.StatusUpdating))
			Expect(svc.TotalInstance).To(Equal(int64(5)))
		})

		It("should delete services and ignore ones already gone", func() {
			Expect(provider.Delete(ctx, "a")).To(Succeed())
			Expect(provider.DeleteAll(ctx, "a", "b", "c")).To(Succeed())
			Expect(api.Services.Len()).To(BeZero())
		})

		It("should aggregate delete failures", func() {
			api.DeleteServiceBehavior.Error.Store(client.ErrMissingArgument)
			err := provider.DeleteAll(ctx, "a", "b")
			Expect(err).To(MatchError(client.ErrMissingArgument))
			Expect(api.DeleteServiceBehavior.Calls()).To(Equal(2))
			Expect(api.Services.Len()).To(Equal(2))
		})
	})
})
