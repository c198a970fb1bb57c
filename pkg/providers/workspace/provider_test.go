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

package workspace_test

import (
	"context"
	"iter"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/samber/lo"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/common"
	apiws "github.com/pfeifferj/pai-go-sdk/pkg/apis/workspace"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/fake"
	"github.com/pfeifferj/pai-go-sdk/pkg/oss"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/workspace"
)

func TestWorkspaceProvider(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Workspace Provider")
}

func collect[T any](seq iter.Seq2[*T, error]) []*T {
	var out []*T
	for item, err := range seq {
		Expect(err).ToNot(HaveOccurred())
		out = append(out, item)
	}
	return out
}

var _ = Describe("Workspace Provider", func() {
	var (
		ctx      context.Context
		api      *fake.WorkspaceAPI
		provider *workspace.Provider
	)

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		api = fake.NewWorkspaceAPI()
		api.Workspaces.Put("ws-1", apiws.Workspace{WorkspaceID: "ws-1", WorkspaceName: "research"})
		api.Workspaces.Put("ws-2", apiws.Workspace{WorkspaceID: "ws-2", WorkspaceName: "prod"})
		provider, err = workspace.NewProvider(api, lifecycle.WithWorkspaceID("ws-1"))
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("Workspaces", func() {
		It("should reject a nil client", func() {
			_, err := workspace.NewProvider(nil)
			Expect(err).To(HaveOccurred())
		})

		It("should resolve the current workspace", func() {
			ws, err := provider.Current(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(ws.WorkspaceName).To(Equal("research"))
		})

		It("should fall back to the default workspace", func() {
			api.DefaultWorkspaceID.Store(lo.ToPtr("ws-2"))
			p, err := workspace.NewProvider(api)
			Expect(err).ToNot(HaveOccurred())
			ws, err := p.Current(ctx)
			Expect(err).ToNot(HaveOccurred())
			Expect(ws.WorkspaceID).To(Equal("ws-2"))
			Expect(ws.IsDefault).To(BeTrue())
		})

		It("should report a missing default workspace", func() {
			p, err := workspace.NewProvider(api)
			Expect(err).ToNot(HaveOccurred())
			_, err = p.Current(ctx)
			Expect(client.IsNotFound(err)).To(BeTrue())
		})

		It("should list workspaces", func() {
			Expect(collect(provider.List(ctx, apiws.ListWorkspacesRequest{}))).To(HaveLen(2))
		})
	})

	Describe("Datasets", func() {
		It("should register an OSS directory", func() {
			ds, err := provider.CreateDataset(ctx, workspace.DatasetOptions{
				Name: "train",
				URI:  "oss://my-bucket.oss-cn-hangzhou.aliyuncs.com/data/train/",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(ds.WorkspaceID).To(Equal("ws-1"))
			Expect(ds.Property).To(Equal(apiws.PropertyDirectory))
			Expect(ds.DataSourceType).To(Equal(apiws.DataSourceTypeOSS))

			uri, err := workspace.DatasetURI(ds)
			Expect(err).ToNot(HaveOccurred())
			Expect(uri).To(Equal(oss.URI{Bucket: "my-bucket", Endpoint: "oss-cn-hangzhou.aliyuncs.com", Object: "data/train/"}))
		})

		It("should register a single file", func() {
			ds, err := provider.CreateDataset(ctx, workspace.DatasetOptions{Name: "eval", URI: "oss://my-bucket/eval.csv"})
			Expect(err).ToNot(HaveOccurred())
			Expect(ds.Property).To(Equal(apiws.PropertyFile))
		})

		It("should keep object keys with reserved characters", func() {
			ds, err := provider.CreateDataset(ctx, workspace.DatasetOptions{Name: "odd", URI: "oss://my-bucket/data/50%.csv"})
			Expect(err).ToNot(HaveOccurred())

			uri, err := workspace.DatasetURI(ds)
			Expect(err).ToNot(HaveOccurred())
			Expect(uri.Object).To(Equal("data/50%.csv"))
		})

		It("should reject bad input before calling the service", func() {
			_, err := provider.CreateDataset(ctx, workspace.DatasetOptions{URI: "oss://my-bucket/x"})
			Expect(err).To(MatchError(client.ErrMissingArgument))
			_, err = provider.CreateDataset(ctx, workspace.DatasetOptions{Name: "x", URI: "/local/path"})
			Expect(err).To(MatchError(oss.ErrInvalidOSSURI))
			Expect(api.CreateDatasetBehavior.Calls()).To(BeZero())
		})

		It("should require a workspace", func() {
			p, err := workspace.NewProvider(api)
			Expect(err).ToNot(HaveOccurred())
			_, err = p.CreateDataset(ctx, workspace.DatasetOptions{Name: "x", URI: "oss://my-bucket/x"})
			Expect(err).To(MatchError(client.ErrMissingWorkspace))
		})

		It("should list and delete datasets", func() {
			for _, n := range []string{"a", "b"} {
				_, err := provider.CreateDataset(ctx, workspace.DatasetOptions{Name: n, URI: "oss://my-bucket/" + n})
				Expect(err).ToNot(HaveOccurred())
			}
			datasets := collect(provider.ListDatasets(ctx, apiws.ListDatasetsRequest{}))
			Expect(datasets).To(HaveLen(2))

			Expect(provider.DeleteDatasets(ctx, datasets[0].DatasetID, "d-404", datasets[1].DatasetID)).To(Succeed())
			Expect(api.Datasets.Len()).To(BeZero())
		})

		It("should refuse a non-OSS dataset URI", func() {
			_, err := workspace.DatasetURI(&apiws.Dataset{DatasetID: "d-1", DataSourceType: apiws.DataSourceTypeNAS})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Models", func() {
		It("should register a model with versions", func() {
			model, err := provider.CreateModel(ctx, workspace.ModelOptions{Name: "bert", Task: "text-classification"})
			Expect(err).ToNot(HaveOccurred())

			v1, err := provider.CreateModelVersion(ctx, model.ModelID, workspace.ModelVersionOptions{URI: "oss://my-bucket/models/bert/1/"})
			Expect(err).ToNot(HaveOccurred())
			v2, err := provider.CreateModelVersion(ctx, model.ModelID, workspace.ModelVersionOptions{Name: "2.0.0", URI: "oss://my-bucket/models/bert/2/"})
			Expect(err).ToNot(HaveOccurred())
			Expect(v2).To(Equal("2.0.0"))

			versions := collect(provider.ListModelVersions(ctx, model.ModelID))
			Expect(versions).To(HaveLen(2))
			Expect(versions[0].VersionName).To(Equal(v1))

			model, err = provider.GetModel(ctx, model.ModelID)
			Expect(err).ToNot(HaveOccurred())
			Expect(model.LatestVersion.VersionName).To(Equal("2.0.0"))
		})

		It("should validate version URIs", func() {
			model, err := provider.CreateModel(ctx, workspace.ModelOptions{Name: "bert"})
			Expect(err).ToNot(HaveOccurred())
			_, err = provider.CreateModelVersion(ctx, model.ModelID, workspace.ModelVersionOptions{})
			Expect(err).To(MatchError(client.ErrMissingArgument))
			_, err = provider.CreateModelVersion(ctx, model.ModelID, workspace.ModelVersionOptions{URI: "oss://B/x"})
			Expect(err).To(MatchError(oss.ErrInvalidOSSURI))
			_, err = provider.CreateModelVersion(ctx, model.ModelID, workspace.ModelVersionOptions{URI: "https://example.com/model.tar.gz"})
			Expect(err).ToNot(HaveOccurred())
		})

		It("should list models by name and delete them with their versions", func() {
			for _, n := range []string{"bert", "resnet"} {
				m, err := provider.CreateModel(ctx, workspace.ModelOptions{Name: n, Labels: map[string]string{"team": "nlp"}})
				Expect(err).ToNot(HaveOccurred())
				_, err = provider.CreateModelVersion(ctx, m.ModelID, workspace.ModelVersionOptions{URI: "oss://my-bucket/" + n})
				Expect(err).ToNot(HaveOccurred())
			}
			models := collect(provider.ListModels(ctx, apiws.ListModelsRequest{ModelName: "resnet"}))
			Expect(models).To(HaveLen(1))
			Expect(models[0].Labels).To(Equal([]common.Label{{Key: "team", Value: "nlp"}}))

			Expect(provider.DeleteModels(ctx, "model-1", "model-2")).To(Succeed())
			Expect(api.ModelVersions.Len()).To(BeZero())
		})
	})

	Describe("Code sources", func() {
		It("should register a repository with the default mount path", func() {
			cs, err := provider.CreateCodeSource(ctx, workspace.CodeSourceOptions{
				DisplayName: "trainer",
				Repo:        "https://github.com/example/trainer.git",
				Branch:      "main",
			})
			Expect(err).ToNot(HaveOccurred())
			Expect(cs.MountPath).To(Equal(workspace.DefaultCodeMountPath))
			Expect(cs.WorkspaceID).To(Equal("ws-1"))

			Expect(collect(provider.ListCodeSources(ctx, apiws.ListCodeSourcesRequest{}))).To(HaveLen(1))
			Expect(provider.DeleteCodeSource(ctx, cs.CodeSourceID)).To(Succeed())
			Expect(provider.DeleteCodeSources(ctx, cs.CodeSourceID)).To(Succeed())
			Expect(client.IsNotFound(provider.DeleteCodeSource(ctx, cs.CodeSourceID))).To(BeTrue())
		})

		It("should reject invalid repositories", func() {
			_, err := provider.CreateCodeSource(ctx, workspace.CodeSourceOptions{DisplayName: "x"})
			Expect(err).To(MatchError(client.ErrMissingArgument))
			_, err = provider.CreateCodeSource(ctx, workspace.CodeSourceOptions{DisplayName: "x", Repo: "not a url"})
			Expect(err).To(HaveOccurred())
		})
	})
})
