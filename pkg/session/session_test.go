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

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/pfeifferj/pai-go-sdk/pkg/apis/dlc"
	"github.com/pfeifferj/pai-go-sdk/pkg/auth"
	"github.com/pfeifferj/pai-go-sdk/pkg/client"
	"github.com/pfeifferj/pai-go-sdk/pkg/config"
	"github.com/pfeifferj/pai-go-sdk/pkg/fake"
	"github.com/pfeifferj/pai-go-sdk/pkg/oss"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers"
	"github.com/pfeifferj/pai-go-sdk/pkg/providers/common/lifecycle"
)

type fakeAPIs struct {
	providers.APIs
	dlc *fake.DLCAPI
}

func newFakeAPIs() fakeAPIs {
	d := fake.NewDLCAPI()
	return fakeAPIs{
		APIs: providers.APIs{
			PAIFlow:   fake.NewPAIFlowAPI(),
			DLC:       d,
			EAS:       fake.NewEASAPI(),
			Workspace: fake.NewWorkspaceAPI(),
			DSW:       fake.NewDSWAPI(),
			Studio:    fake.NewStudioAPI(),
		},
		dlc: d,
	}
}

type nopBucket struct{ oss.Bucket }

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{auth.EnvAccessKeyID, auth.EnvAccessKeySecret, auth.EnvSecurityToken} {
		t.Setenv(key, "")
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(context.Background(), nil)
	assert.ErrorIs(t, err, client.ErrMissingArgument)

	_, err = New(context.Background(), &config.Config{})
	assert.ErrorIs(t, err, client.ErrMissingArgument)

	_, err = New(context.Background(), &config.Config{RegionID: "cn-hangzhou"},
		WithAPIs(newFakeAPIs().APIs), WithProviderOptions(lifecycle.WithPollInterval(-time.Second)))
	assert.Error(t, err)
}

func TestNewBuildsServiceClients(t *testing.T) {
	clearCredentialEnv(t)
	s, err := New(context.Background(), &config.Config{RegionID: "cn-shanghai"})
	require.NoError(t, err)
	defer s.Close()

	require.NotNil(t, s.Client())
	assert.Equal(t, "cn-shanghai", s.Region())
	assert.Equal(t, "cn-shanghai", s.Client().GetRegion())
}

func TestCredentialsFromConfig(t *testing.T) {
	clearCredentialEnv(t)
	s, err := New(context.Background(), &config.Config{
		RegionID:        "cn-hangzhou",
		AccessKeyID:     "ak",
		AccessKeySecret: "sk",
		SecurityToken:   "token",
	}, WithAPIs(newFakeAPIs().APIs))
	require.NoError(t, err)
	defer s.Close()

	creds, err := s.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ak", creds.AccessKeyID)
	assert.Equal(t, "sk", creds.AccessKeySecret)
	assert.Equal(t, "token", creds.SecurityToken)
}

func TestCredentialsFromEnvironment(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(auth.EnvAccessKeyID, "env-ak")
	t.Setenv(auth.EnvAccessKeySecret, "env-sk")

	s, err := New(context.Background(), &config.Config{RegionID: "cn-hangzhou"}, WithAPIs(newFakeAPIs().APIs))
	require.NoError(t, err)
	defer s.Close()

	creds, err := s.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "env-ak", creds.AccessKeyID)
}

func TestNoCredentials(t *testing.T) {
	clearCredentialEnv(t)
	s, err := New(context.Background(), &config.Config{RegionID: "cn-hangzhou"}, WithAPIs(newFakeAPIs().APIs))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Credentials(context.Background())
	assert.Error(t, err)
}

func TestCustomCredentialProvider(t *testing.T) {
	provider := &auth.StaticCredentialProvider{Credentials: auth.Credentials{AccessKeyID: "custom", AccessKeySecret: "secret"}}
	s, err := New(context.Background(), &config.Config{RegionID: "cn-hangzhou", AccessKeyID: "ignored", AccessKeySecret: "ignored"},
		WithAPIs(newFakeAPIs().APIs), WithCredentialProvider(provider))
	require.NoError(t, err)
	defer s.Close()

	creds, err := s.Credentials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "custom", creds.AccessKeyID)
}

func TestProvidersUseSessionWorkspace(t *testing.T) {
	apis := newFakeAPIs()
	s, err := New(context.Background(), &config.Config{RegionID: "cn-hangzhou", WorkspaceID: "ws-1"}, WithAPIs(apis.APIs))
	require.NoError(t, err)
	defer s.Close()
	assert.Nil(t, s.Client())
	assert.Equal(t, "ws-1", s.WorkspaceID())

	jobs, err := s.DLC()
	require.NoError(t, err)
	again, err := s.DLC()
	require.NoError(t, err)
	assert.Same(t, jobs, again)

	apis.dlc.Jobs.Put("dlc-1", dlc.Job{JobID: "dlc-1", WorkspaceID: "ws-1", Status: "Running"})
	job, err := jobs.Get(context.Background(), "dlc-1")
	require.NoError(t, err)
	assert.Equal(t, "ws-1", job.WorkspaceID)

	for _, get := range []func() (any, error){
		func() (any, error) { return s.Jobs() },
		func() (any, error) { return s.TrainingJobs() },
		func() (any, error) { return s.Algorithms() },
		func() (any, error) { return s.Services() },
		func() (any, error) { return s.Instances() },
		func() (any, error) { return s.Workspace() },
		func() (any, error) { return s.Images() },
	} {
		p, err := get()
		require.NoError(t, err)
		assert.NotNil(t, p)
	}
}

func TestOSS(t *testing.T) {
	s, err := New(context.Background(), &config.Config{RegionID: "cn-hangzhou"},
		WithAPIs(newFakeAPIs().APIs), WithOSSBucket(nopBucket{}))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.OSS(context.Background())
	assert.ErrorIs(t, err, client.ErrMissingArgument)

	s, err = New(context.Background(), &config.Config{
		RegionID:      "cn-hangzhou",
		OSSBucketName: "my-bucket",
		OSSEndpoint:   "oss-cn-hangzhou.aliyuncs.com",
	}, WithAPIs(newFakeAPIs().APIs), WithOSSBucket(nopBucket{}))
	require.NoError(t, err)
	defer s.Close()

	c, err := s.OSS(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "oss://my-bucket/data/x.csv", c.URI("data/x.csv").String())
	again, err := s.OSS(context.Background())
	require.NoError(t, err)
	assert.Same(t, c, again)
}

func TestContext(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	s, err := New(context.Background(), &config.Config{RegionID: "cn-hangzhou"}, WithAPIs(newFakeAPIs().APIs))
	require.NoError(t, err)
	defer s.Close()
	assert.Same(t, s, FromContext(ToContext(context.Background(), s)))
}

func TestDefaultReadsConfigFile(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv(config.EnvVar(config.KeyRegionID), "")
	t.Setenv(config.EnvVar(config.KeyWorkspaceID), "")
	t.Setenv(config.EnvVar(config.KeyOSSBucketName), "")
	t.Setenv(config.EnvVar(config.KeyOSSEndpoint), "")
	path := t.TempDir() + "/config.json"
	require.NoError(t, config.Save(path, &config.Config{RegionID: "cn-beijing", WorkspaceID: "ws-9"}))
	t.Setenv(config.EnvConfigFile, path)

	s, err := Default(context.Background(), WithAPIs(newFakeAPIs().APIs))
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "cn-beijing", s.Region())
	assert.Equal(t, "ws-9", s.Config().WorkspaceID)
}

func TestWaitAll(t *testing.T) {
	assert.NoError(t, WaitAll(context.Background()))

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	var finished int32
	done := make(chan struct{}, 3)
	err := WaitAll(context.Background(),
		func(context.Context) error { done <- struct{}{}; return errA },
		func(ctx context.Context) error {
			time.Sleep(10 * time.Millisecond)
			if ctx.Err() == nil {
				finished++
			}
			done <- struct{}{}
			return nil
		},
		func(context.Context) error { done <- struct{}{}; return errB },
	)
	require.Error(t, err)
	assert.Len(t, done, 3)
	assert.Equal(t, int32(1), finished)
	assert.ElementsMatch(t, []error{errA, errB}, multierr.Errors(err))
}
